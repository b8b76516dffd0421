// File: reporter/stack.go
// Purpose: Parses the goroutine dump stored in a crash info record and picks
// out the goroutine and the function that crashed.

package reporter

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	goroutineRE = regexp.MustCompile(`^goroutine (\d+)\b.*\[([^\]]*)\]:$`)
	callRE      = regexp.MustCompile(`^(.+)\((.*)\)$`)
	locationRE  = regexp.MustCompile(`^\t(.+):(\d+)(?: \+(0x[0-9a-fA-F]+))?`)
	createdRE   = regexp.MustCompile(`^created by (\S+)(?: in goroutine \d+)?$`)
)

// crashFrame marks the goroutine that ran the crash handler.
const crashFrame = "crashhandler.(*Handler).handleCrash"

// ParseGoroutines parses a goroutine dump in the format written by
// runtime.Stack. Unrecognised lines are skipped.
func ParseGoroutines(dump string) []GoroutineInfo {
	var goroutines []GoroutineInfo
	var current *GoroutineInfo
	var frame *StackFrame

	flush := func() {
		if current == nil {
			return
		}
		current.Role = determineGoroutineRole(current.Backtrace)
		goroutines = append(goroutines, *current)
		current = nil
	}

	for _, line := range strings.Split(dump, "\n") {
		if matches := goroutineRE.FindStringSubmatch(line); matches != nil {
			flush()
			id, _ := strconv.Atoi(matches[1])
			state, wait, _ := strings.Cut(matches[2], ",")
			current = &GoroutineInfo{
				ID:       id,
				State:    strings.TrimSpace(state),
				WaitTime: strings.TrimSpace(wait),
			}
			frame = nil
			continue
		}
		if current == nil || line == "" {
			continue
		}

		if strings.HasPrefix(line, "\t") {
			if frame == nil {
				continue
			}
			if matches := locationRE.FindStringSubmatch(line); matches != nil {
				frame.SourceFile = matches[1]
				frame.LineNumber, _ = strconv.Atoi(matches[2])
				frame.PCOffset = matches[3]
			}
			frame = nil
			continue
		}

		if matches := createdRE.FindStringSubmatch(line); matches != nil {
			current.CreatedBy = matches[1]
			frame = nil
			continue
		}
		if matches := callRE.FindStringSubmatch(line); matches != nil {
			current.Backtrace = append(current.Backtrace, StackFrame{
				Function:  matches[1],
				Arguments: matches[2],
			})
			frame = &current.Backtrace[len(current.Backtrace)-1]
		}
	}
	flush()

	return goroutines
}

// markCrashed flags the goroutine that ran the crash handler and returns its
// index, or -1.
func markCrashed(goroutines []GoroutineInfo) int {
	for i := range goroutines {
		for _, frame := range goroutines[i].Backtrace {
			if strings.HasSuffix(frame.Function, crashFrame) {
				goroutines[i].IsCrashed = true
				return i
			}
		}
	}
	return -1
}

// determineGoroutineRole identifies the role of a goroutine based on its
// backtrace.
func determineGoroutineRole(backtrace []StackFrame) string {
	for _, frame := range backtrace {
		if strings.HasSuffix(frame.Function, crashFrame) {
			return "Crash Handler"
		}
	}
	for _, frame := range backtrace {
		switch {
		case strings.HasPrefix(frame.Function, "os/signal."):
			return "Signal Delivery"
		case strings.HasPrefix(frame.Function, "runtime.gopanic"):
			return "Panicking"
		}
	}
	return ""
}

// findKeyFunction returns the first frame that belongs to the program rather
// than to the runtime or the crash handler.
func findKeyFunction(backtrace []StackFrame) string {
	for _, frame := range backtrace {
		if !isSystemFunction(frame.Function) {
			return frame.Function
		}
	}
	return ""
}

// isSystemFunction determines if a function belongs to the Go runtime, the
// standard signal plumbing or the crash handler itself.
func isSystemFunction(funcName string) bool {
	systemPrefixes := []string{
		"runtime.",
		"runtime/",
		"internal/",
		"os/signal.",
		"syscall.",
		"testing.",
	}

	systemFunctions := map[string]bool{
		"main.main": true,
		"panic":     true,
		"???":       true,
	}

	if systemFunctions[funcName] {
		return true
	}
	if strings.Contains(funcName, "/crashhandler.") {
		return true
	}
	for _, prefix := range systemPrefixes {
		if strings.HasPrefix(funcName, prefix) {
			return true
		}
	}
	return false
}
