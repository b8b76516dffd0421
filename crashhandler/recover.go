// File: crashhandler/recover.go

package crashhandler

import (
	"runtime"
	"runtime/debug"
	"strings"
)

// Recover turns a fault panic into a crash handled by the active handler. It
// must be deferred directly:
//
//	defer crashhandler.Recover()
//
// Memory faults become SIGSEGV, integer division by zero SIGFPE and any other
// panic SIGABRT. Without an active handler, when that kind is not registered,
// or while another crash is being handled, the panic continues unchanged.
func Recover() {
	e := recover()
	if e == nil {
		return
	}
	h := Active()
	if h == nil || !h.initialized.Load() {
		panic(e)
	}
	kind, addr := classifyPanic(e)
	sig, ok := kind.Signal()
	if !ok || !h.Armed(kind) || !h.crashing.CompareAndSwap(false, true) {
		panic(e)
	}
	h.handleCrash(int(sig), UnknownCode, addr)
}

// Go runs f on a new goroutine with fault panics routed to the crash handler.
func Go(f func()) {
	go func() {
		defer Recover()
		debug.SetPanicOnFault(true)
		f()
	}()
}

// Guard runs f on the calling goroutine with fault panics routed to the
// crash handler.
func Guard(f func()) {
	defer Recover()
	prev := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(prev)
	f()
}

func classifyPanic(e any) (FaultKind, uintptr) {
	rerr, ok := e.(runtime.Error)
	if !ok {
		return Abort, 0
	}
	if fault, ok := e.(interface{ Addr() uintptr }); ok {
		return Segv, fault.Addr()
	}
	msg := rerr.Error()
	switch {
	case strings.Contains(msg, "invalid memory address"), strings.Contains(msg, "nil pointer dereference"):
		return Segv, 0
	case strings.Contains(msg, "divide by zero"):
		return FPException, 0
	}
	return Abort, 0
}

// ParseCrashInfoArg finds the record name passed as --crashinfo=<name>.
func ParseCrashInfoArg(args []string) (string, bool) {
	prefix := CrashInfoFlag + "="
	for _, arg := range args {
		if strings.HasPrefix(arg, prefix) {
			name := strings.TrimPrefix(arg, prefix)
			return name, name != ""
		}
	}
	return "", false
}
