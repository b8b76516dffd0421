// File: reporter/compare.go

package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// signatureDepth is the number of program frames in a crash signature.
const signatureDepth = 3

// LoadReports reads every crash report saved in dir, oldest first. Files that
// cannot be parsed are reported and skipped.
func LoadReports(dir string) ([]CrashReport, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []string
	for _, pattern := range []string{"crash_report_*.yaml", "crash_report_*.json"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	var reports []CrashReport
	for _, file := range files {
		report, err := loadReport(file)
		if err != nil {
			fmt.Printf("Error loading %s: %v\n", file, err)
			continue
		}
		reports = append(reports, report)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reportTime(reports[i]).Before(reportTime(reports[j]))
	})
	return reports, nil
}

func loadReport(file string) (CrashReport, error) {
	var report CrashReport
	data, err := os.ReadFile(file)
	if err != nil {
		return report, err
	}
	if strings.HasSuffix(file, ".json") {
		err = json.Unmarshal(data, &report)
	} else {
		err = yaml.Unmarshal(data, &report)
	}
	if err != nil {
		return report, fmt.Errorf("failed to parse report: %w", err)
	}
	report.ReportFile = file
	return report, nil
}

func reportTime(report CrashReport) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, report.Timestamp)
	return t
}

// crashedBacktrace returns the backtrace of the crashed goroutine, or of the
// first goroutine when none is marked.
func crashedBacktrace(report CrashReport) []StackFrame {
	for _, g := range report.Goroutines {
		if g.IsCrashed {
			return g.Backtrace
		}
	}
	if len(report.Goroutines) > 0 {
		return report.Goroutines[0].Backtrace
	}
	return nil
}

// CompareReports groups reports by signal and the top program frames of the
// crashed goroutine. Only signatures seen more than once become patterns,
// most frequent first.
func CompareReports(reports []CrashReport) ReportComparison {
	comparison := ReportComparison{
		TotalReports:    len(reports),
		CommonSignals:   make(map[string]int),
		CommonFunctions: make(map[string]int),
		TimeRange:       make(map[string]string),
	}

	var firstTime, lastTime time.Time
	for i, report := range reports {
		t := reportTime(report)
		if i == 0 || t.Before(firstTime) {
			firstTime = t
		}
		if i == 0 || t.After(lastTime) {
			lastTime = t
		}
	}
	if len(reports) > 0 {
		comparison.TimeRange["first"] = firstTime.Format(time.RFC3339)
		comparison.TimeRange["last"] = lastTime.Format(time.RFC3339)
	}

	crashGroups := make(map[string][]CrashReport)
	var order []string
	for _, report := range reports {
		signal := report.SignalInfo.SignalName
		comparison.CommonSignals[signal]++

		parts := []string{signal}
		for _, frame := range crashedBacktrace(report) {
			if isSystemFunction(frame.Function) {
				continue
			}
			comparison.CommonFunctions[frame.Function]++
			if len(parts) <= signatureDepth {
				parts = append(parts, frame.Function)
			}
		}

		signature := strings.Join(parts, "|")
		if _, ok := crashGroups[signature]; !ok {
			order = append(order, signature)
		}
		crashGroups[signature] = append(crashGroups[signature], report)
	}

	for _, signature := range order {
		group := crashGroups[signature]
		if len(group) < 2 {
			continue
		}
		parts := strings.Split(signature, "|")
		pattern := CrashPattern{
			Signal:          parts[0],
			StackSignature:  parts[1:],
			OccurrenceCount: len(group),
			AffectedReports: make([]string, 0, len(group)),
		}
		for _, report := range group {
			name := report.ReportFile
			if name == "" {
				name = fmt.Sprintf("pid %d at %s", report.PID, report.Timestamp)
			}
			pattern.AffectedReports = append(pattern.AffectedReports, name)
		}
		comparison.CrashPatterns = append(comparison.CrashPatterns, pattern)
	}

	sort.SliceStable(comparison.CrashPatterns, func(i, j int) bool {
		return comparison.CrashPatterns[i].OccurrenceCount > comparison.CrashPatterns[j].OccurrenceCount
	})

	return comparison
}

// SaveComparison writes comparison to dir in format and returns the path.
func SaveComparison(comparison ReportComparison, dir, format string) (string, error) {
	if err := ValidateFormat(format); err != nil {
		return "", err
	}
	data, err := marshal(comparison, format)
	if err != nil {
		return "", fmt.Errorf("failed to marshal comparison: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(dir, fmt.Sprintf("crash_comparison_%s.%s", timestamp, format))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write comparison file: %w", err)
	}
	return filename, nil
}
