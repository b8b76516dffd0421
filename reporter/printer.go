// File: reporter/printer.go

package reporter

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"
)

// PrintReports writes one line per report.
func PrintReports(w io.Writer, reports []CrashReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tPID\tSIGNAL\tFUNCTION\tFILE")
	for _, report := range reports {
		when := report.Timestamp
		if t, err := time.Parse(time.RFC3339Nano, report.Timestamp); err == nil {
			when = t.Format("2006-01-02 15:04:05")
		}
		fn := report.KeyFunction
		if fn == "" {
			fn = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			when, report.PID, report.SignalInfo.SignalName, fn, filepath.Base(report.ReportFile))
	}
	tw.Flush()
}

// PrintReport writes a report in a traceback-like layout, crashed goroutine
// first.
func PrintReport(w io.Writer, report CrashReport) {
	fmt.Fprintln(w, "Crash Report")
	fmt.Fprintln(w, "============")
	fmt.Fprintln(w, Summary(report))

	if len(report.Backtrace) > 0 {
		fmt.Fprintf(w, "\nBacktrace (%d frames", len(report.Backtrace))
		if report.BacktraceTruncated {
			fmt.Fprint(w, ", truncated")
		}
		fmt.Fprintln(w, "):")
		for i, pc := range report.Backtrace {
			fmt.Fprintf(w, "#%-3d %s\n", i, pc)
		}
	}

	fmt.Fprintln(w, "\nGoroutines:")
	for _, g := range report.Goroutines {
		if g.IsCrashed {
			printGoroutine(w, g)
		}
	}
	for _, g := range report.Goroutines {
		if !g.IsCrashed {
			printGoroutine(w, g)
		}
	}
}

func printGoroutine(w io.Writer, g GoroutineInfo) {
	header := fmt.Sprintf("goroutine %d [%s", g.ID, g.State)
	if g.WaitTime != "" {
		header += ", " + g.WaitTime
	}
	header += "]"
	if g.Role != "" {
		header += fmt.Sprintf(" (%s)", g.Role)
	}
	if g.IsCrashed {
		header += " (Crashed)"
	}
	fmt.Fprintln(w, header+":")

	for _, frame := range g.Backtrace {
		fmt.Fprintf(w, "  %s(%s)\n", frame.Function, frame.Arguments)
		if frame.SourceFile != "" {
			fmt.Fprintf(w, "      %s:%d\n", frame.SourceFile, frame.LineNumber)
		}
	}
	if g.CreatedBy != "" {
		fmt.Fprintf(w, "  created by %s\n", g.CreatedBy)
	}
	fmt.Fprintln(w)
}

// PrintComparison writes the signal distribution and crash patterns.
func PrintComparison(w io.Writer, c ReportComparison) {
	fmt.Fprintf(w, "Reports: %d", c.TotalReports)
	if first, ok := c.TimeRange["first"]; ok {
		fmt.Fprintf(w, " (%s to %s)", first, c.TimeRange["last"])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "\nSignals:")
	for _, name := range sortedKeys(c.CommonSignals) {
		fmt.Fprintf(w, "  %-10s %d\n", name, c.CommonSignals[name])
	}

	if len(c.CrashPatterns) == 0 {
		fmt.Fprintln(w, "\nNo recurring crash patterns.")
		return
	}
	fmt.Fprintln(w, "\nCrash patterns:")
	for _, p := range c.CrashPatterns {
		fmt.Fprintf(w, "  %dx %s", p.OccurrenceCount, p.Signal)
		for _, fn := range p.StackSignature {
			fmt.Fprintf(w, " <- %s", fn)
		}
		fmt.Fprintln(w)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
