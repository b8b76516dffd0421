// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// File: reporter/reporter.go
// Package: reporter
//
// Description:
// Package reporter turns a crash info record into a crash report. It is the
// routine run by the reporter process started with --crashinfo=<name>, and
// the in-process fallback when no reporter process can be started.
//
// A report holds the signal details, the raw backtrace addresses, every
// goroutine parsed from the dump taken at crash time and the system
// information of the host. It is saved as YAML or JSON and summarised through
// the dialog facade.
//
// Usage:
//   rep := &reporter.Reporter{OutputDir: dir, Format: "yaml"}
//   err := rep.Run(rec)
//
// Authors:
// - Cloudberry Open Source Contributors

package reporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/edespino/cbcrash/crashhandler"
	"github.com/edespino/cbcrash/dialog"
	"github.com/edespino/cbcrash/sysinfo"
	"gopkg.in/yaml.v2"
)

// ErrNoFault is returned for a record that holds no crash.
var ErrNoFault = errors.New("reporter: record holds no fault")

// DialogTitle is the title of the crash summary dialog.
const DialogTitle = "Crash"

// collectSysInfo is replaced in tests.
var collectSysInfo = sysinfo.Collect

// Source is the part of a crash info record the reporter reads.
// *crashhandler.Record implements it.
type Source interface {
	Name() string
	HasFault() bool
	Snapshot() crashhandler.Snapshot
	SignalExit()
}

// Reporter builds and saves crash reports.
type Reporter struct {
	// OutputDir receives the report files. Defaults to the working directory.
	OutputDir string
	// Format is "yaml" (default) or "json".
	Format string
	// Dialog presents the summary. Defaults to dialog.Default().
	Dialog *dialog.Dialog
}

// ValidateFormat checks if the provided format is either "json" or "yaml".
func ValidateFormat(format string) error {
	if format != "json" && format != "yaml" {
		return fmt.Errorf("invalid format: %s. Valid options are 'json' or 'yaml'", format)
	}
	return nil
}

func (r *Reporter) format() string {
	if r.Format == "" {
		return "yaml"
	}
	return r.Format
}

func (r *Reporter) dialog() *dialog.Dialog {
	if r.Dialog == nil {
		return dialog.Default()
	}
	return r.Dialog
}

// ProcessCrash implements crashhandler.Processor.
func (r *Reporter) ProcessCrash(rec *crashhandler.Record) error {
	return r.Process(rec)
}

// Run processes rec and then signals its exit lock, whatever the outcome, so
// the crashing process stops waiting.
func (r *Reporter) Run(rec Source) error {
	defer rec.SignalExit()
	return r.Process(rec)
}

// Process builds the report for rec, saves it and shows a summary.
func (r *Reporter) Process(rec Source) error {
	if err := ValidateFormat(r.format()); err != nil {
		return err
	}
	if !rec.HasFault() {
		return ErrNoFault
	}

	report := BuildReport(rec.Snapshot())
	report.CrashInfo = rec.Name()
	if exe, err := os.Executable(); err == nil {
		report.Executable = exe
	}
	info, _ := collectSysInfo()
	report.System = &info

	path, err := r.Save(report)
	if err != nil {
		r.dialog().ShowError(Summary(report)+"\nThe crash report could not be saved: "+err.Error(), DialogTitle)
		return err
	}
	r.dialog().ShowError(Summary(report)+"\nCrash report saved to: "+path, DialogTitle)
	return nil
}

// BuildReport converts a record snapshot into a report.
func BuildReport(snap crashhandler.Snapshot) CrashReport {
	ts := snap.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	report := CrashReport{
		Timestamp:          ts.Format(time.RFC3339Nano),
		PID:                snap.PID,
		SignalInfo:         newSignalInfo(snap.Signal, snap.Code, snap.FaultAddr),
		Backtrace:          make([]string, 0, len(snap.Backtrace)),
		BacktraceTruncated: snap.BacktraceTruncated,
		StackTruncated:     snap.StackTruncated,
	}
	for _, pc := range snap.Backtrace {
		report.Backtrace = append(report.Backtrace, fmt.Sprintf("0x%x", pc))
	}

	report.Goroutines = ParseGoroutines(string(snap.Stack))
	if i := markCrashed(report.Goroutines); i >= 0 {
		crashed := report.Goroutines[i]
		report.CrashedGoroutine = crashed.ID
		report.KeyFunction = findKeyFunction(crashed.Backtrace)
	}
	if report.KeyFunction != "" {
		report.SignalInfo.SignalDescription += fmt.Sprintf(" (in %s)", report.KeyFunction)
	}
	return report
}

// Summary returns the short text shown to the user after a crash.
func Summary(report CrashReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The program crashed: %s (%d), %s\n",
		report.SignalInfo.SignalName,
		report.SignalInfo.SignalNumber,
		report.SignalInfo.SignalDescription)
	fmt.Fprintf(&b, "Process: %d", report.PID)
	if report.Executable != "" {
		fmt.Fprintf(&b, " (%s)", report.Executable)
	}
	b.WriteString("\n")
	if report.SignalInfo.FaultAddress != "" {
		fmt.Fprintf(&b, "Fault address: %s\n", report.SignalInfo.FaultAddress)
	}
	if report.CrashedGoroutine != 0 {
		fmt.Fprintf(&b, "Goroutine: %d of %d\n", report.CrashedGoroutine, len(report.Goroutines))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// reportFileName returns crash_report_<timestamp>_<pid>.<format>.
func reportFileName(report CrashReport, format string) string {
	stamp := time.Now()
	if t, err := time.Parse(time.RFC3339Nano, report.Timestamp); err == nil {
		stamp = t
	}
	return fmt.Sprintf("crash_report_%s_%d.%s", stamp.Format("20060102_150405"), report.PID, format)
}

// Save writes report to the output directory and returns the file path.
func (r *Reporter) Save(report CrashReport) (string, error) {
	format := r.format()
	if err := ValidateFormat(format); err != nil {
		return "", err
	}
	dir := r.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := marshal(report, format)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	filename := filepath.Join(dir, reportFileName(report, format))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return filename, nil
}

func marshal(v any, format string) ([]byte, error) {
	if format == "json" {
		return json.MarshalIndent(v, "", "  ")
	}
	return yaml.Marshal(v)
}
