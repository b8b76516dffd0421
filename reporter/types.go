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

// File: reporter/types.go
// Purpose: Provides type definitions for crash reports built from a crash info
// record, and for the comparison of several saved reports.

package reporter

import (
	"github.com/edespino/cbcrash/sysinfo"
)

// CrashReport is the complete report for one crash.
type CrashReport struct {
	Timestamp          string           `json:"timestamp" yaml:"timestamp"`
	PID                int              `json:"pid" yaml:"pid"`
	Executable         string           `json:"executable,omitempty" yaml:"executable,omitempty"`
	CrashInfo          string           `json:"crash_info,omitempty" yaml:"crash_info,omitempty"`
	SignalInfo         SignalInfo       `json:"signal_info" yaml:"signal_info"`
	Backtrace          []string         `json:"backtrace" yaml:"backtrace"`
	BacktraceTruncated bool             `json:"backtrace_truncated,omitempty" yaml:"backtrace_truncated,omitempty"`
	Goroutines         []GoroutineInfo  `json:"goroutines" yaml:"goroutines"`
	StackTruncated     bool             `json:"stack_truncated,omitempty" yaml:"stack_truncated,omitempty"`
	CrashedGoroutine   int              `json:"crashed_goroutine,omitempty" yaml:"crashed_goroutine,omitempty"`
	KeyFunction        string           `json:"key_function,omitempty" yaml:"key_function,omitempty"`
	System             *sysinfo.SysInfo `json:"system,omitempty" yaml:"system,omitempty"`

	// ReportFile is the file the report was loaded from.
	ReportFile string `json:"-" yaml:"-"`
}

// SignalInfo describes the fault that ended the process.
type SignalInfo struct {
	SignalNumber      int    `json:"signal_number" yaml:"signal_number"`
	SignalCode        int    `json:"signal_code" yaml:"signal_code"`
	SignalName        string `json:"signal_name" yaml:"signal_name"`
	SignalDescription string `json:"signal_description" yaml:"signal_description"`
	FaultAddress      string `json:"fault_address,omitempty" yaml:"fault_address,omitempty"`
}

// StackFrame is one frame of a goroutine traceback.
type StackFrame struct {
	Function   string `json:"function" yaml:"function"`
	Arguments  string `json:"args,omitempty" yaml:"args,omitempty"`
	SourceFile string `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	LineNumber int    `json:"line_number,omitempty" yaml:"line_number,omitempty"`
	PCOffset   string `json:"pc_offset,omitempty" yaml:"pc_offset,omitempty"`
}

// GoroutineInfo is one goroutine of the dump taken at crash time.
type GoroutineInfo struct {
	ID        int          `json:"id" yaml:"id"`
	State     string       `json:"state" yaml:"state"`
	WaitTime  string       `json:"wait_time,omitempty" yaml:"wait_time,omitempty"`
	Role      string       `json:"role,omitempty" yaml:"role,omitempty"`
	IsCrashed bool         `json:"is_crashed,omitempty" yaml:"is_crashed,omitempty"`
	CreatedBy string       `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	Backtrace []StackFrame `json:"backtrace" yaml:"backtrace"`
}

// CrashPattern is a crash signature seen in more than one report.
type CrashPattern struct {
	Signal          string   `json:"signal" yaml:"signal"`
	StackSignature  []string `json:"stack_signature" yaml:"stack_signature"`
	OccurrenceCount int      `json:"occurrence_count" yaml:"occurrence_count"`
	AffectedReports []string `json:"reports" yaml:"reports"`
}

// ReportComparison is the result of comparing several crash reports.
type ReportComparison struct {
	TotalReports    int               `json:"total_reports" yaml:"total_reports"`
	CommonSignals   map[string]int    `json:"signal_distribution" yaml:"signal_distribution"`
	CommonFunctions map[string]int    `json:"function_distribution" yaml:"function_distribution"`
	CrashPatterns   []CrashPattern    `json:"crash_patterns" yaml:"crash_patterns"`
	TimeRange       map[string]string `json:"time_range" yaml:"time_range"`
}
