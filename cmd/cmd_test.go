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

// File: cmd_test.go
// Package: cmd
//
// Description:
// Tests for the cbcrash commands. Commands run through rootCmd with SetArgs;
// printed output is captured from os.Stdout. When CBCRASH_CMD_HELPER is set
// the test binary behaves as the cbcrash executable, which lets tests crash a
// real process and have it start the test binary as its reporter.
//
// Authors:
// - Cloudberry Open Source Contributors

package cmd

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/edespino/cbcrash/crashhandler"
	"github.com/edespino/cbcrash/reporter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cmdHelperEnv = "CBCRASH_CMD_HELPER"

func TestMain(m *testing.M) {
	if os.Getenv(cmdHelperEnv) != "" {
		rootCmd.SetArgs(os.Args[1:])
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	}
	os.Exit(m.Run())
}

// captureOutput captures the output of a function to help validate printed output in tests.
func captureOutput(f func()) string {
	r, w, _ := os.Pipe()
	stdOut := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdOut }()

	done := make(chan []byte)
	go func() {
		out, _ := io.ReadAll(r)
		done <- out
	}()

	f()
	w.Close()
	return string(<-done)
}

// resetFlags restores the package flag variables after a test.
func resetFlags(t *testing.T) {
	t.Helper()
	format, dir, info := formatFlag, outputDir, crashInfoFlag
	compare, detail := compareFlag, detailFlag
	signal, inProcess, asPanic := simSignal, simInProcess, simPanic
	t.Cleanup(func() {
		formatFlag, outputDir, crashInfoFlag = format, dir, info
		compareFlag, detailFlag = compare, detail
		simSignal, simInProcess, simPanic = signal, inProcess, asPanic
		rootCmd.SetArgs(nil)
	})
}

func execute(args ...string) (string, error) {
	if args == nil {
		args = []string{}
	}
	var err error
	out := captureOutput(func() {
		rootCmd.SetArgs(args)
		err = rootCmd.Execute()
	})
	return out, err
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"yaml", false},
		{"json", false},
		{"xml", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			err := validateFormat(tt.format)
			if tt.wantErr {
				assert.ErrorContains(t, err, "invalid format")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv(envFormat, "json")
	assert.Equal(t, "json", envOr(envFormat, "yaml"))

	t.Setenv(envFormat, "")
	assert.Equal(t, "yaml", envOr(envFormat, "yaml"))
}

func TestRootWithoutCrashInfoShowsHelp(t *testing.T) {
	resetFlags(t)
	crashInfoFlag = ""

	var buf strings.Builder
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)

	_, err := execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "cbcrash --crashinfo=<name>")
}

func TestReportCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		errorMsg string
	}{
		{"missing crashinfo", []string{"report", "--crashinfo="}, "please specify --crashinfo=<name>"},
		{"invalid format", []string{"report", "--format", "xml", "--crashinfo=cbcrash-none"}, "invalid format"},
		{"unknown record", []string{"report", "--format", "yaml", "--crashinfo=cbcrash-does-not-exist"}, "failed to attach crash info"},
		{"root crash mode", []string{"--format", "yaml", "--crashinfo=cbcrash-does-not-exist"}, "failed to attach crash info"},
		{"path in name", []string{"--format", "yaml", "--crashinfo=../cbcrash-x"}, "failed to attach crash info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			_, err := execute(tt.args...)
			assert.ErrorContains(t, err, tt.errorMsg)
		})
	}
}

func TestReportOnRecordWithoutFault(t *testing.T) {
	resetFlags(t)

	h := crashhandler.New(crashhandler.Config{InProcess: true})
	require.NoError(t, h.Initialize())
	defer h.Shutdown()
	name := h.SharedMemoryName()
	if name == "" {
		t.Skip("shared memory unavailable")
	}

	dir := t.TempDir()
	_, err := execute("--format", "yaml", "--output-dir", dir, "--crashinfo="+name)
	assert.ErrorIs(t, err, reporter.ErrNoFault)
	assert.True(t, h.Record().TryWaitExit(), "the crashing side must be released")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func writeReports(t *testing.T, dir string, pids ...int) {
	t.Helper()
	rep := &reporter.Reporter{OutputDir: dir, Format: "yaml"}
	for i, pid := range pids {
		report := reporter.CrashReport{
			Timestamp:   time.Date(2024, 11, 5, 10, i, 0, 0, time.UTC).Format(time.RFC3339Nano),
			PID:         pid,
			SignalInfo:  reporter.SignalInfo{SignalName: "SIGSEGV", SignalNumber: 11},
			KeyFunction: "main.loadConfig",
			Goroutines:  []reporter.GoroutineInfo{{
				ID:        1,
				IsCrashed: true,
				Backtrace: []reporter.StackFrame{{Function: "main.loadConfig"}, {Function: "main.run"}},
			}},
		}
		_, err := rep.Save(report)
		require.NoError(t, err)
	}
}

func TestReportsCommand(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	writeReports(t, dir, 100, 200)

	out, err := execute("reports", dir, "--compare", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "SIGSEGV")
	assert.Contains(t, out, "crash_report_20241105_100000_100.yaml")
	assert.Contains(t, out, "2x SIGSEGV <- main.loadConfig <- main.run")
	assert.Contains(t, out, "Comparison results saved to:")

	matches, err := filepath.Glob(filepath.Join(dir, "crash_comparison_*.yaml"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestReportsCommandDetail(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	writeReports(t, dir, 300)

	out, err := execute("reports", dir, "--detail", "--compare=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Crash Report")
	assert.Contains(t, out, "goroutine 1 [] (Crashed):")
}

func TestReportsCommandEmptyDir(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()

	_, err := execute("reports", dir, "--detail=false")
	assert.ErrorContains(t, err, "no crash reports found")
}

func TestSimulateRejectsBadFault(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		errorMsg string
	}{
		{"unknown signal", []string{"simulate", "--signal", "HUP", "--panic=false"}, "unknown fault kind"},
		{"bus as panic", []string{"simulate", "--signal", "BUS", "--panic"}, "cannot be raised from Go code"},
		{"ill as panic", []string{"simulate", "--signal", "sigill", "--panic"}, "cannot be raised from Go code"},
		{"invalid format", []string{"simulate", "--signal", "SEGV", "--format", "xml"}, "invalid format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			_, err := execute(tt.args...)
			assert.ErrorContains(t, err, tt.errorMsg)
			assert.Nil(t, crashhandler.Active(), "no handler may be left armed")
		})
	}
}

func TestSysinfoCommand(t *testing.T) {
	resetFlags(t)

	out, err := execute("sysinfo", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"os":`)
	assert.Contains(t, out, `"go_version":`)

	_, err = execute("sysinfo", "--format", "xml")
	assert.ErrorContains(t, err, "invalid format")
}
