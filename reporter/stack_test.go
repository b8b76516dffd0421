// File: reporter/stack_test.go
package reporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGoroutines(t *testing.T) {
	goroutines := ParseGoroutines(sampleDump)
	require.Len(t, goroutines, 2)

	crashed := goroutines[0]
	assert.Equal(t, 18, crashed.ID)
	assert.Equal(t, "running", crashed.State)
	assert.Empty(t, crashed.WaitTime)
	assert.Equal(t, "Crash Handler", crashed.Role)
	require.Len(t, crashed.Backtrace, 10)

	assert.Equal(t, StackFrame{
		Function:   "github.com/edespino/cbcrash/crashhandler.(*Record).captureStacks",
		Arguments:  "...",
		SourceFile: "/src/cbcrash/crashhandler/record.go",
		LineNumber: 213,
	}, crashed.Backtrace[0])
	assert.Equal(t, StackFrame{
		Function:   "github.com/edespino/cbcrash/crashhandler.(*Handler).handleCrash",
		Arguments:  "0xc000120000, 0xb, 0xffffffffffffffff, 0x0",
		SourceFile: "/src/cbcrash/crashhandler/dispatcher.go",
		LineNumber: 52,
		PCOffset:   "0x11d",
	}, crashed.Backtrace[1])
	assert.Equal(t, "panic", crashed.Backtrace[3].Function)
	assert.Equal(t, "{0x5a1b20?, 0x7d8f30?}", crashed.Backtrace[3].Arguments)
	assert.Equal(t, "main.loadConfig", crashed.Backtrace[6].Function)

	other := goroutines[1]
	assert.Equal(t, 1, other.ID)
	assert.Equal(t, "chan receive", other.State)
	assert.Equal(t, "2 minutes", other.WaitTime)
	assert.Equal(t, "Signal Delivery", other.Role)
	assert.Equal(t, "os/signal.Notify.func1.1", other.CreatedBy)
	assert.Len(t, other.Backtrace, 2)
}

func TestParseGoroutinesEdgeCases(t *testing.T) {
	tests := []struct {
		name  string
		dump  string
		count int
	}{
		{"empty", "", 0},
		{"garbage", "not a goroutine dump\n\tat all\n", 0},
		{"header only", "goroutine 7 [select]:\n", 1},
		{"truncated mid frame", "goroutine 7 [running]:\nmain.work(0x1", 1},
		{"created by without goroutine", "goroutine 9 [IO wait]:\nmain.serve()\n\t/a.go:1 +0x1\ncreated by main.main\n\t/a.go:2 +0x2\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, ParseGoroutines(tt.dump), tt.count)
		})
	}

	g := ParseGoroutines("goroutine 9 [IO wait]:\nmain.serve()\n\t/a.go:1 +0x1\ncreated by main.main\n\t/a.go:2 +0x2\n")[0]
	assert.Equal(t, "main.main", g.CreatedBy)
	assert.Equal(t, "IO wait", g.State)
	require.Len(t, g.Backtrace, 1)
	assert.Equal(t, 1, g.Backtrace[0].LineNumber)
}

func TestMarkCrashed(t *testing.T) {
	goroutines := ParseGoroutines(sampleDump)
	assert.Equal(t, 0, markCrashed(goroutines))
	assert.True(t, goroutines[0].IsCrashed)
	assert.False(t, goroutines[1].IsCrashed)

	assert.Equal(t, -1, markCrashed(goroutines[1:]))
}

func TestFindKeyFunction(t *testing.T) {
	goroutines := ParseGoroutines(sampleDump)
	assert.Equal(t, "main.loadConfig", findKeyFunction(goroutines[0].Backtrace))
	assert.Empty(t, findKeyFunction(goroutines[1].Backtrace))
	assert.Empty(t, findKeyFunction(nil))
}

func TestIsSystemFunction(t *testing.T) {
	tests := []struct {
		fn   string
		want bool
	}{
		{"runtime.sigpanic", true},
		{"runtime/debug.Stack", true},
		{"internal/poll.(*FD).Read", true},
		{"os/signal.loop", true},
		{"syscall.Syscall", true},
		{"testing.tRunner", true},
		{"panic", true},
		{"main.main", true},
		{"github.com/edespino/cbcrash/crashhandler.Recover", true},
		{"main.loadConfig", false},
		{"github.com/acme/db.(*Pool).Get", false},
	}
	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			assert.Equal(t, tt.want, isSystemFunction(tt.fn))
		})
	}
}
