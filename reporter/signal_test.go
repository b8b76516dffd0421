// File: reporter/signal_test.go
package reporter

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSignalName(t *testing.T) {
	assert.Equal(t, "SIGSEGV", getSignalName(int(syscall.SIGSEGV)))
	assert.Equal(t, "SIGABRT", getSignalName(int(syscall.SIGABRT)))
	assert.Equal(t, "SIGNAL_99", getSignalName(99))
}

func TestGetSignalDescription(t *testing.T) {
	tests := []struct {
		name  string
		signo int
		code  int
		want  string
	}{
		{"segv maperr", int(syscall.SIGSEGV), 1, "Segmentation fault - SEGV_MAPERR (Address not mapped to object)"},
		{"segv unknown code", int(syscall.SIGSEGV), -1, "Segmentation fault"},
		{"bus unlisted code", int(syscall.SIGBUS), 99, "Bus error (code 99)"},
		{"fpe intdiv", int(syscall.SIGFPE), 1, "Floating point exception - FPE_INTDIV (Integer divide by zero)"},
		{"fpe zero code", int(syscall.SIGFPE), 0, "Floating point exception"},
		{"ill", int(syscall.SIGILL), -1, "Illegal instruction"},
		{"abort", int(syscall.SIGABRT), 0, "Process abort signal (possibly assertion failure or unrecovered panic)"},
		{"other", 99, 3, "Signal 99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getSignalDescription(tt.signo, tt.code))
		})
	}
}

func TestNewSignalInfo(t *testing.T) {
	info := newSignalInfo(int(syscall.SIGBUS), -1, 0xdead)
	assert.Equal(t, int(syscall.SIGBUS), info.SignalNumber)
	assert.Equal(t, -1, info.SignalCode)
	assert.Equal(t, "SIGBUS", info.SignalName)
	assert.Equal(t, "Bus error", info.SignalDescription)
	assert.Equal(t, "0xdead", info.FaultAddress)

	assert.Empty(t, newSignalInfo(int(syscall.SIGSEGV), -1, 0).FaultAddress)
}
