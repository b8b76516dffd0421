//go:build unix

// File: crashhandler/fault_unix.go

package crashhandler

import (
	"syscall"

	"golang.org/x/sys/unix"
)

var faultSignals = map[FaultKind]syscall.Signal{
	IllegalInstruction: unix.SIGILL,
	Abort:              unix.SIGABRT,
	BusError:           unix.SIGBUS,
	FPException:        unix.SIGFPE,
	Segv:               unix.SIGSEGV,
}
