//go:build !unix

// File: crashhandler/fault_other.go

package crashhandler

import "syscall"

// Platforms without POSIX fault signals register nothing.
var faultSignals = map[FaultKind]syscall.Signal{}
