//go:build unix && !linux

// File: crashhandler/ptrace_other.go

package crashhandler

func allowPtrace(int) {}
