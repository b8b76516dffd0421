// File: crashhandler/system.go

package crashhandler

import "time"

// system abstracts the process primitives used after a fault. Every method
// must be usable from the crash path: no locks, and nothing that can block
// indefinitely.
type system interface {
	// startReporter launches exe with args and returns the child pid.
	startReporter(exe string, args []string) (int, error)
	// exited polls without blocking whether the child is gone.
	exited(pid int) bool
	// allowTracer lets pid attach to this process with ptrace where supported.
	allowTracer(pid int)
	sleep(d time.Duration)
	now() time.Time
	// kill terminates this process with an uncatchable signal.
	kill()
	// abort terminates this process abnormally. It does not return.
	abort()
}
