//go:build unix

// File: crashhandler/system_unix.go

package crashhandler

import (
	"os"
	"os/signal"
	"time"

	"golang.org/x/sys/unix"
)

type osSystem struct{}

func platformCapabilities() Capabilities {
	return Capabilities{
		Backtrace:       true,
		ProcessSpawn:    true,
		NonBlockingWait: true,
		Sleep:           true,
	}
}

func (osSystem) startReporter(exe string, args []string) (int, error) {
	argv := append([]string{exe}, args...)
	proc, err := os.StartProcess(exe, argv, &os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	})
	if err != nil {
		return 0, err
	}
	pid := proc.Pid
	// The child stays ours; it is reaped with wait4 below.
	_ = proc.Release()
	return pid, nil
}

func (osSystem) exited(pid int) bool {
	var ws unix.WaitStatus
	wpid, err := unix.Wait4(pid, &ws, unix.WNOHANG, nil)
	if err == unix.EINTR {
		return false
	}
	return wpid != 0 || err != nil
}

func (osSystem) allowTracer(pid int) {
	allowPtrace(pid)
}

func (osSystem) sleep(d time.Duration) {
	time.Sleep(d)
}

func (osSystem) now() time.Time {
	return time.Now()
}

func (osSystem) kill() {
	_ = unix.Kill(unix.Getpid(), unix.SIGKILL)
}

func (osSystem) abort() {
	signal.Reset(unix.SIGABRT)
	_ = unix.Kill(unix.Getpid(), unix.SIGABRT)
	// SIGABRT may be blocked or ignored by the host.
	os.Exit(2)
}
