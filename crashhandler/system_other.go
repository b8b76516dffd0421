//go:build !unix

// File: crashhandler/system_other.go

package crashhandler

import (
	"errors"
	"os"
	"time"
)

type osSystem struct{}

func platformCapabilities() Capabilities {
	return Capabilities{Backtrace: true, Sleep: true}
}

func (osSystem) startReporter(string, []string) (int, error) {
	return 0, errors.ErrUnsupported
}

func (osSystem) exited(int) bool { return false }

func (osSystem) allowTracer(int) {}

func (osSystem) sleep(d time.Duration) { time.Sleep(d) }

func (osSystem) now() time.Time { return time.Now() }

func (osSystem) kill() { os.Exit(2) }

func (osSystem) abort() { os.Exit(2) }
