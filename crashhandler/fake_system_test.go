// File: crashhandler/fake_system_test.go
package crashhandler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeSystem records what the crash path asked for instead of doing it.
type fakeSystem struct {
	mu sync.Mutex

	startErr   error
	onStart    func(exe string, args []string)
	exitAfter  int // polls before the child counts as exited, -1 for never
	polls      int
	clock      time.Time
	sleeps     int
	startedExe string
	started    []string
	tracer     int
	killed     int

	aborted chan struct{}
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{
		exitAfter: -1,
		clock:     time.Unix(1700000000, 0),
		aborted:   make(chan struct{}, 4),
	}
}

func (f *fakeSystem) startReporter(exe string, args []string) (int, error) {
	f.mu.Lock()
	f.startedExe = exe
	f.started = append([]string(nil), args...)
	onStart, err := f.onStart, f.startErr
	f.mu.Unlock()

	if err != nil {
		return 0, err
	}
	if onStart != nil {
		onStart(exe, args)
	}
	return 4242, nil
}

func (f *fakeSystem) exited(int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	return f.exitAfter >= 0 && f.polls > f.exitAfter
}

func (f *fakeSystem) allowTracer(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracer = pid
}

func (f *fakeSystem) sleep(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sleeps++
	f.clock = f.clock.Add(d)
}

func (f *fakeSystem) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clock
}

func (f *fakeSystem) kill() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.killed++
}

func (f *fakeSystem) abort() {
	f.aborted <- struct{}{}
}

func (f *fakeSystem) waitAborted(t *testing.T) {
	t.Helper()
	select {
	case <-f.aborted:
	case <-time.After(10 * time.Second):
		t.Fatal("crash handler never terminated the process")
	}
}

// newTestHandler returns an initialized handler wired to a fake system.
func newTestHandler(t *testing.T, cfg Config) (*Handler, *fakeSystem) {
	t.Helper()
	fake := newFakeSystem()
	h := New(cfg)
	h.sys = fake
	require.NoError(t, h.Initialize())
	t.Cleanup(func() {
		h.Shutdown()
	})
	return h, fake
}
