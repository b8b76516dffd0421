// File: reporter/testdata_test.go
package reporter

import (
	"fmt"
	"sync"
	"testing"

	"github.com/edespino/cbcrash/crashhandler"
	"github.com/edespino/cbcrash/sysinfo"
)

// sampleDump is a goroutine dump as captured by the crash handler after a nil
// dereference in main.loadConfig.
const sampleDump = `goroutine 18 gp=0xc000007a40 m=0 mp=0x6e4b40 [running]:
github.com/edespino/cbcrash/crashhandler.(*Record).captureStacks(...)
	/src/cbcrash/crashhandler/record.go:213
github.com/edespino/cbcrash/crashhandler.(*Handler).handleCrash(0xc000120000, 0xb, 0xffffffffffffffff, 0x0)
	/src/cbcrash/crashhandler/dispatcher.go:52 +0x11d
github.com/edespino/cbcrash/crashhandler.Recover()
	/src/cbcrash/crashhandler/recover.go:33 +0x125
panic({0x5a1b20?, 0x7d8f30?})
	/usr/local/go/src/runtime/panic.go:770 +0x132
runtime.panicmem(...)
	/usr/local/go/src/runtime/panic.go:261
runtime.sigpanic()
	/usr/local/go/src/runtime/signal_unix.go:881 +0x378
main.loadConfig(0x0)
	/src/app/config.go:42 +0x1b
main.run()
	/src/app/main.go:17 +0x25
github.com/edespino/cbcrash/crashhandler.Guard(0x5c3d28)
	/src/cbcrash/crashhandler/recover.go:51 +0x6b
main.main()
	/src/app/main.go:10 +0x3f

goroutine 1 [chan receive, 2 minutes]:
os/signal.signal_recv()
	/usr/local/go/src/runtime/sigqueue.go:152 +0x29
os/signal.loop()
	/usr/local/go/src/os/signal/signal_unix.go:23 +0x13
created by os/signal.Notify.func1.1 in goroutine 1
	/usr/local/go/src/os/signal/signal.go:151 +0x1f
`

// fakeSource is a crash record held in memory.
type fakeSource struct {
	mu       sync.Mutex
	name     string
	snap     crashhandler.Snapshot
	signaled bool
}

func (f *fakeSource) Name() string                    { return f.name }
func (f *fakeSource) HasFault() bool                  { return f.snap.Signal != crashhandler.NoFault }
func (f *fakeSource) Snapshot() crashhandler.Snapshot { return f.snap }

func (f *fakeSource) SignalExit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signaled = true
}

func (f *fakeSource) exitSignaled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signaled
}

// stubSysInfo replaces system information collection for the test.
func stubSysInfo(t *testing.T) {
	t.Helper()
	orig := collectSysInfo
	collectSysInfo = func() (sysinfo.SysInfo, []error) {
		return sysinfo.SysInfo{OS: "linux", Architecture: "amd64", Hostname: "seg1", CPUs: 8}, []error{fmt.Errorf("kernel: failed to retrieve version")}
	}
	t.Cleanup(func() { collectSysInfo = orig })
}
