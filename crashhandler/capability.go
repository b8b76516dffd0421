// File: crashhandler/capability.go

package crashhandler

// Capabilities describes the optional OS facilities the crash path can use.
// It is resolved once at initialization; each missing facility maps to one
// degraded behavior instead of an error:
//   - Backtrace: without it the record carries no frames or goroutine dump.
//   - ProcessSpawn: without it crashes are processed in-process.
//   - NonBlockingWait: without it the handoff cannot see the reporter exit and
//     relies on the exit lock and the reporter timeout.
//   - Sleep: without it the handoff busy-polls until the timeout.
type Capabilities struct {
	Backtrace       bool `json:"backtrace" yaml:"backtrace"`
	ProcessSpawn    bool `json:"process_spawn" yaml:"process_spawn"`
	NonBlockingWait bool `json:"non_blocking_wait" yaml:"non_blocking_wait"`
	Sleep           bool `json:"sleep" yaml:"sleep"`
}

// DetectCapabilities reports the facilities available on the host OS.
func DetectCapabilities() Capabilities {
	return platformCapabilities()
}
