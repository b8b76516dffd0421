// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// File: crashhandler/handoff.go
// Purpose: Hands a populated record to whatever produces the report. The
// variant is chosen once at initialization: a separate reporter process when
// the platform can start one, the in-process fallback otherwise.

package crashhandler

// handoff delivers the record after a crash. run may return; the dispatcher
// terminates the process afterwards in every case.
type handoff interface {
	run(h *Handler)
}

// outOfProcess starts the executable in crash report mode and waits a bounded
// time for it.
type outOfProcess struct{}

func (outOfProcess) run(h *Handler) {
	args := make([]string, 0, len(h.cfg.Args)+1)
	args = append(args, h.cfg.Args...)
	args = append(args, CrashInfoFlag+"="+h.record.Name())

	pid, err := h.sys.startReporter(h.executable, args)
	if err != nil {
		writeStderr("crashhandler: failed to start crash reporter, processing crash in-process\n")
		inProcess{}.run(h)
		return
	}
	h.sys.allowTracer(pid)

	if !h.waitForReporter(pid) {
		writeStderr("crashhandler: crash reporter did not finish in time\n")
	}

	// The program state is unrecoverable whether or not the report was made.
	h.sys.kill()
}

// waitForReporter polls until the reporter signals the exit lock, exits, or
// the reporter timeout passes. It reports whether the reporter finished.
func (h *Handler) waitForReporter(pid int) bool {
	deadline := h.sys.now().Add(h.cfg.ReporterTimeout)
	for {
		if h.record.TryWaitExit() {
			return true
		}
		if h.caps.NonBlockingWait && h.sys.exited(pid) {
			return true
		}
		if !h.sys.now().Before(deadline) {
			return false
		}
		if h.caps.Sleep {
			h.sys.sleep(h.cfg.PollInterval)
		}
	}
}

// inProcess runs the report routine directly on the faulted process.
type inProcess struct{}

func (inProcess) run(h *Handler) {
	if h.cfg.Processor == nil {
		writeStderr("crashhandler: no crash processor configured\n")
		return
	}
	defer func() {
		if recover() != nil {
			writeStderr("crashhandler: crash processor panicked\n")
		}
	}()
	if err := h.cfg.Processor.ProcessCrash(h.record); err != nil {
		writeStderr("crashhandler: crash processing failed: " + err.Error() + "\n")
	}
}
