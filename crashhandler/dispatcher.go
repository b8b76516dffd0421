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

// File: crashhandler/dispatcher.go
// Purpose: The body of the fault handler. Everything reachable from
// handleCrash runs on the crash path: it writes only into memory allocated at
// initialization, takes no locks of its own and never returns control to the
// faulted program.

package crashhandler

import (
	"os"
	"syscall"
)

// handleSignal is the registry's fault callback.
func (h *Handler) handleSignal(sig syscall.Signal) {
	if !h.crashing.CompareAndSwap(false, true) {
		// Another crash episode owns the process and will terminate it.
		return
	}
	h.handleCrash(int(sig), UnknownCode, 0)
}

// handleCrash disarms, runs callbacks, fills the record, hands it off and
// terminates. With the real system it does not return.
func (h *Handler) handleCrash(signal, code int, addr uintptr) {
	// Other kinds are still armed; a distinct fault during reporting must not
	// re-enter here.
	h.registry.remove()

	if list := h.callbacks.Load(); list != nil {
		for _, cb := range *list {
			cb()
		}
	}

	h.record.setFault(h.pid, signal, code, addr)

	if h.caps.Backtrace {
		h.record.captureBacktrace(1)
		h.record.captureStacks()
	}

	h.handoff.run(h)

	h.handled.Store(true)
	h.sys.abort()
}

func writeStderr(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}
