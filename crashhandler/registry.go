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

// File: crashhandler/registry.go
// Purpose: Installs and removes fault interception for every fault kind the
// host OS defines, remembering what the program had before so it can be
// restored exactly.
//
// The Go runtime owns the real OS handlers. Interception therefore means
// subscribing a channel with os/signal, and the disposition that can be saved
// and restored is whether the signal was ignored. Subscribing un-ignores a
// signal, so unregistering has to ignore it again.

package crashhandler

import (
	"errors"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// ErrAlreadyRegistered is returned when crash handlers are registered twice
// without an intervening unregister.
var ErrAlreadyRegistered = errors.New("crashhandler: crash handlers already registered")

type priorHandler struct {
	kind    FaultKind
	sig     syscall.Signal
	ignored bool
}

// priorHandlerSet exists only while handlers are registered.
type priorHandlerSet struct {
	ch      chan os.Signal
	done    chan struct{}
	entries []priorHandler
}

type registry struct {
	prior   atomic.Pointer[priorHandlerSet]
	onFault func(sig syscall.Signal)
}

func (r *registry) register() error {
	set := &priorHandlerSet{done: make(chan struct{})}
	sigs := make([]os.Signal, 0, len(allKinds))
	for _, kind := range Kinds() {
		sig, _ := kind.Signal()
		set.entries = append(set.entries, priorHandler{
			kind:    kind,
			sig:     sig,
			ignored: signal.Ignored(sig),
		})
		sigs = append(sigs, sig)
	}
	// One slot per kind so a burst of distinct faults never blocks the
	// runtime's signal delivery.
	set.ch = make(chan os.Signal, len(sigs)+1)

	if !r.prior.CompareAndSwap(nil, set) {
		return ErrAlreadyRegistered
	}
	if len(sigs) == 0 {
		return nil
	}

	signal.Notify(set.ch, sigs...)
	go r.trampoline(set)
	return nil
}

// trampoline waits for the first fault of this registration. It disarms every
// kind before handing over, so a repeat fault takes the default action.
func (r *registry) trampoline(set *priorHandlerSet) {
	select {
	case <-set.done:
	case s := <-set.ch:
		r.remove()
		if sig, ok := s.(syscall.Signal); ok && r.onFault != nil {
			r.onFault(sig)
		}
	}
}

// remove restores the saved dispositions and discards them. It is safe to
// call repeatedly and from the crash path; it reports whether anything was
// still registered.
func (r *registry) remove() bool {
	set := r.prior.Swap(nil)
	if set == nil {
		return false
	}
	signal.Stop(set.ch)
	for _, e := range set.entries {
		if e.ignored {
			signal.Ignore(e.sig)
		}
	}
	close(set.done)
	return true
}

func (r *registry) armed(kind FaultKind) bool {
	set := r.prior.Load()
	if set == nil {
		return false
	}
	for _, e := range set.entries {
		if e.kind == kind {
			return true
		}
	}
	return false
}
