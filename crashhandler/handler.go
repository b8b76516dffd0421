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

// File: crashhandler/handler.go
// Package: crashhandler
//
// Description:
// Package crashhandler captures fatal faults (SIGILL, SIGABRT, SIGBUS, SIGFPE,
// SIGSEGV and Go runtime fault panics), records them in a shared crash info
// record and hands the record to a reporter process started from the same
// executable with --crashinfo=<name>. Where a reporter cannot be started the
// record is processed in-process. Either way the crashing process terminates
// abnormally.
//
// Usage:
//   h := crashhandler.New(cfg)
//   if err := h.Initialize(); err != nil { ... }
//   defer h.Shutdown()
//   h.AddCallback(flushLogs)
//   if err := h.RegisterCrashHandlers(); err != nil { ... }
//
// Authors:
// - Cloudberry Open Source Contributors

package crashhandler

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// CrashInfoFlag is the command line flag that puts the executable into crash
// report mode. Its value is the shared memory name of the record.
const CrashInfoFlag = "--crashinfo"

var (
	// ErrAlreadyInitialized is returned when a second handler is initialized
	// while another one is active in the process.
	ErrAlreadyInitialized = errors.New("crashhandler: a crash handler is already active")

	// ErrNotInitialized is returned by operations that need Initialize first.
	ErrNotInitialized = errors.New("crashhandler: handler not initialized")
)

// active is the process-wide handler reached by the signal trampoline and by
// Recover. It is set by Initialize and cleared by Shutdown.
var active atomic.Pointer[Handler]

// Active returns the handler installed by Initialize, or nil.
func Active() *Handler {
	return active.Load()
}

// Processor turns a populated record into a report. It is the routine the
// reporter process runs, and the one the in-process fallback calls directly.
type Processor interface {
	ProcessCrash(rec *Record) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(rec *Record) error

func (f ProcessorFunc) ProcessCrash(rec *Record) error {
	return f(rec)
}

// Config controls how crashes are handed off.
type Config struct {
	// Executable is started as the reporter. Defaults to os.Executable().
	Executable string
	// Args are passed to the reporter before the --crashinfo flag.
	Args []string
	// ReporterTimeout bounds how long the crashing process waits for the
	// reporter before killing itself.
	ReporterTimeout time.Duration
	// PollInterval is the sleep between checks while waiting.
	PollInterval time.Duration
	// InProcess disables the reporter process.
	InProcess bool
	// Processor runs in-process when no reporter can be started.
	Processor Processor
}

// DefaultConfig returns the settings used when fields are left zero.
func DefaultConfig() Config {
	return Config{
		ReporterTimeout: 5 * time.Second,
		PollInterval:    100 * time.Microsecond,
	}
}

// Handler owns the crash info record, the callbacks and the registered fault
// handlers of one process.
type Handler struct {
	cfg        Config
	caps       Capabilities
	sys        system
	executable string
	pid        int

	record   *Record
	registry registry
	handoff  handoff

	cbMu      sync.Mutex
	callbacks atomic.Pointer[[]func()]

	// crashing is claimed by the first crash episode, or by Shutdown so no
	// episode can start on a released record. handled is set once an episode
	// is done with the record and only termination is left.
	crashing    atomic.Bool
	handled     atomic.Bool
	initialized atomic.Bool
}

// New returns an uninitialized handler.
func New(cfg Config) *Handler {
	def := DefaultConfig()
	if cfg.ReporterTimeout <= 0 {
		cfg.ReporterTimeout = def.ReporterTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	h := &Handler{
		cfg:  cfg,
		caps: DetectCapabilities(),
		sys:  osSystem{},
	}
	h.registry.onFault = h.handleSignal
	return h
}

// Initialize allocates the crash info record and makes h the process-wide
// handler. If shared memory is unavailable the record lives in process memory
// and crashes are processed in-process.
func (h *Handler) Initialize() error {
	if h.initialized.Load() {
		return nil
	}
	if !active.CompareAndSwap(nil, h) {
		return ErrAlreadyInitialized
	}

	rec, err := newSharedRecord()
	if err != nil {
		fmt.Fprintf(os.Stderr, "crashhandler: %v; crashes will be processed in-process\n", err)
		rec = newHeapRecord()
	}
	h.record = rec
	h.pid = os.Getpid()

	h.executable = h.cfg.Executable
	if h.executable == "" {
		if exe, err := os.Executable(); err == nil {
			h.executable = exe
		}
	}

	h.handoff = h.selectHandoff()
	h.crashing.Store(false)
	h.handled.Store(false)
	h.initialized.Store(true)
	return nil
}

// Shutdown unregisters the fault handlers, releases the record and clears the
// process-wide handler. A crash episode still in progress keeps the record
// until it terminates the process.
func (h *Handler) Shutdown() error {
	if !h.initialized.Load() {
		return nil
	}
	h.UnregisterCrashHandlers()
	h.initialized.Store(false)
	active.CompareAndSwap(h, nil)

	if !h.crashing.CompareAndSwap(false, true) && !h.handled.Load() {
		return nil
	}
	rec := h.record
	h.record = nil

	var errs []error
	if err := rec.Close(); err != nil {
		errs = append(errs, fmt.Errorf("crashhandler: failed to unmap record: %w", err))
	}
	if err := rec.Remove(); err != nil {
		errs = append(errs, fmt.Errorf("crashhandler: failed to remove record: %w", err))
	}
	return errors.Join(errs...)
}

// RegisterCrashHandlers starts intercepting every fault kind the OS defines.
// Registering twice without UnregisterCrashHandlers returns
// ErrAlreadyRegistered.
func (h *Handler) RegisterCrashHandlers() error {
	if !h.initialized.Load() {
		return ErrNotInitialized
	}
	if err := h.registry.register(); err != nil {
		return err
	}
	return h.RegisterThreadCrashHandlers()
}

// UnregisterCrashHandlers restores the dispositions saved at registration.
func (h *Handler) UnregisterCrashHandlers() {
	h.UnregisterThreadCrashHandlers()
	h.registry.remove()
}

// RegisterThreadCrashHandlers is a no-op: fault signals are process wide.
func (h *Handler) RegisterThreadCrashHandlers() error {
	return nil
}

// UnregisterThreadCrashHandlers is a no-op: fault signals are process wide.
func (h *Handler) UnregisterThreadCrashHandlers() {}

// Armed reports whether kind is currently intercepted.
func (h *Handler) Armed(kind FaultKind) bool {
	return h.registry.armed(kind)
}

// AddCallback registers cb to run when a crash is handled, before the record
// is written. Callbacks run once, in registration order, on the crash path:
// they must not block and should avoid anything that can fault again.
func (h *Handler) AddCallback(cb func()) {
	h.cbMu.Lock()
	defer h.cbMu.Unlock()

	var list []func()
	if cur := h.callbacks.Load(); cur != nil {
		list = append(list, (*cur)...)
	}
	list = append(list, cb)
	h.callbacks.Store(&list)
}

// Record returns the crash info record, or nil outside Initialize/Shutdown.
func (h *Handler) Record() *Record {
	return h.record
}

// SharedMemoryName returns the name a reporter attaches to, or "" when the
// record is not shared.
func (h *Handler) SharedMemoryName() string {
	if h.record == nil {
		return ""
	}
	return h.record.Name()
}

// Capabilities returns the facilities detected for this handler.
func (h *Handler) Capabilities() Capabilities {
	return h.caps
}

// OutOfProcess reports whether crashes are handed to a reporter process.
func (h *Handler) OutOfProcess() bool {
	_, ok := h.handoff.(outOfProcess)
	return ok
}

func (h *Handler) selectHandoff() handoff {
	if h.cfg.InProcess || !h.caps.ProcessSpawn || !h.record.Shared() || h.executable == "" {
		return inProcess{}
	}
	return outOfProcess{}
}
