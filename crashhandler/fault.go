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

// File: crashhandler/fault.go
// Purpose: Defines the set of fatal faults the crash handler intercepts and maps
// each of them to the signal the host OS uses for it. Kinds the OS does not
// define are simply missing from the table.

package crashhandler

import (
	"fmt"
	"syscall"
)

// FaultKind identifies one class of fatal process failure.
type FaultKind int

const (
	IllegalInstruction FaultKind = iota
	Abort
	BusError
	FPException
	Segv
)

// NoFault is the value of a record's fault signal before any crash.
const NoFault = 0

// UnknownCode is stored as the fault code when the platform cannot supply one.
const UnknownCode = -1

// allKinds lists every kind in registration order.
var allKinds = []FaultKind{IllegalInstruction, Abort, BusError, FPException, Segv}

var kindNames = map[FaultKind]string{
	IllegalInstruction: "SIGILL",
	Abort:              "SIGABRT",
	BusError:           "SIGBUS",
	FPException:        "SIGFPE",
	Segv:               "SIGSEGV",
}

// String returns the conventional signal name of the kind.
func (k FaultKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FaultKind(%d)", int(k))
}

// Signal returns the OS signal for the kind and whether the host OS defines it.
func (k FaultKind) Signal() (syscall.Signal, bool) {
	sig, ok := faultSignals[k]
	return sig, ok
}

// Kinds returns the fault kinds defined on the host OS.
func Kinds() []FaultKind {
	kinds := make([]FaultKind, 0, len(allKinds))
	for _, k := range allKinds {
		if _, ok := faultSignals[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// KindForSignal maps an OS signal back to its fault kind.
func KindForSignal(sig syscall.Signal) (FaultKind, bool) {
	for k, s := range faultSignals {
		if s == sig {
			return k, true
		}
	}
	return 0, false
}

// ParseKind accepts either the signal name ("SIGSEGV") or its short form ("SEGV").
func ParseKind(name string) (FaultKind, error) {
	for k, n := range kindNames {
		if name == n || "SIG"+name == n {
			if _, ok := faultSignals[k]; !ok {
				return 0, fmt.Errorf("fault: %s is not defined on this platform", n)
			}
			return k, nil
		}
	}
	return 0, fmt.Errorf("fault: unknown fault kind %q", name)
}
