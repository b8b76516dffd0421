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

// File: reporter/signal.go
// Purpose: Names and describes the signal recorded for a crash, including the
// signal-specific code when the platform supplied one.

package reporter

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/edespino/cbcrash/crashhandler"
)

// signalMap provides names for common signals.
var signalMap = map[int]string{
	int(syscall.SIGHUP):  "SIGHUP",  // Hangup
	int(syscall.SIGINT):  "SIGINT",  // Terminal interrupt
	int(syscall.SIGQUIT): "SIGQUIT", // Terminal quit
	int(syscall.SIGILL):  "SIGILL",  // Illegal instruction
	int(syscall.SIGABRT): "SIGABRT", // Process abort
	int(syscall.SIGBUS):  "SIGBUS",  // Bus error
	int(syscall.SIGFPE):  "SIGFPE",  // Floating point exception
	int(syscall.SIGKILL): "SIGKILL", // Kill process
	int(syscall.SIGSEGV): "SIGSEGV", // Segmentation violation
	int(syscall.SIGPIPE): "SIGPIPE", // Broken pipe
	int(syscall.SIGALRM): "SIGALRM", // Timer signal
	int(syscall.SIGTERM): "SIGTERM", // Termination
}

// signalCodeMap maps signal-specific codes to descriptions.
var signalCodeMap = map[int]map[int]string{
	int(syscall.SIGSEGV): {
		1: "SEGV_MAPERR (Address not mapped to object)",
		2: "SEGV_ACCERR (Invalid permissions for mapped object)",
		3: "SEGV_BNDERR (Failed address bound checks)",
		4: "SEGV_PKUERR (Access denied by memory protection keys)",
	},
	int(syscall.SIGBUS): {
		1: "BUS_ADRALN (Invalid address alignment)",
		2: "BUS_ADRERR (Nonexistent physical address)",
		3: "BUS_OBJERR (Object-specific hardware error)",
	},
	int(syscall.SIGFPE): {
		1: "FPE_INTDIV (Integer divide by zero)",
		2: "FPE_INTOVF (Integer overflow)",
		3: "FPE_FLTDIV (Floating point divide by zero)",
		4: "FPE_FLTOVF (Floating point overflow)",
		5: "FPE_FLTUND (Floating point underflow)",
		6: "FPE_FLTRES (Floating point inexact result)",
		7: "FPE_FLTINV (Invalid floating point operation)",
		8: "FPE_FLTSUB (Subscript out of range)",
	},
	int(syscall.SIGILL): {
		1: "ILL_ILLOPC (Illegal opcode)",
		2: "ILL_ILLOPN (Illegal operand)",
		3: "ILL_ILLADR (Illegal addressing mode)",
		4: "ILL_ILLTRP (Illegal trap)",
		5: "ILL_PRVOPC (Privileged opcode)",
		6: "ILL_PRVREG (Privileged register)",
		7: "ILL_COPROC (Coprocessor error)",
		8: "ILL_BADSTK (Internal stack error)",
	},
}

// newSignalInfo describes a recorded fault.
func newSignalInfo(signo, code int, addr uintptr) SignalInfo {
	info := SignalInfo{
		SignalNumber:      signo,
		SignalCode:        code,
		SignalName:        getSignalName(signo),
		SignalDescription: getSignalDescription(signo, code),
	}
	if addr != 0 {
		info.FaultAddress = fmt.Sprintf("0x%x", addr)
	}
	return info
}

// getSignalName converts a signal number to its corresponding name.
func getSignalName(signo int) string {
	if name, ok := signalMap[signo]; ok {
		return name
	}
	return fmt.Sprintf("SIGNAL_%d", signo)
}

// getSignalDescription provides a description of a signal and, when known,
// of its code. UnknownCode adds nothing.
func getSignalDescription(signo, code int) string {
	var desc strings.Builder

	switch signo {
	case int(syscall.SIGSEGV):
		desc.WriteString("Segmentation fault")
	case int(syscall.SIGABRT):
		desc.WriteString("Process abort signal (possibly assertion failure or unrecovered panic)")
	case int(syscall.SIGBUS):
		desc.WriteString("Bus error")
	case int(syscall.SIGFPE):
		desc.WriteString("Floating point exception")
	case int(syscall.SIGILL):
		desc.WriteString("Illegal instruction")
	default:
		desc.WriteString(fmt.Sprintf("Signal %d", signo))
	}

	if code == crashhandler.UnknownCode {
		return desc.String()
	}
	if codes, ok := signalCodeMap[signo]; ok {
		if codeDesc, ok := codes[code]; ok {
			desc.WriteString(fmt.Sprintf(" - %s", codeDesc))
		} else if code != 0 {
			desc.WriteString(fmt.Sprintf(" (code %d)", code))
		}
	}

	return desc.String()
}
