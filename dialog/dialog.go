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

// File: dialog/dialog.go
// Package: dialog
//
// Description:
// Package dialog presents messages to the user. There is no windowing system
// behind it: every message is printed on its own line and questions are
// answered with the affirmative choice immediately. The title is accepted for
// callers that pass one and is not printed.
//
// Usage:
//   dialog.ShowError("The program crashed.", "Crash")
//   if dialog.AskYesNo("Save a report?", "Crash") { ... }
//
// Authors:
// - Cloudberry Open Source Contributors

package dialog

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Dialog writes messages to an output stream.
type Dialog struct {
	mu  sync.Mutex
	out io.Writer
}

// New returns a Dialog printing to w. A nil w discards output.
func New(w io.Writer) *Dialog {
	if w == nil {
		w = io.Discard
	}
	return &Dialog{out: w}
}

// SetOutput replaces the output stream.
func (d *Dialog) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.out = w
}

func (d *Dialog) print(message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintln(d.out, message)
}

// ShowInfo shows an informative message.
func (d *Dialog) ShowInfo(message, title string) {
	d.print(message)
}

// ShowWarning shows a warning.
func (d *Dialog) ShowWarning(message, title string) {
	d.print(message)
}

// ShowError shows an error message.
func (d *Dialog) ShowError(message, title string) {
	d.print(message)
}

// AskYesNo shows question and reports whether the answer was yes. Without an
// interactive surface the answer is always yes.
func (d *Dialog) AskYesNo(question, title string) bool {
	d.print(question)
	return true
}

// AskYesNoWarning is AskYesNo presented as a warning.
func (d *Dialog) AskYesNoWarning(question, title string) bool {
	d.print(question)
	return true
}

// AskOkCancel shows question and reports whether the answer was ok. Without
// an interactive surface the answer is always ok.
func (d *Dialog) AskOkCancel(question, title string) bool {
	d.print(question)
	return true
}

var std = New(os.Stdout)

// Default returns the Dialog used by the package level functions.
func Default() *Dialog { return std }

// SetOutput sets the output stream of the default Dialog.
func SetOutput(w io.Writer) { std.SetOutput(w) }

func ShowInfo(message, title string)    { std.ShowInfo(message, title) }
func ShowWarning(message, title string) { std.ShowWarning(message, title) }
func ShowError(message, title string)   { std.ShowError(message, title) }

func AskYesNo(question, title string) bool        { return std.AskYesNo(question, title) }
func AskYesNoWarning(question, title string) bool { return std.AskYesNoWarning(question, title) }
func AskOkCancel(question, title string) bool     { return std.AskOkCancel(question, title) }
