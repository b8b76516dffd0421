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

// File: crashhandler/record.go
// Purpose: The crash info record shared between the crashing process and the
// reporter process. The layout is fixed so the reporter, started from the same
// executable, can overlay it on the mapped segment.
//
// The record is written once by the crashing process before any reader is
// started, so no lock protects it. Only the exit lock is touched by both sides
// and it is accessed atomically.

package crashhandler

import (
	"errors"
	"runtime"
	"sync/atomic"
	"time"
	"unsafe"
)

const (
	// MaxFrames is the number of backtrace frames a record keeps. Deeper
	// stacks are truncated.
	MaxFrames = 128

	// StackCapacity is the number of goroutine dump bytes a record keeps.
	StackCapacity = 64 << 10

	recordMagic   = 0x43425243 // "CBRC"
	recordVersion = 2

	segmentPrefix = "cbcrash-"
)

// ErrBadRecord is returned when an attached segment does not hold a record.
var ErrBadRecord = errors.New("crashhandler: segment does not contain a crash record")

// crashInfo is the shared layout. It must not contain Go pointers.
type crashInfo struct {
	magic      uint32
	version    uint32
	pid        int32
	signal     int32
	code       int32
	exitLock   uint32
	frames     uint32
	stackLen   uint32
	btTrunc    uint32
	stackTrunc uint32
	faultAddr  uint64
	timestamp  int64

	// One spare slot each, so a full buffer can be told from a truncated one.
	backtrace [MaxFrames + 1]uintptr
	stack     [StackCapacity + 1]byte
}

var recordSize = int(unsafe.Sizeof(crashInfo{}))

// Record is a handle on a crash info record, either in a shared segment or in
// process memory when shared memory is unavailable.
type Record struct {
	info *crashInfo
	seg  *segment
}

// Snapshot is a copy of the record fields taken by a reader.
type Snapshot struct {
	PID       int
	Signal    int
	Code      int
	FaultAddr uintptr
	Time      time.Time
	Backtrace []uintptr
	Stack     []byte

	BacktraceTruncated bool
	StackTruncated     bool
}

func newHeapRecord() *Record {
	r := &Record{info: new(crashInfo)}
	r.reset()
	return r
}

func newSharedRecord() (*Record, error) {
	seg, err := createSegment(recordSize)
	if err != nil {
		return nil, err
	}
	r := &Record{info: (*crashInfo)(unsafe.Pointer(&seg.mem[0])), seg: seg}
	r.reset()
	return r, nil
}

// Attach maps the record published under name by a crashing process.
func Attach(name string) (*Record, error) {
	seg, err := openSegment(name, recordSize)
	if err != nil {
		return nil, err
	}
	r := &Record{info: (*crashInfo)(unsafe.Pointer(&seg.mem[0])), seg: seg}
	if r.info.magic != recordMagic || r.info.version != recordVersion {
		seg.unmap()
		return nil, ErrBadRecord
	}
	return r, nil
}

// Name returns the shared memory name, or "" for a process-local record.
func (r *Record) Name() string {
	if r.seg == nil {
		return ""
	}
	return r.seg.name
}

// Shared reports whether a second process can attach to the record.
func (r *Record) Shared() bool {
	return r.seg != nil
}

// Close releases the record memory. It does not remove the segment. After
// Close the record reads as empty and SignalExit does nothing.
func (r *Record) Close() error {
	r.info = nil
	if r.seg == nil {
		return nil
	}
	return r.seg.unmap()
}

// Remove deletes the named segment. Existing mappings stay valid.
func (r *Record) Remove() error {
	if r.seg == nil {
		return nil
	}
	return r.seg.remove()
}

// HasFault reports whether a fault has been written.
func (r *Record) HasFault() bool {
	return r.info != nil && r.info.signal != NoFault
}

// Snapshot copies the record fields, clamped to the buffer capacities.
func (r *Record) Snapshot() Snapshot {
	if r.info == nil {
		return Snapshot{}
	}
	frames := int(r.info.frames)
	if frames > MaxFrames {
		frames = MaxFrames
	}
	stackLen := int(r.info.stackLen)
	if stackLen > StackCapacity {
		stackLen = StackCapacity
	}

	s := Snapshot{
		PID:       int(r.info.pid),
		Signal:    int(r.info.signal),
		Code:      int(r.info.code),
		FaultAddr: uintptr(r.info.faultAddr),
		Backtrace: append([]uintptr(nil), r.info.backtrace[:frames]...),
		Stack:     append([]byte(nil), r.info.stack[:stackLen]...),

		BacktraceTruncated: r.info.btTrunc != 0,
		StackTruncated:     r.info.stackTrunc != 0,
	}
	if r.info.timestamp != 0 {
		s.Time = time.Unix(0, r.info.timestamp)
	}
	return s
}

// SignalExit marks the record as consumed. The crashing process stops
// waiting for the reporter once it observes this.
func (r *Record) SignalExit() {
	if r.info == nil {
		return
	}
	atomic.StoreUint32(&r.info.exitLock, 1)
}

// TryWaitExit consumes a pending exit signal without blocking.
func (r *Record) TryWaitExit() bool {
	if r.info == nil {
		return false
	}
	return atomic.CompareAndSwapUint32(&r.info.exitLock, 1, 0)
}

func (r *Record) reset() {
	*r.info = crashInfo{}
	r.info.magic = recordMagic
	r.info.version = recordVersion
	r.info.signal = NoFault
}

// The methods below run on the crash path and only write into the record.

func (r *Record) setFault(pid, signal, code int, addr uintptr) {
	r.info.pid = int32(pid)
	r.info.signal = int32(signal)
	r.info.code = int32(code)
	r.info.faultAddr = uint64(addr)
	r.info.timestamp = time.Now().UnixNano()
}

// captureBacktrace stores return addresses starting at its caller, after
// skipping skip further frames.
func (r *Record) captureBacktrace(skip int) {
	n := runtime.Callers(skip+2, r.info.backtrace[:])
	if n > MaxFrames {
		n = MaxFrames
		r.info.btTrunc = 1
	}
	r.info.frames = uint32(n)
}

// captureStacks stores the text dump of every goroutine.
func (r *Record) captureStacks() {
	n := runtime.Stack(r.info.stack[:], true)
	if n > StackCapacity {
		n = StackCapacity
		r.info.stackTrunc = 1
	}
	r.info.stackLen = uint32(n)
}
