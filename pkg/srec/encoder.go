// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package srec

// State is the lifecycle state of an encoding session.
type State int

// Encoder states
const (
	StateReady State = iota
	StateAccumulating
	StateFinished
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateAccumulating:
		return "ACCUMULATING"
	case StateFinished:
		return "FINISHED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Stats is a snapshot of an encoding session.
type Stats struct {
	State       State
	DataRecords uint16 // S1 records written, as reported by the S5 record
	Bytes       uint64 // data bytes accepted
	Pending     int    // bytes waiting in the current line
	Address     uint16 // address of the next byte
}

// Encoder streams addressed bytes out as S-Records.
//
// Bytes are collected into lines of up to MaxLine bytes covering one
// contiguous address run. A line is written when it fills, when the
// address jumps, or on Finish. The S0 header goes out lazily right before
// the first S1 record.
//
// The zero value is a ready encoder with no sink. An Encoder is not safe
// for concurrent use.
type Encoder struct {
	emitter recordEmitter
	line    lineBuffer
	state   State
	started bool   // header written
	lines   uint16 // data records written
	bytes   uint64
}

// NewEncoder creates an encoder writing to sink. The sink may be nil and
// attached later.
func NewEncoder(sink LineSink) *Encoder {
	e := &Encoder{}
	e.emitter.sink = sink
	return e
}

// Attach sets the sink that receives records. It does not change the
// session state.
func (e *Encoder) Attach(sink LineSink) {
	e.emitter.sink = sink
}

// Reset starts a new session at address 0. The attached sink is kept.
func (e *Encoder) Reset() {
	e.line.reset(0)
	e.emitter.sum = checksum{}
	e.state = StateReady
	e.started = false
	e.lines = 0
	e.bytes = 0
}

// SetAddress sets the address of the next byte. If it continues the
// current run nothing happens; otherwise the pending line is written
// first.
func (e *Encoder) SetAddress(address uint16) error {
	if err := e.check(); err != nil {
		return err
	}
	e.state = StateAccumulating
	if address == e.line.next() {
		return nil
	}
	if !e.line.empty() {
		if err := e.flush(); err != nil {
			return err
		}
	}
	e.line.reset(address)
	return nil
}

// AppendByte adds one data byte at the current address.
func (e *Encoder) AppendByte(b byte) error {
	if err := e.check(); err != nil {
		return err
	}
	e.state = StateAccumulating
	e.line.append(b)
	e.bytes++

	// A record never crosses the top of the 16-bit address space.
	if e.line.full() || e.line.wrapsNext() {
		return e.flush()
	}
	return nil
}

// Write appends p byte by byte, implementing io.Writer. It returns the
// number of bytes accepted before the first error.
func (e *Encoder) Write(p []byte) (int, error) {
	for i, b := range p {
		if err := e.AppendByte(b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// Finish writes any pending data, then the S5 count record and the S9
// record carrying the entry address. No further data is accepted until
// Reset.
func (e *Encoder) Finish(entry uint16) error {
	if err := e.check(); err != nil {
		return err
	}
	if !e.line.empty() {
		if err := e.flush(); err != nil {
			return err
		}
	}
	if err := e.emitter.emitCount(e.lines); err != nil {
		return e.fail(err)
	}
	if err := e.emitter.emitEntry(entry); err != nil {
		return e.fail(err)
	}
	e.state = StateFinished
	return nil
}

// Stats returns a snapshot of the session.
func (e *Encoder) Stats() Stats {
	return Stats{
		State:       e.state,
		DataRecords: e.lines,
		Bytes:       e.bytes,
		Pending:     e.line.count,
		Address:     e.line.next(),
	}
}

func (e *Encoder) check() error {
	switch e.state {
	case StateFinished:
		return ErrFinished
	case StateFailed:
		return ErrFailed
	}
	if e.emitter.sink == nil {
		return ErrNoSink
	}
	return nil
}

// flush writes the pending line as an S1 record and starts the next line
// where this one ended.
func (e *Encoder) flush() error {
	if !e.started {
		if err := e.emitter.emitHeader(); err != nil {
			return e.fail(err)
		}
		e.started = true
	}
	if err := e.emitter.emitData(e.line.address, e.line.payload()); err != nil {
		return e.fail(err)
	}
	e.lines++
	e.line.reset(e.line.next())
	return nil
}

func (e *Encoder) fail(err error) error {
	e.state = StateFailed
	return err
}
