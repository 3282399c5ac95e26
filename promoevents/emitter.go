// Package promoevents implements the promotion-event pipeline: an Emitter
// that records promotion timestamps to a flat binary stream as the
// simulation runs, and a QueueDepthAnalyzer that replays such a stream
// offline to estimate concurrent queue depth.
package promoevents

import (
	"encoding/binary"
	"io"
	"math"
)

// Timestamp is the event-trace record type: SN emits cycle counts
// (uint64), MN emits wall-clock seconds (float64). Both encode to 8
// little-endian bytes with no framing.
type Timestamp interface {
	uint64 | float64
}

// Emitter writes one fixed-width timestamp per promotion to w, stopping
// once it has written cap values. A cap of zero means unlimited.
type Emitter[T Timestamp] struct {
	w       io.Writer
	cap     uint64
	written uint64
}

// NewEmitter returns an Emitter that writes at most cap timestamps to w.
func NewEmitter[T Timestamp](w io.Writer, cap uint64) *Emitter[T] {
	return &Emitter[T]{w: w, cap: cap}
}

// Emit writes ts if the emitter's cap has not yet been reached, and
// reports whether a write occurred.
func (e *Emitter[T]) Emit(ts T) (bool, error) {
	if e.cap != 0 && e.written >= e.cap {
		return false, nil
	}

	var buf [8]byte
	switch v := any(ts).(type) {
	case uint64:
		binary.LittleEndian.PutUint64(buf[:], v)
	case float64:
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	}

	if _, err := e.w.Write(buf[:]); err != nil {
		return false, err
	}
	e.written++
	return true, nil
}

// Written reports how many timestamps have been emitted so far.
func (e *Emitter[T]) Written() uint64 { return e.written }
