// Package stream implements the core's stream processor registry and pump
// (spec.md component H): an ordered, per-transaction, per-direction chain
// of named processors that request/response body bytes are pushed
// through.
package stream

import "go.uber.org/atomic"

// SegmentType distinguishes a data-carrying segment from one that merely
// signals "emit anything you're buffering" (spec.md §3 "Stream data
// segment").
type SegmentType int

const (
	Data SegmentType = iota
	Flush
)

// Segment is a reference-counted chunk flowing through a single push-call.
// A processor that wants to retain a segment past its Execute call must
// call Ref() on it before returning, so it is freed only when the
// refcount drops to zero (spec.md §4.H "Push semantics").
type Segment struct {
	Bytes []byte
	Type  SegmentType

	refcount atomic.Int32
}

func NewDataSegment(b []byte) *Segment {
	s := &Segment{Bytes: b, Type: Data}
	s.refcount.Store(1)
	return s
}

func NewFlushSegment() *Segment {
	s := &Segment{Type: Flush}
	s.refcount.Store(1)
	return s
}

// Ref increments the segment's refcount; call before retaining it beyond
// the current Execute invocation.
func (s *Segment) Ref() { s.refcount.Inc() }

// Release decrements the refcount and reports whether it reached zero
// (i.e. the segment is now free to discard).
func (s *Segment) Release() bool {
	return s.refcount.Dec() == 0
}

// IOTransaction carries the in-flight segment queue for one push/flush
// call through the processor chain (spec.md §3 "Stream pump": "carries an
// io transaction that holds the currently-in-flight segment queue").
type IOTransaction struct {
	queue []*Segment
}

// Take removes and returns every segment currently queued. Processors call
// this to pop their input.
func (io *IOTransaction) Take() []*Segment {
	q := io.queue
	io.queue = nil
	return q
}

// Put appends zero or more segments back onto the queue for the next
// processor in the chain to consume.
func (io *IOTransaction) Put(segs ...*Segment) {
	io.queue = append(io.queue, segs...)
}

// Peek reports the segments currently queued without removing them.
func (io *IOTransaction) Peek() []*Segment { return io.queue }
