package stream

import (
	"github.com/httpinspect/engine/entity"
	"github.com/httpinspect/engine/internal/status"
)

// bodySink is the minimal surface the raw processor needs onto the
// transaction's request or response body buffer. Length metering
// (spec.md §4.G.10) is the notifier's responsibility, not the
// processor's, so the raw processor only ever appends to buf.
type bodySink struct {
	buf *[]byte
}

// newRawProcessor builds the core's built-in body-buffering processor
// (spec.md §4.H: "the core inserts a raw processor at index 0 on each
// direction, which buffers body data into the transaction's body buffer
// up to a configured limit... and forwards the data"). It buffers only up
// to limit bytes but forwards every byte unchanged to downstream
// processors (spec.md §8.8 "Buffer limit").
func newRawProcessor(limit int64, sink bodySink) *Processor {
	return &Processor{
		Name:  "raw",
		Types: nil, // applies to everything
		Instantiate: func(tx *entity.Transaction) (interface{}, error) {
			return nil, nil
		},
		Execute: func(_ interface{}, _ *entity.Transaction, ioTx *IOTransaction) status.Code {
			segs := ioTx.Take()
			for _, seg := range segs {
				if seg.Type == Data && len(seg.Bytes) > 0 {
					remaining := limit - int64(len(*sink.buf))
					if remaining > 0 {
						n := int64(len(seg.Bytes))
						if n > remaining {
							n = remaining
						}
						*sink.buf = append(*sink.buf, seg.Bytes[:n]...)
					}
				}
			}
			ioTx.Put(segs...)
			return status.OK
		},
	}
}
