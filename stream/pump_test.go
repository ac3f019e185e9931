package stream

import (
	"bytes"
	"testing"

	"github.com/httpinspect/engine/arena"
	"github.com/httpinspect/engine/entity"
	"github.com/httpinspect/engine/internal/status"
)

func newTestTx(t *testing.T) *entity.Transaction {
	t.Helper()
	conn := entity.NewConnection(arena.Root(), 0)
	return conn.CreateTx()
}

// TestBufferLimit is spec.md §8 scenario S7: limit=8, push "abcdefghij"
// (10 bytes); body buffer contains exactly "abcdefgh", downstream
// processors still observe the full 10 bytes.
func TestBufferLimit(t *testing.T) {
	tx := newTestTx(t)
	reg := NewRegistry()
	var seen []byte
	reg.Register(&Processor{
		Name: "observer",
		Instantiate: func(*entity.Transaction) (interface{}, error) { return nil, nil },
		Execute: func(_ interface{}, _ *entity.Transaction, ioTx *IOTransaction) status.Code {
			segs := ioTx.Take()
			for _, seg := range segs {
				if seg.Type == Data {
					seen = append(seen, seg.Bytes...)
				}
			}
			ioTx.Put(segs...)
			return status.OK
		},
	})

	pump, err := NewPump(reg, tx, Request, "raw", 8, &tx.ReqBody)
	if err != nil {
		t.Fatal(err)
	}
	if err := pump.Push([]byte("abcdefghij")); err != nil {
		t.Fatal(err)
	}
	if string(tx.ReqBody) != "abcdefgh" {
		t.Fatalf("expected body buffer capped at limit, got %q", tx.ReqBody)
	}
	if !bytes.Equal(seen, []byte("abcdefghij")) {
		t.Fatalf("expected downstream processor to observe all 10 bytes, got %q", seen)
	}
}

// TestPumpConservation is spec.md §8 property 7: after push(b1)...push(bn);
// flush(), each processor's execute has seen the concatenation in order,
// no bytes duplicated or lost.
func TestPumpConservation(t *testing.T) {
	tx := newTestTx(t)
	reg := NewRegistry()
	var seen []byte
	reg.Register(&Processor{
		Name: "collector",
		Instantiate: func(*entity.Transaction) (interface{}, error) { return nil, nil },
		Execute: func(_ interface{}, _ *entity.Transaction, ioTx *IOTransaction) status.Code {
			for _, seg := range ioTx.Take() {
				if seg.Type == Data {
					seen = append(seen, seg.Bytes...)
				}
			}
			return status.OK
		},
	})
	pump, err := NewPump(reg, tx, Request, "raw", 1024, &tx.ReqBody)
	if err != nil {
		t.Fatal(err)
	}
	chunks := [][]byte{[]byte("foo"), []byte("bar"), []byte("baz")}
	for _, c := range chunks {
		if err := pump.Push(c); err != nil {
			t.Fatal(err)
		}
	}
	if err := pump.Flush(); err != nil {
		t.Fatal(err)
	}
	if string(seen) != "foobarbaz" {
		t.Fatalf("expected concatenation in order, got %q", seen)
	}
}

func TestPushAbortsOnProcessorError(t *testing.T) {
	tx := newTestTx(t)
	reg := NewRegistry()
	reg.Register(&Processor{
		Name: "failing",
		Instantiate: func(*entity.Transaction) (interface{}, error) { return nil, nil },
		Execute: func(interface{}, *entity.Transaction, *IOTransaction) status.Code {
			return status.EUnknown
		},
	})
	pump, err := NewPump(reg, tx, Request, "raw", 16, &tx.ReqBody)
	if err != nil {
		t.Fatal(err)
	}
	if err := pump.Push([]byte("x")); err == nil {
		t.Fatalf("expected an error from a failing processor to abort the push")
	}
}
