package stream

import (
	"github.com/httpinspect/engine/entity"
	"github.com/httpinspect/engine/internal/status"
)

type Direction int

const (
	Request Direction = iota
	Response
)

type instantiated struct {
	def   *Processor
	state interface{}
}

// Pump is the per-transaction, per-direction ordered chain of instantiated
// processors (spec.md §3 "Stream pump", §4.H). It implements
// entity.Pump so a Transaction can hold one without entity depending on
// package stream.
type Pump struct {
	tx        *entity.Transaction
	direction Direction
	procs     []instantiated
	ioTx      IOTransaction
}

// NewPump instantiates a pump for tx in the given direction: the core's
// raw processor always occupies index 0 (spec.md §4.H), followed by every
// registered processor that declares it applies to typ, in registration
// order.
func NewPump(reg *Registry, tx *entity.Transaction, direction Direction, typ string, limit int64, bodyBuf *[]byte) (*Pump, error) {
	p := &Pump{tx: tx, direction: direction}
	raw := newRawProcessor(limit, bodySink{buf: bodyBuf})
	rawState, err := raw.Instantiate(tx)
	if err != nil {
		return nil, status.Wrap(status.EAlloc, err, "instantiate raw processor")
	}
	p.procs = append(p.procs, instantiated{def: raw, state: rawState})

	for _, def := range reg.Processors() {
		if !def.AppliesTo(typ) {
			continue
		}
		st, err := def.Instantiate(tx)
		if err != nil {
			return nil, status.Wrap(status.EAlloc, err, "instantiate processor %q", def.Name)
		}
		p.procs = append(p.procs, instantiated{def: def, state: st})
	}
	return p, nil
}

// Push runs bytes through the ordered processor chain (spec.md §4.H "Push
// semantics"). No processor may block; any non-OK Execute result aborts
// the push and is returned as an error.
func (p *Pump) Push(data []byte) error {
	return p.run(NewDataSegment(data))
}

// Flush injects a FLUSH-typed segment that traverses the chain, causing
// buffering processors to emit pending data (spec.md §4.H).
func (p *Pump) Flush() error {
	return p.run(NewFlushSegment())
}

func (p *Pump) run(seg *Segment) error {
	p.ioTx.Put(seg)
	for _, inst := range p.procs {
		code := inst.def.Execute(inst.state, p.tx, &p.ioTx)
		if code != status.OK {
			return status.New(code, "processor %q aborted push", inst.def.Name)
		}
	}
	p.ioTx.Take() // drain whatever is left; nothing downstream of the last processor consumes it
	return nil
}

// Destroy releases every instantiated processor's per-transaction state.
func (p *Pump) Destroy() {
	for _, inst := range p.procs {
		if inst.def.Destroy != nil {
			inst.def.Destroy(inst.state)
		}
	}
}

func (d Direction) String() string {
	if d == Request {
		return "request"
	}
	return "response"
}
