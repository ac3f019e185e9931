package stream

import (
	"github.com/httpinspect/engine/entity"
	"github.com/httpinspect/engine/internal/status"
)

// InstantiateFunc creates a processor's per-transaction state.
type InstantiateFunc func(tx *entity.Transaction) (interface{}, error)

// ExecuteFunc runs a processor over whatever segments are currently queued
// on ioTx, popping input with Take and pushing output with Put.
type ExecuteFunc func(state interface{}, tx *entity.Transaction, ioTx *IOTransaction) status.Code

// DestroyFunc releases a processor's per-transaction state, if any.
type DestroyFunc func(state interface{})

// Processor is a named streaming filter (spec.md §4.H "A stream processor
// is named and declares a set of types it applies to").
type Processor struct {
	Name      string
	Types     []string
	Instantiate InstantiateFunc
	Execute     ExecuteFunc
	Destroy     DestroyFunc
}

// AppliesTo reports whether the processor declared typ among its types, or
// declared no types at all (applies to everything).
func (p *Processor) AppliesTo(typ string) bool {
	if len(p.Types) == 0 {
		return true
	}
	for _, t := range p.Types {
		if t == typ {
			return true
		}
	}
	return false
}

// Registry is the engine-scoped, read-only-after-configure list of
// registered processors (spec.md §5: engine-scoped registries are
// read-only at runtime).
type Registry struct {
	procs []*Processor
	byName map[string]int
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register appends a processor to the registry in insertion order. The
// core's built-in "raw" processor is never registered here: it is always
// inserted at index 0 of every pump by NewPump, per spec.md §4.H.
func (r *Registry) Register(p *Processor) status.Code {
	if _, exists := r.byName[p.Name]; exists {
		return status.EInval
	}
	r.byName[p.Name] = len(r.procs)
	r.procs = append(r.procs, p)
	return status.OK
}

func (r *Registry) Processors() []*Processor { return r.procs }
