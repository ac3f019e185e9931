// Package variable implements the per-transaction typed key/value store
// exposed to modules (spec.md component J).
package variable

import "sync"

// Kind tags the dynamic type held in a Value so modules can type-assert
// defensively instead of panicking on a mismatched Get.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindMap
)

// Value is a typed variable-store entry.
type Value struct {
	Kind Kind
	Str  string
	Int  int64
	Flt  float64
	Bool bool
	List []Value
	Map  map[string]Value
}

func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Int(i int64) Value      { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value  { return Value{Kind: KindFloat, Flt: f} }
func Bool(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func List(v ...Value) Value  { return Value{Kind: KindList, List: v} }
func Map(m map[string]Value) Value { return Value{Kind: KindMap, Map: m} }

// Store is a thread-unsafe-by-default (transaction is single-owner-thread,
// spec.md §5) named variable table. A per-store mutex is still provided
// because a callback invoked by the notifier is allowed to call back into
// the engine for the *same* transaction re-entrantly for variable access
// (spec.md §5 re-entrancy rule), which can nest on the same goroutine.
type Store struct {
	mu   sync.Mutex
	data map[string]Value
}

func NewStore() *Store {
	return &Store{data: make(map[string]Value, 16)}
}

func (s *Store) Set(name string, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = v
}

func (s *Store) Get(name string) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[name]
	return v, ok
}

func (s *Store) Unset(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Names returns a snapshot of currently-set variable names.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.data))
	for k := range s.data {
		out = append(out, k)
	}
	return out
}
