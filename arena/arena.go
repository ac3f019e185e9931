// Package arena implements the core's per-entity bulk allocation domains
// (spec.md §4.A). Each engine/context/connection/transaction gets its own
// arena; destroying an arena releases everything allocated into it,
// transitively destroying any nested child arenas. The core never reaches
// into the general-purpose heap for per-request data — every
// transaction-scoped allocation traces back to exactly one arena.
//
// Unlike the teacher's memsys (which manages slab-recycled []byte buffers
// for network I/O), this arena tracks *ownership*, not bytes: Go's runtime
// heap already does the bump-allocation and GC; what the arena contract
// adds is the "destroy releases everything, including descendants" bulk
// semantics and the single-writer-no-concurrent-access rule (spec.md §5).
package arena

import (
	"sync"

	"github.com/httpinspect/engine/internal/debug"
)

// Arena is a scoped allocation domain. It is not an allocator in the malloc
// sense (Go already own that); it is an ownership scope: everything
// Strdup'd, Calloc'd, or registered via OnDestroy from this arena, or from
// any child created with New, is released together when Destroy is called
// on the arena or any ancestor.
type Arena struct {
	mu       sync.Mutex
	parent   *Arena
	children []*Arena
	onClose  []func()
	strs     []string // retained to keep GC roots alive for the arena's lifetime
	destroyed bool
}

// Root creates a new top-level arena with no parent (used once per Engine).
func Root() *Arena { return &Arena{} }

// New creates a child arena. Destroying the parent (or any of its
// ancestors) destroys this arena too.
func (a *Arena) New() *Arena {
	debug.Assert(a != nil, "nil parent arena")
	a.mu.Lock()
	defer a.mu.Unlock()
	debug.Assert(!a.destroyed, "allocating from a destroyed arena")
	child := &Arena{parent: a}
	a.children = append(a.children, child)
	return child
}

// Strdup returns a copy of s owned by the arena. Go strings are immutable
// and already heap-managed, so this exists to document and enforce arena
// provenance of long-lived per-transaction strings (the contract in
// spec.md §4.A: "any pointer returned from an arena is valid until that
// arena is destroyed").
func (a *Arena) Strdup(s string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	debug.Assert(!a.destroyed, "strdup on a destroyed arena")
	cp := string(append([]byte(nil), s...))
	a.strs = append(a.strs, cp)
	return cp
}

// Calloc returns a zeroed byte slice of length n owned by the arena.
func (a *Arena) Calloc(n int) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	debug.Assert(!a.destroyed, "calloc on a destroyed arena")
	return make([]byte, n)
}

// OnDestroy registers a cleanup callback to run when this arena is
// destroyed, in LIFO order relative to other registrations on the same
// arena (mirrors scope-exit / defer-style unwinding called for by
// spec.md §9 in place of the source's goto-based failure unwind).
func (a *Arena) OnDestroy(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	debug.Assert(!a.destroyed, "registering cleanup on a destroyed arena")
	a.onClose = append(a.onClose, fn)
}

// Destroy releases the arena and, transitively, every child arena created
// from it, running registered cleanups child-first then LIFO within each
// arena. Destroying an already-destroyed arena is a no-op (idempotent),
// matching engine/context/transaction teardown being safe to call once
// from multiple unwind paths.
func (a *Arena) Destroy() {
	a.mu.Lock()
	if a.destroyed {
		a.mu.Unlock()
		return
	}
	a.destroyed = true
	children := a.children
	a.children = nil
	closers := a.onClose
	a.onClose = nil
	a.mu.Unlock()

	for _, c := range children {
		c.Destroy()
	}
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

// Destroyed reports whether Destroy has already run on this arena.
func (a *Arena) Destroyed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.destroyed
}
