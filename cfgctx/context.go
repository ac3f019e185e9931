// Package cfgctx implements the hierarchical configuration context tree
// (spec.md component D) and the context selector that binds a live
// connection/transaction to its most specific context (spec.md component
// E): engine -> main -> site -> location.
package cfgctx

import (
	"sync"

	"github.com/httpinspect/engine/arena"
	"github.com/httpinspect/engine/container"
	"github.com/httpinspect/engine/internal/debug"
	"github.com/httpinspect/engine/internal/status"
)

type Kind string

const (
	KindEngine   Kind = "engine"
	KindMain     Kind = "main"
	KindSite     Kind = "site"
	KindLocation Kind = "location"
)

type LifecycleState int

const (
	Created LifecycleState = iota
	Open
	Closed
)

// AuditLogSettings carries the per-context auditlog index (spec.md §3
// Context, §6 "Persisted state"). The core never writes the file itself;
// it only owns the path, default flag, and the mutex protecting
// cross-transaction access to it (spec.md §5: "protected by a per-context
// mutex").
type AuditLogSettings struct {
	mu        sync.Mutex
	IndexPath string
	IsDefault bool
}

// SetIndexPath updates the auditlog index path. Re-setting it to the
// current value is a no-op: no lock is taken and no rewrite happens,
// which is the idempotent-and-no-rewrite behavior spec.md §9 calls for
// over the inconsistent older-revision locking.
func (a *AuditLogSettings) SetIndexPath(path string, isDefault bool) {
	if a.IndexPath == path && a.IsDefault == isDefault {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.IndexPath = path
	a.IsDefault = isDefault
}

func (a *AuditLogSettings) Lock()   { a.mu.Lock() }
func (a *AuditLogSettings) Unlock() { a.mu.Unlock() }

// Context is a named node in the configuration tree (spec.md §3 Context,
// GLOSSARY "Context").
type Context struct {
	Kind      Kind
	TypeLabel string
	Name      string

	Parent   *Context // weak reference
	Children []*Context

	Arena *arena.Arena

	ModuleConfig *container.SlotArray // per-module config blob, indexed by module slot
	ModuleData   *container.SlotArray // per-module runtime data, indexed by module slot
	CfgMap       *container.CIMap[string]

	AuditLog AuditLogSettings

	Site     *Site     // non-nil only for site/location contexts
	Location *Location // non-nil only for location contexts

	WorkDir string

	State LifecycleState
}

// Initializer runs once per newly created non-root context, in
// module-registration order (spec.md §4.D).
type Initializer func(ctx *Context) error

func newContext(parent *Context, kind Kind, typeLabel, name string, numModules int) *Context {
	var a *arena.Arena
	if parent == nil {
		a = arena.Root()
	} else {
		a = parent.Arena.New()
	}
	c := &Context{
		Kind:         kind,
		TypeLabel:    typeLabel,
		Name:         name,
		Parent:       parent,
		Arena:        a,
		ModuleConfig: container.NewSlotArray(numModules),
		ModuleData:   container.NewSlotArray(numModules),
		CfgMap:       container.NewCIMap[string](),
		State:        Created,
	}
	if parent != nil {
		c.AuditLog.SetIndexPath(parent.AuditLog.IndexPath, true)
		c.WorkDir = parent.WorkDir
	}
	return c
}

// NewEngineContext creates the single root engine context (spec.md §3
// Engine invariant: "exactly one engine-context").
func NewEngineContext(numModules int) *Context {
	return newContext(nil, KindEngine, "", "", numModules)
}

// NewMainContext creates the engine's single main context, whose parent is
// always the engine context (spec.md §3 Engine invariant).
func NewMainContext(engineCtx *Context, numModules int) *Context {
	debug.Assert(engineCtx.Kind == KindEngine, "main context's parent must be the engine context")
	return newContext(engineCtx, KindMain, "", "", numModules)
}

// CreateChild creates a new child context of c, appends it to c's children,
// and runs each initializer in order (spec.md §4.D: "context_create").
// Creating a "location" child requires c (or an ancestor) to already carry
// a Site — i.e. site must exist before location (spec.md §3 Context
// invariant).
func (c *Context) CreateChild(kind Kind, typeLabel, name string, numModules int, inits []Initializer) (*Context, error) {
	if kind == KindLocation {
		hasSite := false
		for p := c; p != nil; p = p.Parent {
			if p.Site != nil {
				hasSite = true
				break
			}
		}
		if !hasSite {
			return nil, status.New(status.EInval, "location context requires a site context")
		}
	}
	child := newContext(c, kind, typeLabel, name, numModules)
	c.Children = append(c.Children, child)
	if kind != KindEngine {
		for _, init := range inits {
			if init == nil {
				continue
			}
			if err := init(child); err != nil {
				return nil, status.Wrap(status.EAlloc, err, "module initializer failed")
			}
		}
	}
	return child, nil
}

// OpenState transitions created -> open (spec.md §4.D context_open). The
// caller (engine layer) is responsible for firing context-open hooks
// after OpenState succeeds, and for pushing/popping the config-parser stack
// and setting the working directory for non-engine contexts.
func (c *Context) OpenState() error {
	if c.State != Created {
		return status.New(status.EInval, "context %s not in created state", c.Name)
	}
	c.State = Open
	return nil
}

// CloseState transitions open -> closed (spec.md §4.D context_close).
func (c *Context) CloseState() error {
	if c.State != Open {
		return status.New(status.EInval, "context %s not open", c.Name)
	}
	c.State = Closed
	return nil
}

// RequireOpen fails configuration-time operations attempted outside the
// open state (spec.md §3 Context invariant).
func (c *Context) RequireOpen() error {
	if c.State != Open {
		return status.New(status.EInval, "context %s requires open state, has %v", c.Name, c.State)
	}
	return nil
}

// Destroy releases the context's arena (and transitively its children's).
// The caller fires context-destroy hooks before calling this, per
// spec.md §4.D ("fires context-destroy hooks, destroys arena").
func (c *Context) Destroy() { c.Arena.Destroy() }

// Walk visits c and every descendant, pre-order.
func (c *Context) Walk(fn func(*Context)) {
	fn(c)
	for _, ch := range c.Children {
		ch.Walk(fn)
	}
}
