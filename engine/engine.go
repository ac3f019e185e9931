// Package engine wires every core component (spec.md components A-K)
// into the single root object a host creates, configures, and drives.
package engine

import (
	"sync"

	"github.com/golang/glog"

	"github.com/httpinspect/engine/arena"
	"github.com/httpinspect/engine/block"
	"github.com/httpinspect/engine/cfgctx"
	"github.com/httpinspect/engine/hook"
	"github.com/httpinspect/engine/hostiface"
	"github.com/httpinspect/engine/internal/status"
	"github.com/httpinspect/engine/notify"
	"github.com/httpinspect/engine/stream"
)

// LifecycleState is the engine's own create -> configure-started ->
// configure-finished -> running -> destroy progression (spec.md §3
// Engine).
type LifecycleState int

const (
	Created LifecycleState = iota
	ConfigureStarted
	ConfigureFinished
	Running
	Destroyed
)

// Vernum/Abinum are the engine's own version numbers, checked against a
// host-supplied server descriptor and linked modules (spec.md §6).
const (
	Vernum uint64 = 1
	Abinum uint64 = 1
)

// Engine is the root object (spec.md §3 "Engine"). It implements
// hook.Engine so callbacks can address it by name.
type Engine struct {
	mu    sync.Mutex
	state LifecycleState

	PrimaryArena *arena.Arena

	EngineCtx *cfgctx.Context
	MainCtx   *cfgctx.Context
	Contexts  *cfgctx.Tree

	Hooks   *hook.Registry
	Streams *stream.Registry
	Notify  *notify.Notifier
	Block   *block.Subsystem

	Server hostiface.Server
	Logger hostiface.Logger

	modules []hostiface.Module
	metrics *Metrics
}

// New creates the engine's root arena, engine/main contexts, and every
// component registry, leaving the engine in the Created state (spec.md §3
// lifecycle: create -> configure-started). CreateConnection does not
// check the lifecycle state.
func New(server hostiface.Server) (*Engine, status.Code) {
	desc := server.Descriptor()
	if desc.Vernum > Vernum {
		glog.Errorf("engine: refusing incompatible server %q (vernum %d > engine vernum %d)", desc.Name, desc.Vernum, Vernum)
		return nil, status.EIncompat
	}

	engineCtx := cfgctx.NewEngineContext(0)
	mainCtx := cfgctx.NewMainContext(engineCtx, 0)
	tree := cfgctx.NewTree(engineCtx, mainCtx)
	hooks := hook.NewRegistry()
	streams := stream.NewRegistry()

	e := &Engine{
		state:        Created,
		PrimaryArena: engineCtx.Arena,
		EngineCtx:    engineCtx,
		MainCtx:      mainCtx,
		Contexts:     tree,
		Hooks:        hooks,
		Streams:      streams,
		Server:       server,
		metrics:      NewMetrics(),
	}
	e.Block = block.New(server)
	e.Notify = notify.New(hooks, tree, streams, e)
	return e, status.OK
}

// Name satisfies hook.Engine; callbacks identify the engine they were
// invoked against by this name.
func (e *Engine) Name() string { return "engine" }

// BeginConfigure transitions create -> configure-started.
func (e *Engine) BeginConfigure() status.Code {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Created {
		return status.EInval
	}
	e.state = ConfigureStarted
	if err := e.EngineCtx.OpenState(); err != nil {
		return status.CodeOf(err)
	}
	if err := e.MainCtx.OpenState(); err != nil {
		return status.CodeOf(err)
	}
	return status.OK
}

// LinkModule registers a module's hooks/processors and assigns it the
// next per-module data-array slot (spec.md §6 "Module interface").
func (e *Engine) LinkModule(m hostiface.Module) status.Code {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != ConfigureStarted {
		return status.EInval
	}
	if !m.CompatibleWith(Abinum) {
		glog.Errorf("engine: refusing incompatible module %q (abinum %d > engine abinum %d)", m.Name, m.Abinum, Abinum)
		return status.EIncompat
	}
	m.Index = len(e.modules)
	if m.Init != nil {
		if _, err := m.Init(e); err != nil {
			glog.Errorf("engine: module %q init failed: %v", m.Name, err)
			return status.EAlloc
		}
	}
	e.modules = append(e.modules, m)
	e.metrics.ModulesLinked.Inc()
	return status.OK
}

// FinishConfigure transitions configure-started -> configure-finished ->
// running. The scratch arena used during configuration is destroyed here
// in a full implementation; this engine core keeps configuration state in
// the main/engine contexts' own arenas instead of a separate scratch
// arena, so there is nothing extra to release.
func (e *Engine) FinishConfigure() status.Code {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != ConfigureStarted {
		return status.EInval
	}
	e.state = ConfigureFinished
	e.state = Running
	return status.OK
}

func (e *Engine) State() LifecycleState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Destroy fires engine-shutdown-initiated, then destroys every context
// (non-engine/main first, in reverse registration order) before
// releasing the primary arena, which transitively frees every live
// connection/transaction (spec.md §4.D: "Engine destruction destroys
// contexts in reverse registration order except engine+main, which are
// destroyed last").
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Destroyed {
		return
	}
	e.Hooks.DispatchNull(e, hook.EngineShutdownInitiated)

	children := append([]*cfgctx.Context(nil), e.MainCtx.Children...)
	for i := len(children) - 1; i >= 0; i-- {
		e.Hooks.DispatchCtx(e, children[i], hook.ContextDestroy)
		children[i].Destroy()
	}
	e.Hooks.DispatchCtx(e, e.MainCtx, hook.ContextDestroy)
	e.Hooks.DispatchCtx(e, e.EngineCtx, hook.ContextDestroy)
	e.PrimaryArena.Destroy()
	e.state = Destroyed
}
