package hostiface

import (
	"github.com/httpinspect/engine/internal/status"
)

// ContextFunc runs when a config context opens or closes; ctxData is
// whatever per-module state the module's own Init stashed.
type ContextFunc func(ctxData interface{}) status.Code

// DirectiveFunc handles one named configuration directive with its
// argument list, as produced by an external config parser (spec.md §9:
// "an external producer that calls directive_process(name, args)").
type DirectiveFunc func(ctx interface{}, args []string) status.Code

// Module describes a pluggable unit the engine links during its configure
// window (spec.md §6 "Module interface"). Abinum gates load-time compatibility
// the same way Descriptor.Vernum gates server compatibility. Index is
// assigned by the engine at registration and used as the slot into every
// context/connection/transaction per-module data array.
type Module struct {
	Name   string
	Abinum uint64
	Index  int

	// Init runs once, when Engine.LinkModule links the module during the
	// configure-started state, and returns the module's engine-scoped
	// state (hook registrations, stream processors, ...).
	Init func(eng interface{}) (interface{}, error)

	// OnContextOpen/OnContextClose are the module's per-context open and
	// close callbacks. The engine core stores them with the module but
	// does not invoke them.
	OnContextOpen  ContextFunc
	OnContextClose ContextFunc

	// ConfigMapInit is the module's hook for seeding a context's cfgmap
	// with its defaults. The engine core does not invoke it.
	ConfigMapInit func(cfgMap interface{})

	// DirectiveMap holds this module's named configuration directives.
	DirectiveMap map[string]DirectiveFunc
}

// CompatibleWith mirrors Descriptor.CompatibleWith for modules: the
// engine refuses to link a module whose abinum exceeds its own.
func (m Module) CompatibleWith(engineAbinum uint64) bool {
	return m.Abinum <= engineAbinum
}
