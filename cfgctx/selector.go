package cfgctx

import "github.com/httpinspect/engine/internal/status"

// EntityKind distinguishes the two things a selector can be asked to bind
// a context to (spec.md §4.E).
type EntityKind int

const (
	EntityConn EntityKind = iota
	EntityTx
)

// Selectable is the minimal information the selector needs about a live
// connection or transaction; package notify fills it in from entity's
// Connection/Transaction, keeping cfgctx free of a dependency on entity.
type Selectable struct {
	Kind EntityKind
	IP   string // local IP, for kind Tx
	Host string // tx.hostname, for kind Tx
	Path string // tx.path, for kind Tx
}

// Selector is a registered (context, predicate) pair. It returns ok (use
// this context), declined (try the next selector), or an error.
type Selector func(ent Selectable) (status.Code, error)

type entry struct {
	ctx      *Context
	selector Selector
}

// Tree owns the full set of registered contexts in registration order
// (spec.md §4.E: "Walks the ordered context list") plus the engine and
// main contexts; a selection that no selector accepts falls back to main.
type Tree struct {
	Engine *Context
	Main   *Context

	entries []entry
}

func NewTree(engineCtx, mainCtx *Context) *Tree {
	return &Tree{Engine: engineCtx, Main: mainCtx}
}

// Register appends a (context, selector) pair in registration order; tie
// breaking for overlapping predicates is first-registered-wins
// (spec.md §4.E.4, §8.6).
func (t *Tree) Register(ctx *Context, sel Selector) {
	t.entries = append(t.entries, entry{ctx: ctx, selector: sel})
}

// Select walks registered selectors in order and returns the first context
// whose selector accepts, or the main context if none do (spec.md §4.E).
func (t *Tree) Select(ent Selectable) (*Context, error) {
	if ent.Kind == EntityConn {
		// Built-in site/location selector always declines for connections
		// (spec.md §4.E rule 1); any custom conn selector a host registers
		// still gets a chance below.
	}
	for _, e := range t.entries {
		code, err := e.selector(ent)
		if err != nil {
			return nil, err
		}
		switch code {
		case status.OK:
			return e.ctx, nil
		case status.Declined:
			continue
		default:
			return nil, status.New(code, "selector error for context %s", e.ctx.Name)
		}
	}
	return t.Main, nil
}

// SiteLocationSelector builds the built-in selector for a given location,
// implementing the matching rules of spec.md §4.E.
func SiteLocationSelector(site *Site, loc *Location) Selector {
	return func(ent Selectable) (status.Code, error) {
		if ent.Kind == EntityConn {
			return status.Declined, nil // rule 1
		}
		if !site.matchesIP(ent.IP) {
			return status.Declined, nil
		}
		if !site.matchesHost(ent.Host) {
			return status.Declined, nil
		}
		if !loc.matchesPath(ent.Path) {
			return status.Declined, nil
		}
		return status.OK, nil
	}
}

// RegisterSite registers every location of site, in the site's location
// order, each bound to its own context (spec.md §4.E.4: "first matching
// context in registration order wins" — callers should register sites in
// the order they want ties broken).
func (t *Tree) RegisterSite(site *Site) {
	for _, loc := range site.Locations {
		t.Register(loc.Context, SiteLocationSelector(site, loc))
	}
}
