// Package block implements the blocking subsystem (spec.md component I):
// pre-hooks, a single policy handler, post-hooks, and method dispatch to
// the host server interface, with an advisory/active distinction gated by
// the transaction's blocking-mode flag.
package block

import (
	"github.com/golang/glog"

	"github.com/httpinspect/engine/entity"
	"github.com/httpinspect/engine/hostiface"
	"github.com/httpinspect/engine/internal/status"
)

// PreHookFunc runs before the policy handler; any non-ok return aborts
// the block and is propagated (spec.md §4.I step 3).
type PreHookFunc func(tx *entity.Transaction) status.Code

// HandlerFunc decides how to block. Returning status.Declined means "do
// not block at all"; any other non-ok code is propagated (spec.md §4.I
// step 4).
type HandlerFunc func(tx *entity.Transaction) (entity.BlockInfo, status.Code)

// PostHookFunc runs after dispatch, with the final block_info (spec.md
// §4.I step 8).
type PostHookFunc func(tx *entity.Transaction, info entity.BlockInfo) status.Code

// defaultHandler is installed when no module registers one (spec.md
// §4.I step 4: "if absent, a default handler returns method=STATUS,
// status=403").
func defaultHandler(*entity.Transaction) (entity.BlockInfo, status.Code) {
	return entity.BlockInfo{Method: entity.BlockStatus, Status: 403}, status.OK
}

// Subsystem holds the engine-scoped pre-hooks, the single policy handler,
// and post-hooks, plus the server used to enforce an active block.
type Subsystem struct {
	Server    hostiface.Server
	PreHooks  []PreHookFunc
	Handler   HandlerFunc
	PostHooks []PostHookFunc
}

func New(server hostiface.Server) *Subsystem {
	return &Subsystem{Server: server, Handler: defaultHandler}
}

// RegisterPreHook appends a pre-hook in registration order.
func (s *Subsystem) RegisterPreHook(fn PreHookFunc) { s.PreHooks = append(s.PreHooks, fn) }

// RegisterPostHook appends a post-hook in registration order.
func (s *Subsystem) RegisterPostHook(fn PostHookFunc) { s.PostHooks = append(s.PostHooks, fn) }

// SetHandler installs the single policy handler, replacing the default.
func (s *Subsystem) SetHandler(fn HandlerFunc) { s.Handler = fn }

// Block is tx_block (spec.md §4.I). Calling it repeatedly on the same
// transaction is idempotent (spec.md §8 property 9): later calls return
// ok without re-running any hook.
func (s *Subsystem) Block(conn *entity.Connection, tx *entity.Transaction) status.Code {
	if tx.HasFlag(entity.FlagBlocked) {
		return status.OK
	}
	tx.SetFlag(entity.FlagBlocked)

	for _, pre := range s.PreHooks {
		if code := pre(tx); code != status.OK {
			glog.Errorf("block: pre-hook aborted block for tx %s: %s", tx.ID, code)
			return code
		}
	}

	handler := s.Handler
	if handler == nil {
		handler = defaultHandler
	}
	info, code := handler(tx)
	if code == status.Declined {
		glog.V(2).Infof("block: handler declined to block tx %s", tx.ID)
		return status.Declined
	}
	if code != status.OK {
		glog.Errorf("block: handler error for tx %s: %s", tx.ID, code)
		return code
	}
	tx.Block = info

	final := status.OK
	if !tx.HasFlag(entity.FlagBlockingMode) {
		// Advisory: recorded but not enforced (spec.md §4.I step 6).
		final = status.Declined
	} else if code := s.dispatch(conn, tx, info); code != status.OK {
		final = code
	}

	for _, post := range s.PostHooks {
		if code := post(tx, tx.Block); code != status.OK {
			glog.Errorf("block: post-hook aborted for tx %s: %s", tx.ID, code)
			return code
		}
	}
	return final
}

// dispatch applies an active block via the server interface (spec.md
// §4.I step 7). not-implemented and declined are soft-fails; any other
// error is propagated.
func (s *Subsystem) dispatch(conn *entity.Connection, tx *entity.Transaction, info entity.BlockInfo) status.Code {
	var code status.Code
	switch info.Method {
	case entity.BlockStatus:
		code = s.Server.ErrorResponse(tx, info.Status)
	case entity.BlockClose:
		code = s.Server.Close(conn, tx)
	default:
		glog.Errorf("block: unknown block method %v for tx %s", info.Method, tx.ID)
		return status.EInval
	}
	if code == status.ENotImpl || code == status.Declined {
		glog.V(2).Infof("block: server soft-failed method dispatch for tx %s: %s", tx.ID, code)
		return status.OK
	}
	return code
}
