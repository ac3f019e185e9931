// Package notify implements the lifecycle notifier (spec.md component G):
// one entry point per state a host or parser can signal externally, each
// enforcing no-double-fire, prerequisite auto-triggering, monotonic flag
// and timestamp recording, context binding, and ordered hook dispatch.
package notify

import (
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/httpinspect/engine/cfgctx"
	"github.com/httpinspect/engine/entity"
	"github.com/httpinspect/engine/hook"
	"github.com/httpinspect/engine/internal/status"
	"github.com/httpinspect/engine/stream"
)

// defaultBodyLogLimit is used when a context's cfgmap carries no explicit
// request_body_log_limit/response_body_log_limit entry.
const defaultBodyLogLimit = 64 * 1024

// Notifier ties the hook registry, the context selector, and the stream
// processor registry together to drive a connection/transaction through
// its lifecycle (spec.md §4.G). One Notifier is shared by every
// connection the engine serves; it holds no per-connection state itself.
type Notifier struct {
	Hooks   *hook.Registry
	Ctx     *cfgctx.Tree
	Streams *stream.Registry
	Eng     hook.Engine
}

func New(hooks *hook.Registry, ctxTree *cfgctx.Tree, streams *stream.Registry, eng hook.Engine) *Notifier {
	return &Notifier{Hooks: hooks, Ctx: ctxTree, Streams: streams, Eng: eng}
}

func now() time.Time { return time.Now() }

// noDoubleFire implements spec.md §4.G rule 1 for single-fire transitions:
// if already set, log and return einval; otherwise run body and return its
// result.
func noDoubleFire(set bool, name string, body func() status.Code) status.Code {
	if set {
		glog.Errorf("notify: %s already fired, refusing double-notify", name)
		return status.EInval
	}
	return body()
}

func ctxOf(v interface{}) *cfgctx.Context {
	c, _ := v.(*cfgctx.Context)
	return c
}

func bodyLogLimit(ctx *cfgctx.Context, key string) int64 {
	if ctx == nil {
		return defaultBodyLogLimit
	}
	raw, ok := ctx.CfgMap.Get(key)
	if !ok {
		return defaultBodyLogLimit
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return defaultBodyLogLimit
	}
	return n
}

// --- Connection-level entries ---------------------------------------

// ConnOpened is notify_conn_opened (spec.md §4.G rule 4: fires
// conn-started, then conn-opened, then selects context, then
// handle-context-conn, then handle-connect).
func (n *Notifier) ConnOpened(conn *entity.Connection) status.Code {
	return noDoubleFire(conn.HasFlag(entity.ConnOpened), "conn-opened", func() status.Code {
		n.connStarted(conn)
		conn.SetFlag(entity.ConnOpened)
		conn.RecordTime("conn-opened", now())
		if code := n.Hooks.DispatchConn(n.Eng, conn, hook.ConnOpened); code != status.OK {
			return code
		}
		sel := cfgctx.Selectable{Kind: cfgctx.EntityConn}
		resolved, err := n.Ctx.Select(sel)
		if err != nil {
			glog.Errorf("notify: conn context selection failed: %v", err)
			return status.CodeOf(err)
		}
		conn.Context = resolved
		if code := n.Hooks.DispatchConn(n.Eng, conn, hook.HandleContextConn); code != status.OK {
			return code
		}
		return n.Hooks.DispatchConn(n.Eng, conn, hook.HandleConnect)
	})
}

func (n *Notifier) connStarted(conn *entity.Connection) {
	if conn.HasFlag(entity.ConnStarted) {
		return
	}
	glog.V(2).Infof("notify: auto-triggering conn-started")
	conn.SetFlag(entity.ConnStarted)
	conn.RecordTime("conn-started", now())
	n.Hooks.DispatchNull(n.Eng, hook.ConnStarted)
}

// ConnDataIn is notify_conn_data_in: bookkeeping only (spec.md §4.G rule
// 10's "first call" treatment, no associated hook state).
func (n *Notifier) ConnDataIn(conn *entity.Connection, data []byte) status.Code {
	if !conn.HasFlag(entity.ConnSeenDataIn) {
		conn.SetFlag(entity.ConnSeenDataIn)
		conn.RecordTime("conn-data-in", now())
	}
	return status.OK
}

// ConnDataOut is notify_conn_data_out, symmetric to ConnDataIn.
func (n *Notifier) ConnDataOut(conn *entity.Connection, data []byte) status.Code {
	if !conn.HasFlag(entity.ConnSeenDataOut) {
		conn.SetFlag(entity.ConnSeenDataOut)
		conn.RecordTime("conn-data-out", now())
	}
	return status.OK
}

// ConnClosed is notify_conn_closed (spec.md §4.G rule 6: auto-completes
// any pending transaction before firing conn-closed, handle-disconnect,
// conn-finished).
func (n *Notifier) ConnClosed(conn *entity.Connection) status.Code {
	return noDoubleFire(conn.HasFlag(entity.ConnClosed), "conn-closed", func() status.Code {
		if pending := conn.Current(); pending != nil && !pending.HasFlag(entity.FlagResFinished) {
			if code := n.cascadeFinish(pending); code != status.OK {
				return code
			}
		}
		conn.SetFlag(entity.ConnClosed)
		conn.RecordTime("conn-closed", now())
		if code := n.Hooks.DispatchConn(n.Eng, conn, hook.ConnClosed); code != status.OK {
			return code
		}
		if code := n.Hooks.DispatchConn(n.Eng, conn, hook.HandleDisconnect); code != status.OK {
			return code
		}
		n.connFinished(conn)
		return status.OK
	})
}

func (n *Notifier) connFinished(conn *entity.Connection) {
	if conn.HasFlag(entity.ConnFinished) {
		return
	}
	conn.SetFlag(entity.ConnFinished)
	conn.RecordTime("conn-finished", now())
	n.Hooks.DispatchConn(n.Eng, conn, hook.ConnFinished)
}
