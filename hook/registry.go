package hook

import (
	"github.com/golang/glog"

	"github.com/httpinspect/engine/container"
	"github.com/httpinspect/engine/entity"
	"github.com/httpinspect/engine/internal/debug"
	"github.com/httpinspect/engine/internal/status"
)

// Registry holds one ordered hook chain per state (spec.md §3 "Hook").
// It is populated during the engine's configure window and is read-only
// thereafter (spec.md §5: "read-only at runtime, no locks needed").
type Registry struct {
	chains [numStates]*container.OrderedList[*Hook]
}

func NewRegistry() *Registry {
	r := &Registry{}
	for s := range r.chains {
		r.chains[s] = container.NewOrderedList[*Hook](4)
	}
	return r
}

func (r *Registry) chainFor(s State) *container.OrderedList[*Hook] {
	debug.Assert(int(s) >= 0 && int(s) < int(numStates), "state out of range")
	return r.chains[s]
}

// Len reports how many hooks are registered on a state (for tests/stats).
func (r *Registry) Len(s State) int { return r.chainFor(s).Len() }

func register(r *Registry, s State, want Shape, h *Hook) status.Code {
	if ShapeOf(s) != want {
		glog.Errorf("hook: shape mismatch registering %q on state %s (want %v got %v)", h.Symbol, s, ShapeOf(s), want)
		return status.EInval
	}
	r.chainFor(s).Append(h)
	return status.OK
}

func (r *Registry) RegisterNull(s State, symbol string, fn NullFunc, user interface{}) status.Code {
	return register(r, s, ShapeNull, &Hook{Shape: ShapeNull, Symbol: symbol, UserData: user, null: fn})
}

func (r *Registry) RegisterConn(s State, symbol string, fn ConnFunc, user interface{}) status.Code {
	return register(r, s, ShapeConn, &Hook{Shape: ShapeConn, Symbol: symbol, UserData: user, conn: fn})
}

func (r *Registry) RegisterTx(s State, symbol string, fn TxFunc, user interface{}) status.Code {
	return register(r, s, ShapeTx, &Hook{Shape: ShapeTx, Symbol: symbol, UserData: user, tx: fn})
}

func (r *Registry) RegisterTXData(s State, symbol string, fn TXDataFunc, user interface{}) status.Code {
	return register(r, s, ShapeTXData, &Hook{Shape: ShapeTXData, Symbol: symbol, UserData: user, txdata: fn})
}

func (r *Registry) RegisterHeader(s State, symbol string, fn HeaderFunc, user interface{}) status.Code {
	return register(r, s, ShapeHeader, &Hook{Shape: ShapeHeader, Symbol: symbol, UserData: user, header: fn})
}

func (r *Registry) RegisterReqLine(s State, symbol string, fn ReqLineFunc, user interface{}) status.Code {
	return register(r, s, ShapeReqLine, &Hook{Shape: ShapeReqLine, Symbol: symbol, UserData: user, reqline: fn})
}

func (r *Registry) RegisterRespLine(s State, symbol string, fn RespLineFunc, user interface{}) status.Code {
	return register(r, s, ShapeRespLine, &Hook{Shape: ShapeRespLine, Symbol: symbol, UserData: user, respline: fn})
}

func (r *Registry) RegisterCtx(s State, symbol string, fn CtxFunc, user interface{}) status.Code {
	return register(r, s, ShapeCtx, &Hook{Shape: ShapeCtx, Symbol: symbol, UserData: user, ctx: fn})
}

// logResult applies spec.md §4.C's dispatch contract for a single hook's
// return value.
func logResult(symbol string, s State, code status.Code) (stop bool) {
	switch code {
	case status.OK:
		return false
	case status.Declined:
		glog.V(2).Infof("hook %q on %s declined", symbol, s)
		return false
	default:
		glog.Errorf("hook %q on %s returned %s", symbol, s, code)
		return true
	}
}

// DispatchNull walks the NULL-shaped chain for s in registration order.
func (r *Registry) DispatchNull(eng Engine, s State) status.Code {
	var result = status.OK
	r.chainFor(s).Each(func(_ int, h *Hook) bool {
		code := h.null(eng, s, h.UserData)
		if logResult(h.Symbol, s, code) {
			result = code
			return false
		}
		return true
	})
	return result
}

func (r *Registry) DispatchConn(eng Engine, conn *entity.Connection, s State) status.Code {
	var result = status.OK
	r.chainFor(s).Each(func(_ int, h *Hook) bool {
		code := h.conn(eng, conn, s, h.UserData)
		if logResult(h.Symbol, s, code) {
			result = code
			return false
		}
		return true
	})
	return result
}

func (r *Registry) DispatchTx(eng Engine, tx *entity.Transaction, s State) status.Code {
	debug.Assert(tx != nil || !IsTxTyped(s), "tx-typed state dispatched with nil transaction")
	var result = status.OK
	r.chainFor(s).Each(func(_ int, h *Hook) bool {
		code := h.tx(eng, tx, s, h.UserData)
		if logResult(h.Symbol, s, code) {
			result = code
			return false
		}
		return true
	})
	return result
}

func (r *Registry) DispatchTXData(eng Engine, tx *entity.Transaction, s State, data []byte) status.Code {
	debug.Assert(tx != nil, "tx-typed state dispatched with nil transaction")
	var result = status.OK
	r.chainFor(s).Each(func(_ int, h *Hook) bool {
		code := h.txdata(eng, tx, s, data, h.UserData)
		if logResult(h.Symbol, s, code) {
			result = code
			return false
		}
		return true
	})
	return result
}

func (r *Registry) DispatchHeader(eng Engine, tx *entity.Transaction, s State, headers *container.HeaderList) status.Code {
	debug.Assert(tx != nil, "tx-typed state dispatched with nil transaction")
	var result = status.OK
	r.chainFor(s).Each(func(_ int, h *Hook) bool {
		code := h.header(eng, tx, s, headers, h.UserData)
		if logResult(h.Symbol, s, code) {
			result = code
			return false
		}
		return true
	})
	return result
}

func (r *Registry) DispatchReqLine(eng Engine, tx *entity.Transaction, s State, line *entity.RequestLine) status.Code {
	debug.Assert(tx != nil, "tx-typed state dispatched with nil transaction")
	var result = status.OK
	r.chainFor(s).Each(func(_ int, h *Hook) bool {
		code := h.reqline(eng, tx, s, line, h.UserData)
		if logResult(h.Symbol, s, code) {
			result = code
			return false
		}
		return true
	})
	return result
}

func (r *Registry) DispatchRespLine(eng Engine, tx *entity.Transaction, s State, line *entity.ResponseLine) status.Code {
	debug.Assert(tx != nil, "tx-typed state dispatched with nil transaction")
	var result = status.OK
	r.chainFor(s).Each(func(_ int, h *Hook) bool {
		code := h.respline(eng, tx, s, line, h.UserData)
		if logResult(h.Symbol, s, code) {
			result = code
			return false
		}
		return true
	})
	return result
}

func (r *Registry) DispatchCtx(eng Engine, ctx interface{}, s State) status.Code {
	var result = status.OK
	r.chainFor(s).Each(func(_ int, h *Hook) bool {
		code := h.ctx(eng, ctx, s, h.UserData)
		if logResult(h.Symbol, s, code) {
			result = code
			return false
		}
		return true
	})
	return result
}
