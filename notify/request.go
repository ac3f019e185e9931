package notify

import (
	"github.com/golang/glog"

	"github.com/httpinspect/engine/cfgctx"
	"github.com/httpinspect/engine/container"
	"github.com/httpinspect/engine/entity"
	"github.com/httpinspect/engine/hook"
	"github.com/httpinspect/engine/internal/status"
	"github.com/httpinspect/engine/stream"
)

// RequestStarted is notify_request_started. Auto-triggers the internal
// tx-started state (spec.md §4.G rule 2), sets the http-0.9 flag when the
// request line carries no protocol bytes (rule 7).
func (n *Notifier) RequestStarted(tx *entity.Transaction, line *entity.RequestLine) status.Code {
	return noDoubleFire(tx.HasFlag(entity.FlagReqStarted), "request-started", func() status.Code {
		n.txStarted(tx)
		if line == nil {
			return status.EInval
		}
		tx.ReqLine = line
		if line.Protocol == "" {
			tx.SetFlag(entity.FlagHTTP09)
		}
		tx.SetFlag(entity.FlagReqStarted)
		tx.SetFlag(entity.FlagReqLine)
		tx.RecordTime("request-started", now())
		return n.Hooks.DispatchReqLine(n.Eng, tx, hook.RequestStarted, line)
	})
}

func (n *Notifier) txStarted(tx *entity.Transaction) {
	if tx.HasFlag(entity.FlagTxStarted) {
		return
	}
	glog.V(2).Infof("notify: auto-triggering tx-started for tx %s", tx.ID)
	tx.SetFlag(entity.FlagTxStarted)
	n.Hooks.DispatchTx(n.Eng, tx, hook.TxStarted)
}

// RequestHeaderData is notify_request_header_data (spec.md §4.G rule 9):
// repeatable, appends to the existing header list and updates the running
// byte-length total.
func (n *Notifier) RequestHeaderData(tx *entity.Transaction, items []container.Header) status.Code {
	tx.ReqHeaders.Append(items...)
	return n.Hooks.DispatchHeader(n.Eng, tx, hook.RequestHeaderData, tx.ReqHeaders)
}

// RequestHeaderFinished is notify_request_header_finished. Binds the
// transaction's context (spec.md §4.G rule 5) between the internal
// header-process state and the handle-request-header handler.
func (n *Notifier) RequestHeaderFinished(tx *entity.Transaction) status.Code {
	return noDoubleFire(tx.HasFlag(entity.FlagReqHeader), "request-header-finished", func() status.Code {
		if !tx.HasFlag(entity.FlagReqStarted) {
			glog.Errorf("notify: request-header-finished with no preceding request-started for tx %s", tx.ID)
			return status.EInval
		}
		if code := n.Hooks.DispatchTx(n.Eng, tx, hook.RequestHeaderProcess); code != status.OK {
			return code
		}
		if err := n.bindTxContext(tx); err != nil {
			glog.Errorf("notify: tx context selection failed: %v", err)
			return status.CodeOf(err)
		}
		if code := n.Hooks.DispatchTx(n.Eng, tx, hook.HandleContextTx); code != status.OK {
			return code
		}
		tx.SetFlag(entity.FlagReqHeader)
		tx.RecordTime("request-header-finished", now())
		if code := n.Hooks.DispatchTx(n.Eng, tx, hook.RequestHeaderFinished); code != status.OK {
			return code
		}
		return n.Hooks.DispatchTx(n.Eng, tx, hook.HandleRequestHeader)
	})
}

func (n *Notifier) bindTxContext(tx *entity.Transaction) error {
	sel := cfgctx.Selectable{Kind: cfgctx.EntityTx, Host: tx.Hostname, Path: tx.Path}
	if conn := tx.Conn; conn != nil {
		sel.IP = conn.LocalIP
	}
	resolved, err := n.Ctx.Select(sel)
	if err != nil {
		return err
	}
	tx.Context = resolved
	return nil
}

// reqPump lazily builds the request-direction stream pump the first time
// body data arrives (spec.md §4.H).
func (n *Notifier) reqPump(tx *entity.Transaction) (*stream.Pump, error) {
	if tx.ReqPump != nil {
		return tx.ReqPump.(*stream.Pump), nil
	}
	limit := bodyLogLimit(ctxOf(tx.Context), "request_body_log_limit")
	p, err := stream.NewPump(n.Streams, tx, stream.Request, "request", limit, &tx.ReqBody)
	if err != nil {
		return nil, err
	}
	tx.ReqPump = p
	return p, nil
}

// RequestBodyData is notify_request_body_data. Auto-triggers
// request-header-finished (rule 2), meters the chunk (rule 10), and pumps
// it through the request stream pump (rule 11).
func (n *Notifier) RequestBodyData(tx *entity.Transaction, data []byte) status.Code {
	if !tx.HasFlag(entity.FlagReqHeader) {
		glog.V(2).Infof("notify: auto-triggering request-header-finished for tx %s", tx.ID)
		if code := n.RequestHeaderFinished(tx); code != status.OK {
			return code
		}
	}
	first := !tx.HasFlag(entity.FlagReqBody)
	tx.ReqBodyLen += int64(len(data))
	if first {
		tx.SetFlag(entity.FlagReqBody)
		tx.SetFlag(entity.FlagHasReqData)
		tx.RecordTime("request-body-data", now())
	}
	if code := n.Hooks.DispatchTXData(n.Eng, tx, hook.RequestBodyData, data); code != status.OK {
		return code
	}
	pump, err := n.reqPump(tx)
	if err != nil {
		glog.Errorf("notify: request pump unavailable for tx %s: %v", tx.ID, err)
		return status.CodeOf(err)
	}
	if err := pump.Push(data); err != nil {
		glog.Errorf("notify: request pump push failed for tx %s: %v", tx.ID, err)
		return status.CodeOf(err)
	}
	return status.OK
}

// RequestFinished is notify_request_finished. Per spec.md §9 Open
// Questions, no zero-length body-data event is synthesized when a
// transaction never carried a body.
func (n *Notifier) RequestFinished(tx *entity.Transaction) status.Code {
	return noDoubleFire(tx.HasFlag(entity.FlagReqFinished), "request-finished", func() status.Code {
		if !tx.HasFlag(entity.FlagReqHeader) {
			glog.V(2).Infof("notify: auto-triggering request-header-finished for tx %s", tx.ID)
			if code := n.RequestHeaderFinished(tx); code != status.OK {
				return code
			}
		}
		tx.SetFlag(entity.FlagReqFinished)
		tx.RecordTime("request-finished", now())
		if code := n.Hooks.DispatchTx(n.Eng, tx, hook.RequestFinished); code != status.OK {
			return code
		}
		if code := n.Hooks.DispatchTx(n.Eng, tx, hook.HandleRequest); code != status.OK {
			return code
		}
		if pump, err := n.reqPump(tx); err == nil {
			if err := pump.Flush(); err != nil {
				glog.Errorf("notify: request pump flush failed for tx %s: %v", tx.ID, err)
				return status.CodeOf(err)
			}
		}
		n.Hooks.DispatchTx(n.Eng, tx, hook.TxProcess)
		return status.OK
	})
}
