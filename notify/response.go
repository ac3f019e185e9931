package notify

import (
	"github.com/golang/glog"

	"github.com/httpinspect/engine/container"
	"github.com/httpinspect/engine/entity"
	"github.com/httpinspect/engine/hook"
	"github.com/httpinspect/engine/internal/status"
	"github.com/httpinspect/engine/stream"
)

// ResponseStarted is notify_response_started. Per the HTTP/0.9 exception
// (spec.md §4.G rule 7), a nil line is only accepted when the
// transaction's http-0.9 flag is set.
func (n *Notifier) ResponseStarted(tx *entity.Transaction, line *entity.ResponseLine) status.Code {
	return n.responseStarted(tx, line, tx.IsHTTP09())
}

// responseStartedForClose is the conn-closed cascade's entry point
// (spec.md §4.G rule 6): a dropped connection may need to synthesize a
// NULL response line for a transaction that never got one, even outside
// the HTTP/0.9 exception.
func (n *Notifier) responseStartedForClose(tx *entity.Transaction) status.Code {
	return n.responseStarted(tx, nil, true)
}

func (n *Notifier) responseStarted(tx *entity.Transaction, line *entity.ResponseLine, allowNull bool) status.Code {
	return noDoubleFire(tx.HasFlag(entity.FlagResStarted), "response-started", func() status.Code {
		if line == nil && !allowNull {
			glog.Errorf("notify: response-started with no line on a non-HTTP/0.9 tx %s", tx.ID)
			return status.EInval
		}
		tx.ResLine = line
		tx.SetFlag(entity.FlagResStarted)
		if line != nil {
			tx.SetFlag(entity.FlagResLine)
		}
		tx.RecordTime("response-started", now())
		return n.Hooks.DispatchRespLine(n.Eng, tx, hook.ResponseStarted, line)
	})
}

// ResponseHeaderData is notify_response_header_data, symmetric to
// RequestHeaderData.
func (n *Notifier) ResponseHeaderData(tx *entity.Transaction, items []container.Header) status.Code {
	tx.ResHeaders.Append(items...)
	return n.Hooks.DispatchHeader(n.Eng, tx, hook.ResponseHeaderData, tx.ResHeaders)
}

// ResponseHeaderFinished is notify_response_header_finished. Unlike the
// request side, no context binding happens here (spec.md §4.G rule 5
// binds context only once, on the request side).
func (n *Notifier) ResponseHeaderFinished(tx *entity.Transaction) status.Code {
	return noDoubleFire(tx.HasFlag(entity.FlagResHeader), "response-header-finished", func() status.Code {
		if !tx.HasFlag(entity.FlagResStarted) {
			if !tx.IsHTTP09() {
				glog.Errorf("notify: response-header-finished with no preceding response-started for tx %s", tx.ID)
				return status.EInval
			}
			glog.V(2).Infof("notify: auto-triggering response-started(NULL) for HTTP/0.9 tx %s", tx.ID)
			if code := n.ResponseStarted(tx, nil); code != status.OK {
				return code
			}
		}
		tx.SetFlag(entity.FlagResHeader)
		tx.RecordTime("response-header-finished", now())
		if code := n.Hooks.DispatchTx(n.Eng, tx, hook.ResponseHeaderFinished); code != status.OK {
			return code
		}
		return n.Hooks.DispatchTx(n.Eng, tx, hook.HandleResponseHeader)
	})
}

func (n *Notifier) resPump(tx *entity.Transaction) (*stream.Pump, error) {
	if tx.ResPump != nil {
		return tx.ResPump.(*stream.Pump), nil
	}
	limit := bodyLogLimit(ctxOf(tx.Context), "response_body_log_limit")
	p, err := stream.NewPump(n.Streams, tx, stream.Response, "response", limit, &tx.ResBody)
	if err != nil {
		return nil, err
	}
	tx.ResPump = p
	return p, nil
}

// ResponseBodyData is notify_response_body_data (spec.md §8 scenario S2:
// succeeds without a prior response line on an HTTP/0.9 tx by
// auto-triggering response-started(NULL) and response-header-finished).
func (n *Notifier) ResponseBodyData(tx *entity.Transaction, data []byte) status.Code {
	if !tx.HasFlag(entity.FlagResHeader) {
		glog.V(2).Infof("notify: auto-triggering response-header-finished for tx %s", tx.ID)
		if code := n.ResponseHeaderFinished(tx); code != status.OK {
			return code
		}
	}
	first := !tx.HasFlag(entity.FlagResBody)
	tx.ResBodyLen += int64(len(data))
	if first {
		tx.SetFlag(entity.FlagResBody)
		tx.SetFlag(entity.FlagHasResData)
		tx.RecordTime("response-body-data", now())
	}
	if code := n.Hooks.DispatchTXData(n.Eng, tx, hook.ResponseBodyData, data); code != status.OK {
		return code
	}
	pump, err := n.resPump(tx)
	if err != nil {
		glog.Errorf("notify: response pump unavailable for tx %s: %v", tx.ID, err)
		return status.CodeOf(err)
	}
	if err := pump.Push(data); err != nil {
		glog.Errorf("notify: response pump push failed for tx %s: %v", tx.ID, err)
		return status.CodeOf(err)
	}
	return status.OK
}

// ResponseFinished is notify_response_finished. On success it flushes the
// response pump and auto-fires postprocess, logging, and tx-finished in
// sequence (spec.md §4.G rule 12 and the trailing forward chain of
// scenario S1).
func (n *Notifier) ResponseFinished(tx *entity.Transaction) status.Code {
	return noDoubleFire(tx.HasFlag(entity.FlagResFinished), "response-finished", func() status.Code {
		if !tx.HasFlag(entity.FlagResHeader) {
			glog.V(2).Infof("notify: auto-triggering response-header-finished for tx %s", tx.ID)
			if code := n.ResponseHeaderFinished(tx); code != status.OK {
				return code
			}
		}
		tx.SetFlag(entity.FlagResFinished)
		tx.RecordTime("response-finished", now())
		if code := n.Hooks.DispatchTx(n.Eng, tx, hook.ResponseFinished); code != status.OK {
			return code
		}
		if code := n.Hooks.DispatchTx(n.Eng, tx, hook.HandleResponse); code != status.OK {
			return code
		}
		if pump, err := n.resPump(tx); err == nil {
			if err := pump.Flush(); err != nil {
				glog.Errorf("notify: response pump flush failed for tx %s: %v", tx.ID, err)
				return status.CodeOf(err)
			}
		}
		if code := n.Postprocess(tx); code != status.OK {
			return code
		}
		if code := n.Logging(tx); code != status.OK {
			return code
		}
		n.txFinished(tx)
		return status.OK
	})
}

// Postprocess is notify_postprocess.
func (n *Notifier) Postprocess(tx *entity.Transaction) status.Code {
	return noDoubleFire(tx.HasFlag(entity.FlagPostprocess), "postprocess", func() status.Code {
		tx.SetFlag(entity.FlagPostprocess)
		tx.RecordTime("postprocess", now())
		return n.Hooks.DispatchTx(n.Eng, tx, hook.HandlePostprocess)
	})
}

// Logging is notify_logging.
func (n *Notifier) Logging(tx *entity.Transaction) status.Code {
	return noDoubleFire(tx.HasFlag(entity.FlagLogging), "logging", func() status.Code {
		tx.SetFlag(entity.FlagLogging)
		tx.RecordTime("logging", now())
		return n.Hooks.DispatchTx(n.Eng, tx, hook.HandleLogging)
	})
}

func (n *Notifier) txFinished(tx *entity.Transaction) {
	if tx.HasFlag(entity.FlagTxFinished) {
		return
	}
	tx.SetFlag(entity.FlagTxFinished)
	tx.RecordTime("tx-finished", now())
	n.Hooks.DispatchTx(n.Eng, tx, hook.TxFinished)
}
