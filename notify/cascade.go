package notify

import (
	"github.com/golang/glog"

	"github.com/httpinspect/engine/entity"
	"github.com/httpinspect/engine/internal/status"
)

// cascadeFinish auto-completes a pending transaction when its connection
// closes out from under it (spec.md §4.G rule 6): request-finished, then
// response-started(NULL) if needed, then response-finished (which itself
// cascades postprocess/logging/tx-finished).
func (n *Notifier) cascadeFinish(tx *entity.Transaction) status.Code {
	glog.V(2).Infof("notify: cascading pending tx %s to completion on conn-closed", tx.ID)
	if !tx.HasFlag(entity.FlagReqFinished) {
		if code := n.RequestFinished(tx); code != status.OK {
			return code
		}
	}
	if !tx.HasFlag(entity.FlagResStarted) {
		if code := n.responseStartedForClose(tx); code != status.OK {
			return code
		}
	}
	if !tx.HasFlag(entity.FlagResFinished) {
		if code := n.ResponseFinished(tx); code != status.OK {
			return code
		}
	}
	return status.OK
}
