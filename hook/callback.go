package hook

import (
	"github.com/httpinspect/engine/container"
	"github.com/httpinspect/engine/entity"
	"github.com/httpinspect/engine/internal/status"
)

// Engine is the minimal handle callbacks receive as their first argument.
// It is declared here (rather than imported from package engine) to avoid
// an import cycle: package engine wires hook.Registry together with every
// other component and therefore must be able to import hook.
type Engine interface {
	Name() string
}

// The eight callback shapes from spec.md §4.C. Each returns a status.Code:
// status.OK to continue, status.Declined to continue-but-log-at-debug, any
// other code stops the chain and propagates (spec.md §4.C dispatch
// contract).
type (
	NullFunc     func(eng Engine, state State, user interface{}) status.Code
	ConnFunc     func(eng Engine, conn *entity.Connection, state State, user interface{}) status.Code
	TxFunc       func(eng Engine, tx *entity.Transaction, state State, user interface{}) status.Code
	TXDataFunc   func(eng Engine, tx *entity.Transaction, state State, data []byte, user interface{}) status.Code
	HeaderFunc   func(eng Engine, tx *entity.Transaction, state State, headers *container.HeaderList, user interface{}) status.Code
	ReqLineFunc  func(eng Engine, tx *entity.Transaction, state State, line *entity.RequestLine, user interface{}) status.Code
	RespLineFunc func(eng Engine, tx *entity.Transaction, state State, line *entity.ResponseLine, user interface{}) status.Code
	CtxFunc      func(eng Engine, ctx interface{}, state State, user interface{}) status.Code
)

// Hook binds a registered callback (tagged with its shape), its user data,
// and a resolved symbol name used for error-log attribution (spec.md
// §4.C: "Returned errors are logged with the resolved callback symbol").
type Hook struct {
	Shape    Shape
	Symbol   string
	UserData interface{}

	null     NullFunc
	conn     ConnFunc
	tx       TxFunc
	txdata   TXDataFunc
	header   HeaderFunc
	reqline  ReqLineFunc
	respline RespLineFunc
	ctx      CtxFunc
}
