package engine

import (
	"github.com/httpinspect/engine/entity"
	"github.com/httpinspect/engine/internal/status"
)

// CreateConnection creates a connection owned by a child of the engine's
// primary arena, sized for however many modules are currently linked
// (spec.md §4.F).
func (e *Engine) CreateConnection() *entity.Connection {
	e.mu.Lock()
	numModules := len(e.modules)
	e.mu.Unlock()
	conn := entity.NewConnection(e.PrimaryArena, numModules)
	e.metrics.ConnectionsOpen.Inc()
	return conn
}

// CreateTransaction appends a new transaction to conn's queue (spec.md
// §4.F); pipelining flags are handled by entity.Connection.CreateTx.
func (e *Engine) CreateTransaction(conn *entity.Connection) *entity.Transaction {
	tx := conn.CreateTx()
	e.metrics.TransactionsTotal.Inc()
	return tx
}

// DestroyConnection releases a connection's arena (and transitively every
// live transaction on it) and updates the open-connections gauge.
func (e *Engine) DestroyConnection(conn *entity.Connection) {
	conn.Destroy()
	e.metrics.ConnectionsOpen.Dec()
}

// BlockTransaction runs the blocking subsystem against tx (spec.md §4.I),
// bumping the blocked counter when the block actually took effect
// (method dispatched, i.e. not merely advisory or handler-declined).
func (e *Engine) BlockTransaction(conn *entity.Connection, tx *entity.Transaction) status.Code {
	alreadyBlocked := tx.HasFlag(entity.FlagBlocked)
	code := e.Block.Block(conn, tx)
	if !alreadyBlocked && code == status.OK && tx.Block.Method != entity.BlockNone {
		e.metrics.Blocked.Inc()
	}
	return code
}
