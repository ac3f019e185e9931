// Package entity implements the core's per-connection and per-transaction
// objects (spec.md component F). Each instance owns its own arena (a child
// of its parent's), carries a monotonic flag set, and holds the slot array
// used by modules to stash per-entity opaque data.
package entity

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/httpinspect/engine/arena"
	"github.com/httpinspect/engine/container"
	"github.com/httpinspect/engine/internal/debug"
	"github.com/httpinspect/engine/variable"
)

// Pump is the minimal surface a stream pump exposes to a Transaction; the
// concrete implementation lives in package stream, which depends on
// entity (not the other way around) to avoid an import cycle between the
// body-pipeline and the per-transaction object it is attached to.
type Pump interface {
	Push(data []byte) error
	Flush() error
}

// BlockInfo is the (method, status) pair recorded by the blocking
// subsystem (spec.md §3 "Block info").
type BlockMethod int

const (
	BlockNone BlockMethod = iota
	BlockStatus
	BlockClose
)

type BlockInfo struct {
	Method BlockMethod
	Status int
}

// RequestLine and ResponseLine are minimal parsed request/response lines; the host's parser
// produces these, the core never tokenizes raw bytes itself (spec.md §1
// Non-goals).
type RequestLine struct {
	Method   string
	URI      string
	Protocol string // empty => HTTP/0.9 (spec.md §4.G.7)
}

type ResponseLine struct {
	Protocol string
	Status   int
	Reason   string
}

// Transaction is a single request/response cycle within a Connection. It
// owns an arena that is a child of its connection's arena; destroying the
// transaction's arena releases every allocation rooted in it.
type Transaction struct {
	ID   string // 128-bit random id, hex-encoded (spec.md §3)
	Arena *arena.Arena
	Conn  *Connection // weak back-reference, never owning (spec.md §9)

	flags flagSet

	Timestamps map[string]time.Time

	RemoteIP string
	Hostname string
	Path     string

	ReqLine *RequestLine
	ReqHeaders *container.HeaderList
	ReqBody    []byte
	ReqBodyLen int64

	ResLine *ResponseLine
	ResHeaders *container.HeaderList
	ResBody    []byte
	ResBodyLen int64

	Vars *variable.Store

	ModuleData *container.SlotArray

	ReqPump Pump
	ResPump Pump

	Next *Transaction // connection's singly-linked queue (spec.md §4.F)

	Context interface{} // bound *cfgctx.Context; typed at the engine layer to avoid import cycle

	Block BlockInfo
}

func genTxID() string {
	var b [16]byte
	_, err := rand.Read(b[:])
	debug.AssertNoErr(err)
	return hex.EncodeToString(b[:])
}

// NewTransaction creates a transaction owned by a child arena of conn's
// arena, per spec.md §3 ("Owns its own arena (child of its connection's
// arena)").
func NewTransaction(conn *Connection, numModules int) *Transaction {
	debug.Assert(conn != nil, "transaction requires a connection")
	a := conn.Arena.New()
	tx := &Transaction{
		ID:         genTxID(),
		Arena:      a,
		Conn:       conn,
		Timestamps: make(map[string]time.Time, 16),
		ReqHeaders: container.NewHeaderList(),
		ResHeaders: container.NewHeaderList(),
		Vars:       variable.NewStore(),
		ModuleData: container.NewSlotArray(numModules),
	}
	a.OnDestroy(func() {})
	return tx
}

func (t *Transaction) SetFlag(f TxFlag)     { t.flags.set(uint32(f)) }
func (t *Transaction) HasFlag(f TxFlag) bool { return t.flags.has(uint32(f)) }

// RecordTime stamps phase with the current time if not already recorded
// (spec.md §4.G.3: "first call only for streaming phases").
func (t *Transaction) RecordTime(phase string, at time.Time) {
	if _, ok := t.Timestamps[phase]; ok {
		return
	}
	t.Timestamps[phase] = at
}

// IsHTTP09 reports the spec.md §4.G.7 exception flag.
func (t *Transaction) IsHTTP09() bool { return t.HasFlag(FlagHTTP09) }

// Destroy releases the transaction's arena. It is a programming error to
// destroy a transaction that is still linked into its connection's list
// (spec.md §4.F); callers must RemoveTx first.
func (t *Transaction) Destroy() {
	t.Arena.Destroy()
}
