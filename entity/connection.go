package entity

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/OneOfOne/xxhash"

	"github.com/httpinspect/engine/arena"
	"github.com/httpinspect/engine/container"
	"github.com/httpinspect/engine/internal/debug"
)

// connDigestSeed is an arbitrary fixed seed for the connection digest,
// mirroring the way the teacher seeds its own node-id digest.
const connDigestSeed = 0x811c9dc5

// Connection is a single host-to-engine connection. It owns its own arena
// (a child of the engine's primary arena) and the singly-linked queue of
// transactions created on it (spec.md §3 Connection, §4.F).
type Connection struct {
	Arena *arena.Arena

	ID     string // 128-bit random id, hex-encoded
	Digest uint64 // xxhash of ID, a stable short key for logging/sharding

	RemoteIP, LocalIP     string
	RemotePort, LocalPort int

	flags flagSet

	Timestamps map[string]time.Time

	ModuleData *container.SlotArray

	first, current, last *Transaction
	txCount               int

	Context interface{} // bound *cfgctx.Context

	numModules int
}

// NewConnection creates a connection owned by a child arena of the
// engine's primary arena.
func NewConnection(parent *arena.Arena, numModules int) *Connection {
	debug.Assert(parent != nil, "connection requires a parent arena")
	id := genConnID()
	return &Connection{
		Arena:      parent.New(),
		ID:         id,
		Digest:     xxhash.ChecksumString64S(id, connDigestSeed),
		Timestamps: make(map[string]time.Time, 8),
		ModuleData: container.NewSlotArray(numModules),
		numModules: numModules,
	}
}

func genConnID() string {
	var b [16]byte
	_, err := rand.Read(b[:])
	debug.AssertNoErr(err)
	return hex.EncodeToString(b[:])
}

func (c *Connection) SetFlag(f ConnFlag)     { c.flags.set(uint32(f)) }
func (c *Connection) HasFlag(f ConnFlag) bool { return c.flags.has(uint32(f)) }

func (c *Connection) RecordTime(phase string, at time.Time) {
	if _, ok := c.Timestamps[phase]; ok {
		return
	}
	c.Timestamps[phase] = at
}

// CreateTx appends a new transaction to the connection's queue. Appending
// a second transaction sets the `pipelined` flag on both the new
// transaction and the first one in the queue (spec.md §4.F).
func (c *Connection) CreateTx() *Transaction {
	tx := NewTransaction(c, c.numModules)
	c.txCount++
	if c.first == nil {
		c.first = tx
		c.current = tx
		c.last = tx
		return tx
	}
	c.last.Next = tx
	c.last = tx
	c.current = tx
	if c.txCount == 2 {
		c.first.SetFlag(FlagPipelined)
		tx.SetFlag(FlagPipelined)
	} else if c.txCount > 2 {
		tx.SetFlag(FlagPipelined)
	}
	return tx
}

func (c *Connection) First() *Transaction   { return c.first }
func (c *Connection) Current() *Transaction { return c.current }
func (c *Connection) Last() *Transaction    { return c.last }
func (c *Connection) TxCount() int          { return c.txCount }

// RemoveTx removes target from the connection's queue by walking from
// first, updating first/current/last as needed. Removing a transaction
// that is not in the list is a programming error (spec.md §4.F).
func (c *Connection) RemoveTx(target *Transaction) {
	debug.Assert(target != nil, "nil transaction")
	if c.first == target {
		c.first = target.Next
		if c.current == target {
			c.current = c.first
		}
		if c.last == target {
			c.last = c.first
		}
		target.Next = nil
		return
	}
	prev := c.first
	for prev != nil && prev.Next != target {
		prev = prev.Next
	}
	debug.Assert(prev != nil, "removing a transaction not linked into this connection")
	if prev == nil {
		return
	}
	prev.Next = target.Next
	if c.current == target {
		c.current = prev
	}
	if c.last == target {
		c.last = prev
	}
	target.Next = nil
}

// Destroy releases the connection's arena, which transitively destroys
// every live transaction's arena.
func (c *Connection) Destroy() {
	c.Arena.Destroy()
}
