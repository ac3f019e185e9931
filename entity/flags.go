package entity

// TxFlag enumerates the per-transaction monotonic flags named in spec.md
// §8.1. Once set, a flag is never cleared until the transaction's arena is
// destroyed.
type TxFlag uint32

const (
	FlagReqStarted TxFlag = 1 << iota
	FlagReqLine
	FlagReqHeader
	FlagReqBody
	FlagReqFinished
	FlagResStarted
	FlagResLine
	FlagResHeader
	FlagResBody
	FlagResFinished
	FlagPostprocess
	FlagLogging
	FlagBlocked
	FlagBlockingMode
	FlagHasReqData
	FlagHasResData
	FlagHTTP09
	FlagPipelined
	FlagTxStarted
	FlagTxFinished
)

// ConnFlag enumerates the per-connection monotonic flags (spec.md §3
// Connection: "Connection flags are monotonic").
type ConnFlag uint32

const (
	ConnStarted ConnFlag = 1 << iota
	ConnOpened
	ConnSeenDataIn
	ConnSeenDataOut
	ConnClosed
	ConnFinished
)

// flagSet is a tiny helper shared by Connection/Transaction to enforce
// "set but never cleared" semantics without a dependency on atomic
// bitsets elsewhere in the tree.
type flagSet uint32

func (f *flagSet) set(bit uint32)        { *f |= flagSet(bit) }
func (f flagSet) has(bit uint32) bool    { return uint32(f)&bit == bit }
func (f flagSet) any(mask uint32) bool   { return uint32(f)&mask != 0 }
