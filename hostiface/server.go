// Package hostiface declares the abstract shapes the core consumes but
// never implements itself (spec.md §6 "External Interfaces"): the server
// interface a host implements to apply responses/closes, the logger
// handle records are handed to, and the module descriptor a plugin
// registers with the engine.
package hostiface

import (
	"github.com/httpinspect/engine/entity"
	"github.com/httpinspect/engine/internal/status"
)

// HeaderDirection selects which half of the transaction a Header call
// mutates.
type HeaderDirection int

const (
	DirRequest HeaderDirection = iota
	DirResponse
)

// HeaderAction enumerates the mutation the host should apply.
type HeaderAction int

const (
	ActionSet HeaderAction = iota
	ActionAppend
	ActionMerge
	ActionAdd
	ActionUnset
	ActionEdit
)

// Server is the host-implemented interface the core calls into to apply
// error responses, header edits, and connection closes (spec.md §6).
// Every method returns a status.Code; status.ENotImpl and status.Declined
// are soft-fails the caller must not treat as hard errors (spec.md §7).
type Server interface {
	ErrorResponse(tx *entity.Transaction, statusCode int) status.Code
	ErrorHeader(tx *entity.Transaction, name, value string) status.Code
	ErrorBody(tx *entity.Transaction, data []byte) status.Code
	Header(tx *entity.Transaction, dir HeaderDirection, action HeaderAction, name, value string) status.Code
	Close(conn *entity.Connection, tx *entity.Transaction) status.Code
	Descriptor() Descriptor
}

// Descriptor identifies the host server to the engine at creation time
// (spec.md §6 "Server descriptor").
type Descriptor struct {
	Vernum        uint64
	Abinum        uint64
	VersionString string
	Filename      string
	Name          string
}

// CompatibleWith reports whether the engine (at engineVernum) accepts a
// server at this descriptor's version. Engine create refuses with
// eincompat when server.vernum > engine.vernum (spec.md §6).
func (d Descriptor) CompatibleWith(engineVernum uint64) bool {
	return d.Vernum <= engineVernum
}
