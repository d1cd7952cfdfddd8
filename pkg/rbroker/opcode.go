// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rbroker is the request lifecycle engine for a client-side
// backend that maps a tuple-space key/value API onto a Redis-protocol
// server: per-opcode staged command specification, request allocation and
// stage transitions, completion/cancellation, and the namespace handle and
// iterator-list bookkeeping those depend on. Socket I/O, RESP wire
// decoding, and application-level argument marshalling are external
// collaborators reached through the Transport interface in
// github.com/databroker-go/rbroker/pkg/transport, not this package.
package rbroker

// Opcode identifies the operation a Request performs. The zero value,
// Unspec, is never a valid opcode to post.
type Opcode int

const (
	Unspec Opcode = iota
	Put
	Get
	Read
	Move
	Remove
	Directory
	NSCreate
	NSAttach
	NSDetach
	NSDelete
	NSQuery
	Iterator
	Cancel
)

func (o Opcode) String() string {
	switch o {
	case Unspec:
		return "UNSPEC"
	case Put:
		return "PUT"
	case Get:
		return "GET"
	case Read:
		return "READ"
	case Move:
		return "MOVE"
	case Remove:
		return "REMOVE"
	case Directory:
		return "DIRECTORY"
	case NSCreate:
		return "NSCREATE"
	case NSAttach:
		return "NSATTACH"
	case NSDetach:
		return "NSDETACH"
	case NSDelete:
		return "NSDELETE"
	case NSQuery:
		return "NSQUERY"
	case Iterator:
		return "ITERATOR"
	case Cancel:
		return "CANCEL"
	default:
		return "UNKNOWN"
	}
}
