// SPDX-License-Identifier: AGPL-3.0-or-later

package rbroker

import "fmt"

// UserRequest is the caller-supplied description of one operation. Next
// is read only by MOVE, whose command builder takes the destination
// namespace from it; allocate and the Client never post chain elements
// as requests of their own, so any further elements are ignored.
type UserRequest struct {
	Opcode    Opcode
	Namespace *NamespaceHandle
	Key       string
	Match     string // match template, e.g. a SCAN MATCH pattern
	Flags     Flags
	Cookie    uint64
	SGEs      []SGE
	Next      *UserRequest
}

// request is the engine-internal lifecycle record. It is mutated only
// by the Client goroutine that owns the connection it belongs to, so it
// carries no internal locking.
type request struct {
	user       *UserRequest
	opcode     Opcode
	stage      int
	terminal   bool
	tombstoned bool // cancelled but awaiting the in-flight reply to discard
	completion *Completion
	scratch    stageScratch
	tag        Tag
}

// stageScratch is per-opcode scratch state discriminated by req.opcode
// rather than by a tagged union: every field lives unexported on one
// struct, and only the fields relevant to req.opcode are ever populated.
type stageScratch struct {
	cursor   uint64   // Directory/Iterator: current SCAN cursor
	matched  [][]byte // Directory: accumulated keys across scan pages
	iter     *Iterator
	nsHandle *NamespaceHandle
}

// allocate builds a request record from a UserRequest. It fails with
// ErrInvalid when user is nil or names Unspec/Cancel as an opcode to
// stage (Cancel is handled directly by Client.Cancel, never staged).
func allocate(user *UserRequest) (*request, error) {
	if user == nil {
		return nil, newError("allocate", ErrInvalid, fmt.Errorf("nil user request"))
	}
	if user.Opcode == Unspec || user.Opcode == Cancel {
		return nil, newError("allocate", ErrInvalid, fmt.Errorf("opcode %s cannot be staged", user.Opcode))
	}
	if _, ok := lookupStage(user.Opcode, 0); !ok {
		return nil, newError("allocate", ErrNoImpl, fmt.Errorf("no stage specification for opcode %s", user.Opcode))
	}
	return &request{
		user:   user,
		opcode: user.Opcode,
		stage:  0,
	}, nil
}

// destroy releases request-owned resources. It is safe to call exactly
// once; the Client guarantees that by only ever calling it from the single
// goroutine that produced the request, immediately after a completion is
// delivered or the request is cancelled.
func (r *request) destroy() {
	r.scratch.matched = nil
	r.scratch.iter = nil
	r.scratch.nsHandle = nil
}
