// SPDX-License-Identifier: AGPL-3.0-or-later

package rbroker

import (
	"strconv"

	"github.com/databroker-go/rbroker/internal/resp"
)

// completeCommand is the completion engine's sole entry point: given a
// request, the decoded reply, and the backend's numeric rc, it either
// advances the request to its next stage or produces a terminal
// Completion.
//
// It returns (nil, nil) when the stage advanced and the request remains
// in flight, (*Completion, nil) when the request reached a terminal
// state, and (nil, err) for the three local-error cases that never
// produce a completion: nil arguments, a request that is already
// terminal, or a request whose stage has no matching stageSpec.
func completeCommand(r *request, result *resp.Result, rc BackendCode) (*Completion, error) {
	if r == nil || result == nil {
		return nil, errNilArg
	}
	if r.terminal {
		return nil, errProto
	}
	spec, ok := lookupStage(r.opcode, r.stage)
	if !ok {
		return nil, errProto
	}

	switch r.opcode {
	case Directory:
		return completeDirectory(r, result, rc, spec)
	case Iterator:
		return completeIterator(r, result, rc, spec)
	case Get, Read:
		return completeGetRead(r, result, rc, spec)
	case NSDelete:
		return completeNSDelete(r, result, rc, spec)
	case NSCreate, NSAttach:
		return completeNSCreateAttach(r, result, rc, spec)
	case NSDetach:
		return completeNSDetach(r, result, rc, spec)
	default:
		return completeGeneric(r, result, rc, spec)
	}
}

// finishTerminal builds (or reuses a pre-attached) Completion for r,
// marking it terminal. A request with a completion already attached
// reuses that same slot rather than allocating a fresh one.
func finishTerminal(r *request, cookie uint64, status Status, rc int64) *Completion {
	c := r.completion
	if c == nil {
		c = &Completion{}
		r.completion = c
	}
	c.Cookie = cookie
	c.Status = status
	c.RC = rc
	r.terminal = true
	return c
}

// advance transitions r to the next stage and reports "still in flight".
func advance(r *request, spec stageSpec) (*Completion, error) {
	if spec.terminal || spec.next == TerminalStage {
		r.terminal = true
		return nil, nil
	}
	r.stage = spec.next
	return nil, nil
}

// completeGeneric handles the opcodes with no special-cased reply shape:
// PUT, REMOVE, MOVE, NSQUERY stage checks, and any stage whose rc!=0.
func completeGeneric(r *request, result *resp.Result, rc BackendCode, spec stageSpec) (*Completion, error) {
	if rc != BackendSuccess {
		status := translateRC(spec, rc)
		return finishTerminal(r, r.user.Cookie, status, 0), nil
	}
	if !replyMatches(spec.expect, result) {
		return finishTerminal(r, r.user.Cookie, ErrBEGeneral, 0), nil
	}
	if !spec.terminal && spec.next != TerminalStage {
		return advance(r, spec)
	}
	rcOut := int64(0)
	if result.Type == resp.TypeInteger {
		rcOut = result.Integer
	}
	if r.opcode == NSQuery {
		n := scatterFieldsInto(r.user.SGEs, result)
		return finishTerminal(r, r.user.Cookie, Success, int64(n)), nil
	}
	return finishTerminal(r, r.user.Cookie, Success, rcOut), nil
}

// completeGetRead implements GET/READ's PARTIAL-flag truncation rules:
// a value too large for the caller's buffer either fails with
// ErrUBuffer or, with PARTIAL set, is silently truncated and scattered.
func completeGetRead(r *request, result *resp.Result, rc BackendCode, spec stageSpec) (*Completion, error) {
	partial := r.user.Flags.Has(Partial)

	if rc == BackendENoSpc && !partial {
		// Buffer too small, PARTIAL not set: caller must retry with a
		// larger buffer. The backend reports the size actually needed
		// as an integer alongside -ENOSPC.
		return finishTerminal(r, r.user.Cookie, ErrUBuffer, result.Integer), nil
	}
	if rc != BackendSuccess {
		status := translateRC(spec, rc)
		return finishTerminal(r, r.user.Cookie, status, 0), nil
	}
	if result.Type == resp.TypeNil {
		return finishTerminal(r, r.user.Cookie, ErrUnavail, 0), nil
	}

	value := result.Bulk
	needed := int64(len(value))
	have := TotalLen(r.user.SGEs)
	if int64(have) < needed {
		if !partial {
			return finishTerminal(r, r.user.Cookie, ErrUBuffer, needed), nil
		}
		// PARTIAL accepts truncation silently; rc reports the true size
		// so the caller can notice and resize next time if it wants to.
		ScatterInto(r.user.SGEs, value)
		return finishTerminal(r, r.user.Cookie, Success, needed), nil
	}
	n := ScatterInto(r.user.SGEs, value)
	return finishTerminal(r, r.user.Cookie, Success, int64(n)), nil
}

// completeDirectory implements the scan-style enumeration: each reply is
// a two-element array [cursor, matched-keys]; the request self-loops at
// stage 0, accumulating matches, until the decoded cursor is 0.
func completeDirectory(r *request, result *resp.Result, rc BackendCode, spec stageSpec) (*Completion, error) {
	if rc != BackendSuccess {
		status := translateRC(spec, rc)
		return finishTerminal(r, r.user.Cookie, status, 0), nil
	}
	if result.Type != resp.TypeArray || len(result.Array) != 2 {
		return finishTerminal(r, r.user.Cookie, ErrBEGeneral, 0), nil
	}
	cursor, err := parseCursor(result.Array[0])
	if err != nil {
		return finishTerminal(r, r.user.Cookie, ErrBEGeneral, 0), nil
	}
	for _, item := range result.Array[1].Array {
		if item.Type == resp.TypeBulk {
			r.scratch.matched = append(r.scratch.matched, item.Bulk)
		}
	}
	if cursor == 0 {
		joined := joinKeys(r.scratch.matched)
		n := ScatterInto(r.user.SGEs, joined)
		_ = n
		return finishTerminal(r, r.user.Cookie, Success, int64(len(r.scratch.matched))), nil
	}
	r.scratch.cursor = cursor
	return nil, nil
}

// completeIterator advances a single-step cursor: the reply is a
// two-element array [cursor, key], shaped like one Directory page except
// that the second element is a single bulk key rather than an array of
// keys, and ITERATOR never loops internally — one call is one step.
func completeIterator(r *request, result *resp.Result, rc BackendCode, spec stageSpec) (*Completion, error) {
	if rc != BackendSuccess {
		status := translateRC(spec, rc)
		return finishTerminal(r, r.user.Cookie, status, 0), nil
	}
	if result.Type == resp.TypeNil {
		return finishTerminal(r, r.user.Cookie, ErrIterator, 0), nil
	}
	if result.Type != resp.TypeArray || len(result.Array) != 2 {
		return finishTerminal(r, r.user.Cookie, ErrBEGeneral, 0), nil
	}
	cursor, err := parseCursor(result.Array[0])
	if err != nil {
		return finishTerminal(r, r.user.Cookie, ErrBEGeneral, 0), nil
	}
	key := result.Array[1].Bulk
	if it := r.scratch.iter; it != nil {
		it.setCursor(cursor, key)
	}
	n := ScatterInto(r.user.SGEs, key)
	return finishTerminal(r, r.user.Cookie, Success, int64(n)), nil
}

// completeNSDelete implements the +EBUSY special case: the one positive
// backend rc in the whole table, carrying the residual refcount in
// result.Integer rather than in an error string.
func completeNSDelete(r *request, result *resp.Result, rc BackendCode, spec stageSpec) (*Completion, error) {
	if rc == BackendEBusy {
		return finishTerminal(r, r.user.Cookie, ErrNSBusy, result.Integer), nil
	}
	if rc != BackendSuccess {
		status := translateRC(spec, rc)
		return finishTerminal(r, r.user.Cookie, status, 0), nil
	}
	if h := r.scratch.nsHandle; h != nil {
		h.markDeleted()
	}
	return finishTerminal(r, r.user.Cookie, Success, 0), nil
}

// completeNSCreateAttach handles NSCREATE's two-stage allocate/verify
// sequence and NSATTACH's single refcount bump, both of which hand back
// an opaque NamespaceHandle rather than encoding it as a numeric rc.
func completeNSCreateAttach(r *request, result *resp.Result, rc BackendCode, spec stageSpec) (*Completion, error) {
	if rc != BackendSuccess {
		status := translateRC(spec, rc)
		return finishTerminal(r, r.user.Cookie, status, 0), nil
	}
	if !spec.terminal && spec.next != TerminalStage {
		return advance(r, spec)
	}
	if h := r.scratch.nsHandle; h != nil {
		h.attach()
	}
	return finishTerminal(r, r.user.Cookie, Success, 0), nil
}

// completeNSDetach mirrors completeNSCreateAttach for the decrement side.
func completeNSDetach(r *request, result *resp.Result, rc BackendCode, spec stageSpec) (*Completion, error) {
	if rc != BackendSuccess {
		status := translateRC(spec, rc)
		return finishTerminal(r, r.user.Cookie, status, 0), nil
	}
	if h := r.scratch.nsHandle; h != nil {
		h.detach()
	}
	return finishTerminal(r, r.user.Cookie, Success, 0), nil
}

func replyMatches(want expect, result *resp.Result) bool {
	if result.Type == resp.TypeError {
		return false
	}
	switch want {
	case expectInt:
		return result.Type == resp.TypeInteger
	case expectBulk:
		return result.Type == resp.TypeBulk || result.Type == resp.TypeNil
	case expectArray:
		return result.Type == resp.TypeArray
	case expectAny:
		return true
	default:
		return false
	}
}

func parseCursor(r resp.Result) (uint64, error) {
	if r.Type == resp.TypeInteger {
		return uint64(r.Integer), nil
	}
	return strconv.ParseUint(string(r.Bulk), 10, 64)
}

func joinKeys(keys [][]byte) []byte {
	out := make([]byte, 0)
	for i, k := range keys {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, k...)
	}
	return out
}

// scatterFieldsInto flattens an HGETALL-style field/value array into the
// user's SGE vector as "field:value\n" lines, for NSQUERY, returning the
// number of fields delivered.
func scatterFieldsInto(sges []SGE, result *resp.Result) int {
	if result.Type != resp.TypeArray {
		return 0
	}
	buf := make([]byte, 0)
	fields := 0
	for i := 0; i+1 < len(result.Array); i += 2 {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, result.Array[i].Bulk...)
		buf = append(buf, ':')
		buf = append(buf, result.Array[i+1].Bulk...)
		fields++
	}
	ScatterInto(sges, buf)
	return fields
}
