// SPDX-License-Identifier: AGPL-3.0-or-later

package rbroker

import "github.com/google/uuid"

// Tag is the opaque handle an async Post returns, used later to Cancel the
// request. A UUID stands in for a raw request pointer, avoiding numeric
// identity across a trust boundary.
type Tag uuid.UUID

func newTag() Tag { return Tag(uuid.New()) }

func (t Tag) String() string { return uuid.UUID(t).String() }

// ParseTag parses a Tag previously rendered by Tag.String, e.g. one a
// caller persisted or printed between process invocations.
func ParseTag(s string) (Tag, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Tag{}, newError("ParseTag", ErrInvalid, err)
	}
	return Tag(id), nil
}

// Completion is the terminal record delivered to the caller: a user
// cookie, a numeric rc, and a Status. Ownership transfers to whoever
// receives it off the Client's completion channel; there is nothing to
// free in Go, but a Completion is still delivered exactly once per
// request.
type Completion struct {
	Cookie uint64
	RC     int64
	Status Status
}

// completeCancel synchronously produces a CANCELLED completion for req
// and marks it terminal. If a completion slot was already attached to
// req (see completeCommand's pre-attached-slot contract) that same slot
// is reused rather than allocating a new one.
func completeCancel(r *request) *Completion {
	c := r.completion
	if c == nil {
		c = &Completion{}
		r.completion = c
	}
	c.Cookie = r.user.Cookie
	c.RC = 0
	c.Status = ErrCancelled
	r.terminal = true
	return c
}
