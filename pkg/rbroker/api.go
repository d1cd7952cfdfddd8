// SPDX-License-Identifier: AGPL-3.0-or-later

package rbroker

import "context"

// Put stores value under key in ns, gathered from a single SGE, blocking
// until the backend acknowledges it.
func (c *Client) Put(ctx context.Context, ns *NamespaceHandle, key string, value []byte, cookie uint64) (*Completion, error) {
	return c.Post(ctx, &UserRequest{
		Opcode:    Put,
		Namespace: ns,
		Key:       key,
		Cookie:    cookie,
		SGEs:      []SGE{{Base: value}},
	})
}

// PutAsync is Put's non-blocking counterpart.
func (c *Client) PutAsync(ns *NamespaceHandle, key string, value []byte, cookie uint64) (Tag, <-chan *Completion, error) {
	return c.PostAsync(&UserRequest{
		Opcode:    Put,
		Namespace: ns,
		Key:       key,
		Cookie:    cookie,
		SGEs:      []SGE{{Base: value}},
	})
}

// Get destructively reads key's value into buf, truncating per the
// PARTIAL flag's rules if buf is smaller than the stored value.
func (c *Client) Get(ctx context.Context, ns *NamespaceHandle, key string, buf []byte, flags Flags, cookie uint64) (*Completion, error) {
	return c.Post(ctx, &UserRequest{
		Opcode:    Get,
		Namespace: ns,
		Key:       key,
		Flags:     flags,
		Cookie:    cookie,
		SGEs:      []SGE{{Base: buf}},
	})
}

// GetAsync is Get's non-blocking counterpart.
func (c *Client) GetAsync(ns *NamespaceHandle, key string, buf []byte, flags Flags, cookie uint64) (Tag, <-chan *Completion, error) {
	return c.PostAsync(&UserRequest{
		Opcode:    Get,
		Namespace: ns,
		Key:       key,
		Flags:     flags,
		Cookie:    cookie,
		SGEs:      []SGE{{Base: buf}},
	})
}

// Read peeks key's value into buf without consuming it.
func (c *Client) Read(ctx context.Context, ns *NamespaceHandle, key string, buf []byte, flags Flags, cookie uint64) (*Completion, error) {
	return c.Post(ctx, &UserRequest{
		Opcode:    Read,
		Namespace: ns,
		Key:       key,
		Flags:     flags,
		Cookie:    cookie,
		SGEs:      []SGE{{Base: buf}},
	})
}

// ReadAsync is Read's non-blocking counterpart.
func (c *Client) ReadAsync(ns *NamespaceHandle, key string, buf []byte, flags Flags, cookie uint64) (Tag, <-chan *Completion, error) {
	return c.PostAsync(&UserRequest{
		Opcode:    Read,
		Namespace: ns,
		Key:       key,
		Flags:     flags,
		Cookie:    cookie,
		SGEs:      []SGE{{Base: buf}},
	})
}

// Remove deletes key from ns.
func (c *Client) Remove(ctx context.Context, ns *NamespaceHandle, key string, cookie uint64) (*Completion, error) {
	return c.Post(ctx, &UserRequest{
		Opcode:    Remove,
		Namespace: ns,
		Key:       key,
		Cookie:    cookie,
	})
}

// RemoveAsync is Remove's non-blocking counterpart.
func (c *Client) RemoveAsync(ns *NamespaceHandle, key string, cookie uint64) (Tag, <-chan *Completion, error) {
	return c.PostAsync(&UserRequest{
		Opcode:    Remove,
		Namespace: ns,
		Key:       key,
		Cookie:    cookie,
	})
}

// Move relocates key from srcNS to dstNS in three backend round trips
// (copy, verify, delete-source). The three round trips are stages of a
// single request; UserRequest.Next only carries the destination
// namespace and is not posted as a request of its own.
func (c *Client) Move(ctx context.Context, srcNS, dstNS *NamespaceHandle, key string, cookie uint64) (*Completion, error) {
	return c.Post(ctx, &UserRequest{
		Opcode:    Move,
		Namespace: srcNS,
		Key:       key,
		Cookie:    cookie,
		Next:      &UserRequest{Namespace: dstNS, Key: key},
	})
}

// MoveAsync is Move's non-blocking counterpart.
func (c *Client) MoveAsync(srcNS, dstNS *NamespaceHandle, key string, cookie uint64) (Tag, <-chan *Completion, error) {
	return c.PostAsync(&UserRequest{
		Opcode:    Move,
		Namespace: srcNS,
		Key:       key,
		Cookie:    cookie,
		Next:      &UserRequest{Namespace: dstNS, Key: key},
	})
}

// Directory enumerates every key matching match within ns, accumulating
// pages until the backend's scan cursor reaches zero, and scatters the
// joined key list into buf.
func (c *Client) Directory(ctx context.Context, ns *NamespaceHandle, match string, buf []byte, cookie uint64) (*Completion, error) {
	return c.Post(ctx, &UserRequest{
		Opcode:    Directory,
		Namespace: ns,
		Match:     match,
		Cookie:    cookie,
		SGEs:      []SGE{{Base: buf}},
	})
}

// DirectoryAsync is Directory's non-blocking counterpart.
func (c *Client) DirectoryAsync(ns *NamespaceHandle, match string, buf []byte, cookie uint64) (Tag, <-chan *Completion, error) {
	return c.PostAsync(&UserRequest{
		Opcode:    Directory,
		Namespace: ns,
		Match:     match,
		Cookie:    cookie,
		SGEs:      []SGE{{Base: buf}},
	})
}

// NewIterator allocates an iterator scoped to ns and match, registered
// with the Client's IteratorList. IteratorStep advances it one element
// at a time via the ITERATOR opcode.
func (c *Client) NewIterator(ns *NamespaceHandle, match string) *Iterator {
	return c.iter.New(ns, match)
}

// IteratorStep advances it by one element, scattering the next key into
// buf. The caller checks it.Done() after a successful step.
func (c *Client) IteratorStep(ctx context.Context, it *Iterator, buf []byte, cookie uint64) (*Completion, error) {
	req := &UserRequest{
		Opcode:    Iterator,
		Namespace: it.ns,
		Match:     it.match,
		Cookie:    cookie,
		SGEs:      []SGE{{Base: buf}},
	}
	r, err := allocate(req)
	if err != nil {
		return nil, err
	}
	r.scratch.iter = it
	r.scratch.cursor = it.cursor
	done := make(chan *Completion, 1)
	select {
	case c.inbox <- postMsg{req: r, done: done}:
	case <-ctx.Done():
		return nil, newError("IteratorStep", ErrInProgress, ctx.Err())
	case <-c.quit:
		return nil, newError("IteratorStep", ErrNoConnect, errClientClosed)
	}
	select {
	case comp := <-done:
		if comp.Status == Success && it.Done() {
			c.iter.Release(it.id)
		}
		return comp, nil
	case <-ctx.Done():
		return nil, newError("IteratorStep", ErrInProgress, ctx.Err())
	}
}

// ReleaseIterator removes it from the Client's IteratorList without a
// further backend round trip, e.g. when the caller abandons enumeration
// early.
func (c *Client) ReleaseIterator(it *Iterator) {
	c.iter.Release(it.id)
}

// NSCreate registers a new namespace named name, returning a handle to
// it on success.
func (c *Client) NSCreate(ctx context.Context, name string, cookie uint64) (*NamespaceHandle, *Completion, error) {
	if err := validateName(name); err != nil {
		return nil, nil, err
	}
	h := c.ns.newHandle(name)
	comp, err := c.Post(ctx, &UserRequest{
		Opcode:    NSCreate,
		Namespace: h,
		Cookie:    cookie,
	})
	if err != nil || comp.Status != Success {
		return nil, comp, err
	}
	return h, comp, nil
}

// NSAttach increments the local and backend attach refcount for an
// already-known namespace handle.
func (c *Client) NSAttach(ctx context.Context, h *NamespaceHandle, cookie uint64) (*Completion, error) {
	req := &UserRequest{Opcode: NSAttach, Namespace: h, Cookie: cookie}
	r, err := allocate(req)
	if err != nil {
		return nil, err
	}
	r.scratch.nsHandle = h
	return c.postRequest(ctx, r)
}

// NSDetach decrements the local and backend attach refcount.
func (c *Client) NSDetach(ctx context.Context, h *NamespaceHandle, cookie uint64) (*Completion, error) {
	req := &UserRequest{Opcode: NSDetach, Namespace: h, Cookie: cookie}
	r, err := allocate(req)
	if err != nil {
		return nil, err
	}
	r.scratch.nsHandle = h
	return c.postRequest(ctx, r)
}

// NSDelete removes the namespace h names, failing with ErrNSBusy if its
// backend attach refcount is still nonzero.
func (c *Client) NSDelete(ctx context.Context, h *NamespaceHandle, cookie uint64) (*Completion, error) {
	req := &UserRequest{Opcode: NSDelete, Namespace: h, Cookie: cookie}
	r, err := allocate(req)
	if err != nil {
		return nil, err
	}
	r.scratch.nsHandle = h
	comp, err := c.postRequest(ctx, r)
	if err == nil && comp.Status == Success {
		c.ns.forget(h.Name())
	}
	return comp, err
}

// NSQuery lists every known namespace and its attach refcount into buf.
func (c *Client) NSQuery(ctx context.Context, buf []byte, cookie uint64) (*Completion, error) {
	return c.Post(ctx, &UserRequest{
		Opcode: NSQuery,
		Cookie: cookie,
		SGEs:   []SGE{{Base: buf}},
	})
}

// postRequest submits an already-allocated request, used by the
// NS-lifecycle calls above that need to attach scratch state before the
// request reaches the inbox.
func (c *Client) postRequest(ctx context.Context, r *request) (*Completion, error) {
	done := make(chan *Completion, 1)
	select {
	case c.inbox <- postMsg{req: r, done: done}:
	case <-ctx.Done():
		return nil, newError("postRequest", ErrInProgress, ctx.Err())
	case <-c.quit:
		return nil, newError("postRequest", ErrNoConnect, errClientClosed)
	}
	select {
	case comp := <-done:
		return comp, nil
	case <-ctx.Done():
		return nil, newError("postRequest", ErrInProgress, ctx.Err())
	}
}
