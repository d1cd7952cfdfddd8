// SPDX-License-Identifier: AGPL-3.0-or-later

package rbroker

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// MaxNamespaceName is the longest namespace name the engine will submit
// to the backend: 255 bytes, matching the longest single path component
// the rest of the tuple-space API already assumes for keys.
const MaxNamespaceName = 255

// NamespaceHandle is the opaque, refcounted handle NSCREATE and NSATTACH
// hand back. It intentionally carries no server-assigned numeric
// identity: callers look it up by name through a NamespaceManager, never
// by casting this struct to an integer.
type NamespaceHandle struct {
	id      uuid.UUID
	name    string
	refs    atomic.Int32
	deleted atomic.Bool
}

// ID returns the handle's process-local identity, stable for the life of
// the handle.
func (h *NamespaceHandle) ID() uuid.UUID { return h.id }

// Name returns the namespace name the handle was created or attached for.
func (h *NamespaceHandle) Name() string { return h.name }

// Refs reports the current local attach refcount.
func (h *NamespaceHandle) Refs() int32 { return h.refs.Load() }

// Deleted reports whether NSDELETE has completed successfully against
// this namespace; attach/detach remain legal afterward (they only touch
// the local refcount) but any further command against the handle is the
// caller's error to avoid, not the engine's to detect mid-flight.
func (h *NamespaceHandle) Deleted() bool { return h.deleted.Load() }

func (h *NamespaceHandle) attach()      { h.refs.Add(1) }
func (h *NamespaceHandle) detach()      { h.refs.Add(-1) }
func (h *NamespaceHandle) markDeleted() { h.deleted.Store(true) }

// NamespaceManager tracks every NamespaceHandle a Client has created or
// attached, keyed by name. Name lookup is the one place an LRU cache
// earns its keep: a long-running client that attaches/detaches the same
// handful of namespaces repeatedly should not pay a map miss plus a
// round trip for names it already resolved.
type NamespaceManager struct {
	cache *lru.Cache[string, *NamespaceHandle]
}

// NewNamespaceManager builds a manager caching up to capacity distinct
// namespace names (128 when capacity is not positive). The cache evicts
// the least recently used name regardless of the handle's local
// refcount; eviction never invalidates a handle a caller still holds a
// reference to, since Go's GC — not the cache — owns the handle's
// lifetime.
func NewNamespaceManager(capacity int) (*NamespaceManager, error) {
	if capacity <= 0 {
		capacity = 128
	}
	c, err := lru.NewWithEvict[string, *NamespaceHandle](capacity, evictIdleHandle)
	if err != nil {
		return nil, newError("NewNamespaceManager", ErrInvalid, err)
	}
	return &NamespaceManager{cache: c}, nil
}

func evictIdleHandle(name string, h *NamespaceHandle) {
	// Nothing to release: handles with outstanding references are kept
	// alive by the caller, not by this cache.
}

// validateName checks a namespace name against MaxNamespaceName before it
// is ever staged into a request, so a too-long name fails locally with
// ErrNSInval instead of round-tripping to the backend first.
func validateName(name string) error {
	if name == "" {
		return newError("validateName", ErrNSInval, fmt.Errorf("empty namespace name"))
	}
	if len(name) > MaxNamespaceName {
		return newError("validateName", ErrNSInval, fmt.Errorf("namespace name exceeds %d bytes", MaxNamespaceName))
	}
	return nil
}

// Lookup returns the cached handle for name, if any local handle has
// already been created or attached for it in this process.
func (m *NamespaceManager) Lookup(name string) (*NamespaceHandle, bool) {
	return m.cache.Get(name)
}

// newHandle returns the cached handle for name, or allocates and caches
// a fresh one. Client.NSCreate calls it before posting the NSCREATE
// request, whatever that request's outcome turns out to be.
func (m *NamespaceManager) newHandle(name string) *NamespaceHandle {
	if h, ok := m.cache.Get(name); ok {
		return h
	}
	h := &NamespaceHandle{id: uuid.New(), name: name}
	m.cache.Add(name, h)
	return h
}

// forget drops name from the cache, used after a successful NSDELETE so a
// later NSCREATE of the same name doesn't resurrect a stale handle.
func (m *NamespaceManager) forget(name string) {
	m.cache.Remove(name)
}
