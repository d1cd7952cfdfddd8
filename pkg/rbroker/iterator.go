// SPDX-License-Identifier: AGPL-3.0-or-later

package rbroker

import (
	"sync"

	"github.com/google/uuid"
)

// Iterator is the user-visible cursor the ITERATOR opcode advances one
// step per call. It does not survive a reconnect: a fresh Client always
// starts with an empty IteratorList, and any Tag referencing an
// iterator from a prior connection is simply unknown to it.
type Iterator struct {
	id     uuid.UUID
	ns     *NamespaceHandle
	match  string
	mu     sync.Mutex
	cursor uint64
	lastKey []byte
	done   bool
}

// ID returns the iterator's process-local identity.
func (it *Iterator) ID() uuid.UUID { return it.id }

// LastKey returns the key most recently delivered by a successful step,
// or nil if the iterator has not yet produced one.
func (it *Iterator) LastKey() []byte {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.lastKey
}

// Done reports whether the backend signaled cursor exhaustion.
func (it *Iterator) Done() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.done
}

func (it *Iterator) setCursor(cursor uint64, key []byte) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.cursor = cursor
	it.lastKey = key
	it.done = cursor == 0
}

// IteratorList owns every Iterator a Client has created, keyed by the
// iterator's ID. A Client destroys the whole list — not each iterator
// individually — in Close.
type IteratorList struct {
	mu    sync.Mutex
	byTag map[uuid.UUID]*Iterator
}

// NewIteratorList builds an empty list.
func NewIteratorList() *IteratorList {
	return &IteratorList{byTag: make(map[uuid.UUID]*Iterator)}
}

// New allocates a fresh Iterator scoped to ns and match, registers it,
// and returns it.
func (l *IteratorList) New(ns *NamespaceHandle, match string) *Iterator {
	it := &Iterator{id: uuid.New(), ns: ns, match: match}
	l.mu.Lock()
	l.byTag[it.id] = it
	l.mu.Unlock()
	return it
}

// Lookup returns the iterator registered under id, if any.
func (l *IteratorList) Lookup(id uuid.UUID) (*Iterator, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	it, ok := l.byTag[id]
	return it, ok
}

// Release removes id from the list. Client.IteratorStep calls this once
// a step leaves the iterator Done, and Client.ReleaseIterator calls it
// directly; a released ID is never reused.
func (l *IteratorList) Release(id uuid.UUID) {
	l.mu.Lock()
	delete(l.byTag, id)
	l.mu.Unlock()
}

// DestroyAll releases every outstanding iterator, used by Client.Close.
func (l *IteratorList) DestroyAll() {
	l.mu.Lock()
	l.byTag = make(map[uuid.UUID]*Iterator)
	l.mu.Unlock()
}

// Len reports the number of outstanding iterators, mainly for tests and
// metrics.
func (l *IteratorList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byTag)
}
