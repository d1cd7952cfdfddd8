// SPDX-License-Identifier: AGPL-3.0-or-later

// Package memtransport is an in-memory transport.Transport used by the
// tests: it never touches a socket, instead handing
// each sent command to a caller-supplied Responder and feeding the
// Responder's answer back as a Reply.
package memtransport

import (
	"sync"

	"github.com/google/uuid"

	"github.com/databroker-go/rbroker/internal/resp"
	"github.com/databroker-go/rbroker/pkg/transport"
)

// Responder computes the decoded RESP result and backend rc for a
// RESP-encoded command. Tests implement this to script exact
// request/reply sequences without a real server.
type Responder func(cmd []byte) (result resp.Result, rc int32, err error)

// Transport is a transport.Transport backed by a Responder, run
// synchronously on the calling goroutine inside Send.
type Transport struct {
	respond Responder

	mu   sync.Mutex
	sink chan<- transport.Reply
}

// New builds a Transport that answers every Send with respond.
func New(respond Responder) *Transport {
	return &Transport{respond: respond}
}

// SetReplySink implements transport.Transport.
func (t *Transport) SetReplySink(ch chan<- transport.Reply) {
	t.mu.Lock()
	t.sink = ch
	t.mu.Unlock()
}

// Send implements transport.Transport, invoking the Responder inline and
// delivering its result on the installed sink.
func (t *Transport) Send(tag uuid.UUID, cmd []byte) error {
	result, rc, err := t.respond(cmd)
	t.mu.Lock()
	sink := t.sink
	t.mu.Unlock()
	if sink == nil {
		return nil
	}
	sink <- transport.Reply{Tag: tag, Result: result, RC: rc, Err: err}
	return nil
}

// Close implements transport.Transport; memtransport owns no resources.
func (t *Transport) Close() error { return nil }
