// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport defines the boundary between the request lifecycle
// engine in pkg/rbroker and whatever actually carries bytes to a
// Redis-protocol server: a real TCP connection (nettransport) or an
// in-memory fake for tests and dry runs (memtransport). The engine only
// ever sees this interface, never net.Conn directly: RESP wire parsing
// lives entirely on the transport's side of the boundary.
package transport

import (
	"github.com/google/uuid"

	"github.com/databroker-go/rbroker/internal/resp"
)

// Reply is one decoded response: the parsed RESP value, the backend
// return code that accompanied it (a RESP error reply's leading signed
// integer, by the convention this protocol builds on top of RESP; zero
// for any non-error reply), and any transport-level error (connection
// reset, decode framing failure) that means Result should not be
// trusted.
type Reply struct {
	Tag    uuid.UUID
	Result resp.Result
	RC     int32
	Err    error
}

// Transport sends encoded RESP commands and delivers replies
// asynchronously on a channel the caller installs with SetReplySink.
// Implementations must deliver exactly one Reply per accepted Send,
// matching the request lifecycle engine's single-completion invariant.
type Transport interface {
	// Send writes cmd (an already RESP-encoded command) and associates
	// the eventual reply with tag.
	Send(tag uuid.UUID, cmd []byte) error

	// SetReplySink installs the channel Send's replies are delivered on.
	// Called once, before the first Send.
	SetReplySink(ch chan<- Reply)

	// Close releases any resources the transport owns. It does not wait
	// for in-flight replies.
	Close() error
}
