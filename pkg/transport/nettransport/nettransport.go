// SPDX-License-Identifier: AGPL-3.0-or-later

// Package nettransport is the real transport.Transport: one net.Conn,
// one reader goroutine decoding RESP replies in the order commands were
// written, and a FIFO queue correlating each decoded reply back to the
// tag it was sent under. RESP is a strictly ordered, pipelined protocol
// — there is no in-band request identifier — so ordering IS the
// correlation mechanism, the same assumption any Redis pipelining client
// makes.
package nettransport

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/databroker-go/rbroker/internal/resp"
	"github.com/databroker-go/rbroker/pkg/transport"
)

// genericProtoRC is the backend rc a reply maps to when its RESP error
// string doesn't carry a parseable leading integer. It must stay equal
// to rbroker.BackendEProto; nettransport can't import pkg/rbroker
// without an import cycle, so the two are kept in sync by hand.
const genericProtoRC int32 = -71

// Config bounds a Transport's I/O behavior.
type Config struct {
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
}

// DefaultConfig returns conservative timeouts suitable for a LAN-local
// backend.
func DefaultConfig() Config {
	return Config{
		DialTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		ReadTimeout:  0, // reads block indefinitely; the backend drives pace
	}
}

// Transport is a transport.Transport over a single net.Conn.
type Transport struct {
	conn net.Conn
	cfg  Config
	now  clock.Clock

	w *bufio.Writer
	r *bufio.Reader

	writeMu sync.Mutex

	tagMu sync.Mutex
	tags  []uuid.UUID

	sinkMu sync.Mutex
	sink   chan<- transport.Reply

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to addr and starts the reader goroutine.
func Dial(addr string, cfg Config) (*Transport, error) {
	conn, err := net.DialTimeout("tcp", addr, cfg.DialTimeout)
	if err != nil {
		return nil, err
	}
	return New(conn, cfg), nil
}

// New wraps an already-established conn.
func New(conn net.Conn, cfg Config) *Transport {
	t := &Transport{
		conn: conn,
		cfg:  cfg,
		now:  clock.New(),
		w:    bufio.NewWriter(conn),
		r:    bufio.NewReader(conn),
		done: make(chan struct{}),
	}
	go t.readLoop()
	return t
}

// SetReplySink implements transport.Transport.
func (t *Transport) SetReplySink(ch chan<- transport.Reply) {
	t.sinkMu.Lock()
	t.sink = ch
	t.sinkMu.Unlock()
}

// Send implements transport.Transport: writes cmd and enqueues tag as
// the correlation target for the next decoded reply.
func (t *Transport) Send(tag uuid.UUID, cmd []byte) error {
	t.tagMu.Lock()
	t.tags = append(t.tags, tag)
	t.tagMu.Unlock()

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if t.cfg.WriteTimeout > 0 {
		_ = t.conn.SetWriteDeadline(t.now.Now().Add(t.cfg.WriteTimeout))
	}
	if _, err := t.w.Write(cmd); err != nil {
		return err
	}
	return t.w.Flush()
}

// Close implements transport.Transport.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		err = t.conn.Close()
	})
	return err
}

func (t *Transport) popTag() (uuid.UUID, bool) {
	t.tagMu.Lock()
	defer t.tagMu.Unlock()
	if len(t.tags) == 0 {
		return uuid.UUID{}, false
	}
	tag := t.tags[0]
	t.tags = t.tags[1:]
	return tag, true
}

func (t *Transport) readLoop() {
	for {
		if t.cfg.ReadTimeout > 0 {
			_ = t.conn.SetReadDeadline(t.now.Now().Add(t.cfg.ReadTimeout))
		}
		result, err := resp.Decode(t.r)
		tag, ok := t.popTag()
		if !ok {
			// A reply with no outstanding tag means the connection is
			// desynchronized; nothing more can be safely correlated.
			return
		}
		reply := replyFor(tag, result, err)
		t.deliver(reply)
		if err != nil {
			return
		}
		select {
		case <-t.done:
			return
		default:
		}
	}
}

func replyFor(tag uuid.UUID, result resp.Result, err error) transport.Reply {
	if err != nil {
		return transport.Reply{Tag: tag, Err: err, RC: genericProtoRC}
	}
	if result.Type == resp.TypeError {
		return transport.Reply{Tag: tag, Result: result, RC: parseRC(result.Err)}
	}
	return transport.Reply{Tag: tag, Result: result, RC: 0}
}

// parseRC extracts the leading signed integer this protocol's error
// strings are expected to carry, e.g. "-22 invalid argument".
func parseRC(msg string) int32 {
	fields := strings.Fields(msg)
	if len(fields) == 0 {
		return genericProtoRC
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return genericProtoRC
	}
	return int32(n)
}

func (t *Transport) deliver(reply transport.Reply) {
	t.sinkMu.Lock()
	sink := t.sink
	t.sinkMu.Unlock()
	if sink == nil {
		return
	}
	select {
	case sink <- reply:
	case <-t.done:
	}
}
