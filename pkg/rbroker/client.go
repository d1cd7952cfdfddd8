// SPDX-License-Identifier: AGPL-3.0-or-later

package rbroker

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/databroker-go/rbroker/internal/resp"
	"github.com/databroker-go/rbroker/pkg/transport"
)

// inboxCapacity and outboxCapacity size the Client's internal channels:
// an MPSC inbox and an outbox of decoded replies sitting between callers
// and the single worker goroutine that owns the connection.
const (
	inboxCapacity  = 256
	outboxCapacity = 256
)

// postMsg is one entry in the inbox: a request to stage plus the channel
// its eventual Completion is delivered on.
type postMsg struct {
	req  *request
	done chan *Completion
}

// cancelMsg asks the worker to cancel an in-flight request by Tag.
type cancelMsg struct {
	tag  Tag
	done chan *Completion
}

// Client owns one connection's worth of request lifecycle state: the
// in-flight request table, the NamespaceManager, the IteratorList, and
// the single goroutine that is the only writer to any of them. A single
// owning goroutine substitutes for explicit locking around a shared
// connection struct.
type Client struct {
	tr   transport.Transport
	ns   *NamespaceManager
	iter *IteratorList
	obs  Observer

	inbox   chan postMsg
	cancels chan cancelMsg
	quit    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	pending map[Tag]*inflight
}

type inflight struct {
	req  *request
	done chan *Completion
}

// NewClient starts a Client's worker goroutine against tr. The caller
// owns tr's lifetime; Close stops the worker but does not close tr.
func NewClient(tr transport.Transport, opts ...ClientOption) (*Client, error) {
	if tr == nil {
		return nil, newError("NewClient", ErrInvalid, fmt.Errorf("nil transport"))
	}
	nsMgr, err := NewNamespaceManager(0)
	if err != nil {
		return nil, err
	}
	c := &Client{
		tr:      tr,
		ns:      nsMgr,
		iter:    NewIteratorList(),
		obs:     noopObserver{},
		inbox:   make(chan postMsg, inboxCapacity),
		cancels: make(chan cancelMsg, 16),
		quit:    make(chan struct{}),
		pending: make(map[Tag]*inflight),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.wg.Add(1)
	go c.run()
	return c, nil
}

// ClientOption configures a Client at construction time.
type ClientOption func(*Client)

// WithObserver installs a metrics/logging Observer, a hook for the
// completion engine's otherwise-silent state transitions.
func WithObserver(obs Observer) ClientOption {
	return func(c *Client) {
		if obs != nil {
			c.obs = obs
		}
	}
}

// Close stops the worker goroutine and destroys every outstanding
// iterator.
func (c *Client) Close() error {
	close(c.quit)
	c.wg.Wait()
	c.iter.DestroyAll()
	return nil
}

// Post submits user synchronously, blocking until a terminal Completion
// is produced or ctx is cancelled.
func (c *Client) Post(ctx context.Context, user *UserRequest) (*Completion, error) {
	req, err := allocate(user)
	if err != nil {
		return nil, err
	}
	select {
	case <-c.quit:
		return nil, newError("Post", ErrNoConnect, errClientClosed)
	default:
	}
	done := make(chan *Completion, 1)
	select {
	case c.inbox <- postMsg{req: req, done: done}:
	case <-ctx.Done():
		return nil, newError("Post", ErrInProgress, ctx.Err())
	case <-c.quit:
		return nil, newError("Post", ErrNoConnect, errClientClosed)
	}
	select {
	case comp := <-done:
		return comp, nil
	case <-ctx.Done():
		return nil, newError("Post", ErrInProgress, ctx.Err())
	}
}

// PostAsync submits user without blocking for completion, returning a
// Tag that Cancel or a later Completion-channel read can reference.
func (c *Client) PostAsync(user *UserRequest) (Tag, <-chan *Completion, error) {
	req, err := allocate(user)
	if err != nil {
		return Tag{}, nil, err
	}
	select {
	case <-c.quit:
		return Tag{}, nil, newError("PostAsync", ErrNoConnect, errClientClosed)
	default:
	}
	req.tag = newTag()
	done := make(chan *Completion, 1)
	select {
	case c.inbox <- postMsg{req: req, done: done}:
		return req.tag, done, nil
	case <-c.quit:
		return Tag{}, nil, newError("PostAsync", ErrNoConnect, errClientClosed)
	}
}

// Cancel best-effort cancels the request tagged by tag, synchronously:
// if the request already completed, Cancel is a harmless no-op and
// returns (nil, nil).
func (c *Client) Cancel(tag Tag) (*Completion, error) {
	select {
	case <-c.quit:
		return nil, newError("Cancel", ErrNoConnect, errClientClosed)
	default:
	}
	done := make(chan *Completion, 1)
	select {
	case c.cancels <- cancelMsg{tag: tag, done: done}:
	case <-c.quit:
		return nil, newError("Cancel", ErrNoConnect, errClientClosed)
	}
	return <-done, nil
}

// run is the single worker goroutine: the only code in the package that
// mutates a request after allocate() hands it back.
func (c *Client) run() {
	defer c.wg.Done()
	replies := make(chan transport.Reply, outboxCapacity)
	c.tr.SetReplySink(replies)

	for {
		select {
		case <-c.quit:
			return
		case msg := <-c.inbox:
			c.startRequest(msg)
		case cancel := <-c.cancels:
			c.handleCancel(cancel)
		case reply := <-replies:
			c.handleReply(reply)
		}
	}
}

func (c *Client) startRequest(msg postMsg) {
	cmd, err := buildCommand(msg.req)
	if err != nil {
		msg.done <- &Completion{Cookie: msg.req.user.Cookie, Status: ErrInvalid}
		return
	}
	if msg.req.tag == (Tag{}) {
		msg.req.tag = newTag()
	}
	c.mu.Lock()
	c.pending[msg.req.tag] = &inflight{req: msg.req, done: msg.done}
	c.mu.Unlock()
	c.obs.OnPost(msg.req.opcode)
	if err := c.tr.Send(uuid.UUID(msg.req.tag), cmd); err != nil {
		c.finishWithError(msg.req.tag, ErrBEPost)
	}
}

func (c *Client) handleCancel(cancel cancelMsg) {
	c.mu.Lock()
	fl, ok := c.pending[cancel.tag]
	if ok {
		delete(c.pending, cancel.tag)
	}
	c.mu.Unlock()
	if !ok {
		cancel.done <- nil
		return
	}
	comp := completeCancel(fl.req)
	fl.req.destroy()
	fl.done <- comp
	c.obs.OnComplete(fl.req.opcode, comp.Status)
	cancel.done <- comp
}

func (c *Client) handleReply(reply transport.Reply) {
	tag := Tag(reply.Tag)
	c.mu.Lock()
	fl, ok := c.pending[tag]
	c.mu.Unlock()
	if !ok {
		return // tombstoned: already cancelled or delivered
	}

	result, rc, err := decodeReply(reply)
	if err != nil {
		c.finishWithError(tag, ErrBEGeneral)
		return
	}

	comp, err := completeCommand(fl.req, result, rc)
	if err != nil {
		c.finishWithError(tag, ErrBEGeneral)
		return
	}
	if comp == nil {
		// Stage advanced; rebuild and resend without removing from pending.
		cmd, buildErr := buildCommand(fl.req)
		if buildErr != nil {
			c.finishWithError(tag, ErrInvalid)
			return
		}
		if sendErr := c.tr.Send(reply.Tag, cmd); sendErr != nil {
			c.finishWithError(tag, ErrBEPost)
		}
		return
	}

	c.mu.Lock()
	delete(c.pending, tag)
	c.mu.Unlock()
	fl.req.destroy()
	fl.done <- comp
	c.obs.OnComplete(fl.req.opcode, comp.Status)
}

func (c *Client) finishWithError(tag Tag, status Status) {
	c.mu.Lock()
	fl, ok := c.pending[tag]
	if ok {
		delete(c.pending, tag)
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	comp := finishTerminal(fl.req, fl.req.user.Cookie, status, 0)
	fl.req.destroy()
	fl.done <- comp
	c.obs.OnComplete(fl.req.opcode, comp.Status)
}

// decodeReply extracts the (result, rc) pair a transport.Reply carries.
// A transport-level error (connection reset, framing failure) maps to
// BackendEProto regardless of what RC the reply claims.
func decodeReply(reply transport.Reply) (*resp.Result, BackendCode, error) {
	if reply.Err != nil {
		return nil, BackendEProto, reply.Err
	}
	result := reply.Result
	return &result, BackendCode(reply.RC), nil
}
