package chat

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"rates_go/internal/domain"
)

// fakeConn is an in-memory Conn. Messages pushed to inbox are received in order.
type fakeConn struct {
	addr  string
	inbox chan Inbound

	mu      sync.Mutex
	sent    []string
	sendErr error

	closeOnce sync.Once
	done      chan struct{}
	closes    atomic.Int32
}

func newFakeConn(addr string) *fakeConn {
	return &fakeConn{addr: addr, inbox: make(chan Inbound, 16), done: make(chan struct{})}
}

func (c *fakeConn) Receive() Inbound {
	select {
	case in := <-c.inbox:
		return in
	case <-c.done:
		return Inbound{Kind: InboundFailed, Err: domain.ErrPeerClosed}
	}
}

func (c *fakeConn) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, text)
	return nil
}

func (c *fakeConn) Close() error {
	c.closes.Add(1)
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func (c *fakeConn) RemoteAddr() string { return c.addr }

func (c *fakeConn) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

func (c *fakeConn) say(text string) { c.inbox <- Inbound{Kind: InboundMessage, Text: text} }
func (c *fakeConn) hangUp()         { c.inbox <- Inbound{Kind: InboundClosed} }

// seqNames hands out "Peer 1", "Peer 2", ... or a fixed name when set.
type seqNames struct {
	fixed  string
	n      atomic.Int32
	suffix atomic.Int32
}

func (g *seqNames) NewName() string {
	if g.fixed != "" {
		return g.fixed
	}
	return fmt.Sprintf("Peer %d", g.n.Add(1))
}

func (g *seqNames) Suffix() string {
	return fmt.Sprintf("%04d", g.suffix.Add(1))
}

// listNames hands out the given names in order.
type listNames struct {
	mu    sync.Mutex
	names []string
}

func (g *listNames) NewName() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	name := g.names[0]
	g.names = g.names[1:]
	return name
}

func (g *listNames) Suffix() string { return "X" }

// memorySink records entries in order.
type memorySink struct {
	mu      sync.Mutex
	entries []domain.ChatLogEntry
	err     error
}

func (s *memorySink) Append(_ context.Context, e domain.ChatLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, e)
	return nil
}

func (s *memorySink) Entries() []domain.ChatLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChatLogEntry(nil), s.entries...)
}

// fakeAggregator returns a fixed result and remembers its inputs.
type fakeAggregator struct {
	mu     sync.Mutex
	refs   []time.Time
	args   [][]string
	result domain.AggregationResult
	onCall func()
}

func (a *fakeAggregator) AggregateArgs(_ context.Context, ref time.Time, args []string) domain.AggregationResult {
	if a.onCall != nil {
		a.onCall()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refs = append(a.refs, ref)
	a.args = append(a.args, args)
	return a.result
}
