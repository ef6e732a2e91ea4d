package chat

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"rates_go/internal/domain"
	"rates_go/internal/infra"

	"github.com/google/uuid"
)

// Peer is a registered connection and its display name.
type Peer struct {
	id   string
	name string
	conn Conn
}

func (p *Peer) ID() string   { return p.id }
func (p *Peer) Name() string { return p.name }

// Send delivers one text message to the peer.
func (p *Peer) Send(text string) error {
	return p.conn.Send(text)
}

// Registry is the set of connected peers.
// All mutation and snapshotting is serialized by mu; sends never hold it.
type Registry struct {
	mu    sync.Mutex
	peers map[Conn]*Peer
	names map[string]struct{}

	gen     domain.NameGenerator
	metrics *infra.Metrics
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(gen domain.NameGenerator, metrics *infra.Metrics) *Registry {
	return &Registry{
		peers:   make(map[Conn]*Peer),
		names:   make(map[string]struct{}),
		gen:     gen,
		metrics: metrics,
		logger:  slog.Default().With("module", "registry"),
	}
}

// Register adds conn under a fresh unique display name.
// Registering the same conn twice returns the existing peer.
func (r *Registry) Register(conn Conn) *Peer {
	r.mu.Lock()
	if existing, ok := r.peers[conn]; ok {
		r.mu.Unlock()
		return existing
	}

	name := r.gen.NewName()
	for r.nameTaken(name) {
		name = r.gen.NewName() + " #" + r.gen.Suffix()
	}

	peer := &Peer{id: uuid.NewString(), name: name, conn: conn}
	r.peers[conn] = peer
	r.names[name] = struct{}{}
	r.mu.Unlock()

	r.metrics.IncrementConnections()
	r.logger.Info("Peer connected",
		slog.String("peer", peer.name),
		slog.String("peer_id", peer.id),
		slog.String("remote", conn.RemoteAddr()),
	)
	return peer
}

func (r *Registry) nameTaken(name string) bool {
	_, ok := r.names[name]
	return ok
}

// Unregister removes p and closes its connection. It reports whether p was present;
// removing an absent peer is a no-op.
func (r *Registry) Unregister(p *Peer) bool {
	if p == nil {
		return false
	}

	r.mu.Lock()
	current, ok := r.peers[p.conn]
	if !ok || current != p {
		r.mu.Unlock()
		return false
	}
	delete(r.peers, p.conn)
	delete(r.names, p.name)
	r.mu.Unlock()

	r.metrics.DecrementConnections()
	if err := p.conn.Close(); err != nil {
		r.logger.Debug("Close after unregister failed", slog.String("peer", p.name), slog.Any("error", err))
	}
	r.logger.Info("Peer disconnected",
		slog.String("peer", p.name),
		slog.String("peer_id", p.id),
		slog.String("remote", p.conn.RemoteAddr()),
	)
	return true
}

// Snapshot returns a point-in-time copy of the registered peers.
func (r *Registry) Snapshot() []*Peer {
	r.mu.Lock()
	defer r.mu.Unlock()

	peers := make([]*Peer, 0, len(r.peers))
	for _, p := range r.peers {
		peers = append(peers, p)
	}
	return peers
}

// Len returns the number of registered peers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.peers)
}

// Broadcast sends msg to every peer registered at the time of the call, concurrently.
// A peer whose send fails is unregistered; the others are unaffected.
// It returns the number of successful deliveries.
func (r *Registry) Broadcast(msg string) int {
	recipients := r.Snapshot()

	var (
		wg        sync.WaitGroup
		delivered atomic.Int32
	)
	for _, p := range recipients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.Send(msg); err != nil {
				r.logger.Warn("Delivery failed, dropping peer",
					slog.String("peer", p.name),
					slog.Any("error", err),
				)
				r.Unregister(p)
				return
			}
			delivered.Add(1)
		}()
	}
	wg.Wait()

	n := int(delivered.Load())
	r.metrics.RecordDeliveries(n, len(recipients)-n)
	return n
}

// CloseAll unregisters every peer.
func (r *Registry) CloseAll() {
	for _, p := range r.Snapshot() {
		r.Unregister(p)
	}
}
