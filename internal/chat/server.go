package chat

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"rates_go/internal/domain"
	"rates_go/internal/infra"
	"rates_go/internal/service"

	"github.com/gorilla/websocket"
)

const shutdownTimeout = 5 * time.Second

// Options tunes the HTTP side of the Server.
type Options struct {
	Path         string // WebSocket endpoint, default "/"
	MetricsPath  string // empty disables /metrics
	ReadLimit    int64  // max inbound message size in bytes
	WriteTimeout time.Duration
}

// Server accepts peers, records every inbound line and broadcasts the
// chat text (or an exchange report) to all registered peers.
type Server struct {
	registry   *Registry
	aggregator domain.RateAggregator
	sink       domain.ChatLogSink
	metrics    *infra.Metrics
	opts       Options
	upgrader   websocket.Upgrader
	now        func() time.Time
	logger     *slog.Logger
}

// NewServer wires a server. sink and metrics may be nil.
func NewServer(registry *Registry, aggregator domain.RateAggregator, sink domain.ChatLogSink, metrics *infra.Metrics, opts Options) *Server {
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &Server{
		registry:   registry,
		aggregator: aggregator,
		sink:       sink,
		metrics:    metrics,
		opts:       opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the browser client is served from file:// or another origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		now:    time.Now,
		logger: slog.Default().With("module", "chat_server"),
	}
}

// Registry exposes the peer set (read-only use).
func (s *Server) Registry() *Registry {
	return s.registry
}

// Handler returns the HTTP routes: the WebSocket endpoint and, if enabled, metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.opts.Path, s.handleUpgrade)
	if s.opts.MetricsPath != "" {
		mux.Handle(s.opts.MetricsPath, s.metrics.Handler())
	}
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then drops every peer.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return domain.NewFatalNetworkError("listen "+addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("Chat server listening", slog.String("addr", ln.Addr().String()), slog.String("path", s.opts.Path))

	select {
	case err := <-errCh:
		s.registry.CloseAll()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Shutdown does not touch hijacked connections; CloseAll ends their read loops
	err := srv.Shutdown(shutdownCtx)
	s.registry.CloseAll()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error
		s.logger.Warn("WebSocket upgrade failed", slog.String("remote", r.RemoteAddr), slog.Any("error", err))
		return
	}
	s.ServeConn(r.Context(), newWSConn(ws, s.opts.ReadLimit, s.opts.WriteTimeout))
}

// ServeConn runs one peer from registration to unregistration and blocks until it leaves.
func (s *Server) ServeConn(ctx context.Context, conn Conn) {
	peer := s.registry.Register(conn)
	defer s.registry.Unregister(peer)

	for {
		in := conn.Receive()
		switch in.Kind {
		case InboundMessage:
			s.handleMessage(ctx, peer, in.Text)
		case InboundClosed:
			return
		default:
			if s.registry.Unregister(peer) {
				s.logger.Warn("Peer connection failed",
					slog.String("peer", peer.Name()),
					slog.Any("error", in.Err),
				)
			}
			return
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, peer *Peer, text string) {
	// audit line first: it must precede any side effect of the message
	s.record(ctx, peer, text)

	out := s.Dispatch(ctx, text)
	s.registry.Broadcast(peer.Name() + ": " + out)
}

func (s *Server) record(ctx context.Context, peer *Peer, text string) {
	if s.sink == nil {
		return
	}
	entry := domain.ChatLogEntry{
		Timestamp: s.now(),
		Sender:    peer.Name(),
		PeerID:    peer.ID(),
		Message:   text,
	}
	if err := s.sink.Append(ctx, entry); err != nil {
		s.metrics.RecordChatLogError()
		s.logger.Error("Chat log append failed", slog.String("peer", peer.Name()), slog.Any("error", err))
	}
}

// Dispatch turns one inbound line into the outgoing message body: an HTML rate
// table for `exchange [days] [currency...]`, the text itself otherwise.
func (s *Server) Dispatch(ctx context.Context, text string) string {
	command, args := domain.SplitCommand(text)
	if !domain.IsExchangeCommand(command) {
		s.metrics.RecordMessage(infra.MessageChat)
		return text
	}

	s.metrics.RecordMessage(infra.MessageExchange)
	result := s.aggregator.AggregateArgs(ctx, s.now(), args)
	if empty := result.EmptyDates(); len(empty) > 0 {
		s.logger.Warn("Exchange report has dates without rates", slog.Int("dates", len(empty)))
	}
	return service.RenderHTML(result)
}
