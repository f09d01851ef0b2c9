package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kaptinlin/jsonschema"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"canvas-ai/internal/domain"
	"canvas-ai/internal/infra/config"
	"canvas-ai/internal/infra/middleware"
)

// Deps holds what the HTTP surface serves.
type Deps struct {
	Prompts domain.PromptHandler
	History domain.HistoryStore // can be nil (history endpoints not registered)
	Bus     domain.EventBus     // can be nil (no /ws feed)
	Config  config.ServerConfig
	Version string
	Logger  *slog.Logger
}

// clientConn tracks a single feed subscriber.
type clientConn struct {
	ws        *websocket.Conn
	sendCh    chan Frame // buffered outbound queue
	done      chan struct{}
	closeOnce sync.Once
}

// Server exposes POST /prompt, the read-only API and the /ws canvas feed.
type Server struct {
	deps          Deps
	logger        *slog.Logger
	auth          tokenAuth
	requestSchema *jsonschema.Schema
	metrics       *Metrics
	startTime     time.Time
	handler       http.Handler

	ctx    context.Context
	cancel context.CancelFunc

	clients  sync.Map // connID (uint64) -> *clientConn
	nextID   atomic.Uint64
	unsubAll func()

	mu        sync.Mutex
	latest    json.RawMessage // last canvas.updated payload
	httpSrv   *http.Server
	boundAddr string
}

// NewServer builds the server and its middleware chain. Bus events are
// forwarded to feed clients from this point until Stop.
func NewServer(deps Deps) (*Server, error) {
	if deps.Prompts == nil {
		return nil, fmt.Errorf("gateway: prompt handler is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	schema, err := jsonschema.NewCompiler().Compile([]byte(promptRequestSchema))
	if err != nil {
		return nil, fmt.Errorf("compile request schema: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		deps:          deps,
		logger:        deps.Logger,
		auth:          newTokenAuth(deps.Config.WSToken),
		requestSchema: schema,
		metrics:       &Metrics{},
		startTime:     time.Now(),
		ctx:           ctx,
		cancel:        cancel,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /prompt", s.handlePrompt)
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	if deps.History != nil {
		mux.HandleFunc("GET /api/v1/history", s.handleHistoryList)
		mux.HandleFunc("GET /api/v1/history/{id}", s.handleHistoryGet)
	}
	if deps.Bus != nil && deps.Config.WSEnabled {
		mux.HandleFunc("GET /ws", s.handleUpgrade)
		s.unsubAll = deps.Bus.SubscribeAll(s.forward)
	}

	maxBody := deps.Config.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	s.handler = middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CORS(deps.Config.CORSOrigins),
		middleware.RateLimit(ctx, deps.Config.RateLimitPerMin, deps.Config.RateLimitBurst),
		middleware.MaxBody(maxBody),
	)
	return s, nil
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Metrics returns the live counters.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.deps.Config.Addr)
	if err != nil {
		return fmt.Errorf("gateway listen: %w", err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.deps.Config.ReadTimeout,
		WriteTimeout:      s.deps.Config.WriteTimeout,
	}
	s.mu.Lock()
	s.boundAddr = listener.Addr().String()
	s.httpSrv = srv
	s.mu.Unlock()

	s.logger.Info("gateway started", "addr", listener.Addr().String())

	go func() {
		<-ctx.Done()
		s.Stop(context.Background())
	}()

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gateway serve: %w", err)
	}
	return nil
}

// Stop closes feed clients and gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()
	if s.unsubAll != nil {
		s.unsubAll()
	}

	s.clients.Range(func(key, value any) bool {
		cc := value.(*clientConn)
		cc.closeOnce.Do(func() { close(cc.done) })
		cc.ws.Close(websocket.StatusGoingAway, "server shutting down")
		s.clients.Delete(key)
		return true
	})

	s.mu.Lock()
	srv := s.httpSrv
	s.mu.Unlock()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
	return nil
}

// BoundAddr returns the actual address the server bound to. Only valid after Start.
func (s *Server) BoundAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundAddr
}

// forward fans a bus event out to every feed client and remembers the
// latest canvas for clients that connect later.
func (s *Server) forward(_ context.Context, event domain.Event) {
	switch event.Type {
	case domain.EventCanvasUpdated:
		s.mu.Lock()
		s.latest = event.Payload
		s.mu.Unlock()
	case domain.EventLLMCallCompleted:
		s.metrics.LLMCallsTotal.Add(1)
	}

	frame := Frame{Type: FrameTypeEvent, Event: event.Type, Payload: event.Payload}
	s.clients.Range(func(_, value any) bool {
		cc := value.(*clientConn)
		select {
		case cc.sendCh <- frame:
		default:
			s.logger.Warn("gateway: dropped event for slow client", "event", event.Type)
		}
		return true
	})
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	if !s.auth.allow(r) {
		writeDetail(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(s.deps.Config.CORSOrigins),
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}

	connID := s.nextID.Add(1)
	cc := &clientConn{
		ws:     ws,
		sendCh: make(chan Frame, 64),
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	if s.latest != nil {
		cc.sendCh <- Frame{Type: FrameTypeSnapshot, Event: domain.EventCanvasUpdated, Payload: s.latest}
	}
	s.mu.Unlock()

	s.clients.Store(connID, cc)
	s.metrics.WSClients.Add(1)
	s.logger.Info("feed client connected", "conn_id", connID)

	go s.writeLoop(cc)

	// The feed is one-way; reading only detects the close.
	s.readLoop(r.Context(), cc)

	cc.closeOnce.Do(func() { close(cc.done) })
	s.clients.Delete(connID)
	s.metrics.WSClients.Add(-1)
	ws.Close(websocket.StatusNormalClosure, "")
	s.logger.Info("feed client disconnected", "conn_id", connID)
}

func (s *Server) readLoop(ctx context.Context, cc *clientConn) {
	for {
		select {
		case <-cc.done:
			return
		default:
		}
		var discard json.RawMessage
		if err := wsjson.Read(ctx, cc.ws, &discard); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(cc *clientConn) {
	for {
		select {
		case <-cc.done:
			return
		case frame := <-cc.sendCh:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := wsjson.Write(ctx, cc.ws, frame)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// originPatterns turns configured CORS origins into websocket host patterns.
// Localhost is always accepted.
func originPatterns(origins []string) []string {
	patterns := []string{"localhost", "localhost:*", "127.0.0.1", "127.0.0.1:*", "[::1]", "[::1]:*"}
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return patterns
}
