// Package gateway serves the local participant's draft UI: a JSON API over
// the engine and a websocket stream of state changes and draft events.
package gateway

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mcdev12/snakedraft/go/internal/draft/engine"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/mcdev12/snakedraft/go/internal/ratelimit"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Engine is the part of *engine.Engine the gateway drives.
type Engine interface {
	State() engine.State
	AvailablePlayers() []models.Player
	OnChange(fn func(engine.State)) func()
	MakePick(ctx context.Context, playerID string) (*models.Pick, error)
	ForcePick(ctx context.Context) (*models.Pick, error)
	Start(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Refresh(ctx context.Context) error
	SaveAutodraftConfig(ctx context.Context, update models.AutodraftConfigUpdate) (*models.AutodraftConfig, error)
	SetQueue(ctx context.Context, playerIDs []string) (*models.AutodraftConfig, error)
}

var _ Engine = (*engine.Engine)(nil)

type Server struct {
	engine      Engine
	limiter     ratelimit.Limiter
	connections *ConnectionManager
	router      chi.Router
}

// NewServer builds the routes. A nil limiter allows everything. The same
// connections should be given to the engine as a publisher so clients
// receive draft events alongside state.
func NewServer(eng Engine, limiter ratelimit.Limiter, connections *ConnectionManager) *Server {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	s := &Server{
		engine:      eng,
		limiter:     limiter,
		connections: connections,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "NOT_FOUND", Message: "no route for " + r.URL.Path})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Code: "METHOD_NOT_ALLOWED", Message: r.Method + " not allowed on " + r.URL.Path})
	})

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/players", s.handlePlayers)
		r.Get("/autodraft", s.handleGetAutodraft)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit)
			r.Post("/picks", s.handleMakePick)
			r.Post("/picks/force", s.handleForcePick)
			r.Post("/draft/start", s.handleTransition(Engine.Start))
			r.Post("/draft/pause", s.handleTransition(Engine.Pause))
			r.Post("/draft/resume", s.handleTransition(Engine.Resume))
			r.Put("/autodraft", s.handleSaveAutodraft)
			r.Put("/queue", s.handleSetQueue)
			r.Post("/refresh", s.handleRefresh)
		})
	})
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run streams engine state to websocket clients until ctx is done.
func (s *Server) Run(ctx context.Context) {
	unsubscribe := s.engine.OnChange(func(st engine.State) {
		s.connections.Broadcast(stateMessage(st))
	})
	defer unsubscribe()
	s.connections.Start(ctx)
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ok, err := s.limiter.Allow(r.Context(), host+":"+r.URL.Path)
		if err != nil {
			log.Error().Err(err).Msg("rate limiter unavailable")
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Code: "UNAVAILABLE", Message: "rate limiter unavailable"})
			return
		}
		if !ok {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Code: "RATE_LIMITED", Message: "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewHTTPServer wraps h with CORS and HTTP/2 cleartext support.
func NewHTTPServer(addr string, h http.Handler, allowedOrigins []string) *http.Server {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
		},
		AllowedOrigins: allowedOrigins,
		AllowedHeaders: []string{"*"},
	})
	return &http.Server{
		Addr:    addr,
		Handler: h2c.NewHandler(c.Handler(h), &http2.Server{}),
	}
}
