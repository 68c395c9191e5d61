// Package server is the JSON HTTP API over the logbook service.
package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claude/liftlog/internal/auth"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/logbook"
	liftmcp "github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/observability"
)

// ImportScope is required of bearer tokens on the import routes.
const ImportScope = "liftlog:import"

// Options holds the server dependencies. MCP and Gatherer are optional.
type Options struct {
	Service  *logbook.Service
	Auth     config.AuthConfig
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	MCP      *server.MCPServer
	Log      *slog.Logger
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc      *logbook.Service
	alpha    *alpha.Provider
	auth     config.AuthConfig
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	mcp      *server.MCPServer
	log      *slog.Logger
	whois    WhoIser
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(opts Options) *Server {
	s := &Server{
		svc:      opts.Service,
		alpha:    alpha.NewProvider(opts.Service.Location()),
		auth:     opts.Auth,
		metrics:  opts.Metrics,
		gatherer: opts.Gatherer,
		mcp:      opts.MCP,
		log:      opts.Log,
		router:   chi.NewRouter(),
	}
	if s.metrics == nil {
		s.metrics, _ = observability.NewTestMetrics()
	}
	s.routes()
	return s
}

// SetTailscale supplies the tailnet client used by the tailscale identity mode.
func (s *Server) SetTailscale(lc WhoIser) {
	s.whois = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// identity dispatches to the middleware of the configured auth mode. The
// tailscale client is looked up per request because it is set after New.
func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(s.auth.DevUser)(next)
	jwt := JWTIdentity(auth.Config{
		Secret:   s.auth.JWT.Secret,
		Issuer:   s.auth.JWT.Issuer,
		Audience: s.auth.JWT.Audience,
	})(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch s.auth.Mode {
		case config.AuthTailscale:
			TailscaleIdentity(s.whois, s.log)(next).ServeHTTP(w, r)
		case config.AuthJWT:
			jwt.ServeHTTP(w, r)
		default:
			dev.ServeHTTP(w, r)
		}
	})
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(Instrument(s.metrics))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)

		r.Get("/me", s.handleMe)
		r.Get("/calendar", s.handleCalendar)
		r.Get("/stats/monthly", s.handleMonthly)
		r.Get("/stats/profile", s.handleProfile)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{date}", s.handleGetSession)
		r.Put("/sessions/{date}", s.handlePutSession)
		r.Get("/exercises", s.handleExercises)
		r.Get("/routines", s.handleRoutines)
		r.Get("/routines/{id}/draft", s.handleRoutineDraft)
		r.Get("/imports", s.handleImportLogs)

		r.Route("/import", func(r chi.Router) {
			if s.auth.APIKey != "" {
				r.Use(APIKeyAuth(s.auth.APIKey))
			}
			r.Use(RequireScope(ImportScope))
			r.Post("/alpha", s.handleImportAlpha)
			r.Post("/legacy", s.handleImportLegacy)
		})
	})

	if s.mcp != nil {
		mcpHTTP := server.NewStreamableHTTPServer(s.mcp,
			server.WithHTTPContextFunc(func(ctx context.Context, _ *http.Request) context.Context {
				if info, ok := UserInfoFromContext(ctx); ok {
					return liftmcp.WithUser(ctx, workoutUser(info))
				}
				return ctx
			}),
		)
		s.router.With(s.identity).Handle("/mcp", mcpHTTP)
	}
}

// SetFrontend mounts a static SPA filesystem.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		f, err := webFS.Open(r.URL.Path[1:])
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}

// HTTPServer wraps the router with the timeouts used in production.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
