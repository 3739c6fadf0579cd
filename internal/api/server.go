// Package api serves the naming operations over HTTP.
package api

import (
	"crypto/subtle"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/singleflight"

	"github.com/Nomadcxx/jellyname/internal/database"
	"github.com/Nomadcxx/jellyname/internal/library"
	"github.com/Nomadcxx/jellyname/internal/logging"
	"github.com/Nomadcxx/jellyname/internal/service"
)

// TokenHeader carries the API token as an alternative to a bearer token.
const TokenHeader = "X-Jellyname-Token"

// Server implements the API
type Server struct {
	naming  *service.NamingService
	scanner *library.Scanner // optional, enables /scan
	roots   []string         // folders /scan may walk
	db      *database.DB     // optional, enables the audit listings
	token   string
	origins []string
	logger  *logging.Logger

	scans singleflight.Group
}

type Option func(*Server)

func WithScanner(s *library.Scanner) Option {
	return func(srv *Server) { srv.scanner = s }
}

// WithRoots limits /scan to the given folders and the folders below them.
// Without roots every scan request is refused.
func WithRoots(roots []string) Option {
	return func(srv *Server) {
		srv.roots = srv.roots[:0]
		for _, r := range roots {
			if strings.TrimSpace(r) == "" {
				continue
			}
			srv.roots = append(srv.roots, filepath.Clean(r))
		}
	}
}

func WithDatabase(db *database.DB) Option {
	return func(srv *Server) { srv.db = db }
}

// WithToken requires every /api/v1 request to carry token.
func WithToken(token string) Option {
	return func(srv *Server) { srv.token = token }
}

// WithCORSOrigins allows browser clients from origins.
func WithCORSOrigins(origins []string) Option {
	return func(srv *Server) { srv.origins = origins }
}

func WithLogger(l *logging.Logger) Option {
	return func(srv *Server) {
		if l != nil {
			srv.logger = l
		}
	}
}

// NewServer creates a new API server
func NewServer(naming *service.NamingService, opts ...Option) *Server {
	s := &Server{naming: naming, logger: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", TokenHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.handleHealth)
	r.Mount("/api/v1", s.apiRouter())
	return r
}

func (s *Server) apiRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SetHeader("Content-Type", "application/json"))
	r.Use(s.authMiddleware)

	r.Post("/parse", s.handleParse)
	r.Post("/classify", s.handleClassify)
	r.Post("/rank", s.handleRank)
	r.Post("/suggest", s.handleSuggest)
	r.Post("/scan", s.handleScan)
	r.Get("/mismatches", s.handleMismatches)
	r.Get("/rejected", s.handleRejected)
	r.Get("/runs", s.handleRuns)
	return r
}

// scanAllowed reports whether root is a configured root or lies below one.
func (s *Server) scanAllowed(root string) bool {
	for _, allowed := range s.roots {
		rel, err := filepath.Rel(allowed, root)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}

// AuthEnabled reports whether a token is configured.
func (s *Server) AuthEnabled() bool {
	return s.token != ""
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.AuthEnabled() {
			next.ServeHTTP(w, r)
			return
		}

		provided := strings.TrimSpace(r.Header.Get(TokenHeader))
		if provided == "" {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				provided = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			}
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(s.token)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("api", "Request",
			logging.F("method", r.Method),
			logging.F("path", r.URL.Path),
			logging.F("status", ww.Status()),
			logging.F("duration", time.Since(start).String()),
			logging.F("request_id", middleware.GetReqID(r.Context())))
	})
}
