// Package server provides the web client: server-rendered pages for uploading
// and browsing parsed resumes, and their JSON equivalents.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-parser-web/internal/dashboard"
	"github.com/jonathan/resume-parser-web/internal/server/middleware"
	"github.com/jonathan/resume-parser-web/internal/server/ratelimit"
	"github.com/jonathan/resume-parser-web/internal/upload"
	"golang.org/x/sync/errgroup"
)

// ParserAPI is the remote parsing service as seen by the server.
type ParserAPI interface {
	upload.Uploader
	dashboard.Lister
}

// Config holds server configuration.
type Config struct {
	Port           int
	SignInURL      string
	SignUpURL      string
	AllowedOrigins []string
	MaxUploadBytes int64
}

// DefaultMaxUploadBytes bounds the multipart body accepted for an upload.
const DefaultMaxUploadBytes = 20 << 20

// Deps are the collaborators the server is built from.
type Deps struct {
	Parser     ParserAPI
	Tokens     middleware.TokenValidator
	Authorizer *dashboard.Authorizer
	Views      *dashboard.Store
	Guard      *upload.Guard
	Limiter    *ratelimit.Limiter
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	cfg        Config
	parser     ParserAPI
	workflow   *upload.Workflow
	authorizer *dashboard.Authorizer
	views      *dashboard.Store
	guard      *upload.Guard
	limiter    *ratelimit.Limiter
	tokens     middleware.TokenValidator
	pages      pages
}

// New creates a new server instance.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Parser == nil {
		return nil, fmt.Errorf("parser API client is required")
	}
	if deps.Tokens == nil {
		return nil, fmt.Errorf("token validator is required")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if deps.Authorizer == nil {
		deps.Authorizer = dashboard.NewAuthorizer([]string{dashboard.LegacyAdminUserID})
	}
	if deps.Views == nil {
		deps.Views = dashboard.NewStore(dashboard.DefaultViewTTL, dashboard.DefaultCleanupInterval)
	}
	if deps.Guard == nil {
		deps.Guard = upload.NewGuard()
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.NewLimiter(nil)
	}

	p, err := loadPages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:        cfg,
		parser:     deps.Parser,
		workflow:   upload.NewWorkflow(deps.Parser),
		authorizer: deps.Authorizer,
		views:      deps.Views,
		guard:      deps.Guard,
		limiter:    deps.Limiter,
		tokens:     deps.Tokens,
		pages:      p,
	}

	optional := middleware.Optional(s.tokens)
	page := middleware.PageAuthMiddleware(s.tokens, "/sign-in")
	api := middleware.AuthMiddleware(s.tokens)

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", optional(http.HandlerFunc(s.handleLanding)))
	mux.HandleFunc("GET /sign-in", s.handleSignIn)
	mux.HandleFunc("GET /sign-up", s.handleSignUp)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Pages
	mux.Handle("GET /parser", page(http.HandlerFunc(s.handleParserPage)))
	mux.Handle("POST /parser", page(s.withRateLimit(http.HandlerFunc(s.handleParserSubmit))))
	mux.Handle("GET /dashboard", page(s.withRateLimit(http.HandlerFunc(s.handleDashboard))))
	mux.Handle("GET /dashboard/{view}", page(http.HandlerFunc(s.handleDashboardView)))

	// JSON API
	mux.Handle("POST /api/upload", api(s.withRateLimit(http.HandlerFunc(s.handleAPIUpload))))
	mux.Handle("GET /api/resumes", api(s.withRateLimit(http.HandlerFunc(s.handleAPIResumes))))

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.withRequestID(s.withLogging(s.withCORS(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      180 * time.Second, // uploads wait on the remote parse
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Server starting on %s", ln.Addr())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := s.httpServer.Shutdown(shutdownCtx)
		s.views.Stop()
		s.limiter.Stop()
		if err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		log.Println("Server stopped")
		return nil
	})

	return g.Wait()
}

type requestIDKey struct{}

// RequestIDHeader carries the request ID on requests and responses.
const RequestIDHeader = "X-Request-ID"

// withRequestID tags each request with an ID, reusing a valid incoming one.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		log.Printf("[%s] %s %s id=%s", r.Method, r.URL.Path, r.RemoteAddr, requestID(r))
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %d completed in %v id=%s", r.Method, r.URL.Path, rec.status, time.Since(start), requestID(r))
	})
}

// withCORS adds CORS headers for the configured origins. With no origins
// configured any origin is allowed.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if len(s.cfg.AllowedOrigins) > 0 {
			origin = ""
			reqOrigin := r.Header.Get("Origin")
			for _, o := range s.cfg.AllowedOrigins {
				if o == reqOrigin {
					origin = o
					w.Header().Add("Vary", "Origin")
					break
				}
			}
		}
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit throttles the wrapped route per signed-in user, or per client
// address for anonymous requests.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		d := s.limiter.Allow(key, r.Method, r.URL.Path)
		if d.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetTime.Unix(), 10))
		}
		if !d.Allowed {
			secs := int(d.RetryAfter.Seconds() + 0.999)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			log.Printf("[rate-limit] %s %s client=%s limited, retry in %ds", r.Method, r.URL.Path, key, secs)
			s.errorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if id, err := middleware.GetIdentity(r); err == nil {
		return id.UserID
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
