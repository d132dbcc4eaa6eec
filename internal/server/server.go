// Package server provides the HTTP REST API for the job board.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mgarcia/jobboard/internal/analysis"
	"github.com/mgarcia/jobboard/internal/config"
	"github.com/mgarcia/jobboard/internal/db"
	"github.com/mgarcia/jobboard/internal/llm"
	"github.com/mgarcia/jobboard/internal/server/middleware"
	"github.com/mgarcia/jobboard/internal/server/ratelimit"
	"github.com/mgarcia/jobboard/internal/types"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	store       Store
	validator   *validator.Validate
	rateLimiter *ratelimit.Limiter

	jwtService  *JWTService
	userService *UserService

	llmClient llm.Client
	analyzer  *analysis.Analyzer
	scheduler *analysis.Scheduler

	uploadDir  string
	maxCVBytes int64
}

// New creates a new server instance
func New(cfg *config.Server) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Server{
		db:         database,
		store:      database,
		validator:  validator.New(),
		uploadDir:  cfg.UploadDir,
		maxCVBytes: cfg.MaxCVSizeMB << 20,
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	s.userService = NewUserService(s.store, passwordConfig)

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.jwtService = NewJWTService(jwtConfig)

	// AI analysis is optional: without an API key the analyzer reports
	// itself unavailable and every analysis request is served by the local
	// heuristic.
	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewClient(context.Background(), llm.DefaultConfig(), cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		s.llmClient = client
	} else {
		log.Printf("[ai] GEMINI_API_KEY not set, AI analysis disabled")
	}
	s.analyzer = analysis.NewAnalyzer(s.llmClient)
	s.scheduler = analysis.NewScheduler(s.analyzer, s.store, cfg.AnalysisDelay, cfg.AnalysisWorkers)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Long timeout for AI analysis
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the router. Admin-only endpoints are wrapped in auth plus a
// role check; /users/me only needs auth.
func (s *Server) routes() http.Handler {
	auth := middleware.Auth(s.jwtService.AsTokenValidator())
	admin := func(h http.HandlerFunc) http.Handler {
		return auth(middleware.RequireRole(types.RoleAdmin)(h))
	}

	mux := http.NewServeMux()

	// Public job browsing
	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("GET /jobs/{id}/application-status", s.handleApplicationStatus)

	// Admin job management
	mux.Handle("POST /api/jobs", admin(s.handleCreateJob))
	mux.Handle("PUT /jobs/{id}", admin(s.handleUpdateJob))
	mux.Handle("DELETE /api/jobs/{id}", admin(s.handleDeleteJob))

	// Candidate submissions
	mux.HandleFunc("POST /applications", s.handleCreateApplication)

	// Admin triage
	mux.Handle("GET /api/applications", admin(s.handleListApplications))
	mux.Handle("GET /applications/{id}", admin(s.handleGetApplication))
	mux.Handle("PUT /api/applications/{id}", admin(s.handleUpdateApplication))
	mux.Handle("POST /api/applications/{id}/analyze", admin(s.handleAnalyzeApplication))

	// Accounts
	mux.HandleFunc("POST /users/register", s.handleRegister)
	mux.HandleFunc("POST /users/login", s.handleLogin)
	mux.Handle("GET /users/me", auth(http.HandlerFunc(s.handleGetMe)))
	mux.Handle("PUT /users/me", auth(http.HandlerFunc(s.handleUpdateMe)))

	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.scheduler.Stop()
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.llmClient != nil {
		_ = s.llmClient.Close()
	}
	s.db.Close()

	log.Println("Server stopped")
	return nil
}

// handleHealth reports server and database health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.respondError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// extractClientID extracts the client identifier from the request. The IP
// from RemoteAddr is used; X-Forwarded-For is deliberately ignored because
// it is client-controlled unless a trusted proxy strips it.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}
	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))
	s.respondError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}
