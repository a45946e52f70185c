package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/deck-composer/internal/config"
	"github.com/jonathan/deck-composer/internal/db"
)

// GenerateRequest is the body for POST /runs.
type GenerateRequest struct {
	Source       string `json:"source"`
	Catalog      string `json:"catalog"`
	Output       string `json:"output,omitempty"`
	TargetSlides int    `json:"target_slides,omitempty"`
	SkipReview   bool   `json:"skip_review,omitempty"`
}

// RunStarter launches a pipeline run in the background. The returned error
// covers only launch validation; run failures surface via run status.
type RunStarter func(ctx context.Context, req GenerateRequest) error

// Options configure the HTTP server.
type Options struct {
	Addr         string
	JWT          JWTConfig
	AdminUser    string
	AdminHash    string // bcrypt hash of the admin password
	Passwords    *config.PasswordConfig
	DB           *db.DB
	StartRun     RunStarter
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the deck-composer HTTP API server.
type Server struct {
	httpServer *http.Server
	jwt        *JWTService
	passwords  *config.PasswordConfig
	adminUser  string
	adminHash  string
	db         *db.DB
	startRun   RunStarter
}

// NewServer constructs a server with its routes registered.
func NewServer(opts Options) (*Server, error) {
	jwtService, err := NewJWTService(opts.JWT)
	if err != nil {
		return nil, err
	}
	if opts.AdminUser == "" || opts.AdminHash == "" {
		return nil, fmt.Errorf("admin credentials are required")
	}
	if opts.Passwords == nil {
		opts.Passwords = &config.PasswordConfig{BcryptCost: 12}
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 60 * time.Second
	}

	s := &Server{
		jwt:       jwtService,
		passwords: opts.Passwords,
		adminUser: opts.AdminUser,
		adminHash: opts.AdminHash,
		db:        opts.DB,
		startRun:  opts.StartRun,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /runs", s.requireAuth(s.handleGenerate))
	mux.HandleFunc("GET /runs", s.requireAuth(s.handleListRuns))
	mux.HandleFunc("GET /runs/{id}", s.requireAuth(s.handleGetRun))
	mux.HandleFunc("GET /runs/{id}/artifacts", s.requireAuth(s.handleRunArtifacts))
	mux.HandleFunc("GET /runs/{id}/artifacts/{step}", s.requireAuth(s.handleGetArtifact))

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      mux,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s, nil
}

// Handler exposes the route mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// requireAuth wraps a handler with bearer-token validation.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.errorResponse(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if _, err := s.jwt.ValidateToken(token); err != nil {
			s.errorResponse(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username != s.adminUser || !s.passwords.VerifyPassword(s.adminHash, req.Password) {
		s.errorResponse(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := s.jwt.GenerateToken(req.Username)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.startRun == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "run launching is not configured")
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Source == "" {
		s.errorResponse(w, http.StatusBadRequest, "source is required")
		return
	}
	if req.Catalog == "" {
		s.errorResponse(w, http.StatusBadRequest, "catalog is required")
		return
	}

	// Runs execute in the background; the caller polls run status
	go func() {
		if err := s.startRun(context.Background(), req); err != nil {
			log.Printf("Background run failed: %v", err)
		}
	}()

	s.jsonResponse(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "database is not configured")
		return
	}

	runs, err := s.db.ListRuns(r.Context(), 50)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "database is not configured")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := s.db.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "run not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

func (s *Server) handleRunArtifacts(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "database is not configured")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid run id")
		return
	}

	artifacts, err := s.db.ListArtifacts(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"artifacts": artifacts})
}

func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "database is not configured")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid run id")
		return
	}
	step := r.PathValue("step")

	if step == db.StepDeckHTML || step == db.StepSourceText {
		text, err := s.db.GetTextArtifact(r.Context(), runID, step)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, err.Error())
			return
		}
		if text == "" {
			s.errorResponse(w, http.StatusNotFound, "artifact not found")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(text))
		return
	}

	content, err := s.db.GetArtifact(r.Context(), runID, step)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if content == nil {
		s.errorResponse(w, http.StatusNotFound, "artifact not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
