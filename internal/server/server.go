package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"proposalai/internal/app"
	"proposalai/internal/ratelimit"
	"proposalai/internal/util"
	"proposalai/pkg/auth"
	"proposalai/pkg/domain"
	"proposalai/pkg/wizard"
)

// Config wires required dependencies for the HTTP server. Limiters are
// optional; a nil limiter disables rate limiting for that endpoint.
type Config struct {
	App              *app.App
	SimulatedLatency time.Duration
	TrustedProxies   *util.TrustedProxies
	SignupLimiter    *ratelimit.FixedWindowLimiter
	LoginLimiter     *ratelimit.FixedWindowLimiter
	PasswordLimiter  *ratelimit.FixedWindowLimiter
}

// Server exposes HTTP endpoints for the proposal service.
type Server struct {
	app             *app.App
	mux             *http.ServeMux
	latency         time.Duration
	trusted         *util.TrustedProxies
	signupLimiter   *ratelimit.FixedWindowLimiter
	loginLimiter    *ratelimit.FixedWindowLimiter
	passwordLimiter *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:             cfg.App,
		mux:             http.NewServeMux(),
		latency:         cfg.SimulatedLatency,
		trusted:         cfg.TrustedProxies,
		signupLimiter:   cfg.SignupLimiter,
		loginLimiter:    cfg.LoginLimiter,
		passwordLimiter: cfg.PasswordLimiter,
	}
	s.routes()
	return s
}

// Router returns the configured handler wrapped with the shared middleware
// chain: security headers, CORS, request id, request logging.
func (s *Server) Router() http.Handler {
	var handler http.Handler = s.mux
	handler = util.WithRequestLog("proposalai", s.trusted, handler)
	handler = util.WithRequestID(handler)
	handler = util.WithCORS(handler)
	handler = util.WithSecurityHeaders(handler)
	return handler
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.Handle("/api/auth/logout", s.authenticated(s.handleLogout))
	s.mux.Handle("/api/users/me", s.authenticated(s.handleMe))
	s.mux.Handle("/api/users/me/password", s.authenticated(s.handleChangePassword))

	// proposals
	s.mux.Handle("/api/proposals", s.authenticated(s.handleProposals))
	s.mux.Handle("/api/proposals/", s.authenticated(s.handleProposalByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

// allowRate applies a per-client-IP limit and writes a 429 on rejection.
func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	if limiter == nil {
		return true
	}
	if limiter.Allow(util.ClientIP(r, s.trusted)) {
		return true
	}
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func (s *Server) authorize(r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.User{}, false
	}
	return s.app.UserFromToken(token)
}

// auth handlers
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.signupLimiter, "too many signup attempts") {
		return
	}
	var req signupRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.SignUp(req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		slog.Warn("signup failed", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	slog.Info("signup", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		return
	}
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		slog.Warn("login failed", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	slog.Info("login", "user_id", user.ID)
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, _ := bearerToken(r)
	if err := s.app.Logout(token); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, user)
	case http.MethodPatch:
		var req updateMeRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		updated, err := s.app.UpdateProfile(user, req.Name, req.Email, req.Company)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		token, _ := bearerToken(r)
		if err := s.app.DeleteAccount(user, token); err != nil {
			writeAppError(w, err)
			return
		}
		slog.Info("account deleted", "user_id", user.ID)
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.passwordLimiter, "too many password change attempts") {
		return
	}
	var req changePasswordRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.app.ChangePassword(user, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// /api/proposals
func (s *Server) handleProposals(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		s.handleListProposals(w, r, user)
	case http.MethodPost:
		s.handleCreateProposal(w, r, user)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request, user domain.User) {
	search := r.URL.Query().Get("search")
	order := domain.ParseSortOrder(r.URL.Query().Get("sort"))
	proposals, err := s.app.ListProposals(user, search, order)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": proposals,
		"count": len(proposals),
	})
}

// handleCreateProposal drives the wizard end to end on the submitted draft,
// so the server enforces the same step validation as the form.
func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request, user domain.User) {
	var draft domain.Draft
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	wiz := wizard.New(s.app, wizard.WithSimulatedLatency(s.latency))
	wiz.SetDraft(draft)
	for wiz.Step() < wizard.StepReview {
		if err := wiz.Next(); err != nil {
			writeAppError(w, err)
			return
		}
	}
	created, err := wiz.Submit(r.Context(), user)
	if err != nil {
		slog.Warn("proposal create failed", "user_id", user.ID, "reason", err.Error())
		writeAppError(w, err)
		return
	}
	slog.Info("proposal created", "proposal_id", created.ID, "user_id", user.ID)
	writeJSON(w, http.StatusCreated, created)
}

// /api/proposals/{id} and subresources preview, export, share, regenerate
func (s *Server) handleProposalByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	path := strings.TrimPrefix(r.URL.Path, "/api/proposals/")
	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}
	if len(parts) == 2 {
		switch parts[1] {
		case "preview":
			s.handlePreview(w, r, user, id)
		case "export":
			s.handleExport(w, r, user, id)
		case "share":
			s.handleShare(w, r, user, id)
		case "regenerate":
			s.handleRegenerate(w, r, user, id)
		default:
			http.NotFound(w, r)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := s.app.GetProposal(user, id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		var update app.ProposalUpdate
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&update); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		updated, err := s.app.UpdateProposal(user, id, update)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := s.app.DeleteProposal(user, id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	doc, err := s.app.PreviewProposal(user, id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	url, err := s.app.ExportProposal(r.Context(), user, id)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) || errors.Is(err, app.ErrAccessDenied) {
			writeAppError(w, err)
			return
		}
		slog.Warn("export failed", "proposal_id", id, "reason", err.Error())
		writeError(w, http.StatusBadGateway, "Failed to export proposal. Please try again.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	url, err := s.app.ShareLink(user, id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	updated, err := s.app.RegenerateContent(user, id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type updateMeRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrAccessDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrEmailAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrMissingRequiredFields),
		errors.Is(err, app.ErrPasswordMismatch),
		errors.Is(err, app.ErrIncorrectPassword),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, wizard.ErrMissingFields):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
