package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"campusnest/internal/app"
	"campusnest/internal/dataclient"
	"campusnest/internal/ratelimit"
	"campusnest/internal/util"
	"campusnest/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	TrustedProxies *util.TrustedProxies

	RedisAddr     string
	RedisPassword string

	RegisterRateLimitPerMinute int
	LoginRateLimitPerMinute    int
	ReportRateLimitPerMinute   int

	CookieName     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite string
	SessionTTL     time.Duration

	MaxUploadBytes            int64
	AllowedImageExtensions    []string
	AllowedDocumentExtensions []string
}

// Server exposes the JSON API.
type Server struct {
	app     *app.App
	mux     *http.ServeMux
	trusted *util.TrustedProxies

	cookieName     string
	cookieDomain   string
	cookieSecure   bool
	cookieSameSite http.SameSite
	sessionTTL     time.Duration

	maxUploadBytes     int64
	imageExtensions    map[string]struct{}
	documentExtensions map[string]struct{}

	registerLimiter *ratelimit.FixedWindowLimiter
	loginLimiter    *ratelimit.FixedWindowLimiter
	reportLimiter   *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app is required")
	}
	registerLimit := cfg.RegisterRateLimitPerMinute
	if registerLimit <= 0 {
		registerLimit = 5
	}
	loginLimit := cfg.LoginRateLimitPerMinute
	if loginLimit <= 0 {
		loginLimit = 10
	}
	reportLimit := cfg.ReportRateLimitPerMinute
	if reportLimit <= 0 {
		reportLimit = 10
	}
	rateWindow := time.Minute
	newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
		prefix := "campusnest:ratelimit:" + name
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, rateWindow)
		if err != nil {
			return nil, fmt.Errorf("init %s limiter: %w", name, err)
		}
		return limiter, nil
	}
	registerLimiter, err := newLimiter("register", registerLimit)
	if err != nil {
		return nil, err
	}
	loginLimiter, err := newLimiter("login", loginLimit)
	if err != nil {
		return nil, err
	}
	reportLimiter, err := newLimiter("report", reportLimit)
	if err != nil {
		return nil, err
	}
	cookieName := strings.TrimSpace(cfg.CookieName)
	if cookieName == "" {
		cookieName = "campusnest_session"
	}
	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	s := &Server{
		app:                cfg.App,
		mux:                http.NewServeMux(),
		trusted:            cfg.TrustedProxies,
		cookieName:         cookieName,
		cookieDomain:       strings.TrimSpace(cfg.CookieDomain),
		cookieSecure:       cfg.CookieSecure,
		cookieSameSite:     parseSameSite(cfg.CookieSameSite),
		sessionTTL:         sessionTTL,
		maxUploadBytes:     normalizeMaxBytes(cfg.MaxUploadBytes),
		imageExtensions:    normalizeExtensions(cfg.AllowedImageExtensions, []string{".jpg", ".jpeg", ".png", ".webp"}),
		documentExtensions: normalizeExtensions(cfg.AllowedDocumentExtensions, []string{".pdf", ".jpg", ".jpeg", ".png"}),
		registerLimiter:    registerLimiter,
		loginLimiter:       loginLimiter,
		reportLimiter:      reportLimiter,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// identity
	s.mux.HandleFunc("/api/auth/register", s.handleRegister)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout)
	s.mux.Handle("/api/users/me", s.authenticated(s.handleMe))
	s.mux.Handle("/api/users/me/password", s.authenticated(s.handleChangePassword))
	s.mux.Handle("/api/users/me/verification", s.authenticated(s.handleVerificationUpload))

	// listings
	s.mux.HandleFunc("/api/properties", s.handleProperties)
	s.mux.HandleFunc("/api/properties/", s.handlePropertyByID)
	s.mux.Handle("/api/my/properties", s.authenticated(s.handleMyProperties))
	s.mux.HandleFunc("/api/amenities", s.handleAmenities)

	// moderation
	s.mux.Handle("/api/reports", s.authenticated(s.handleSubmitReport))
	s.mux.Handle("/api/admin/reports", s.adminOnly(s.handleAdminReports))
	s.mux.Handle("/api/admin/reports/", s.adminOnly(s.handleAdminReportByID))
	s.mux.Handle("/api/admin/verifications", s.adminOnly(s.handleAdminVerifications))
	s.mux.Handle("/api/admin/verifications/", s.adminOnly(s.handleAdminVerificationByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// session wrappers
type sessionHandler func(http.ResponseWriter, *http.Request, domain.Session)

func (s *Server) authenticated(next sessionHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(r)
		if !ok {
			s.audit(r, "session.authorize", "fail")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		s.audit(r, "session.authorize", "success", "user_id", sess.UserID())
		next(w, r, sess)
	})
}

func (s *Server) adminOnly(next sessionHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(r)
		if !ok {
			s.audit(r, "admin.authorize", "fail", "reason", "no_session")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if sess.UserRole() != domain.RoleAdmin {
			s.audit(r, "admin.authorize", "fail", "user_id", sess.UserID(), "reason", "forbidden")
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		s.audit(r, "admin.authorize", "success", "user_id", sess.UserID())
		next(w, r, sess)
	})
}

// session resolves the cookie to a stored session.
func (s *Server) session(r *http.Request) (domain.Session, bool) {
	token, ok := s.sessionToken(r)
	if !ok {
		return domain.Session{}, false
	}
	return s.app.CurrentSession(token)
}

func (s *Server) sessionToken(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return "", false
	}
	return cookie.Value, true
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Domain:   s.cookieDomain,
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: s.cookieSameSite,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		Domain:   s.cookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: s.cookieSameSite,
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAppError maps domain errors onto HTTP statuses.
func writeAppError(w http.ResponseWriter, err error) {
	var vErr *app.ValidationError
	var apiErr *dataclient.APIError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, app.ErrInvalidCredentials), errors.Is(err, app.ErrProfileMissing):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, app.ErrAlreadyVerified):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrPropertyNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrProfileUpdate):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeError(w, status, apiErr.Message)
	default:
		writeError(w, http.StatusBadGateway, "data service unavailable")
	}
}

// audit logs through the request-scoped logger so security events carry
// the request id injected by the middleware.
func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, s.trusted),
	}
	logAttrs = append(logAttrs, attrs...)
	logger := util.LoggerFromContext(r.Context())
	if outcome == "success" {
		logger.Info("security_event", logAttrs...)
		return
	}
	logger.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r, s.trusted)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func normalizeMaxBytes(value int64) int64 {
	if value <= 0 {
		return 10 * 1024 * 1024
	}
	return value
}

func normalizeExtensions(exts, fallback []string) map[string]struct{} {
	if len(exts) == 0 {
		exts = fallback
	}
	out := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out[ext] = struct{}{}
	}
	return out
}

func extensionAllowed(allowed map[string]struct{}, filename string) bool {
	if len(allowed) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := allowed[ext]
	return ok
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(out)
}
