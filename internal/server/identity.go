package server

import (
	"io"
	"net/http"
	"strings"

	"campusnest/internal/app"
	"campusnest/pkg/domain"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.registerLimiter, "too many registration attempts") {
		s.audit(r, "register", "rate_limited")
		return
	}
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.audit(r, "register", "fail", "reason", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	id, err := s.app.Register(req.Email, req.Password, req.Name, domain.Role(strings.ToLower(strings.TrimSpace(req.Role))), req.Phone)
	if err != nil {
		s.audit(r, "register", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "register", "success", "user_id", id)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		s.audit(r, "login", "rate_limited")
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.audit(r, "login", "fail", "reason", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	token, sess, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		s.audit(r, "login", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "login", "success", "user_id", sess.UserID())
	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"user": sess.Profile})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if token, ok := s.sessionToken(r); ok {
		_ = s.app.Logout(token)
	}
	s.clearSessionCookie(w)
	s.audit(r, "logout", "success")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, sess.Profile)
	case http.MethodPatch:
		var req updateProfileRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		token, _ := s.sessionToken(r)
		updated, err := s.app.UpdateProfile(token, appProfileChanges(req))
		if err != nil {
			s.audit(r, "profile.update", "fail", "user_id", sess.UserID(), "reason", err.Error())
			writeAppError(w, err)
			return
		}
		s.audit(r, "profile.update", "success", "user_id", sess.UserID())
		writeJSON(w, http.StatusOK, updated.Profile)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "currentPassword and newPassword are required")
		return
	}
	token, _ := s.sessionToken(r)
	if err := s.app.UpdatePassword(token, req.CurrentPassword, req.NewPassword); err != nil {
		s.audit(r, "password.change", "fail", "user_id", sess.UserID(), "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "password.change", "success", "user_id", sess.UserID())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVerificationUpload(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		writeError(w, http.StatusBadRequest, "document file is required (field: document)")
		return
	}
	defer file.Close()
	if !extensionAllowed(s.documentExtensions, header.Filename) {
		writeError(w, http.StatusBadRequest, "unsupported document type")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read document")
		return
	}
	token, _ := s.sessionToken(r)
	updated, err := s.app.SubmitVerificationDocument(token, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		s.audit(r, "verification.upload", "fail", "user_id", sess.UserID(), "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "verification.upload", "success", "user_id", sess.UserID())
	writeJSON(w, http.StatusOK, updated.Profile)
}

func appProfileChanges(req updateProfileRequest) app.ProfileChanges {
	return app.ProfileChanges{
		Name:  req.Name,
		Phone: req.Phone,
	}
}
