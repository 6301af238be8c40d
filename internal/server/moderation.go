package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"campusnest/internal/app"
	"campusnest/pkg/domain"
)

type submitReportRequest struct {
	ListingID  int64  `json:"listingId"`
	LandlordID string `json:"landlordId"`
	Reason     string `json:"reason"`
}

// reportResponse keeps the success/message envelope the report form expects.
type reportResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type updateReportRequest struct {
	Status string `json:"status"`
}

type verificationActionRequest struct {
	Action string `json:"action"`
}

func (s *Server) handleSubmitReport(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.reportLimiter, "too many reports") {
		s.audit(r, "report.submit", "rate_limited")
		return
	}
	var req submitReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, reportResponse{Success: false, Message: "invalid JSON body"})
		return
	}
	created, err := s.app.SubmitReport(sess, req.ListingID, req.LandlordID, req.Reason)
	if err != nil {
		s.audit(r, "report.submit", "fail", "user_id", sess.UserID(), "reason", err.Error())
		writeJSON(w, statusForReportError(err), reportResponse{Success: false, Message: err.Error()})
		return
	}
	s.audit(r, "report.submit", "success", "user_id", sess.UserID(), "report_id", created.ID)
	writeJSON(w, http.StatusCreated, reportResponse{Success: true, Message: "report submitted"})
}

func (s *Server) handleAdminReports(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	status := domain.ReportStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	reports, err := s.app.Reports(sess, status)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": reports,
		"count": len(reports),
	})
}

func (s *Server) handleAdminReportByID(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	idRaw := strings.TrimPrefix(r.URL.Path, "/api/admin/reports/")
	if idRaw == "" || strings.Contains(idRaw, "/") {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(idRaw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	var req updateReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status := domain.ReportStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if err := s.app.UpdateReportStatus(sess, id, status); err != nil {
		s.audit(r, "report.review", "fail", "user_id", sess.UserID(), "report_id", id, "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "report.review", "success", "user_id", sess.UserID(), "report_id", id, "status", string(status))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminVerifications(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	profiles, err := s.app.PendingVerifications(sess)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": profiles,
		"count": len(profiles),
	})
}

func (s *Server) handleAdminVerificationByID(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	userID := strings.TrimPrefix(r.URL.Path, "/api/admin/verifications/")
	if userID == "" || strings.Contains(userID, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req verificationActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	action := strings.ToLower(strings.TrimSpace(req.Action))
	var err error
	switch action {
	case "approve":
		err = s.app.ApproveVerification(sess, userID)
	case "reject":
		err = s.app.RejectVerification(sess, userID)
	default:
		writeError(w, http.StatusBadRequest, "action must be approve or reject")
		return
	}
	if err != nil {
		s.audit(r, "verification.review", "fail", "user_id", sess.UserID(), "target_id", userID, "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "verification.review", "success", "user_id", sess.UserID(), "target_id", userID, "action", action)
	w.WriteHeader(http.StatusNoContent)
}

func statusForReportError(err error) int {
	var vErr *app.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}
