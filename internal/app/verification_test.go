package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"campusnest/pkg/domain"
)

func TestVerifiedLandlordCannotResubmitDocument(t *testing.T) {
	env := newTestApp(t, nil)
	sess := sessionFor("land-1", domain.RoleLandlord)
	sess.Profile.VerificationStatus = domain.VerificationVerified
	token := env.signIn(t, sess)

	_, err := env.app.SubmitVerificationDocument(token, "id.pdf", "application/pdf", []byte("doc"))
	if !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
	if env.requests.Load() != 0 {
		t.Fatalf("verified account must not reach storage")
	}
}

func TestSubmitDocumentRequiresFile(t *testing.T) {
	env := newTestApp(t, nil)
	token := env.signIn(t, sessionFor("land-1", domain.RoleLandlord))

	if _, err := env.app.SubmitVerificationDocument(token, "id.pdf", "application/pdf", nil); err == nil {
		t.Fatalf("empty upload should be rejected")
	}
	if _, err := env.app.SubmitVerificationDocument(token, "noextension", "application/pdf", []byte("doc")); err == nil {
		t.Fatalf("extension-less filename should be rejected")
	}
}

func TestSubmitDocumentMovesAccountToPending(t *testing.T) {
	stored := domain.Profile{
		ID: "land-1", Name: "Lars", Email: "l@b.com",
		Role: domain.RoleLandlord, VerificationStatus: domain.VerificationUnverified,
	}
	var uploadPath, uploadAuth string
	var patched map[string]any
	env := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/storage/v1/object/verification/"):
			uploadPath = strings.TrimPrefix(r.URL.Path, "/storage/v1/object/verification/")
			uploadAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPatch && r.URL.Path == "/rest/v1/profiles":
			_ = json.NewDecoder(r.Body).Decode(&patched)
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/profiles":
			updated := stored
			updated.VerificationStatus = domain.VerificationPending
			doc, _ := patched["verification_document"].(string)
			updated.VerificationDocument = doc
			_ = json.NewEncoder(w).Encode([]any{profileJSON(updated)})
		default:
			http.NotFound(w, r)
		}
	})
	sess := domain.Session{
		Principal: domain.Principal{ID: "land-1", Email: stored.Email, AccessToken: "tok-land"},
		Profile:   stored,
	}
	token := env.signIn(t, sess)

	updated, err := env.app.SubmitVerificationDocument(token, "passport.PDF", "application/pdf", []byte("doc"))
	if err != nil {
		t.Fatalf("submit document: %v", err)
	}
	if !strings.HasPrefix(uploadPath, "user_land-1/userid_land-1_uploaddate_") || !strings.HasSuffix(uploadPath, ".pdf") {
		t.Fatalf("upload path = %q", uploadPath)
	}
	if uploadAuth != "Bearer tok-land" {
		t.Fatalf("upload must use the landlord's token, got %q", uploadAuth)
	}
	if patched["is_verified"] != float64(domain.VerificationPending) {
		t.Fatalf("status not moved to pending: %v", patched)
	}
	if patched["verification_document"] != uploadPath {
		t.Fatalf("document path not stored: %v", patched)
	}
	if updated.Profile.VerificationStatus != domain.VerificationPending {
		t.Fatalf("session not refreshed: %+v", updated.Profile)
	}
}

func TestApproveVerificationMarksVerified(t *testing.T) {
	stored := domain.Profile{
		ID: "land-1", Name: "Lars", Role: domain.RoleLandlord,
		VerificationStatus:   domain.VerificationPending,
		VerificationDocument: "user_land-1/doc.pdf",
	}
	var patched map[string]any
	env := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/profiles":
			_ = json.NewEncoder(w).Encode([]any{profileJSON(stored)})
		case r.Method == http.MethodPatch && r.URL.Path == "/rest/v1/profiles":
			_ = json.NewDecoder(r.Body).Decode(&patched)
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	})
	admin := sessionFor("admin-1", domain.RoleAdmin)

	if err := env.app.ApproveVerification(admin, "land-1"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if patched["is_verified"] != float64(domain.VerificationVerified) {
		t.Fatalf("status not set to verified: %v", patched)
	}
	if patched["verification_document"] != "user_land-1/doc.pdf" {
		t.Fatalf("approval must keep the document: %v", patched)
	}
}

func TestRejectVerificationClearsDocument(t *testing.T) {
	stored := domain.Profile{
		ID: "land-1", Name: "Lars", Role: domain.RoleLandlord,
		VerificationStatus:   domain.VerificationPending,
		VerificationDocument: "user_land-1/doc.pdf",
	}
	var patched map[string]any
	deleted := make(chan string, 1)
	env := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/profiles":
			_ = json.NewEncoder(w).Encode([]any{profileJSON(stored)})
		case r.Method == http.MethodPatch && r.URL.Path == "/rest/v1/profiles":
			_ = json.NewDecoder(r.Body).Decode(&patched)
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/storage/v1/object/verification/"):
			deleted <- strings.TrimPrefix(r.URL.Path, "/storage/v1/object/verification/")
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	})
	admin := sessionFor("admin-1", domain.RoleAdmin)

	if err := env.app.RejectVerification(admin, "land-1"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if patched["is_verified"] != float64(domain.VerificationRejected) {
		t.Fatalf("status not set to rejected: %v", patched)
	}
	if patched["verification_document"] != "" {
		t.Fatalf("rejection must clear the document: %v", patched)
	}
	select {
	case path := <-deleted:
		if path != "user_land-1/doc.pdf" {
			t.Fatalf("wrong object deleted: %q", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("stored document was never cleaned up")
	}
}

func TestVerificationReviewRequiresAdmin(t *testing.T) {
	env := newTestApp(t, nil)
	landlord := sessionFor("land-1", domain.RoleLandlord)

	if _, err := env.app.PendingVerifications(landlord); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := env.app.ApproveVerification(landlord, "land-2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := env.app.RejectVerification(landlord, "land-2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if env.requests.Load() != 0 {
		t.Fatalf("forbidden review must not reach the data service")
	}
}
