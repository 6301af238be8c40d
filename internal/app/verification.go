package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"campusnest/internal/objstore"
	"campusnest/pkg/domain"
)

// SubmitVerificationDocument stores a landlord's identity document and
// moves the account to pending review. Verified accounts are rejected
// without touching storage.
func (a *App) SubmitVerificationDocument(token, filename, contentType string, data []byte) (domain.Session, error) {
	sess, ok := a.CurrentSession(token)
	if !ok {
		return domain.Session{}, ErrNotAuthenticated
	}
	if sess.Profile.VerificationStatus == domain.VerificationVerified {
		return domain.Session{}, ErrAlreadyVerified
	}
	if len(data) == 0 {
		return domain.Session{}, &ValidationError{Field: "document", Message: "document file is required"}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return domain.Session{}, &ValidationError{Field: "document", Message: "document must have a file extension"}
	}

	// Replace any previous document; its removal must not block the upload.
	if old := sess.Profile.VerificationDocument; old != "" {
		go a.removeObject(objstore.BucketVerification, old, sess.Principal.AccessToken)
	}

	userID := sess.Profile.ID
	path := fmt.Sprintf("user_%s/userid_%s_uploaddate_%d%s", userID, userID, time.Now().Unix(), ext)
	if err := a.objects.Upload(sess.Principal.AccessToken, objstore.BucketVerification, path, contentType, data); err != nil {
		return domain.Session{}, fmt.Errorf("upload document: %w", err)
	}

	pending := domain.VerificationPending
	updated, err := a.UpdateProfile(token, ProfileChanges{
		DocumentPath: &path,
		Status:       &pending,
	})
	if err != nil {
		return domain.Session{}, err
	}
	return updated, nil
}

// PendingVerifications lists landlords awaiting review.
func (a *App) PendingVerifications(sess domain.Session) ([]domain.Profile, error) {
	if !can(sess, ActionReviewVerification, "") {
		return nil, ErrForbidden
	}
	return a.data.LandlordsByVerificationStatus(domain.VerificationPending)
}

// ApproveVerification marks a landlord verified.
func (a *App) ApproveVerification(sess domain.Session, userID string) error {
	if !can(sess, ActionReviewVerification, "") {
		return ErrForbidden
	}
	return a.setVerification(userID, domain.VerificationVerified, false)
}

// RejectVerification marks a landlord rejected and discards the stored
// document so a fresh upload can restart the flow.
func (a *App) RejectVerification(sess domain.Session, userID string) error {
	if !can(sess, ActionReviewVerification, "") {
		return ErrForbidden
	}
	return a.setVerification(userID, domain.VerificationRejected, true)
}

func (a *App) setVerification(userID string, status domain.VerificationStatus, clearDocument bool) error {
	profile, found, err := a.data.ProfileByID(userID)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}
	if !found {
		return ErrProfileMissing
	}
	update := profileToUpdate(profile)
	update.IsVerified = int(status)
	docPath := profile.VerificationDocument
	if clearDocument {
		update.VerificationDocument = ""
	}
	if err := a.data.UpdateProfile(userID, update); err != nil {
		return fmt.Errorf("%w: %v", ErrProfileUpdate, err)
	}
	if clearDocument && docPath != "" {
		go a.removeObject(objstore.BucketVerification, docPath, "")
	}
	return nil
}

// removeObject deletes a stored object, logging rather than failing.
func (a *App) removeObject(bucket, path, token string) {
	if err := a.objects.Delete(token, bucket, path); err != nil {
		slog.Warn("object cleanup failed", "bucket", bucket, "path", path, "err", err)
	}
}
