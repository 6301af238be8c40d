package app

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"

	"campusnest/internal/dataclient"
	"campusnest/pkg/domain"
)

const minPasswordLength = 6

// Register creates an auth identity and its profile row.
// Input is validated before any network call.
func (a *App) Register(email, password, name string, role domain.Role, phone string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if _, err := mail.ParseAddress(email); err != nil {
		return "", &ValidationError{Field: "email", Message: "invalid email address"}
	}
	if len(password) < minPasswordLength {
		return "", &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if name == "" {
		return "", &ValidationError{Field: "name", Message: "name is required"}
	}
	if role != domain.RoleStudent && role != domain.RoleLandlord {
		return "", &ValidationError{Field: "role", Message: "role must be student or landlord"}
	}

	id, err := a.data.SignUp(email, password)
	if err != nil {
		return "", fmt.Errorf("signup: %w", err)
	}
	profile := domain.Profile{
		ID:       id,
		Name:     name,
		Email:    email,
		Phone:    phone,
		Role:     role,
		UniqueID: newUniqueID(),
	}
	if err := a.data.InsertProfile(profile); err != nil {
		// The auth identity already exists; the next login will surface
		// the missing profile instead of silently half-working.
		slog.Error("partial_failure", "op", "register", "user_id", id, "err", err)
		return "", fmt.Errorf("create profile: %w", err)
	}
	return id, nil
}

// Login exchanges credentials for a stored session and its cookie token.
// A principal whose profile row is missing is not logged in.
func (a *App) Login(email, password string) (string, domain.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	principal, err := a.data.PasswordLogin(email, password)
	if err != nil {
		if apiErr, ok := err.(*dataclient.APIError); ok && apiErr.Status < 500 {
			return "", domain.Session{}, ErrInvalidCredentials
		}
		return "", domain.Session{}, fmt.Errorf("login: %w", err)
	}
	profile, found, err := a.data.ProfileByID(principal.ID)
	if err != nil {
		return "", domain.Session{}, fmt.Errorf("fetch profile: %w", err)
	}
	if !found {
		return "", domain.Session{}, ErrProfileMissing
	}
	sess := domain.Session{Principal: principal, Profile: profile}
	token, err := a.sessions.Create(sess)
	if err != nil {
		return "", domain.Session{}, fmt.Errorf("issue session: %w", err)
	}
	return token, sess, nil
}

// Logout destroys the session. Unknown tokens are a no-op.
func (a *App) Logout(token string) error {
	return a.sessions.Delete(token)
}

// ProfileChanges carries optional profile edits.
// Empty strings and nil pointers keep the stored values.
type ProfileChanges struct {
	Name         string
	Phone        string
	DocumentPath *string
	Status       *domain.VerificationStatus
}

// UpdateProfile merges the changes with the stored profile, writes the
// full field set, and refreshes the session from the re-read row.
func (a *App) UpdateProfile(token string, changes ProfileChanges) (domain.Session, error) {
	sess, ok := a.CurrentSession(token)
	if !ok {
		return domain.Session{}, ErrNotAuthenticated
	}
	stored := sess.Profile

	update := profileToUpdate(stored)
	if name := strings.TrimSpace(changes.Name); name != "" {
		update.Name = name
	}
	if phone := strings.TrimSpace(changes.Phone); phone != "" {
		update.Phone = phone
	}
	if changes.DocumentPath != nil {
		update.VerificationDocument = *changes.DocumentPath
	}
	if changes.Status != nil {
		update.IsVerified = int(*changes.Status)
	}

	if err := a.data.UpdateProfile(stored.ID, update); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", ErrProfileUpdate, err)
	}
	profile, found, err := a.data.ProfileByID(stored.ID)
	if err != nil || !found {
		return domain.Session{}, ErrProfileUpdate
	}
	sess.Profile = profile
	if err := a.sessions.Update(token, sess); err != nil {
		return domain.Session{}, fmt.Errorf("refresh session: %w", err)
	}
	return sess, nil
}

// UpdatePassword re-validates the current password through a full login
// and then sets the new one with the freshly issued access token.
func (a *App) UpdatePassword(token, currentPassword, newPassword string) error {
	sess, ok := a.CurrentSession(token)
	if !ok {
		return ErrNotAuthenticated
	}
	if len(newPassword) < minPasswordLength {
		return &ValidationError{Field: "newPassword", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	fresh, err := a.data.PasswordLogin(sess.Profile.Email, currentPassword)
	if err != nil {
		if apiErr, ok := err.(*dataclient.APIError); ok && apiErr.Status < 500 {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("verify current password: %w", err)
	}
	if err := a.data.UpdateUserPassword(fresh.AccessToken, newPassword); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// profileToUpdate seeds a PATCH payload with the stored field set so that
// partial edits never blank untouched columns.
func profileToUpdate(p domain.Profile) dataclient.ProfileUpdate {
	return dataclient.ProfileUpdate{
		Name:                 p.Name,
		Phone:                p.Phone,
		VerificationDocument: p.VerificationDocument,
		IsVerified:           int(p.VerificationStatus),
	}
}

// newUniqueID returns the 5-digit display code attached to new profiles.
func newUniqueID() string {
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		return "00000"
	}
	return fmt.Sprintf("%05d", n.Int64())
}
