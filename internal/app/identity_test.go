package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"campusnest/pkg/domain"
)

func TestRegisterValidatesBeforeAnyNetworkCall(t *testing.T) {
	env := newTestApp(t, nil)

	cases := []struct {
		name     string
		email    string
		password string
		fullName string
		role     domain.Role
		field    string
	}{
		{"bad email", "not-an-email", "secret1", "Ana", domain.RoleStudent, "email"},
		{"short password", "a@b.com", "12345", "Ana", domain.RoleStudent, "password"},
		{"missing name", "a@b.com", "secret1", "  ", domain.RoleStudent, "name"},
		{"admin role", "a@b.com", "secret1", "Ana", domain.RoleAdmin, "role"},
		{"unknown role", "a@b.com", "secret1", "Ana", domain.Role("ghost"), "role"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.app.Register(tc.email, tc.password, tc.fullName, tc.role, "")
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if vErr.Field != tc.field {
				t.Fatalf("field = %q, want %q", vErr.Field, tc.field)
			}
		})
	}
	if got := env.requests.Load(); got != 0 {
		t.Fatalf("rejected input reached the data service %d times", got)
	}
}

func TestRegisterCreatesProfileWithUniqueID(t *testing.T) {
	var inserted map[string]any
	env := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/signup":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "user-9"})
		case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/profiles":
			_ = json.NewDecoder(r.Body).Decode(&inserted)
			w.WriteHeader(http.StatusCreated)
		default:
			http.NotFound(w, r)
		}
	})

	id, err := env.app.Register("New@Example.com", "secret1", " Ana ", domain.RoleLandlord, "555-0101")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id != "user-9" {
		t.Fatalf("id = %q", id)
	}
	if inserted["id"] != "user-9" || inserted["name"] != "Ana" {
		t.Fatalf("unexpected profile row: %v", inserted)
	}
	if inserted["email"] != "new@example.com" {
		t.Fatalf("email not normalized: %v", inserted["email"])
	}
	uniqueID, _ := inserted["unique_id"].(string)
	if !regexp.MustCompile(`^\d{5}$`).MatchString(uniqueID) {
		t.Fatalf("unique_id = %q, want five digits", uniqueID)
	}
}

func TestLoginWrongPasswordIsInvalidCredentials(t *testing.T) {
	env := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid login credentials"})
	})

	_, _, err := env.app.Login("a@b.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if env.sessions.creates.Load() != 0 {
		t.Fatalf("failed login must not create a session")
	}
}

func TestLoginMissingProfileCreatesNoSession(t *testing.T) {
	env := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "tok-1",
				"user":         map[string]string{"id": "user-1", "email": "a@b.com"},
			})
		case "/rest/v1/profiles":
			_ = json.NewEncoder(w).Encode([]any{})
		default:
			http.NotFound(w, r)
		}
	})

	_, _, err := env.app.Login("a@b.com", "secret1")
	if !errors.Is(err, ErrProfileMissing) {
		t.Fatalf("expected ErrProfileMissing, got %v", err)
	}
	if env.sessions.creates.Load() != 0 {
		t.Fatalf("profile-less login must not create a session")
	}
}

func TestLoginIssuesSession(t *testing.T) {
	profile := domain.Profile{ID: "user-1", Name: "Ana", Email: "a@b.com", Role: domain.RoleStudent}
	env := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "tok-1",
				"user":         map[string]string{"id": "user-1", "email": "a@b.com"},
			})
		case "/rest/v1/profiles":
			_ = json.NewEncoder(w).Encode([]any{profileJSON(profile)})
		default:
			http.NotFound(w, r)
		}
	})

	token, sess, err := env.app.Login("a@b.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a session token")
	}
	if sess.Profile.Name != "Ana" || sess.Principal.AccessToken != "tok-1" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if got, ok := env.app.CurrentSession(token); !ok || got.UserID() != "user-1" {
		t.Fatalf("session not resolvable: ok=%v got=%+v", ok, got)
	}
}

func TestUpdateProfileKeepsUntouchedFields(t *testing.T) {
	stored := domain.Profile{
		ID: "user-1", Name: "Ana", Email: "a@b.com", Phone: "555-0101",
		Role: domain.RoleStudent, UniqueID: "12345",
	}
	var patched map[string]any
	env := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPatch && r.URL.Path == "/rest/v1/profiles":
			_ = json.NewDecoder(r.Body).Decode(&patched)
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/profiles":
			updated := stored
			updated.Name = "Ana Nova"
			_ = json.NewEncoder(w).Encode([]any{profileJSON(updated)})
		default:
			http.NotFound(w, r)
		}
	})
	sess := domain.Session{
		Principal: domain.Principal{ID: "user-1", Email: stored.Email, AccessToken: "tok-1"},
		Profile:   stored,
	}
	token := env.signIn(t, sess)

	refreshed, err := env.app.UpdateProfile(token, ProfileChanges{Name: "Ana Nova"})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if patched["name"] != "Ana Nova" {
		t.Fatalf("name not written: %v", patched)
	}
	if patched["phone"] != "555-0101" {
		t.Fatalf("omitted phone must keep stored value, got %v", patched["phone"])
	}
	if refreshed.Profile.Name != "Ana Nova" {
		t.Fatalf("session not refreshed: %+v", refreshed.Profile)
	}
	if current, ok := env.app.CurrentSession(token); !ok || current.Profile.Name != "Ana Nova" {
		t.Fatalf("stored session not refreshed: %+v", current.Profile)
	}
}

func TestUpdatePasswordUsesFreshAccessToken(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	env := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/token":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "fresh-tok",
				"user":         map[string]string{"id": "user-1", "email": "a@b.com"},
			})
		case r.Method == http.MethodPut && r.URL.Path == "/auth/v1/user":
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	})
	token := env.signIn(t, sessionFor("user-1", domain.RoleStudent))

	if err := env.app.UpdatePassword(token, "old-secret", "new-secret"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if gotAuth != "Bearer fresh-tok" {
		t.Fatalf("password change must use the re-issued token, got %q", gotAuth)
	}
	if gotBody["password"] != "new-secret" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
}

func TestUpdatePasswordRejectsWrongCurrent(t *testing.T) {
	env := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/v1/token" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid login credentials"})
			return
		}
		t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
	})
	token := env.signIn(t, sessionFor("user-1", domain.RoleStudent))

	err := env.app.UpdatePassword(token, "wrong", "new-secret")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogoutDropsSession(t *testing.T) {
	env := newTestApp(t, nil)
	token := env.signIn(t, sessionFor("user-1", domain.RoleStudent))

	if err := env.app.Logout(token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := env.app.CurrentSession(token); ok {
		t.Fatalf("session should be gone")
	}
	if err := env.app.Logout("unknown-token"); err != nil {
		t.Fatalf("logout of unknown token should be a no-op, got %v", err)
	}
}

func TestSessionWithoutProfileIsNotAuthenticated(t *testing.T) {
	env := newTestApp(t, nil)
	token := env.signIn(t, domain.Session{
		Principal: domain.Principal{ID: "user-1", Email: "a@b.com", AccessToken: "tok"},
	})

	if _, ok := env.app.CurrentSession(token); ok {
		t.Fatalf("principal without profile must not count as signed in")
	}
}

func TestNewUniqueIDFormat(t *testing.T) {
	for i := 0; i < 20; i++ {
		id := newUniqueID()
		if len(id) != 5 || strings.TrimLeft(id, "0123456789") != "" {
			t.Fatalf("unique id = %q", id)
		}
	}
}
