package app

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"campusnest/internal/dataclient"
	"campusnest/internal/objstore"
	"campusnest/internal/store"
	"campusnest/pkg/domain"
)

// sessionRecorder wraps the in-memory store and counts issued sessions.
type sessionRecorder struct {
	*store.MemorySessionStore
	creates atomic.Int64
}

func (s *sessionRecorder) Create(sess domain.Session) (string, error) {
	s.creates.Add(1)
	return s.MemorySessionStore.Create(sess)
}

type testEnv struct {
	app      *App
	sessions *sessionRecorder
	requests *atomic.Int64
}

// newTestApp stands up the app against one fake server handling both the
// data service and object storage endpoints.
func newTestApp(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()
	requests := &atomic.Int64{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if handler == nil {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	sessions := &sessionRecorder{MemorySessionStore: store.NewMemorySessionStore()}
	a, err := New(Config{
		Data:     dataclient.NewClient(srv.URL, "test-key"),
		Objects:  objstore.NewClient(srv.URL, "test-key"),
		Sessions: sessions,
	})
	if err != nil {
		t.Fatalf("init app: %v", err)
	}
	return &testEnv{app: a, sessions: sessions, requests: requests}
}

// signIn seeds a session directly in the store and returns its token.
func (env *testEnv) signIn(t *testing.T, sess domain.Session) string {
	t.Helper()
	token, err := env.sessions.MemorySessionStore.Create(sess)
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return token
}

func sessionFor(id string, role domain.Role) domain.Session {
	return domain.Session{
		Principal: domain.Principal{ID: id, Email: id + "@example.com", AccessToken: "tok-" + id},
		Profile: domain.Profile{
			ID:    id,
			Name:  "User " + id,
			Email: id + "@example.com",
			Role:  role,
		},
	}
}

func profileJSON(p domain.Profile) map[string]any {
	return map[string]any{
		"id":                    p.ID,
		"name":                  p.Name,
		"email":                 p.Email,
		"phone":                 p.Phone,
		"role":                  string(p.Role),
		"unique_id":             p.UniqueID,
		"is_verified":           int(p.VerificationStatus),
		"verification_document": p.VerificationDocument,
	}
}
