package app

import (
	"errors"

	"campusnest/internal/dataclient"
	"campusnest/internal/objstore"
	"campusnest/internal/store"
	"campusnest/pkg/domain"
)

const defaultPlaceholderImageURL = "/images/placeholder.svg"

// Config holds runtime dependencies for the core application.
type Config struct {
	Data                *dataclient.Client
	Objects             *objstore.Client
	Sessions            store.SessionStore
	PlaceholderImageURL string
}

// App is the core application service wiring the data service, object
// storage, and session store together.
type App struct {
	data        *dataclient.Client
	objects     *objstore.Client
	sessions    store.SessionStore
	placeholder string
}

// New constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.Data == nil {
		return nil, errors.New("data service client required")
	}
	if cfg.Objects == nil {
		return nil, errors.New("object storage client required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store required")
	}
	placeholder := cfg.PlaceholderImageURL
	if placeholder == "" {
		placeholder = defaultPlaceholderImageURL
	}
	return &App{
		data:        cfg.Data,
		objects:     cfg.Objects,
		sessions:    cfg.Sessions,
		placeholder: placeholder,
	}, nil
}

// CurrentSession resolves a cookie token to a complete session.
func (a *App) CurrentSession(token string) (domain.Session, bool) {
	sess, ok, err := a.sessions.Get(token)
	if err != nil || !ok {
		return domain.Session{}, false
	}
	if !sess.IsAuthenticated() {
		return domain.Session{}, false
	}
	return sess, true
}
