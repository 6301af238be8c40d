package store

import "campusnest/pkg/domain"

// SessionStore persists login sessions keyed by an opaque cookie token.
type SessionStore interface {
	Create(sess domain.Session) (string, error)
	Get(token string) (domain.Session, bool, error)
	Update(token string, sess domain.Session) error
	Delete(token string) error
}
