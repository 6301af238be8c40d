package store

import (
	"errors"
	"sync"

	"campusnest/internal/util"
	"campusnest/pkg/domain"
)

// MemorySessionStore keeps sessions in-process. Test use only.
type MemorySessionStore struct {
	mu   sync.RWMutex
	sess map[string]domain.Session
}

// NewMemorySessionStore initializes an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sess: make(map[string]domain.Session)}
}

func (m *MemorySessionStore) Create(sess domain.Session) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := util.NewID()
	m.sess[token] = sess
	return token, nil
}

func (m *MemorySessionStore) Get(token string) (domain.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sess[token]
	return sess, ok, nil
}

func (m *MemorySessionStore) Update(token string, sess domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sess[token]; !ok {
		return errors.New("session not found")
	}
	m.sess[token] = sess
	return nil
}

func (m *MemorySessionStore) Delete(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sess, token)
	return nil
}
