package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"campusnest/pkg/domain"
)

const sessionKeyPrefix = "campusnest:session:"

// RedisSessionStore keeps session payloads in Redis with TTL.
// The cookie token is signed; its jti addresses the payload key, so a
// forged or expired cookie never reaches Redis.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	codec  tokenCodec
}

// NewRedisSessionStore builds a Redis-backed session store.
func NewRedisSessionStore(addr, password, secret string, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		ttl:   ttl,
		codec: newTokenCodec(secret, ttl),
	}
}

// Create persists the session and returns the signed cookie token.
func (s *RedisSessionStore) Create(sess domain.Session) (string, error) {
	token, jti, err := s.codec.mint()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.client.Set(ctx, sessionKeyPrefix+jti, data, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Get resolves a cookie token to its session payload.
func (s *RedisSessionStore) Get(token string) (domain.Session, bool, error) {
	jti, err := s.codec.parse(token)
	if err != nil {
		return domain.Session{}, false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	data, err := s.client.Get(ctx, sessionKeyPrefix+jti).Bytes()
	if err == redis.Nil {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, err
	}
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domain.Session{}, false, err
	}
	return sess, true, nil
}

// Update replaces the payload of an existing session, keeping its TTL.
func (s *RedisSessionStore) Update(token string, sess domain.Session) error {
	jti, err := s.codec.parse(token)
	if err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	ok, err := s.client.SetXX(ctx, sessionKeyPrefix+jti, data, redis.KeepTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("session not found")
	}
	return nil
}

// Delete removes a session. Unparseable tokens are a no-op.
func (s *RedisSessionStore) Delete(token string) error {
	jti, err := s.codec.parse(token)
	if err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.client.Del(ctx, sessionKeyPrefix+jti).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}
