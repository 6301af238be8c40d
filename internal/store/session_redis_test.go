package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"campusnest/pkg/domain"
)

func testSession(id string) domain.Session {
	return domain.Session{
		Principal: domain.Principal{ID: id, Email: id + "@example.com", AccessToken: "tok-" + id},
		Profile:   domain.Profile{ID: id, Name: "User " + id, Email: id + "@example.com", Role: domain.RoleStudent},
	}
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisSessionStore(redis.Addr(), "", "test-secret", time.Hour)

	token, err := s.Create(testSession("user-1"))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	sess, ok, err := s.Get(token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !ok {
		t.Fatalf("expected session to exist")
	}
	if sess.Profile.Name != "User user-1" || sess.Principal.AccessToken != "tok-user-1" {
		t.Fatalf("unexpected session payload: %+v", sess)
	}

	sess.Profile.VerificationStatus = domain.VerificationPending
	if err := s.Update(token, sess); err != nil {
		t.Fatalf("update session: %v", err)
	}
	sess, ok, err = s.Get(token)
	if err != nil || !ok {
		t.Fatalf("get after update: ok=%v err=%v", ok, err)
	}
	if sess.Profile.VerificationStatus != domain.VerificationPending {
		t.Fatalf("update not persisted: %+v", sess.Profile)
	}

	if err := s.Delete(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, _ := s.Get(token); ok {
		t.Fatalf("session should be gone after delete")
	}
}

func TestRedisSessionStoreRejectsForgedToken(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisSessionStore(redis.Addr(), "", "secret-a", time.Hour)
	other := NewRedisSessionStore(redis.Addr(), "", "secret-b", time.Hour)

	token, err := other.Create(testSession("user-1"))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	// Same Redis, different signing secret: the token must not resolve.
	if _, ok, err := s.Get(token); ok || err != nil {
		t.Fatalf("forged token expected (false, nil), got ok=%v err=%v", ok, err)
	}
}

func TestRedisSessionStoreExpiry(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisSessionStore(redis.Addr(), "", "test-secret", time.Minute)

	token, err := s.Create(testSession("user-1"))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	redis.FastForward(2 * time.Minute)
	if _, ok, _ := s.Get(token); ok {
		t.Fatalf("session should expire with its key")
	}
}

func TestRedisSessionStoreUpdateMissingSession(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisSessionStore(redis.Addr(), "", "test-secret", time.Hour)

	token, err := s.Create(testSession("user-1"))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := s.Delete(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if err := s.Update(token, testSession("user-1")); err == nil {
		t.Fatalf("update of deleted session should fail")
	}
}
