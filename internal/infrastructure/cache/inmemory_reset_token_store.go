package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/identity"
)

type resetEntry struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// InMemoryResetTokenStore keeps reset tokens in process memory.
// Suitable for single-instance deployments and tests.
type InMemoryResetTokenStore struct {
	mu      sync.Mutex
	entries map[string]resetEntry
	now     func() time.Time
}

// NewInMemoryResetTokenStore creates an empty store
func NewInMemoryResetTokenStore() *InMemoryResetTokenStore {
	return &InMemoryResetTokenStore{
		entries: make(map[string]resetEntry),
		now:     time.Now,
	}
}

// Issue implements identity.ResetTokenStore
func (s *InMemoryResetTokenStore) Issue(_ context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpired()
	s.entries[tokenDigest(token)] = resetEntry{userID: userID, expiresAt: s.now().Add(ttl)}
	return token, nil
}

// Lookup implements identity.ResetTokenStore
func (s *InMemoryResetTokenStore) Lookup(_ context.Context, token string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.valid(token)
	if !ok {
		return uuid.Nil, identity.ErrInvalidResetToken
	}
	return e.userID, nil
}

// Consume implements identity.ResetTokenStore
func (s *InMemoryResetTokenStore) Consume(_ context.Context, token string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.valid(token)
	if !ok {
		return uuid.Nil, identity.ErrInvalidResetToken
	}
	s.revoke(e.userID)
	return e.userID, nil
}

func (s *InMemoryResetTokenStore) valid(token string) (resetEntry, bool) {
	key := tokenDigest(token)
	e, ok := s.entries[key]
	if ok && !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return resetEntry{}, false
	}
	return e, ok
}

// RevokeUser implements identity.ResetTokenStore
func (s *InMemoryResetTokenStore) RevokeUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoke(userID)
	return nil
}

func (s *InMemoryResetTokenStore) revoke(userID uuid.UUID) {
	for k, e := range s.entries {
		if e.userID == userID {
			delete(s.entries, k)
		}
	}
}

func (s *InMemoryResetTokenStore) purgeExpired() {
	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

var _ identity.ResetTokenStore = (*InMemoryResetTokenStore)(nil)
