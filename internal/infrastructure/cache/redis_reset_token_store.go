package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/scg/portal/internal/domain/identity"
)

const resetKeyPrefix = "scg:reset:"

// RedisResetTokenStore keeps password reset tokens in Redis.
// Each token key holds the user ID; a per-user set tracks outstanding tokens.
type RedisResetTokenStore struct {
	client redis.Cmdable
}

// NewRedisResetTokenStore creates a store on an existing client
func NewRedisResetTokenStore(client redis.Cmdable) *RedisResetTokenStore {
	return &RedisResetTokenStore{client: client}
}

func (s *RedisResetTokenStore) tokenKey(digest string) string {
	return resetKeyPrefix + "token:" + digest
}

func (s *RedisResetTokenStore) userKey(userID uuid.UUID) string {
	return resetKeyPrefix + "user:" + userID.String()
}

// Issue implements identity.ResetTokenStore
func (s *RedisResetTokenStore) Issue(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	digest := tokenDigest(token)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.tokenKey(digest), userID.String(), ttl)
	pipe.SAdd(ctx, s.userKey(userID), digest)
	pipe.Expire(ctx, s.userKey(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}
	return token, nil
}

// Lookup implements identity.ResetTokenStore
func (s *RedisResetTokenStore) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	return parseResetValue(s.client.Get(ctx, s.tokenKey(tokenDigest(token))).Result())
}

// Consume implements identity.ResetTokenStore
func (s *RedisResetTokenStore) Consume(ctx context.Context, token string) (uuid.UUID, error) {
	userID, err := parseResetValue(s.client.GetDel(ctx, s.tokenKey(tokenDigest(token))).Result())
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.RevokeUser(ctx, userID); err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}

func parseResetValue(raw string, err error) (uuid.UUID, error) {
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, identity.ErrInvalidResetToken
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to read reset token: %w", err)
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, identity.ErrInvalidResetToken
	}
	return userID, nil
}

// RevokeUser implements identity.ResetTokenStore
func (s *RedisResetTokenStore) RevokeUser(ctx context.Context, userID uuid.UUID) error {
	digests, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to list reset tokens: %w", err)
	}
	keys := make([]string, 0, len(digests)+1)
	for _, d := range digests {
		keys = append(keys, s.tokenKey(d))
	}
	keys = append(keys, s.userKey(userID))
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to revoke reset tokens: %w", err)
	}
	return nil
}

var _ identity.ResetTokenStore = (*RedisResetTokenStore)(nil)
