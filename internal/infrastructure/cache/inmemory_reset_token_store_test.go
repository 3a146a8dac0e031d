package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryResetTokenStore_SingleUse(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryResetTokenStore()
	userID := uuid.New()

	token, err := store.Issue(ctx, userID, time.Hour)
	require.NoError(t, err)
	assert.Len(t, token, 43)

	got, err := store.Lookup(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, got, "lookup leaves the token usable")

	got, err = store.Consume(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = store.Lookup(ctx, token)
	assert.ErrorIs(t, err, identity.ErrInvalidResetToken)
	_, err = store.Consume(ctx, token)
	assert.ErrorIs(t, err, identity.ErrInvalidResetToken)
}

func TestInMemoryResetTokenStore_ConsumeRevokesOutstanding(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryResetTokenStore()
	userID := uuid.New()
	other := uuid.New()

	first, err := store.Issue(ctx, userID, time.Hour)
	require.NoError(t, err)
	second, err := store.Issue(ctx, userID, time.Hour)
	require.NoError(t, err)
	foreign, err := store.Issue(ctx, other, time.Hour)
	require.NoError(t, err)

	_, err = store.Consume(ctx, second)
	require.NoError(t, err)

	_, err = store.Consume(ctx, first)
	assert.ErrorIs(t, err, identity.ErrInvalidResetToken)

	got, err := store.Consume(ctx, foreign)
	require.NoError(t, err)
	assert.Equal(t, other, got)
}

func TestInMemoryResetTokenStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryResetTokenStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	token, err := store.Issue(ctx, uuid.New(), time.Hour)
	require.NoError(t, err)

	now = now.Add(time.Hour)
	_, err = store.Consume(ctx, token)
	assert.ErrorIs(t, err, identity.ErrInvalidResetToken)
}

func TestInMemoryResetTokenStore_RevokeUser(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryResetTokenStore()
	userID := uuid.New()

	token, err := store.Issue(ctx, userID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.RevokeUser(ctx, userID))

	_, err = store.Consume(ctx, token)
	assert.ErrorIs(t, err, identity.ErrInvalidResetToken)
}

func TestTokenDigest(t *testing.T) {
	assert.Equal(t, tokenDigest("abc"), tokenDigest("abc"))
	assert.NotEqual(t, tokenDigest("abc"), tokenDigest("abd"))
	assert.Len(t, tokenDigest("abc"), 64)
}
