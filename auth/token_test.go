package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/thoughtslabs/thoughts-backend/models"
)

// memBlacklist is an in-memory ledger for tests.
type memBlacklist struct {
	mu     sync.Mutex
	tokens map[string]struct{}
}

func newMemBlacklist() *memBlacklist {
	return &memBlacklist{tokens: map[string]struct{}{}}
}

func (m *memBlacklist) Contains(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tokens[token]
	return ok, nil
}

func (m *memBlacklist) Insert(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = struct{}{}
	return nil
}

func testUser() *models.User {
	return &models.User{
		ID:       bson.NewObjectID(),
		Name:     "A",
		Username: "a1",
		Email:    "a@x.com",
		Role:     models.RoleReader,
	}
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	user := testUser()
	svc := NewTokenService([]byte("super-secret"), 15*time.Minute, newMemBlacklist())

	tok, err := svc.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := svc.Verify(context.Background(), tok)
	require.NoError(t, err)
	require.Equal(t, user.ID.Hex(), claims.UserID)
	require.Equal(t, "a1", claims.Username)
	require.Equal(t, "a@x.com", claims.Email)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("secret"), -1*time.Second, newMemBlacklist())

	tok, err := svc.Issue(testUser())
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), tok)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewTokenService([]byte("right-secret"), time.Hour, newMemBlacklist())
	verifier := NewTokenService([]byte("wrong-secret"), time.Hour, newMemBlacklist())

	tok, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), tok)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("k"), time.Hour, newMemBlacklist())

	_, err := svc.Verify(context.Background(), "not.a.jwt")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestRevokeThenVerify(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("secret"), 15*time.Minute, newMemBlacklist())
	ctx := context.Background()

	tok, err := svc.Issue(testUser())
	require.NoError(t, err)

	// Token is well within its lifetime; only the ledger makes it invalid.
	require.NoError(t, svc.Revoke(ctx, tok))

	_, err = svc.Verify(ctx, tok)
	require.ErrorIs(t, err, ErrRevoked)
}

func TestRevoke_Idempotent(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("secret"), 15*time.Minute, newMemBlacklist())
	ctx := context.Background()

	tok, err := svc.Issue(testUser())
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, tok))
	require.NoError(t, svc.Revoke(ctx, tok))

	_, err = svc.Verify(ctx, tok)
	require.ErrorIs(t, err, ErrRevoked)
}

func TestVerify_ExpiredWinsOverRevoked(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("secret"), -1*time.Second, newMemBlacklist())
	ctx := context.Background()

	tok, err := svc.Issue(testUser())
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, tok))

	// Expiry is checked before the ledger lookup.
	_, err = svc.Verify(ctx, tok)
	require.ErrorIs(t, err, ErrExpired)
}
