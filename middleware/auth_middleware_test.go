package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/thoughtslabs/thoughts-backend/auth"
	"github.com/thoughtslabs/thoughts-backend/httperr"
	"github.com/thoughtslabs/thoughts-backend/models"
)

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

// newTestRouter mounts a protected probe route that records whether the
// downstream handler ran and what identity it saw.
func newTestRouter(tokens *auth.TokenService) (*gin.Engine, *bool, *string) {
	gin.SetMode(gin.TestMode)
	reached := false
	var seenUser string

	r := gin.New()
	r.Use(httperr.Handler(true))
	protected := r.Group("/", Authenticate(tokens))
	protected.GET("probe", func(c *gin.Context) {
		reached = true
		seenUser = c.GetString(CtxUsername)
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r, &reached, &seenUser
}

func issueFor(t *testing.T, tokens *auth.TokenService, username string) string {
	t.Helper()
	tok, err := tokens.Issue(&models.User{
		ID:       bson.NewObjectID(),
		Username: username,
		Email:    username + "@x.com",
	})
	require.NoError(t, err)
	return tok
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTokenService([]byte("s"), time.Hour, newMemBlacklist())
	r, reached, _ := newTestRouter(tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, *reached, "handler must not run without a token")
}

func TestAuthenticate_NonBearerHeader(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTokenService([]byte("s"), time.Hour, newMemBlacklist())
	r, reached, _ := newTestRouter(tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, *reached)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTokenService([]byte("s"), time.Hour, newMemBlacklist())
	r, reached, seenUser := newTestRouter(tokens)

	tok := issueFor(t, tokens, "a1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, *reached)
	require.Equal(t, "a1", *seenUser)
}

func TestAuthenticate_CaseInsensitiveHeaderName(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTokenService([]byte("s"), time.Hour, newMemBlacklist())
	r, reached, _ := newTestRouter(tokens)

	tok := issueFor(t, tokens, "a1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, *reached)
}

func TestAuthenticate_RevokedToken(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTokenService([]byte("s"), time.Hour, newMemBlacklist())
	r, reached, _ := newTestRouter(tokens)

	tok := issueFor(t, tokens, "a1")
	require.NoError(t, tokens.Revoke(context.Background(), tok))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, *reached)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	t.Parallel()

	issuer := auth.NewTokenService([]byte("s"), -1*time.Second, newMemBlacklist())
	tokens := auth.NewTokenService([]byte("s"), time.Hour, newMemBlacklist())
	r, reached, _ := newTestRouter(tokens)

	tok := issueFor(t, issuer, "a1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, *reached)
}
