// Package auth issues and verifies the signed access tokens that carry a
// logged-in user's identity, and records revocations so logout takes effect
// before a token's natural expiry.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/thoughtslabs/thoughts-backend/models"
	"github.com/thoughtslabs/thoughts-backend/store"
)

var (
	ErrMalformed        = errors.New("token is malformed")
	ErrSignatureInvalid = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
	ErrRevoked          = errors.New("token has been revoked")
)

// Claims are the identity fields embedded in every access token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService signs time-limited HS256 tokens and checks presented tokens
// against signature, expiry and the revocation ledger. The signing secret is
// loaded once at startup and never changes at runtime.
type TokenService struct {
	secret    []byte
	ttl       time.Duration
	blacklist store.TokenBlacklist
}

func NewTokenService(secret []byte, ttl time.Duration, blacklist store.TokenBlacklist) *TokenService {
	return &TokenService{secret: secret, ttl: ttl, blacklist: blacklist}
}

// Issue signs a token embedding the user's id, username and email, valid
// for the configured lifetime.
func (s *TokenService) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks tokenString in order: parse, signature and expiry, then the
// revocation ledger. The ledger lookup runs even for a cryptographically
// valid token; that check is what makes logout stick while the token is
// still within its lifetime.
func (s *TokenService) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrSignatureInvalid
		}
	}
	if !token.Valid {
		return nil, ErrSignatureInvalid
	}

	revoked, err := s.blacklist.Contains(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevoked
	}

	return claims, nil
}

// Revoke records tokenString in the ledger. Revoking a token twice is not
// an error: logout is idempotent.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	return s.blacklist.Insert(ctx, tokenString)
}
