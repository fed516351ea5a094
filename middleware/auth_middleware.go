package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thoughtslabs/thoughts-backend/auth"
	"github.com/thoughtslabs/thoughts-backend/httperr"
)

// Context keys set by Authenticate for downstream handlers.
const (
	CtxUserID   = "userID"
	CtxUsername = "username"
	CtxEmail    = "email"
	CtxToken    = "token"
)

// Authenticate guards a route group with bearer-token verification. A
// missing or non-Bearer Authorization header is rejected outright, without
// consulting the token service; anonymous passthrough is never allowed on
// routes mounted behind this middleware.
func Authenticate(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			httperr.Abort(c, httperr.Unauthorized("User is not Authorised (or) Auth token is missing"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims, err := tokens.Verify(c.Request.Context(), tokenStr)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrRevoked):
				httperr.Abort(c, httperr.Unauthorized("User is not Authorized, Please login"))
			case errors.Is(err, auth.ErrExpired):
				httperr.Abort(c, httperr.Unauthorized("Auth token has expired, Please login"))
			case errors.Is(err, auth.ErrMalformed), errors.Is(err, auth.ErrSignatureInvalid):
				httperr.Abort(c, httperr.Unauthorized("User is not Authorized"))
			default:
				httperr.Abort(c, httperr.Internal(err))
			}
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxToken, tokenStr)
		c.Next()
	}
}
