package middleware

import (
	"context"

	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/response"
	"github.com/gin-gonic/gin"
)

const (
	// ContextKeyUser is the Gin context key for the authenticated user.
	ContextKeyUser = "user"
)

// Authenticator resolves bearer credentials to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*model.User, error)
	AuthenticateToken(ctx context.Context, raw string) (*model.User, error)
}

// RequireAuth validates the Authorization header and stores the user in the
// context. Token failures map to 401 with a code naming the failure kind.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			response.AbortError(c, err)
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// RequireWSAuth validates a token from the query param ?token=...
// Browsers cannot set headers on WebSocket upgrade requests.
func RequireWSAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.AuthenticateToken(c.Request.Context(), c.Query("token"))
		if err != nil {
			response.AbortError(c, err)
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// GetUser retrieves the authenticated user from the Gin context.
func GetUser(c *gin.Context) *model.User {
	val, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	user, ok := val.(*model.User)
	if !ok {
		return nil
	}
	return user
}
