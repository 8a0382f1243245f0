package middleware

import (
	"net/http"
	"slices"

	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only if the authenticated user holds
// one of roles. Must run after RequireAuth.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if slices.Contains(roles, user.Role) {
			c.Next()
			return
		}

		code := response.ErrForbidden
		if len(roles) == 1 && roles[0] == model.RoleAdmin {
			code = response.ErrAdminAccessOnly
		}
		response.AbortFail(c, http.StatusForbidden, code)
	}
}
