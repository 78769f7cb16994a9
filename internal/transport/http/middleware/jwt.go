package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"displaydeck/internal/model"
	"displaydeck/internal/pkg/jwtutil"
	"displaydeck/internal/transport/http/response"
)

const (
	ContextOperatorIDKey = "operator_id"
	ContextUsernameKey   = "username"
	ContextRoleKey       = "role"
)

func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, 401, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, 401, response.CodeUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, 401, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextOperatorIDKey, claims.OperatorID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// RequireAdmin gates the admin surface on the role marker carried in the
// token. Must run after AuthJWT.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextRoleKey)
		if role != model.RoleAdmin {
			response.Error(c, 403, response.CodeForbidden, "admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}
