package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/CSCORE-2025/cscore-web/internal/models"
	"github.com/CSCORE-2025/cscore-web/internal/utils"
)

const (
	contextUserKey  = "auth_user"
	contextTokenKey = "auth_token"
)

// Middleware validates the bearer token and stores the identity plus the raw
// token (for backend passthrough) in the request context.
func Middleware(verifier Verifier, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Missing bearer token",
			})
			return
		}

		user, err := verifier.Verify(token)
		if err != nil {
			logger.Warn("token verification failed", "error", err, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set(contextUserKey, user)
		c.Set(contextTokenKey, token)
		c.Next()
	}
}

// RequireRoles rejects requests whose identity carries none of the given
// roles. It must run after Middleware.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := UserFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Not authenticated",
			})
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"message": "Insufficient role",
		})
	}
}

func UserFrom(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

func TokenFrom(c *gin.Context) string {
	return c.GetString(contextTokenKey)
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
