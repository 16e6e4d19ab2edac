package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sharepoint-portal/portal-backend/internal/users"
)

// Middleware authenticates the bearer token and stores the canonical principal on the request context.
func Middleware(validator *TokenValidator, directory users.Directory, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := ExtractToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		claims, err := validator.ValidateToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, err := directory.ResolveIdentity(c.Request.Context(), claims.Identity())
		if err != nil {
			logger.Error("Failed to resolve identity", zap.String("identity", claims.Identity()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}

		c.Request = c.Request.WithContext(users.WithPrincipal(c.Request.Context(), user.Principal()))
		c.Next()
	}
}
