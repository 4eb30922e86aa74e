package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/DhavalSuthar-24/miow-forecast/internal/common"
	"github.com/DhavalSuthar-24/miow-forecast/pkg/token"
)

// AuthMiddleware accepts requests carrying a valid bearer token. When db is
// non-nil the client must also still be active.
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format. Expected: Bearer <token>"})
			return
		}

		claims, err := token.ValidateJWT(bearerToken[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			return
		}

		if db != nil {
			var exists bool
			err := db.WithContext(c.Request.Context()).Table("clients").Select("1").
				Where("client_id = ? AND active AND deleted_at IS NULL", claims.ClientID).
				Scan(&exists).Error
			if err != nil || !exists {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Client not found or inactive"})
				return
			}
		}

		c.Set(common.ContextClientIDKey, claims.ClientID)
		c.Set(common.ContextRoleKey, claims.Role)
		c.Next()
	}
}
