package common

import (
	"errors"

	"github.com/gin-gonic/gin"
)

const (
	// Context keys
	ContextClientIDKey = "clientID"   // Key to store the API client ID in context
	ContextRoleKey     = "clientRole" // Key to store the client role in context
)

// GetClientIDFromContext retrieves the authenticated client's ID from the Gin context.
func GetClientIDFromContext(c *gin.Context) (string, error) {
	v, exists := c.Get(ContextClientIDKey)
	if !exists {
		return "", errors.New("client ID not found in context")
	}
	clientID, ok := v.(string)
	if !ok || clientID == "" {
		return "", errors.New("client ID in context is not a string")
	}
	return clientID, nil
}

// GetRoleFromContext returns the role claim of the authenticated client, or
// "" when there is none.
func GetRoleFromContext(c *gin.Context) string {
	role, _ := c.Get(ContextRoleKey)
	s, _ := role.(string)
	return s
}
