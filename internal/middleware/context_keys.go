package middleware

import "github.com/gin-gonic/gin"

// userIDKey is the key used to store the authenticated user's ID in the Gin context.
// Using a custom type prevents collisions.
const userIDKey = contextKey("userID")

// associationIDKey is the key used to store the scoped association ID resolved
// from the X-Association-ID header.
const associationIDKey = contextKey("associationID")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		userIDVal := c.Request.Context().Value(userIDKey)
		if userIDVal != nil {
			return userIDVal.(string), true
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok {
		// This should not happen if the auth middleware sets it correctly
		return "", false
	}

	return userID, true
}

// GetAssociationIDFromContext retrieves the scoped association ID from the Gin
// context. It returns the ID and a boolean indicating if it was found.
func GetAssociationIDFromContext(c *gin.Context) (string, bool) {
	val, exists := c.Get(string(associationIDKey))
	if !exists {
		// check in the request context as well
		val := c.Request.Context().Value(associationIDKey)
		if val != nil {
			return val.(string), true
		}
		return "", false
	}

	associationID, ok := val.(string)
	if !ok {
		return "", false
	}

	return associationID, true
}
