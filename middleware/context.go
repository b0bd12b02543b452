package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	contextKeyUserID      = "user_id"
	contextKeyRole        = "role"
	contextKeyServiceRole = "service_role"
)

// UserID returns the authenticated member id set by Auth
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// IsServiceRole reports whether the request was authenticated with the service role key
func IsServiceRole(c *gin.Context) bool {
	return c.GetBool(contextKeyServiceRole)
}
