package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cppla/qaforum/utils"
)

// RequestID propagates the caller's X-Request-ID or assigns a new UUID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(utils.RequestIDKey)
		if rid == "" || len(rid) > 64 {
			rid = uuid.NewString()
		}
		c.Set(utils.RequestIDKey, rid)
		c.Header(utils.RequestIDKey, rid)
		c.Next()
	}
}
