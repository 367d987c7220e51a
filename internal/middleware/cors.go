package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS opens the relay to any origin. Both boundary contexts call in
// from pages the relay does not serve (the booking site and the
// extension), so the wildcard is deliberate. Preflight requests are
// answered here and never reach a handler.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Requested-With, X-Relay-Secret")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}
