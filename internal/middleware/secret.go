package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SecretHeader carries the shared secret on initiator-facing requests.
const SecretHeader = "X-Relay-Secret"

// SecretGuard rejects requests that do not present the configured
// shared secret. Enforcement belongs to this boundary, not the relay
// core.
type SecretGuard struct {
	secret string
}

func NewSecretGuard(secret string) *SecretGuard {
	return &SecretGuard{secret: secret}
}

func (g *SecretGuard) RequireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := r.Header.Get(SecretHeader)

		if subtle.ConstantTimeCompare([]byte(presented), []byte(g.secret)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GinRequireSecret adapts the net/http guard to Gin, mirroring how the
// rest of the middleware keeps its core transport-agnostic.
func GinRequireSecret(guard *SecretGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		handler := guard.RequireSecret(next)
		handler.ServeHTTP(c.Writer, c.Request)

		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}
