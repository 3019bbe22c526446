package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lightning66/GiftMe/auth"
	"github.com/lightning66/GiftMe/models"
)

const identityKey = "identity"

// AdminAuth returns API-key authentication middleware for the admin routes.
//
// Supports two header styles:
//
//	X-API-Key: <key>
//	Authorization: Bearer <key>
//
// If apiKeys is empty, the middleware is a no-op (open access).
func AdminAuth(apiKeys []string) gin.HandlerFunc {
	keySet := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keySet[k] = struct{}{}
		}
	}
	if len(keySet) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			key = bearerToken(c)
		}
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: "missing API key: provide X-API-Key header or Authorization: Bearer <key>",
				Code:  models.ErrCodeUnauthorized,
			})
			return
		}
		if _, valid := keySet[key]; !valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: "invalid API key",
				Code:  models.ErrCodeUnauthorized,
			})
			return
		}

		c.Set("api_key", key)
		c.Next()
	}
}

// RequireIdentity verifies the bearer token and stores the caller's
// *auth.Identity on the context.
func RequireIdentity(v auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: "Access token required",
				Code:  models.ErrCodeUnauthorized,
			})
			return
		}

		id, err := v.Verify(token)
		if err != nil {
			slog.Debug("identity rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: "Invalid token",
				Code:  models.ErrCodeUnauthorized,
			})
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// OptionalIdentity stores the caller's identity when a valid bearer token is
// present. Requests without one, or with a bad one, proceed anonymously.
func OptionalIdentity(v auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if id, err := v.Verify(token); err == nil {
				c.Set(identityKey, id)
			}
		}
		c.Next()
	}
}

// Identity returns the identity stored by RequireIdentity or OptionalIdentity.
func Identity(c *gin.Context) (*auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*auth.Identity)
	return id, ok
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
