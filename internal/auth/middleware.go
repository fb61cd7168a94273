package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	contextKeyUserID = "user_id"
	contextKeyClaims = "token_claims"
)

// UserIDFromContext returns the current user ID set by RequireBearer. Empty if not set.
func UserIDFromContext(c *gin.Context) string {
	return c.GetString(contextKeyUserID)
}

// ClaimsFromContext returns the verified token claims, or nil.
func ClaimsFromContext(c *gin.Context) *Claims {
	v, ok := c.Get(contextKeyClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}

// RequireBearer returns a middleware that checks the Authorization header for a valid token
// and sets the current user ID in context. If missing, invalid, expired or revoked, responds with 401.
func RequireBearer(tokens *TokenIssuer, revoked *RevocationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, ErrTokenExpired) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		// A Redis outage fails open; signature and expiry are still enforced.
		if isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID); err == nil && isRevoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}
		c.Set(contextKeyUserID, claims.Subject)
		c.Set(contextKeyClaims, claims)
		c.Next()
	}
}

// bearerToken accepts "Bearer <jwt>" and a bare "<jwt>".
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	scheme, rest, found := strings.Cut(header, " ")
	if !found {
		return header
	}
	if strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(rest)
	}
	return ""
}
