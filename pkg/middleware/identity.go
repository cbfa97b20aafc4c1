package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	claimsKey = "caller_claims"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Claims is the authenticated caller identity, injected by the auth gateway
// in front of this service. Every boundary receives it explicitly; the
// service keeps no ambient session state.
type Claims struct {
	UserID string
	Role   string
}

// Identity reads the gateway-injected identity headers. Requests without an
// identity are rejected before reaching any handler behind it.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
			return
		}
		role := c.GetHeader("X-User-Role")
		if role == "" {
			role = RoleUser
		}
		c.Set(claimsKey, Claims{UserID: userID, Role: role})
		c.Next()
	}
}

// RequireAdmin guards staff-only boundaries.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok || claims.Role != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff access required"})
			return
		}
		c.Next()
	}
}

func GetClaims(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}
