// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. A token signed for one purpose is never accepted for
// another.
const (
	PurposeAccess  = "access"
	PurposeRefresh = "refresh"
)

// Claims represents the signed token claims.
//
// Access tokens carry Email; refresh tokens carry SessionID, the opaque
// rotation id that must match the marker currently on record for the
// subject before the token may be exchanged.
type Claims struct {
	Email     string `json:"email,omitempty"`
	SessionID string `json:"sid,omitempty"`
	Purpose   string `json:"purpose"`
	jwt.RegisteredClaims
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string, required bool) bool {
	if len(c.Audience) == 0 {
		// If audience is required but missing
		return !required
	}

	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}

	return false
}
