// internal/pkg/jwt/generator.go
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Generator struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewGenerator(secret []byte, issuer, audience string, accessTTL, refreshTTL time.Duration) *Generator {
	return &Generator{
		secret:     secret,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the configured access-token lifetime.
func (g *Generator) AccessTTL() time.Duration { return g.accessTTL }

// RefreshTTL returns the configured refresh-token lifetime.
func (g *Generator) RefreshTTL() time.Duration { return g.refreshTTL }

// generate signs a token for the given subject with the supplied claims.
func (g *Generator) generate(userID int64, purpose string, ttl time.Duration, email, sessionID string) (string, error) {
	if len(g.secret) == 0 {
		return "", fmt.Errorf("jwt generator has no signing secret")
	}

	now := time.Now()
	claims := &Claims{
		Email:     email,
		SessionID: sessionID,
		Purpose:   purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   fmt.Sprintf("%d", userID),
			Audience:  []string{g.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        ulid.Make().String(),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(g.secret)
}

// GenerateAccessToken signs a short-lived access token carrying the
// subject's email.
func (g *Generator) GenerateAccessToken(userID int64, email string) (string, error) {
	return g.generate(userID, PurposeAccess, g.accessTTL, email, "")
}

// GenerateRefreshToken signs a long-lived refresh token bound to the given
// session id.
func (g *Generator) GenerateRefreshToken(userID int64, sessionID string) (string, error) {
	return g.generate(userID, PurposeRefresh, g.refreshTTL, "", sessionID)
}
