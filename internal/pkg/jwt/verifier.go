// internal/pkg/jwt/verifier.go
package jwt

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

type Verifier struct {
	secret   []byte
	issuer   string
	audience string
}

func NewVerifier(secret []byte, issuer, audience string) *Verifier {
	return &Verifier{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
	}
}

// Verify validates a signed token and returns the claims. It fails closed:
// any structural, cryptographic or claim mismatch rejects the token.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("jwt verifier has no secret")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Issuer != v.issuer {
		return nil, fmt.Errorf("invalid issuer: expected %s, got %s", v.issuer, claims.Issuer)
	}

	if !claims.VerifyAudience(v.audience, true) {
		return nil, fmt.Errorf("invalid audience")
	}

	return claims, nil
}

// VerifyAccessToken verifies that the token is an access token.
func (v *Verifier) VerifyAccessToken(tokenString string) (*Claims, error) {
	claims, err := v.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Purpose != PurposeAccess {
		return nil, fmt.Errorf("token is not an access token")
	}

	return claims, nil
}

// VerifyRefreshToken verifies that the token is a refresh token and carries
// a session id.
func (v *Verifier) VerifyRefreshToken(tokenString string) (*Claims, error) {
	claims, err := v.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Purpose != PurposeRefresh {
		return nil, fmt.Errorf("token is not a refresh token")
	}

	if claims.SessionID == "" {
		return nil, fmt.Errorf("refresh token has no session id")
	}

	return claims, nil
}

// SubjectID parses the numeric subject out of verified claims.
func SubjectID(claims *Claims) (int64, error) {
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token subject: %w", err)
	}
	return id, nil
}
