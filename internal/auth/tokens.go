package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken is returned for any token that must not be trusted:
// bad signature, unexpected algorithm, malformed payload or expiry.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims used by the system.
// It embeds standard JWT claims and adds the user identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// Tokens issues and verifies stateless session tokens.
type Tokens struct {
	// signingKey is the HMAC key used to sign and verify JWTs.
	signingKey []byte

	// ttl is how long an issued token stays valid.
	ttl time.Duration

	now func() time.Time
}

// NewTokens creates a token service with the given signing key and lifetime.
func NewTokens(signingKey []byte, ttl time.Duration) *Tokens {
	return &Tokens{
		signingKey: signingKey,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Issue returns a signed token for userID that expires after the configured TTL.
func (t *Tokens) Issue(userID int64) (string, error) {
	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		UserID: userID,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.signingKey)
	if err != nil {
		return "", fmt.Errorf("in internal/auth/tokens.go/Issue(): error while `SignedString()` calling: %w", err)
	}

	return tokenString, nil
}

// Verify checks the signature and expiry of tokenString and returns the user
// identifier it was issued for.
func (t *Tokens) Verify(tokenString string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return t.signingKey, nil
		},
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ExpiresAt == nil || claims.UserID <= 0 {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}
