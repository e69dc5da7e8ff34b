// Package auth issues and verifies signed session tokens and hashes user
// passwords. It holds no state: a token is valid purely by signature and
// expiry, there is no server-side session or revocation list.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the caller identity carried inside a session token and handed
// to request handlers once the token is verified.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Claims is the JWT payload: the standard registered claims plus Identity.
type Claims struct {
	jwt.RegisteredClaims
	Identity
}

// GenerateToken signs an HS256 token for id that expires after validityDuration.
func GenerateToken(id Identity, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Identity: id,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken checks signature, algorithm and expiry and returns the encoded
// identity. Expired tokens yield common.ErrTokenExpired, anything else that
// fails verification yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, common.ErrTokenExpired
		}
		return Identity{}, common.ErrInvalidToken
	}

	if !token.Valid || claims.Identity.ID == "" || claims.Subject != claims.Identity.ID {
		return Identity{}, common.ErrInvalidToken
	}

	return claims.Identity, nil
}
