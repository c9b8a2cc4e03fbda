// Package auth mints and verifies session tokens.
//
// A session token is a signed JWT (HS256) carrying the user id. The signing
// secret is random, generated per installation and kept in local storage —
// the token proves the session record was written by this very installation
// and has not been edited by hand.
package auth

import (
	"time"

	"github.com/dmitrijs2005/coinkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims includes the registered claims plus the user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// GenerateToken creates a signed session token for userID that expires at
// expiresAt.
func GenerateToken(userID string, secretKey []byte, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies the token signature and expiry and returns the
// embedded user id. Expired or tampered tokens yield common.ErrInvalidToken.
// Expiry is checked against now, the caller's time source, so simulated
// clocks reach token verification too.
func GetUserIDFromToken(tokenString string, secretKey []byte, now func() time.Time) (string, error) {
	if now == nil {
		now = time.Now
	}
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithTimeFunc(now))
	if err != nil {
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
