// Package auth issues and verifies the HS256 access tokens of the document
// server.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the registered claims plus the calling user.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// GenerateToken signs a token for userID. A validity of zero issues a token
// without expiry.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Subject:  userID,
		},
		UserID: userID,
	}
	if validityDuration != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(validityDuration))
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
