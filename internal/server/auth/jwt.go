// Package auth extracts the authenticated principal from the session token
// issued by the authentication collaborator. Token issuance itself lives
// outside this service; we only parse and verify.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lighthouse-crew/profilesync/internal/common"
	"github.com/lighthouse-crew/profilesync/internal/server/models"
)

// Claims carries the registered claims plus the two custom fields the
// identity resolver needs: the external auth identifier and the optional
// contact address.
type Claims struct {
	jwt.RegisteredClaims
	AuthID string `json:"auth_id"`
	Email  string `json:"email,omitempty"`
}

// GenerateToken mints an HS256 session token. Only used by tests and local
// tooling; production tokens come from the auth collaborator.
func GenerateToken(principal models.Principal, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		AuthID: principal.AuthID,
		Email:  principal.Email,
	})

	return token.SignedString(secretKey)
}

// PrincipalFromToken verifies the token and returns the principal it names.
// Anything wrong with the token maps to common.ErrInvalidToken.
func PrincipalFromToken(tokenString string, secretKey []byte) (models.Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return models.Principal{}, common.ErrInvalidToken
	}

	if !token.Valid || claims.AuthID == "" {
		return models.Principal{}, common.ErrInvalidToken
	}

	return models.Principal{AuthID: claims.AuthID, Email: claims.Email}, nil
}
