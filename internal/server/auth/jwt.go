// Package auth implements the credential collaborator: signed bearer tokens
// and password digests.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/flashdeck/internal/common"
)

// TokenIssuer issues and verifies opaque bearer tokens bound to a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

// Claims is the token payload: registered claims plus the user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// JWTIssuer signs HS256 tokens that expire after validity.
type JWTIssuer struct {
	secretKey []byte
	validity  time.Duration
	now       func() time.Time
}

func NewJWTIssuer(secretKey string, validity time.Duration) *JWTIssuer {
	return &JWTIssuer{secretKey: []byte(secretKey), validity: validity, now: time.Now}
}

func (j *JWTIssuer) Issue(userID string) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.validity)),
		},
		UserID: userID,
	})

	return token.SignedString(j.secretKey)
}

// Verify returns the user id carried by token. Expired tokens yield
// common.ErrTokenExpired, anything else unusable yields common.ErrInvalidToken.
func (j *JWTIssuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
