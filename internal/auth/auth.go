// Package auth resolves caller identity from request credentials. The core
// components only ever see the Authenticator interface; token format and
// validation are implementation details behind it.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	// ErrMissingCredentials is returned when the request carries no token at all.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidToken is returned for expired, malformed or otherwise
	// unverifiable tokens. Callers treat every failure uniformly as
	// unauthenticated.
	ErrInvalidToken = errors.New("invalid token")
)

// Authenticator resolves a caller identity from an opaque bearer token.
type Authenticator interface {
	// Authenticate returns the user id encoded in the token, or an error
	// if the token is missing, expired or invalid.
	Authenticate(ctx context.Context, token string) (string, error)
}

// UserClaims is the JWT claims structure carried by session tokens.
type UserClaims struct {
	UserID string `json:"userID"`
	jwt.RegisteredClaims
}

// JWTAuthenticator validates HMAC-signed JWT session tokens.
type JWTAuthenticator struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewJWTAuthenticator(secret string, tokenTTL time.Duration) *JWTAuthenticator {
	return &JWTAuthenticator{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

func (a *JWTAuthenticator) Authenticate(_ context.Context, tokenString string) (string, error) {
	const op = "auth.JWTAuthenticator.Authenticate"

	if tokenString == "" {
		return "", fmt.Errorf("%s: %w", op, ErrMissingCredentials)
	}

	claims := &UserClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.UserID == "" {
		return "", fmt.Errorf("%s: token has no user id: %w", op, ErrInvalidToken)
	}

	return claims.UserID, nil
}

// IssueToken signs a new session token for the given user id. Used by tests
// and operational tooling; the service itself never issues tokens.
func (a *JWTAuthenticator) IssueToken(userID string) (string, error) {
	const op = "auth.JWTAuthenticator.IssueToken"

	claims := UserClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("%s: failed to sign token: %w", op, err)
	}

	return signed, nil
}
