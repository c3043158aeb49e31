package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"team-journal/pkg/utils"
)

// Tokens signs and verifies HS256 bearer tokens whose subject is a profile id.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  utils.Clock
}

// NewTokens creates a token signer. A nil clock reads the wall clock.
func NewTokens(secret, issuer string, ttl time.Duration, clock utils.Clock) *Tokens {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &Tokens{secret: []byte(secret), issuer: issuer, ttl: ttl, clock: clock}
}

// Mint issues a token for profileID and returns it with its expiry.
func (t *Tokens) Mint(profileID string) (string, time.Time, error) {
	now := t.clock.Now()
	expires := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   profileID,
		Issuer:    t.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expires, nil
}

// Verify validates a token and returns its subject.
func (t *Tokens) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.clock.Now),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}
