package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// tokenService issues and verifies stateless HS256 tokens. The secret, TTL
// and clock are injected at construction so tests can control expiry.
type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newTokenService(secret string, ttl time.Duration, now func() time.Time) *tokenService {
	if now == nil {
		now = time.Now
	}
	return &tokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}
}

func (ts *tokenService) issue(userID int) (string, error) {
	issuedAt := ts.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ts.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ts.secret)
}

// verify returns the user ID a token was issued for. Expiry is checked
// against the injected clock; errExpiredToken and errInvalidToken are
// distinct so callers can tell "log in again" from a garbage token.
func (ts *tokenService) verify(tokenStr string) (int, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}
	if claims.ExpiresAt == nil {
		return 0, errInvalidToken
	}
	if ts.now().After(claims.ExpiresAt.Time) {
		return 0, errExpiredToken
	}
	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, errInvalidToken
	}
	return userID, nil
}
