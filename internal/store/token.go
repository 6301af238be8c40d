package store

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"campusnest/internal/util"
)

const tokenIssuer = "campusnest"

// tokenCodec signs and validates session cookie tokens.
// The token carries no session data; its jti keys the stored payload.
type tokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func newTokenCodec(secret string, ttl time.Duration) tokenCodec {
	return tokenCodec{secret: []byte(secret), ttl: ttl}
}

func (tc tokenCodec) mint() (string, string, error) {
	if len(tc.secret) == 0 {
		return "", "", errors.New("token codec not configured")
	}
	now := time.Now().UTC()
	jti := util.NewID()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		ID:        jti,
		ExpiresAt: jwt.NewNumericDate(now.Add(tc.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tc.secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

func (tc tokenCodec) parse(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("invalid token format")
	}
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return tc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithIssuedAt(),
	)
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return "", err
	}
	if strings.TrimSpace(claims.ID) == "" {
		return "", errors.New("token jti missing")
	}
	return claims.ID, nil
}
