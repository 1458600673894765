package auth

import (
	"strconv"
	"time"

	"attendance-service/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const tokenIssuer = "attendance-service"

type sessionClaims struct {
	Role  Role   `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the lifetime of issued tokens.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue returns a signed token for id and its expiry.
func (t *TokenIssuer) Issue(id Identity) (string, time.Time, error) {
	if id.ID == 0 || !id.Role.IsValid() {
		return "", time.Time{}, errors.New("cannot issue a token for an empty identity")
	}

	now := t.now()
	expires := now.Add(t.ttl)
	claims := sessionClaims{
		Role:  id.Role,
		Name:  id.Name,
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(id.ID), 10),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign session token")
	}
	return signed, expires, nil
}

// Parse verifies tokenString and returns the identity it carries.
func (t *TokenIssuer) Parse(tokenString string) (Identity, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return Identity{}, apperr.ErrUnauthenticated
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 || !claims.Role.IsValid() {
		return Identity{}, apperr.ErrUnauthenticated
	}

	return Identity{
		ID:    uint(id),
		Role:  claims.Role,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}
