// Package auth turns bearer tokens issued by the auth service into a
// kernel.Actor. Tokens are HS256 JWTs carrying the user id in "sub" and the
// platform role in "role".
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated covers missing, malformed, expired and badly signed tokens.
var ErrUnauthenticated = errors.New("unauthenticated")

// Claims is the token payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(30*time.Second),
		),
	}
}

// Verify validates tokenString and returns the actor it names.
func (v *Verifier) Verify(tokenString string) (kernel.Actor, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return kernel.Actor{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	userID, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return kernel.Actor{}, fmt.Errorf("%w: subject: %w", ErrUnauthenticated, err)
	}

	actor, err := kernel.NewActor(userID, kernel.Role(claims.Role))
	if err != nil {
		return kernel.Actor{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return actor, nil
}

// VerifyHeader accepts an Authorization header value of the form "Bearer <token>".
func (v *Verifier) VerifyHeader(header string) (kernel.Actor, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return kernel.Actor{}, fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}
	return v.Verify(strings.TrimSpace(token))
}

// Issue signs a token for actor. The auth service owns issuance in
// production; this is used by tests and local tooling.
func (v *Verifier) Issue(actor kernel.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(v.secret)
}
