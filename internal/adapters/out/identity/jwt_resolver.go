// Package identity resolves bearer credentials into coordination channel
// participants. Tokens are HS256 JWTs whose subject is the participant ID
// and whose "role" claim names the participant kind.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/core/ports"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or
// claim validation.
var ErrInvalidToken = errors.New("token is invalid")

// claims is the token payload. Subject carries the participant ID.
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTResolver implements ports.IdentityResolver on HS256 JWTs.
type JWTResolver struct {
	secret []byte
}

// NewJWTResolver creates a resolver verifying against the given secret.
func NewJWTResolver(secret []byte) (*JWTResolver, error) {
	if len(secret) == 0 {
		return nil, errors.New("secret is required")
	}
	return &JWTResolver{secret: secret}, nil
}

// Resolve validates the token and returns the participant it identifies.
func (r *JWTResolver) Resolve(_ context.Context, token string) (ports.Participant, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil {
		return ports.Participant{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	payload, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return ports.Participant{}, ErrInvalidToken
	}

	id, err := kernel.UUIDFromString(payload.Subject)
	if err != nil {
		return ports.Participant{}, fmt.Errorf("%w: subject is not a participant id", ErrInvalidToken)
	}

	role := ports.Role(payload.Role)
	switch role {
	case ports.RoleCourier, ports.RoleCustomer, ports.RoleDispatcher:
	default:
		return ports.Participant{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, payload.Role)
	}

	return ports.Participant{ID: id, Role: role}, nil
}

// IssueToken signs a token for the participant, valid for the given
// lifetime. Used by dev tooling and tests; production tokens come from the
// identity service that shares the secret.
func (r *JWTResolver) IssueToken(participant ports.Participant, lifetime time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(participant.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   participant.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	})
	return token.SignedString(r.secret)
}
