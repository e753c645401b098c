package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/core/ports"
)

var testSecret = []byte("integration-test-secret")

func newResolver(t *testing.T) *JWTResolver {
	t.Helper()

	resolver, err := NewJWTResolver(testSecret)
	require.NoError(t, err)
	return resolver
}

func Test_JWTResolver_ResolveRoundTrip(t *testing.T) {
	resolver := newResolver(t)
	participant := ports.Participant{ID: kernel.NewUUID(), Role: ports.RoleCourier}

	token, err := resolver.IssueToken(participant, time.Hour)
	require.NoError(t, err)

	resolved, err := resolver.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, participant.ID, resolved.ID)
	assert.Equal(t, ports.RoleCourier, resolved.Role)
}

func Test_JWTResolver_RejectsExpiredToken(t *testing.T) {
	resolver := newResolver(t)
	participant := ports.Participant{ID: kernel.NewUUID(), Role: ports.RoleCustomer}

	token, err := resolver.IssueToken(participant, -time.Minute)
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func Test_JWTResolver_RejectsWrongSecret(t *testing.T) {
	other, err := NewJWTResolver([]byte("a different secret"))
	require.NoError(t, err)

	token, err := other.IssueToken(ports.Participant{ID: kernel.NewUUID(), Role: ports.RoleCourier}, time.Hour)
	require.NoError(t, err)

	_, err = newResolver(t).Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func Test_JWTResolver_RejectsUnknownRole(t *testing.T) {
	resolver := newResolver(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   kernel.NewUUID().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func Test_JWTResolver_RejectsNonUUIDSubject(t *testing.T) {
	resolver := newResolver(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(ports.RoleCourier),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "courier-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func Test_NewJWTResolver_RequiresSecret(t *testing.T) {
	_, err := NewJWTResolver(nil)
	assert.Error(t, err)
}
