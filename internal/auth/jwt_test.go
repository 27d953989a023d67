package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	userID := uuid.New()

	token, err := svc.Generate(userID, "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestJWTRejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", 1)

	_, err := svc.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", 1)
	verifier := NewJWTService("secret-b", 1)

	token, err := issuer.Generate(uuid.New(), "user@example.com")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", -1)

	token, err := svc.Generate(uuid.New(), "user@example.com")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
