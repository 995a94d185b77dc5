package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	svc, err := NewService("secret", "gatherpoint-test", time.Hour)
	require.NoError(t, err)

	signed, err := svc.Sign("user-123", "ada@example.com")
	require.NoError(t, err)

	claims, err := svc.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer, err := NewService("secret-a", "gatherpoint-test", time.Hour)
	require.NoError(t, err)
	verifier, err := NewService("secret-b", "gatherpoint-test", time.Hour)
	require.NoError(t, err)

	signed, err := signer.Sign("user-123", "")
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	signer, err := NewService("secret", "someone-else", time.Hour)
	require.NoError(t, err)
	verifier, err := NewService("secret", "gatherpoint-test", time.Hour)
	require.NoError(t, err)

	signed, err := signer.Sign("user-123", "")
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc, err := NewService("secret", "gatherpoint-test", -time.Minute)
	require.NoError(t, err)

	signed, err := svc.Sign("user-123", "")
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc, err := NewService("secret", "gatherpoint-test", time.Hour)
	require.NoError(t, err)

	_, err = svc.Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService("", "gatherpoint-test", time.Hour)
	require.Error(t, err)
}
