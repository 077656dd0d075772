package service

import (
	"testing"
	"time"

	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_CreateAnonymous(t *testing.T) {
	t.Run("issues a session bound to the family", func(t *testing.T) {
		svc := NewSessionService(true)

		session, err := svc.CreateAnonymous("brito")
		require.NoError(t, err)
		assert.Equal(t, "brito", session.FamilyID)
		assert.NotZero(t, session.Token)

		other, err := svc.CreateAnonymous("brito")
		require.NoError(t, err)
		assert.NotEqual(t, session.Token, other.Token)
	})

	t.Run("disabled provider", func(t *testing.T) {
		svc := NewSessionService(false)

		_, err := svc.CreateAnonymous("brito")
		assert.ErrorIs(t, err, domain.ErrAuthDisabled)
	})

	t.Run("blank family id", func(t *testing.T) {
		svc := NewSessionService(true)

		_, err := svc.CreateAnonymous("   ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSessionService_Validate(t *testing.T) {
	svc := NewSessionService(true)
	session, err := svc.CreateAnonymous("brito")
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		got, err := svc.Validate(session.Token.String())
		require.NoError(t, err)
		assert.Equal(t, "brito", got.FamilyID)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := svc.Validate("not-a-uuid")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.Validate("b47ac10b-58cc-4372-a567-0e02b2c3d479")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("expired session", func(t *testing.T) {
		expired, err := svc.CreateAnonymous("brito")
		require.NoError(t, err)
		expired.CreatedAt = time.Now().Add(-SessionTTL - time.Minute)

		_, err = svc.Validate(expired.Token.String())
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		// expired sessions are evicted, not just rejected
		_, err = svc.Validate(expired.Token.String())
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
