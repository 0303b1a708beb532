package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusdhi-de/clinic-api/internal/model"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	id := uuid.New()

	token, err := svc.GenerateToken(model.PrincipalKindPatient, id)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.PrincipalID)
	assert.Equal(t, model.PrincipalKindPatient, claims.Kind)
	assert.NotEmpty(t, claims.TokenID)
}

func TestTokenCarriesKind(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)

	patientToken, err := svc.GenerateToken(model.PrincipalKindPatient, uuid.New())
	require.NoError(t, err)
	adminToken, err := svc.GenerateToken(model.PrincipalKindAdmin, uuid.New())
	require.NoError(t, err)

	pc, err := svc.ValidateToken(patientToken)
	require.NoError(t, err)
	ac, err := svc.ValidateToken(adminToken)
	require.NoError(t, err)

	assert.Equal(t, model.PrincipalKindPatient, pc.Kind)
	assert.Equal(t, model.PrincipalKindAdmin, ac.Kind)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", time.Hour).GenerateToken(model.PrincipalKindPatient, uuid.New())
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := NewJWTService("secret", -time.Minute).GenerateToken(model.PrincipalKindAdmin, uuid.New())
	require.NoError(t, err)

	_, err = NewJWTService("secret", -time.Minute).ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.ValidateToken(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	id := uuid.New()

	t1, err := svc.GenerateToken(model.PrincipalKindPatient, id)
	require.NoError(t, err)
	t2, err := svc.GenerateToken(model.PrincipalKindPatient, id)
	require.NoError(t, err)

	c1, err := svc.ValidateToken(t1)
	require.NoError(t, err)
	c2, err := svc.ValidateToken(t2)
	require.NoError(t, err)

	assert.NotEqual(t, c1.TokenID, c2.TokenID, "each session gets its own token id")
}
