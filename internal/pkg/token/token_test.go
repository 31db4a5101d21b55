package token

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateValidateRoundTrip(t *testing.T) {
	m := NewManager("test-secret", 60)
	userID := uuid.New()

	tok, err := m.Generate(userID, "kadri")
	require.NoError(t, err)

	claims, err := m.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "kadri", claims.Username)
	assert.Equal(t, "kadri", claims.Subject)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	tok, err := NewManager("secret-a", 60).Generate(uuid.New(), "kadri")
	require.NoError(t, err)

	_, err = NewManager("secret-b", 60).Validate(tok)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewManager("test-secret", 60)
	m.accessExpMin = -1

	tok, err := m.Generate(uuid.New(), "kadri")
	require.NoError(t, err)

	_, err = m.Validate(tok)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewManager("test-secret", 60).Validate("not-a-jwt")
	assert.Error(t, err)
}
