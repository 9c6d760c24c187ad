package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount(t *testing.T) {
	a, err := CreateAccount("9d7e1d52-0000-0000-0000-000000000000", "mara", "mara@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, ROLE_USER, a.Role)
	assert.NotEqual(t, "secret123", a.Password, "password must be stored hashed")
	assert.True(t, a.CheckPassword("secret123"))
	assert.False(t, a.CheckPassword("wrong"))
}

func TestCreateAccountInvalidEmail(t *testing.T) {
	_, err := CreateAccount("9d7e1d52-0000-0000-0000-000000000000", "mara", "nope", "secret123")
	assert.Error(t, err)
}

func TestSetPassword(t *testing.T) {
	a := &Account{}
	require.NoError(t, a.SetPassword("changed-pass"))
	assert.True(t, a.CheckPassword("changed-pass"))
}

func TestResetToken(t *testing.T) {
	a := &Account{}
	require.NoError(t, a.GenerateResetToken())

	assert.Len(t, a.ResetToken, 32)
	assert.True(t, a.IsResetTokenValid(a.ResetToken))
	assert.False(t, a.IsResetTokenValid("other"))

	expired := time.Now().Add(-25 * time.Hour)
	a.ResetSentAt = &expired
	assert.False(t, a.IsResetTokenValid(a.ResetToken))

	a.ClearResetToken()
	assert.Empty(t, a.ResetToken)
	assert.Nil(t, a.ResetSentAt)
}

func TestIsAdmin(t *testing.T) {
	assert.False(t, (&Account{Role: ROLE_USER}).IsAdmin())
	assert.True(t, (&Account{Role: ROLE_ADMIN}).IsAdmin())
}
