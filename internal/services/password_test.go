package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct-horse", hash)
	assert.NoError(t, VerifyPassword(hash, "correct-horse"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrong-horse"), ErrInvalidCredentials)
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := HashPassword("abc")

	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestGeneratePassword(t *testing.T) {
	p1, err := GeneratePassword(16)
	require.NoError(t, err)
	p2, err := GeneratePassword(16)
	require.NoError(t, err)

	assert.Len(t, p1, 16)
	assert.NotEqual(t, p1, p2)

	short, err := GeneratePassword(2)
	require.NoError(t, err)
	assert.Len(t, short, MinPasswordLength)
}
