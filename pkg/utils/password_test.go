package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("pw123456")
	require.NoError(t, err)
	require.NotEmpty(t, h)
	assert.NotEqual(t, "pw123456", h)

	assert.True(t, CheckPassword("pw123456", h))
	assert.False(t, CheckPassword("wrong", h))
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("same")
	require.NoError(t, err)
	h2, err := HashPassword("same")
	require.NoError(t, err)
	// 每次散列独立加盐
	assert.NotEqual(t, h1, h2)
	assert.True(t, CheckPassword("same", h1))
	assert.True(t, CheckPassword("same", h2))
}
