package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := hashPassword("hunter22")
	require.NoError(t, err)
	require.Contains(t, hash, ":")
	assert.NotContains(t, hash, "hunter22")

	assert.True(t, verifyPassword("hunter22", hash))
	assert.False(t, verifyPassword("hunter23", hash))
	assert.False(t, verifyPassword("", hash))
}

func TestPasswordHashing_SaltedPerHash(t *testing.T) {
	first, err := hashPassword("hunter22")
	require.NoError(t, err)
	second, err := hashPassword("hunter22")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same password must not hash identically")
	assert.True(t, verifyPassword("hunter22", first))
	assert.True(t, verifyPassword("hunter22", second))
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	for _, encoded := range []string{"", "no-separator", "a:b:c", strings.Repeat("x", 100)} {
		assert.False(t, verifyPassword("hunter22", encoded), "encoded %q", encoded)
	}
}
