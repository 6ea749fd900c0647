package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tyagiab3/user-service/internal/auth"
)

func TestHashAndMatch(t *testing.T) {
	hash, err := auth.HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, auth.MatchPassword(hash, "secret1"))
	assert.False(t, auth.MatchPassword(hash, "secret2"))
}

func TestHashIsSalted(t *testing.T) {
	first, err := auth.HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := auth.HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)

	// Distinct salt per call; equality only holds through MatchPassword.
	assert.NotEqual(t, first, second)
	assert.True(t, auth.MatchPassword(first, "secret1"))
	assert.True(t, auth.MatchPassword(second, "secret1"))
}

func TestMatchMalformedDigest(t *testing.T) {
	assert.False(t, auth.MatchPassword("", "secret1"))
	assert.False(t, auth.MatchPassword("not-a-bcrypt-digest", "secret1"))
}
