package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, Verify("secret1", hash))
	assert.False(t, Verify("wrong", hash))
	assert.False(t, Verify("secret1", "not-a-hash"))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("secret1")
	require.NoError(t, err)
	second, err := Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
