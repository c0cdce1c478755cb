package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndValidateToken(t *testing.T) {
	token, err := MintToken("bridge-1", "secret", 5)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "bridge-1", claims.GatewayID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := MintToken("bridge-1", "secret", 5)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := MintToken("bridge-1", "secret", -1)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", "secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
