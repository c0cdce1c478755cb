package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 6.67, round2(6.6666))
	assert.Equal(t, 6.66, round2(6.664))
	assert.Equal(t, 0.0, round2(0))
	assert.Equal(t, 100.0, round2(100))
}
