package setup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitParameters(t *testing.T) {
	params, err := InitParameters()
	require.NoError(t, err)
	assert.Equal(t, 13, params.LogN())
	assert.Equal(t, 1, params.MaxLevel())
	assert.Equal(t, 1<<12, params.MaxSlots())
}
