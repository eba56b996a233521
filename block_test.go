package skyb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockEagerBody(t *testing.T) {
	block := newBlock(BlockTypeComment, []byte("hi"))

	assert.True(t, block.Consumed())
	assert.Equal(t, 2, block.Len())

	body, err := block.Read()
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), body)
}

func TestBlockDeferredBody(t *testing.T) {
	calls := 0
	block := newDeferredBlock(BlockTypeTrajectory, 3, func() ([]byte, error) {
		calls++
		return []byte{1, 2, 3}, nil
	})

	assert.False(t, block.Consumed())
	assert.Equal(t, 3, block.Len())

	body, err := block.Read()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, body)
	assert.True(t, block.Consumed())

	// The loader runs at most once; later reads hit the cache.
	body, err = block.Read()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, body)
	assert.Equal(t, 1, calls)
}

func TestBlockReadFailureIsRetryable(t *testing.T) {
	fail := true
	block := newDeferredBlock(BlockTypeComment, 2, func() ([]byte, error) {
		if fail {
			return nil, errors.New("transient")
		}
		return []byte("ok"), nil
	})

	_, err := block.Read()
	require.Error(t, err)
	assert.False(t, block.Consumed())

	fail = false
	body, err := block.Read()
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), body)
}
