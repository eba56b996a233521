package skyb

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemBufferReadWrite(t *testing.T) {
	buf := newMemBuffer([]byte("skyb"))

	got := make([]byte, 4)
	n, err := buf.Read(got)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("skyb"), got)

	_, err = buf.Read(got)
	assert.Equal(t, io.EOF, err)

	n, err = buf.Write([]byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []byte("skyb\x01"), buf.Bytes())
}

func TestMemBufferOverwrite(t *testing.T) {
	buf := newMemBuffer([]byte("abcdef"))

	_, err := buf.Seek(2, io.SeekStart)
	require.NoError(t, err)
	_, err = buf.Write([]byte("XY"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abXYef"), buf.Bytes())

	// Overwrite across the end grows the buffer.
	_, err = buf.Seek(-1, io.SeekEnd)
	require.NoError(t, err)
	_, err = buf.Write([]byte("12"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abXYe12"), buf.Bytes())
}

func TestMemBufferSeek(t *testing.T) {
	buf := newMemBuffer([]byte("0123456789"))

	pos, err := buf.Seek(4, io.SeekStart)
	require.NoError(t, err)
	assert.EqualValues(t, 4, pos)

	pos, err = buf.Seek(2, io.SeekCurrent)
	require.NoError(t, err)
	assert.EqualValues(t, 6, pos)

	pos, err = buf.Seek(-3, io.SeekEnd)
	require.NoError(t, err)
	assert.EqualValues(t, 7, pos)

	_, err = buf.Seek(-1, io.SeekStart)
	assert.Error(t, err)
}

func TestMemBufferWritePastEndZeroFills(t *testing.T) {
	buf := newMemBuffer(nil)

	_, err := buf.Seek(3, io.SeekStart)
	require.NoError(t, err)
	_, err = buf.Write([]byte{0xFF})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0xFF}, buf.Bytes())
}

func TestMemBufferBytesIsACopy(t *testing.T) {
	buf := newMemBuffer([]byte{1, 2, 3})
	snapshot := buf.Bytes()

	_, err := buf.Seek(0, io.SeekStart)
	require.NoError(t, err)
	_, err = buf.Write([]byte{9})
	require.NoError(t, err)

	assert.Equal(t, []byte{1, 2, 3}, snapshot)
}
