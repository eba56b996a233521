package skyb

import (
	"bytes"
	"errors"
	"io"
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTrajectory is a minimal Trajectory for exercising AddTrajectory.
type stubTrajectory struct {
	factor   int
	segments []Segment
}

func (t stubTrajectory) ProposeScalingFactor() int {
	return t.factor
}

func (t stubTrajectory) IterSegments(maxLength int, absolute bool) iter.Seq[Segment] {
	return slices.Values(t.segments)
}

// readOnlyStream hides the Seek method of its underlying reader so a
// File treats it as non-seekable.
type readOnlyStream struct {
	r io.Reader
}

func (s *readOnlyStream) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *readOnlyStream) Write(p []byte) (int, error) {
	return 0, errors.New("read-only stream")
}

func TestNew(t *testing.T) {
	t.Run("version 1", func(t *testing.T) {
		f, err := New(1)
		require.NoError(t, err)
		contents, err := f.Contents()
		require.NoError(t, err)
		assert.Equal(t, []byte("skyb\x01"), contents)
	})

	t.Run("version 2", func(t *testing.T) {
		f, err := New(2)
		require.NoError(t, err)
		contents, err := f.Contents()
		require.NoError(t, err)
		assert.Equal(t, []byte("skyb\x02\x01\x00\x00\x00\x00"), contents)
	})

	t.Run("unsupported versions", func(t *testing.T) {
		for _, version := range []int{0, 3, 255} {
			_, err := New(version)
			assert.ErrorIs(t, err, ErrUnsupportedVersion)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	f, err := New(2)
	require.NoError(t, err)

	require.NoError(t, f.AddComment("hello"))
	require.NoError(t, f.AddEncodedLightProgram([]byte{1, 2, 3}))
	require.NoError(t, f.AddEncodedEventList([]byte{4, 5}))
	require.NoError(t, f.AddEncodedRTHPlan([]byte{6}))
	require.NoError(t, f.AddEncodedYawSetpoints([]byte{7, 8, 9, 10}))
	require.NoError(t, f.AddBlock(BlockType(42), []byte("future")))
	require.NoError(t, f.Finalize())

	contents, err := f.Contents()
	require.NoError(t, err)

	reopened := FromBytes(contents)
	blocks, err := reopened.ReadAllBlocks()
	require.NoError(t, err)
	require.Len(t, blocks, 6)

	want := []struct {
		typ  BlockType
		body []byte
	}{
		{BlockTypeComment, []byte("hello")},
		{BlockTypeLightProgram, []byte{1, 2, 3}},
		{BlockTypeEventList, []byte{4, 5}},
		{BlockTypeRTHPlan, []byte{6}},
		{BlockTypeYawControl, []byte{7, 8, 9, 10}},
		{BlockType(42), []byte("future")},
	}
	for i, w := range want {
		assert.Equal(t, w.typ, blocks[i].Type())
		body, err := blocks[i].Read()
		require.NoError(t, err)
		assert.Equal(t, w.body, body)
	}

	version, err := reopened.Version()
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	features, err := reopened.Features()
	require.NoError(t, err)
	assert.True(t, features.Has(FeatureCRC32))
}

func TestAddBlockSizeLimit(t *testing.T) {
	f, err := New(1)
	require.NoError(t, err)

	assert.NoError(t, f.AddBlock(BlockTypeComment, make([]byte, 65535)))

	err = f.AddBlock(BlockTypeComment, make([]byte, 65536))
	assert.ErrorIs(t, err, ErrBlockTooLarge)
}

func TestBadMagic(t *testing.T) {
	f := FromBytes([]byte("nope\x01"))
	_, err := f.ReadAllBlocks()
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestUnsupportedVersionHeader(t *testing.T) {
	f := FromBytes([]byte("skyb\x03"))
	_, err := f.ReadAllBlocks()
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestTruncatedBlock(t *testing.T) {
	f, err := New(1)
	require.NoError(t, err)
	require.NoError(t, f.AddComment("hello"))
	contents, err := f.Contents()
	require.NoError(t, err)

	// Cut the body short; the header promises five bytes.
	truncated := FromBytes(contents[:len(contents)-2])
	blocks, err := truncated.ReadAllBlocks()
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	_, err = blocks[0].Read()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestAccessorsBeforeHeader(t *testing.T) {
	f := FromBytes([]byte("skyb\x01"))

	_, err := f.Version()
	assert.ErrorIs(t, err, ErrHeaderNotRead)

	_, err = f.Features()
	assert.ErrorIs(t, err, ErrHeaderNotRead)
}

func TestBufferAccessors(t *testing.T) {
	t.Run("memory backed", func(t *testing.T) {
		f, err := New(1)
		require.NoError(t, err)

		buf, err := f.Buffer()
		require.NoError(t, err)
		assert.NotNil(t, buf)

		contents, err := f.Contents()
		require.NoError(t, err)
		assert.Equal(t, []byte("skyb\x01"), contents)
	})

	t.Run("stream backed", func(t *testing.T) {
		f := NewFromStream(&readOnlyStream{r: bytes.NewReader(nil)})

		_, err := f.Buffer()
		assert.ErrorIs(t, err, ErrNotMemoryBacked)

		_, err = f.Contents()
		assert.ErrorIs(t, err, ErrNotMemoryBacked)
	})
}

func TestLazyBlockBodies(t *testing.T) {
	f, err := New(1)
	require.NoError(t, err)
	require.NoError(t, f.AddComment("first"))
	require.NoError(t, f.AddComment("second"))
	require.NoError(t, f.AddComment("third"))

	contents, err := f.Contents()
	require.NoError(t, err)
	reopened := FromBytes(contents)

	// Consume one body mid-iteration; the cursor must still land on the
	// next header afterward.
	var collected []*Block
	for block, err := range reopened.Blocks() {
		require.NoError(t, err)
		if len(collected) == 1 {
			body, err := block.Read()
			require.NoError(t, err)
			assert.Equal(t, []byte("second"), body)
		}
		collected = append(collected, block)
	}
	require.Len(t, collected, 3)

	// On a seekable stream deferred reads are offset-bound, so bodies
	// skipped during iteration are still readable afterward.
	assert.False(t, collected[0].Consumed())
	body, err := collected[0].Read()
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), body)

	body, err = collected[2].Read()
	require.NoError(t, err)
	assert.Equal(t, []byte("third"), body)
}

func TestNonSeekableIteration(t *testing.T) {
	f, err := New(1)
	require.NoError(t, err)
	require.NoError(t, f.AddComment("alpha"))
	require.NoError(t, f.AddEncodedLightProgram([]byte{9, 9}))
	require.NoError(t, f.AddComment("omega"))
	contents, err := f.Contents()
	require.NoError(t, err)

	// A non-seekable stream cannot parse the header, so hand it a stream
	// positioned at the first block and disable rewind and validation.
	stream := &readOnlyStream{r: bytes.NewReader(contents[5:])}
	reopened := NewFromStream(stream)

	var collected []*Block
	for block, err := range reopened.Blocks(WithRewind(false), WithValidation(false)) {
		require.NoError(t, err)
		collected = append(collected, block)
	}
	require.Len(t, collected, 3)

	// Bodies were never requested during iteration, yet each block must
	// have been materialized to advance past its body.
	for _, block := range collected {
		assert.True(t, block.Consumed())
	}

	body, err := collected[0].Read()
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), body)
	body, err = collected[2].Read()
	require.NoError(t, err)
	assert.Equal(t, []byte("omega"), body)
}

func TestNonSeekableDefaultsRequireHeader(t *testing.T) {
	stream := &readOnlyStream{r: bytes.NewReader([]byte{})}
	f := NewFromStream(stream)

	// The default validation needs the feature flags, which a
	// non-seekable stream can never parse.
	_, err := f.ReadAllBlocks()
	assert.ErrorIs(t, err, ErrHeaderNotRead)
}

func TestFinalizeRequiresSeekableStream(t *testing.T) {
	f := NewFromStream(&readOnlyStream{r: bytes.NewReader(nil)})
	assert.ErrorIs(t, f.Finalize(), ErrNotSeekable)
}

func TestFinalizeRestoresCursor(t *testing.T) {
	f, err := New(2)
	require.NoError(t, err)
	require.NoError(t, f.AddComment("hi"))

	buf, err := f.Buffer()
	require.NoError(t, err)
	pos, err := buf.Seek(3, io.SeekStart)
	require.NoError(t, err)
	require.EqualValues(t, 3, pos)

	require.NoError(t, f.Finalize())

	pos, err = buf.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.EqualValues(t, 3, pos)
}

func TestAddTrajectoryScalingFactorLimit(t *testing.T) {
	f, err := New(1)
	require.NoError(t, err)

	err = f.AddTrajectory(stubTrajectory{factor: 128})
	assert.ErrorIs(t, err, ErrScaleTooLarge)
}

func TestEndToEnd(t *testing.T) {
	f, err := New(2)
	require.NoError(t, err)

	require.NoError(t, f.AddComment("hello"))
	require.NoError(t, f.AddTrajectory(stubTrajectory{
		factor: 1,
		segments: []Segment{
			{Points: []Point{{}, {}}, Duration: 2.0},
		},
	}))
	require.NoError(t, f.Finalize())

	contents, err := f.Contents()
	require.NoError(t, err)

	want := append([]byte("skyb\x02\x01"), 0xCD, 0x26, 0x5F, 0xE0)
	want = append(want, 0x03, 0x05, 0x00)
	want = append(want, "hello"...)
	want = append(want,
		0x01, 0x0C, 0x00, // trajectory block header
		0x01,                                           // scaling factor
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // start point
		0x00, 0xD0, 0x07, // constant segment, 2000 msec
	)
	assert.Equal(t, want, contents)

	reopened := FromBytes(contents)
	blocks, err := reopened.ReadAllBlocks()
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, BlockTypeComment, blocks[0].Type())
	assert.Equal(t, BlockTypeTrajectory, blocks[1].Type())

	assert.NoError(t, reopened.ValidateChecksum())
}

func TestBlockTypeString(t *testing.T) {
	assert.Equal(t, "trajectory", BlockTypeTrajectory.String())
	assert.Equal(t, "comment", BlockTypeComment.String())
	assert.Equal(t, "unknown(42)", BlockType(42).String())
}
