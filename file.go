package skyb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
)

const (
	// magic is the four-byte marker every show file starts with.
	magic = "skyb"

	// maxBlockSize is the largest body that fits the 16-bit length field.
	maxBlockSize = 65535

	// maxSegmentLength is the longest segment, in seconds, written into a
	// trajectory block; longer curves are split by the trajectory model.
	maxSegmentLength = 65

	blockHeaderSize = 3
)

// Features is the feature flag bitset carried by version 2 files.
// Version 1 files always have no features.
type Features uint8

// FeatureCRC32 marks files that carry a whole-file CRC32 field in the
// header.
const FeatureCRC32 Features = 1 << 0

// Has reports whether all bits of flag are set.
func (f Features) Has(flag Features) bool {
	return f&flag == flag
}

// headerTemplate returns the initial contents of an empty show file of
// the given version. Version 2 files are created with the CRC32 feature
// enabled and a zeroed checksum field.
func headerTemplate(version int) ([]byte, error) {
	switch version {
	case 1:
		return []byte(magic + "\x01"), nil
	case 2:
		return []byte(magic + "\x02\x01\x00\x00\x00\x00"), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
}

// File is a Skybrush binary show file backed by a stream.
//
// A File owns its backing stream exclusively and keeps a single logical
// cursor; all operations are sequential and it must be used from one
// goroutine at a time. Operations that move the cursor internally
// (checksum computation, header parsing during [File.Finalize]) restore
// it before returning; [File.Blocks] intentionally advances it.
//
// An instance abandoned in the middle of an operation is left with an
// indeterminate cursor and parse state and must be discarded.
type File struct {
	rw     io.ReadWriter
	seeker io.Seeker  // nil when the stream does not support seeking
	buf    *memBuffer // non-nil when backed by memory

	version           int // 0 until the header has been parsed
	features          Features
	startOfCRC        int64 // -1 when absent or not yet known
	startOfFirstBlock int64 // -1 until the header has been parsed
	checksumValidated bool
}

// New creates an empty in-memory show file with the given format
// version. Only versions 1 and 2 are supported.
func New(version int) (*File, error) {
	data, err := headerTemplate(version)
	if err != nil {
		return nil, err
	}
	return FromBytes(data), nil
}

// NewInMemory is an alias of [New] kept for parity with the other
// Skybrush implementations.
func NewInMemory(version int) (*File, error) {
	return New(version)
}

// FromBytes wraps existing show file contents in an in-memory File. The
// data is copied; the file does not alias the caller's slice.
func FromBytes(data []byte) *File {
	buf := newMemBuffer(data)
	f := NewFromStream(buf)
	f.buf = buf
	return f
}

// NewFromStream wraps an existing byte stream in a File. Seekability is
// detected by asserting the stream against [io.Seeker]; non-seekable
// streams support forward-only iteration and appends at the current
// position only.
func NewFromStream(rw io.ReadWriter) *File {
	f := &File{
		rw:                rw,
		startOfCRC:        -1,
		startOfFirstBlock: -1,
	}
	if s, ok := rw.(io.Seeker); ok {
		f.seeker = s
	}
	return f
}

func (f *File) seekable() bool {
	return f.seeker != nil
}

func (f *File) seek(offset int64, whence int) (int64, error) {
	if f.seeker == nil {
		return 0, ErrNotSeekable
	}
	return f.seeker.Seek(offset, whence)
}

func (f *File) tell() (int64, error) {
	return f.seek(0, io.SeekCurrent)
}

// readExactly fills p from the stream, converting any short read into
// an error.
func (f *File) readExactly(p []byte) error {
	if _, err := io.ReadFull(f.rw, p); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("skyb: unexpected end of block: %w", err)
	}
	return nil
}

// readExactlyAt seeks to offset and then fills p.
func (f *File) readExactlyAt(p []byte, offset int64) error {
	if _, err := f.seek(offset, io.SeekStart); err != nil {
		return err
	}
	return f.readExactly(p)
}

// rewind positions the cursor at the start of the first block. The
// first call parses and validates the header and caches the layout
// offsets; later calls only seek to the cached position.
func (f *File) rewind() error {
	if f.startOfFirstBlock >= 0 {
		_, err := f.seek(f.startOfFirstBlock, io.SeekStart)
		return err
	}

	if _, err := f.seek(0, io.SeekStart); err != nil {
		return err
	}

	var header [5]byte
	if err := f.readExactly(header[:]); err != nil {
		return err
	}
	if string(header[:4]) != magic {
		return fmt.Errorf("%w: expected %q, got %q", ErrBadMagic, magic, header[:4])
	}

	f.version = int(header[4])
	switch f.version {
	case 1:
		f.features = 0
	case 2:
		var flags [1]byte
		if err := f.readExactly(flags[:]); err != nil {
			return err
		}
		f.features = Features(flags[0])
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.version)
	}

	if f.features.Has(FeatureCRC32) {
		pos, err := f.tell()
		if err != nil {
			return err
		}
		f.startOfCRC = pos
		if _, err := f.seek(crcFieldSize, io.SeekCurrent); err != nil {
			return err
		}
	} else {
		f.startOfCRC = -1
	}

	pos, err := f.tell()
	if err != nil {
		return err
	}
	f.startOfFirstBlock = pos
	return nil
}

// AddBlock appends a block with the given type and body to the end of
// the file. On a seekable stream the cursor is moved to the end first,
// so appends are positional regardless of prior reads; on a
// non-seekable stream the caller is responsible for the cursor already
// being at the end.
func (f *File) AddBlock(typ BlockType, body []byte) error {
	if f.seekable() {
		if _, err := f.seek(0, io.SeekEnd); err != nil {
			return err
		}
	}

	if len(body) > maxBlockSize {
		return fmt.Errorf(
			"%w: maximum allowed length is %d bytes, got %d",
			ErrBlockTooLarge, maxBlockSize, len(body),
		)
	}

	var header [blockHeaderSize]byte
	header[0] = byte(typ)
	binary.LittleEndian.PutUint16(header[1:], uint16(len(body)))
	if _, err := f.rw.Write(header[:]); err != nil {
		return fmt.Errorf("skyb: write block header: %w", err)
	}
	if _, err := f.rw.Write(body); err != nil {
		return fmt.Errorf("skyb: write block body: %w", err)
	}
	return nil
}

// AddComment appends a comment block with the given text, encoded as
// UTF-8. Callers holding pre-encoded bytes can use [File.AddBlock] with
// [BlockTypeComment] directly.
func (f *File) AddComment(comment string) error {
	return f.AddBlock(BlockTypeComment, []byte(comment))
}

// AddEncodedLightProgram appends a light program block. The data must
// already be encoded in the Skybrush light program format.
func (f *File) AddEncodedLightProgram(data []byte) error {
	return f.AddBlock(BlockTypeLightProgram, data)
}

// AddEncodedEventList appends an event list block, such as a pyro
// program, already encoded in Skybrush format.
func (f *File) AddEncodedEventList(data []byte) error {
	return f.AddBlock(BlockTypeEventList, data)
}

// AddEncodedRTHPlan appends a return-to-home plan block, already
// encoded in Skybrush format.
func (f *File) AddEncodedRTHPlan(data []byte) error {
	return f.AddBlock(BlockTypeRTHPlan, data)
}

// AddEncodedYawSetpoints appends a yaw control block, already encoded
// in Skybrush format.
func (f *File) AddEncodedYawSetpoints(data []byte) error {
	return f.AddBlock(BlockTypeYawControl, data)
}

// AddTrajectory encodes the given trajectory and appends it as a
// trajectory block. The block body is one scaling factor byte (top bit
// reserved as zero) followed by the encoded point and segment stream.
func (f *File) AddTrajectory(trajectory Trajectory) error {
	factor := trajectory.ProposeScalingFactor()
	if factor >= 128 {
		return fmt.Errorf("%w for a binary show file: scaling factor %d", ErrScaleTooLarge, factor)
	}

	body := []byte{byte(factor)}
	encoder := NewSegmentEncoder(factor)

	// Show files need absolute timestamps: a nonzero takeoff time is
	// covered by a leading constant segment supplied by the trajectory.
	segments := trajectory.IterSegments(maxSegmentLength, true)
	for chunk, err := range encoder.IterEncodeMultipleSegments(segments) {
		if err != nil {
			return err
		}
		body = append(body, chunk...)
	}

	return f.AddBlock(BlockTypeTrajectory, body)
}

// Blocks returns a lazy, forward-only iterator over the blocks of the
// file.
//
// By default the stream is rewound before iteration if and only if it
// is seekable, and the checksum is validated if and only if it has not
// been validated during this instance's lifetime; [WithRewind] and
// [WithValidation] override either default.
//
// On a seekable stream each yielded [Block] defers its body read, and
// the cursor is moved past the body before the next header regardless
// of whether the body was consumed. On a non-seekable stream a block
// left unconsumed by the caller is materialized anyway before the next
// header is read, because the stream can only advance by reading.
//
// Iteration terminates successfully on a clean end of stream; any other
// failure is yielded as the final error.
func (f *File) Blocks(opts ...BlocksOption) iter.Seq2[*Block, error] {
	var cfg blocksConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(yield func(*Block, error) bool) {
		seekable := f.seekable()

		rewind := seekable
		if cfg.rewind != nil {
			rewind = *cfg.rewind
		}
		if rewind {
			if err := f.rewind(); err != nil {
				yield(nil, err)
				return
			}
		}

		validate := !f.checksumValidated
		if cfg.validate != nil {
			validate = *cfg.validate
		}
		if validate {
			if err := f.ValidateChecksum(); err != nil {
				yield(nil, err)
				return
			}
		}

		var header [blockHeaderSize]byte
		for {
			if n, err := io.ReadFull(f.rw, header[:]); err != nil {
				if n == 0 && errors.Is(err, io.EOF) {
					// End of stream
					return
				}
				yield(nil, fmt.Errorf("skyb: read block header: %w", err))
				return
			}

			typ := BlockType(header[0])
			length := int(binary.LittleEndian.Uint16(header[1:]))

			if seekable {
				offset, err := f.tell()
				if err != nil {
					yield(nil, err)
					return
				}
				block := newDeferredBlock(typ, length, func() ([]byte, error) {
					body := make([]byte, length)
					if err := f.readExactlyAt(body, offset); err != nil {
						return nil, err
					}
					return body, nil
				})
				if !yield(block, nil) {
					return
				}
				// An unconsumed body must never desynchronize iteration.
				if _, err := f.seek(offset+int64(length), io.SeekStart); err != nil {
					yield(nil, err)
					return
				}
			} else {
				block := newDeferredBlock(typ, length, func() ([]byte, error) {
					body := make([]byte, length)
					if err := f.readExactly(body); err != nil {
						return nil, err
					}
					return body, nil
				})
				if !yield(block, nil) {
					return
				}
				if !block.Consumed() {
					if _, err := block.Read(); err != nil {
						yield(nil, err)
						return
					}
				}
			}
		}
	}
}

// ReadAllBlocks reads and returns all blocks of the file. It accepts
// the same options as [File.Blocks].
func (f *File) ReadAllBlocks(opts ...BlocksOption) ([]*Block, error) {
	var blocks []*Block
	for block, err := range f.Blocks(opts...) {
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// Finalize updates the CRC field of the file, if it has one. If the
// header has not been parsed yet, Finalize parses it first, which
// requires a seekable stream; the cursor is restored afterward.
func (f *File) Finalize() error {
	if f.version == 0 {
		if !f.seekable() {
			return fmt.Errorf("%w: version number not known yet", ErrNotSeekable)
		}
		pos, err := f.tell()
		if err != nil {
			return err
		}
		err = f.rewind()
		if _, serr := f.seek(pos, io.SeekStart); err == nil {
			err = serr
		}
		if err != nil {
			return err
		}
	}

	return f.updateCRC32()
}

// Version returns the format version of the file. It fails with
// [ErrHeaderNotRead] before the header has been parsed.
func (f *File) Version() (int, error) {
	if f.version == 0 {
		return 0, ErrHeaderNotRead
	}
	return f.version, nil
}

// Features returns the feature flags of the file. It fails with
// [ErrHeaderNotRead] before the header has been parsed.
func (f *File) Features() (Features, error) {
	if f.version == 0 {
		return 0, ErrHeaderNotRead
	}
	return f.features, nil
}

// Buffer returns the underlying buffer of the file if it is backed by
// an in-memory buffer.
func (f *File) Buffer() (io.ReadWriteSeeker, error) {
	if f.buf == nil {
		return nil, ErrNotMemoryBacked
	}
	return f.buf, nil
}

// Contents returns a copy of the contents of the underlying in-memory
// buffer of the file. Call [File.Finalize] first if the file carries a
// checksum and the contents should validate.
func (f *File) Contents() ([]byte, error) {
	if f.buf == nil {
		return nil, ErrNotMemoryBacked
	}
	return f.buf.Bytes(), nil
}
