package skyb

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Format errors.
var (
	// ErrBadMagic is returned when a file does not start with the "skyb" marker.
	ErrBadMagic = errors.New("skyb: not a Skybrush binary file")

	// ErrUnsupportedVersion is returned for format versions other than 1 and 2.
	ErrUnsupportedVersion = errors.New("skyb: unsupported file version")
)

// Size errors.
var (
	// ErrBlockTooLarge is returned when a block body does not fit the
	// 16-bit length field.
	ErrBlockTooLarge = errors.New("skyb: block body too large")

	// ErrDurationOutOfRange is returned when a segment duration does not
	// fit the 16-bit millisecond field.
	ErrDurationOutOfRange = errors.New("skyb: segment duration out of range")

	// ErrScaleTooLarge is returned when a trajectory proposes a scaling
	// factor that does not fit seven bits.
	ErrScaleTooLarge = errors.New("skyb: trajectory covers too large an area")

	// ErrUnsupportedCurve is returned when a segment carries a curve
	// degree the encoder cannot represent.
	ErrUnsupportedCurve = errors.New("skyb: unsupported curve degree")
)

// State errors.
var (
	// ErrNotSeekable is returned when an operation requires a seekable
	// stream but the backing stream only supports sequential reads.
	ErrNotSeekable = errors.New("skyb: stream is not seekable")

	// ErrHeaderNotRead is returned by accessors that need the file header
	// before it has been parsed.
	ErrHeaderNotRead = errors.New("skyb: version header was not read yet")

	// ErrNotMemoryBacked is returned by buffer accessors on files that are
	// not backed by an in-memory buffer.
	ErrNotMemoryBacked = errors.New("skyb: file is not backed by an in-memory buffer")
)

// ErrChecksum is the sentinel matched by [ChecksumError] values via
// errors.Is.
var ErrChecksum = errors.New("skyb: CRC error")

// ChecksumError reports a mismatch between the CRC32 stored in a show
// file and the value computed from its contents.
type ChecksumError struct {
	// Expected is the checksum computed from the file contents, as the
	// four little-endian bytes that should be stored in the CRC field.
	Expected []byte

	// Observed is the checksum actually stored in the file.
	Observed []byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf(
		"skyb: CRC error, expected %s, got %s",
		hex.EncodeToString(e.Expected), hex.EncodeToString(e.Observed),
	)
}

// Is reports whether target is [ErrChecksum], so callers can match with
// errors.Is without inspecting the concrete type.
func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksum
}
