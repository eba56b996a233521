package skyb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/meigma/skyb/internal/crc32mavftp"
)

const (
	crcFieldSize       = 4
	checksumWindowSize = 4096
)

// ValidateChecksum verifies the CRC32 stored in the file against the
// value computed from its contents. It is a no-op if the file header
// declares no checksum. The cursor is restored before returning.
//
// On a mismatch the returned error is a [*ChecksumError] carrying both
// values; it matches [ErrChecksum] via errors.Is. On success the
// instance remembers that validation passed, and later [File.Blocks]
// calls skip it by default.
func (f *File) ValidateChecksum() error {
	features, err := f.Features()
	if err != nil {
		return err
	}
	if !features.Has(FeatureCRC32) {
		return nil
	}

	expected, err := f.expectedCRC32()
	if err != nil {
		return err
	}

	pos, err := f.tell()
	if err != nil {
		return err
	}
	observed := make([]byte, crcFieldSize)
	err = f.readExactlyAt(observed, f.startOfCRC)
	if _, serr := f.seek(pos, io.SeekStart); err == nil {
		err = serr
	}
	if err != nil {
		return err
	}

	if !bytes.Equal(observed, expected) {
		return &ChecksumError{Expected: expected, Observed: observed}
	}

	f.checksumValidated = true
	return nil
}

// updateCRC32 recomputes the checksum and overwrites the CRC field in
// place. No-op if the file has no checksum. The cursor is restored
// before returning.
func (f *File) updateCRC32() error {
	if !f.features.Has(FeatureCRC32) {
		return nil
	}

	expected, err := f.expectedCRC32()
	if err != nil {
		return err
	}

	pos, err := f.tell()
	if err != nil {
		return err
	}
	if _, err = f.seek(f.startOfCRC, io.SeekStart); err == nil {
		if _, werr := f.rw.Write(expected); werr != nil {
			err = fmt.Errorf("skyb: write CRC field: %w", werr)
		}
	}
	if _, serr := f.seek(pos, io.SeekStart); err == nil {
		err = serr
	}
	return err
}

// expectedCRC32 returns the checksum the file contents call for, as the
// four little-endian bytes of the CRC field, or all zeros when the file
// has no checksum. Requires a seekable stream; the cursor is restored
// before returning.
func (f *File) expectedCRC32() ([]byte, error) {
	if !f.features.Has(FeatureCRC32) {
		return make([]byte, crcFieldSize), nil
	}
	if !f.seekable() {
		return nil, fmt.Errorf("%w: cannot compute the checksum", ErrNotSeekable)
	}

	pos, err := f.tell()
	if err != nil {
		return nil, err
	}
	crc, err := f.streamCRC32()
	if _, serr := f.seek(pos, io.SeekStart); err == nil {
		err = serr
	}
	if err != nil {
		return nil, err
	}

	out := make([]byte, crcFieldSize)
	binary.LittleEndian.PutUint32(out, crc)
	return out, nil
}

// streamCRC32 runs the checksum over the whole file: the header up to
// the CRC field, four zero bytes in place of the stored field, then the
// rest of the stream in fixed-size windows.
func (f *File) streamCRC32() (uint32, error) {
	header := make([]byte, f.startOfCRC)
	if err := f.readExactlyAt(header, 0); err != nil {
		return 0, err
	}
	crc := crc32mavftp.Update(0, header)

	// The stored CRC participates as zeros regardless of its value.
	var stored [crcFieldSize]byte
	if err := f.readExactly(stored[:]); err != nil {
		return 0, err
	}
	crc = crc32mavftp.Update(crc, make([]byte, crcFieldSize))

	window := make([]byte, checksumWindowSize)
	for {
		n, err := f.rw.Read(window)
		if n > 0 {
			crc = crc32mavftp.Update(crc, window[:n])
		}
		if err == io.EOF {
			return crc, nil
		}
		if err != nil {
			return 0, fmt.Errorf("skyb: read while computing checksum: %w", err)
		}
	}
}
