package skyb

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"
)

// Axis format codes used in the header byte of an encoded segment.
const (
	axisFormatConstant = 0 // no bytes follow
	axisFormatLinear   = 1 // one int16
	axisFormatCubic    = 2 // three int16
	axisFormatSeptic   = 3 // seven int16
)

const maxSegmentDurationMsec = 65535

// SegmentEncoder encodes trajectory segments into the compact
// fixed-point representation used by trajectory blocks.
type SegmentEncoder struct {
	scale float64
}

// NewSegmentEncoder creates an encoder with the given scaling factor.
// Coordinates are multiplied by 1000 and divided by the factor before
// being truncated to an integer that is stored in the file. The factor
// must be chosen by the caller so that every truncated coordinate fits
// a signed 16-bit integer; the encoder does not re-validate this. The
// factor does not apply to yaw, which is always stored in tenths of a
// degree.
func NewSegmentEncoder(factor int) *SegmentEncoder {
	return &SegmentEncoder{scale: 1000 / float64(factor)}
}

// EncodePoint encodes the X, Y and Z coordinates of a point, followed
// by the given yaw, as four little-endian int16 values.
//
// Yaw is currently always zero for trajectory blocks; yaw setpoints
// have migrated to separate yaw control blocks. The parameter is kept
// for symmetry with the wire format.
func (e *SegmentEncoder) EncodePoint(p Point, yaw float64) []byte {
	x, y, z := e.scalePoint(p)
	out := make([]byte, 8)
	binary.LittleEndian.PutUint16(out[0:], uint16(x))
	binary.LittleEndian.PutUint16(out[2:], uint16(y))
	binary.LittleEndian.PutUint16(out[4:], uint16(z))
	binary.LittleEndian.PutUint16(out[6:], uint16(e.scaleYaw(yaw)))
	return out
}

// EncodeSegment encodes the control points and the end point of the
// given segment. The start point is not encoded: it is identical to the
// end point of the previous segment by convention.
//
// The layout is one axis-format byte (two bits per axis, X in the low
// bits, the top two bits reserved as zero), a little-endian uint16
// duration in milliseconds, then the emitted int16 coordinates for the
// X, Y and Z axes in that order.
func (e *SegmentEncoder) EncodeSegment(s Segment) ([]byte, error) {
	duration := int(math.Floor(s.Duration * 1000))
	if duration < 0 || duration > maxSegmentDurationMsec {
		return nil, fmt.Errorf(
			"%w: trajectory segment must be in the range 0-65535 msec, got %d msec",
			ErrDurationOutOfRange, duration,
		)
	}

	if len(s.Points) == 0 {
		return nil, fmt.Errorf("%w: segment has no points", ErrUnsupportedCurve)
	}

	xs := make([]int16, len(s.Points))
	ys := make([]int16, len(s.Points))
	zs := make([]int16, len(s.Points))
	for i, p := range s.Points {
		xs[i], ys[i], zs[i] = e.scalePoint(p)
	}

	xFormat, xs, err := encodeCoordinateSeries(xs)
	if err != nil {
		return nil, err
	}
	yFormat, ys, err := encodeCoordinateSeries(ys)
	if err != nil {
		return nil, err
	}
	zFormat, zs, err := encodeCoordinateSeries(zs)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 3+2*(len(xs)+len(ys)+len(zs)))
	out = append(out, xFormat|yFormat<<2|zFormat<<4)
	out = binary.LittleEndian.AppendUint16(out, uint16(duration))
	for _, coords := range [][]int16{xs, ys, zs} {
		for _, c := range coords {
			out = binary.LittleEndian.AppendUint16(out, uint16(c))
		}
	}
	return out, nil
}

// EncodeMultipleSegments encodes the start point, the control points
// and the end points of segments that constitute one continuous curve.
func (e *SegmentEncoder) EncodeMultipleSegments(segments iter.Seq[Segment]) ([]byte, error) {
	var out []byte
	for chunk, err := range e.IterEncodeMultipleSegments(segments) {
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// IterEncodeMultipleSegments lazily encodes segments that constitute
// one continuous curve, yielding one byte chunk per encoding step.
//
// The start point of the first segment is emitted exactly once, before
// the first segment. No later start point is emitted: each one equals
// the final coordinate of the previous segment, so the whole trajectory
// remains reconstructible as a single polyline of encoded segments.
func (e *SegmentEncoder) IterEncodeMultipleSegments(segments iter.Seq[Segment]) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		first := true
		for segment := range segments {
			if first {
				if !yield(e.EncodePoint(segment.Start(), 0), nil) {
					return
				}
				first = false
			}

			chunk, err := e.EncodeSegment(segment)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// encodeCoordinateSeries classifies the coordinates of one axis of a
// segment and returns the axis format code along with the coordinates
// to emit. The first value is the start coordinate and is always
// dropped; it is implied by the previous segment.
func encodeCoordinateSeries(values []int16) (byte, []int16, error) {
	first, rest := values[0], values[1:]

	constant := true
	for _, v := range rest {
		if v != first {
			constant = false
			break
		}
	}
	if constant {
		return axisFormatConstant, nil, nil
	}

	if len(rest) == 2 {
		// Quadratic Bezier curve; promote it to cubic before writing.
		// Rounding to nearest is safe here: the elevated control points
		// are convex combinations of values that already fit.
		p0, c, p1 := float64(first), float64(rest[0]), float64(rest[1])
		elevated := []int16{
			int16(math.Round((p0 + 2*c) / 3)),
			int16(math.Round((2*c + p1) / 3)),
			rest[1],
		}
		return axisFormatCubic, elevated, nil
	}

	switch len(rest) {
	case 1:
		return axisFormatLinear, rest, nil
	case 3:
		return axisFormatCubic, rest, nil
	case 7:
		return axisFormatSeptic, rest, nil
	}

	// TODO: elevate 4-6 point curves to septic ones.
	return 0, nil, fmt.Errorf("%w: %dD curves not implemented yet", ErrUnsupportedCurve, len(rest))
}

// scalePoint converts a point to fixed-point file units.
//
// Truncation toward zero is required here, not rounding to nearest: the
// scaling factor guarantees that the truncated extrema fit 16 bits, and
// rounding could push a boundary value one unit past that guarantee.
func (e *SegmentEncoder) scalePoint(p Point) (int16, int16, int16) {
	return int16(p.X * e.scale), int16(p.Y * e.scale), int16(p.Z * e.scale)
}

// scaleYaw converts a yaw angle in degrees to tenths of a degree,
// normalized into [0, 360) first and wrapped back into the signed
// 16-bit range when rounding lands on a full turn.
func (e *SegmentEncoder) scaleYaw(yaw float64) int16 {
	deg := math.Mod(yaw, 360)
	if deg < 0 {
		deg += 360
	}
	tenths := int16(math.Round(deg * 10))
	if tenths >= 3600 {
		tenths -= 3600
	}
	return tenths
}
