package skyb

import "iter"

// Point is a position in the show coordinate system, in meters.
type Point struct {
	X float64
	Y float64
	Z float64
}

// Segment is one continuous piece of a trajectory curve. Points holds
// the start point, any Bezier control points, and the end point, in that
// order. Duration is the time it takes to travel the segment, in
// seconds.
//
// Consecutive segments of one curve share their boundary point: the
// start point of a segment equals the end point of the previous one.
type Segment struct {
	Points   []Point
	Duration float64
}

// Start returns the start point of the segment.
func (s Segment) Start() Point {
	return s.Points[0]
}

// End returns the end point of the segment.
func (s Segment) End() Point {
	return s.Points[len(s.Points)-1]
}

// HasControlPoints reports whether the segment has Bezier control points
// between its start and end points.
func (s Segment) HasControlPoints() bool {
	return len(s.Points) > 2
}

// Trajectory is the external curve model that trajectory blocks are
// written from. Implementations live outside this package; the show
// file only needs a scaling proposal and a segment stream.
type Trajectory interface {
	// ProposeScalingFactor returns a positive factor chosen so that
	// every coordinate of the trajectory, multiplied by 1000 and divided
	// by the factor, fits a signed 16-bit integer after truncation.
	ProposeScalingFactor() int

	// IterSegments yields the segments of the trajectory in order, each
	// at most maxLength seconds long. When absolute is true the segments
	// carry absolute timestamps: a nonzero takeoff time is covered by a
	// leading constant segment instead of shifting the time base.
	IterSegments(maxLength int, absolute bool) iter.Seq[Segment]
}
