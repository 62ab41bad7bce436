package etro

import "fmt"

// Keyframe is a single control point on an animated property: a time (in the
// owner's local seconds), a value, and the interpolator used between this
// point and the next. A nil Interpolator means hold: the value stays exactly
// this point's value until the next point's time.
type Keyframe struct {
	Time         float64
	Value        any
	Interpolator Interpolator
}

// Keyframes is an ordered, immutable track of control points for a single
// property. Construct one with NewKeyframes or Kf and assign it as a
// property value; Val resolves it at the evaluation time. Re-assigning the
// property replaces the whole track.
type Keyframes struct {
	points []Keyframe
}

// NewKeyframes validates and builds a track. The point list must be
// non-empty with strictly increasing times; a duplicate or out-of-order time
// is a programmer error and fails construction.
func NewKeyframes(points ...Keyframe) (*Keyframes, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("etro: keyframe track must have at least one control point")
	}
	for i := 1; i < len(points); i++ {
		if points[i].Time <= points[i-1].Time {
			return nil, fmt.Errorf(
				"etro: keyframe times must be strictly increasing: %v at index %d after %v",
				points[i].Time, i, points[i-1].Time)
		}
	}
	track := &Keyframes{points: make([]Keyframe, len(points))}
	copy(track.points, points)
	return track, nil
}

// Kf is the literal-construction form of NewKeyframes: it panics on a
// malformed track instead of returning an error, for use in property
// assignments where the points are compile-time literals.
func Kf(points ...Keyframe) *Keyframes {
	track, err := NewKeyframes(points...)
	if err != nil {
		panic(err.Error())
	}
	return track
}

// Len returns the number of control points.
func (k *Keyframes) Len() int { return len(k.points) }

// Resolve returns the track's value at the given time. Before the first
// point it returns the first point's value; at or after the last point, the
// last point's value. Between two points it interpolates with the earlier
// point's interpolator, or holds the earlier value when that interpolator
// is nil.
func (k *Keyframes) Resolve(time float64) any {
	if time < k.points[0].Time {
		return k.points[0].Value
	}
	last := len(k.points) - 1
	if time >= k.points[last].Time {
		return k.points[last].Value
	}
	// Find the bracket with t0 <= time < t1. Tracks are short (hand-authored
	// control points), so a linear scan beats binary search bookkeeping.
	i := 0
	for i < last && k.points[i+1].Time <= time {
		i++
	}
	p0, p1 := k.points[i], k.points[i+1]
	if p0.Interpolator == nil {
		return p0.Value
	}
	progress := (time - p0.Time) / (p1.Time - p0.Time)
	return p0.Interpolator(p0.Value, p1.Value, progress)
}
