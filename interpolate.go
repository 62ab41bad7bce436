package etro

import (
	"math"

	"github.com/tanema/gween/ease"
)

// Interpolator blends two keyframe values by a progress fraction in [0, 1].
// Interpolators recurse through map[string]any structures (blending each key
// present in both maps) and through Color channels; non-numeric leaves fall
// back to start's value.
type Interpolator func(start, end any, progress float64) any

// LinearInterpolator blends numeric values as start + (end-start)*progress.
func LinearInterpolator(start, end any, progress float64) any {
	return interpolateValue(start, end, progress, lerp)
}

// CosineInterpolator blends numeric values along a quarter cosine curve:
// c*start + (1-c)*end with c = cos(progress*π/2). Eases out of start.
func CosineInterpolator(start, end any, progress float64) any {
	return interpolateValue(start, end, progress, coserp)
}

// Eased adapts a gween easing function into an Interpolator: progress is
// remapped through the curve, then blended linearly. Any ease.TweenFunc
// (ease.OutCubic, ease.InOutSine, ...) becomes usable directly in keyframe
// tuples this way.
func Eased(fn ease.TweenFunc) Interpolator {
	return func(start, end any, progress float64) any {
		p := float64(fn(float32(progress), 0, 1, 1))
		return interpolateValue(start, end, p, lerp)
	}
}

func lerp(a, b, p float64) float64 {
	return a + (b-a)*p
}

func coserp(a, b, p float64) float64 {
	c := math.Cos(p * math.Pi / 2)
	return c*a + (1-c)*b
}

// interpolateValue applies blend recursively. Keyed structures recurse per
// key; a key missing from end (or a non-numeric leaf) keeps start's value.
func interpolateValue(start, end any, progress float64, blend func(a, b, p float64) float64) any {
	if sm, ok := start.(map[string]any); ok {
		em, ok := end.(map[string]any)
		if !ok {
			return start
		}
		out := make(map[string]any, len(sm))
		for k, sv := range sm {
			ev, ok := em[k]
			if !ok {
				out[k] = sv
				continue
			}
			out[k] = interpolateValue(sv, ev, progress, blend)
		}
		return out
	}
	if sc, ok := start.(Color); ok {
		ec, ok := end.(Color)
		if !ok {
			return start
		}
		return Color{
			R: blend(sc.R, ec.R, progress),
			G: blend(sc.G, ec.G, progress),
			B: blend(sc.B, ec.B, progress),
			A: blend(sc.A, ec.A, progress),
		}
	}
	sn, sok := numeric(start)
	en, eok := numeric(end)
	if sok && eok {
		return blend(sn, en, progress)
	}
	return start
}
