package etro

import (
	"math"
	"testing"
)

// testNode is a bare watchable used across tests for nested property
// objects and custom kinds.
type testNode struct{ Base }

func newTestNode(typ string) *testNode {
	n := &testNode{}
	n.initBase(n, typ)
	return n
}

func init() {
	RegisterType("test.node", "", nil, nil)
	RegisterType("test.doubled", "", nil, map[string]PropertyFilter{
		"prop": func(value any, name string, owner Watchable) any {
			return floatOf(value) * 2
		},
		"border": func(value any, name string, owner Watchable) any {
			return "border-filtered"
		},
	})
}

func testMovie(t *testing.T) *Movie {
	t.Helper()
	m, err := NewMovie(320, 240, nil)
	if err != nil {
		t.Fatalf("NewMovie: %v", err)
	}
	return m
}

func TestValLiteral(t *testing.T) {
	n := newTestNode("test.node")
	n.Set("x", 42.0)
	n.Set("label", "hello")

	if got := Val(n, "x", 0); got != 42.0 {
		t.Errorf("Val(x) = %v, want 42", got)
	}
	if got := Val(n, "label", 99); got != "hello" {
		t.Errorf("Val(label) = %v, want hello", got)
	}
}

func TestValKeyframes(t *testing.T) {
	n := newTestNode("test.node")
	n.Set("x", Kf(
		Keyframe{Time: 0, Value: 0.0, Interpolator: LinearInterpolator},
		Keyframe{Time: 10, Value: 100.0},
	))

	if got := Val(n, "x", 2.5).(float64); math.Abs(got-25.0) > eps {
		t.Errorf("Val(x, 2.5) = %v, want 25", got)
	}
}

func TestValComputedFn(t *testing.T) {
	n := newTestNode("test.node")
	var gotOwner Watchable
	n.Set("x", ComputedFn(func(owner Watchable, time float64) any {
		gotOwner = owner
		return time * 3
	}))

	if got := Val(n, "x", 4).(float64); got != 12.0 {
		t.Errorf("Val(x, 4) = %v, want 12", got)
	}
	if gotOwner != Watchable(n) {
		t.Error("computed function did not receive the owning node")
	}
}

func TestValDottedPathThroughWatchable(t *testing.T) {
	layer := newTestNode("test.node")
	border := newTestNode("test.node")
	border.Set("color", Color{1, 0, 0, 1})
	layer.Set("border", border)

	got, ok := Val(layer, "border.color", 0).(Color)
	if !ok || got != (Color{1, 0, 0, 1}) {
		t.Errorf("Val(border.color) = %v", got)
	}
}

func TestValDottedPathThroughMap(t *testing.T) {
	n := newTestNode("test.node")
	n.Set("style", map[string]any{
		"font": map[string]any{"size": 12.0},
	})

	if got := Val(n, "style.font.size", 0); got != 12.0 {
		t.Errorf("Val(style.font.size) = %v, want 12", got)
	}
}

func TestValDottedPathResolvesLeafShape(t *testing.T) {
	layer := newTestNode("test.node")
	border := newTestNode("test.node")
	border.Set("width", Kf(
		Keyframe{Time: 0, Value: 0.0, Interpolator: LinearInterpolator},
		Keyframe{Time: 2, Value: 8.0},
	))
	layer.Set("border", border)

	if got := Val(layer, "border.width", 1).(float64); math.Abs(got-4.0) > eps {
		t.Errorf("Val(border.width, 1) = %v, want 4", got)
	}
}

func TestValMissingPathIsNil(t *testing.T) {
	n := newTestNode("test.node")
	n.Set("x", 1.0)

	tests := []string{"missing", "missing.deep", "x.through.scalar"}
	for _, path := range tests {
		if got := Val(n, path, 0); got != nil {
			t.Errorf("Val(%q) = %v, want nil", path, got)
		}
	}
}

func TestValPropertyFilter(t *testing.T) {
	n := newTestNode("test.doubled")
	n.Set("prop", 21.0)

	if got := Val(n, "prop", 0); got != 42.0 {
		t.Errorf("filtered Val(prop) = %v, want 42", got)
	}

	// The filter output wins regardless of the raw value's shape.
	n2 := newTestNode("test.doubled")
	n2.Set("prop", Kf(Keyframe{Time: 0, Value: 5.0}))
	if got := Val(n2, "prop", 0); got != 10.0 {
		t.Errorf("filtered keyframe Val(prop) = %v, want 10", got)
	}
}

func TestValFilterUsesTopLevelNameForDottedPaths(t *testing.T) {
	n := newTestNode("test.doubled")
	border := newTestNode("test.node")
	border.Set("color", Color{0, 1, 0, 1})
	n.Set("border", border)

	// The "border" filter fires for reads of "border.color" and replaces
	// the resolved leaf value.
	if got := Val(n, "border.color", 0); got != "border-filtered" {
		t.Errorf("Val(border.color) = %v, want filter output", got)
	}
}

func TestValMemoizationWithinEpoch(t *testing.T) {
	m := testMovie(t)
	layer, err := NewVisualLayer(map[string]any{"duration": 10.0})
	if err != nil {
		t.Fatalf("NewVisualLayer: %v", err)
	}
	m.Layers().Add(layer)

	layer.Set("x", Kf(
		Keyframe{Time: 0, Value: 0.0, Interpolator: LinearInterpolator},
		Keyframe{Time: 10, Value: 100.0},
	))

	first := Val(layer, "x", 5)
	if first != 50.0 {
		t.Fatalf("Val(x, 5) = %v, want 50", first)
	}

	// Replacing the track mid-epoch is invisible until the cache clears.
	layer.Set("x", Kf(Keyframe{Time: 0, Value: 999.0}))
	if got := Val(layer, "x", 5); got != 50.0 {
		t.Errorf("mid-epoch Val(x, 5) = %v, want cached 50", got)
	}

	m.ClearCache()
	if got := Val(layer, "x", 5); got != 999.0 {
		t.Errorf("post-clear Val(x, 5) = %v, want 999", got)
	}
}

func TestValCachesPerTime(t *testing.T) {
	m := testMovie(t)
	layer, err := NewVisualLayer(nil)
	if err != nil {
		t.Fatalf("NewVisualLayer: %v", err)
	}
	m.Layers().Add(layer)

	calls := 0
	layer.Set("x", ComputedFn(func(owner Watchable, time float64) any {
		calls++
		return time
	}))

	Val(layer, "x", 1)
	Val(layer, "x", 1)
	Val(layer, "x", 2)
	if calls != 2 {
		t.Errorf("computed function ran %d times, want 2 (once per distinct time)", calls)
	}
}

func TestValUncachedWithoutRoot(t *testing.T) {
	n := newTestNode("test.node")
	calls := 0
	n.Set("x", ComputedFn(func(owner Watchable, time float64) any {
		calls++
		return nil
	}))

	Val(n, "x", 0)
	Val(n, "x", 0)
	if calls != 2 {
		t.Errorf("rootless resolution ran %d times, want 2 (no cache without a movie)", calls)
	}
}

func TestValCacheHitZeroAlloc(t *testing.T) {
	m := testMovie(t)
	layer, err := NewVisualLayer(nil)
	if err != nil {
		t.Fatalf("NewVisualLayer: %v", err)
	}
	m.Layers().Add(layer)
	layer.Set("x", 42.0)

	// Warm the cache.
	Val(layer, "x", 1)

	result := testing.AllocsPerRun(100, func() {
		Val(layer, "x", 1)
	})
	if result > 0 {
		t.Errorf("cache-hit Val allocated %f times per run, want 0", result)
	}
}
