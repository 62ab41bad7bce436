package etro

import "testing"

func TestVisualLayerSizeDefaultsToMovie(t *testing.T) {
	m := testMovie(t)
	layer, err := NewVisualLayer(nil)
	if err != nil {
		t.Fatalf("NewVisualLayer: %v", err)
	}

	// Unattached, there is no movie to inherit from.
	if got := Val(layer, "width", 0); got != nil {
		t.Errorf("unattached width = %v, want nil", got)
	}

	m.Layers().Add(layer)
	if got := Val(layer, "width", 0); got != 320.0 {
		t.Errorf("width = %v, want movie width 320", got)
	}
	if got := Val(layer, "height", 0); got != 240.0 {
		t.Errorf("height = %v, want movie height 240", got)
	}

	// An explicit size wins over the inherited one.
	sized, err := NewVisualLayer(map[string]any{"width": 64.0, "height": 48.0})
	if err != nil {
		t.Fatalf("NewVisualLayer: %v", err)
	}
	m.Layers().Add(sized)
	if got := Val(sized, "width", 0); got != 64.0 {
		t.Errorf("explicit width = %v, want 64", got)
	}
}

func TestActiveAtWindow(t *testing.T) {
	layer, err := NewLayer(map[string]any{"startTime": 2.0, "duration": 3.0})
	if err != nil {
		t.Fatalf("NewLayer: %v", err)
	}
	tests := []struct {
		time   float64
		expect bool
	}{
		{0, false},
		{1.999, false},
		{2, true}, // start is inclusive
		{4.999, true},
		{5, false}, // end is exclusive
		{6, false},
	}
	for _, tt := range tests {
		if got := activeAt(layer, tt.time); got != tt.expect {
			t.Errorf("activeAt(%v) = %v, want %v", tt.time, got, tt.expect)
		}
	}
}

func TestActiveAtZeroDurationNeverActive(t *testing.T) {
	layer, err := NewLayer(map[string]any{"startTime": 2.0})
	if err != nil {
		t.Fatalf("NewLayer: %v", err)
	}
	if activeAt(layer, 2) {
		t.Error("a zero-duration layer should never be active")
	}
}

func TestVisualLayerRenderZeroSizeIsNil(t *testing.T) {
	layer, err := NewVisualLayer(nil)
	if err != nil {
		t.Fatalf("NewVisualLayer: %v", err)
	}
	// No movie means no inherited size, so there is nothing to draw.
	if img := layer.Render(0); img != nil {
		t.Error("Render on a zero-size layer should return nil")
	}
	if layer.Canvas() != nil {
		t.Error("a zero-size render should not allocate a canvas")
	}
}

func TestVisualLayerRenderReusesCanvas(t *testing.T) {
	m := testMovie(t)
	layer, err := NewVisualLayer(map[string]any{"duration": 10.0})
	if err != nil {
		t.Fatalf("NewVisualLayer: %v", err)
	}
	m.Layers().Add(layer)

	first := layer.Render(0)
	if first == nil {
		t.Fatal("Render returned nil for a movie-sized layer")
	}
	second := layer.Render(1)
	if first != second {
		t.Error("same-size renders should reuse the canvas")
	}
	if b := second.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("canvas is %dx%d, want 320x240", b.Dx(), b.Dy())
	}
}

func TestVisualLayerRenderTracksAnimatedSize(t *testing.T) {
	m := testMovie(t)
	layer, err := NewVisualLayer(map[string]any{
		"width": Kf(
			Keyframe{Time: 0, Value: 8.0},
			Keyframe{Time: 5, Value: 16.0},
		),
		"height": 8.0,
	})
	if err != nil {
		t.Fatalf("NewVisualLayer: %v", err)
	}
	m.Layers().Add(layer)

	if b := layer.Render(0).Bounds(); b.Dx() != 8 {
		t.Errorf("canvas width at t=0 is %d, want 8", b.Dx())
	}
	if b := layer.Render(5).Bounds(); b.Dx() != 16 {
		t.Errorf("canvas width at t=5 is %d, want 16", b.Dx())
	}
}

func TestVisualLayerRenderRunsEffects(t *testing.T) {
	m := testMovie(t)
	layer, err := NewVisualLayer(nil)
	if err != nil {
		t.Fatalf("NewVisualLayer: %v", err)
	}
	m.Layers().Add(layer)
	c := newCountingEffect(t, nil)
	layer.Effects().Add(c)

	layer.Render(2.5)

	if len(c.calls) != 1 || c.calls[0] != 2.5 {
		t.Errorf("effect applied at %v, want [2.5] (layer-local time)", c.calls)
	}
}

func TestDetachReleasesLayerState(t *testing.T) {
	m := testMovie(t)
	layer, err := NewVisualLayer(nil)
	if err != nil {
		t.Fatalf("NewVisualLayer: %v", err)
	}
	m.Layers().Add(layer)
	layer.Render(0)
	if layer.Canvas() == nil {
		t.Fatal("Render should allocate the canvas")
	}

	m.Layers().RemoveAt(0)

	if layer.Root() != nil {
		t.Error("removed layer should have no root")
	}
	if layer.Canvas() != nil {
		t.Error("removed layer should release its canvas")
	}
}
