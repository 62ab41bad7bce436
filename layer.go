package etro

import "github.com/hajimehoshi/ebiten/v2"

func init() {
	RegisterType("layer", "", []string{"active"}, nil)
	RegisterType("layer.visual", "layer", nil, map[string]PropertyFilter{
		"width":  fillMovieDimension("width"),
		"height": fillMovieDimension("height"),
	})
}

// fillMovieDimension builds the filter that defaults an unset width/height
// to the owning movie's dimension.
func fillMovieDimension(dim string) PropertyFilter {
	return func(value any, name string, owner Watchable) any {
		if value != nil {
			return value
		}
		m := owner.Root()
		if m == nil {
			return nil
		}
		if dim == "width" {
			return float64(m.Width())
		}
		return float64(m.Height())
	}
}

// Layerer is implemented by every layer kind. Custom kinds embed Layer and
// override Render and Ready as needed.
type Layerer interface {
	Watchable
	// Ready reports whether the layer (and everything it contains) can be
	// drawn without further loading.
	Ready() bool
	// Render draws the layer at its local time (seconds since the layer's
	// start) and returns the image to composite, or nil when there is
	// nothing to draw this frame.
	Render(time float64) *ebiten.Image

	attachLayer(m *Movie)
	detachLayer()
	setActive(active bool)
	isActive() bool
}

// Layer is the base of every layer kind: it occupies a window of the movie's
// timeline ("startTime" and "duration" options, both dynamic properties) and
// carries the attach/detach lifecycle. A base Layer draws nothing; visible
// kinds embed it (see VisualLayer).
type Layer struct {
	Base
	active bool
}

// NewLayer creates a bare timeline layer. options accepts "startTime" and
// "duration" (seconds; both default to 0).
func NewLayer(options map[string]any) (*Layer, error) {
	l := &Layer{}
	if err := construct(l, "layer", options); err != nil {
		return nil, err
	}
	return l, nil
}

// DefaultOptions declares the option keys every layer kind accepts.
func (l *Layer) DefaultOptions() map[string]any {
	return map[string]any{
		"startTime": 0.0,
		"duration":  0.0,
	}
}

// Ready reports base readiness; a bare layer has nothing to load.
func (l *Layer) Ready() bool { return true }

// Render draws nothing; a bare layer has no visual representation.
func (l *Layer) Render(time float64) *ebiten.Image { return nil }

// activeAt reports whether movie time t falls inside the layer's window:
// startTime <= t < startTime+duration.
func activeAt(l Layerer, t float64) bool {
	start := floatOf(Val(l, "startTime", t))
	dur := floatOf(Val(l, "duration", t))
	return t >= start && t < start+dur
}

func (l *Layer) attachLayer(m *Movie) {
	l.movie = m
}

func (l *Layer) detachLayer() {
	l.movie = nil
	l.active = false
}

func (l *Layer) setActive(active bool) { l.active = active }
func (l *Layer) isActive() bool        { return l.active }

// VisualLayer is a layer with a drawable surface. Its dynamic properties —
// x, y, width, height, background, opacity — are resolved through Val every
// frame, so any of them may be a literal, a keyframe track, or a computed
// function. Unset width/height default to the movie's dimensions via the
// kind's property filters.
type VisualLayer struct {
	Layer
	effects EffectList
	canvas  *ebiten.Image
}

// NewVisualLayer creates a visual layer. On top of the base layer options it
// accepts "x", "y" (default 0), "width", "height" (default: movie
// dimensions), "background" (Color, default none) and "opacity" (default 1).
func NewVisualLayer(options map[string]any) (*VisualLayer, error) {
	v := &VisualLayer{}
	v.effects.owner = v
	if err := construct(v, "layer.visual", options); err != nil {
		return nil, err
	}
	return v, nil
}

// DefaultOptions extends the base layer's option keys with the visual ones.
func (v *VisualLayer) DefaultOptions() map[string]any {
	opts := v.Layer.DefaultOptions()
	opts["x"] = 0.0
	opts["y"] = 0.0
	opts["width"] = nil
	opts["height"] = nil
	opts["background"] = nil
	opts["opacity"] = 1.0
	return opts
}

// Effects returns the layer's ordered effect collection.
func (v *VisualLayer) Effects() *EffectList { return &v.effects }

// Canvas returns the layer's offscreen surface, or nil before the first
// render.
func (v *VisualLayer) Canvas() *ebiten.Image { return v.canvas }

// Ready reports whether the layer and every contained effect are ready.
func (v *VisualLayer) Ready() bool { return v.effects.ready() }

// Render resolves the layer's dimensions and background at its local time,
// redraws the canvas, and runs the effect chain over it. A zero-size layer
// renders nothing and returns nil.
func (v *VisualLayer) Render(time float64) *ebiten.Image {
	w := intOf(Val(v, "width", time))
	h := intOf(Val(v, "height", time))
	if w <= 0 || h <= 0 {
		debugf("layer %q has zero size at time %v, skipping", v.Type(), time)
		return nil
	}
	if v.canvas == nil || v.canvas.Bounds().Dx() != w || v.canvas.Bounds().Dy() != h {
		if v.canvas != nil {
			v.canvas.Deallocate()
		}
		v.canvas = ebiten.NewImage(w, h)
	} else {
		v.canvas.Clear()
	}
	if bg, ok := colorOf(Val(v, "background", time)); ok && bg.A > 0 {
		v.canvas.Fill(bg.toRGBA())
	}
	v.effects.apply(time)
	return v.canvas
}

func (v *VisualLayer) detachLayer() {
	v.Layer.detachLayer()
	if v.canvas != nil {
		v.canvas.Deallocate()
		v.canvas = nil
	}
}
