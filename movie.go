package etro

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

func init() {
	RegisterType("movie", "", []string{"currentTime"}, nil)
}

// Movie is the graph root of a composition: it owns the event bus and the
// value-resolution cache for every node beneath it, holds the ordered layer
// collection and a movie-level effect chain, and composites the frame at the
// current time onto its canvas.
type Movie struct {
	Base
	bus      *Bus
	valCache map[cacheKey]any

	width, height int
	currentTime   float64
	canvas        *ebiten.Image
	layers        LayerList
	effects       EffectList
	imgOp         ebiten.DrawImageOptions
}

// NewMovie creates a movie with a canvas of the given size. options accepts
// "background" (Color, default opaque black).
func NewMovie(width, height int, options map[string]any) (*Movie, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("etro: movie dimensions must be positive, got %dx%d", width, height)
	}
	m := &Movie{
		bus:      newBus(),
		valCache: make(map[cacheKey]any, 64),
		width:    width,
		height:   height,
	}
	m.movie = m
	m.layers.movie = m
	m.effects.owner = m
	if err := construct(m, "movie", options); err != nil {
		return nil, err
	}
	m.canvas = ebiten.NewImage(width, height)
	return m, nil
}

// DefaultOptions declares the movie's option keys.
func (m *Movie) DefaultOptions() map[string]any {
	return map[string]any{"background": Color{0, 0, 0, 1}}
}

// Width returns the canvas width in pixels.
func (m *Movie) Width() int { return m.width }

// Height returns the canvas height in pixels.
func (m *Movie) Height() int { return m.height }

// Canvas returns the movie's composited surface.
func (m *Movie) Canvas() *ebiten.Image { return m.canvas }

// Layers returns the movie's ordered layer collection.
func (m *Movie) Layers() *LayerList { return &m.layers }

// Effects returns the movie-level effect chain, applied after all layers
// are composited.
func (m *Movie) Effects() *EffectList { return &m.effects }

// Events returns the movie's event bus.
func (m *Movie) Events() *Bus { return m.bus }

// CurrentTime returns the playback cursor in seconds.
func (m *Movie) CurrentTime() float64 { return m.currentTime }

// Seek moves the playback cursor and publishes a "movie.seek" event. It does
// not redraw; call Draw to composite the frame at the new cursor.
func (m *Movie) Seek(t float64) {
	m.currentTime = t
	Publish(m, "movie.seek", Event{})
}

// ClearCache wipes the value-resolution cache, starting a new evaluation
// epoch for every node in this movie's graph. Draw calls this once per
// frame; call it manually after mutating a property mid-epoch when the
// fresh value is needed before the next frame.
func (m *Movie) ClearCache() {
	clear(m.valCache)
}

// Ready reports whether every layer and every movie-level effect is ready.
func (m *Movie) Ready() bool {
	for _, l := range m.layers.items {
		if !l.Ready() {
			return false
		}
	}
	return m.effects.ready()
}

// CheckReady publishes the one-time "<type>.ready" event for each layer and
// movie-level effect that has become ready, then "movie.ready" once all of
// them are. Draw calls this every frame; call it manually to flush ready
// events without rendering.
func (m *Movie) CheckReady() {
	for _, l := range m.layers.items {
		if l.Ready() {
			l.base().publishReadyOnce()
		}
	}
	for _, e := range m.effects.items {
		if e.Ready() {
			e.base().publishReadyOnce()
		}
	}
	if m.Ready() {
		m.publishReadyOnce()
	}
}

// publishReadyOnce publishes "<type>.ready" the first time it is called for
// a node.
func (b *Base) publishReadyOnce() {
	if b.readySent {
		return
	}
	b.readySent = true
	Publish(b.self, b.typ+".ready", Event{})
}

// Draw composites the frame at the current time onto the movie canvas and
// then onto screen. Each call starts a fresh resolution epoch, so every
// dynamic property is re-evaluated exactly once per frame no matter how many
// times it is read.
//
// Layers are drawn in index order when the current time falls inside their
// start/duration window; crossing into or out of that window publishes a
// one-shot "<type>.start" or "<type>.stop" event. screen may be nil to
// render without presenting (the result stays on Canvas).
func (m *Movie) Draw(screen *ebiten.Image) {
	m.ClearCache()
	m.CheckReady()

	m.canvas.Clear()
	if bg, ok := colorOf(Val(m, "background", m.currentTime)); ok && bg.A > 0 {
		m.canvas.Fill(bg.toRGBA())
	}

	for _, layer := range m.layers.items {
		active := activeAt(layer, m.currentTime)
		if active != layer.isActive() {
			layer.setActive(active)
			if active {
				Publish(layer, layer.Type()+".start", Event{})
			} else {
				Publish(layer, layer.Type()+".stop", Event{})
			}
		}
		if !active {
			continue
		}
		local := m.currentTime - floatOf(Val(layer, "startTime", m.currentTime))
		img := layer.Render(local)
		if img == nil {
			continue
		}
		x := floatOf(Val(layer, "x", local))
		y := floatOf(Val(layer, "y", local))
		opacity := 1.0
		if o, ok := numeric(Val(layer, "opacity", local)); ok {
			opacity = o
		}
		op := &m.imgOp
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.GeoM.Translate(x, y)
		op.ColorScale.ScaleAlpha(float32(clamp01(opacity)))
		m.canvas.DrawImage(img, op)
	}

	m.effects.apply(m.currentTime)

	if screen == nil {
		return
	}
	sb := screen.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return
	}
	op := &m.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	screen.DrawImage(m.canvas, op)
}

// LayerList is the movie's ordered layer collection. It follows the same
// lifecycle contract as EffectList: assigning over an occupied index
// detaches the old layer before attaching the new one, and removal detaches
// without publishing a change event.
type LayerList struct {
	movie *Movie
	items []Layerer
}

// Len returns the number of layers.
func (l *LayerList) Len() int { return len(l.items) }

// At returns the layer at index i. Panics if i is out of range.
func (l *LayerList) At(i int) Layerer {
	if i < 0 || i >= len(l.items) {
		panic("etro: layer index out of range")
	}
	return l.items[i]
}

// Add appends a layer and attaches it to the movie. Panics if layer is nil.
func (l *LayerList) Add(layer Layerer) {
	if layer == nil {
		panic("etro: cannot add nil layer")
	}
	l.items = append(l.items, layer)
	layer.attachLayer(l.movie)
}

// SetAt assigns a layer at index i, detaching the previous occupant first.
// Panics if i is out of range or layer is nil.
func (l *LayerList) SetAt(i int, layer Layerer) {
	if i < 0 || i >= len(l.items) {
		panic("etro: layer index out of range")
	}
	if layer == nil {
		panic("etro: cannot set nil layer")
	}
	if old := l.items[i]; old != nil {
		old.detachLayer()
	}
	l.items[i] = layer
	layer.attachLayer(l.movie)
}

// RemoveAt removes and returns the layer at index i, detaching it.
// Panics if i is out of range.
func (l *LayerList) RemoveAt(i int) Layerer {
	if i < 0 || i >= len(l.items) {
		panic("etro: layer index out of range")
	}
	layer := l.items[i]
	copy(l.items[i:], l.items[i+1:])
	l.items[len(l.items)-1] = nil
	l.items = l.items[:len(l.items)-1]
	layer.detachLayer()
	return layer
}
