package etro

import "github.com/hajimehoshi/ebiten/v2"

func init() {
	RegisterType("effect", "", nil, nil)
	RegisterType("effect.brightness", "effect", nil, nil)
	RegisterType("effect.stack", "effect", nil, nil)
}

// EffectTarget is anything an effect can process: a movie, a visual layer,
// or an effect stack delegating to its own target.
type EffectTarget interface {
	Watchable
	// Canvas returns the surface the effect chain operates on, or nil when
	// there is nothing to process.
	Canvas() *ebiten.Image
}

// Effecter is implemented by every effect kind. Custom kinds embed Effect
// and override Apply (and Ready, for effects that load resources).
type Effecter interface {
	Watchable
	// Ready reports whether the effect can be applied without further
	// loading.
	Ready() bool
	// Apply processes the target's canvas at the target's local time.
	Apply(target EffectTarget, time float64)
	// Attach hands the effect its owning target so dynamic values resolve
	// against the target's timeline. Attaching detaches from any previous
	// target first.
	Attach(target EffectTarget)
	// Detach releases the back-reference to the former owner.
	Detach()
}

// Effect is the base of every effect kind. Its "enabled" option is a dynamic
// property: keyframe it or compute it to toggle the effect over time.
type Effect struct {
	Base
	target EffectTarget
}

// NewEffect creates a bare effect that processes nothing. Useful as a
// placeholder and in tests; real kinds embed Effect.
func NewEffect(options map[string]any) (*Effect, error) {
	e := &Effect{}
	if err := construct(e, "effect", options); err != nil {
		return nil, err
	}
	return e, nil
}

// DefaultOptions declares the option keys every effect kind accepts.
func (e *Effect) DefaultOptions() map[string]any {
	return map[string]any{"enabled": true}
}

// Root returns the movie reached through the attached target. An effect
// never holds a movie reference of its own.
func (e *Effect) Root() *Movie {
	if e.target == nil {
		return nil
	}
	return e.target.Root()
}

// Target returns the effect's current owner, or nil when detached.
func (e *Effect) Target() EffectTarget { return e.target }

// Attach hands the effect its owner, detaching from any previous one first.
func (e *Effect) Attach(target EffectTarget) {
	if e.target != nil {
		e.self.(Effecter).Detach()
	}
	e.target = target
}

// Detach releases the owner back-reference.
func (e *Effect) Detach() { e.target = nil }

// Ready reports base readiness; a bare effect has nothing to load.
func (e *Effect) Ready() bool { return true }

// Apply does nothing; concrete kinds override it.
func (e *Effect) Apply(target EffectTarget, time float64) {}

// effectEnabled resolves the "enabled" dynamic property at the given time.
// A missing or non-bool value counts as enabled.
func effectEnabled(e Effecter, time float64) bool {
	if v, ok := boolOf(Val(e, "enabled", time)); ok {
		return v
	}
	return true
}

// EffectList is an ordered effect collection owned by a movie, a visual
// layer, or a stack. Assigning over an occupied index detaches the old
// effect before attaching the new one; removing an index detaches the
// removed effect and publishes no change event.
type EffectList struct {
	owner EffectTarget
	items []Effecter
}

// Len returns the number of effects.
func (l *EffectList) Len() int { return len(l.items) }

// At returns the effect at index i. Panics if i is out of range.
func (l *EffectList) At(i int) Effecter {
	if i < 0 || i >= len(l.items) {
		panic("etro: effect index out of range")
	}
	return l.items[i]
}

// Add appends an effect and attaches it to the collection's owner.
// Panics if e is nil.
func (l *EffectList) Add(e Effecter) {
	if e == nil {
		panic("etro: cannot add nil effect")
	}
	l.items = append(l.items, e)
	e.Attach(l.owner)
}

// SetAt assigns an effect at index i, detaching the previous occupant first.
// Panics if i is out of range or e is nil.
func (l *EffectList) SetAt(i int, e Effecter) {
	if i < 0 || i >= len(l.items) {
		panic("etro: effect index out of range")
	}
	if e == nil {
		panic("etro: cannot set nil effect")
	}
	if old := l.items[i]; old != nil {
		old.Detach()
	}
	l.items[i] = e
	e.Attach(l.owner)
}

// RemoveAt removes and returns the effect at index i, detaching it.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
// Panics if i is out of range.
func (l *EffectList) RemoveAt(i int) Effecter {
	if i < 0 || i >= len(l.items) {
		panic("etro: effect index out of range")
	}
	e := l.items[i]
	copy(l.items[i:], l.items[i+1:])
	l.items[len(l.items)-1] = nil
	l.items = l.items[:len(l.items)-1]
	e.Detach()
	return e
}

// apply runs the chain in index order, skipping effects whose "enabled"
// dynamic property resolves false at the given time.
func (l *EffectList) apply(time float64) {
	for _, e := range l.items {
		if e == nil || !effectEnabled(e, time) {
			continue
		}
		e.Apply(l.owner, time)
	}
}

// ready reports whether every contained effect is ready.
func (l *EffectList) ready() bool {
	for _, e := range l.items {
		if e != nil && !e.Ready() {
			return false
		}
	}
	return true
}

// --- Brightness ---

// Brightness shifts the target's luminance by the "brightness" dynamic
// property, a fraction in [-1, 1]: positive values add white, negative
// values multiply the canvas toward black.
type Brightness struct {
	Effect
	scratch *ebiten.Image
	imgOp   ebiten.DrawImageOptions
}

// NewBrightness creates a brightness effect. options accepts "brightness"
// (default 0, no change) on top of the base effect options.
func NewBrightness(options map[string]any) (*Brightness, error) {
	b := &Brightness{}
	if err := construct(b, "effect.brightness", options); err != nil {
		return nil, err
	}
	return b, nil
}

// DefaultOptions extends the base effect's option keys.
func (b *Brightness) DefaultOptions() map[string]any {
	opts := b.Effect.DefaultOptions()
	opts["brightness"] = 0.0
	return opts
}

// Apply brightens or darkens the target's canvas in place.
func (b *Brightness) Apply(target EffectTarget, time float64) {
	canvas := target.Canvas()
	if canvas == nil {
		return
	}
	amount := floatOf(Val(b, "brightness", time))
	if amount == 0 {
		return
	}
	bounds := canvas.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return
	}
	op := &b.imgOp
	if amount > 0 {
		// Additive pass: a white quad with the brightness fraction as its
		// color scale, composited with lighter blending.
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.GeoM.Scale(float64(w), float64(h))
		op.Blend = ebiten.BlendLighter
		v := float32(clamp01(amount))
		op.ColorScale.Scale(v, v, v, 0)
		canvas.DrawImage(WhitePixel, op)
		return
	}
	// Darken: multiply through a scratch copy — a canvas cannot be drawn
	// onto itself.
	if b.scratch == nil || b.scratch.Bounds().Dx() != w || b.scratch.Bounds().Dy() != h {
		if b.scratch != nil {
			b.scratch.Deallocate()
		}
		b.scratch = ebiten.NewImage(w, h)
	} else {
		b.scratch.Clear()
	}
	s := float32(clamp01(1 + amount))
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendCopy
	op.ColorScale.Scale(s, s, s, 1)
	b.scratch.DrawImage(canvas, op)
	op.ColorScale.Reset()
	canvas.DrawImage(b.scratch, op)
}

// --- Stack ---

// Stack composes an ordered list of sub-effects into a single effect. It is
// itself an EffectTarget: its canvas delegates to whatever the stack is
// attached to, so sub-effects resolve their dynamic values against the
// outer timeline.
type Stack struct {
	Effect
	effects EffectList
}

// NewStack creates a stack holding the given sub-effects, applied in order.
func NewStack(options map[string]any, effects ...Effecter) (*Stack, error) {
	s := &Stack{}
	s.effects.owner = s
	if err := construct(s, "effect.stack", options); err != nil {
		return nil, err
	}
	for _, e := range effects {
		s.effects.Add(e)
	}
	return s, nil
}

// Effects returns the stack's ordered sub-effect collection.
func (s *Stack) Effects() *EffectList { return &s.effects }

// Canvas delegates to the attached target's canvas.
func (s *Stack) Canvas() *ebiten.Image {
	if s.target == nil {
		return nil
	}
	return s.target.Canvas()
}

// Ready reports whether every sub-effect is ready.
func (s *Stack) Ready() bool { return s.effects.ready() }

// Apply runs the sub-effect chain against the stack's target.
func (s *Stack) Apply(target EffectTarget, time float64) {
	s.effects.apply(time)
}
