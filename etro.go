package etro

import (
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// Watchable is implemented by every composition graph node: movies, layers,
// effects, and any nested property object. A Watchable exposes its public
// properties through Get/Set so that mutations can be observed (see
// WatchPublic) and time-resolved (see Val).
//
// Concrete kinds are built by embedding Base; the unexported base method
// keeps the property store under this package's control while still allowing
// custom kinds in other packages via embedding.
type Watchable interface {
	// Type returns the node's dotted kind string, e.g. "layer.visual".
	Type() string
	// Root returns the movie that owns this node's event bus and value
	// cache, or nil if the node is not attached to a movie.
	Root() *Movie
	// Get returns the raw stored value for a public property.
	// The second result reports whether the property has been set.
	Get(name string) (any, bool)
	// Set stores a raw value for a public property. On a watched object
	// this publishes a "<type>.change.modify" event (see WatchPublic).
	Set(name string, value any)

	base() *Base
}

// PropertyFilter transforms a resolved property value before Val returns it.
// Filters are registered per kind (see RegisterType) and are keyed by the
// top-level property name only; a filter on "border" also fires for reads
// of "border.color".
type PropertyFilter func(value any, name string, owner Watchable) any

// typeInfo is the kind-level metadata shared by all instances of one kind.
// Exclusion lists and filter maps are fixed at registration time; instances
// carry only data.
type typeInfo struct {
	name     string
	excludes map[string]bool
	filters  map[string]PropertyFilter
}

var typeRegistry = map[string]*typeInfo{}

// RegisterType declares a node kind: its dotted name, the name of its parent
// kind ("" for a root kind), the property names excluded from change
// observation, and the per-property filters applied by Val. The parent's
// exclusion and filter entries are inherited; the child's entries supplement
// them (and a child filter for the same name replaces the parent's).
//
// Registration happens once per kind, at package init time. Registering a
// duplicate name or naming an unregistered parent panics.
func RegisterType(name, parent string, excludes []string, filters map[string]PropertyFilter) {
	if name == "" {
		panic("etro: type name must not be empty")
	}
	if _, dup := typeRegistry[name]; dup {
		panic(fmt.Sprintf("etro: type %q already registered", name))
	}
	info := &typeInfo{
		name:     name,
		excludes: make(map[string]bool),
		filters:  make(map[string]PropertyFilter),
	}
	if parent != "" {
		p, ok := typeRegistry[parent]
		if !ok {
			panic(fmt.Sprintf("etro: parent type %q of %q is not registered", parent, name))
		}
		for k := range p.excludes {
			info.excludes[k] = true
		}
		for k, f := range p.filters {
			info.filters[k] = f
		}
	}
	for _, e := range excludes {
		info.excludes[e] = true
	}
	for k, f := range filters {
		info.filters[k] = f
	}
	typeRegistry[name] = info
}

// forward republishes a nested node's change events through a parent under a
// dotted path prefix. Installed by WatchPublic's instrumentation tree-walk.
type forward struct {
	parent Watchable
	prefix string
}

// Base is the common state of every Watchable: the kind tag, the property
// store, the weak back-reference to the owning movie, and the change
// observation bookkeeping. Embed it in concrete kinds and call initBase from
// the constructor.
type Base struct {
	self  Watchable
	typ   string
	info  *typeInfo
	movie *Movie
	props map[string]any

	// Change observation state (see watch.go).
	watched   bool
	lastSeen  map[string]any
	forwards  []forward
	readySent bool
}

// initBase wires a Base to its outer value. self must be the concrete node
// embedding this Base; typ must name a registered kind.
func (b *Base) initBase(self Watchable, typ string) {
	info, ok := typeRegistry[typ]
	if !ok {
		panic(fmt.Sprintf("etro: type %q is not registered", typ))
	}
	b.self = self
	b.typ = typ
	b.info = info
	b.props = make(map[string]any, 8)
}

// Type returns the node's registered kind string.
func (b *Base) Type() string { return b.typ }

// Root returns the owning movie, or nil if unattached. The reference is a
// plain back-pointer; a Base never owns its movie.
func (b *Base) Root() *Movie { return b.movie }

// Get returns the raw stored value for a property, which may be a literal,
// a *Keyframes track, a ComputedFn, or a nested Watchable.
func (b *Base) Get(name string) (any, bool) {
	v, ok := b.props[name]
	return v, ok
}

// Set stores a raw property value. On watched objects this publishes a
// change event unless the name is excluded or the value matches the last
// observed write; nested watchable values are instrumented recursively.
func (b *Base) Set(name string, value any) {
	b.props[name] = value
	if !b.watched && len(b.forwards) == 0 {
		return
	}
	if b.info.excludes[name] {
		return
	}
	if !b.noteChange(name, value) {
		return
	}
	if child, ok := value.(Watchable); ok {
		addForward(child, b.self, name)
	}
	b.emitChange(name, value)
}

func (b *Base) base() *Base { return b }

// construct runs the shared constructor sequence: bind the Base, merge the
// caller's options over the kind's defaults, then instrument the node for
// change observation.
func construct(self OptionTarget, typ string, options map[string]any) error {
	self.base().initBase(self, typ)
	if err := ApplyOptions(options, self); err != nil {
		return err
	}
	WatchPublic(self)
	return nil
}

// --- Color ---

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when converting for the drawing surface.
type Color struct {
	R, G, B, A float64
}

// toRGBA converts to a premultiplied 8-bit color for ebiten fills.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: byte(clamp01(c.R)*clamp01(c.A)*255 + 0.5),
		G: byte(clamp01(c.G)*clamp01(c.A)*255 + 0.5),
		B: byte(clamp01(c.B)*clamp01(c.A)*255 + 0.5),
		A: byte(clamp01(c.A)*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// WhitePixel is a 1x1 white image used for solid-color draws (background
// fills, additive brightness passes).
var WhitePixel *ebiten.Image

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(color.White)
}

// --- Debug mode ---

// globalDebug gates stderr diagnostics (no sync — etro is single-threaded).
var globalDebug bool

// SetDebugMode enables or disables debug diagnostics. When enabled, missing
// property reads and lifecycle oddities are logged to stderr.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

func debugf(format string, args ...any) {
	if globalDebug {
		log.Printf("etro: "+format, args...)
	}
}

// --- Value coercion helpers ---

// floatOf coerces a resolved property value to float64, returning 0 for nil
// or non-numeric values.
func floatOf(v any) float64 {
	f, _ := numeric(v)
	return f
}

// numeric reports whether v is a supported numeric type and returns it as a
// float64.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	return 0, false
}

// intOf coerces a resolved property value to int, returning 0 for nil or
// non-numeric values. Fractional values truncate.
func intOf(v any) int {
	f, _ := numeric(v)
	return int(f)
}

// boolOf coerces a resolved property value to bool. The second result is
// false if v is not a bool.
func boolOf(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// colorOf coerces a resolved property value to a Color. The second result is
// false if v is nil or not a Color.
func colorOf(v any) (Color, bool) {
	c, ok := v.(Color)
	return c, ok
}
