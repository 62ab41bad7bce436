// Package etro is a timeline-based media composition engine for [Ebitengine].
//
// A composition is a [Movie] holding ordered layers; layers and effects
// expose dynamic properties that may be constant, computed, or animated with
// keyframes, and every frame is composited by resolving those properties at
// the current playback time.
//
// # Quick start
//
//	movie, _ := etro.NewMovie(640, 480, nil)
//	layer, _ := etro.NewVisualLayer(map[string]any{
//		"startTime":  0.0,
//		"duration":   5.0,
//		"background": etro.Color{R: 0.2, G: 0.5, B: 1, A: 1},
//		"x": etro.Kf(
//			etro.Keyframe{Time: 0, Value: 0.0, Interpolator: etro.LinearInterpolator},
//			etro.Keyframe{Time: 5, Value: 320.0},
//		),
//	})
//	movie.Layers().Add(layer)
//	movie.Seek(2.5)
//	movie.Draw(screen) // inside an ebiten.Game's Draw
//
// # Dynamic properties
//
// Every public property of a movie, layer, or effect is stored by name and
// resolved through [Val] at draw time. A property value may be a literal, a
// [Keyframes] track, or a [ComputedFn]; resolution is memoized per frame and
// per-kind property filters run after resolution (an unset visual-layer
// width, for example, resolves to the movie's width).
//
// Keyframe tracks interpolate with [LinearInterpolator], [CosineInterpolator],
// any [gween] easing curve via [Eased], or hold discrete values when no
// interpolator is given.
//
// # Change observation
//
// Construction wraps every node with [WatchPublic]: subsequent property
// writes publish "<type>.change.modify" events on the movie's [Bus], with
// nested objects reported under dotted paths. Subscribe with [Subscribe]:
//
//	etro.Subscribe(layer, "layer.change", func(e etro.Event) {
//		fmt.Println(e.Property, "=", e.NewValue)
//	})
//
// Etro is single-threaded and synchronous, like the Ebitengine game loop it
// plugs into: events are delivered on the mutating call stack, in mutation
// order, and no locking is needed anywhere.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package etro
