package etro

import "strings"

// ComputedFn is a property value computed on demand from the owning node and
// the evaluation time.
type ComputedFn func(owner Watchable, time float64) any

// cacheKey scopes a memoized resolution to one owner, property path, and
// evaluation time within a movie's cache epoch.
type cacheKey struct {
	owner Watchable
	path  string
	time  float64
}

// Val resolves a dynamic property of owner at the given time.
//
// path may be dotted ("border.color") to reach into nested watchables or
// map[string]any values; a missing intermediate segment resolves to nil
// rather than panicking. The raw value is resolved by shape — a *Keyframes
// track resolves at time, a ComputedFn is invoked with (owner, time), and
// anything else is returned verbatim — then the owner kind's property filter
// for the top-level property name, if any, transforms the result.
//
// Results are memoized per (movie, owner, path, time) until the movie's
// cache epoch is cleared with Movie.ClearCache. Owners with no movie resolve
// uncached.
func Val(owner Watchable, path string, time float64) any {
	root := owner.Root()
	if root != nil {
		if v, ok := root.valCache[cacheKey{owner, path, time}]; ok {
			return v
		}
	}
	raw, top, ok := lookupPath(owner, path)
	var resolved any
	if ok {
		switch v := raw.(type) {
		case *Keyframes:
			resolved = v.Resolve(time)
		case ComputedFn:
			resolved = v(owner, time)
		default:
			resolved = raw
		}
	} else {
		debugf("property %q not set on %q", path, owner.Type())
	}
	if f := owner.base().info.filters[top]; f != nil {
		resolved = f(resolved, top, owner)
	}
	if root != nil {
		root.valCache[cacheKey{owner, path, time}] = resolved
	}
	return resolved
}

// lookupPath reads the raw stored value at a (possibly dotted) property path
// and reports the top-level property name. Missing or non-navigable
// intermediate segments yield ok=false — an expected condition, not an
// error.
func lookupPath(owner Watchable, path string) (raw any, top string, ok bool) {
	dot := strings.IndexByte(path, '.')
	if dot < 0 {
		raw, ok = owner.Get(path)
		return raw, path, ok
	}
	top = path[:dot]
	cur, ok := owner.Get(top)
	rest := path[dot+1:]
	for ok {
		seg := rest
		dot = strings.IndexByte(rest, '.')
		if dot >= 0 {
			seg, rest = rest[:dot], rest[dot+1:]
		}
		switch c := cur.(type) {
		case Watchable:
			cur, ok = c.Get(seg)
		case map[string]any:
			cur, ok = c[seg]
		default:
			return nil, top, false
		}
		if dot < 0 {
			return cur, top, ok
		}
	}
	return nil, top, false
}
