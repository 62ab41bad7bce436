package etro

import "reflect"

// WatchPublic instruments a node so that writes to any public property not
// in the kind's exclusion list publish a "<type>.change.modify" event on the
// node's movie bus. Property values that are themselves Watchable are
// instrumented recursively: a write to child.width republishes through the
// parent as "<parentProperty>.width", with the child's own exclusion list
// staying authoritative for the child's property names.
//
// Watching is idempotent: re-running WatchPublic on an instrumented node
// installs nothing twice and never duplicates events. The instrumented node
// is returned for call chaining.
//
// Change detection keeps a last-seen value per property: the first write
// after instrumentation always publishes; later writes publish only when the
// value differs. Uncomparable values (maps, slices, funcs) always count as
// changed.
func WatchPublic(obj Watchable) Watchable {
	b := obj.base()
	if b.watched {
		return obj
	}
	b.watched = true
	b.instrumentChildren()
	return obj
}

// instrumentChildren registers a forwarding hook on every watchable value
// currently stored under a non-excluded property name.
func (b *Base) instrumentChildren() {
	for name, v := range b.props {
		if b.info.excludes[name] {
			continue
		}
		if child, ok := v.(Watchable); ok {
			addForward(child, b.self, name)
		}
	}
}

// addForward installs a parent republish hook on child under the given path
// prefix, then walks into the child's own watchable values. Duplicate hooks
// are skipped so repeated instrumentation stays idempotent.
func addForward(child, parent Watchable, prefix string) {
	cb := child.base()
	for _, f := range cb.forwards {
		if f.parent == parent && f.prefix == prefix {
			return
		}
	}
	cb.forwards = append(cb.forwards, forward{parent: parent, prefix: prefix})
	cb.instrumentChildren()
}

// noteChange updates the bookkeeping state for a property write and reports
// whether the write counts as a change.
func (b *Base) noteChange(name string, value any) bool {
	prev, seen := b.lastSeen[name]
	if seen && sameValue(prev, value) {
		return false
	}
	if b.lastSeen == nil {
		b.lastSeen = make(map[string]any, 8)
	}
	b.lastSeen[name] = value
	return true
}

// emitChange publishes a change event for this node (when watched) and
// republishes through every registered parent under the dotted path prefix.
func (b *Base) emitChange(property string, value any) {
	if b.watched {
		Publish(b.self, b.typ+".change.modify", Event{Property: property, NewValue: value})
	}
	for _, f := range b.forwards {
		f.parent.base().emitChange(f.prefix+"."+property, value)
	}
}

// sameValue reports whether two stored values are equal for change-detection
// purposes. Values of different or uncomparable types never compare equal.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
