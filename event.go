package etro

import "strings"

// Event is a structured notification delivered through a movie's Bus.
// Target and Type are filled in by Publish; Property and NewValue are only
// meaningful for "<type>.change.modify" events.
type Event struct {
	Target   Watchable
	Type     string
	Property string
	NewValue any
}

// subscription is a single handler registration. Cancelled subscriptions are
// tombstoned rather than spliced so that cancelling from inside a handler is
// safe during delivery.
type subscription struct {
	eventType string
	handler   func(Event)
	cancelled bool
}

// Bus is a per-movie publish/subscribe mechanism. Delivery is synchronous
// and in registration order, on the same call stack as the publish — no
// batching, no debouncing (etro is single-threaded).
//
// Event types form a dotted hierarchy: a subscription to "layer.change"
// receives "layer.change.modify", and a subscription to "layer" receives
// every layer event.
type Bus struct {
	subs map[Watchable][]*subscription
}

func newBus() *Bus {
	return &Bus{subs: make(map[Watchable][]*subscription)}
}

// Subscribe registers a handler for events of the given type (or any dotted
// subtype) published on target. The returned function cancels the
// subscription; calling it more than once is harmless.
func (b *Bus) Subscribe(target Watchable, eventType string, handler func(Event)) func() {
	if handler == nil {
		panic("etro: cannot subscribe with a nil handler")
	}
	s := &subscription{eventType: eventType, handler: handler}
	b.subs[target] = append(b.subs[target], s)
	return func() { s.cancelled = true }
}

// Publish delivers an event of the given type to every live subscription on
// target whose type matches. Target and Type on the event are overwritten
// with the publish arguments.
func (b *Bus) Publish(target Watchable, eventType string, event Event) {
	event.Target = target
	event.Type = eventType
	// Snapshot the slice header: handlers may subscribe during delivery,
	// and appended subscriptions must not see this event.
	subs := b.subs[target]
	for _, s := range subs {
		if s.cancelled || !typeMatches(eventType, s.eventType) {
			continue
		}
		s.handler(event)
	}
}

// typeMatches reports whether a published event type falls under a
// subscribed type in the dotted hierarchy.
func typeMatches(published, subscribed string) bool {
	if published == subscribed {
		return true
	}
	return strings.HasPrefix(published, subscribed) &&
		len(published) > len(subscribed) &&
		published[len(subscribed)] == '.'
}

// Subscribe registers a handler on the target's movie bus. Panics if the
// target is not attached to a movie (there is no bus to subscribe to).
// The returned function cancels the subscription.
func Subscribe(target Watchable, eventType string, handler func(Event)) func() {
	root := target.Root()
	if root == nil {
		panic("etro: cannot subscribe: target is not attached to a movie")
	}
	return root.bus.Subscribe(target, eventType, handler)
}

// Publish delivers an event on the target's movie bus. Publishing on a
// target with no movie is a no-op: with no bus there can be no subscribers.
func Publish(target Watchable, eventType string, event Event) {
	root := target.Root()
	if root == nil {
		return
	}
	root.bus.Publish(target, eventType, event)
}
