package etro

import "fmt"

// OptionTarget is a watchable node that declares construction-time options.
// DefaultOptions must return the full option map for the kind, including
// every key from the embedded base kind's defaults (chained, not replaced):
// a VisualLayer accepts "startTime" because Layer declares it.
type OptionTarget interface {
	Watchable
	DefaultOptions() map[string]any
}

// InvalidOptionError reports an option key that is not declared by the
// target kind or any of its base kinds.
type InvalidOptionError struct {
	Type string
	Key  string
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("etro: invalid option %q for type %q", e.Key, e.Type)
}

// ApplyOptions merges caller-supplied options into target's property store.
//
// Every supplied key must appear in target.DefaultOptions(); an unknown key
// aborts the whole merge with an *InvalidOptionError before anything is
// assigned. For each declared key the precedence is: state already set on
// the target (never overwritten, even by an explicitly supplied option),
// then the supplied option, then the declared default. Nil defaults mark a
// key as accepted but leave it unset.
func ApplyOptions(options map[string]any, target OptionTarget) error {
	defaults := target.DefaultOptions()
	for key := range options {
		if _, ok := defaults[key]; !ok {
			return &InvalidOptionError{Type: target.Type(), Key: key}
		}
	}
	for key, def := range defaults {
		if existing, ok := target.Get(key); ok && existing != nil {
			continue
		}
		if supplied, ok := options[key]; ok {
			target.Set(key, supplied)
		} else if def != nil {
			target.Set(key, def)
		}
	}
	return nil
}
