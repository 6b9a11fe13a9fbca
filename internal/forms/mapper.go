package forms

import "sort"

// MapFieldError registers every message the API returned for fieldName on
// fieldPath, in order. It does nothing when fieldName is absent.
//
// Calls are not idempotent: mapping the same payload twice registers every
// message twice.
func MapFieldError(payload map[string][]string, fieldName, fieldPath string, set ErrorSetter) {
	msgs, ok := payload[fieldName]
	if !ok {
		return
	}
	for _, msg := range msgs {
		set.SetError(fieldPath, msg)
	}
}

// Bindings maps API field names to form paths for one form.
type Bindings map[string]string

// nonFieldKeys carry errors not attributable to a single input.
var nonFieldKeys = []string{"non_field_errors", "detail"}

// Bind maps the whole payload through b. Keys that are neither bound nor
// known non-field keys are ignored. Bound fields are processed in sorted
// order so the output does not depend on map iteration.
func Bind(payload map[string][]string, b Bindings, set ErrorSetter) {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		MapFieldError(payload, name, b[name], set)
	}
	for _, name := range nonFieldKeys {
		if _, bound := b[name]; !bound {
			MapFieldError(payload, name, RootPath, set)
		}
	}
}

// Paths returns the form paths b can produce, RootPath included.
func (b Bindings) Paths() []string {
	seen := map[string]struct{}{RootPath: {}}
	out := []string{RootPath}
	for _, p := range b {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
