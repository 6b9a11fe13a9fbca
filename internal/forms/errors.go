// Package forms holds the form schemas shared by every presentation layer,
// their validation, and the mapping of API field errors onto form paths.
package forms

import (
	"encoding/json"
	"sort"
)

// RootPath addresses errors that belong to the form as a whole.
const RootPath = ""

// ErrorSetter registers one error message against a form path.
type ErrorSetter interface {
	SetError(path, message string)
}

// Errors collects per-path messages in registration order.
type Errors struct {
	fields map[string][]string
}

func NewErrors() *Errors {
	return &Errors{fields: map[string][]string{}}
}

func (e *Errors) SetError(path, message string) {
	e.fields[path] = append(e.fields[path], message)
}

// Get returns the messages registered on path.
func (e *Errors) Get(path string) []string {
	return e.fields[path]
}

// Len is the total number of registered messages.
func (e *Errors) Len() int {
	n := 0
	for _, msgs := range e.fields {
		n += len(msgs)
	}
	return n
}

func (e *Errors) Empty() bool { return e.Len() == 0 }

// Paths lists the paths that carry at least one message, sorted.
func (e *Errors) Paths() []string {
	paths := make([]string, 0, len(e.fields))
	for p, msgs := range e.fields {
		if len(msgs) > 0 {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// Fields returns a copy of the collected errors.
func (e *Errors) Fields() map[string][]string {
	out := make(map[string][]string, len(e.fields))
	for p, msgs := range e.fields {
		out[p] = append([]string(nil), msgs...)
	}
	return out
}

func (e *Errors) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.fields)
}
