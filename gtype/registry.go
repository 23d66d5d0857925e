// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gtype

import "fmt"

// Registry is the explicit, non-global replacement for the "register a
// snippet type at package init time into a global map" pattern: callers
// that want a library of reusable named model snippets (built-in neuron
// models, weight-update models, function substitutions, ...) build one
// explicitly and thread it through a TypeContext, rather than relying on
// import-time side effects. Any package layered above gtype can key its
// own snippet types into a Registry without gtype needing to know their
// concrete type.
type Registry struct {
	entries map[string]any
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]any)}
}

// Register adds v under name. It fails if name is already registered,
// since silently shadowing a built-in model is almost always a mistake.
func (r *Registry) Register(name string, v any) error {
	if name == "" {
		return fmt.Errorf("gtype: registry: empty name")
	}
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("gtype: registry: %q already registered", name)
	}
	r.entries[name] = v
	return nil
}

// MustRegister panics on failure; intended for package-level built-in
// tables assembled once at program startup from a fixed literal list,
// where a duplicate name is a programming error, not a runtime condition.
func (r *Registry) MustRegister(name string, v any) {
	if err := r.Register(name, v); err != nil {
		panic(err)
	}
}

// Lookup returns the value registered under name, if any.
func (r *Registry) Lookup(name string) (any, bool) {
	v, ok := r.entries[name]
	return v, ok
}

// Names returns every registered name, unordered.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	return names
}
