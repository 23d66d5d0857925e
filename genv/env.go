// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package genv implements the layered name-resolution environments the
// kernel emitter opens over a merged group while transpiling one of its
// code fragments. Environment (and the layers built on top of it,
// EnvironmentGroupMergedField and EnvironmentLocalVarCache) satisfy the
// dsl.Scope interface, so the transpiler's type-checker and printer can
// resolve and expand identifiers without importing anything about models
// or merging.
package genv

import "github.com/snncore/gennsl/dsl"

// Binding is an alias for dsl.Symbol: what a name resolves to (type,
// writability, expansion text). Kept as a local name in this package so
// call sites read naturally even though it's the same type the
// transpiler consumes directly.
type Binding = dsl.Symbol

// EnvironmentExternalBase is the root of an environment chain: an inner
// scope that binds names directly, with an optional outer scope to fall
// back to when a name isn't found locally (§4.5's "inner-first, falling
// back to the outer environment").
type EnvironmentExternalBase struct {
	outer  *EnvironmentExternalBase
	vars   map[string]Binding
	sigils map[string]Binding
	funcs  map[string]int

	// order preserves the lexical order bindings were added in, so that
	// callers needing "every binding added so far" (e.g. a local-var
	// cache flush) see them in declaration order.
	order []string
}

// NewEnvironment returns a fresh environment chained to outer (which may
// be nil for a top-level scope).
func NewEnvironment(outer *EnvironmentExternalBase) *EnvironmentExternalBase {
	return &EnvironmentExternalBase{
		outer:  outer,
		vars:   map[string]Binding{},
		sigils: map[string]Binding{},
		funcs:  map[string]int{},
	}
}

// Bind adds a plain-identifier binding, returning initLines(), which is
// always nil: no environment in this package accumulates initialiser
// lines (EnvironmentLocalVarCache.MaterializeLocal returns its
// declaration text directly instead).
func (e *EnvironmentExternalBase) Bind(name string, b Binding) []string {
	e.vars[name] = b
	e.order = append(e.order, name)
	return e.initLines()
}

// BindSigil adds a $(name)/$(N) binding.
func (e *EnvironmentExternalBase) BindSigil(name string, b Binding) {
	e.sigils[name] = b
}

// BindFunc registers a callable name with its fixed arity; arity < 0
// means "variadic" (any argument count is accepted).
func (e *EnvironmentExternalBase) BindFunc(name string, arity int) {
	e.funcs[name] = arity
}

// initLines returns the declaration text surfaced alongside a Bind call;
// the base environment has none, and no layer built on it adds any.
func (e *EnvironmentExternalBase) initLines() []string { return nil }

// Lookup implements dsl.Scope.
func (e *EnvironmentExternalBase) Lookup(name string) (Binding, bool) {
	if b, ok := e.vars[name]; ok {
		return b, true
	}
	if e.outer != nil {
		return e.outer.Lookup(name)
	}
	return Binding{}, false
}

// LookupSigil implements dsl.Scope.
func (e *EnvironmentExternalBase) LookupSigil(name string) (Binding, bool) {
	if b, ok := e.sigils[name]; ok {
		return b, true
	}
	if e.outer != nil {
		return e.outer.LookupSigil(name)
	}
	return Binding{}, false
}

// Call implements dsl.Scope.
func (e *EnvironmentExternalBase) Call(name string) (int, bool) {
	if a, ok := e.funcs[name]; ok {
		return a, true
	}
	if e.outer != nil {
		return e.outer.Call(name)
	}
	return 0, false
}

// BindBuiltins registers the fixed set of built-in math functions every
// code fragment may call regardless of which model declared it.
func (e *EnvironmentExternalBase) BindBuiltins() {
	for name, arity := range map[string]int{
		"exp": 1, "log": 1, "sqrt": 1, "fabs": 1, "sin": 1, "cos": 1, "tanh": 1,
		"fmaxf": 2, "fminf": 2, "pow": 2, "atan2": 2,
		"injectCurrent": 1, "addToPostDelay": 2, "addToPre": 1, "addToInSyn": 1,
	} {
		e.BindFunc(name, arity)
	}
}
