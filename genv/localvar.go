// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package genv

import (
	"fmt"

	"github.com/snncore/gennsl/gtype"
)

// ArrayAdapter supplies the backend-specific source text a local-var
// cache needs to materialise and flush one variable: where to read it
// from (honouring the read-slot delay offset, if any) and where to write
// it back to (honouring the write-slot offset).
type ArrayAdapter interface {
	ReadExpr() string
	WriteExpr() string
}

type cachedLocal struct {
	Name     string
	Type     gtype.ResolvedType
	Adapter  ArrayAdapter
	Writable bool
}

// EnvironmentLocalVarCache layers register-level local-variable caching
// on top of a field environment: the first read of a variable emits a
// typed local declaration seeded from the backing array; every
// subsequent read or write inside the same environment targets that
// local directly; Flush writes any writable local back to its backing
// array, honouring the delay-aware write-slot offset the ArrayAdapter
// supplies.
type EnvironmentLocalVarCache[T any] struct {
	*EnvironmentGroupMergedField[T]
	locals []cachedLocal
	seen   map[string]bool
}

// NewLocalVarCache returns a local-var-caching environment layered over
// field.
func NewLocalVarCache[T any](field *EnvironmentGroupMergedField[T]) *EnvironmentLocalVarCache[T] {
	return &EnvironmentLocalVarCache[T]{
		EnvironmentGroupMergedField: field,
		seen:                        map[string]bool{},
	}
}

// MaterializeLocal binds name to a fresh local variable on first call,
// returning the declaration statement to emit ahead of the fragment
// ("scalar V = group->V[readIdx];"); on any later call for the same name
// it returns an empty string (nothing left to declare) while still
// leaving the existing binding in place.
func (c *EnvironmentLocalVarCache[T]) MaterializeLocal(name string, typ gtype.ResolvedType, adapter ArrayAdapter, writable bool) string {
	if c.seen[name] {
		return ""
	}
	c.seen[name] = true
	c.locals = append(c.locals, cachedLocal{Name: name, Type: typ, Adapter: adapter, Writable: writable})
	c.Bind(name, Binding{Type: typ, Writable: writable, Expand: name})
	return fmt.Sprintf("%s %s = %s;", typ.String(), name, adapter.ReadExpr())
}

// Flush returns the write-back statement for every writable local that
// was materialised in this environment, in the order they were first
// used, so that on scope exit generated code commits every register
// value it mutated back to the backing array.
func (c *EnvironmentLocalVarCache[T]) Flush() []string {
	var out []string
	for _, l := range c.locals {
		if !l.Writable {
			continue
		}
		out = append(out, fmt.Sprintf("%s = %s;", l.Adapter.WriteExpr(), l.Name))
	}
	return out
}
