// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dsl

import "github.com/snncore/gennsl/gtype"

// Symbol describes what an identifier or sigil reference resolves to: its
// type, whether it may appear on the left of an assignment, and the
// concrete source text the printer should substitute for it.
type Symbol struct {
	Type     gtype.ResolvedType
	Writable bool
	Expand   string
}

// Scope is the minimal contract the type-checker and printer need from an
// environment. It is defined here, rather than importing the genv package
// directly, so that dsl has no dependency on the merging/fusion pass or on
// any particular kind of model group; genv's environment types satisfy
// this interface instead of dsl depending on them.
type Scope interface {
	// Lookup resolves a plain identifier (from an Ident node).
	Lookup(name string) (Symbol, bool)
	// LookupSigil resolves a $(name) or $(N) reference (from a SigilRef
	// node). N-form references are positional parameters of a
	// function-like code substitution, e.g. a weight-update "event code"
	// snippet inserted into a spike-processing loop.
	LookupSigil(name string) (Symbol, bool)
	// Call resolves a function-style call name to its arity, or reports
	// it unknown. Built-in math functions (exp, fmaxf, ...) as well as
	// user-declared support-code functions both go through this.
	Call(name string) (arity int, ok bool)
}
