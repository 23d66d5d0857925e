// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"strings"

	"github.com/snncore/gennsl/dsl"
)

// CodeTokens is a user-supplied code fragment, scanned exactly once at IR
// construction time. Every downstream component (hashing, type-checking,
// emission) works from the parsed Fragment, never from the raw string —
// the one exception being identifier-reference queries such as the
// delay-requirement scan in Finalise, which only need to know whether a
// name like "V_pre" occurs anywhere in the source.
type CodeTokens struct {
	Context string
	Source  string
	Frag    *dsl.Fragment
}

// NewCodeTokens scans src immediately, attributing diagnostics to context
// (e.g. "NeuronGroup 'Pop0' sim code"). A scan error is folded into
// ErrSyntax carrying that context.
func NewCodeTokens(src, context string) (CodeTokens, error) {
	errs := &dsl.ErrorHandler{}
	frag := dsl.Parse(src, context, errs)
	if errs.HasErrors() {
		return CodeTokens{}, &FragmentError{Context: context, Diagnostics: errs.Diagnostics}
	}
	return CodeTokens{Context: context, Source: src, Frag: frag}, nil
}

// ReferencesIdentifier reports whether name appears anywhere in the raw
// source text of the fragment. This is intentionally a textual check, not
// an AST walk: the delay-requirement scan in Finalise only needs to know
// whether a name like "V_pre" occurs, and many of the names it searches
// for (st_pre, prev_set_pre, ...) are not bound in any Scope at scan time.
func (c CodeTokens) ReferencesIdentifier(name string) bool {
	return strings.Contains(c.Source, name)
}

// FragmentError reports one or more diagnostics raised while scanning,
// parsing, or type-checking a single named code fragment.
type FragmentError struct {
	Context     string
	Diagnostics []dsl.Diagnostic
}

func (e *FragmentError) Error() string {
	var b strings.Builder
	b.WriteString(e.Context)
	b.WriteString(": ")
	for i, d := range e.Diagnostics {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(d.String())
	}
	return b.String()
}

func (e *FragmentError) Unwrap() error { return ErrSyntax }
