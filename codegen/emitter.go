// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package codegen is the kernel emitter: it walks merged groups (package
// merge), opens genv environments over their fields, runs each code
// fragment through the dsl transpiler, and assembles the result into
// complete neuron-update, presynaptic-update, postsynaptic-update, and
// init kernels against a chosen backend.Backend.
package codegen

import (
	"fmt"
	"strings"

	"github.com/snncore/gennsl/backend"
	"github.com/snncore/gennsl/dsl"
	"github.com/snncore/gennsl/genv"
	"github.com/snncore/gennsl/gtype"
)

// Emitter holds everything a single emission pass needs: the target
// backend contract and the model's precision policy.
type Emitter struct {
	Backend backend.Backend
	TC      *gtype.TypeContext
}

// NewEmitter returns an Emitter targeting b under the given type context.
func NewEmitter(b backend.Backend, tc *gtype.TypeContext) *Emitter {
	return &Emitter{Backend: b, TC: tc}
}

// transpile runs one already-parsed fragment through type-checking and
// pretty-printing against scope, returning the rendered source or a
// FragmentError wrapping every diagnostic found. It is the single choke
// point every emission helper in this package calls through, so fragment
// error accumulation behaves identically everywhere (§4.4/§7: an error
// aborts only *that* fragment's emission).
func (e *Emitter) transpile(frag *dsl.Fragment, context string, scope dsl.Scope) (string, error) {
	if frag == nil {
		return "", nil
	}
	errs := &dsl.ErrorHandler{}
	dsl.NewChecker(scope, e.TC, errs).Check(frag)
	if errs.HasErrors() {
		return "", &TranspileError{Context: context, Diagnostics: errs.Diagnostics}
	}
	return dsl.NewPrinter(scope).Print(frag), nil
}

// TranspileError reports every diagnostic found type-checking one code
// fragment during emission.
type TranspileError struct {
	Context     string
	Diagnostics []dsl.Diagnostic
}

func (e *TranspileError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: ", e.Context)
	for i, d := range e.Diagnostics {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(d.String())
	}
	return b.String()
}

// builtinScope returns a base environment with the standard math/update
// built-in functions bound, suitable as the outermost layer of any
// per-group environment chain.
func builtinScope() *genv.EnvironmentExternalBase {
	e := genv.NewEnvironment(nil)
	e.BindBuiltins()
	return e
}

// indexAdapter is the genv.ArrayAdapter for a plain per-member array
// indexed by a fixed index expression, with no delay offsetting.
type indexAdapter struct {
	field, index string
}

func (a indexAdapter) ReadExpr() string  { return fmt.Sprintf("%s[%s]", a.field, a.index) }
func (a indexAdapter) WriteExpr() string { return fmt.Sprintf("%s[%s]", a.field, a.index) }

// delayAdapter is the genv.ArrayAdapter for a delay-queued array, where
// reads and writes target different ring-buffer slots.
type delayAdapter struct {
	field, readIdx, writeIdx string
}

func (a delayAdapter) ReadExpr() string  { return fmt.Sprintf("%s[%s]", a.field, a.readIdx) }
func (a delayAdapter) WriteExpr() string { return fmt.Sprintf("%s[%s]", a.field, a.writeIdx) }
