// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dsl

import (
	"strings"
	"testing"

	"github.com/snncore/gennsl/gtype"
)

// mockScope is a tiny Scope implementation used only by this package's
// own tests, standing in for a real genv environment.
type mockScope struct {
	vars  map[string]Symbol
	sigil map[string]Symbol
	fns   map[string]int
}

func newMockScope() *mockScope {
	return &mockScope{vars: map[string]Symbol{}, sigil: map[string]Symbol{}, fns: map[string]int{
		"exp": 1, "fmaxf": 2,
	}}
}

func (m *mockScope) Lookup(name string) (Symbol, bool) {
	s, ok := m.vars[name]
	return s, ok
}
func (m *mockScope) LookupSigil(name string) (Symbol, bool) {
	s, ok := m.sigil[name]
	return s, ok
}
func (m *mockScope) Call(name string) (int, bool) {
	a, ok := m.fns[name]
	return a, ok
}

func TestParseAndPrintRoundTrip(t *testing.T) {
	scope := newMockScope()
	scope.vars["V"] = Symbol{Type: gtype.ScalarType, Writable: true, Expand: "group->V[idx]"}
	scope.vars["a"] = Symbol{Type: gtype.ScalarType, Writable: false}

	src := `V += a * (V - 1.0) * DT; if (V > 30.0) { V = -65.0; }`
	errs := &ErrorHandler{}
	frag := Parse(src, "test fragment", errs)
	if errs.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", errs.Diagnostics)
	}
	if len(frag.List) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(frag.List))
	}

	scope.vars["DT"] = Symbol{Type: gtype.ScalarType, Writable: false}
	tc := gtype.NewTypeContext()
	checker := NewChecker(scope, tc, errs)
	checker.Check(frag)
	if errs.HasErrors() {
		t.Fatalf("unexpected type errors: %v", errs.Diagnostics)
	}

	out := NewPrinter(scope).Print(frag)
	if !strings.Contains(out, "group->V[idx]") {
		t.Fatalf("expected identifier expansion in output, got: %s", out)
	}
}

func TestCheckerRejectsUnknownIdentifier(t *testing.T) {
	scope := newMockScope()
	errs := &ErrorHandler{}
	frag := Parse("x = 1.0;", "bad fragment", errs)
	tc := gtype.NewTypeContext()
	NewChecker(scope, tc, errs).Check(frag)
	if !errs.HasErrors() {
		t.Fatalf("expected an unknown-identifier diagnostic")
	}
}

func TestCheckerRejectsReadOnlyWrite(t *testing.T) {
	scope := newMockScope()
	scope.vars["a"] = Symbol{Type: gtype.ScalarType, Writable: false}
	errs := &ErrorHandler{}
	frag := Parse("a = 1.0;", "readonly fragment", errs)
	tc := gtype.NewTypeContext()
	NewChecker(scope, tc, errs).Check(frag)
	if !errs.HasErrors() {
		t.Fatalf("expected a write-to-read-only diagnostic")
	}
}

func TestCheckerRejectsWrongArity(t *testing.T) {
	scope := newMockScope()
	errs := &ErrorHandler{}
	frag := Parse("var y scalar = exp(1.0, 2.0);", "arity fragment", errs)
	tc := gtype.NewTypeContext()
	NewChecker(scope, tc, errs).Check(frag)
	if !errs.HasErrors() {
		t.Fatalf("expected a wrong-arity diagnostic")
	}
}

func TestSigilReference(t *testing.T) {
	scope := newMockScope()
	scope.sigil["0"] = Symbol{Type: gtype.ScalarType, Writable: false, Expand: "event->weight"}
	errs := &ErrorHandler{}
	frag := Parse("var w scalar = $(0);", "event code", errs)
	if errs.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", errs.Diagnostics)
	}
	tc := gtype.NewTypeContext()
	NewChecker(scope, tc, errs).Check(frag)
	if errs.HasErrors() {
		t.Fatalf("unexpected type errors: %v", errs.Diagnostics)
	}
	out := NewPrinter(scope).Print(frag)
	if !strings.Contains(out, "event->weight") {
		t.Fatalf("expected sigil expansion in output, got: %s", out)
	}
}

func TestForLoopParsing(t *testing.T) {
	errs := &ErrorHandler{}
	src := `for (var i int = 0; i < 10; i++) { i = i + 1; }`
	frag := Parse(src, "loop fragment", errs)
	if errs.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", errs.Diagnostics)
	}
	fs, ok := frag.List[0].(*ForStmt)
	if !ok {
		t.Fatalf("expected a ForStmt, got %T", frag.List[0])
	}
	if fs.Cond == nil || fs.Post == nil || fs.Init == nil {
		t.Fatalf("expected all three for-clauses to be populated")
	}
}
