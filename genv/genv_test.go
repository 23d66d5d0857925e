// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package genv

import (
	"testing"

	"github.com/snncore/gennsl/gtype"
	"github.com/snncore/gennsl/merge"
	"github.com/snncore/gennsl/model"
)

func TestInnerShadowsOuter(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Bind("V", Binding{Type: gtype.ScalarType, Writable: false, Expand: "outerV"})
	inner := NewEnvironment(outer)
	inner.Bind("V", Binding{Type: gtype.ScalarType, Writable: true, Expand: "innerV"})

	b, ok := inner.Lookup("V")
	if !ok || b.Expand != "innerV" {
		t.Fatalf("expected inner binding to shadow outer, got %+v", b)
	}
	b2, ok := outer.Lookup("V")
	if !ok || b2.Expand != "outerV" {
		t.Fatalf("expected outer binding to be unaffected, got %+v", b2)
	}
}

func TestUnknownIdentifierFails(t *testing.T) {
	e := NewEnvironment(nil)
	if _, ok := e.Lookup("nope"); ok {
		t.Fatalf("expected lookup to fail for unbound name")
	}
}

func TestFieldEnvironmentHomogeneity(t *testing.T) {
	m := model.NewModel("test")
	a, _ := m.AddNeuronPopulation("A", 10, model.NeuronModel{SimCode: "V += 1.0;"})
	b, _ := m.AddNeuronPopulation("B", 20, model.NeuronModel{SimCode: "V += 1.0;"})
	mg := &merge.MergedGroup[*model.NeuronGroup]{Members: []*model.NeuronGroup{a, b}}

	fenv := NewFieldEnvironment(nil, mg)
	fenv.BindField("a", gtype.ScalarType, []float64{0.02, 0.02}, "group->a[idx]", false)
	f, ok := mg.Field("a")
	if !ok || !f.Homogeneous {
		t.Fatalf("expected homogeneous field registration, got %+v", f)
	}
	bnd, ok := fenv.Lookup("a")
	if !ok || bnd.Expand != "group->a[idx]" {
		t.Fatalf("expected field binding to be resolvable, got %+v", bnd)
	}
}

type constAdapter struct{ read, write string }

func (c constAdapter) ReadExpr() string  { return c.read }
func (c constAdapter) WriteExpr() string { return c.write }

func TestLocalVarCacheMaterializeOnce(t *testing.T) {
	m := model.NewModel("test")
	a, _ := m.AddNeuronPopulation("A", 10, model.NeuronModel{SimCode: "V += 1.0;"})
	mg := &merge.MergedGroup[*model.NeuronGroup]{Members: []*model.NeuronGroup{a}}
	fenv := NewFieldEnvironment(nil, mg)
	cache := NewLocalVarCache(fenv)

	decl := cache.MaterializeLocal("V", gtype.ScalarType, constAdapter{read: "group->V[ridx]", write: "group->V[widx]"}, true)
	if decl == "" {
		t.Fatalf("expected a declaration on first materialisation")
	}
	decl2 := cache.MaterializeLocal("V", gtype.ScalarType, constAdapter{read: "group->V[ridx]", write: "group->V[widx]"}, true)
	if decl2 != "" {
		t.Fatalf("expected no declaration on second materialisation, got %q", decl2)
	}
	flushed := cache.Flush()
	if len(flushed) != 1 || flushed[0] != "group->V[widx] = V;" {
		t.Fatalf("unexpected flush output: %v", flushed)
	}
}
