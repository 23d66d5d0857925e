// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"strings"
	"testing"

	"github.com/snncore/gennsl/backend"
	"github.com/snncore/gennsl/backend/refc"
	"github.com/snncore/gennsl/merge"
	"github.com/snncore/gennsl/model"
)

func izhikevich() model.NeuronModel {
	return model.NeuronModel{
		Params: []model.Param{{Name: "a", Value: 0.02}},
		Vars: []model.Variable{
			{Name: "V", Access: model.ReadWrite, Init: model.VarInit{Kind: model.InitConstant, Value: -65}},
			{Name: "U", Access: model.ReadWrite, Init: model.VarInit{Kind: model.InitConstant, Value: -13}},
		},
		SimCode:            "V += 0.04 * V * V + 5.0 * V + 140.0 - U + Isyn;",
		ThresholdCondition: "V >= 30.0",
		ResetCode:          "V = -65.0; U += 2.0;",
	}
}

func newEmitter() *Emitter {
	b := refc.New(backend.DefaultPreferences())
	m := model.NewModel("test")
	return NewEmitter(b, m.TypeContext())
}

func TestEmitNeuronUpdateIncludesSimAndReset(t *testing.T) {
	m := model.NewModel("test")
	ng, err := m.AddNeuronPopulation("Pop0", 4, izhikevich())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Finalise(1.0); err != nil {
		t.Fatalf("unexpected finalise error: %v", err)
	}
	merged := merge.PartitionNeuronGroups([]*model.NeuronGroup{ng})
	e := newEmitter()
	out, err := e.EmitNeuronUpdate(NeuronUpdatePlan{Neurons: merged[0]})
	if err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if !strings.Contains(out, "Isyn") {
		t.Fatalf("expected emitted code to reference Isyn, got:\n%s", out)
	}
	if !strings.Contains(out, "spike = true") {
		t.Fatalf("expected emitted code to set spike flag, got:\n%s", out)
	}
}

func TestEmitNeuronUpdateNoThresholdOmitsSpikeLogic(t *testing.T) {
	m := model.NewModel("test")
	nm := izhikevich()
	nm.ThresholdCondition = ""
	ng, err := m.AddNeuronPopulation("Pop0", 4, nm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Finalise(1.0); err != nil {
		t.Fatalf("unexpected finalise error: %v", err)
	}
	merged := merge.PartitionNeuronGroups([]*model.NeuronGroup{ng})
	e := newEmitter()
	out, err := e.EmitNeuronUpdate(NeuronUpdatePlan{Neurons: merged[0]})
	if err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if strings.Contains(out, "spike = true") {
		t.Fatalf("expected no spike logic without a threshold condition, got:\n%s", out)
	}
}

func TestEmitPresynapticUpdateRegisterAccumulation(t *testing.T) {
	m := model.NewModel("test")
	src, _ := m.AddNeuronPopulation("Src", 4, izhikevich())
	trg, _ := m.AddNeuronPopulation("Trg", 4, izhikevich())
	wum := model.WeightUpdateModel{
		Vars:    []model.Variable{{Name: "g", Access: model.ReadOnly, Init: model.VarInit{Kind: model.InitConstant, Value: 1.0}}},
		SimCode: "addToInSyn(g);",
	}
	sg, err := m.AddSynapsePopulation("S", src, trg, model.MatrixType{Connectivity: model.Dense}, wum, model.PostsynapticModel{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sg.Span = model.PresynapticSpan
	if err := m.Finalise(1.0); err != nil {
		t.Fatalf("unexpected finalise error: %v", err)
	}
	merged := merge.PartitionSynapseGroupsWU([]*model.SynapseGroup{sg})
	e := newEmitter()
	out, err := e.EmitPresynapticUpdate(merged[0])
	if err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if !strings.Contains(out, "scalar linSyn") {
		t.Fatalf("expected register accumulation for a dense-matrix group, got:\n%s", out)
	}
}

func TestNeedsPostsynapticRemap(t *testing.T) {
	e := newEmitter() // refc backend never requires a remap
	sg := &model.SynapseGroup{WUM: model.WeightUpdateModel{PostLearnCode: "w += 1;"}}
	if e.needsPostsynapticRemap(sg) {
		t.Fatalf("refc backend never requires a postsynaptic remap")
	}
}

func TestEmitVarInitConstant(t *testing.T) {
	e := newEmitter()
	v := model.Variable{Name: "V", Init: model.VarInit{Kind: model.InitConstant, Value: -65}}
	out := e.EmitVarInit("group->V[id]", v)
	if !strings.Contains(out, "-65") {
		t.Fatalf("expected constant initialiser to render its value, got: %s", out)
	}
}

func TestNarrowSparseIndexType(t *testing.T) {
	cases := map[int]string{10: "uint8_t", 300: "uint16_t", 100000: "uint32_t"}
	for maxRow, want := range cases {
		if got := narrowSparseIndexType(maxRow); got != want {
			t.Fatalf("narrowSparseIndexType(%d) = %s, want %s", maxRow, got, want)
		}
	}
}
