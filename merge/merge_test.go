// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package merge

import (
	"testing"

	"github.com/snncore/gennsl/gtype"
	"github.com/snncore/gennsl/model"
)

func izhikevich() model.NeuronModel {
	return model.NeuronModel{
		Params: []model.Param{{Name: "a", Value: 0.02}},
		Vars: []model.Variable{
			{Name: "V", Access: model.ReadWrite, Init: model.VarInit{Kind: model.InitConstant, Value: -65}},
		},
		SimCode:            "V += a;",
		ThresholdCondition: "V >= 30.0",
		ResetCode:          "V = -65.0;",
	}
}

func TestPartitionIdenticalGroupsFuse(t *testing.T) {
	m := model.NewModel("test")
	a, _ := m.AddNeuronPopulation("A", 10, izhikevich())
	b, _ := m.AddNeuronPopulation("B", 20, izhikevich())
	parts := PartitionNeuronGroups([]*model.NeuronGroup{a, b})
	if len(parts) != 1 {
		t.Fatalf("expected one merged group for two structurally identical populations, got %d", len(parts))
	}
	if len(parts[0].Members) != 2 {
		t.Fatalf("expected both groups to be members, got %d", len(parts[0].Members))
	}
	if parts[0].Archetype() != a {
		t.Fatalf("expected the first-declared group to be the archetype")
	}
}

func TestPartitionDifferentGroupsDoNotFuse(t *testing.T) {
	m := model.NewModel("test")
	a, _ := m.AddNeuronPopulation("A", 10, izhikevich())
	other := izhikevich()
	other.SimCode = "V += 2.0 * a;"
	b, _ := m.AddNeuronPopulation("B", 10, other)
	parts := PartitionNeuronGroups([]*model.NeuronGroup{a, b})
	if len(parts) != 2 {
		t.Fatalf("expected two merged groups for structurally different populations, got %d", len(parts))
	}
}

func TestHeterogeneousFieldBecomesField(t *testing.T) {
	m := model.NewModel("test")
	a, _ := m.AddNeuronPopulation("A", 10, izhikevich())
	b, _ := m.AddNeuronPopulation("B", 20, izhikevich())
	parts := PartitionNeuronGroups([]*model.NeuronGroup{a, b})
	mg := parts[0]

	// homogeneous: both have the same per-member value
	mg.AddField("a", gtype.ScalarType, []float64{0.02, 0.02})
	f, _ := mg.Field("a")
	if !f.Homogeneous {
		t.Fatalf("expected field 'a' to be homogeneous")
	}

	// heterogeneous: NumNeurons differs between members
	mg.AddField("numNeurons", gtype.Named(gtype.Int32), []float64{10, 20})
	f2, _ := mg.Field("numNeurons")
	if f2.Homogeneous {
		t.Fatalf("expected field 'numNeurons' to be heterogeneous")
	}
}

func TestMergedSynapseGroupInSynArchetypeOnly(t *testing.T) {
	m := model.NewModel("test")
	src, _ := m.AddNeuronPopulation("Src", 10, izhikevich())
	trg, _ := m.AddNeuronPopulation("Trg", 10, izhikevich())
	sgA, _ := m.AddSynapsePopulation("SA", src, trg, model.MatrixType{Connectivity: model.Dense}, model.WeightUpdateModel{}, model.PostsynapticModel{})
	sgB, _ := m.AddSynapsePopulation("SB", src, trg, model.MatrixType{Connectivity: model.Dense}, model.WeightUpdateModel{}, model.PostsynapticModel{})
	parts := PartitionSynapseGroupsPS([]*model.SynapseGroup{sgA, sgB})
	if len(parts) != 1 {
		t.Fatalf("expected both groups to partition into one merged PS group, got %d", len(parts))
	}
	mg := parts[0]
	if !mg.InSynReadableBy(sgA) {
		t.Fatalf("expected the archetype to be able to read InSyn")
	}
	if mg.InSynReadableBy(sgB) {
		t.Fatalf("expected a fused consumer to NOT be able to read InSyn directly")
	}
}
