// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"errors"
	"testing"
)

func newIzhikevichModel() NeuronModel {
	return NeuronModel{
		Params: []Param{{Name: "a", Value: 0.02}, {Name: "b", Value: 0.2}},
		Vars: []Variable{
			{Name: "V", Access: ReadWrite, Init: VarInit{Kind: InitConstant, Value: -65}},
			{Name: "U", Access: ReadWrite, Init: VarInit{Kind: InitConstant, Value: -13}},
		},
		SimCode:            "V += 0.04 * V * V + 5.0 * V + 140.0 - U + Isyn;",
		ThresholdCondition: "V >= 30.0",
		ResetCode:          "V = c; U += d;",
	}
}

func TestAddNeuronPopulationDuplicateName(t *testing.T) {
	m := NewModel("test")
	if _, err := m.AddNeuronPopulation("Pop0", 10, newIzhikevichModel()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := m.AddNeuronPopulation("Pop0", 10, newIzhikevichModel())
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestFrozenRejectsMutation(t *testing.T) {
	m := NewModel("test")
	if _, err := m.AddNeuronPopulation("Pop0", 10, newIzhikevichModel()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Finalise(1.0); err != nil {
		t.Fatalf("unexpected finalise error: %v", err)
	}
	if _, err := m.AddNeuronPopulation("Pop1", 10, newIzhikevichModel()); !errors.Is(err, ErrFrozen) {
		t.Fatalf("expected ErrFrozen, got %v", err)
	}
}

func TestFinaliseIdempotent(t *testing.T) {
	m := NewModel("test")
	if _, err := m.AddNeuronPopulation("Pop0", 10, newIzhikevichModel()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Finalise(1.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Finalise(1.0); err != nil {
		t.Fatalf("second Finalise call should be a no-op, got: %v", err)
	}
}

func TestSyntaxErrorSurfacesImmediately(t *testing.T) {
	m := NewModel("test")
	bad := newIzhikevichModel()
	bad.SimCode = "V += ;"
	_, err := m.AddNeuronPopulation("Pop0", 10, bad)
	if err == nil {
		t.Fatalf("expected a syntax error")
	}
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
}

func TestUnknownTargetVariable(t *testing.T) {
	m := NewModel("test")
	src, _ := m.AddNeuronPopulation("Src", 10, newIzhikevichModel())
	trg, _ := m.AddNeuronPopulation("Trg", 10, newIzhikevichModel())
	sg, err := m.AddSynapsePopulation("S", src, trg, MatrixType{Connectivity: Dense}, WeightUpdateModel{}, PostsynapticModel{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sg.PreTargetVar = "NotAVariable"
	report := m.Validate()
	if report.OK() {
		t.Fatalf("expected a validation problem for the unknown target variable")
	}
}

func TestHashDigestDeterministic(t *testing.T) {
	m := NewModel("test")
	a, _ := m.AddNeuronPopulation("A", 10, newIzhikevichModel())
	b, _ := m.AddNeuronPopulation("B", 10, newIzhikevichModel())
	if a.HashDigest() != b.HashDigest() {
		t.Fatalf("expected identical structural digests for identically-shaped groups")
	}
}

func TestHashDigestSensitiveToSimCode(t *testing.T) {
	m := NewModel("test")
	a, _ := m.AddNeuronPopulation("A", 10, newIzhikevichModel())
	bm := newIzhikevichModel()
	bm.SimCode = "V += 1.0;"
	b, _ := m.AddNeuronPopulation("B", 10, bm)
	if a.HashDigest() == b.HashDigest() {
		t.Fatalf("expected different digests for different sim code")
	}
}
