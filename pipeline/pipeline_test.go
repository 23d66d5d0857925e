// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"strings"
	"testing"

	"github.com/snncore/gennsl/backend"
	"github.com/snncore/gennsl/backend/refc"
	"github.com/snncore/gennsl/examples/izhikevich"
	"github.com/snncore/gennsl/gtype"
	"github.com/snncore/gennsl/logx"
	"github.com/snncore/gennsl/model"
)

func buildFinalisedModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.NewModel("test")
	if err := izhikevich.Build(m); err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if err := m.Finalise(1.0); err != nil {
		t.Fatalf("unexpected finalise error: %v", err)
	}
	return m
}

func TestGenerateEmitsLifecycleSymbols(t *testing.T) {
	m := buildFinalisedModel(t)
	b := refc.New(backend.DefaultPreferences())
	result, err := Generate(m, b, logx.Default("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src, ok := result.Sources["kernels.c"]
	if !ok {
		t.Fatal("expected a \"kernels.c\" source file")
	}
	for _, fn := range []string{"void allocateMem(void)", "void freeMem(void)", "void initialize(void)", "void initializeSparse(void)", "void stepTime(unsigned long long timestep, unsigned long long numRecordingTimesteps)"} {
		if !strings.Contains(src, fn) {
			t.Errorf("expected generated source to declare %q, got:\n%s", fn, src)
		}
	}
}

func TestGenerateStepTimeOrdersNeuronThenPresynapticUpdates(t *testing.T) {
	m := buildFinalisedModel(t)
	b := refc.New(backend.DefaultPreferences())
	result, err := Generate(m, b, logx.Default("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src := result.Sources["kernels.c"]
	neuronIdx := strings.Index(src, "updateNeuronGroup0();")
	preIdx := strings.Index(src, "updatePresynapticGroup0();")
	if preIdx < 0 || neuronIdx < 0 {
		t.Fatalf("expected both a presynaptic and a neuron update call in stepTime, got:\n%s", src)
	}
	if neuronIdx > preIdx {
		t.Fatalf("expected neuron updates to run before presynaptic updates within stepTime")
	}
}

func TestGenerateWithNoCustomUpdatesReturnsEmptyGroupList(t *testing.T) {
	m := buildFinalisedModel(t)
	b := refc.New(backend.DefaultPreferences())
	result, err := Generate(m, b, logx.Default("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.CustomUpdateGroups) != 0 {
		t.Fatalf("expected no custom-update groups, got %v", result.CustomUpdateGroups)
	}
}

func TestGenerateEmitsCustomUpdateEntryPoint(t *testing.T) {
	m := model.NewModel("test")
	_, err := m.AddCustomUpdate("Reset", model.CustomUpdate{
		UpdateGroup: "Reset",
		Vars:        []model.Variable{{Name: "V", Type: gtype.ScalarType, Access: model.ReadWrite, Init: model.VarInit{Kind: model.InitConstant, Value: 0}}},
		UpdateCode:  "V = 0.0;",
		NumNeurons:  4,
	})
	if err != nil {
		t.Fatalf("unexpected error adding custom update: %v", err)
	}
	if err := m.Finalise(1.0); err != nil {
		t.Fatalf("unexpected finalise error: %v", err)
	}

	b := refc.New(backend.DefaultPreferences())
	result, err := Generate(m, b, logx.Default("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.CustomUpdateGroups) != 1 || result.CustomUpdateGroups[0] != "Reset" {
		t.Fatalf("expected one \"Reset\" custom-update group, got %v", result.CustomUpdateGroups)
	}
	if !strings.Contains(result.Sources["kernels.c"], "void Reset(void)") {
		t.Fatalf("expected a \"Reset\" dispatch entry point, got:\n%s", result.Sources["kernels.c"])
	}
}
