// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"fmt"
	"strings"

	"github.com/snncore/gennsl/backend"
	"github.com/snncore/gennsl/genv"
	"github.com/snncore/gennsl/gtype"
	"github.com/snncore/gennsl/merge"
	"github.com/snncore/gennsl/model"
)

// accumulationStrategy picks how one thread's contribution to a target
// neuron's input accumulator gets combined with every other thread's:
// a private register when the matrix is Dense or Bitmask (one thread per
// target neuron), otherwise a shared-memory atomic add when the target
// population fits the presynaptic-update block size and the backend's
// shared atomics are fast, otherwise a global atomic add — always
// atomic, regardless of matrix type, once a dendritic delay ring buffer
// is the write target, since two different delay offsets can alias the
// same slot.
type accumulationStrategy int

const (
	accumRegister accumulationStrategy = iota
	accumSharedMemAtomic
	accumGlobalAtomic
)

func (e *Emitter) chooseAccumulation(sg *model.SynapseGroup) accumulationStrategy {
	if !sg.RequiresDendriticDelay() && (sg.Matrix.Connectivity == model.Dense || sg.Matrix.Connectivity == model.Bitmask) {
		return accumRegister
	}
	if sg.Trg.NumNeurons <= e.Backend.Preferences().BlockSizePresynUpdate && !e.Backend.SharedMemAtomicsSlow() {
		return accumSharedMemAtomic
	}
	return accumGlobalAtomic
}

// EmitPresynapticUpdate renders the body of one presynaptic-update
// kernel for the merged WU-structural group mg: for every presynaptic
// spike, the event threshold (if any) gates EventCode, and SimCode
// always runs, writing into the target's input accumulator with the
// accumulation strategy chooseAccumulation picks for the group's matrix
// type, target size and dendritic delay.
func (e *Emitter) EmitPresynapticUpdate(mg *merge.MergedSynapseGroup) (string, error) {
	sg := mg.Archetype()
	outer := builtinScope()
	field := genv.NewFieldEnvironment[*model.SynapseGroup](outer, mg.MergedGroup)
	for _, p := range sg.WUM.Params {
		vals := make([]float64, len(mg.Members))
		for i, m := range mg.Members {
			vals[i] = paramValue(m.WUM.Params, p.Name)
		}
		field.BindField(p.Name, gtype.ScalarType, vals, "", false)
	}
	for _, v := range sg.WUM.Vars {
		field.Bind(v.Name, genv.Binding{Type: v.Type, Writable: v.Access == model.ReadWrite, Expand: fmt.Sprintf("group->%s[synIdx]", v.Name)})
	}

	var body strings.Builder
	fmt.Fprintf(&body, "// presynaptic update: %s (span=%v)\n", sg.Name, sg.Span)

	strat := e.chooseAccumulation(sg)
	target := fmt.Sprintf("group->%s[%s]", targetAccumulatorName(sg), "ipost")
	switch strat {
	case accumRegister:
		fmt.Fprintf(&body, "scalar linSyn = %s;\n", target)
	}

	if sg.WUM.EventThreshold != "" {
		eventSrc, err := e.transpile(sg.WUM.EventCodeTokens().Frag, "EventCode:"+sg.Name, field.EnvironmentExternalBase)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&body, "if (%s) {\n", strings.TrimSpace(sg.WUM.EventThreshold))
		body.WriteString(indentLines(eventSrc))
		body.WriteString("}\n")
	}

	simScope := genv.NewEnvironment(field.EnvironmentExternalBase)
	src, err := e.transpile(sg.WUM.SimCodeTokens().Frag, "WUSimCode:"+sg.Name, simScope)
	if err != nil {
		return "", err
	}
	body.WriteString(src)

	switch strat {
	case accumRegister:
		fmt.Fprintf(&body, "%s = linSyn;\n", target)
	case accumSharedMemAtomic:
		op := e.Backend.Atomic(gtype.ScalarType, backend.AtomicAdd, backend.SharedMem)
		fmt.Fprintf(&body, "shLinSyn[ipost] %s addToInSynValue;\n", op)
	case accumGlobalAtomic:
		op := e.Backend.Atomic(gtype.ScalarType, backend.AtomicAdd, backend.GlobalMem)
		fmt.Fprintf(&body, "%s %s addToInSynValue;\n", target, op)
	}

	if sg.RequiresDendriticDelay() {
		idx := "dendriticDelayOffset"
		fmt.Fprintf(&body, "// dendritic delay write always atomic into slot %s\n", idx)
	}

	return body.String(), nil
}

// targetAccumulatorName returns the generated field name a presynaptic
// kernel writes through: the synapse group's own inSyn buffer unless
// PreTargetVar redirects it to a named additional input on Trg.
func targetAccumulatorName(sg *model.SynapseGroup) string {
	if sg.PreTargetVar != "" && sg.PreTargetVar != "Isyn" {
		return sg.PreTargetVar
	}
	return "inSyn_" + sg.Name
}

// EmitPostsynapticLearning renders the post-learn pass body for mg, run
// only when needsPostsynapticRemap(backend, sg) is true: the target
// synapse's post-learn code walks the transposed (column-major) view of
// connectivity, so every backend whose PostsynapticRemapRequired is true
// needs that remap table built before this pass runs. No emitter in this
// package fills it: EmitSparseConnectivityInit's column-build step writes
// colLength only.
func (e *Emitter) EmitPostsynapticLearning(mg *merge.MergedSynapseGroup) (string, error) {
	sg := mg.Archetype()
	if !e.needsPostsynapticRemap(sg) {
		return "", nil
	}
	outer := builtinScope()
	scope := genv.NewEnvironment(outer)
	src, err := e.transpile(sg.WUM.PostLearnCodeTokens().Frag, "PostLearn:"+sg.Name, scope)
	if err != nil {
		return "", err
	}
	var body strings.Builder
	fmt.Fprintf(&body, "// post-learn update: %s (remapped)\n", sg.Name)
	body.WriteString(src)
	return body.String(), nil
}

// needsPostsynapticRemap is the open-question (c) predicate: a
// postsynaptic remap table is only required when the backend demands one
// AND the group actually carries post-learn code to run over it.
func (e *Emitter) needsPostsynapticRemap(sg *model.SynapseGroup) bool {
	return e.Backend.PostsynapticRemapRequired() && sg.WUM.PostLearnCode != ""
}
