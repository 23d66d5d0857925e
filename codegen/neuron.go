// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"fmt"
	"strings"

	"github.com/snncore/gennsl/genv"
	"github.com/snncore/gennsl/gtype"
	"github.com/snncore/gennsl/merge"
	"github.com/snncore/gennsl/model"
)

// NeuronUpdatePlan bundles one merged neuron group with everything that
// feeds its update kernel: the merged synapse groups whose postsynaptic
// model targets it, and the merged current sources injecting into it.
// Assembling a plan is the caller's job (the model owns the topology);
// this package only knows how to emit from one once it's built.
type NeuronUpdatePlan struct {
	Neurons        *merge.MergedNeuronGroup
	Incoming       []*merge.MergedSynapseGroup
	CurrentSources []*merge.MergedCurrentSource
}

// EmitNeuronUpdate renders the body of one neuron-update kernel, in the
// eight-step order: local aliases, fused postsynaptic apply-input/decay,
// fused pre-output accumulation, current-source injection, the read-only
// Isyn alias, user sim code, weight-update pre/post dynamics and
// spike-event conditions are handled by the presynaptic/postsynaptic
// passes (EmitPresynapticUpdate) rather than here, and finally threshold
// detection, reset, and delay-slot bookkeeping.
func (e *Emitter) EmitNeuronUpdate(plan NeuronUpdatePlan) (string, error) {
	ng := plan.Neurons.Archetype()
	outer := builtinScope()
	field := genv.NewFieldEnvironment[*model.NeuronGroup](outer, plan.Neurons.MergedGroup)
	locals := genv.NewLocalVarCache[*model.NeuronGroup](field)

	var body strings.Builder
	fmt.Fprintf(&body, "// neuron update: %s (%d fused member(s))\n", ng.Name, len(plan.Neurons.Members))

	// Step 1: local aliases for every state variable, delay-aware where
	// the group's own NumDelaySlots indicates a ring buffer is in use.
	readIdx := "spkQuePtr"
	if !ng.RequiresDelayQueue() {
		readIdx = "0"
	}
	for _, v := range ng.Model.Vars {
		var adapter genv.ArrayAdapter
		if ng.RequiresDelayQueue() {
			adapter = delayAdapter{field: v.Name, readIdx: readIdx + "*n + id", writeIdx: "writeDelaySlot*n + id"}
		} else {
			adapter = indexAdapter{field: v.Name, index: "id"}
		}
		if decl := locals.MaterializeLocal(v.Name, v.Type, adapter, v.Access == model.ReadWrite); decl != "" {
			body.WriteString(decl)
			body.WriteString("\n")
		}
	}
	for _, p := range ng.Model.Params {
		vals := make([]float64, len(plan.Neurons.Members))
		for i, m := range plan.Neurons.Members {
			vals[i] = paramValue(m.Model.Params, p.Name)
		}
		field.BindField(p.Name, gtype.ScalarType, vals, "", false)
	}

	// Step 2: fused postsynaptic apply-input/decay for every incoming
	// synapse group, accumulating into a local linSyn register.
	for _, inc := range plan.Incoming {
		sg := inc.Archetype()
		fmt.Fprintf(&body, "scalar linSyn_%s = group->inSyn_%s[id];\n", sg.Name, sg.Name)
		src, err := e.transpile(sg.PSM.ApplyInputTokens().Frag, "PSM apply-input:"+sg.Name, outer)
		if err != nil {
			return "", err
		}
		body.WriteString(indentLines(src))
		src, err = e.transpile(sg.PSM.DecayTokens().Frag, "PSM decay:"+sg.Name, outer)
		if err != nil {
			return "", err
		}
		body.WriteString(indentLines(src))
		fmt.Fprintf(&body, "group->inSyn_%s[id] = linSyn_%s;\n", sg.Name, sg.Name)
	}

	// Step 3: fused pre-output accumulation (groups whose weight update
	// only produces a presynaptic output, not a postsynaptic target).
	for _, inc := range plan.Incoming {
		sg := inc.Archetype()
		if sg.PostTargetVar == "" {
			continue
		}
		fmt.Fprintf(&body, "Isyn += group->revInSyn_%s[id];\n", sg.Name)
	}

	// Step 4: current-source injection.
	for _, cs := range plan.CurrentSources {
		arche := cs.Archetype()
		body.WriteString("{\n")
		src, err := e.transpile(arche.InjectionCodeTokens().Frag, "CurrentSource:"+arche.Name, outer)
		if err != nil {
			return "", err
		}
		body.WriteString(indentLines(src))
		body.WriteString("}\n")
	}

	// Step 5: read-only Isyn alias.
	body.WriteString("const scalar Isyn = group->Isyn[id];\n")

	// Step 6: user sim code.
	simScope := genv.NewEnvironment(field.EnvironmentExternalBase)
	simScope.Bind("Isyn", genv.Binding{Type: gtype.ScalarType, Writable: false, Expand: "Isyn"})
	src, err := e.transpile(ng.SimCodeTokens().Frag, "SimCode:"+ng.Name, simScope)
	if err != nil {
		return "", err
	}
	body.WriteString(src)
	body.WriteString("\n")

	// Step 7/8: threshold detection, the (delay-slot-aware) spike-time
	// write, and reset. An empty ThresholdCondition means this group never
	// spikes (e.g. a pure current-source relay), matching §3's
	// "ThresholdCondition == \"\" means no spiking threshold".
	if ng.Model.ThresholdCondition != "" {
		cond, err := e.transpile(ng.ThresholdCodeTokens().Frag, "Threshold:"+ng.Name, simScope)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&body, "if (%s) {\n", strings.TrimSuffix(strings.TrimSuffix(cond, "\n"), ";"))
		body.WriteString("  spike = true;\n")
		if ng.RequiresDelayQueue() {
			body.WriteString("  group->spkTime[writeDelaySlot*n + id] = t;\n")
		} else {
			body.WriteString("  group->spkTime[id] = t;\n")
		}
		reset, err := e.transpile(ng.ResetCodeTokens().Frag, "Reset:"+ng.Name, simScope)
		if err != nil {
			return "", err
		}
		body.WriteString(indentLines(reset))
		body.WriteString("}\n")
	}

	for _, flush := range locals.Flush() {
		body.WriteString(flush)
		body.WriteString("\n")
	}

	return body.String(), nil
}

func indentLines(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}

func paramValue(params []model.Param, name string) float64 {
	for _, p := range params {
		if p.Name == name {
			return p.Value
		}
	}
	return 0
}
