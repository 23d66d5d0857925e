// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline wires package merge's fusion pass to package codegen's
// kernel emitter and assembles the result into a set of C source files
// plus the fixed lifecycle entry points (allocateMem, freeMem,
// initialize, initializeSparse, stepTime) that runtime.Runtime expects to
// dlopen. It is the orchestration layer cmd/gennsl's "generate"
// subcommand drives; none of it is specific to any one demonstration
// model.
package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/snncore/gennsl/backend"
	"github.com/snncore/gennsl/codegen"
	"github.com/snncore/gennsl/codegen/layout"
	"github.com/snncore/gennsl/gtype"
	"github.com/snncore/gennsl/logx"
	"github.com/snncore/gennsl/merge"
	"github.com/snncore/gennsl/model"
)

// Result is everything Generate produced: named C source files ready to
// hand to toolchain.CompileSharedLibrary, and the custom-update group
// names runtime.Runtime.RunCustomUpdate needs to drive them by name.
type Result struct {
	Sources            map[string]string
	CustomUpdateGroups []string
}

// Generate partitions m's groups via package merge, emits every merged
// group's kernel body via an Emitter targeting b, and assembles a single
// "kernels.c" translation unit containing the fixed lifecycle symbols.
// m must already be finalised (model.Model.Finalise).
func Generate(m *model.Model, b backend.Backend, log *logx.Logger) (*Result, error) {
	if log == nil {
		log = logx.Default("pipeline")
	}
	em := codegen.NewEmitter(b, m.TypeContext())

	neuronGroups := m.NeuronGroups()
	synapseGroups := m.SynapseGroups()

	mergedNeurons := merge.PartitionNeuronGroups(neuronGroups)
	mergedSynapsesWU := merge.PartitionSynapseGroupsWU(synapseGroups)
	mergedCurrentSources := merge.PartitionCurrentSources(m.CurrentSources())
	mergedCustomUpdates := merge.PartitionCustomUpdates(m.CustomUpdates())
	mergedCCUs := merge.PartitionCustomConnectivityUpdates(m.CustomConnectivityUpdates())

	incomingFor := func(ng *model.NeuronGroup) []*merge.MergedSynapseGroup {
		var out []*merge.MergedSynapseGroup
		for _, mg := range mergedSynapsesWU {
			if mg.Archetype().Trg == ng {
				out = append(out, mg)
			}
		}
		return out
	}

	currentSourcesFor := func(ng *model.NeuronGroup) []*merge.MergedCurrentSource {
		var out []*merge.MergedCurrentSource
		for _, mg := range mergedCurrentSources {
			if mg.Archetype().Target == ng {
				out = append(out, mg)
			}
		}
		return out
	}

	var body strings.Builder
	body.WriteString("// Code generated by gennsl's pipeline package. DO NOT EDIT.\n")
	body.WriteString("#include <math.h>\n#include <stdbool.h>\n#include <stdint.h>\n#include <string.h>\n\n")

	var layouts []layout.StructLayout

	for i, mg := range mergedNeurons {
		ng := mg.Archetype()
		plan := codegen.NeuronUpdatePlan{Neurons: mg, Incoming: incomingFor(ng), CurrentSources: currentSourcesFor(ng)}
		src, err := em.EmitNeuronUpdate(plan)
		if err != nil {
			return nil, fmt.Errorf("pipeline: emitting neuron update for %q: %w", ng.Name, err)
		}
		fmt.Fprintf(&body, "static void updateNeuronGroup%d(void) {\n", i)
		body.WriteString(indent(src))
		body.WriteString("}\n\n")

		init := em.EmitNeuronInit(ng)
		fmt.Fprintf(&body, "static void initNeuronGroup%d(void) {\n", i)
		body.WriteString(indent(init))
		body.WriteString("}\n\n")

		layouts = append(layouts, varLayout(ng))
	}

	for i, mg := range mergedSynapsesWU {
		sg := mg.Archetype()
		src, err := em.EmitPresynapticUpdate(mg)
		if err != nil {
			return nil, fmt.Errorf("pipeline: emitting presynaptic update for %q: %w", sg.Name, err)
		}
		fmt.Fprintf(&body, "static void updatePresynapticGroup%d(void) {\n", i)
		body.WriteString(indent(src))
		body.WriteString("}\n\n")

		if sg.WUM.PostLearnCode != "" {
			learn, err := em.EmitPostsynapticLearning(mg)
			if err != nil {
				return nil, fmt.Errorf("pipeline: emitting postsynaptic learning for %q: %w", sg.Name, err)
			}
			fmt.Fprintf(&body, "static void updatePostsynapticGroup%d(void) {\n", i)
			body.WriteString(indent(learn))
			body.WriteString("}\n\n")
		}

		if sg.Matrix.Connectivity == model.Sparse {
			initSrc, err := em.EmitSparseConnectivityInit(sg)
			if err != nil {
				return nil, fmt.Errorf("pipeline: emitting sparse connectivity init for %q: %w", sg.Name, err)
			}
			fmt.Fprintf(&body, "static void initSparseGroup%d(void) {\n", i)
			body.WriteString(indent(initSrc))
			body.WriteString("}\n\n")
		}
	}

	layout.Check(layouts, log)

	body.WriteString(lifecycleEpilogue(len(mergedNeurons), mergedSynapsesWU))

	groupDispatch := map[string][]string{}
	for i, mg := range mergedCustomUpdates {
		cu := mg.Archetype()
		src, err := em.EmitCustomUpdate(mg)
		if err != nil {
			return nil, fmt.Errorf("pipeline: emitting custom update for %q: %w", cu.Name, err)
		}
		fname := fmt.Sprintf("updateCustomGroup%d", i)
		fmt.Fprintf(&body, "static void %s(void) {\n", fname)
		body.WriteString(indent(src))
		body.WriteString("}\n\n")
		groupDispatch[cu.UpdateGroup] = append(groupDispatch[cu.UpdateGroup], fname)
	}
	for i, mg := range mergedCCUs {
		ccu := mg.Archetype()
		deviceSrc, hostSrc, err := em.EmitCustomConnectivityUpdate(mg)
		if err != nil {
			return nil, fmt.Errorf("pipeline: emitting custom connectivity update for %q: %w", ccu.Name, err)
		}
		fname := fmt.Sprintf("updateCustomConnectivityGroup%d", i)
		fmt.Fprintf(&body, "static void %s(void) {\n", fname)
		body.WriteString(indent(deviceSrc))
		if hostSrc != "" {
			body.WriteString(indent(hostSrc))
		}
		body.WriteString("}\n\n")
		groupDispatch[ccu.UpdateGroup] = append(groupDispatch[ccu.UpdateGroup], fname)
	}

	var customGroups []string
	for group := range groupDispatch {
		customGroups = append(customGroups, group)
	}
	sort.Strings(customGroups)
	for _, group := range customGroups {
		fns := groupDispatch[group]
		sort.Strings(fns)
		fmt.Fprintf(&body, "void %s(void) {\n", group)
		for _, fn := range fns {
			fmt.Fprintf(&body, "  %s();\n", fn)
		}
		body.WriteString("}\n\n")
	}

	return &Result{
		Sources:            map[string]string{"kernels.c": body.String()},
		CustomUpdateGroups: customGroups,
	}, nil
}

// lifecycleEpilogue emits the five fixed C entry points runtime.Runtime
// binds via purego: allocateMem/freeMem are left as no-ops here (the
// reference backend's Array already owns its storage on creation;
// a real device backend would cudaMalloc/cudaFree in these two),
// initialize/initializeSparse/stepTime call every emitted per-group
// function in declaration order.
func lifecycleEpilogue(numNeuronGroups int, synapseGroups []*merge.MergedSynapseGroup) string {
	var b strings.Builder
	b.WriteString("void allocateMem(void) {}\n\n")
	b.WriteString("void freeMem(void) {}\n\n")

	b.WriteString("void initialize(void) {\n")
	for i := 0; i < numNeuronGroups; i++ {
		fmt.Fprintf(&b, "  initNeuronGroup%d();\n", i)
	}
	b.WriteString("}\n\n")

	b.WriteString("void initializeSparse(void) {\n")
	for i, mg := range synapseGroups {
		if mg.Archetype().Matrix.Connectivity == model.Sparse {
			fmt.Fprintf(&b, "  initSparseGroup%d();\n", i)
		}
	}
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "void stepTime(unsigned long long timestep, unsigned long long numRecordingTimesteps) {\n")
	// Fixed kernel order: neuron update, then presynaptic, then
	// postsynaptic learning (queue-pointer advance and synapse-dynamics/
	// custom-update dispatch are driven from outside this function).
	for i := 0; i < numNeuronGroups; i++ {
		fmt.Fprintf(&b, "  updateNeuronGroup%d();\n", i)
	}
	for i := range synapseGroups {
		fmt.Fprintf(&b, "  updatePresynapticGroup%d();\n", i)
	}
	for i, mg := range synapseGroups {
		if mg.Archetype().WUM.PostLearnCode != "" {
			fmt.Fprintf(&b, "  updatePostsynapticGroup%d();\n", i)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func indent(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}

// varLayout builds the device-struct layout a merged neuron group's
// per-neuron state variables would occupy, directly from the archetype's
// declared Vars (the merged group's own Fields() only tracks what the
// emission pass happened to bind as a compile-time constant, which is
// params, not the per-neuron array fields this check cares about).
func varLayout(ng *model.NeuronGroup) layout.StructLayout {
	names := make([]string, len(ng.Model.Vars))
	types := map[string]gtype.ResolvedType{}
	for i, v := range ng.Model.Vars {
		names[i] = v.Name
		types[v.Name] = v.Type
	}
	return layout.FromMergedFields(ng.Name, names, func(field string) gtype.ResolvedType {
		return types[field]
	})
}
