// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"fmt"
	"strings"

	"github.com/snncore/gennsl/model"
)

// EmitVarInit renders the initialiser statement for one state variable,
// seeded from the population RNG when Init is not a plain constant.
// Every kind shares the same register-then-writeback shape the rest of
// the emitter uses: "group->V[id] = <expr>;".
func (e *Emitter) EmitVarInit(fieldExpr string, v model.Variable) string {
	switch v.Init.Kind {
	case model.InitConstant:
		return fmt.Sprintf("%s = %s;\n", fieldExpr, formatFloat(v.Init.Value))
	case model.InitUniform:
		return fmt.Sprintf("%s = %s + (%s - %s) * rngUniform(&rngState);\n",
			fieldExpr, formatFloat(v.Init.Min), formatFloat(v.Init.Max), formatFloat(v.Init.Min))
	case model.InitNormal:
		return fmt.Sprintf("%s = %s + %s * rngNormal(&rngState);\n",
			fieldExpr, formatFloat(v.Init.Mean), formatFloat(v.Init.SD))
	case model.InitExponential:
		return fmt.Sprintf("%s = -log(rngUniform(&rngState)) / %s;\n", fieldExpr, formatFloat(v.Init.Lambda))
	default:
		return fmt.Sprintf("%s = 0;\n", fieldExpr)
	}
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}

// EmitNeuronInit renders the neuron-group init kernel: population-RNG
// seeding (when the backend requires one) followed by one initialiser
// statement per state variable, in declaration order.
func (e *Emitter) EmitNeuronInit(ng *model.NeuronGroup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// neuron init: %s\n", ng.Name)
	if e.Backend.PopulationRNGRequired() {
		e.Backend.PopulationRNGInit(&b)
	}
	for _, v := range ng.Model.Vars {
		b.WriteString(e.EmitVarInit(fmt.Sprintf("group->%s[id]", v.Name), v))
	}
	return b.String()
}

// EmitSparseConnectivityInit renders the row-build pass for a sparse or
// bitmask synapse group: the user's RowBuildCode runs once per
// presynaptic neuron, and the emitter wraps it with the bounds check
// against MaxRowLength that keeps a runaway initialiser from overrunning
// the ind/ arrays allocated for it.
func (e *Emitter) EmitSparseConnectivityInit(sg *model.SynapseGroup) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "// sparse connectivity init: %s\n", sg.Name)
	scope := builtinScope()
	src, err := e.transpile(sg.Connectivity.RowBuildTokens().Frag, "RowBuild:"+sg.Name, scope)
	if err != nil {
		return "", err
	}
	b.WriteString("unsigned int rowLength = 0;\n")
	b.WriteString(src)
	fmt.Fprintf(&b, "if (rowLength > %d) { rowLength = %d; }\n", sg.Connectivity.MaxRowLength, sg.Connectivity.MaxRowLength)
	b.WriteString("group->rowLength[preInd] = rowLength;\n")

	if sg.Connectivity.ColBuildCode != "" {
		colSrc, err := e.transpile(sg.Connectivity.ColBuildTokens().Frag, "ColBuild:"+sg.Name, scope)
		if err != nil {
			return "", err
		}
		b.WriteString("unsigned int colLength = 0;\n")
		b.WriteString(colSrc)
		fmt.Fprintf(&b, "if (colLength > %d) { colLength = %d; }\n", sg.Connectivity.MaxColLength, sg.Connectivity.MaxColLength)
		b.WriteString("group->colLength[postInd] = colLength;\n")
	}
	return b.String(), nil
}

// EmitKernelConnectivityInit renders the init pass for a PROCEDURAL or
// KERNEL-weight matrix: KernelBuildCode runs once per kernel element, its
// flat index decomposed modularly across however many kernel dimensions
// the connectivity declares (mirrored here as a single flat dimension,
// since the model IR only tracks kernel size as part of the generated
// build code itself rather than as a separate shape descriptor).
func (e *Emitter) EmitKernelConnectivityInit(sg *model.SynapseGroup) (string, error) {
	scope := builtinScope()
	src, err := e.transpile(sg.Connectivity.KernelBuildTokens().Frag, "KernelBuild:"+sg.Name, scope)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "// kernel connectivity init: %s\n", sg.Name)
	b.WriteString("const unsigned int kernelIdx = id % kernelSize;\n")
	b.WriteString(src)
	return b.String(), nil
}

// narrowSparseIndexType picks the smallest unsigned integer type that can
// index a row of maxRowLength entries, the runtime detail behind the
// NarrowSparseInd flag: 8-bit up to 255 entries, 16-bit up to 65535, and
// 32-bit beyond that.
func narrowSparseIndexType(maxRowLength int) string {
	switch {
	case maxRowLength <= 255:
		return "uint8_t"
	case maxRowLength <= 65535:
		return "uint16_t"
	default:
		return "uint32_t"
	}
}
