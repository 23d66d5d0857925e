// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "github.com/snncore/gennsl/gtype"

// Param is a named constant scalar value, frozen once a model is
// finalised. Two groups with equal Param values for every parameter
// referenced by their code may end up fusing (see hash.go).
type Param struct {
	Name  string
	Value float64
}

// DerivedParamFunc computes one derived parameter from the frozen
// parameter map and the model's integration timestep. It is evaluated
// exactly once, during Finalise.
type DerivedParamFunc func(params map[string]float64, dt float64) float64

// DerivedParam is a named parameter computed from others at Finalise time
// (e.g. a decay constant derived from a time constant and dt).
type DerivedParam struct {
	Name string
	Func DerivedParamFunc

	value   float64
	resolved bool
}

// VarInit describes how a state variable's initial value is produced.
// Constant initialisers (Kind == InitConstant) participate in fuse-level
// hashing by value; any RNG-backed initialiser never does, since its
// per-member draw would make fusion meaningless.
type VarInitKind int

const (
	InitConstant VarInitKind = iota
	InitUniform
	InitNormal
	InitExponential
)

type VarInit struct {
	Kind VarInitKind
	// Value is the constant value for InitConstant, or an ignored zero
	// value otherwise; Min/Max parameterise InitUniform, Mean/SD
	// parameterise InitNormal, Lambda parameterises InitExponential.
	Value, Min, Max, Mean, SD, Lambda float64
}

// IsConstant reports whether the initialiser is a plain compile-time
// constant, the only kind homogeneity checks compare by value.
func (v VarInit) IsConstant() bool { return v.Kind == InitConstant }

// Variable is one state variable of a neuron, synapse weight-update,
// postsynaptic, or custom-update model.
type Variable struct {
	Name     string
	Type     gtype.ResolvedType
	Access   VarAccess
	Location Location
	Init     VarInit
}

// ExtraGlobalParam is a per-group (not per-neuron/per-synapse) parameter
// exposed as an array or scalar the generated code can read.
type ExtraGlobalParam struct {
	Name     string
	Type     gtype.ResolvedType
	Location Location
}
