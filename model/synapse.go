// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "fmt"

// MatrixConnectivity is the storage shape of a synaptic connectivity
// matrix.
type MatrixConnectivity int

const (
	Dense MatrixConnectivity = iota
	Sparse
	Bitmask
	Procedural
	Toeplitz
)

func (m MatrixConnectivity) String() string {
	switch m {
	case Dense:
		return "DENSE"
	case Sparse:
		return "SPARSE"
	case Bitmask:
		return "BITMASK"
	case Procedural:
		return "PROCEDURAL"
	case Toeplitz:
		return "TOEPLITZ"
	default:
		return "UNKNOWN_MATRIX_CONNECTIVITY"
	}
}

// MatrixWeight describes how per-synapse weight values are stored,
// independent of the connectivity shape above (a PROCEDURAL connectivity
// may still carry INDIVIDUAL or PROCEDURALG weights, for instance).
type MatrixWeight int

const (
	Individual MatrixWeight = iota
	Kernel
	ProceduralG
)

// MatrixType is the full (connectivity, weight) combination.
type MatrixType struct {
	Connectivity MatrixConnectivity
	Weight       MatrixWeight
}

// Validate enforces the matrix-type compatibility invariants from §3: a
// Toeplitz matrix forbids a column-build connectivity initialiser and
// post-learn code; Procedural forbids column-build, post-learn, and
// synapse-dynamics code. Only the connectivity half is checked: the
// Weight representation is accepted with any connectivity.
func (mt MatrixType) Validate(hasColBuild, hasPostLearn, hasSynapseDynamics bool) error {
	switch mt.Connectivity {
	case Toeplitz:
		if hasColBuild || hasPostLearn {
			return fmt.Errorf("%w: TOEPLITZ forbids column-build and post-learn code", ErrInvalidMatrixType)
		}
	case Procedural:
		if hasColBuild || hasPostLearn || hasSynapseDynamics {
			return fmt.Errorf("%w: PROCEDURAL forbids column-build, post-learn, and synapse-dynamics code", ErrInvalidMatrixType)
		}
	}
	return nil
}

// SpanType selects which side of a synapse group owns one GPU thread
// during presynaptic spike propagation.
type SpanType int

const (
	PresynapticSpan SpanType = iota
	PostsynapticSpan
)

// WeightUpdateModel is the user-declared shape of a synapse group's
// weight-update dynamics.
type WeightUpdateModel struct {
	Params        []Param
	DerivedParams []DerivedParam
	Vars          []Variable
	PreVars       []Variable
	PostVars      []Variable
	EGPs          []ExtraGlobalParam

	EventThreshold string
	EventCode      string
	SimCode        string
	PostLearnCode  string
	SynapseDynamicsCode string
	PreDynamicsCode  string
	PostDynamicsCode string

	simCode          CodeTokens
	eventCode        CodeTokens
	postLearnCode    CodeTokens
	synapseDynCode   CodeTokens
	preDynCode       CodeTokens
	postDynCode      CodeTokens
}

// PostsynapticModel is the user-declared shape of a synapse group's
// postsynaptic-current dynamics.
type PostsynapticModel struct {
	Params        []Param
	DerivedParams []DerivedParam
	Vars          []Variable
	EGPs          []ExtraGlobalParam

	ApplyInputCode string
	DecayCode      string

	applyInputCode CodeTokens
	decayCode      CodeTokens
}

// ConnectivityInit describes how a synapse group's connectivity is built:
// RowBuildCode populates rowLength/ind (or, for Bitmask, sets bits
// directly); ColBuildCode, when non-empty, additionally populates
// colLength/remap for postsynaptic-span iteration. Procedural and
// Toeplitz groups instead populate KernelBuildCode / ToeplitzBuildCode.
type ConnectivityInit struct {
	RowBuildCode     string
	ColBuildCode     string
	KernelBuildCode  string
	ToeplitzBuildCode string

	MaxRowLength int
	MaxColLength int

	rowBuild  CodeTokens
	colBuild  CodeTokens
	kernBuild CodeTokens
}

// SynapseGroup is a directed edge between two NeuronGroups.
type SynapseGroup struct {
	Name   string
	Src    *NeuronGroup
	Trg    *NeuronGroup
	Matrix MatrixType
	Span   SpanType

	AxonalDelaySteps    int
	BackPropDelaySteps  int
	MaxDendriticDelayTimesteps int

	WUM WeightUpdateModel
	PSM PostsynapticModel
	Connectivity ConnectivityInit

	PreTargetVar  string // defaults to "Isyn" on Trg
	PostTargetVar string // defaults to "Isyn" on Src, used for back-projected current

	ThreadsPerSpike int
	NarrowSparseInd bool

	requiresDendriticDelay bool
}

// RequiresDendriticDelay reports whether the weight-update model's sim
// code contains a reference to addToPostDelay, per §3's dendritic-delay
// detection rule. It is computed once during Finalise and cached.
func (sg *SynapseGroup) RequiresDendriticDelay() bool { return sg.requiresDendriticDelay }
