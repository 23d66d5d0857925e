// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

// NeuronModel is the user-declared shape of a neuron population's
// dynamics: parameters, derived parameters, state variables, extra
// global parameters, and the three code fragments that drive simulation.
type NeuronModel struct {
	Params            []Param
	DerivedParams     []DerivedParam
	Vars              []Variable
	EGPs              []ExtraGlobalParam
	SimCode           string
	ThresholdCondition string // empty means no spiking threshold
	ResetCode         string
	AdditionalInput   []Variable // extra per-neuron input accumulators beyond Isyn
	AutoRefractoryRequired bool
}

// NeuronGroup is a named population of NumNeurons neurons sharing one
// NeuronModel.
type NeuronGroup struct {
	Name        string
	NumNeurons  int
	Model       NeuronModel
	BatchSize   int

	simCode       CodeTokens
	thresholdCode CodeTokens
	resetCode     CodeTokens

	// Requirements inferred during Finalise from consumer synapse-group
	// and current-source code.
	NumDelaySlots   int
	SpikesRequired  bool
	PrevSpikeTimesRequired bool
	SpikeEventsRequired    bool
	PrevSpikeEventTimesRequired bool

	varLocations map[string]Location

	frozen bool
}

// noteDelayRequirement folds one consumer's delay requirement (axonal or
// back-propagation) into this group's running maximum, per the invariant
// numDelaySlots >= 1 + max(delaySteps).
func (ng *NeuronGroup) noteDelayRequirement(delaySteps int) {
	need := delaySteps + 1
	if need > ng.NumDelaySlots {
		ng.NumDelaySlots = need
	}
}

// SetVarLocation overrides the location of one named state variable.
func (ng *NeuronGroup) SetVarLocation(name string, loc Location) error {
	if ng.frozen {
		return ErrFrozen
	}
	if ng.varLocations == nil {
		ng.varLocations = map[string]Location{}
	}
	ng.varLocations[name] = loc
	return nil
}

// VarLocation returns the location configured for name, or def if none
// was set explicitly.
func (ng *NeuronGroup) VarLocation(name string, def Location) Location {
	if loc, ok := ng.varLocations[name]; ok {
		return loc
	}
	return def
}

// RequiresDelayQueue reports whether NumDelaySlots indicates this group's
// variables need delay-slot indexing at all (numDelaySlots == 1 means
// "no delay", per the boundary behaviour in the testable-properties
// section: delaySteps == 0 elides delay-slot indexing entirely).
func (ng *NeuronGroup) RequiresDelayQueue() bool {
	return ng.NumDelaySlots > 1
}
