// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"github.com/snncore/gennsl/backend"
	"github.com/snncore/gennsl/gtype"
	"github.com/snncore/gennsl/model"
)

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// Allocate calls the library's allocateMem and then walks m group by
// group, creating via the Backend every array §4.7 names: spike counters
// and buffers, the optional spike-event counterparts, spike-time arrays,
// per-neuron-group state variables (sized to account for the delay
// queue), per-synapse-group weights sized by matrix type, connectivity
// arrays, fused outPost/outPre accumulators, dendritic-delay arrays,
// weight-update pre/post variables, postsynaptic variables, current-
// source variables, and custom-update/custom-connectivity-update
// variables. numRecordingTimesteps sizes the optional spike-recording
// bitfield for every spiking neuron group; zero disables recording
// entirely. m must already be finalised.
func (rt *Runtime) Allocate(m *model.Model, numRecordingTimesteps int) error {
	rt.fn.allocateMem()

	rt.model = m
	rt.batchSize = m.BatchSize()
	rt.numRecordingTimesteps = numRecordingTimesteps
	rt.recordingAllocated = numRecordingTimesteps > 0

	tc := m.TypeContext()
	batch := m.BatchSize()

	for _, ng := range m.NeuronGroups() {
		if err := rt.allocateNeuronGroup(tc, batch, ng); err != nil {
			return err
		}
	}
	for _, sg := range m.SynapseGroups() {
		if err := rt.allocateSynapseGroup(tc, batch, sg); err != nil {
			return err
		}
	}
	for _, cs := range m.CurrentSources() {
		if err := rt.allocateVars(tc, cs.Name, cs.Target.NumNeurons*batch, cs.Vars, m.DefaultVarLocation()); err != nil {
			return err
		}
	}
	for _, cu := range m.CustomUpdates() {
		if err := rt.allocateVars(tc, cu.Name, cu.NumNeurons*batch, cu.Vars, m.DefaultVarLocation()); err != nil {
			return err
		}
	}
	for _, ccu := range m.CustomConnectivityUpdates() {
		if err := rt.allocateCustomConnectivityUpdate(tc, batch, ccu); err != nil {
			return err
		}
	}
	return nil
}

// allocateVars creates one array per Variable, each sized count elements
// of its (resolved) type at loc, keyed under group.
func (rt *Runtime) allocateVars(tc *gtype.TypeContext, group string, count int, vars []model.Variable, loc backend.Location) error {
	for _, v := range vars {
		if _, err := rt.RegisterArray(group, v.Name, tc.Resolve(v.Type), count, loc); err != nil {
			return err
		}
	}
	return nil
}

// allocateNeuronVars creates one array per Variable belonging to ng,
// honouring any per-variable location override ng.SetVarLocation set
// ahead of def.
func (rt *Runtime) allocateNeuronVars(tc *gtype.TypeContext, ng *model.NeuronGroup, count int, vars []model.Variable, def backend.Location) error {
	for _, v := range vars {
		loc := ng.VarLocation(v.Name, def)
		if _, err := rt.RegisterArray(ng.Name, v.Name, tc.Resolve(v.Type), count, loc); err != nil {
			return err
		}
	}
	return nil
}

// allocateNeuronGroup creates ng's spike bookkeeping arrays (counters,
// buffers, optional events, spike/event times), its recording bitfield
// when recording is enabled, and its state-variable arrays.
func (rt *Runtime) allocateNeuronGroup(tc *gtype.TypeContext, batch int, ng *model.NeuronGroup) error {
	loc := rt.model.DefaultVarLocation()
	slots := ng.NumDelaySlots
	queued := ng.RequiresDelayQueue()

	if ng.SpikesRequired {
		if _, err := rt.RegisterArray(ng.Name, "spikeCount", gtype.Named(gtype.UInt32), batch*slots, loc); err != nil {
			return err
		}
		if _, err := rt.RegisterArray(ng.Name, "spike", gtype.Named(gtype.UInt32), batch*ng.NumNeurons*slots, loc); err != nil {
			return err
		}
		if _, err := rt.RegisterArray(ng.Name, "spikeTime", tc.Resolve(gtype.TimeT), varCount(ng, batch, queued), loc); err != nil {
			return err
		}
	}
	if ng.PrevSpikeTimesRequired {
		if _, err := rt.RegisterArray(ng.Name, "prevSpikeTime", tc.Resolve(gtype.TimeT), varCount(ng, batch, queued), loc); err != nil {
			return err
		}
	}
	if ng.SpikeEventsRequired {
		if _, err := rt.RegisterArray(ng.Name, "spikeEventCount", gtype.Named(gtype.UInt32), batch*slots, loc); err != nil {
			return err
		}
		if _, err := rt.RegisterArray(ng.Name, "spikeEvent", gtype.Named(gtype.UInt32), batch*ng.NumNeurons*slots, loc); err != nil {
			return err
		}
		if _, err := rt.RegisterArray(ng.Name, "spikeEventTime", tc.Resolve(gtype.TimeT), varCount(ng, batch, queued), loc); err != nil {
			return err
		}
	}
	if ng.PrevSpikeEventTimesRequired {
		if _, err := rt.RegisterArray(ng.Name, "prevSpikeEventTime", tc.Resolve(gtype.TimeT), varCount(ng, batch, queued), loc); err != nil {
			return err
		}
	}

	if rt.recordingAllocated && ng.SpikesRequired {
		words := ceilDiv(ng.NumNeurons, 32) * batch * rt.numRecordingTimesteps
		if _, err := rt.RegisterArray(ng.Name, "recordSpk", gtype.Named(gtype.UInt32), words, loc); err != nil {
			return err
		}
	}

	count := varCount(ng, batch, queued)
	if err := rt.allocateNeuronVars(tc, ng, count, ng.Model.Vars, loc); err != nil {
		return err
	}
	return rt.allocateNeuronVars(tc, ng, batch*ng.NumNeurons, ng.Model.AdditionalInput, loc)
}

// varCount is the element count a neuron group's own state variables
// need: delay-slot multiplied when the group requires a delay queue,
// plain batch*numNeurons otherwise.
func varCount(ng *model.NeuronGroup, batch int, queued bool) int {
	if queued {
		return batch * ng.NumNeurons * ng.NumDelaySlots
	}
	return batch * ng.NumNeurons
}

// allocateSynapseGroup creates sg's weight array (when its matrix type
// carries per-synapse INDIVIDUAL weights; KERNEL/PROCEDURALG weights are
// generated procedurally and never host-allocated here, since the model
// IR does not track kernel size as a separate shape descriptor), its
// connectivity arrays, its fused outPost/outPre accumulators, its
// dendritic-delay arrays, and its weight-update/postsynaptic variables.
func (rt *Runtime) allocateSynapseGroup(tc *gtype.TypeContext, batch int, sg *model.SynapseGroup) error {
	loc := rt.model.DefaultVarLocation()
	rowStride := rt.backend.SynapticMatrixRowStride(sg)

	if sg.Matrix.Weight == model.Individual {
		switch sg.Matrix.Connectivity {
		case model.Dense, model.Sparse, model.Bitmask:
			if err := rt.allocateVars(tc, sg.Name, sg.Src.NumNeurons*rowStride, sg.WUM.Vars, loc); err != nil {
				return err
			}
		}
	}

	switch sg.Matrix.Connectivity {
	case model.Sparse:
		connLoc := rt.model.DefaultSparseConnectivityLocation()
		if _, err := rt.RegisterArray(sg.Name, "rowLength", gtype.Named(gtype.UInt32), sg.Src.NumNeurons, connLoc); err != nil {
			return err
		}
		indKind := gtype.UInt32
		if sg.NarrowSparseInd {
			indKind = gtype.NarrowSparseIndKind(sg.Trg.NumNeurons)
		}
		if _, err := rt.RegisterArray(sg.Name, "ind", gtype.Named(indKind), sg.Src.NumNeurons*rowStride, connLoc); err != nil {
			return err
		}
		if sg.Connectivity.ColBuildCode != "" {
			if _, err := rt.RegisterArray(sg.Name, "colLength", gtype.Named(gtype.UInt32), sg.Trg.NumNeurons, connLoc); err != nil {
				return err
			}
			if _, err := rt.RegisterArray(sg.Name, "remap", gtype.Named(gtype.UInt32), sg.Trg.NumNeurons*rowStride, connLoc); err != nil {
				return err
			}
		}
	case model.Bitmask:
		connLoc := rt.model.DefaultSparseConnectivityLocation()
		words := ceilDiv(sg.Src.NumNeurons*rowStride, 32)
		if _, err := rt.RegisterArray(sg.Name, "gp", gtype.Named(gtype.UInt32), words, connLoc); err != nil {
			return err
		}
	}

	if _, err := rt.RegisterArray(sg.Trg.Name, "outPost", tc.Resolve(gtype.ScalarType), batch*sg.Trg.NumNeurons, loc); err != nil {
		return err
	}
	if _, err := rt.RegisterArray(sg.Src.Name, "outPre", tc.Resolve(gtype.ScalarType), batch*sg.Src.NumNeurons, loc); err != nil {
		return err
	}

	if sg.RequiresDendriticDelay() {
		if _, err := rt.RegisterArray(sg.Name, "denDelay", tc.Resolve(gtype.ScalarType), batch*sg.Trg.NumNeurons*sg.MaxDendriticDelayTimesteps, loc); err != nil {
			return err
		}
		if _, err := rt.RegisterArray(sg.Name, "denDelayPtr", gtype.Named(gtype.UInt32), batch, loc); err != nil {
			return err
		}
	}

	if err := rt.allocateVars(tc, sg.Name, batch*sg.Src.NumNeurons, sg.WUM.PreVars, loc); err != nil {
		return err
	}
	if err := rt.allocateVars(tc, sg.Name, batch*sg.Trg.NumNeurons, sg.WUM.PostVars, loc); err != nil {
		return err
	}
	return rt.allocateVars(tc, sg.Name, batch*sg.Trg.NumNeurons, sg.PSM.Vars, loc)
}

// allocateCustomConnectivityUpdate creates ccu's row-dimensioned Vars
// (one per existing synaptic connection, following its target group's
// row stride) plus its presynaptic- and postsynaptic-dimensioned
// PreVars/PostVars.
func (rt *Runtime) allocateCustomConnectivityUpdate(tc *gtype.TypeContext, batch int, ccu *model.CustomConnectivityUpdate) error {
	loc := rt.model.DefaultVarLocation()
	rowStride := rt.backend.SynapticMatrixRowStride(ccu.Target)
	if err := rt.allocateVars(tc, ccu.Name, ccu.Target.Src.NumNeurons*rowStride, ccu.Vars, loc); err != nil {
		return err
	}
	if err := rt.allocateVars(tc, ccu.Name, batch*ccu.Target.Src.NumNeurons, ccu.PreVars, loc); err != nil {
		return err
	}
	return rt.allocateVars(tc, ccu.Name, batch*ccu.Target.Trg.NumNeurons, ccu.PostVars, loc)
}
