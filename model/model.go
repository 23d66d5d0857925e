// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package model is the in-memory intermediate representation of a
// spiking-neural-network model: neuron populations, synapse groups,
// current sources, and custom update passes, plus the validation and
// derived-parameter finalisation every one of them must go through
// before the fusion pass (package merge) or the kernel emitter (package
// codegen) ever sees them.
package model

import (
	"fmt"

	"github.com/snncore/gennsl/gtype"
)

// Model owns every group declared against it. Names are unique within
// their own category; Finalise freezes the model so that nothing may
// mutate it afterwards.
type Model struct {
	Name string

	precision     gtype.Precision
	timePrecision gtype.TimePrecision
	dt            float64
	batchSize     int
	seed          uint64

	defaultVarLocation               Location
	defaultExtraGlobalParamLocation  Location
	defaultSparseConnectivityLocation Location
	fusePostsynapticModels           bool
	fusePrePostWeightUpdateModels    bool

	neuronGroups map[string]*NeuronGroup
	neuronOrder  []string
	synapseGroups map[string]*SynapseGroup
	synapseOrder  []string
	currentSources map[string]*CurrentSource
	currentSourceOrder []string
	customUpdates map[string]*CustomUpdate
	customUpdateOrder []string
	customConnUpdates map[string]*CustomConnectivityUpdate
	customConnUpdateOrder []string

	frozen bool
	lastReport *ValidationReport
}

// NewModel returns an empty Model with float precision, batch size 1, and
// HOST_DEVICE default locations — the same defaults the reference backend
// assumes when a caller never overrides them.
func NewModel(name string) *Model {
	return &Model{
		Name:      name,
		precision: gtype.PrecisionFloat,
		batchSize: 1,
		defaultVarLocation:                HostDevice,
		defaultExtraGlobalParamLocation:   HostDevice,
		defaultSparseConnectivityLocation: HostDevice,
		neuronGroups:       map[string]*NeuronGroup{},
		synapseGroups:      map[string]*SynapseGroup{},
		currentSources:     map[string]*CurrentSource{},
		customUpdates:      map[string]*CustomUpdate{},
		customConnUpdates:  map[string]*CustomConnectivityUpdate{},
	}
}

func (m *Model) checkMutable() error {
	if m.frozen {
		return ErrFrozen
	}
	return nil
}

// SetPrecision sets the numeric type "scalar" resolves to.
func (m *Model) SetPrecision(p gtype.Precision) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.precision = p
	return nil
}

// SetTimePrecision sets the numeric type "t", "sT", etc. resolve to.
func (m *Model) SetTimePrecision(p gtype.TimePrecision) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.timePrecision = p
	return nil
}

// SetDT sets the integration timestep, used when evaluating derived
// parameters during Finalise.
func (m *Model) SetDT(dt float64) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.dt = dt
	return nil
}

// SetBatchSize sets the number of parallel batch replicas; must be >= 1.
func (m *Model) SetBatchSize(n int) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("%w: batchSize must be >= 1, got %d", ErrIncompatibleInitialiser, n)
	}
	m.batchSize = n
	return nil
}

// SetSeed sets the deterministic RNG seed; 0 means "auto" (seeded from
// host entropy at runtime load).
func (m *Model) SetSeed(seed uint64) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.seed = seed
	return nil
}

func (m *Model) SetDefaultVarLocation(l Location) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.defaultVarLocation = l
	return nil
}

func (m *Model) SetDefaultExtraGlobalParamLocation(l Location) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.defaultExtraGlobalParamLocation = l
	return nil
}

func (m *Model) SetDefaultSparseConnectivityLocation(l Location) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.defaultSparseConnectivityLocation = l
	return nil
}

func (m *Model) SetFusePostsynapticModels(v bool) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.fusePostsynapticModels = v
	return nil
}

func (m *Model) SetFusePrePostWeightUpdateModels(v bool) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.fusePrePostWeightUpdateModels = v
	return nil
}

func (m *Model) Precision() gtype.Precision         { return m.precision }
func (m *Model) TimePrecision() gtype.TimePrecision { return m.timePrecision }
func (m *Model) DT() float64                        { return m.dt }
func (m *Model) BatchSize() int                     { return m.batchSize }
func (m *Model) Seed() uint64                       { return m.seed }
func (m *Model) FusePostsynapticModels() bool        { return m.fusePostsynapticModels }
func (m *Model) FusePrePostWeightUpdateModels() bool { return m.fusePrePostWeightUpdateModels }

func (m *Model) DefaultVarLocation() Location              { return m.defaultVarLocation }
func (m *Model) DefaultExtraGlobalParamLocation() Location  { return m.defaultExtraGlobalParamLocation }
func (m *Model) DefaultSparseConnectivityLocation() Location { return m.defaultSparseConnectivityLocation }

// TypeContext returns a gtype.TypeContext reflecting the model's current
// precision policy, for use by the transpiler's type-checker.
func (m *Model) TypeContext() *gtype.TypeContext {
	return &gtype.TypeContext{Precision: m.precision, TimePrecision: m.timePrecision, Registry: gtype.NewRegistry()}
}

// NeuronGroups returns every neuron group in declaration order.
func (m *Model) NeuronGroups() []*NeuronGroup {
	out := make([]*NeuronGroup, len(m.neuronOrder))
	for i, n := range m.neuronOrder {
		out[i] = m.neuronGroups[n]
	}
	return out
}

// SynapseGroups returns every synapse group in declaration order.
func (m *Model) SynapseGroups() []*SynapseGroup {
	out := make([]*SynapseGroup, len(m.synapseOrder))
	for i, n := range m.synapseOrder {
		out[i] = m.synapseGroups[n]
	}
	return out
}

// CurrentSources returns every current source in declaration order.
func (m *Model) CurrentSources() []*CurrentSource {
	out := make([]*CurrentSource, len(m.currentSourceOrder))
	for i, n := range m.currentSourceOrder {
		out[i] = m.currentSources[n]
	}
	return out
}

// CustomUpdates returns every custom update in declaration order.
func (m *Model) CustomUpdates() []*CustomUpdate {
	out := make([]*CustomUpdate, len(m.customUpdateOrder))
	for i, n := range m.customUpdateOrder {
		out[i] = m.customUpdates[n]
	}
	return out
}

// CustomConnectivityUpdates returns every custom connectivity update in
// declaration order.
func (m *Model) CustomConnectivityUpdates() []*CustomConnectivityUpdate {
	out := make([]*CustomConnectivityUpdate, len(m.customConnUpdateOrder))
	for i, n := range m.customConnUpdateOrder {
		out[i] = m.customConnUpdates[n]
	}
	return out
}

// NeuronGroup looks up a previously added neuron group by name.
func (m *Model) NeuronGroup(name string) (*NeuronGroup, bool) {
	ng, ok := m.neuronGroups[name]
	return ng, ok
}

// SynapseGroup looks up a previously added synapse group by name.
func (m *Model) SynapseGroup(name string) (*SynapseGroup, bool) {
	sg, ok := m.synapseGroups[name]
	return sg, ok
}

// AddNeuronPopulation declares a new neuron group. Code fragments are
// scanned immediately.
func (m *Model) AddNeuronPopulation(name string, numNeurons int, nm NeuronModel) (*NeuronGroup, error) {
	if err := m.checkMutable(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: neuron group name must not be empty", ErrDuplicateName)
	}
	if _, exists := m.neuronGroups[name]; exists {
		return nil, fmt.Errorf("%w: neuron group %q", ErrDuplicateName, name)
	}
	ng := &NeuronGroup{Name: name, NumNeurons: numNeurons, Model: nm, NumDelaySlots: 1}
	var err error
	if nm.SimCode != "" {
		if ng.simCode, err = NewCodeTokens(nm.SimCode, fmt.Sprintf("NeuronGroup %q sim code", name)); err != nil {
			return nil, err
		}
	}
	if nm.ThresholdCondition != "" {
		if ng.thresholdCode, err = NewCodeTokens(nm.ThresholdCondition+";", fmt.Sprintf("NeuronGroup %q threshold condition", name)); err != nil {
			return nil, err
		}
	}
	if nm.ResetCode != "" {
		if ng.resetCode, err = NewCodeTokens(nm.ResetCode, fmt.Sprintf("NeuronGroup %q reset code", name)); err != nil {
			return nil, err
		}
	}
	ng.Model.AutoRefractoryRequired = nm.AutoRefractoryRequired
	m.neuronGroups[name] = ng
	m.neuronOrder = append(m.neuronOrder, name)
	return ng, nil
}

// AddSynapsePopulation declares a new synapse group connecting src to trg.
func (m *Model) AddSynapsePopulation(name string, src, trg *NeuronGroup, matrix MatrixType, wum WeightUpdateModel, psm PostsynapticModel) (*SynapseGroup, error) {
	if err := m.checkMutable(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: synapse group name must not be empty", ErrDuplicateName)
	}
	if _, exists := m.synapseGroups[name]; exists {
		return nil, fmt.Errorf("%w: synapse group %q", ErrDuplicateName, name)
	}
	if src == nil || trg == nil {
		return nil, fmt.Errorf("%w: source and target neuron groups must be non-nil", ErrUnknownGroup)
	}
	sg := &SynapseGroup{
		Name: name, Src: src, Trg: trg, Matrix: matrix,
		PreTargetVar: "Isyn", PostTargetVar: "Isyn", ThreadsPerSpike: 1,
	}
	// The connectivity initialiser is attached later via SetConnectivity,
	// so the column-build half of the compatibility check happens there;
	// here we only catch conflicts already decidable from the WUM itself.
	if err := matrix.Validate(false, wum.PostLearnCode != "", wum.SynapseDynamicsCode != ""); err != nil {
		return nil, err
	}

	var err error
	if wum.SimCode != "" {
		if wum.simCode, err = NewCodeTokens(wum.SimCode, fmt.Sprintf("Synapse group %q weight update model sim code", name)); err != nil {
			return nil, err
		}
	}
	if wum.EventCode != "" {
		if wum.eventCode, err = NewCodeTokens(wum.EventCode, fmt.Sprintf("Synapse group %q weight update model event code", name)); err != nil {
			return nil, err
		}
	}
	if wum.PostLearnCode != "" {
		if wum.postLearnCode, err = NewCodeTokens(wum.PostLearnCode, fmt.Sprintf("Synapse group %q weight update model post-learn code", name)); err != nil {
			return nil, err
		}
	}
	if wum.SynapseDynamicsCode != "" {
		if wum.synapseDynCode, err = NewCodeTokens(wum.SynapseDynamicsCode, fmt.Sprintf("Synapse group %q weight update model synapse dynamics code", name)); err != nil {
			return nil, err
		}
	}
	if wum.PreDynamicsCode != "" {
		if wum.preDynCode, err = NewCodeTokens(wum.PreDynamicsCode, fmt.Sprintf("Synapse group %q weight update model pre-dynamics code", name)); err != nil {
			return nil, err
		}
	}
	if wum.PostDynamicsCode != "" {
		if wum.postDynCode, err = NewCodeTokens(wum.PostDynamicsCode, fmt.Sprintf("Synapse group %q weight update model post-dynamics code", name)); err != nil {
			return nil, err
		}
	}
	if psm.ApplyInputCode != "" {
		if psm.applyInputCode, err = NewCodeTokens(psm.ApplyInputCode, fmt.Sprintf("Synapse group %q postsynaptic model apply-input code", name)); err != nil {
			return nil, err
		}
	}
	if psm.DecayCode != "" {
		if psm.decayCode, err = NewCodeTokens(psm.DecayCode, fmt.Sprintf("Synapse group %q postsynaptic model decay code", name)); err != nil {
			return nil, err
		}
	}
	sg.WUM = wum
	sg.PSM = psm
	m.synapseGroups[name] = sg
	m.synapseOrder = append(m.synapseOrder, name)
	return sg, nil
}

// SetConnectivity attaches a connectivity initialiser to an already-added
// synapse group, scanning its build-code fragments immediately.
func (m *Model) SetConnectivity(sg *SynapseGroup, ci ConnectivityInit) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	if err := sg.Matrix.Validate(ci.ColBuildCode != "", sg.WUM.PostLearnCode != "", sg.WUM.SynapseDynamicsCode != ""); err != nil {
		return err
	}
	var err error
	if ci.RowBuildCode != "" {
		if ci.rowBuild, err = NewCodeTokens(ci.RowBuildCode, fmt.Sprintf("Synapse group %q connectivity row-build code", sg.Name)); err != nil {
			return err
		}
	}
	if ci.ColBuildCode != "" {
		if ci.colBuild, err = NewCodeTokens(ci.ColBuildCode, fmt.Sprintf("Synapse group %q connectivity col-build code", sg.Name)); err != nil {
			return err
		}
	}
	if ci.KernelBuildCode != "" {
		if ci.kernBuild, err = NewCodeTokens(ci.KernelBuildCode, fmt.Sprintf("Synapse group %q connectivity kernel-build code", sg.Name)); err != nil {
			return err
		}
	}
	sg.Connectivity = ci
	return nil
}

// AddCurrentSource declares a current injection attached to target.
func (m *Model) AddCurrentSource(name string, target *NeuronGroup, cs CurrentSource) (*CurrentSource, error) {
	if err := m.checkMutable(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: current source name must not be empty", ErrDuplicateName)
	}
	if _, exists := m.currentSources[name]; exists {
		return nil, fmt.Errorf("%w: current source %q", ErrDuplicateName, name)
	}
	cs.Name = name
	cs.Target = target
	if cs.InjectionCode != "" {
		var err error
		if cs.injectionCode, err = NewCodeTokens(cs.InjectionCode, fmt.Sprintf("CurrentSource %q injection code", name)); err != nil {
			return nil, err
		}
	}
	ptr := &cs
	m.currentSources[name] = ptr
	m.currentSourceOrder = append(m.currentSourceOrder, name)
	return ptr, nil
}

// AddCustomUpdate declares a custom update pass.
func (m *Model) AddCustomUpdate(name string, cu CustomUpdate) (*CustomUpdate, error) {
	if err := m.checkMutable(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: custom update name must not be empty", ErrDuplicateName)
	}
	if _, exists := m.customUpdates[name]; exists {
		return nil, fmt.Errorf("%w: custom update %q", ErrDuplicateName, name)
	}
	cu.Name = name
	if cu.UpdateCode != "" {
		var err error
		if cu.updateCode, err = NewCodeTokens(cu.UpdateCode, fmt.Sprintf("CustomUpdate %q update code", name)); err != nil {
			return nil, err
		}
	}
	ptr := &cu
	m.customUpdates[name] = ptr
	m.customUpdateOrder = append(m.customUpdateOrder, name)
	return ptr, nil
}

// AddCustomConnectivityUpdate declares a custom update pass over one
// synapse group's connectivity.
func (m *Model) AddCustomConnectivityUpdate(name string, target *SynapseGroup, ccu CustomConnectivityUpdate) (*CustomConnectivityUpdate, error) {
	if err := m.checkMutable(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: custom connectivity update name must not be empty", ErrDuplicateName)
	}
	if _, exists := m.customConnUpdates[name]; exists {
		return nil, fmt.Errorf("%w: custom connectivity update %q", ErrDuplicateName, name)
	}
	ccu.Name = name
	ccu.Target = target
	if ccu.RowUpdateCode != "" {
		var err error
		if ccu.rowUpdateCode, err = NewCodeTokens(ccu.RowUpdateCode, fmt.Sprintf("CustomConnectivityUpdate %q row update code", name)); err != nil {
			return nil, err
		}
	}
	ptr := &ccu
	m.customConnUpdates[name] = ptr
	m.customConnUpdateOrder = append(m.customConnUpdateOrder, name)
	return ptr, nil
}

// IsFrozen reports whether Finalise has already run.
func (m *Model) IsFrozen() bool { return m.frozen }

// LastValidationReport returns the report produced by the most recent
// call to Validate or Finalise, or nil if neither has run yet.
func (m *Model) LastValidationReport() *ValidationReport { return m.lastReport }
