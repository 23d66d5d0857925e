// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "fmt"

// delayConsumerNames are the identifiers and identifier suffixes Finalise scans
// synapse-group and current-source code for when deciding whether a
// neuron group's variables require a delay queue at all (§4.1).
var delayConsumerNames = []string{"_pre", "_post", "st_pre", "prev_st_pre", "st_post", "prev_st_post", "set_pre", "prev_set_pre"}

// Finalise computes every derived parameter, finalises variable
// initialisers, and determines per-neuron-group delay-queue and
// spike-buffer requirements by scanning consumer code. It then freezes
// the model: no further Add*/Set* call will succeed. Calling Finalise a
// second time on an already-frozen model is a no-op (idempotent), per the
// round-trip property in §8.
func (m *Model) Finalise(dt float64) error {
	if m.frozen {
		return nil
	}
	if err := m.SetDT(dt); err != nil {
		return err
	}

	report := m.Validate()
	if !report.OK() {
		return report.Problems[0].Err
	}

	params := map[string]float64{}
	evalDerived := func(group string, dps []DerivedParam, base []Param) error {
		for _, p := range base {
			params[p.Name] = p.Value
		}
		for i := range dps {
			dp := &dps[i]
			if dp.resolved {
				continue
			}
			if dp.Func == nil {
				return fmt.Errorf("%s: derived parameter %q has no Func", group, dp.Name)
			}
			dp.value = dp.Func(params, dt)
			dp.resolved = true
			params[dp.Name] = dp.value
		}
		return nil
	}

	for _, ng := range m.NeuronGroups() {
		if err := evalDerived(ng.Name, ng.Model.DerivedParams, ng.Model.Params); err != nil {
			return err
		}
	}
	for _, sg := range m.SynapseGroups() {
		if err := evalDerived(sg.Name, sg.WUM.DerivedParams, sg.WUM.Params); err != nil {
			return err
		}
		if err := evalDerived(sg.Name, sg.PSM.DerivedParams, sg.PSM.Params); err != nil {
			return err
		}
	}
	for _, cs := range m.CurrentSources() {
		if err := evalDerived(cs.Name, cs.DerivedParams, cs.Params); err != nil {
			return err
		}
	}
	for _, cu := range m.CustomUpdates() {
		if err := evalDerived(cu.Name, cu.DerivedParams, cu.Params); err != nil {
			return err
		}
	}

	// Delay-slot requirements: axonal delay consumes delaySteps+1 slots
	// on the source group, back-propagation delay consumes
	// backPropDelaySteps+1 on the target group.
	for _, sg := range m.SynapseGroups() {
		sg.Src.noteDelayRequirement(sg.AxonalDelaySteps)
		if sg.WUM.postLearnCode.Frag != nil || sg.WUM.PostLearnCode != "" {
			sg.Trg.noteDelayRequirement(sg.BackPropDelaySteps)
		}
		sg.requiresDendriticDelay = sg.WUM.simCode.ReferencesIdentifier("addToPostDelay")
		if sg.requiresDendriticDelay && sg.MaxDendriticDelayTimesteps < 1 {
			sg.MaxDendriticDelayTimesteps = 1
		}
	}

	// A neuron group whose own sim/threshold/reset code references any
	// of its own delayed forms also needs at least one delay slot beyond
	// the immediate value.
	for _, ng := range m.NeuronGroups() {
		for _, suffix := range delayConsumerNames {
			if ng.simCode.ReferencesIdentifier(suffix) || ng.thresholdCode.ReferencesIdentifier(suffix) || ng.resetCode.ReferencesIdentifier(suffix) {
				ng.noteDelayRequirement(1)
				break
			}
		}
		ng.SpikesRequired = true
		ng.PrevSpikeTimesRequired = ng.thresholdCode.ReferencesIdentifier("prev_st_pre") || ng.thresholdCode.ReferencesIdentifier("prev_st_post")
	}

	m.frozen = true
	return nil
}

// DerivedValue returns the resolved value of a derived parameter; it is
// only meaningful after Finalise has run.
func (dp DerivedParam) DerivedValue() (float64, bool) { return dp.value, dp.resolved }
