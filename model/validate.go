// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "fmt"

// ValidationProblem is one configuration problem found while validating a
// Model, named so a caller can tell which group produced it.
type ValidationProblem struct {
	Group string
	Err   error
}

func (p ValidationProblem) String() string { return fmt.Sprintf("%s: %v", p.Group, p.Err) }

// ValidationReport aggregates every configuration problem found across an
// entire Model in one pass, so a user fixing a model doesn't have to
// re-run the build once per error (see Model.Validate).
type ValidationReport struct {
	Problems []ValidationProblem
}

func (r *ValidationReport) add(group string, err error) {
	r.Problems = append(r.Problems, ValidationProblem{Group: group, Err: err})
}

// OK reports whether the report found nothing wrong.
func (r *ValidationReport) OK() bool { return len(r.Problems) == 0 }

// Validate walks every group in m and collects every configuration
// problem it can find, rather than stopping at the first one. It does
// not mutate m and may be called at any time, frozen or not.
func (m *Model) Validate() *ValidationReport {
	report := &ValidationReport{}

	for _, sg := range m.SynapseGroups() {
		if sg.Src == nil || sg.Trg == nil {
			report.add(sg.Name, fmt.Errorf("%w: missing source or target neuron group", ErrUnknownGroup))
			continue
		}
		if err := sg.Matrix.Validate(sg.Connectivity.ColBuildCode != "", sg.WUM.PostLearnCode != "", sg.WUM.SynapseDynamicsCode != ""); err != nil {
			report.add(sg.Name, err)
		}
		if sg.PreTargetVar != "" && !m.targetVariableExists(sg.Trg, sg.PreTargetVar) {
			report.add(sg.Name, fmt.Errorf("%w: %q on target group %q", ErrUnknownTargetVariable, sg.PreTargetVar, sg.Trg.Name))
		}
	}

	for _, cs := range m.CurrentSources() {
		if cs.Target == nil {
			report.add(cs.Name, fmt.Errorf("%w: missing target neuron group", ErrUnknownGroup))
		}
	}

	for _, ccu := range m.CustomConnectivityUpdates() {
		if ccu.Target == nil {
			report.add(ccu.Name, fmt.Errorf("%w: missing target synapse group", ErrUnknownGroup))
		}
	}

	m.lastReport = report
	return report
}

// targetVariableExists reports whether name is "Isyn" or names one of the
// group's declared additional input variables.
func (m *Model) targetVariableExists(ng *NeuronGroup, name string) bool {
	if name == "Isyn" {
		return true
	}
	for _, v := range ng.Model.AdditionalInput {
		if v.Name == name {
			return true
		}
	}
	return false
}
