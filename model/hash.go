// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "github.com/snncore/gennsl/digest"

// HashDigest returns the structural-equality digest of ng: every flag
// that affects the shape of generated neuron-update code, but none of
// the concrete parameter values (those only matter for fuse-level
// digests). Two neuron groups with equal HashDigest can share a merged
// neuron-update kernel.
func (ng *NeuronGroup) HashDigest() digest.Digest {
	b := digest.New().WriteString("NeuronGroup")
	b.WriteString(ng.Model.SimCode)
	b.WriteString(ng.Model.ThresholdCondition)
	b.WriteString(ng.Model.ResetCode)
	b.WriteBool(ng.Model.AutoRefractoryRequired)
	b.WriteInt(ng.NumDelaySlots)
	for _, v := range ng.Model.Vars {
		b.WriteString(v.Name)
		b.WriteString(v.Type.String())
		b.WriteInt(int(v.Access))
	}
	for _, p := range ng.Model.Params {
		b.WriteString(p.Name)
	}
	for _, e := range ng.Model.EGPs {
		b.WriteString(e.Name)
		b.WriteString(e.Type.String())
	}
	return b.Sum()
}

// VarLocationHashDigest captures only the memory-placement choices for
// ng's variables, used to decide whether two otherwise-identical groups
// can still share generated host/device marshalling code.
func (ng *NeuronGroup) VarLocationHashDigest(def Location) digest.Digest {
	b := digest.New().WriteString("NeuronGroupVarLocation")
	for _, v := range ng.Model.Vars {
		b.WriteString(v.Name)
		b.WriteInt(int(ng.VarLocation(v.Name, def)))
	}
	return b.Sum()
}

// HashDigest returns the structural-equality digest of sg: matrix type,
// delay configuration, span type, and every code fragment's own text —
// but not parameter values.
func (sg *SynapseGroup) HashDigest() digest.Digest {
	b := digest.New().WriteString("SynapseGroup")
	b.WriteInt(int(sg.Matrix.Connectivity))
	b.WriteInt(int(sg.Matrix.Weight))
	b.WriteInt(int(sg.Span))
	b.WriteBool(sg.AxonalDelaySteps > 0)
	b.WriteBool(sg.BackPropDelaySteps > 0)
	b.WriteBool(sg.requiresDendriticDelay)
	b.WriteString(sg.PreTargetVar)
	b.WriteString(sg.PostTargetVar)
	b.WriteDigest(sg.wuStructureDigest())
	b.WriteDigest(sg.psStructureDigest())
	return b.Sum()
}

func (sg *SynapseGroup) wuStructureDigest() digest.Digest {
	b := digest.New().WriteString("WUM")
	b.WriteString(sg.WUM.EventThreshold)
	b.WriteString(sg.WUM.EventCode)
	b.WriteString(sg.WUM.SimCode)
	b.WriteString(sg.WUM.PostLearnCode)
	b.WriteString(sg.WUM.SynapseDynamicsCode)
	b.WriteString(sg.WUM.PreDynamicsCode)
	b.WriteString(sg.WUM.PostDynamicsCode)
	for _, v := range sg.WUM.Vars {
		b.WriteString(v.Name)
		b.WriteString(v.Type.String())
	}
	return b.Sum()
}

func (sg *SynapseGroup) psStructureDigest() digest.Digest {
	b := digest.New().WriteString("PSM")
	b.WriteString(sg.PSM.ApplyInputCode)
	b.WriteString(sg.PSM.DecayCode)
	for _, v := range sg.PSM.Vars {
		b.WriteString(v.Name)
		b.WriteString(v.Type.String())
	}
	return b.Sum()
}

// WUHashDigest is the equality digest used for the presynaptic-update
// emission pass: the weight-update model's structure plus everything
// about the synapse group that the presynaptic kernel depends on.
func (sg *SynapseGroup) WUHashDigest() digest.Digest {
	b := digest.New().WriteString("WUHash")
	b.WriteDigest(sg.wuStructureDigest())
	b.WriteInt(int(sg.Matrix.Connectivity))
	b.WriteInt(int(sg.Span))
	return b.Sum()
}

// WUPreHashDigest is the equality digest for the outgoing pre-dynamics
// emission pass.
func (sg *SynapseGroup) WUPreHashDigest() digest.Digest {
	return digest.New().WriteString("WUPreHash").WriteString(sg.WUM.PreDynamicsCode).Sum()
}

// WUPostHashDigest is the equality digest for the incoming post-dynamics
// emission pass.
func (sg *SynapseGroup) WUPostHashDigest() digest.Digest {
	return digest.New().WriteString("WUPostHash").WriteString(sg.WUM.PostDynamicsCode).Sum()
}

// PSHashDigest is the equality digest for the postsynaptic-input
// emission pass.
func (sg *SynapseGroup) PSHashDigest() digest.Digest {
	b := digest.New().WriteString("PSHash")
	b.WriteDigest(sg.psStructureDigest())
	return b.Sum()
}

// PreOutputHashDigest is the equality digest for groups whose weight
// update model only produces a pre-synaptic output accumulator (no
// postsynaptic target), used by the outgoing pre-output fusion partition.
func (sg *SynapseGroup) PreOutputHashDigest() digest.Digest {
	return digest.New().WriteString("PreOutputHash").WriteString(sg.PostTargetVar).Sum()
}

// DendriticDelayUpdateHashDigest is the equality digest for the
// dendritic-delay ring-buffer advance, relevant only when
// RequiresDendriticDelay is true.
func (sg *SynapseGroup) DendriticDelayUpdateHashDigest() digest.Digest {
	return digest.New().WriteString("DendriticDelayHash").WriteInt(sg.MaxDendriticDelayTimesteps).Sum()
}

// WUInitHashDigest, WUPreInitHashDigest, WUPostInitHashDigest, and
// PSInitHashDigest are the equality digests for the four initialisation
// emission passes: they hash every variable's initialiser *kind* (but
// not its concrete value — that only matters at fuse level) alongside
// the connectivity build code, since init code depends on both.
func (sg *SynapseGroup) WUInitHashDigest() digest.Digest {
	b := digest.New().WriteString("WUInitHash")
	for _, v := range sg.WUM.Vars {
		b.WriteString(v.Name)
		b.WriteInt(int(v.Init.Kind))
	}
	b.WriteString(sg.Connectivity.RowBuildCode)
	b.WriteString(sg.Connectivity.ColBuildCode)
	b.WriteString(sg.Connectivity.KernelBuildCode)
	return b.Sum()
}

func (sg *SynapseGroup) WUPreInitHashDigest() digest.Digest {
	b := digest.New().WriteString("WUPreInitHash")
	for _, v := range sg.WUM.PreVars {
		b.WriteString(v.Name)
		b.WriteInt(int(v.Init.Kind))
	}
	return b.Sum()
}

func (sg *SynapseGroup) WUPostInitHashDigest() digest.Digest {
	b := digest.New().WriteString("WUPostInitHash")
	for _, v := range sg.WUM.PostVars {
		b.WriteString(v.Name)
		b.WriteInt(int(v.Init.Kind))
	}
	return b.Sum()
}

func (sg *SynapseGroup) PSInitHashDigest() digest.Digest {
	b := digest.New().WriteString("PSInitHash")
	for _, v := range sg.PSM.Vars {
		b.WriteString(v.Name)
		b.WriteInt(int(v.Init.Kind))
	}
	return b.Sum()
}

// fuseConstantFields folds every variable's initialiser value into b when
// (a) it is a plain constant and (b) its name is actually referenced by
// relevantCode — per §4.2, parameter values NOT referenced in the
// relevant code must not contribute to the fuse hash, since that's what
// allows heterogeneous parameters to still fuse.
func fuseConstantFields(b *digest.Builder, vars []Variable, params []Param, relevantCode string) {
	for _, v := range vars {
		if v.Init.IsConstant() && (CodeTokens{Source: relevantCode}).ReferencesIdentifier(v.Name) {
			b.WriteString(v.Name).WriteFloat64(v.Init.Value)
		}
	}
	for _, p := range params {
		if (CodeTokens{Source: relevantCode}).ReferencesIdentifier(p.Name) {
			b.WriteString(p.Name).WriteFloat64(p.Value)
		}
	}
}

// PSFuseHashDigest is the stricter equality used when deciding whether
// two synapse groups' postsynaptic models should fuse as the *same
// instance*: the plain PSHashDigest plus the concrete values of any
// constant-initialised variable or parameter that the apply-input/decay
// code actually references.
func (sg *SynapseGroup) PSFuseHashDigest() digest.Digest {
	b := digest.New().WriteDigest(sg.PSHashDigest())
	relevant := sg.PSM.ApplyInputCode + "\n" + sg.PSM.DecayCode
	fuseConstantFields(b, sg.PSM.Vars, sg.PSM.Params, relevant)
	return b.Sum()
}

// WUPreFuseHashDigest is the fuse-level digest for the outgoing
// pre-dynamics pass.
func (sg *SynapseGroup) WUPreFuseHashDigest() digest.Digest {
	b := digest.New().WriteDigest(sg.WUPreHashDigest())
	fuseConstantFields(b, sg.WUM.PreVars, sg.WUM.Params, sg.WUM.PreDynamicsCode)
	return b.Sum()
}

// WUPostFuseHashDigest is the fuse-level digest for the incoming
// post-dynamics pass.
func (sg *SynapseGroup) WUPostFuseHashDigest() digest.Digest {
	b := digest.New().WriteDigest(sg.WUPostHashDigest())
	fuseConstantFields(b, sg.WUM.PostVars, sg.WUM.Params, sg.WUM.PostDynamicsCode)
	return b.Sum()
}

// CanPSBeFused reports whether sg's postsynaptic model satisfies §4.3's
// fusion precondition: every PS variable initialiser is a constant, and
// no PS extra-global-parameter is referenced by the decay or
// apply-input code (an EGP reference would let two otherwise-equal
// groups diverge at runtime without that showing up in the digest).
func (sg *SynapseGroup) CanPSBeFused() bool {
	for _, v := range sg.PSM.Vars {
		if !v.Init.IsConstant() {
			return false
		}
	}
	relevant := CodeTokens{Source: sg.PSM.ApplyInputCode + "\n" + sg.PSM.DecayCode}
	for _, e := range sg.PSM.EGPs {
		if relevant.ReferencesIdentifier(e.Name) {
			return false
		}
	}
	return true
}

// canWUSideBeFused is the shared implementation behind
// CanWUPreBeFused/CanWUPostBeFused: every referenced variable initialiser
// must be constant and no referenced EGP may appear in code.
func canWUSideBeFused(vars []Variable, egps []ExtraGlobalParam, code string) bool {
	for _, v := range vars {
		if !v.Init.IsConstant() {
			return false
		}
	}
	relevant := CodeTokens{Source: code}
	for _, e := range egps {
		if relevant.ReferencesIdentifier(e.Name) {
			return false
		}
	}
	return true
}

// CanWUPreBeFused is the pre-dynamics analogue of CanPSBeFused.
func (sg *SynapseGroup) CanWUPreBeFused() bool {
	return canWUSideBeFused(sg.WUM.PreVars, sg.WUM.EGPs, sg.WUM.PreDynamicsCode)
}

// CanWUPostBeFused is the post-dynamics analogue of CanPSBeFused.
func (sg *SynapseGroup) CanWUPostBeFused() bool {
	return canWUSideBeFused(sg.WUM.PostVars, sg.WUM.EGPs, sg.WUM.PostDynamicsCode)
}

// HashDigest is the structural-equality digest for a CurrentSource: two
// sources attached to neuron groups of equal size can share a merged
// injection kernel when their code and variable shapes match, regardless
// of which neuron group they target.
func (cs *CurrentSource) HashDigest() digest.Digest {
	b := digest.New().WriteString("CurrentSource")
	b.WriteString(cs.InjectionCode)
	for _, v := range cs.Vars {
		b.WriteString(v.Name)
		b.WriteString(v.Type.String())
	}
	for _, p := range cs.Params {
		b.WriteString(p.Name)
	}
	return b.Sum()
}

// HashDigest is the structural-equality digest for a CustomUpdate.
// Every VarReference contributes its full "<ownerName>.<varName>" string,
// so the identity of the group it borrows from is part of the digest.
func (cu *CustomUpdate) HashDigest() digest.Digest {
	b := digest.New().WriteString("CustomUpdate")
	b.WriteString(cu.UpdateGroup)
	b.WriteString(cu.UpdateCode)
	for _, v := range cu.Vars {
		b.WriteString(v.Name)
		b.WriteString(v.Type.String())
	}
	for _, r := range cu.VarReferences {
		b.WriteString(r)
	}
	return b.Sum()
}

// HashDigest is the structural-equality digest for a
// CustomConnectivityUpdate: row- and host-update code plus the shape of
// every variable family, but not the target synapse group's identity.
func (ccu *CustomConnectivityUpdate) HashDigest() digest.Digest {
	b := digest.New().WriteString("CustomConnectivityUpdate")
	b.WriteString(ccu.UpdateGroup)
	b.WriteString(ccu.RowUpdateCode)
	b.WriteString(ccu.HostUpdateCode)
	for _, v := range ccu.Vars {
		b.WriteString(v.Name)
		b.WriteString(v.Type.String())
	}
	for _, v := range ccu.PreVars {
		b.WriteString("pre." + v.Name)
	}
	for _, v := range ccu.PostVars {
		b.WriteString("post." + v.Name)
	}
	return b.Sum()
}
