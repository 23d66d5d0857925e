// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package merge

import (
	"github.com/snncore/gennsl/digest"
	"github.com/snncore/gennsl/model"
)

// MergedSynapseGroup wraps a MergedGroup of *model.SynapseGroup with the
// postsynaptic-input accumulator access rule from the design notes: a
// fused consumer group never gets its own InSyn — only the archetype's
// environment may read it. This is enforced structurally (codegen never
// opens an environment binding "inSyn" for anything but the archetype),
// not by a runtime check, which is why it lives here as a predicate
// rather than as a guarded accessor.
type MergedSynapseGroup struct {
	*MergedGroup[*model.SynapseGroup]
}

// NewMergedSynapseGroup wraps an already-partitioned group.
func NewMergedSynapseGroup(mg *MergedGroup[*model.SynapseGroup]) *MergedSynapseGroup {
	return &MergedSynapseGroup{MergedGroup: mg}
}

// InSynReadableBy reports whether sg (one of this merged group's members)
// may have its postsynaptic input accumulator read directly: only true
// for the archetype. Fused consumers must go through the archetype's
// emitted code instead of re-reading their own slot.
func (m *MergedSynapseGroup) InSynReadableBy(sg *model.SynapseGroup) bool {
	return sg == m.Archetype()
}

// PartitionSynapseGroupsWU partitions synapse groups for the
// presynaptic-update emission pass.
func PartitionSynapseGroupsWU(groups []*model.SynapseGroup) []*MergedSynapseGroup {
	parts := Partition(groups, (*model.SynapseGroup).WUHashDigest)
	out := make([]*MergedSynapseGroup, len(parts))
	for i, p := range parts {
		out[i] = NewMergedSynapseGroup(p)
	}
	return out
}

// PartitionSynapseGroupsPS partitions synapse groups for the
// postsynaptic-input emission pass, using the fuse-level digest when
// every member individually satisfies CanPSBeFused, and falling back to
// the plain structural digest (so non-fusable groups still get a
// deterministic merged-group identity of their own, just one that never
// collapses with another instance) otherwise.
func PartitionSynapseGroupsPS(groups []*model.SynapseGroup) []*MergedSynapseGroup {
	digestOf := func(sg *model.SynapseGroup) digest.Digest {
		if sg.CanPSBeFused() {
			return sg.PSFuseHashDigest()
		}
		// Not eligible to fuse with anything: fold in the group's own
		// (model-unique) name so it never collapses with another
		// non-fusable group that happens to share a plain PSHashDigest.
		return digest.New().WriteDigest(sg.PSHashDigest()).WriteString(sg.Name).Sum()
	}
	parts := Partition(groups, digestOf)
	out := make([]*MergedSynapseGroup, len(parts))
	for i, p := range parts {
		out[i] = NewMergedSynapseGroup(p)
	}
	return out
}

// MergedNeuronGroup wraps a MergedGroup of *model.NeuronGroup. It has no
// access restrictions of its own; it exists as a named type so codegen
// call sites read "MergedNeuronGroup" rather than an instantiated
// generic, matching how the rest of the package names its merged kinds.
type MergedNeuronGroup struct {
	*MergedGroup[*model.NeuronGroup]
}

// PartitionNeuronGroups partitions neuron groups for the neuron-update
// emission pass.
func PartitionNeuronGroups(groups []*model.NeuronGroup) []*MergedNeuronGroup {
	parts := Partition(groups, (*model.NeuronGroup).HashDigest)
	out := make([]*MergedNeuronGroup, len(parts))
	for i, p := range parts {
		out[i] = &MergedNeuronGroup{MergedGroup: p}
	}
	return out
}
