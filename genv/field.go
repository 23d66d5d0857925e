// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package genv

import (
	"fmt"

	"github.com/snncore/gennsl/gtype"
	"github.com/snncore/gennsl/merge"
)

// EnvironmentGroupMergedField layers field registration on top of a plain
// environment: binding a name additionally registers (or reuses) a field
// on the backing merged group, named T for the member kind (e.g.
// *model.NeuronGroup) exactly as merge.MergedGroup is parameterised.
type EnvironmentGroupMergedField[T any] struct {
	*EnvironmentExternalBase
	Group *merge.MergedGroup[T]
}

// NewFieldEnvironment returns a field-registering environment over group,
// chained to outer.
func NewFieldEnvironment[T any](outer *EnvironmentExternalBase, group *merge.MergedGroup[T]) *EnvironmentGroupMergedField[T] {
	return &EnvironmentGroupMergedField[T]{
		EnvironmentExternalBase: NewEnvironment(outer),
		Group:                   group,
	}
}

// BindField adds a field-backed binding: values supplies one value per
// member of Group, in member order, used to decide homogeneity. expand
// is the source text generated code should substitute for name — for a
// heterogeneous field this is normally a per-member array index
// expression (e.g. "group->a[idx]"); for a homogeneous one it is often
// simply left empty so the printer falls back to the literal field name,
// which codegen then renders as the shared constant.
func (e *EnvironmentGroupMergedField[T]) BindField(name string, typ gtype.ResolvedType, values []float64, expand string, writable bool) []string {
	if len(values) != len(e.Group.Members) {
		panic(fmt.Sprintf("genv: BindField(%q): expected %d values (one per member), got %d", name, len(e.Group.Members), len(values)))
	}
	e.Group.AddField(name, typ, values)
	return e.Bind(name, Binding{Type: typ, Writable: writable, Expand: expand})
}
