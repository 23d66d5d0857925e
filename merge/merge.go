// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package merge collapses structurally identical model-IR groups into
// shared MergedGroup aggregates, the unit the kernel emitter (package
// codegen) actually walks. A merged group picks one member as its
// archetype, exposes field accessors usable from any member, and tracks
// which fields are "homogeneous" (same value across every member, so a
// compile-time constant suffices) versus "heterogeneous" (materialised
// as a per-member runtime field).
package merge

import (
	"github.com/snncore/gennsl/digest"
	"github.com/snncore/gennsl/gtype"
)

// Field is one accessor registered on a MergedGroup: either a
// compile-time constant shared by every member (Homogeneous), or a
// per-member runtime array the generator must materialise.
type Field struct {
	Name        string
	Type        gtype.ResolvedType
	Homogeneous bool
	Value       float64 // meaningful only when Homogeneous
}

// MergedGroup is an ordered aggregate of groups of kind T whose
// structural digest (for the emission pass this instance was built for)
// is equal. The Archetype is always Members[0] — the lowest stable
// index in declaration order, per §4.3.
type MergedGroup[T any] struct {
	Digest  digest.Digest
	Members []T

	fields *orderedFields[Field]
}

// Archetype returns the representative member used for code generation.
func (mg *MergedGroup[T]) Archetype() T { return mg.Members[0] }

// AddField registers a field by name, computing homogeneity from the
// per-member values supplied (one per Members entry, same order). It is
// idempotent: re-adding an existing field name is a no-op and returns
// false for "newly added".
func (mg *MergedGroup[T]) AddField(name string, typ gtype.ResolvedType, values []float64) bool {
	if mg.fields == nil {
		mg.fields = newOrderedFields[Field]()
	}
	homogeneous := true
	for i := 1; i < len(values); i++ {
		if values[i] != values[0] {
			homogeneous = false
			break
		}
	}
	f := Field{Name: name, Type: typ, Homogeneous: homogeneous}
	if homogeneous && len(values) > 0 {
		f.Value = values[0]
	}
	return mg.fields.Add(name, f)
}

// Field looks up a previously-added field by name.
func (mg *MergedGroup[T]) Field(name string) (Field, bool) {
	if mg.fields == nil {
		return Field{}, false
	}
	return mg.fields.Get(name)
}

// Fields returns every registered field name in first-added order.
func (mg *MergedGroup[T]) Fields() []string {
	if mg.fields == nil {
		return nil
	}
	return mg.fields.Keys()
}

// Partition groups items into MergedGroups by the digest each returns
// from digestOf, in first-seen (stable) order: the first item to
// produce a given digest becomes that merged group's archetype, and the
// merged groups themselves are returned in the order their digest was
// first seen.
func Partition[T any](items []T, digestOf func(T) digest.Digest) []*MergedGroup[T] {
	var order []digest.Digest
	byDigest := map[digest.Digest]*MergedGroup[T]{}
	for _, item := range items {
		d := digestOf(item)
		mg, ok := byDigest[d]
		if !ok {
			mg = &MergedGroup[T]{Digest: d}
			byDigest[d] = mg
			order = append(order, d)
		}
		mg.Members = append(mg.Members, item)
	}
	out := make([]*MergedGroup[T], len(order))
	for i, d := range order {
		out[i] = byDigest[d]
	}
	return out
}
