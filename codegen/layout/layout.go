// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package layout checks the generated device-side struct layouts codegen
// assembles for every merged group against the two invariants the
// teacher's own struct-alignment checker enforces: every field must be a
// 32-bit scalar kind (no 64-bit or 8/16-bit field leaks into a device
// struct unpadded), and the struct's total size must be a multiple of 16
// bytes (four float32s), so it stays GPU-constant-buffer friendly. Unlike
// the teacher, which inspects compiled go/types.Struct values pulled out
// of a real Go package, there is no Go struct to reflect over here — the
// struct being checked is codegen's own StructLayout IR, built directly
// from a MergedGroup's field list.
package layout

import (
	"github.com/snncore/gennsl/gtype"
	"github.com/snncore/gennsl/logx"
)

// Field is one member of a generated device struct.
type Field struct {
	Name string
	Type gtype.ResolvedType
}

// StructLayout is the flat field list codegen builds for one merged
// group's per-member device-side array-of-structs record (or, for a
// structure-of-arrays backend, the notional "row" those arrays would form
// if packed together — the check cares only about field shape, not the
// physical memory layout a particular backend ultimately chooses).
type StructLayout struct {
	Name   string
	Fields []Field
}

func sizeOf(t gtype.ResolvedType) int {
	if t.IsPointer() {
		return 8
	}
	switch t.Base {
	case gtype.Bool, gtype.UInt8:
		return 1
	case gtype.UInt16:
		return 2
	case gtype.Int32, gtype.UInt32, gtype.Float:
		return 4
	case gtype.UInt64, gtype.Double:
		return 8
	case gtype.LongDouble:
		return 16
	default:
		return 4
	}
}

func is32BitScalar(t gtype.ResolvedType) bool {
	if t.IsPointer() {
		return true // pointers are always an acceptable field kind regardless of width
	}
	switch t.Base {
	case gtype.Int32, gtype.UInt32, gtype.Float, gtype.Scalar:
		return true
	}
	return false
}

// CheckStruct validates one StructLayout against both invariants,
// reporting every violation through log via Warnf rather than failing —
// matching the teacher's own alignsl.CheckStruct, which prints and moves
// on instead of aborting generation.
func CheckStruct(sl StructLayout, log *logx.Logger) {
	if len(sl.Fields) == 0 {
		return
	}
	total := 0
	for _, f := range sl.Fields {
		if !is32BitScalar(f.Type) {
			log.Warnf("%s.%s: field type %s is not a 32-bit scalar kind", sl.Name, f.Name, f.Type.String())
		}
		total += sizeOf(f.Type)
	}
	if total%16 != 0 {
		log.Warnf("%s: total size %d is not a multiple of 16 bytes", sl.Name, total)
	}
}

// Check validates every struct in layouts in order, using a logx.Logger
// tagged "codegen/layout" unless log is non-nil.
func Check(layouts []StructLayout, log *logx.Logger) {
	if log == nil {
		log = logx.Default("codegen").With("layout")
	}
	for _, sl := range layouts {
		CheckStruct(sl, log)
	}
}

// FromMergedFields builds a StructLayout from a merged group's field
// names and types, named after the group for readable diagnostics, e.g.
// "MergedNeuronGroup#0".
func FromMergedFields(name string, names []string, types func(string) gtype.ResolvedType) StructLayout {
	sl := StructLayout{Name: name}
	for _, n := range names {
		sl.Fields = append(sl.Fields, Field{Name: n, Type: types(n)})
	}
	return sl
}
