// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gtype defines the resolved type system shared by the transpiler,
// the model IR and the kernel emitter: numeric kinds and their limits,
// pointer/const wrappers, and the precision policy (TypeContext) that
// decides what "scalar" and "time" actually resolve to for a given model.
package gtype

import "fmt"

// Kind enumerates the small set of scalar kinds the embedded DSL and the
// generated backend code can name.
type Kind int

const (
	Void Kind = iota
	Bool
	Int32
	UInt32
	UInt8
	UInt16
	UInt64
	Float
	Double
	LongDouble
	Scalar // resolves to the model's configured precision
	TimeType // resolves to the model's configured time precision
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Int32:
		return "int"
	case UInt32:
		return "unsigned int"
	case UInt8:
		return "uint8_t"
	case UInt16:
		return "uint16_t"
	case UInt64:
		return "uint64_t"
	case Float:
		return "float"
	case Double:
		return "double"
	case LongDouble:
		return "long double"
	case Scalar:
		return "scalar"
	case TimeType:
		return "timepoint"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsIntegral reports whether the kind is one of the fixed-width integer kinds.
func (k Kind) IsIntegral() bool {
	switch k {
	case Int32, UInt32, UInt8, UInt16, UInt64:
		return true
	}
	return false
}

// IsFloating reports whether the kind is a floating-point kind (including the
// unresolved Scalar/TimeType placeholders, which always resolve to a float kind).
func (k Kind) IsFloating() bool {
	switch k {
	case Float, Double, LongDouble, Scalar, TimeType:
		return true
	}
	return false
}

// Limits holds the numeric range of a Kind, mirroring the host language's
// <limits>/<cfloat> constants that generated backend code relies on for
// things like an unset threshold sentinel.
type Limits struct {
	Min, Max float64
}

// NumericLimits returns the representable range of k. Resolved kinds
// (Scalar/TimeType) must be passed through a TypeContext.Resolve first.
func NumericLimits(k Kind) Limits {
	switch k {
	case Bool:
		return Limits{0, 1}
	case Int32:
		return Limits{-2147483648, 2147483647}
	case UInt32:
		return Limits{0, 4294967295}
	case UInt8:
		return Limits{0, 255}
	case UInt16:
		return Limits{0, 65535}
	case UInt64:
		return Limits{0, 18446744073709551615}
	case Float:
		return Limits{-3.402823e+38, 3.402823e+38}
	case Double, LongDouble:
		return Limits{-1.797693e+308, 1.797693e+308}
	default:
		return Limits{}
	}
}

// ResolvedType is a fully-resolved type as it will appear in generated
// source: a base Kind plus const/pointer qualifiers.
type ResolvedType struct {
	Base    Kind
	Const   bool
	Pointer int // 0 = value type, 1 = T*, 2 = T**, ...
}

// Scalar is shorthand for the unqualified model-precision scalar type.
var ScalarType = ResolvedType{Base: Scalar}

// TimeT is shorthand for the unqualified model time-precision type.
var TimeT = ResolvedType{Base: TimeType}

// Named constructs a value ResolvedType of the given kind.
func Named(k Kind) ResolvedType { return ResolvedType{Base: k} }

// PointerTo returns a pointer-qualified copy of t (one level deeper).
func (t ResolvedType) PointerTo() ResolvedType {
	t.Pointer++
	return t
}

// Deref returns a copy of t with one pointer level removed; it is a no-op
// (never negative) on a value type.
func (t ResolvedType) Deref() ResolvedType {
	if t.Pointer > 0 {
		t.Pointer--
	}
	return t
}

// Constant returns a const-qualified copy of t.
func (t ResolvedType) Constant() ResolvedType {
	t.Const = true
	return t
}

// IsPointer reports whether t has at least one pointer level.
func (t ResolvedType) IsPointer() bool { return t.Pointer > 0 }

// String renders t the way it would appear in generated C-like source,
// e.g. "const float*".
func (t ResolvedType) String() string {
	s := t.Base.String()
	if t.Const {
		s = "const " + s
	}
	for i := 0; i < t.Pointer; i++ {
		s += "*"
	}
	return s
}

// Precision selects the numeric type backing "scalar" in generated code.
type Precision int

const (
	PrecisionFloat Precision = iota
	PrecisionDouble
	PrecisionLongDouble
)

func (p Precision) Kind() Kind {
	switch p {
	case PrecisionDouble:
		return Double
	case PrecisionLongDouble:
		return LongDouble
	default:
		return Float
	}
}

// TimePrecision selects the numeric type backing "t", "sT", etc.
// TimePrecisionDefault means "use the model's Precision".
type TimePrecision int

const (
	TimePrecisionDefault TimePrecision = iota
	TimePrecisionFloat
	TimePrecisionDouble
)

// TypeContext carries the model-wide precision policy plus the explicit
// snippet-type Registry (see Registry below), so that resolving "scalar"/
// "timepoint" and looking up a named built-in model never touches global
// mutable state.
type TypeContext struct {
	Precision     Precision
	TimePrecision TimePrecision
	Registry      *Registry
}

// NewTypeContext returns a TypeContext with float precision, default time
// precision, and a fresh empty Registry.
func NewTypeContext() *TypeContext {
	return &TypeContext{Precision: PrecisionFloat, Registry: NewRegistry()}
}

// Resolve replaces Scalar/TimeType placeholders in t with the concrete
// kind the context's precision policy dictates; every other kind passes
// through unchanged.
func (tc *TypeContext) Resolve(t ResolvedType) ResolvedType {
	switch t.Base {
	case Scalar:
		t.Base = tc.Precision.Kind()
	case TimeType:
		if tc.TimePrecision == TimePrecisionDefault {
			t.Base = tc.Precision.Kind()
		} else if tc.TimePrecision == TimePrecisionDouble {
			t.Base = Double
		} else {
			t.Base = Float
		}
	}
	return t
}

// NarrowSparseIndKind picks the narrowest unsigned integer kind that can
// index a target population of numPost neurons: uint8 when numPost <= 255,
// uint16 when <= 65535, uint32 otherwise.
func NarrowSparseIndKind(numPost int) Kind {
	switch {
	case numPost <= 255:
		return UInt8
	case numPost <= 65535:
		return UInt16
	default:
		return UInt32
	}
}

// ScalarKind returns the concrete Kind that "scalar" resolves to.
func (tc *TypeContext) ScalarKind() Kind { return tc.Precision.Kind() }

// TimeKind returns the concrete Kind that "t"/"sT"/etc. resolve to.
func (tc *TypeContext) TimeKind() Kind {
	return tc.Resolve(ResolvedType{Base: TimeType}).Base
}
