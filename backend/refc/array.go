// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package refc is the reference single-threaded-C backend: a concrete,
// deliberately simple implementation of the backend.Backend contract kept
// for testability (it never shells out to a real C compiler during unit
// tests; the Toolchain that actually builds the emitted source is a
// separate concern). Arrays here are plain in-process byte slices —
// "host" and "device" are the same memory, so Push/Pull are no-ops beyond
// a location-sanity check.
package refc

import (
	"fmt"

	"github.com/snncore/gennsl/backend"
	"github.com/snncore/gennsl/gtype"
)

func elemSize(k gtype.Kind) int {
	switch k {
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

// Array is the reference backend's Array implementation: a single byte
// buffer sized by element type and count, with no separate device copy.
type Array struct {
	typ   gtype.ResolvedType
	count int
	loc   backend.Location
	data  []byte
}

// NewArray allocates a zeroed Array of count elements of typ.
func NewArray(typ gtype.ResolvedType, count int, loc backend.Location) *Array {
	a := &Array{typ: typ, loc: loc}
	if err := a.Allocate(count); err != nil {
		panic(err) // only fails on a negative count, which is a caller bug
	}
	return a
}

func (a *Array) Type() gtype.ResolvedType  { return a.typ }
func (a *Array) Count() int                { return a.count }
func (a *Array) Location() backend.Location { return a.loc }
func (a *Array) HostData() []byte          { return a.data }

func (a *Array) Allocate(count int) error {
	if count < 0 {
		return fmt.Errorf("refc: negative array count %d", count)
	}
	a.count = count
	size := elemSize(a.typ.Base) * count
	if a.typ.IsPointer() {
		size = 8 * count
	}
	a.data = make([]byte, size)
	return nil
}

func (a *Array) Free() error {
	a.data = nil
	return nil
}

// Push and Pull are no-ops on the reference backend: host and "device"
// share the same buffer, so there is never anything to marshal.
func (a *Array) Push() error { return nil }
func (a *Array) Pull() error { return nil }
