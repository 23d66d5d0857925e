// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package backend declares the contract every concrete code-generation
// target (a reference single-threaded-C implementation lives in
// backend/refc; CUDA/OpenCL/multi-threaded-CPU targets are out of scope
// here) must satisfy: an array factory, atomics, population RNG
// lifecycle hooks, and the small set of preferences that tune block
// sizes and code-shape choices.
package backend

import (
	"io"

	"github.com/snncore/gennsl/gtype"
	"github.com/snncore/gennsl/model"
)

// Location is the model package's memory-placement enum, re-exported
// under the name the backend contract's own §6 text uses so call sites
// can write backend.Location without reaching into model directly.
type Location = model.Location

const (
	HostOnly           = model.HostOnly
	DeviceOnly         = model.DeviceOnly
	HostDevice         = model.HostDevice
	HostDeviceZeroCopy = model.HostDeviceZeroCopy
)

// AtomicOp names the flavour of atomic update Atomic should emit.
type AtomicOp int

const (
	AtomicAdd AtomicOp = iota
	AtomicOr
	AtomicCAS
)

// MemSpace names the memory space an atomic or accumulation targets.
type MemSpace int

const (
	GlobalMem MemSpace = iota
	SharedMem
)

// Array is a backend-created handle to a typed, sized buffer.
type Array interface {
	Type() gtype.ResolvedType
	Count() int
	Location() Location
	Allocate(count int) error
	Free() error
	Push() error // host -> device
	Pull() error // device -> host
	HostData() []byte
}

// Preferences tunes code-shape and launch-configuration choices a
// backend makes; every field except Timing corresponds to one of the
// recognised keys in §6. Timing switches on per-kernel wall-clock
// accumulation.
type Preferences struct {
	DebugCode      bool
	AutomaticCopy  bool
	Timing         bool

	BlockSizeNeuron          int
	BlockSizePresynUpdate    int
	BlockSizePostsynUpdate   int
	BlockSizeSynapseDynamics int
	BlockSizeInit            int
	BlockSizeInitSparse      int
	BlockSizeCustomUpdate    int
	BlockSizeCustomTranspose int

	EnableBitmaskOptimisations        bool
	GenerateSimpleCode                bool
	GenerateEmptyStateForFusedGroups  bool
}

// DefaultPreferences returns the preferences the reference backend uses
// when nothing overrides them.
func DefaultPreferences() Preferences {
	return Preferences{
		BlockSizeNeuron: 32, BlockSizePresynUpdate: 32, BlockSizePostsynUpdate: 32,
		BlockSizeSynapseDynamics: 32, BlockSizeInit: 32, BlockSizeInitSparse: 32,
		BlockSizeCustomUpdate: 32, BlockSizeCustomTranspose: 32,
	}
}

// Backend is the contract the kernel emitter (package codegen) writes
// against; every method it needs from a concrete target is named here.
type Backend interface {
	CreateArray(typ gtype.ResolvedType, count int, loc Location) (Array, error)
	SynapticMatrixRowStride(sg *model.SynapseGroup) int

	PointerPrefix() string
	SharedPrefix() string
	ThreadID(axis int) string
	BlockID(axis int) string
	CLZ(expr string) string

	Atomic(typ gtype.ResolvedType, op AtomicOp, space MemSpace) string
	SharedMemBarrier(w io.Writer)

	PopulationRNGInit(w io.Writer)
	PopulationRNGPreamble(w io.Writer)
	PopulationRNGPostamble(w io.Writer)
	GlobalRNGSkipAhead(w io.Writer, count string)

	PostsynapticRemapRequired() bool
	PopulationRNGRequired() bool
	DeviceScalarRequired() bool
	SharedMemAtomicsSlow() bool

	Preferences() Preferences
}
