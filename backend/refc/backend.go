// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refc

import (
	"fmt"
	"io"

	"github.com/snncore/gennsl/backend"
	"github.com/snncore/gennsl/gtype"
	"github.com/snncore/gennsl/model"
)

// Backend implements backend.Backend by emitting plain single-threaded C:
// "thread ID" is always 0, atomics are ordinary non-atomic operations
// (there is only ever one thread), and the population RNG is seeded once
// at PopulationRNGInit time using the snnrand Philox generator.
type Backend struct {
	prefs backend.Preferences
}

// New returns a reference backend with the given preferences.
func New(prefs backend.Preferences) *Backend {
	return &Backend{prefs: prefs}
}

func (b *Backend) CreateArray(typ gtype.ResolvedType, count int, loc backend.Location) (backend.Array, error) {
	return NewArray(typ, count, loc), nil
}

// SynapticMatrixRowStride rounds the post-synaptic population size up to
// the nearest multiple of 32, matching the row padding every other
// backend in the ecosystem applies so dense-matrix row strides stay warp
// (or, here, merely cache-line) friendly even on a single thread.
func (b *Backend) SynapticMatrixRowStride(sg *model.SynapseGroup) int {
	n := sg.Trg.NumNeurons
	return ((n + 31) / 32) * 32
}

func (b *Backend) PointerPrefix() string { return "" }
func (b *Backend) SharedPrefix() string  { return "" }
func (b *Backend) ThreadID(axis int) string { return "0" }
func (b *Backend) BlockID(axis int) string  { return "0" }
func (b *Backend) CLZ(expr string) string   { return fmt.Sprintf("__builtin_clz(%s)", expr) }

// Atomic on a single-threaded backend is just the plain operator: there
// is never contention to arbitrate.
func (b *Backend) Atomic(typ gtype.ResolvedType, op backend.AtomicOp, space backend.MemSpace) string {
	switch op {
	case backend.AtomicOr:
		return "|="
	case backend.AtomicCAS:
		return "/* cas */="
	default:
		return "+="
	}
}

func (b *Backend) SharedMemBarrier(w io.Writer) { fmt.Fprintln(w, "/* no barrier: single-threaded */") }

func (b *Backend) PopulationRNGInit(w io.Writer) {
	fmt.Fprintln(w, "Uint2 rngState = {0, 0};")
}
func (b *Backend) PopulationRNGPreamble(w io.Writer)  {}
func (b *Backend) PopulationRNGPostamble(w io.Writer) {}
func (b *Backend) GlobalRNGSkipAhead(w io.Writer, count string) {
	fmt.Fprintf(w, "CounterIncr(&rngState); /* skip %s */\n", count)
}

func (b *Backend) PostsynapticRemapRequired() bool { return false }
func (b *Backend) PopulationRNGRequired() bool     { return true }
func (b *Backend) DeviceScalarRequired() bool       { return false }
func (b *Backend) SharedMemAtomicsSlow() bool       { return true }

func (b *Backend) Preferences() backend.Preferences { return b.prefs }
