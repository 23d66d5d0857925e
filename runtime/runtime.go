// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runtime loads the shared library toolchain.Toolchain produces
// and drives one simulation: allocating backend arrays, running the
// init/step kernels it exports, and exposing per-array host data for
// inspection or snapshotting. Dynamic loading uses
// github.com/ebitengine/purego (Dlopen + RegisterFunc) so the whole
// module stays cgo-free, matching the rest of the pack's preference for
// pure-Go bindings over cgo wrappers.
package runtime

import (
	"errors"
	"fmt"

	"github.com/ebitengine/purego"

	"github.com/snncore/gennsl/backend"
	"github.com/snncore/gennsl/gtype"
	"github.com/snncore/gennsl/model"
	"github.com/snncore/gennsl/snntime"
)

var (
	// ErrLoadFailure wraps a Dlopen failure against the compiled library.
	ErrLoadFailure = errors.New("runtime: failed to load shared library")
	// ErrSymbolMissing wraps a lookup failure for a required exported symbol.
	ErrSymbolMissing = errors.New("runtime: required symbol missing from shared library")
	// ErrRecordingUnset is returned by a recording-buffer accessor when
	// Allocate was never called with a positive recording timestep count.
	ErrRecordingUnset = errors.New("runtime: spike recording was not allocated")
	// ErrDuplicateArray is returned when RegisterArray is asked to create
	// a (group, name) pair that was already registered with a different
	// element type or count.
	ErrDuplicateArray = errors.New("runtime: array already registered with different shape")
	// ErrBackend wraps any error a Backend.CreateArray call returns.
	ErrBackend = errors.New("runtime: backend array creation failed")
)

// libraryFuncs is the fixed set of C entry points bound via
// purego.RegisterFunc once the library is open; pushMergedGroupToDevice
// calls are instead resolved by name on demand (see
// PushMergedGroupToDevice) since the symbol set they draw from is named
// per merged-group kind and index at code-generation time.
type libraryFuncs struct {
	allocateMem      func()
	freeMem          func()
	initialize       func()
	initializeSparse func()
	stepTime         func(timestep, numRecordingTimesteps uint64)
}

// arrayEntry remembers the shape RegisterArray created an array with, so
// a second call for the same key can be validated instead of silently
// returning a mismatched array.
type arrayEntry struct {
	array backend.Array
	typ   gtype.ResolvedType
	count int
}

// Runtime drives one loaded simulation library against a Backend for
// host-side array bookkeeping (the reference backend keeps host and
// device memory identical; a real GPU backend would instead use this
// only for the host-visible half of each array).
type Runtime struct {
	backend backend.Backend
	handle  uintptr
	fn      libraryFuncs

	arrays map[string]*arrayEntry

	model     *model.Model
	batchSize int
	timestep  uint64

	t  float64
	dt float64

	numRecordingTimesteps int
	recordingAllocated    bool

	kernelTimes map[string]*snntime.Time
}

func arrayKey(group, name string) string { return group + "." + name }

// Open loads the shared library at libPath and binds its fixed lifecycle
// symbols, returning a Runtime ready for Allocate. dt is the model's
// integration timestep, used by StepTime to advance Time().
func Open(libPath string, b backend.Backend, dt float64) (*Runtime, error) {
	handle, err := purego.Dlopen(libPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailure, libPath, err)
	}
	rt := &Runtime{
		backend:     b,
		handle:      handle,
		dt:          dt,
		arrays:      map[string]*arrayEntry{},
		kernelTimes: map[string]*snntime.Time{},
	}
	if err := rt.bindFixedSymbols(); err != nil {
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) lookup(name string) (uintptr, error) {
	sym, err := purego.Dlsym(rt.handle, name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrSymbolMissing, name)
	}
	return sym, nil
}

func (rt *Runtime) bindFixedSymbols() error {
	targets := []struct {
		name string
		fn   *func()
	}{
		{"allocateMem", &rt.fn.allocateMem},
		{"freeMem", &rt.fn.freeMem},
		{"initialize", &rt.fn.initialize},
		{"initializeSparse", &rt.fn.initializeSparse},
	}
	for _, t := range targets {
		sym, err := rt.lookup(t.name)
		if err != nil {
			return err
		}
		purego.RegisterFunc(t.fn, sym)
	}

	stepTimeSym, err := rt.lookup("stepTime")
	if err != nil {
		return err
	}
	purego.RegisterFunc(&rt.fn.stepTime, stepTimeSym)
	return nil
}

// PushMergedGroupToDevice resolves and calls one
// pushMerged<Kind><Index>ToDevice symbol by name, for the per-merged-
// -group push calls §6 names dynamically rather than as a fixed symbol
// set, e.g. PushMergedGroupToDevice("Neuron", 0) calls
// "pushMergedNeuronGroup0ToDevice".
func (rt *Runtime) PushMergedGroupToDevice(kind string, index int) error {
	name := fmt.Sprintf("pushMerged%sGroup%dToDevice", kind, index)
	sym, err := rt.lookup(name)
	if err != nil {
		return err
	}
	var fn func()
	purego.RegisterFunc(&fn, sym)
	fn()
	return nil
}

// Allocate is implemented in allocate.go: it calls the library's
// allocateMem and then walks the model to create every backend array a
// simulation run needs.

// Initialize calls the library's initialize entry point (dense/default
// variable initialisation, population RNG seeding).
func (rt *Runtime) Initialize() { rt.fn.initialize() }

// InitializeSparse calls the library's initializeSparse entry point
// (row/column connectivity build), which must run after Initialize.
func (rt *Runtime) InitializeSparse() { rt.fn.initializeSparse() }

// StepTime calls the library's stepTime entry point with the advancing
// integer timestep counter and the recording-buffer size it was
// allocated for, then advances Time() by dt.
func (rt *Runtime) StepTime() {
	rt.fn.stepTime(rt.timestep, uint64(rt.numRecordingTimesteps))
	rt.timestep++
	rt.t += rt.dt
}

// Time returns the current simulation time in the model's time units.
func (rt *Runtime) Time() float64 { return rt.t }

// RecordingBitmaskWords returns the number of 32-bit words the spike-
// recording buffer for a neuron group of numNeurons neurons occupies,
// per §6's ceil(numNeurons/32) × batchSize × numRecordingTimesteps rule.
func (rt *Runtime) RecordingBitmaskWords(numNeurons int) (int, error) {
	if !rt.recordingAllocated {
		return 0, ErrRecordingUnset
	}
	return ceilDiv(numNeurons, 32) * rt.batchSize * rt.numRecordingTimesteps, nil
}

// RegisterArray creates (or returns the already-created) backend array
// backing group's named variable, sized count elements of typ at loc.
// A second call for the same (group, name) with a different typ/count
// returns ErrDuplicateArray rather than silently reusing a mismatched
// array.
func (rt *Runtime) RegisterArray(group, name string, typ gtype.ResolvedType, count int, loc backend.Location) (backend.Array, error) {
	key := arrayKey(group, name)
	if e, ok := rt.arrays[key]; ok {
		if e.typ != typ || e.count != count {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateArray, group, name)
		}
		return e.array, nil
	}
	a, err := rt.backend.CreateArray(typ, count, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s.%s: %v", ErrBackend, group, name, err)
	}
	rt.arrays[key] = &arrayEntry{array: a, typ: typ, count: count}
	return a, nil
}

// Array returns the previously-registered array for (group, name), or
// false if RegisterArray was never called for it.
func (rt *Runtime) Array(group, name string) (backend.Array, bool) {
	e, ok := rt.arrays[arrayKey(group, name)]
	if !ok {
		return nil, false
	}
	return e.array, true
}

// Arrays returns every registered array keyed by "group.name", for
// runtime/persist's Codec to enumerate at snapshot time.
func (rt *Runtime) Arrays() map[string]backend.Array {
	out := make(map[string]backend.Array, len(rt.arrays))
	for k, e := range rt.arrays {
		out[k] = e.array
	}
	return out
}

// RestoreArray registers (or validates an already-registered) array for
// (group, name) and overwrites its host-visible bytes with data, for
// runtime/persist's Codec to replay a snapshot back into a live Runtime.
// The restored array's byte slice must be exactly the length data
// provides; a mismatch indicates the snapshot was taken against a
// differently-shaped model.
func (rt *Runtime) RestoreArray(group, name string, typ gtype.ResolvedType, count int, loc backend.Location, data []byte) error {
	a, err := rt.RegisterArray(group, name, typ, count, loc)
	if err != nil {
		return err
	}
	dst := a.HostData()
	if len(dst) != len(data) {
		return fmt.Errorf("%s.%s: snapshot payload is %d bytes, array holds %d", group, name, len(data), len(dst))
	}
	copy(dst, data)
	return nil
}

// RunCustomUpdate invokes the symbol a custom-update group's name
// resolves to (the compiled library exports one zero-argument C
// function per custom-update group, named after the group) and records
// its wall-clock cost under KernelTimes.
func (rt *Runtime) RunCustomUpdate(groupName string) error {
	sym, err := rt.lookup(groupName)
	if err != nil {
		return err
	}
	var fn func()
	purego.RegisterFunc(&fn, sym)

	timer, ok := rt.kernelTimes[groupName]
	if !ok {
		timer = &snntime.Time{}
		rt.kernelTimes[groupName] = timer
	}
	timer.Start()
	fn()
	timer.Stop()
	return nil
}

// KernelTimes returns the accumulated wall-clock timing for every custom
// update group run so far, keyed by group name.
func (rt *Runtime) KernelTimes() map[string]snntime.Time {
	out := make(map[string]snntime.Time, len(rt.kernelTimes))
	for k, v := range rt.kernelTimes {
		out[k] = *v
	}
	return out
}

// Close frees device-side memory via the library's freeMem entry point.
func (rt *Runtime) Close() error {
	if rt.fn.freeMem != nil {
		rt.fn.freeMem()
	}
	return nil
}
