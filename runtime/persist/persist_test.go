// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package persist

import (
	"bytes"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/snncore/gennsl/backend"
	"github.com/snncore/gennsl/backend/refc"
	"github.com/snncore/gennsl/gtype"
)

type fakeSource struct {
	arrays map[string]backend.Array
}

func (f *fakeSource) Arrays() map[string]backend.Array { return f.arrays }

func newFakeSource() *fakeSource {
	v := refc.NewArray(gtype.ScalarType, 4, backend.HostDevice)
	copy(v.HostData(), []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})
	return &fakeSource{arrays: map[string]backend.Array{
		"Neuron0.V": v,
	}}
}

type fakeTarget struct {
	restored map[string][]byte
}

func (f *fakeTarget) RestoreArray(group, name string, typ gtype.ResolvedType, count int, loc backend.Location, data []byte) error {
	if f.restored == nil {
		f.restored = map[string][]byte{}
	}
	f.restored[group+"."+name] = append([]byte{}, data...)
	return nil
}

func TestRoundTripPreservesArrayBytes(t *testing.T) {
	src := newFakeSource()
	c := New()
	var buf bytes.Buffer
	if err := c.WriteTo(&buf, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tgt := &fakeTarget{}
	if err := c.ReadFrom(&buf, tgt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := tgt.restored["Neuron0.V"]
	if !ok {
		t.Fatalf("expected Neuron0.V to be restored")
	}
	want := src.arrays["Neuron0.V"].HostData()
	if !bytes.Equal(got, want) {
		t.Fatalf("restored bytes %v do not match original %v", got, want)
	}
}

func TestReadFromRejectsWrongMagic(t *testing.T) {
	var buf bytes.Buffer
	snap := snapshot{Magic: "not-gennsl", Version: version}
	if err := msgpack.NewEncoder(&buf).Encode(&snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := New()
	if err := c.ReadFrom(&buf, &fakeTarget{}); err == nil {
		t.Fatalf("expected an error for a mismatched magic")
	}
}

func TestSplitKeyRejectsMissingSeparator(t *testing.T) {
	if _, _, err := splitKey("noseparator"); err == nil {
		t.Fatalf("expected an error for a key with no '.' separator")
	}
}
