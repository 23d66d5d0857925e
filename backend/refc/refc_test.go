// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refc

import (
	"testing"

	"github.com/snncore/gennsl/backend"
	"github.com/snncore/gennsl/gtype"
)

func TestArrayAllocateSize(t *testing.T) {
	a := NewArray(gtype.Named(gtype.Float), 10, backend.HostDevice)
	if a.Count() != 10 {
		t.Fatalf("expected count 10, got %d", a.Count())
	}
	if len(a.HostData()) != 40 {
		t.Fatalf("expected 40 bytes (10 float32), got %d", len(a.HostData()))
	}
}

func TestArrayPushPullNoop(t *testing.T) {
	a := NewArray(gtype.Named(gtype.Int32), 4, backend.HostDevice)
	if err := a.Push(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.Pull(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBackendSatisfiesInterface(t *testing.T) {
	var _ backend.Backend = New(backend.DefaultPreferences())
}
