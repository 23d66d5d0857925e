// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gtype

import "testing"

func TestResolvePrecision(t *testing.T) {
	tc := NewTypeContext()
	tc.Precision = PrecisionDouble
	rt := tc.Resolve(ScalarType)
	if rt.Base != Double {
		t.Fatalf("expected Double, got %v", rt.Base)
	}
	if tc.ScalarKind() != Double {
		t.Fatalf("ScalarKind mismatch")
	}
}

func TestResolveTimeDefault(t *testing.T) {
	tc := NewTypeContext()
	tc.Precision = PrecisionDouble
	tc.TimePrecision = TimePrecisionDefault
	if tc.TimeKind() != Double {
		t.Fatalf("expected time to follow precision by default, got %v", tc.TimeKind())
	}
	tc.TimePrecision = TimePrecisionFloat
	if tc.TimeKind() != Float {
		t.Fatalf("expected explicit float time precision, got %v", tc.TimeKind())
	}
}

func TestPointerConstString(t *testing.T) {
	rt := Named(Float).PointerTo().Constant()
	if rt.String() != "const float*" {
		t.Fatalf("unexpected rendering: %s", rt.String())
	}
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("Izhikevich", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register("Izhikevich", 2); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	v, ok := r.Lookup("Izhikevich")
	if !ok || v.(int) != 1 {
		t.Fatalf("lookup mismatch: %v %v", v, ok)
	}
}

func TestNarrowSparseIndKind(t *testing.T) {
	cases := []struct {
		numPost int
		want    Kind
	}{
		{255, UInt8},
		{256, UInt16},
		{65535, UInt16},
		{65536, UInt32},
	}
	for _, c := range cases {
		got := NarrowSparseIndKind(c.numPost)
		if got != c.want {
			t.Fatalf("numPost=%d: want %v got %v", c.numPost, c.want, got)
		}
	}
}
