// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package digest

import "testing"

func TestDeterministic(t *testing.T) {
	d1 := New().WriteString("Izhikevich").WriteInt(10).WriteBool(true).Sum()
	d2 := New().WriteString("Izhikevich").WriteInt(10).WriteBool(true).Sum()
	if d1 != d2 {
		t.Fatalf("expected identical digests, got %s vs %s", d1, d2)
	}
}

func TestFieldSeparation(t *testing.T) {
	// "ab","c" must not collide with "a","bc"
	d1 := New().WriteString("ab").WriteString("c").Sum()
	d2 := New().WriteString("a").WriteString("bc").Sum()
	if d1 == d2 {
		t.Fatalf("expected different digests for differently-split strings")
	}
}

func TestSensitivity(t *testing.T) {
	base := New().WriteString("LIF").WriteFloat64(0.02).Sum()
	changed := New().WriteString("LIF").WriteFloat64(0.03).Sum()
	if base == changed {
		t.Fatalf("expected digest to change with parameter value")
	}
}
