// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snnrand

import "testing"

func TestRandDeterministic(t *testing.T) {
	var c1, c2 Uint2
	for i := 0; i < 100; i++ {
		a := RandFloat(c1, 0)
		b := RandFloat(c2, 0)
		if a != b {
			t.Fatalf("draw %d: same counter produced different floats: %g vs %g", i, a, b)
		}
		if a < 0 || a >= 1 {
			t.Fatalf("draw %d: RandFloat out of [0,1): %g", i, a)
		}
		CounterIncr(&c1)
		CounterIncr(&c2)
	}
}

func TestRandFloat11Range(t *testing.T) {
	var c Uint2
	for i := 0; i < 256; i++ {
		v := RandFloat11(c, 1)
		if v < -1 || v >= 1 {
			t.Fatalf("draw %d: RandFloat11 out of [-1,1): %g", i, v)
		}
		CounterIncr(&c)
	}
}

func TestCounterIncrCarries(t *testing.T) {
	c := Uint2{X: 0xFFFFFFFF, Y: 5}
	CounterIncr(&c)
	if c.X != 0 || c.Y != 6 {
		t.Fatalf("expected carry to Y: got %+v", c)
	}
}

func TestRandNormFloatFinite(t *testing.T) {
	var c Uint2
	for i := 0; i < 64; i++ {
		v := RandNormFloat(c, 0)
		if v != v { // NaN check
			t.Fatalf("draw %d: RandNormFloat produced NaN", i)
		}
		CounterIncr(&c)
	}
}
