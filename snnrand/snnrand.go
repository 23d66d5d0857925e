// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package snnrand implements the Philox4x32 counter-based random number
// generator used by the population RNG on both host and device. It is a
// direct Go port of the same algorithm the generated HLSL/CUDA/OpenCL
// "population RNG" preamble uses, so that host-side verification of a
// kernel's output (e.g. in tests against the reference backend) can
// reproduce exactly the same sequence a real device backend would produce
// for the same seed and counter.
//
// The Philox4x32 algorithm is also used by CUDA's curand and by
// Tensorflow. It is a counter based RNG where the random number is a
// direct function of an input counter and key, with no internal state to
// advance sequentially — which is what lets every thread of a massively
// parallel kernel draw an independent, reproducible stream purely from its
// own (neuron index, timestep) derived counter.
//
// https://en.wikipedia.org/wiki/Counter-based_random_number_generator_(CBRNG)
// https://github.com/DEShawResearch/random123
package snnrand

import "math"

// Uint2 is a pair of uint32 words, used as the 64-bit counter input.
type Uint2 struct {
	X, Y uint32
}

// Uint4 is four uint32 words: the 128-bit Philox4x32 state (2 counter + 2 key words
// expanded internally into the round function).
type Uint4 struct {
	X, Y, Z, W uint32
}

const (
	philoxM4x32A = 0xD2511F53
	philoxM4x32B = 0xCD9E8D57
	philoxW32A   = 0x9E3779B9
	philoxW32B   = 0xBB67AE85
	nRounds      = 10
)

func mulhilo32(a, b uint32) (hi, lo uint32) {
	prod := uint64(a) * uint64(b)
	return uint32(prod >> 32), uint32(prod)
}

func philox4x32Round(ctr Uint4, key Uint2) Uint4 {
	hi0, lo0 := mulhilo32(philoxM4x32A, ctr.X)
	hi1, lo1 := mulhilo32(philoxM4x32B, ctr.Z)
	return Uint4{
		X: hi1 ^ ctr.Y ^ key.X,
		Y: lo1,
		Z: hi0 ^ ctr.W ^ key.Y,
		W: lo0,
	}
}

func philox4x32Bumpkey(key Uint2) Uint2 {
	return Uint2{X: key.X + philoxW32A, Y: key.Y + philoxW32B}
}

// Philox4x32 computes the Philox4x32-10 block function over a 128-bit
// counter (two Uint2 halves combined into ctr) and a 64-bit key.
func Philox4x32(ctr Uint4, key Uint2) Uint4 {
	for r := 0; r < nRounds; r++ {
		ctr = philox4x32Round(ctr, key)
		key = philox4x32Bumpkey(key)
	}
	return ctr
}

// counterToBlock packs a per-draw counter and a function-specific key
// offset into the Uint4/Uint2 inputs Philox4x32 expects.
func counterToBlock(counter Uint2, funcIndex uint32) (Uint4, Uint2) {
	return Uint4{X: counter.X, Y: counter.Y, Z: funcIndex, W: 0}, Uint2{X: 0xFFFFFFFF, Y: 0x55555555}
}

// CounterIncr advances a counter to the next independent draw. Each
// simulation step increments every active thread's counter identically so
// that resuming from a saved counter reproduces the same stream.
func CounterIncr(counter *Uint2) {
	counter.X++
	if counter.X == 0 {
		counter.Y++
	}
}

// RandUint returns a uniform random uint32 for the given counter and
// function index (function index lets several distinct draws — e.g.
// membrane noise vs. initial weight — share one counter without
// correlating).
func RandUint(counter Uint2, funcIndex uint32) uint32 {
	ctr, key := counterToBlock(counter, funcIndex)
	return Philox4x32(ctr, key).X
}

// RandFloat returns a uniform float32 in [0,1).
func RandFloat(counter Uint2, funcIndex uint32) float32 {
	return float32(RandUint(counter, funcIndex)) * (1.0 / 4294967296.0)
}

// RandFloat11 returns a uniform float32 in [-1,1).
func RandFloat11(counter Uint2, funcIndex uint32) float32 {
	return RandFloat(counter, funcIndex)*2 - 1
}

// RandNormFloat returns an approximately standard-normal float32 using a
// Box-Muller transform fed by two independent draws from adjacent
// function indices.
func RandNormFloat(counter Uint2, funcIndex uint32) float32 {
	u1 := RandFloat(counter, funcIndex)
	u2 := RandFloat(counter, funcIndex+1)
	if u1 < 1e-7 {
		u1 = 1e-7
	}
	r := math.Sqrt(-2 * math.Log(float64(u1)))
	theta := 2 * math.Pi * float64(u2)
	return float32(r * math.Cos(theta))
}
