// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package digest computes the 160-bit structural digests the model IR and
// the fusion/merging pass use for equality. A Digest combines a group's own
// snippet hash with every integral flag, matrix-type, delay count, access
// mode, and precision choice that affects the shape of the code that will
// be emitted for it; fuse-level digests additionally fold in the concrete
// values of constant initialisers and of referenced parameters.
//
// 160 bits is not an arbitrary choice of width: it is exactly the output
// size of SHA-1, which is what backs Digest here. No hashing library
// appears anywhere in the example corpus this was built from, and reaching
// for a faster non-cryptographic hash (the usual idiomatic substitute)
// would silently produce a digest of the wrong width.
package digest

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"hash"
	"math"
)

// Digest is a 160-bit structural fingerprint.
type Digest [20]byte

func (d Digest) String() string {
	return fmt.Sprintf("%x", [20]byte(d))
}

// Equal reports bytewise equality.
func (d Digest) Equal(o Digest) bool { return d == o }

// Builder accumulates the fields that make up a digest, in a fixed order
// determined by the caller, and produces the final 160-bit Digest.
type Builder struct {
	h hash.Hash
}

// New returns a fresh Builder.
func New() *Builder {
	return &Builder{h: sha1.New()}
}

// Hash finalises the accumulated fields into a Digest. The Builder may
// keep being written to afterwards; Hash may be called repeatedly to
// observe intermediate digests (sha1.Hash.Sum does not reset state).
func (b *Builder) Hash() Digest {
	var out Digest
	copy(out[:], b.h.Sum(nil))
	return out
}

// Sum is an alias for Hash, matching the common "finish and return" naming
// used throughout the rest of this codebase's builder-style types.
func (b *Builder) Sum() Digest { return b.Hash() }

func (b *Builder) WriteString(s string) *Builder {
	b.h.Write([]byte{0}) // field separator, so "ab","c" != "a","bc"
	b.h.Write([]byte(s))
	return b
}

func (b *Builder) WriteBytes(p []byte) *Builder {
	b.h.Write([]byte{0})
	b.h.Write(p)
	return b
}

func (b *Builder) WriteBool(v bool) *Builder {
	if v {
		return b.WriteByte(1)
	}
	return b.WriteByte(0)
}

func (b *Builder) WriteByte(v byte) *Builder {
	b.h.Write([]byte{v})
	return b
}

func (b *Builder) WriteInt(v int) *Builder {
	return b.WriteInt64(int64(v))
}

func (b *Builder) WriteInt64(v int64) *Builder {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	b.h.Write(buf[:])
	return b
}

func (b *Builder) WriteFloat64(v float64) *Builder {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	b.h.Write(buf[:])
	return b
}

func (b *Builder) WriteDigest(d Digest) *Builder {
	b.h.Write(d[:])
	return b
}
