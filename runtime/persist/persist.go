// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package persist snapshots a runtime.Runtime's array map to and from a
// single file, for host-side test fixtures and checkpoints. The raw
// per-array payload is exactly the sparse/bitmask/recording byte layout
// the generated library itself reads and writes; persist only adds a
// thin msgpack envelope (group name, variable name, element type, shape)
// around that payload so a snapshot can be told apart from another
// without re-deriving the layout by hand. Grounded on the wider pack's
// use of github.com/vmihailenco/msgpack/v5 for compact structured
// encoding of numeric-heavy records.
package persist

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/snncore/gennsl/backend"
	"github.com/snncore/gennsl/gtype"
)

// magic identifies a gennsl snapshot file; version allows the envelope
// format itself to evolve independently of the raw array layouts it
// wraps.
const (
	magic   = "gennslsnap"
	version = 1
)

// arrayRecord is one (group, name) array's envelope: enough to recreate
// an empty backend.Array of the right shape before the raw Data is
// copied into it.
type arrayRecord struct {
	Group string            `msgpack:"group"`
	Name  string             `msgpack:"name"`
	Type  gtype.ResolvedType `msgpack:"type"`
	Count int                `msgpack:"count"`
	Loc   backend.Location   `msgpack:"loc"`
	Data  []byte             `msgpack:"data"`
}

// snapshot is the on-disk envelope: a magic/version header plus every
// array recorded at snapshot time.
type snapshot struct {
	Magic   string        `msgpack:"magic"`
	Version int           `msgpack:"version"`
	Arrays  []arrayRecord `msgpack:"arrays"`
}

// ArraySource is the subset of runtime.Runtime's surface Codec needs: a
// way to enumerate every registered array by (group, name) and fetch it.
// Runtime satisfies this directly; tests can supply a smaller fake.
type ArraySource interface {
	Arrays() map[string]backend.Array
}

// RestoreTarget receives arrays read back from a snapshot; a
// runtime.Runtime wires this to RegisterArray plus a host-data copy.
type RestoreTarget interface {
	RestoreArray(group, name string, typ gtype.ResolvedType, count int, loc backend.Location, data []byte) error
}

// Codec writes and reads snapshot.
type Codec struct{}

// New returns a Codec; it carries no state of its own.
func New() *Codec { return &Codec{} }

// splitKey recovers the (group, name) pair a Runtime.Arrays key packs
// as "group.name"; it is the inverse of the arrayKey helper runtime
// itself uses to index its map.
func splitKey(key string) (group, name string, err error) {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			return key[:i], key[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("persist: malformed array key %q", key)
}

// WriteTo encodes src's full array map to w as a single msgpack
// document.
func (c *Codec) WriteTo(w io.Writer, src ArraySource) error {
	snap := snapshot{Magic: magic, Version: version}
	for key, a := range src.Arrays() {
		group, name, err := splitKey(key)
		if err != nil {
			return err
		}
		snap.Arrays = append(snap.Arrays, arrayRecord{
			Group: group,
			Name:  name,
			Type:  a.Type(),
			Count: a.Count(),
			Loc:   a.Location(),
			Data:  a.HostData(),
		})
	}
	bw := bufio.NewWriter(w)
	if err := msgpack.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("persist: encoding snapshot: %w", err)
	}
	return bw.Flush()
}

// Save writes src's snapshot to a new file at path, truncating any
// existing file there.
func (c *Codec) Save(path string, src ArraySource) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("persist: creating %s: %w", path, err)
	}
	defer f.Close()
	return c.WriteTo(f, src)
}

// ReadFrom decodes a snapshot from r and replays every array into dst
// via RestoreArray, in the order the snapshot stored them.
func (c *Codec) ReadFrom(r io.Reader, dst RestoreTarget) error {
	var snap snapshot
	if err := msgpack.NewDecoder(bufio.NewReader(r)).Decode(&snap); err != nil {
		return fmt.Errorf("persist: decoding snapshot: %w", err)
	}
	if snap.Magic != magic {
		return fmt.Errorf("persist: not a gennsl snapshot (got magic %q)", snap.Magic)
	}
	if snap.Version != version {
		return fmt.Errorf("persist: unsupported snapshot version %d", snap.Version)
	}
	for _, rec := range snap.Arrays {
		if err := dst.RestoreArray(rec.Group, rec.Name, rec.Type, rec.Count, rec.Loc, rec.Data); err != nil {
			return fmt.Errorf("persist: restoring %s.%s: %w", rec.Group, rec.Name, err)
		}
	}
	return nil
}

// Load reads a snapshot from the file at path and replays it into dst.
func (c *Codec) Load(path string, dst RestoreTarget) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("persist: opening %s: %w", path, err)
	}
	defer f.Close()
	return c.ReadFrom(f, dst)
}
