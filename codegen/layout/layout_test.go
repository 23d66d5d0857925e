// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"bytes"
	"strings"
	"testing"

	"github.com/snncore/gennsl/gtype"
	"github.com/snncore/gennsl/logx"
)

func TestCheckStructFlagsNon32BitField(t *testing.T) {
	var buf bytes.Buffer
	log := logx.New("test", &buf, logx.LevelWarn)
	sl := StructLayout{
		Name: "Pop0",
		Fields: []Field{
			{Name: "V", Type: gtype.Named(gtype.Float)},
			{Name: "spkTime", Type: gtype.Named(gtype.Double)},
		},
	}
	CheckStruct(sl, log)
	if !strings.Contains(buf.String(), "spkTime") {
		t.Fatalf("expected a warning naming the non-32-bit field, got: %s", buf.String())
	}
}

func TestCheckStructFlagsMisalignedSize(t *testing.T) {
	var buf bytes.Buffer
	log := logx.New("test", &buf, logx.LevelWarn)
	sl := StructLayout{
		Name: "Pop0",
		Fields: []Field{
			{Name: "V", Type: gtype.Named(gtype.Float)},
			{Name: "U", Type: gtype.Named(gtype.Float)},
			{Name: "a", Type: gtype.Named(gtype.Float)},
		},
	}
	CheckStruct(sl, log)
	if !strings.Contains(buf.String(), "not a multiple of 16") {
		t.Fatalf("expected a size-alignment warning, got: %s", buf.String())
	}
}

func TestCheckStructCleanLayoutWarnsNothing(t *testing.T) {
	var buf bytes.Buffer
	log := logx.New("test", &buf, logx.LevelWarn)
	sl := StructLayout{
		Name: "Pop0",
		Fields: []Field{
			{Name: "V", Type: gtype.Named(gtype.Float)},
			{Name: "U", Type: gtype.Named(gtype.Float)},
			{Name: "a", Type: gtype.Named(gtype.Float)},
			{Name: "b", Type: gtype.Named(gtype.Float)},
		},
	}
	CheckStruct(sl, log)
	if buf.Len() != 0 {
		t.Fatalf("expected no warnings for a clean 16-byte-aligned layout, got: %s", buf.String())
	}
}
