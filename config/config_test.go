// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/snncore/gennsl/model"
)

func TestLoadLayersOverDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.toml")
	contents := `
precision = "double"
dt = 0.5
batch_size = 4

[toolchain]
compiler = "clang"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Precision != "double" {
		t.Fatalf("expected precision override, got %q", cfg.Precision)
	}
	if cfg.Toolchain.Compiler != "clang" {
		t.Fatalf("expected toolchain override, got %q", cfg.Toolchain.Compiler)
	}
	if cfg.Output.SourceDir != Default().Output.SourceDir {
		t.Fatalf("expected un-set Output fields to keep their default, got %q", cfg.Output.SourceDir)
	}
}

func TestApplyRejectsUnknownPrecision(t *testing.T) {
	cfg := Default()
	cfg.Precision = "quadruple"
	m := model.NewModel("test")
	if err := cfg.Apply(m); err == nil {
		t.Fatalf("expected an error for an unknown precision")
	}
}

func TestApplyPushesBatchSize(t *testing.T) {
	cfg := Default()
	cfg.BatchSize = 8
	m := model.NewModel("test")
	if err := cfg.Apply(m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.BatchSize() != 8 {
		t.Fatalf("expected batch size 8, got %d", m.BatchSize())
	}
}
