// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package toolchain

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestCompileSharedLibrarySuccess(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "kernel.c")
	if err := os.WriteFile(src, []byte("int gennsl_marker(void) { return 1; }\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opts := DefaultOptions(dir)
	if _, err := exec.LookPath(opts.Compiler); err != nil {
		t.Skipf("compiler %q not available in this environment", opts.Compiler)
	}
	tc := New(opts)
	out := filepath.Join(dir, "libkernel.so")
	if err := tc.CompileSharedLibrary(context.Background(), out, []string{src}); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected output library at %s: %v", out, err)
	}
}

func TestCompileSharedLibraryFailureWrapsErrCompileFailed(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.c")
	if err := os.WriteFile(src, []byte("this is not valid C\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opts := DefaultOptions(dir)
	if _, err := exec.LookPath(opts.Compiler); err != nil {
		t.Skipf("compiler %q not available in this environment", opts.Compiler)
	}
	tc := New(opts)
	out := filepath.Join(dir, "libbroken.so")
	err := tc.CompileSharedLibrary(context.Background(), out, []string{src})
	if err == nil {
		t.Fatalf("expected a compile error for invalid source")
	}
	if !errors.Is(err, ErrCompileFailed) {
		t.Fatalf("expected ErrCompileFailed, got %v", err)
	}
}
