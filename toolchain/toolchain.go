// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package toolchain invokes the external C/C++ compiler that turns
// codegen's emitted source into the shared library runtime.Runtime loads
// at simulation time. Grounded on the teacher's own compileFile (shelling
// out to glslc via os/exec, capturing combined output, logging it
// verbatim), generalised from a fixed glslc invocation to a configurable
// compiler command and extended with context cancellation and timing,
// neither of which the teacher's fire-and-forget GPU-shader build needed.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/snncore/gennsl/logx"
	"github.com/snncore/gennsl/snntime"
)

// ErrCompileFailed wraps a non-zero exit from the configured compiler,
// with the combined stdout/stderr attached via Output.
var ErrCompileFailed = errors.New("toolchain: compile failed")

// CompileError carries the compiler's combined output alongside the
// wrapped ErrCompileFailed sentinel, so callers can print diagnostics
// without re-running the command.
type CompileError struct {
	Command string
	Output  string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s\n%s", e.Command, e.Err, e.Output)
}

func (e *CompileError) Unwrap() error { return ErrCompileFailed }

// Options configures one Toolchain: the compiler binary, any fixed
// flags it always needs, and the directory generated source/object
// files live under.
type Options struct {
	Compiler string   // e.g. "cc", "clang", "nvcc"
	Flags    []string // fixed flags applied to every invocation, e.g. ["-shared", "-fPIC", "-O2"]
	WorkDir  string
	Log      *logx.Logger
}

// DefaultOptions returns the reference toolchain's configuration: a
// position-independent shared-library build via the system C compiler,
// matching what runtime.Runtime expects to dlopen.
func DefaultOptions(workDir string) Options {
	return Options{
		Compiler: "cc",
		Flags:    []string{"-shared", "-fPIC", "-O2"},
		WorkDir:  workDir,
	}
}

// Toolchain drives one compiler invocation at a time; it is not expected
// to be called concurrently from multiple goroutines since it shares a
// single snntime.Time accumulator.
type Toolchain struct {
	opts  Options
	timer snntime.Time
}

// New returns a Toolchain with the given options; a nil Log falls back
// to logx.Default("toolchain").
func New(opts Options) *Toolchain {
	if opts.Log == nil {
		opts.Log = logx.Default("toolchain")
	}
	return &Toolchain{opts: opts}
}

// CompileSharedLibrary compiles sources into a shared library at
// outPath, honouring ctx for cancellation (a model-generation pipeline
// run from cmd/gennsl's "build" subcommand may be interrupted mid
// compile). The wall-clock cost is accumulated on the Toolchain's own
// timer, retrievable via Elapsed.
func (tc *Toolchain) CompileSharedLibrary(ctx context.Context, outPath string, sources []string) error {
	args := append([]string{}, tc.opts.Flags...)
	args = append(args, "-o", outPath)
	args = append(args, sources...)

	tc.timer.Start()
	cmd := exec.CommandContext(ctx, tc.opts.Compiler, args...)
	cmd.Dir = tc.opts.WorkDir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	tc.timer.Stop()

	tc.opts.Log.Infof("%s %v (%.3fs)", tc.opts.Compiler, args, tc.timer.Avg().Seconds())
	if err != nil {
		tc.opts.Log.Warnf("compile of %s failed: %s", outPath, out.String())
		return &CompileError{Command: tc.opts.Compiler + " " + fmt.Sprint(args), Output: out.String(), Err: err}
	}
	return nil
}

// Elapsed returns the accumulated compile time across every
// CompileSharedLibrary call made so far.
func (tc *Toolchain) Elapsed() snntime.Time { return tc.timer }
