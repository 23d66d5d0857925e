// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config defines the on-disk configuration for a gennsl model
// build: precision, timestep, batching, default locations, and the
// toolchain/output settings cmd/gennsl's "generate"/"build" subcommands
// need. Grounded on the teacher pack's own TOML-via-cobra pattern
// (toml.DecodeFile(configFile, appCfg) in every cmd/*.go subcommand),
// generalised from a hand-rolled flat CLI-flag struct to a single
// TOML-decoded ModelConfig with nested tables.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/snncore/gennsl/gtype"
	"github.com/snncore/gennsl/model"
	"github.com/snncore/gennsl/toolchain"
)

// ModelConfig is the full on-disk configuration for one model build,
// decoded from a single TOML file.
type ModelConfig struct {
	Precision     string  `toml:"precision"`      // "float", "double", or "long_double"
	TimePrecision string  `toml:"time_precision"` // "", "float", or "double"; "" means DefaultPrecision
	DT            float64 `toml:"dt"`
	BatchSize     int     `toml:"batch_size"`
	Seed          uint64  `toml:"seed"`

	DefaultVarLocation              string `toml:"default_var_location"`
	DefaultExtraGlobalParamLocation string `toml:"default_egp_location"`
	DefaultSparseConnectivityLocation string `toml:"default_sparse_connectivity_location"`

	FusePostsynapticModels       bool `toml:"fuse_postsynaptic_models"`
	FusePrePostWeightUpdateModels bool `toml:"fuse_pre_post_weight_update_models"`

	Toolchain ToolchainConfig `toml:"toolchain"`
	Output    OutputConfig    `toml:"output"`
}

// ToolchainConfig configures the external compiler invocation.
type ToolchainConfig struct {
	Compiler string   `toml:"compiler"`
	Flags    []string `toml:"flags"`
	WorkDir  string   `toml:"work_dir"`
}

// OutputConfig configures where generated source and the built shared
// library land.
type OutputConfig struct {
	SourceDir    string `toml:"source_dir"`
	LibraryPath  string `toml:"library_path"`
	GenerateTests bool  `toml:"generate_tests"`
}

// Default returns a ModelConfig matching model.NewModel's own defaults,
// so an absent TOML file and an explicit-but-empty one behave the same.
func Default() ModelConfig {
	return ModelConfig{
		Precision:     "float",
		TimePrecision: "",
		DT:            1.0,
		BatchSize:     1,
		DefaultVarLocation:                "host_device",
		DefaultExtraGlobalParamLocation:   "host_device",
		DefaultSparseConnectivityLocation: "host_device",
		Toolchain: ToolchainConfig{Compiler: "cc", Flags: []string{"-shared", "-fPIC", "-O2"}, WorkDir: "."},
		Output:    OutputConfig{SourceDir: "generated", LibraryPath: "generated/libgennsl.so"},
	}
}

// Load decodes path into a ModelConfig layered over Default(), so a
// partial TOML file only overrides the keys it actually sets.
func Load(path string) (ModelConfig, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return ModelConfig{}, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return cfg, nil
}

// ToolchainOptions converts the TOML-decoded ToolchainConfig into the
// toolchain.Options CompileSharedLibrary needs, defaulting WorkDir to
// workDirFallback when the config left it unset.
func (cfg ModelConfig) ToolchainOptions(workDirFallback string) toolchain.Options {
	opts := toolchain.DefaultOptions(workDirFallback)
	if cfg.Toolchain.Compiler != "" {
		opts.Compiler = cfg.Toolchain.Compiler
	}
	if len(cfg.Toolchain.Flags) > 0 {
		opts.Flags = cfg.Toolchain.Flags
	}
	if cfg.Toolchain.WorkDir != "" {
		opts.WorkDir = cfg.Toolchain.WorkDir
	}
	return opts
}

func parsePrecision(s string) (gtype.Precision, error) {
	switch s {
	case "", "float":
		return gtype.PrecisionFloat, nil
	case "double":
		return gtype.PrecisionDouble, nil
	case "long_double":
		return gtype.PrecisionLongDouble, nil
	default:
		return 0, fmt.Errorf("config: unknown precision %q", s)
	}
}

func parseTimePrecision(s string) (gtype.TimePrecision, error) {
	switch s {
	case "":
		return gtype.TimePrecisionDefault, nil
	case "float":
		return gtype.TimePrecisionFloat, nil
	case "double":
		return gtype.TimePrecisionDouble, nil
	default:
		return 0, fmt.Errorf("config: unknown time_precision %q", s)
	}
}

func parseLocation(s string) (model.Location, error) {
	switch s {
	case "", "host_device":
		return model.HostDevice, nil
	case "host_only":
		return model.HostOnly, nil
	case "device_only":
		return model.DeviceOnly, nil
	case "host_device_zero_copy":
		return model.HostDeviceZeroCopy, nil
	default:
		return 0, fmt.Errorf("config: unknown location %q", s)
	}
}

// Apply pushes every setting in cfg onto m, in the same order the
// model.Model setters themselves validate in (precision before
// timestep, since DT's own derived-parameter evaluation at Finalise
// time depends on the model already knowing its numeric precision).
func (cfg ModelConfig) Apply(m *model.Model) error {
	prec, err := parsePrecision(cfg.Precision)
	if err != nil {
		return err
	}
	if err := m.SetPrecision(prec); err != nil {
		return err
	}

	tprec, err := parseTimePrecision(cfg.TimePrecision)
	if err != nil {
		return err
	}
	if err := m.SetTimePrecision(tprec); err != nil {
		return err
	}

	if err := m.SetDT(cfg.DT); err != nil {
		return err
	}
	if cfg.BatchSize > 0 {
		if err := m.SetBatchSize(cfg.BatchSize); err != nil {
			return err
		}
	}
	if err := m.SetSeed(cfg.Seed); err != nil {
		return err
	}

	varLoc, err := parseLocation(cfg.DefaultVarLocation)
	if err != nil {
		return err
	}
	if err := m.SetDefaultVarLocation(varLoc); err != nil {
		return err
	}

	egpLoc, err := parseLocation(cfg.DefaultExtraGlobalParamLocation)
	if err != nil {
		return err
	}
	if err := m.SetDefaultExtraGlobalParamLocation(egpLoc); err != nil {
		return err
	}

	connLoc, err := parseLocation(cfg.DefaultSparseConnectivityLocation)
	if err != nil {
		return err
	}
	if err := m.SetDefaultSparseConnectivityLocation(connLoc); err != nil {
		return err
	}

	if err := m.SetFusePostsynapticModels(cfg.FusePostsynapticModels); err != nil {
		return err
	}
	return m.SetFusePrePostWeightUpdateModels(cfg.FusePrePostWeightUpdateModels)
}
