// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/snncore/gennsl/config"
	"github.com/snncore/gennsl/logx"
	"github.com/snncore/gennsl/toolchain"
)

var libPath string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile the generated C source into a shared library",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logx.Default("gennsl")

		cfg := config.Default()
		if configFile != "" {
			var err error
			cfg, err = config.Load(configFile)
			if err != nil {
				return fmt.Errorf("build: %w", err)
			}
		}

		entries, err := os.ReadDir(outDir)
		if err != nil {
			return fmt.Errorf("build: reading %s: %w (run \"gennsl generate\" first)", outDir, err)
		}
		var sources []string
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ".c" {
				sources = append(sources, filepath.Join(outDir, e.Name()))
			}
		}
		sort.Strings(sources)
		if len(sources) == 0 {
			return fmt.Errorf("build: no .c sources found in %s (run \"gennsl generate\" first)", outDir)
		}

		opts := cfg.ToolchainOptions(outDir)
		opts.Log = log
		tc := toolchain.New(opts)

		out := libPath
		if out == "" {
			out = filepath.Join(outDir, "libgennsl.so")
		}
		if err := tc.CompileSharedLibrary(context.Background(), out, sources); err != nil {
			return fmt.Errorf("build: %w", err)
		}
		log.Infof("built %s in %.3fs", out, tc.Elapsed().TotalSecs())
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&libPath, "lib", "", "output path for the compiled shared library (default <out>/libgennsl.so)")
	rootCmd.AddCommand(buildCmd)
}
