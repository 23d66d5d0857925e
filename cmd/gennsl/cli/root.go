// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cli is gennsl's cobra command tree: "generate" emits C source
// for a model, "build" compiles it into a shared library, and "run"
// drives the loaded simulation for a fixed number of timesteps. Grounded
// on the teacher pack's own cmd package (a package-level rootCmd,
// persistent --configFile/--seed flags, one file per subcommand, each
// adding itself to rootCmd from its own init).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	outDir     string
)

var rootCmd = &cobra.Command{
	Use:   "gennsl",
	Short: "gennsl generates, builds, and runs spiking-neural-network models",
	Long: `gennsl turns a model declared in Go into a compiled shared library
and drives it through a reference backend: "generate" emits C source,
"build" invokes the system compiler, and "run" loads and steps the
result.`,
}

// Execute runs the root command, printing any error to stderr and
// exiting non-zero, matching the teacher's own Execute.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a TOML model configuration file")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", "generated", "directory for generated source and the built library")
}
