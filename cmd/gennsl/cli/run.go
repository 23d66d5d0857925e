// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snncore/gennsl/backend"
	"github.com/snncore/gennsl/backend/refc"
	"github.com/snncore/gennsl/config"
	"github.com/snncore/gennsl/examples/izhikevich"
	"github.com/snncore/gennsl/logx"
	"github.com/snncore/gennsl/model"
	"github.com/snncore/gennsl/runtime"
	"github.com/snncore/gennsl/runtime/persist"
)

var (
	runLibPath       string
	runSteps         int
	runRecordFor     int
	runSnapshotTo    string
	runCustomUpdates []string
)

// customUpdateGroupsFrom reads the manifest "generate" wrote alongside the
// compiled sources, so "run" can dispatch every declared custom-update
// group without the caller having to name them all on the command line.
func customUpdateGroupsFrom(dir string) []string {
	data, err := os.ReadFile(filepath.Join(dir, "custom_update_groups.txt"))
	if err != nil {
		return nil
	}
	var groups []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			groups = append(groups, line)
		}
	}
	return groups
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load the compiled shared library and step the simulation",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logx.Default("gennsl")

		cfg := config.Default()
		if configFile != "" {
			var err error
			cfg, err = config.Load(configFile)
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}
		}

		lib := runLibPath
		if lib == "" {
			lib = filepath.Join(outDir, "libgennsl.so")
		}

		// "run" loads a library "generate" already compiled from this same
		// demonstration model; rebuilding it here (rather than serialising
		// it alongside the library) gives Allocate the shapes it needs to
		// size every array without inventing a second model format.
		m := model.NewModel("izhikevich-demo")
		if err := cfg.Apply(m); err != nil {
			return fmt.Errorf("run: applying configuration: %w", err)
		}
		if err := izhikevich.Build(m); err != nil {
			return fmt.Errorf("run: building demonstration model: %w", err)
		}
		if err := m.Finalise(cfg.DT); err != nil {
			return fmt.Errorf("run: finalising model: %w", err)
		}

		b := refc.New(backend.DefaultPreferences())
		rt, err := runtime.Open(lib, b, cfg.DT)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		defer rt.Close()

		if err := rt.Allocate(m, runRecordFor); err != nil {
			return fmt.Errorf("run: allocating arrays: %w", err)
		}
		rt.Initialize()
		rt.InitializeSparse()

		for i := 0; i < runSteps; i++ {
			rt.StepTime()
		}
		log.Infof("ran %d timestep(s), t=%.3f", runSteps, rt.Time())

		groups := runCustomUpdates
		if len(groups) == 0 {
			groups = customUpdateGroupsFrom(outDir)
		}
		for _, group := range groups {
			if err := rt.RunCustomUpdate(group); err != nil {
				return fmt.Errorf("run: custom update %q: %w", group, err)
			}
			log.Infof("ran custom update group %q", group)
		}

		if runSnapshotTo != "" {
			if err := persist.New().Save(runSnapshotTo, rt); err != nil {
				return fmt.Errorf("run: saving snapshot: %w", err)
			}
			log.Infof("wrote snapshot to %s", runSnapshotTo)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runLibPath, "lib", "", "path to the compiled shared library (default <out>/libgennsl.so)")
	runCmd.Flags().IntVar(&runSteps, "steps", 100, "number of timesteps to run")
	runCmd.Flags().IntVar(&runRecordFor, "record", 0, "number of timesteps to size the spike-recording buffer for (0 disables recording)")
	runCmd.Flags().StringVar(&runSnapshotTo, "snapshot", "", "path to write a post-run array snapshot to (disabled if empty)")
	runCmd.Flags().StringSliceVar(&runCustomUpdates, "custom-update", nil, "custom-update group(s) to run once after the timestep loop (default: every group from \"generate\")")
	rootCmd.AddCommand(runCmd)
}
