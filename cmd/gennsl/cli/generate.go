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
	"github.com/snncore/gennsl/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build the demonstration model and emit its C source",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logx.Default("gennsl")

		cfg := config.Default()
		if configFile != "" {
			var err error
			cfg, err = config.Load(configFile)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}
		}

		m := model.NewModel("izhikevich-demo")
		if err := cfg.Apply(m); err != nil {
			return fmt.Errorf("generate: applying configuration: %w", err)
		}
		if err := izhikevich.Build(m); err != nil {
			return fmt.Errorf("generate: building demonstration model: %w", err)
		}
		if err := m.Finalise(cfg.DT); err != nil {
			return fmt.Errorf("generate: finalising model: %w", err)
		}

		b := refc.New(backend.DefaultPreferences())
		result, err := pipeline.Generate(m, b, log)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("generate: creating %s: %w", outDir, err)
		}
		for name, src := range result.Sources {
			path := filepath.Join(outDir, name)
			if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
				return fmt.Errorf("generate: writing %s: %w", path, err)
			}
			log.Infof("wrote %s", path)
		}

		manifestPath := filepath.Join(outDir, "custom_update_groups.txt")
		manifest := strings.Join(result.CustomUpdateGroups, "\n")
		if manifest != "" {
			manifest += "\n"
		}
		if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
			return fmt.Errorf("generate: writing %s: %w", manifestPath, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
