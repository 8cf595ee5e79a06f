// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

package cli

import (
	"fmt"
	"os"

	"photobatch/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the photobatch configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := config.DefaultConfigPath()
		if err != nil {
			errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(path)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Prints the loaded configuration with the effective shrink defaults
filled in. Passwords are redacted.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			errorColor.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}

		cfg.Defaults = cfg.EffectiveDefaults()
		for i := range cfg.SSHHosts {
			if cfg.SSHHosts[i].Password != "" {
				cfg.SSHHosts[i].Password = "[redacted]"
			}
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			errorColor.Fprintf(os.Stderr, "Error rendering configuration: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(string(data))
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
}
