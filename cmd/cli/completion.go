// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

package cli

import (
	"strings"

	"photobatch/internal/config"

	"github.com/spf13/cobra"
)

// hostCompletionFunc completes configured SSH host names for the --host flag
// and the 'ssh remove' argument.
func hostCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.LoadConfig()
	if err != nil {
		// Completion must not fail loudly; just offer nothing.
		return nil, cobra.ShellCompDirectiveError
	}

	var suggestions []string
	for _, host := range cfg.SSHHosts {
		if strings.HasPrefix(host.Name, toComplete) {
			suggestions = append(suggestions, host.Name)
		}
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}
