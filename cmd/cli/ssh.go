// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

// Package cli's ssh.go file implements CLI commands for managing SSH host
// configurations: adding, listing, removing, and importing hosts used by
// the fixtz command's remote mode.

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"photobatch/internal/config"
	"photobatch/internal/logger"

	"github.com/spf13/cobra"
)

var reader = bufio.NewReader(os.Stdin)

// sshCmd is the parent command for SSH-specific configuration subcommands
var sshCmd = &cobra.Command{
	Use:   "ssh",
	Short: "Manage SSH host configurations",
	Long: `Add, list, remove, or import SSH host configurations used by photobatch.
These configurations let 'pb fixtz --host <name>' run exiftool next to the
files on a remote host.`,
}

var sshListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured SSH hosts",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			logger.Errorf("Error loading configuration: %v", err)
			os.Exit(1)
		}

		if len(cfg.SSHHosts) == 0 {
			fmt.Println("No SSH hosts configured.")
			return
		}

		statusColor.Println("Configured SSH Hosts:")
		for i, host := range cfg.SSHHosts {
			details := fmt.Sprintf("%s@%s", host.User, host.Hostname)
			if host.Port != 0 && host.Port != 22 {
				details += fmt.Sprintf(":%d", host.Port)
			}
			fmt.Printf("%d: %s (%s)\n", i+1, identifierColor.Sprint(host.Name), details)
			if host.KeyPath != "" {
				fmt.Printf("   Key Path: %s\n", host.KeyPath)
			}
			if host.Password != "" {
				fmt.Printf("   Password: %s\n", errorColor.Sprint("[set, stored insecurely]"))
			}
		}
	},
}

// promptForNewHostDetails handles the interactive prompts for adding a new host.
func promptForNewHostDetails(existingHosts []config.SSHHost) (config.SSHHost, error) {
	var newHost config.SSHHost
	var err error

	newHost.Name, err = promptString("Unique Name (e.g., 'nas', 'studio'):", true)
	if err != nil {
		return newHost, fmt.Errorf("error reading name: %w", err)
	}
	for _, h := range existingHosts {
		if h.Name == newHost.Name {
			return newHost, fmt.Errorf("SSH host with name '%s' already exists", newHost.Name)
		}
	}

	newHost.Hostname, err = promptString("Hostname or IP Address:", true)
	if err != nil {
		return newHost, fmt.Errorf("error reading hostname: %w", err)
	}

	newHost.User, err = promptString("SSH Username:", true)
	if err != nil {
		return newHost, fmt.Errorf("error reading username: %w", err)
	}

	newHost.Port, err = promptOptionalInt("SSH Port", 22)
	if err != nil {
		return newHost, fmt.Errorf("error reading port: %w", err)
	}
	if newHost.Port == 22 {
		newHost.Port = 0 // Store 0 for default
	}

	newHost.KeyPath, err = promptString("Private Key Path (optional, empty uses the SSH agent):", false)
	if err != nil {
		return newHost, fmt.Errorf("error reading key path: %w", err)
	}

	return newHost, nil
}

var sshAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new SSH host configuration interactively",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			logger.Errorf("Error loading configuration: %v", err)
			os.Exit(1)
		}

		newHost, err := promptForNewHostDetails(cfg.SSHHosts)
		if err != nil {
			errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cfg.SSHHosts = append(cfg.SSHHosts, newHost)
		if err := config.SaveConfig(cfg); err != nil {
			errorColor.Fprintf(os.Stderr, "Error saving configuration: %v\n", err)
			os.Exit(1)
		}

		successColor.Printf("SSH host '%s' added.\n", newHost.Name)
	},
}

var sshRemoveCmd = &cobra.Command{
	Use:               "remove <host-name>",
	Aliases:           []string{"rm"},
	Short:             "Remove a configured SSH host",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: hostCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		hostName := args[0]

		cfg, err := config.LoadConfig()
		if err != nil {
			logger.Errorf("Error loading configuration: %v", err)
			os.Exit(1)
		}

		index := -1
		for i, h := range cfg.SSHHosts {
			if h.Name == hostName {
				index = i
				break
			}
		}
		if index == -1 {
			errorColor.Fprintf(os.Stderr, "Error: host '%s' not found in configuration.\n", hostName)
			os.Exit(1)
		}

		confirmed, err := promptConfirm(fmt.Sprintf("Remove SSH host '%s'?", hostName))
		if err != nil {
			errorColor.Fprintf(os.Stderr, "Error reading confirmation: %v\n", err)
			os.Exit(1)
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return
		}

		cfg.SSHHosts = append(cfg.SSHHosts[:index], cfg.SSHHosts[index+1:]...)
		if err := config.SaveConfig(cfg); err != nil {
			errorColor.Fprintf(os.Stderr, "Error saving configuration: %v\n", err)
			os.Exit(1)
		}

		successColor.Printf("SSH host '%s' removed.\n", hostName)
	},
}

var sshImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import hosts from ~/.ssh/config",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			logger.Errorf("Error loading configuration: %v", err)
			os.Exit(1)
		}

		potentialHosts, err := config.ParseSSHConfig()
		if err != nil {
			errorColor.Fprintf(os.Stderr, "Error parsing ~/.ssh/config: %v\n", err)
			os.Exit(1)
		}
		if len(potentialHosts) == 0 {
			fmt.Println("No importable hosts found in ~/.ssh/config.")
			return
		}

		existing := make(map[string]bool, len(cfg.SSHHosts))
		for _, h := range cfg.SSHHosts {
			existing[h.Name] = true
		}

		statusColor.Println("Hosts found in ~/.ssh/config:")
		var importable []config.PotentialHost
		for i, p := range potentialHosts {
			marker := ""
			if existing[p.Alias] {
				marker = dimColor.Sprint(" (already configured)")
			} else {
				importable = append(importable, p)
			}
			fmt.Printf("%d: %s (%s@%s)%s\n", i+1, identifierColor.Sprint(p.Alias), p.User, p.Hostname, marker)
		}
		if len(importable) == 0 {
			fmt.Println("\nNo new hosts available to import.")
			return
		}

		fmt.Println("\nEnter the numbers of the hosts you want to import (comma-separated), or 'all':")
		choiceStr, err := promptString("Import selection:", true)
		if err != nil {
			errorColor.Fprintf(os.Stderr, "Error reading selection: %v\n", err)
			os.Exit(1)
		}

		var selected []config.PotentialHost
		if strings.EqualFold(choiceStr, "all") {
			selected = importable
		} else {
			seen := make(map[string]bool)
			for _, indexStr := range strings.Split(choiceStr, ",") {
				index, convErr := strconv.Atoi(strings.TrimSpace(indexStr))
				if convErr != nil || index < 1 || index > len(potentialHosts) {
					errorColor.Fprintf(os.Stderr, "Invalid selection '%s'. Enter numbers from the list above.\n", indexStr)
					os.Exit(1)
				}
				p := potentialHosts[index-1]
				if existing[p.Alias] || seen[p.Alias] {
					continue
				}
				seen[p.Alias] = true
				selected = append(selected, p)
			}
		}

		imported := 0
		for _, p := range selected {
			host, convErr := config.ConvertToSSHHost(p, p.Alias)
			if convErr != nil {
				errorColor.Fprintf(os.Stderr, "Skipping '%s': %v\n", p.Alias, convErr)
				continue
			}
			cfg.SSHHosts = append(cfg.SSHHosts, host)
			imported++
		}

		if imported > 0 {
			if err := config.SaveConfig(cfg); err != nil {
				errorColor.Fprintf(os.Stderr, "Error saving configuration: %v\n", err)
				os.Exit(1)
			}
		}
		successColor.Printf("Imported %d host(s), skipped %d.\n", imported, len(selected)-imported)
	},
}

func promptString(prompt string, required bool) (string, error) {
	fmt.Print(prompt + " ")
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	input = strings.TrimSpace(input)
	if required && input == "" {
		return "", fmt.Errorf("input is required")
	}
	return input, nil
}

func promptOptionalInt(prompt string, defaultValue int) (int, error) {
	fmt.Printf("%s (default: %d): ", prompt, defaultValue)
	input, err := reader.ReadString('\n')
	if err != nil {
		return defaultValue, err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue, nil
	}
	val, err := strconv.Atoi(input)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid integer input: %w", err)
	}
	return val, nil
}

func promptConfirm(prompt string) (bool, error) {
	fmt.Print(prompt + " (y/N): ")
	input, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes", nil
}

func init() {
	sshCmd.AddCommand(sshListCmd)
	sshCmd.AddCommand(sshAddCmd)
	sshCmd.AddCommand(sshRemoveCmd)
	sshCmd.AddCommand(sshImportCmd)
}
