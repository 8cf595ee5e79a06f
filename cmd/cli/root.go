// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

package cli

import (
	"fmt"
	"os"

	"photobatch/internal/config"
	"photobatch/internal/logger"
	"photobatch/internal/runner"
	"photobatch/internal/ssh"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	sshManager *ssh.Manager

	statusColor     = color.New(color.FgCyan)
	errorColor      = color.New(color.FgRed)
	stepColor       = color.New(color.FgYellow)
	successColor    = color.New(color.FgGreen)
	identifierColor = color.New(color.FgBlue)
	dimColor        = color.New(color.FgHiBlack)
)

var rootCmd = &cobra.Command{
	Use:   "pb",
	Short: "Photobatch CLI",
	Long: `Batch tools for camera shoot dumps.

'pb shrink' downscales and re-encodes photos (JPG/PNG/WebP/TIFF/HEIC/ARW)
into smaller JPEGs or PNGs. 'pb fixtz' copies photos and corrects EXIF
timestamps recorded under the wrong timezone, locally or on a remote host
configured via SSH (~/.config/photobatch/config.yaml).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.EnsureConfigDir(); err != nil {
			return fmt.Errorf("failed to ensure config directory: %w", err)
		}
		sshManager = ssh.NewManager()
		runner.InitSSHManager(sshManager)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if sshManager != nil {
			sshManager.CloseAll()
		}
		return nil
	},
}

// RunCLI executes the root command.
func RunCLI() {
	// Keep stderr clean on interactive terminals where the progress view may
	// own the screen; logs still go to the state-dir file.
	logger.InitLogger(isatty.IsTerminal(os.Stdout.Fd()))

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// useProgressView reports whether a batch command should render the
// full-screen progress view.
func useProgressView(plainFlag bool) bool {
	return !plainFlag && isatty.IsTerminal(os.Stdout.Fd())
}

func init() {
	rootCmd.AddCommand(shrinkCmd)
	rootCmd.AddCommand(fixtzCmd)
	rootCmd.AddCommand(sshCmd)
	rootCmd.AddCommand(configCmd)
}
