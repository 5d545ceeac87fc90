// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Equanimity CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equanimity",
		Short: "Equanimity - habit and mood tracking server",
		Long: `Equanimity is a habit and mood tracking server: users register,
complete onboarding, log meals, habits, and states, and get
correlation insights over their history.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
