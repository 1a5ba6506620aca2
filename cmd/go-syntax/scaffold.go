// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-syntax/internal/scaffold"
)

// newInitCmd creates the "init" command.
func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init NAME",
		Short: "Create a new Go project with token-efficient config",
		Long:  "Init creates a new Go module with lint rules, formatting config, an ignore file, and an agent style guide tuned for token-lean code.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return scaffold.Init(args[0], os.Stdout)
		},
	}
}

// newApplyCmd creates the "apply" command.
func newApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Add the token-efficient config to an existing project",
		Long:  "Apply writes the config set into the current project. Existing files are kept; .gitignore gets missing patterns appended.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return scaffold.Apply(viper.GetString("workdir"), os.Stdout)
		},
	}
}
