// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command go-syntax measures the token footprint of Go source files and
// rewrites the heaviest ones into leaner equivalents via an LLM oracle.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

const defaultModel = "anthropic.claude-sonnet-4-20250514-v1:0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "go-syntax",
		Short: "Token-efficiency toolkit for Go source",
		Long: "go-syntax measures how many LLM tokens your Go files cost, ranks the\n" +
			"heaviest ones, and rewrites them into shorter equivalents with build,\n" +
			"vet, and test gates guarding every change.",
		SilenceUsage: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().String("workdir", ".", "Project root directory")
	rootCmd.PersistentFlags().String("model", defaultModel, "Bedrock model ID")
	rootCmd.PersistentFlags().String("region", "us-east-1", "AWS region for Bedrock")
	rootCmd.PersistentFlags().String("profile", "", "AWS credential profile")
	rootCmd.PersistentFlags().Int("max-tokens", 8192, "Maximum tokens for LLM responses")
	rootCmd.PersistentFlags().String("test-cmd", "", "Test command for validation (e.g., 'go test ./...')")

	// Bind flags to viper.
	viper.BindPFlag("workdir", rootCmd.PersistentFlags().Lookup("workdir"))
	viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("region", rootCmd.PersistentFlags().Lookup("region"))
	viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	viper.BindPFlag("max-tokens", rootCmd.PersistentFlags().Lookup("max-tokens"))
	viper.BindPFlag("test-cmd", rootCmd.PersistentFlags().Lookup("test-cmd"))

	// Env vars: GO_SYNTAX_MODEL, GO_SYNTAX_REGION, etc.
	viper.SetEnvPrefix("GO_SYNTAX")
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".go-syntax")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	// Add commands.
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newFixCmd())
	rootCmd.AddCommand(newAuditCmd())
	rootCmd.AddCommand(newTopCmd())
	rootCmd.AddCommand(newBadgeCmd())
	rootCmd.AddCommand(newRewriteCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newModelsCmd())
	rootCmd.AddCommand(newExplainCmd())
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print go-syntax version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("go-syntax %s\n", version)
		},
	}
}
