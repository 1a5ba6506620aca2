// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-syntax/internal/oracle"
	"github.com/petar-djukic/go-syntax/internal/tokens"
)

const previewLines = 30

// newModelsCmd creates the "models" command.
func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models [search]",
		Short: "List Bedrock foundation models usable as the oracle",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			search := ""
			if len(args) == 1 {
				search = args[0]
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			lister, err := oracle.NewModelLister(ctx, viper.GetString("region"), viper.GetString("profile"))
			if err != nil {
				return err
			}

			fmt.Println("Fetching models from Bedrock...")
			models, err := oracle.ListModels(ctx, lister, search)
			if err != nil {
				return err
			}

			fmt.Printf("\n%-55s %-15s %-30s %s\n", "Model ID", "Provider", "Name", "Streaming")
			fmt.Println(strings.Repeat("-", 110))
			for _, m := range models {
				streaming := "no"
				if m.Streaming {
					streaming = "yes"
				}
				fmt.Printf("%-55s %-15s %-30s %s\n", m.ID, m.Provider, m.Name, streaming)
			}

			fmt.Printf("\n%d model(s) found\n", len(models))
			fmt.Println("\nUsage: go-syntax rewrite main.go --model <MODEL_ID>")
			fmt.Println("   or: go-syntax batch 5 --model <MODEL_ID>")
			return nil
		},
	}
}

// newExplainCmd creates the "explain" command.
func newExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain PATH",
		Short: "Explain a file or the whole project for onboarding",
		Long:  "Explain asks the oracle to summarize a single Go file, or the project architecture when PATH is a directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("path not found: %s", path)
			}

			client, err := oracle.NewClient(context.Background(), oracle.ClientConfig{
				Region:    viper.GetString("region"),
				Profile:   viper.GetString("profile"),
				Timeout:   2 * time.Minute,
				MaxTokens: viper.GetInt("max-tokens"),
			})
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			model := viper.GetString("model")
			if info.IsDir() {
				return explainProject(ctx, client, path, model)
			}
			return explainFile(ctx, client, path, model)
		},
	}
}

func explainFile(ctx context.Context, client *oracle.Client, path, model string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	scanner, err := tokens.NewScanner()
	if err != nil {
		return err
	}
	m := scanner.Measure(content)

	fmt.Printf("Explaining %s (%d lines, %d tokens) via %s...\n", path, m.Lines, m.Tokens, model)

	result, err := client.ExplainFile(ctx, content, model)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s\n", result.Purpose)

	if len(result.KeyItems) > 0 {
		fmt.Println("\n  Key items:")
		for _, item := range result.KeyItems {
			fmt.Printf("    %s (%s): %s\n", item.Name, item.Kind, item.Description)
		}
	}
	if len(result.DependsOn) > 0 {
		fmt.Printf("\n  Dependencies: %s\n", strings.Join(result.DependsOn, ", "))
	}
	return nil
}

func explainProject(ctx context.Context, client *oracle.Client, root, model string) error {
	scanner, err := tokens.NewScanner()
	if err != nil {
		return err
	}
	stats, err := scanner.ScanProject(root)
	if err != nil {
		return err
	}
	if len(stats.Files) == 0 {
		return fmt.Errorf("no .go files found in %s", root)
	}

	fmt.Printf("Explaining project (%d files, %d tokens) via %s...\n",
		len(stats.Files), stats.TotalTokens, model)

	var manifest strings.Builder
	for _, f := range stats.Files {
		content, err := os.ReadFile(filepath.Join(root, f.Path))
		if err != nil {
			continue
		}
		fmt.Fprintf(&manifest, "--- %s (%d lines, %d tokens) ---\n", f.Path, f.Metrics.Lines, f.Metrics.Tokens)
		lines := strings.Split(string(content), "\n")
		if len(lines) > previewLines {
			lines = lines[:previewLines]
		}
		manifest.WriteString(strings.Join(lines, "\n"))
		manifest.WriteString("\n\n")
	}

	result, err := client.ExplainProject(ctx, manifest.String(), model)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s\n\n  Modules:\n", result.Summary)
	for _, m := range result.Modules {
		fmt.Printf("    %-40s %s\n", m.Path, m.Purpose)
	}
	fmt.Printf("\n  Start here: %s\n", result.StartHere)
	return nil
}
