// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/tools/imports"
)

// newCheckCmd creates the "check" command.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify formatting and vet cleanliness",
		Long:  "Check runs gofmt in list mode and go vet. A non-empty gofmt list or a vet finding fails the command.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir := viper.GetString("workdir")

			fmt.Println("Running gofmt...")
			gofmt := exec.Command("gofmt", "-l", ".")
			gofmt.Dir = workDir
			var fmtOut bytes.Buffer
			gofmt.Stdout = &fmtOut
			gofmt.Stderr = os.Stderr
			if err := gofmt.Run(); err != nil {
				return fmt.Errorf("gofmt failed: %w", err)
			}
			unformatted := strings.TrimSpace(fmtOut.String())
			if unformatted != "" {
				fmt.Println(unformatted)
			}

			fmt.Println("Running go vet...")
			vet := exec.Command("go", "vet", "./...")
			vet.Dir = workDir
			vet.Stdout = os.Stdout
			vet.Stderr = os.Stderr
			vetErr := vet.Run()

			if unformatted != "" || vetErr != nil {
				return fmt.Errorf("check failed: run `go-syntax fix` to auto-fix")
			}

			fmt.Println("All checks passed.")
			return nil
		},
	}
}

// newFixCmd creates the "fix" command.
func newFixCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fix",
		Short: "Rewrite all files through goimports",
		Long:  "Fix runs every Go file in the project through goimports, normalizing formatting and import blocks in place.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir := viper.GetString("workdir")

			fixed := 0
			err := filepath.Walk(workDir, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() {
					base := filepath.Base(path)
					if base == ".git" || base == "vendor" || base == "node_modules" || base == "testdata" {
						return filepath.SkipDir
					}
					return nil
				}
				if filepath.Ext(path) != ".go" {
					return nil
				}

				src, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}

				formatted, err := imports.Process(path, src, nil)
				if err != nil {
					// A file that does not parse is reported, not fixed.
					fmt.Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
					return nil
				}
				if bytes.Equal(src, formatted) {
					return nil
				}

				if err := os.WriteFile(path, formatted, info.Mode().Perm()); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				rel, relErr := filepath.Rel(workDir, path)
				if relErr != nil {
					rel = path
				}
				fmt.Printf("fixed %s\n", rel)
				fixed++
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Printf("Done. %d file(s) rewritten.\n", fixed)
			return nil
		},
	}
}
