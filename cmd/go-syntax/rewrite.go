// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-syntax/internal/gitsnap"
	"github.com/petar-djukic/go-syntax/internal/rewrite"
	"github.com/petar-djukic/go-syntax/pkg/syntax"
)

// newRewriteCmd creates the "rewrite" command.
func newRewriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite FILE",
		Short: "Rewrite one file into a token-leaner equivalent",
		Long:  "Rewrite sends FILE to the oracle, shows the proposed change, and applies it on acceptance. Exits non-zero when the session ends rejected or skipped.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validate, _ := cmd.Flags().GetBool("validate")
			yes, _ := cmd.Flags().GetBool("yes")

			s, err := newSyntax(0, yes, validate)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			result, err := s.RewriteFile(ctx, args[0])
			if err != nil {
				return err
			}
			return reportRewrite(os.Stdout, result)
		},
	}

	cmd.Flags().Bool("validate", false, "Run build, vet, and tests after applying")
	cmd.Flags().BoolP("yes", "y", false, "Accept the proposal without prompting")
	return cmd
}

// reportRewrite maps a single-file outcome onto the command's exit contract:
// rejected and skipped sessions exit non-zero, while a rolled-back session
// already restored the tree to a known-good state and exits clean, same as
// rollbacks inside a batch.
func reportRewrite(out io.Writer, result *syntax.FileResult) error {
	if result.Accepted {
		fmt.Fprintf(out, "%s %s (saves %d tokens)\n", result.State, result.Path, result.TokensSaved)
		return nil
	}
	if result.State == rewrite.StateRolledBack.String() {
		fmt.Fprintf(out, "rolled back %s: %s\n", result.Path, result.Reason)
		return nil
	}
	return fmt.Errorf("%s: %s", result.State, result.Reason)
}

// newBatchCmd creates the "batch" command.
func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [n]",
		Short: "Rewrite the n most token-heavy files",
		Long: "Batch ranks the project's files by token count and runs one rewrite\n" +
			"session per top-ranked file. Per-file skips, rejections, and rollbacks\n" +
			"never stop the batch. In a git repository a dirty tree is snapshot-committed\n" +
			"first and applied rewrites are auto-committed afterwards.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count := 0 // 0 lets the library default apply
			if len(args) == 1 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil || parsed < 1 {
					return fmt.Errorf("invalid count %q", args[0])
				}
				count = parsed
			}

			validate, _ := cmd.Flags().GetBool("validate")
			auto, _ := cmd.Flags().GetBool("auto")
			noGit, _ := cmd.Flags().GetBool("no-git")

			s, err := newSyntax(count, auto, validate)
			if err != nil {
				return err
			}

			repo := openRepo(noGit)
			if repo != nil {
				made, err := repo.Snapshot()
				if err != nil {
					return fmt.Errorf("pre-batch snapshot: %w", err)
				}
				if made {
					fmt.Println("Committed dirty working tree as a recovery point.")
				}
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			result, err := s.RunBatch(ctx)
			if err != nil {
				return err
			}

			if repo != nil {
				if err := repo.CommitApplied(result.AppliedFiles, result.TokensSaved); err != nil {
					return fmt.Errorf("committing applied rewrites: %w", err)
				}
				if len(result.AppliedFiles) > 0 {
					fmt.Println("Committed applied rewrites. Use `go-syntax undo` to revert.")
				}
			}
			return nil
		},
	}

	cmd.Flags().Bool("validate", false, "Run build, vet, and tests after each apply")
	cmd.Flags().Bool("auto", false, "Accept proposals without prompting")
	cmd.Flags().Bool("no-git", false, "Disable git snapshots and auto-commits")
	return cmd
}

// newUndoCmd creates the "undo" command.
func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the last go-syntax commit",
		Long:  "Undo performs a soft reset of the last commit if go-syntax made it, leaving the changes staged in the working tree.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := gitsnap.Open(viper.GetString("workdir"))
			if err != nil {
				return fmt.Errorf("opening repository: %w", err)
			}

			if err := repo.Undo(); err != nil {
				return fmt.Errorf("undo failed: %w", err)
			}

			fmt.Println("Successfully reverted last go-syntax commit.")
			return nil
		},
	}
}

// newSyntax builds the library facade from the global configuration.
func newSyntax(count int, autoAccept, validate bool) (syntax.Syntax, error) {
	s, err := syntax.New(syntax.Config{
		WorkDir:    viper.GetString("workdir"),
		Model:      viper.GetString("model"),
		Region:     viper.GetString("region"),
		Count:      count,
		AutoAccept: autoAccept,
		Validate:   validate,
		TestCmd:    viper.GetString("test-cmd"),
		MaxTokens:  viper.GetInt("max-tokens"),
	})
	if err != nil {
		return nil, fmt.Errorf("initialization failed: %w", err)
	}
	return s, nil
}

// openRepo opens the working directory's repository, or returns nil when git
// integration is disabled or the directory is not a repository.
func openRepo(noGit bool) *gitsnap.Repo {
	if noGit {
		return nil
	}
	repo, err := gitsnap.Open(viper.GetString("workdir"))
	if err != nil {
		if !errors.Is(err, gitsnap.ErrNoRepo) {
			fmt.Fprintf(os.Stderr, "git integration disabled: %v\n", err)
		}
		return nil
	}
	return repo
}
