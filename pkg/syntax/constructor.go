// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package syntax

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/petar-djukic/go-syntax/internal/batch"
	"github.com/petar-djukic/go-syntax/internal/oracle"
	"github.com/petar-djukic/go-syntax/internal/rewrite"
	"github.com/petar-djukic/go-syntax/internal/tokens"
	"github.com/petar-djukic/go-syntax/internal/validate"
)

const (
	defaultCount      = 5
	defaultMaxTokens  = 8192
	defaultLLMTimeout = 2 * time.Minute
)

// New validates the config, initializes the tokenizer and the Bedrock client,
// and returns a ready-to-use Syntax. It does not scan the project; that
// happens per run.
func New(cfg Config) (Syntax, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	applyDefaults(&cfg)

	scanner, err := tokens.NewScanner()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	client, err := oracle.NewClient(context.Background(), oracle.ClientConfig{
		Region:    cfg.Region,
		Timeout:   defaultLLMTimeout,
		MaxTokens: cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleInit, err)
	}

	var validator rewrite.Validator
	if cfg.Validate {
		validator = validate.NewRunner(validate.Config{
			WorkDir: cfg.WorkDir,
			TestCmd: cfg.TestCmd,
		})
	}

	var confirmer rewrite.Confirmer
	if !cfg.AutoAccept {
		confirmer = rewrite.NewConsoleConfirmer(os.Stdin, os.Stdout)
	}

	return &syntaxAdapter{
		cfg:       cfg,
		scanner:   scanner,
		oracle:    client,
		validator: validator,
		confirmer: confirmer,
	}, nil
}

// syntaxAdapter adapts the internal batch and session machinery to the
// public Syntax interface.
type syntaxAdapter struct {
	cfg       Config
	scanner   *tokens.Scanner
	oracle    oracle.Oracle
	validator rewrite.Validator
	confirmer rewrite.Confirmer
}

func (a *syntaxAdapter) RunBatch(ctx context.Context) (*Result, error) {
	orch := batch.New(a.scanner, a.oracle, a.validator, a.confirmer, os.Stdout)

	summary, err := orch.Run(ctx, batch.Config{
		WorkDir:    a.cfg.WorkDir,
		Count:      a.cfg.Count,
		Model:      a.cfg.Model,
		AutoAccept: a.cfg.AutoAccept,
		Validate:   a.cfg.Validate,
	})
	if summary == nil {
		return nil, err
	}
	return &Result{
		Attempted:     summary.Attempted,
		Applied:       summary.Applied,
		Rejected:      summary.Rejected,
		Skipped:       summary.Skipped,
		RolledBack:    summary.RolledBack,
		TokensSaved:   summary.TokensSaved,
		ProjectTokens: summary.ProjectTokens,
		AppliedFiles:  summary.AppliedFiles,
	}, err
}

func (a *syntaxAdapter) RewriteFile(ctx context.Context, path string) (*FileResult, error) {
	session := rewrite.NewSession(rewrite.Config{
		Path:       path,
		Model:      a.cfg.Model,
		AutoAccept: a.cfg.AutoAccept,
		Validate:   a.cfg.Validate,
	}, a.scanner, a.oracle, a.validator, a.confirmer, os.Stdout)

	outcome, err := session.Run(ctx)
	if err != nil {
		return nil, err
	}
	return &FileResult{
		Path:        outcome.Path,
		State:       outcome.State.String(),
		Reason:      outcome.Reason,
		TokensSaved: outcome.TokensSaved,
		Accepted:    outcome.State == rewrite.StateApplied || outcome.State == rewrite.StateCommitted,
	}, nil
}

// validateConfig checks that required fields are present.
func validateConfig(cfg Config) error {
	if cfg.WorkDir == "" {
		return fmt.Errorf("WorkDir is required")
	}
	if info, err := os.Stat(cfg.WorkDir); err != nil || !info.IsDir() {
		return fmt.Errorf("WorkDir %q does not exist or is not a directory", cfg.WorkDir)
	}
	if cfg.Model == "" {
		return fmt.Errorf("Model is required")
	}
	if cfg.Region == "" {
		return fmt.Errorf("Region is required")
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Count == 0 {
		cfg.Count = defaultCount
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
}
