// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package syntax defines the public interface for go-syntax, a library that
// measures the token footprint of Go source under a fixed tokenizer and
// rewrites the heaviest files into leaner equivalents via an LLM oracle.
package syntax

import (
	"context"
	"errors"
)

// Error types for the Syntax API.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrOracleInit    = errors.New("oracle initialization failed")
)

// Config configures a Syntax instance.
type Config struct {
	WorkDir    string // Project root (required)
	Model      string // Bedrock model ID (required)
	Region     string // AWS region (required)
	Count      int    // Files per batch (default 5)
	AutoAccept bool   // Accept proposals without prompting
	Validate   bool   // Run build/vet/tests after each apply
	TestCmd    string // Test command for validation (empty = build and vet only)
	MaxTokens  int    // Maximum tokens for oracle responses (default 8192)
}

// Result holds the outcome of a batch run. Attempted always equals
// Applied+Rejected+Skipped+RolledBack.
type Result struct {
	Attempted     int
	Applied       int
	Rejected      int
	Skipped       int
	RolledBack    int
	TokensSaved   int
	ProjectTokens int
	AppliedFiles  []string // Root-relative paths of files left rewritten
}

// FileResult holds the outcome of a single-file rewrite.
type FileResult struct {
	Path        string
	State       string // applied, committed, rejected, skipped, rolled back
	Reason      string // Why the session ended short of applied/committed
	TokensSaved int
	Accepted    bool // True for applied and committed
}

// Syntax runs token-efficiency rewrites against a project.
type Syntax interface {
	// RunBatch ranks the project's files by token count and drives one
	// rewrite session per top-ranked file.
	RunBatch(ctx context.Context) (*Result, error)

	// RewriteFile drives one session for a single file.
	RewriteFile(ctx context.Context, path string) (*FileResult, error)
}
