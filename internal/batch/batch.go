// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package batch sequences rewrite sessions over the most token-heavy files
// and aggregates their outcomes.
package batch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/petar-djukic/go-syntax/internal/oracle"
	"github.com/petar-djukic/go-syntax/internal/rewrite"
	"github.com/petar-djukic/go-syntax/internal/tokens"
)

// Summary accumulates session outcomes across one batch. It grows
// monotonically while the batch runs and is immutable afterwards.
// Attempted always equals Applied+Rejected+Skipped+RolledBack.
type Summary struct {
	Attempted   int
	Applied     int // Applied and Committed sessions
	Rejected    int
	Skipped     int
	RolledBack  int
	TokensSaved int // From Applied/Committed sessions only

	ProjectTokens int      // Total tokens in the scanned project, for percentages
	AppliedFiles  []string // Root-relative paths of files left rewritten
}

// Config configures one batch run.
type Config struct {
	WorkDir    string
	Count      int // Number of top-ranked files to process
	Model      string
	AutoAccept bool
	Validate   bool
}

// Orchestrator runs sessions strictly one after another: validation inspects
// the whole working tree, so no two sessions may ever mutate it concurrently.
// Exclusivity is structural, not locked.
type Orchestrator struct {
	scanner   *tokens.Scanner
	oracle    oracle.Oracle
	validator rewrite.Validator
	confirmer rewrite.Confirmer
	out       io.Writer
}

// New wires an orchestrator. out may be nil to discard progress output.
func New(scanner *tokens.Scanner, orc oracle.Oracle, validator rewrite.Validator, confirmer rewrite.Confirmer, out io.Writer) *Orchestrator {
	if out == nil {
		out = io.Discard
	}
	return &Orchestrator{
		scanner:   scanner,
		oracle:    orc,
		validator: validator,
		confirmer: confirmer,
		out:       out,
	}
}

// Run ranks the project's files, takes the top cfg.Count (clamped to what
// exists), and drives one session per file. Individual skips, rejections,
// and rollbacks never stop the batch: a rolled-back file is already restored
// and the remaining files are independent. The only fatal conditions are
// failing to scan the candidate list before any session starts, and an
// apply/rollback I/O failure that leaves a file in an unknown state.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) (*Summary, error) {
	stats, err := o.scanner.ScanProject(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("scanning candidate files: %w", err)
	}

	ranked := tokens.Rank(stats)
	count := cfg.Count
	if count < 0 {
		count = 0
	}
	if count > len(ranked) {
		count = len(ranked)
	}

	summary := &Summary{ProjectTokens: stats.TotalTokens}

	for i, rf := range ranked[:count] {
		fmt.Fprintf(o.out, "[%d/%d] %s  (%d tokens, %d lines, %.1f%% of project)\n",
			i+1, count, rf.Path, rf.Metrics.Tokens, rf.Metrics.Lines, rf.WeightFraction*100)

		session := rewrite.NewSession(rewrite.Config{
			Path:       filepath.Join(cfg.WorkDir, rf.Path),
			Model:      cfg.Model,
			AutoAccept: cfg.AutoAccept,
			Validate:   cfg.Validate,
		}, o.scanner, o.oracle, o.validator, o.confirmer, o.out)

		outcome, err := session.Run(ctx)
		if err != nil {
			// Apply/rollback I/O failure: the invariant that no file is left
			// corrupted cannot be guaranteed past this point.
			return summary, fmt.Errorf("batch aborted: %w", err)
		}

		summary.fold(outcome)
		if outcome.State == rewrite.StateApplied || outcome.State == rewrite.StateCommitted {
			summary.AppliedFiles = append(summary.AppliedFiles, rf.Path)
		}
		o.report(outcome)
	}

	o.reportSummary(summary)
	return summary, nil
}

// fold merges one session outcome into the running summary.
func (s *Summary) fold(outcome *rewrite.Outcome) {
	s.Attempted++
	switch outcome.State {
	case rewrite.StateApplied, rewrite.StateCommitted:
		s.Applied++
		s.TokensSaved += outcome.TokensSaved
	case rewrite.StateRejected:
		s.Rejected++
	case rewrite.StateSkipped:
		s.Skipped++
	case rewrite.StateRolledBack:
		s.RolledBack++
	}
}

// report prints the one-line classification for a finished session.
func (o *Orchestrator) report(outcome *rewrite.Outcome) {
	switch outcome.State {
	case rewrite.StateApplied, rewrite.StateCommitted:
		color.New(color.FgGreen).Fprintf(o.out, "  %s (saves %d tokens)\n", outcome.State, outcome.TokensSaved)
	case rewrite.StateRejected:
		color.New(color.FgYellow).Fprintf(o.out, "  rejected: %s\n", outcome.Reason)
	case rewrite.StateSkipped:
		color.New(color.FgYellow).Fprintf(o.out, "  skipped: %s\n", outcome.Reason)
	case rewrite.StateRolledBack:
		color.New(color.FgRed).Fprintf(o.out, "  rolled back: %s\n", outcome.Reason)
		if outcome.Diagnostic != "" {
			fmt.Fprintf(o.out, "%s\n", outcome.Diagnostic)
		}
	}
	fmt.Fprintln(o.out)
}

// reportSummary prints the final counts. All four categories appear even
// when zero.
func (o *Orchestrator) reportSummary(s *Summary) {
	fmt.Fprintf(o.out, "Batch complete: %d applied, %d rejected, %d skipped, %d rolled back\n",
		s.Applied, s.Rejected, s.Skipped, s.RolledBack)

	if s.TokensSaved > 0 && s.ProjectTokens > 0 {
		pct := float64(s.TokensSaved) / float64(s.ProjectTokens) * 100
		color.New(color.FgGreen).Fprintf(o.out, "Total saved: ~%d tokens (%.1f%% of project)\n", s.TokensSaved, pct)
	} else {
		fmt.Fprintf(o.out, "Total saved: %d tokens\n", s.TokensSaved)
	}
}
