// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package rewrite drives a single file through the propose, review, apply,
// validate, rollback lifecycle.
package rewrite

import (
	"bytes"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/petar-djukic/go-syntax/internal/tokens"
)

// ChangeSet pairs a file's original content with one proposed replacement.
// It is owned exclusively by the session that created it until the session
// reaches a terminal state, then discarded.
type ChangeSet struct {
	Path         string
	Original     []byte
	Proposed     []byte
	Descriptions []string
	Before       tokens.Metrics // Measured from Original
	After        tokens.Metrics // Always measured from Proposed, never estimated
}

// Saved returns the token delta of accepting the proposal. Negative when the
// proposal is larger than the original.
func (c *ChangeSet) Saved() int {
	return c.Before.Tokens - c.After.Tokens
}

// Identical reports whether the proposal is byte-for-byte the original.
func (c *ChangeSet) Identical() bool {
	return bytes.Equal(c.Original, c.Proposed)
}

// UnifiedDiff renders the proposal as a unified diff with three context lines.
func (c *ChangeSet) UnifiedDiff() (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(c.Original)),
		B:        difflib.SplitLines(string(c.Proposed)),
		FromFile: c.Path,
		ToFile:   c.Path,
		Context:  3,
		Eol:      "\n",
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("rendering diff for %s: %w", c.Path, err)
	}
	return text, nil
}
