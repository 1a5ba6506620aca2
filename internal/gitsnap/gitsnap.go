// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package gitsnap gives batch rewrites a recovery point: a snapshot commit of
// the dirty tree before the first session, an auto-commit of applied files
// after the batch, and undo of the last tool commit.
package gitsnap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	authorName  = "go-syntax"
	authorEmail = "noreply@go-syntax"
	toolTrailer = "Generated-by: go-syntax"
	snapshotMsg = "go-syntax: snapshot before batch rewrite"
)

// ErrNoRepo is returned when the working directory is not a git repository.
var ErrNoRepo = errors.New("not a git repository")

// ErrNotToolCommit is returned when undo targets a commit go-syntax did not make.
var ErrNotToolCommit = errors.New("not a go-syntax commit")

// Repo wraps a go-git repository for the operations the batch needs.
type Repo struct {
	repo *gogit.Repository
}

// Open opens the repository at workDir. Returns ErrNoRepo when the directory
// is not under git, which callers treat as "run without snapshots".
func Open(workDir string) (*Repo, error) {
	r, err := gogit.PlainOpen(workDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoRepo, err)
	}
	return &Repo{repo: r}, nil
}

// IsDirty reports whether the working tree has uncommitted changes, staged or
// unstaged.
func (r *Repo) IsDirty() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("getting status: %w", err)
	}

	return !status.IsClean(), nil
}

// Snapshot commits all uncommitted changes as a pre-batch recovery point.
// Returns whether a commit was made; a clean tree needs none.
func (r *Repo) Snapshot() (bool, error) {
	dirty, err := r.IsDirty()
	if err != nil {
		return false, err
	}
	if !dirty {
		return false, nil
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	if _, err := wt.Add("."); err != nil {
		return false, fmt.Errorf("staging dirty files: %w", err)
	}

	if _, err := wt.Commit(snapshotMsg, commitOptions()); err != nil {
		return false, fmt.Errorf("committing snapshot: %w", err)
	}
	return true, nil
}

// CommitApplied stages only the files the batch applied and commits them with
// the batch summary and the tool trailer. A batch that applied nothing
// commits nothing.
func (r *Repo) CommitApplied(appliedFiles []string, tokensSaved int) error {
	if len(appliedFiles) == 0 {
		return nil
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	for _, f := range appliedFiles {
		if _, err := wt.Add(f); err != nil {
			return fmt.Errorf("staging %s: %w", f, err)
		}
	}

	if _, err := wt.Commit(buildMessage(appliedFiles, tokensSaved), commitOptions()); err != nil {
		return fmt.Errorf("committing applied rewrites: %w", err)
	}
	return nil
}

// IsToolCommit checks whether HEAD was made by go-syntax, identified by the
// trailer.
func (r *Repo) IsToolCommit() (bool, error) {
	head, err := r.repo.Head()
	if err != nil {
		return false, fmt.Errorf("getting HEAD: %w", err)
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return false, fmt.Errorf("getting commit: %w", err)
	}

	return strings.Contains(commit.Message, toolTrailer) ||
		strings.HasPrefix(commit.Message, snapshotMsg), nil
}

// Undo soft-resets the last commit if go-syntax made it, keeping the changes
// staged in the working tree so nothing is lost.
func (r *Repo) Undo() error {
	isTool, err := r.IsToolCommit()
	if err != nil {
		return err
	}
	if !isTool {
		return ErrNotToolCommit
	}

	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("getting HEAD: %w", err)
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("getting commit: %w", err)
	}

	if commit.NumParents() == 0 {
		return fmt.Errorf("cannot undo: HEAD is the initial commit")
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return fmt.Errorf("getting parent commit: %w", err)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	if err := wt.Reset(&gogit.ResetOptions{
		Commit: parent.Hash,
		Mode:   gogit.SoftReset,
	}); err != nil {
		return fmt.Errorf("resetting to parent: %w", err)
	}
	return nil
}

// buildMessage creates the auto-commit message for a finished batch.
func buildMessage(appliedFiles []string, tokensSaved int) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "refactor: rewrite %d file(s) for token efficiency\n\n", len(appliedFiles))
	fmt.Fprintf(&buf, "Saves ~%d tokens (o200k_base).\n\nRewritten files:\n", tokensSaved)
	for _, f := range appliedFiles {
		fmt.Fprintf(&buf, "- %s\n", f)
	}
	buf.WriteString("\n" + toolTrailer)
	return buf.String()
}

func commitOptions() *gogit.CommitOptions {
	return &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	}
}
