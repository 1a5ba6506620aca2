// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package rewrite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/petar-djukic/go-syntax/internal/oracle"
	"github.com/petar-djukic/go-syntax/internal/tokens"
	"github.com/petar-djukic/go-syntax/internal/validate"
)

// State is a session's position in the rewrite lifecycle. Transitions only
// follow the edges below; Applied and Committed stay distinct so the
// validation-gated and ungated paths remain distinguishable.
//
//	Pending -> Proposed -> {Applied, Rejected, Skipped}
//	Applied -> Validating -> {Committed, RolledBack}
type State int

const (
	StatePending State = iota
	StateProposed
	StateApplied
	StateRejected
	StateSkipped
	StateValidating
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateProposed:
		return "proposed"
	case StateApplied:
		return "applied"
	case StateRejected:
		return "rejected"
	case StateSkipped:
		return "skipped"
	case StateValidating:
		return "validating"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session is done in this state.
func (s State) Terminal() bool {
	switch s {
	case StateApplied, StateRejected, StateSkipped, StateCommitted, StateRolledBack:
		return true
	default:
		return false
	}
}

// Outcome is the single artifact a session returns. TokensSaved is nonzero
// only for Applied and Committed; rolled-back and rejected sessions leave the
// file's net token count unchanged.
type Outcome struct {
	Path        string
	State       State
	Reason      string // Why the session skipped or rejected
	Diagnostic  string // Validator output, verbatim, for RolledBack
	TokensSaved int
}

// Decision is an interactive reviewer's answer. ShowDiff is never terminal:
// the session renders the diff and asks again.
type Decision int

const (
	Accept Decision = iota
	Reject
	ShowDiff
)

// Confirmer collects an accept/reject decision for a proposed change.
type Confirmer interface {
	Confirm(cs *ChangeSet) (Decision, error)
}

// Validator runs the project-level gate against the current working tree.
type Validator interface {
	Validate(ctx context.Context) error
}

// WriteError is a fatal apply or rollback I/O failure. After one of these the
// named file may be in an unknown state, so the whole batch must stop.
type WriteError struct {
	Path string
	Op   string // "apply" or "rollback"
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v (file may be in an unknown state)", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Config configures one session.
type Config struct {
	Path       string
	Model      string
	AutoAccept bool // Accept any successful proposal without prompting
	Validate   bool // Run the project gate after applying
}

// Session carries one file through the rewrite lifecycle. A session is
// single-use: construct, Run once, discard.
type Session struct {
	cfg       Config
	scanner   *tokens.Scanner
	oracle    oracle.Oracle
	validator Validator
	confirmer Confirmer
	out       io.Writer

	state State
}

// NewSession wires a session. validator may be nil when cfg.Validate is
// false; confirmer may be nil when cfg.AutoAccept is true; out may be nil to
// discard progress output.
func NewSession(cfg Config, scanner *tokens.Scanner, orc oracle.Oracle, validator Validator, confirmer Confirmer, out io.Writer) *Session {
	if out == nil {
		out = io.Discard
	}
	return &Session{
		cfg:       cfg,
		scanner:   scanner,
		oracle:    orc,
		validator: validator,
		confirmer: confirmer,
		out:       out,
		state:     StatePending,
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State { return s.state }

// Run executes the session. The returned error is non-nil only for a fatal
// apply/rollback I/O failure; every recoverable condition is an Outcome.
// The file is read once up front and never re-read, so an external mutation
// mid-session is invisible until the next batch.
func (s *Session) Run(ctx context.Context) (*Outcome, error) {
	original, mode, err := s.readOriginal()
	if err != nil {
		return s.finish(StateSkipped, fmt.Sprintf("reading file: %v", err), "", 0), nil
	}

	res, err := s.oracle.Propose(ctx, original, s.cfg.Model)
	if err != nil {
		return s.finish(StateSkipped, err.Error(), "", 0), nil
	}
	s.state = StateProposed

	cs := &ChangeSet{
		Path:         s.cfg.Path,
		Original:     original,
		Proposed:     res.Proposed,
		Descriptions: res.Descriptions,
		Before:       s.scanner.Measure(original),
		After:        s.scanner.Measure(res.Proposed),
	}

	// An identical proposal is rejected before any prompt, write, or
	// validator run.
	if cs.Identical() {
		return s.finish(StateRejected, "no change", "", 0), nil
	}

	accepted, err := s.decide(cs)
	if err != nil {
		return s.finish(StateSkipped, fmt.Sprintf("reading decision: %v", err), "", 0), nil
	}
	if !accepted {
		return s.finish(StateRejected, "declined by reviewer", "", 0), nil
	}

	if err := atomicWrite(s.cfg.Path, cs.Proposed, mode); err != nil {
		return nil, &WriteError{Path: s.cfg.Path, Op: "apply", Err: err}
	}
	s.state = StateApplied

	if !s.cfg.Validate {
		return s.finish(StateApplied, "", "", cs.Saved()), nil
	}

	// Validation runs synchronously, immediately after the write, to keep
	// the applied-but-unvalidated window as small as possible. An interrupt
	// inside this window leaves the file applied; the batch-level git
	// snapshot is the recovery path.
	s.state = StateValidating
	if verr := s.validator.Validate(ctx); verr != nil {
		if rerr := atomicWrite(s.cfg.Path, cs.Original, mode); rerr != nil {
			return nil, &WriteError{Path: s.cfg.Path, Op: "rollback", Err: rerr}
		}
		return s.finish(StateRolledBack, verr.Error(), diagnosticOf(verr), 0), nil
	}

	return s.finish(StateCommitted, "", "", cs.Saved()), nil
}

// readOriginal reads and freezes the file content plus its mode, so apply and
// rollback preserve permissions.
func (s *Session) readOriginal() ([]byte, os.FileMode, error) {
	info, err := os.Stat(s.cfg.Path)
	if err != nil {
		return nil, 0, err
	}
	content, err := os.ReadFile(s.cfg.Path)
	if err != nil {
		return nil, 0, err
	}
	return content, info.Mode().Perm(), nil
}

// decide collects the acceptance decision, re-prompting after each ShowDiff.
func (s *Session) decide(cs *ChangeSet) (bool, error) {
	if s.cfg.AutoAccept {
		return true, nil
	}

	for {
		decision, err := s.confirmer.Confirm(cs)
		if err != nil {
			return false, err
		}
		switch decision {
		case Accept:
			return true, nil
		case Reject:
			return false, nil
		case ShowDiff:
			diff, derr := cs.UnifiedDiff()
			if derr != nil {
				diff = derr.Error()
			}
			fmt.Fprintln(s.out, diff)
		}
	}
}

func (s *Session) finish(state State, reason, diagnostic string, saved int) *Outcome {
	s.state = state
	return &Outcome{
		Path:        s.cfg.Path,
		State:       state,
		Reason:      reason,
		Diagnostic:  diagnostic,
		TokensSaved: saved,
	}
}

// diagnosticOf extracts the raw gate output when the validator error carries
// one, falling back to the error text.
func diagnosticOf(err error) string {
	var failure *validate.Failure
	if errors.As(err, &failure) && failure.Diagnostic != "" {
		return failure.Diagnostic
	}
	return err.Error()
}

// atomicWrite replaces path's content without exposing a partially-written
// file: the new content lands in a temp file in the same directory, then
// renames into place.
func atomicWrite(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".go-syntax-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
