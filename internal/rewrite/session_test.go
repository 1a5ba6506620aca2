// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package rewrite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-syntax/internal/oracle"
	"github.com/petar-djukic/go-syntax/internal/tokens"
	"github.com/petar-djukic/go-syntax/internal/validate"
)

const originalSource = `package sample

func Greet(name string) string {
	var result string
	result = "hello " + name
	return result
}
`

const shorterSource = `package sample

func Greet(name string) string { return "hello " + name }
`

// mockOracle returns a scripted proposal or error.
type mockOracle struct {
	result *oracle.Result
	err    error
	calls  int
}

func (m *mockOracle) Propose(ctx context.Context, content []byte, model string) (*oracle.Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockValidator counts calls and returns a scripted error.
type mockValidator struct {
	err   error
	calls int
}

func (m *mockValidator) Validate(ctx context.Context) error {
	m.calls++
	return m.err
}

// scriptConfirmer replays a fixed decision sequence.
type scriptConfirmer struct {
	decisions []Decision
	calls     int
}

func (s *scriptConfirmer) Confirm(cs *ChangeSet) (Decision, error) {
	d := s.decisions[s.calls]
	s.calls++
	return d, nil
}

func newTestScanner(t *testing.T) *tokens.Scanner {
	t.Helper()
	s, err := tokens.NewScanner()
	require.NoError(t, err)
	return s
}

func writeTarget(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.go")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readTarget(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestSession_IdenticalProposalRejectedWithoutWriteOrValidator(t *testing.T) {
	path := writeTarget(t, originalSource)
	orc := &mockOracle{result: &oracle.Result{Proposed: []byte(originalSource)}}
	validator := &mockValidator{}

	session := NewSession(
		Config{Path: path, Model: "m", AutoAccept: true, Validate: true},
		newTestScanner(t), orc, validator, nil, nil,
	)

	outcome, err := session.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateRejected, outcome.State)
	assert.Equal(t, "no change", outcome.Reason)
	assert.Zero(t, outcome.TokensSaved)
	assert.Equal(t, 0, validator.calls, "identical proposal must not trigger the validator")
	assert.Equal(t, originalSource, readTarget(t, path))
}

func TestSession_AppliedWithoutValidation(t *testing.T) {
	path := writeTarget(t, originalSource)
	orc := &mockOracle{result: &oracle.Result{
		Proposed:     []byte(shorterSource),
		Descriptions: []string{"inlined result variable"},
	}}

	session := NewSession(
		Config{Path: path, Model: "m", AutoAccept: true},
		newTestScanner(t), orc, nil, nil, nil,
	)

	outcome, err := session.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateApplied, outcome.State)
	assert.Greater(t, outcome.TokensSaved, 0)
	assert.Equal(t, shorterSource, readTarget(t, path))
}

func TestSession_ValidationPassCommits(t *testing.T) {
	path := writeTarget(t, originalSource)
	orc := &mockOracle{result: &oracle.Result{Proposed: []byte(shorterSource)}}
	validator := &mockValidator{}

	session := NewSession(
		Config{Path: path, Model: "m", AutoAccept: true, Validate: true},
		newTestScanner(t), orc, validator, nil, nil,
	)

	outcome, err := session.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, outcome.State)
	assert.Greater(t, outcome.TokensSaved, 0)
	assert.Equal(t, 1, validator.calls)
	assert.Equal(t, shorterSource, readTarget(t, path))
}

func TestSession_ValidationFailureRollsBackByteExact(t *testing.T) {
	path := writeTarget(t, originalSource)
	orc := &mockOracle{result: &oracle.Result{Proposed: []byte(shorterSource)}}
	validator := &mockValidator{err: &validate.Failure{
		Step:       "go build",
		Diagnostic: "./sample.go:3:1: undefined: result",
	}}

	session := NewSession(
		Config{Path: path, Model: "m", AutoAccept: true, Validate: true},
		newTestScanner(t), orc, validator, nil, nil,
	)

	outcome, err := session.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateRolledBack, outcome.State)
	assert.Equal(t, "./sample.go:3:1: undefined: result", outcome.Diagnostic)
	assert.Zero(t, outcome.TokensSaved, "a rolled-back session saves nothing")
	assert.Equal(t, originalSource, readTarget(t, path), "rollback must restore the original byte-for-byte")
}

func TestSession_OracleFailureSkips(t *testing.T) {
	for _, oracleErr := range []error{
		fmt.Errorf("%w: no response after 2m0s", oracle.ErrTimeout),
		fmt.Errorf("%w: connection refused", oracle.ErrUnreachable),
		fmt.Errorf("%w: empty response", oracle.ErrMalformed),
	} {
		path := writeTarget(t, originalSource)
		orc := &mockOracle{err: oracleErr}

		session := NewSession(
			Config{Path: path, Model: "m", AutoAccept: true},
			newTestScanner(t), orc, nil, nil, nil,
		)

		outcome, err := session.Run(context.Background())
		require.NoError(t, err, "oracle failures are recoverable, never fatal")

		assert.Equal(t, StateSkipped, outcome.State)
		assert.NotEmpty(t, outcome.Reason)
		assert.Equal(t, 1, orc.calls, "a session never retries the oracle")
		assert.Equal(t, originalSource, readTarget(t, path), "skipped session must not write")
	}
}

func TestSession_ReviewerRejectionWritesNothing(t *testing.T) {
	path := writeTarget(t, originalSource)
	orc := &mockOracle{result: &oracle.Result{Proposed: []byte(shorterSource)}}
	confirmer := &scriptConfirmer{decisions: []Decision{Reject}}

	session := NewSession(
		Config{Path: path, Model: "m"},
		newTestScanner(t), orc, nil, confirmer, nil,
	)

	outcome, err := session.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateRejected, outcome.State)
	assert.Equal(t, originalSource, readTarget(t, path))
}

func TestSession_ShowDiffRepromptsThenAccepts(t *testing.T) {
	path := writeTarget(t, originalSource)
	orc := &mockOracle{result: &oracle.Result{Proposed: []byte(shorterSource)}}
	confirmer := &scriptConfirmer{decisions: []Decision{ShowDiff, Accept}}
	var out bytes.Buffer

	session := NewSession(
		Config{Path: path, Model: "m"},
		newTestScanner(t), orc, nil, confirmer, &out,
	)

	outcome, err := session.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateApplied, outcome.State)
	assert.Equal(t, 2, confirmer.calls, "diff request must re-prompt")
	assert.Contains(t, out.String(), "-\tvar result string")
	assert.Equal(t, shorterSource, readTarget(t, path))
}

func TestSession_MissingFileSkips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.go")
	orc := &mockOracle{result: &oracle.Result{Proposed: []byte(shorterSource)}}

	session := NewSession(
		Config{Path: path, Model: "m", AutoAccept: true},
		newTestScanner(t), orc, nil, nil, nil,
	)

	outcome, err := session.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateSkipped, outcome.State)
	assert.Equal(t, 0, orc.calls, "no proposal for an unreadable file")
}

func TestSession_ApplyPreservesFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.go")
	require.NoError(t, os.WriteFile(path, []byte(originalSource), 0o600))
	orc := &mockOracle{result: &oracle.Result{Proposed: []byte(shorterSource)}}

	session := NewSession(
		Config{Path: path, Model: "m", AutoAccept: true},
		newTestScanner(t), orc, nil, nil, nil,
	)

	_, err := session.Run(context.Background())
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSession_RollbackFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { os.Chmod(dir, 0o755) })
	path := filepath.Join(dir, "sample.go")
	require.NoError(t, os.WriteFile(path, []byte(originalSource), 0o644))

	orc := &mockOracle{result: &oracle.Result{Proposed: []byte(shorterSource)}}
	validator := &blockingValidator{dir: dir}

	session := NewSession(
		Config{Path: path, Model: "m", AutoAccept: true, Validate: true},
		newTestScanner(t), orc, validator, nil, nil,
	)

	outcome, err := session.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, outcome)

	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, "rollback", writeErr.Op)
	assert.Equal(t, path, writeErr.Path)
}

// blockingValidator fails validation after making the target directory
// read-only, so the rollback write cannot create its temp file.
type blockingValidator struct {
	dir string
}

func (b *blockingValidator) Validate(ctx context.Context) error {
	if err := os.Chmod(b.dir, 0o500); err != nil {
		return nil
	}
	return &validate.Failure{Step: "go build", Diagnostic: "boom"}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "rolled back", StateRolledBack.String())
	assert.Equal(t, "applied", StateApplied.String())
	assert.True(t, StateCommitted.Terminal())
	assert.False(t, StateValidating.Terminal())
}

func TestConsoleConfirmer(t *testing.T) {
	cs := &ChangeSet{
		Path:     "sample.go",
		Original: []byte(originalSource),
		Proposed: []byte(shorterSource),
		Before:   tokens.Metrics{Lines: 7, Tokens: 40},
		After:    tokens.Metrics{Lines: 3, Tokens: 25},
	}

	t.Run("diff then accept", func(t *testing.T) {
		var out bytes.Buffer
		c := NewConsoleConfirmer(strings.NewReader("d\ny\n"), &out)

		first, err := c.Confirm(cs)
		require.NoError(t, err)
		assert.Equal(t, ShowDiff, first)

		second, err := c.Confirm(cs)
		require.NoError(t, err)
		assert.Equal(t, Accept, second)

		assert.Contains(t, out.String(), "Tokens: 40 → 25")
	})

	t.Run("unknown input rejects", func(t *testing.T) {
		var out bytes.Buffer
		c := NewConsoleConfirmer(strings.NewReader("maybe\n"), &out)

		decision, err := c.Confirm(cs)
		require.NoError(t, err)
		assert.Equal(t, Reject, decision)
	})
}
