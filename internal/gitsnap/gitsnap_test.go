// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package gitsnap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a repository with one human-authored commit.
func initRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	writeFile(t, dir, "main.go", "package main\n")
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("main.go")
	require.NoError(t, err)
	_, err = wt.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir, repo
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func headMessage(t *testing.T, repo *gogit.Repository) string {
	t.Helper()
	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	return commit.Message
}

func TestOpen_NonRepoReturnsErrNoRepo(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrNoRepo)
}

func TestIsDirty(t *testing.T) {
	dir, _ := initRepo(t)
	r, err := Open(dir)
	require.NoError(t, err)

	dirty, err := r.IsDirty()
	require.NoError(t, err)
	assert.False(t, dirty)

	writeFile(t, dir, "extra.go", "package main\n")
	dirty, err = r.IsDirty()
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestSnapshot(t *testing.T) {
	dir, repo := initRepo(t)
	r, err := Open(dir)
	require.NoError(t, err)

	t.Run("clean tree commits nothing", func(t *testing.T) {
		made, err := r.Snapshot()
		require.NoError(t, err)
		assert.False(t, made)
		assert.Equal(t, "initial commit", headMessage(t, repo))
	})

	t.Run("dirty tree gets a snapshot commit", func(t *testing.T) {
		writeFile(t, dir, "wip.go", "package main\n")

		made, err := r.Snapshot()
		require.NoError(t, err)
		assert.True(t, made)
		assert.Equal(t, snapshotMsg, headMessage(t, repo))

		dirty, err := r.IsDirty()
		require.NoError(t, err)
		assert.False(t, dirty, "snapshot must leave the tree clean")
	})
}

func TestCommitApplied(t *testing.T) {
	dir, repo := initRepo(t)
	r, err := Open(dir)
	require.NoError(t, err)

	t.Run("no applied files commits nothing", func(t *testing.T) {
		require.NoError(t, r.CommitApplied(nil, 0))
		assert.Equal(t, "initial commit", headMessage(t, repo))
	})

	t.Run("stages only the applied files", func(t *testing.T) {
		writeFile(t, dir, "main.go", "package main\n\nfunc main() {}\n")
		writeFile(t, dir, "untouched.go", "package main\n")

		require.NoError(t, r.CommitApplied([]string{"main.go"}, 42))

		msg := headMessage(t, repo)
		assert.Contains(t, msg, "rewrite 1 file(s)")
		assert.Contains(t, msg, "~42 tokens")
		assert.Contains(t, msg, "- main.go")
		assert.Contains(t, msg, toolTrailer)

		dirty, err := r.IsDirty()
		require.NoError(t, err)
		assert.True(t, dirty, "the untouched file must stay uncommitted")
	})
}

func TestUndo(t *testing.T) {
	t.Run("refuses human commits", func(t *testing.T) {
		dir, _ := initRepo(t)
		r, err := Open(dir)
		require.NoError(t, err)

		assert.ErrorIs(t, r.Undo(), ErrNotToolCommit)
	})

	t.Run("soft-resets a tool commit", func(t *testing.T) {
		dir, repo := initRepo(t)
		r, err := Open(dir)
		require.NoError(t, err)

		writeFile(t, dir, "main.go", "package main\n\nfunc main() {}\n")
		require.NoError(t, r.CommitApplied([]string{"main.go"}, 10))

		require.NoError(t, r.Undo())

		assert.Equal(t, "initial commit", headMessage(t, repo))

		// The rewrite survives in the working tree.
		content, err := os.ReadFile(filepath.Join(dir, "main.go"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "func main()")
	})
}

func TestIsToolCommit(t *testing.T) {
	dir, _ := initRepo(t)
	r, err := Open(dir)
	require.NoError(t, err)

	isTool, err := r.IsToolCommit()
	require.NoError(t, err)
	assert.False(t, isTool)

	writeFile(t, dir, "wip.go", "package main\n")
	_, err = r.Snapshot()
	require.NoError(t, err)

	isTool, err = r.IsToolCommit()
	require.NoError(t, err)
	assert.True(t, isTool, "snapshot commits count as tool commits")
}
