// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package validate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CleanModulePasses(t *testing.T) {
	dir := setupGoModule(t, map[string]string{
		"main.go": "package main\n\nfunc main() {}\n",
	})

	err := NewRunner(Config{WorkDir: dir}).Validate(context.Background())
	assert.NoError(t, err)
}

func TestValidate_BuildFailureCarriesDiagnostic(t *testing.T) {
	dir := setupGoModule(t, map[string]string{
		"main.go": "package main\n\nfunc main() {\n\tx :=\n}\n",
	})

	err := NewRunner(Config{WorkDir: dir}).Validate(context.Background())
	require.Error(t, err)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "go build", failure.Step)
	assert.NotEmpty(t, failure.Diagnostic)
	assert.Contains(t, failure.Error(), "go build")
}

func TestValidate_VetFailureDetected(t *testing.T) {
	dir := setupGoModule(t, map[string]string{
		"main.go": "package main\n\nimport \"fmt\"\n\nfunc main() {\n\treturn\n\tfmt.Println(\"unreachable\")\n}\n",
	})

	err := NewRunner(Config{WorkDir: dir}).Validate(context.Background())
	require.Error(t, err)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "go vet", failure.Step)
	assert.Contains(t, failure.Diagnostic, "unreachable")
}

func TestValidate_TestFailureDetected(t *testing.T) {
	dir := setupGoModule(t, map[string]string{
		"main.go":     "package main\n\nfunc main() {}\n",
		"math.go":     "package main\n\nfunc Add(a, b int) int { return a - b }\n",
		"math_test.go": "package main\n\nimport \"testing\"\n\nfunc TestAdd(t *testing.T) {\n\tif Add(2, 3) != 5 {\n\t\tt.Fatal(\"expected 5\")\n\t}\n}\n",
	})

	err := NewRunner(Config{WorkDir: dir, TestCmd: "go test ./..."}).Validate(context.Background())
	require.Error(t, err)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "go test ./...", failure.Step)
	assert.Contains(t, failure.Diagnostic, "FAIL")
}

func TestValidate_TestsSkippedWhenNoCommand(t *testing.T) {
	dir := setupGoModule(t, map[string]string{
		"main.go":      "package main\n\nfunc main() {}\n",
		"math.go":      "package main\n\nfunc Add(a, b int) int { return a - b }\n",
		"math_test.go": "package main\n\nimport \"testing\"\n\nfunc TestAdd(t *testing.T) {\n\tif Add(2, 3) != 5 {\n\t\tt.Fatal(\"expected 5\")\n\t}\n}\n",
	})

	// The failing test is invisible without a test command.
	err := NewRunner(Config{WorkDir: dir}).Validate(context.Background())
	assert.NoError(t, err)
}

func TestValidate_CancelledContextFails(t *testing.T) {
	dir := setupGoModule(t, map[string]string{
		"main.go": "package main\n\nfunc main() {}\n",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRunner(Config{WorkDir: dir}).Validate(ctx)
	var failure *Failure
	assert.True(t, errors.As(err, &failure), "cancellation surfaces as an ordinary failure")
}

func TestFirstErrorLine(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name:   "compiler error preferred over package header",
			output: "# testmod\n./main.go:4:5: expected operand, found '}'\n",
			want:   "./main.go:4:5: expected operand, found '}'",
		},
		{
			name:   "fallback to first non-header line",
			output: "# testmod\nsome toolchain noise\n",
			want:   "some toolchain noise",
		},
		{
			name:   "empty output",
			output: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstErrorLine(tt.output))
		})
	}
}

// setupGoModule creates a temporary Go module with the given files.
func setupGoModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	goMod := "module testmod\n\ngo 1.25\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte(goMod), 0o644))

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return dir
}
