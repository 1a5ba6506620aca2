// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "go fence",
			input: "```go\npackage main\n```",
			want:  "package main",
		},
		{
			name:  "golang fence",
			input: "```golang\npackage main\n```",
			want:  "package main",
		},
		{
			name:  "bare fence",
			input: "```\npackage main\n```",
			want:  "package main",
		},
		{
			name:  "no fence passes through trimmed",
			input: "  package main\n",
			want:  "package main",
		},
		{
			name:  "fences inside content preserved",
			input: "```go\nconst doc = \"```\"\n```",
			want:  "const doc = \"```\"",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.input))
		})
	}
}

func TestNormalizeGo_FormatsValidSource(t *testing.T) {
	messy := "package main\nimport \"fmt\"\nfunc main(){fmt.Println( \"x\" )}"

	normalized, err := NormalizeGo(messy)
	require.NoError(t, err)

	assert.Contains(t, string(normalized), "func main() {")
	assert.Contains(t, string(normalized), "fmt.Println(\"x\")")
}

func TestNormalizeGo_RejectsInvalidSource(t *testing.T) {
	_, err := NormalizeGo("package main\n\nfunc broken( {")
	assert.Error(t, err)
}

func TestNormalizeGo_Idempotent(t *testing.T) {
	src := "package main\n\nfunc main() {}\n"

	once, err := NormalizeGo(src)
	require.NoError(t, err)
	twice, err := NormalizeGo(string(once))
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}
