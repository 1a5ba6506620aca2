// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package oracle

import (
	"strings"

	"golang.org/x/tools/imports"
)

// StripFences removes a wrapping markdown code fence from a model response.
// Models add them despite instructions; content without fences passes through
// trimmed.
func StripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	for _, prefix := range []string{"```go", "```golang", "```"} {
		if rest, ok := strings.CutPrefix(trimmed, prefix); ok {
			trimmed = rest
			break
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// NormalizeGo runs the proposal through goimports so that formatting noise
// never shows up in diffs or token deltas. The filename only steers import
// resolution; nothing is written to disk. A parse failure means the proposal
// is not valid Go.
func NormalizeGo(content string) ([]byte, error) {
	normalized, err := imports.Process("proposal.go", []byte(content), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
		Fragment:  false,
	})
	if err != nil {
		return nil, err
	}
	return normalized, nil
}
