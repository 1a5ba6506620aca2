// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tokens measures the token footprint of Go source files under the
// o200k_base vocabulary and ranks files by token weight.
package tokens

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "o200k_base"

// Metrics holds the measured size of one piece of content. Values are derived
// from content on demand and never cached across a mutation.
type Metrics struct {
	Lines  int // Number of lines
	Tokens int // Token count under o200k_base
}

// FileStat is the per-file measurement produced by a project scan.
type FileStat struct {
	Path    string  // Path relative to the scan root
	Metrics Metrics // Lines and tokens
	Ratio   float64 // Tokens per line (0 for empty files)
}

// ProjectStats aggregates a scan over all Go files in a project.
type ProjectStats struct {
	Files        []FileStat
	TotalLines   int
	TotalTokens  int
	CodeLines    int
	CommentLines int
	BlankLines   int
}

// Ratio returns tokens per line, guarding against division by zero.
func Ratio(tokens, lines int) float64 {
	if lines == 0 {
		return 0
	}
	return float64(tokens) / float64(lines)
}

// Scanner measures content against a fixed tokenizer vocabulary. A Scanner is
// immutable after construction and safe for concurrent use.
type Scanner struct {
	enc *tiktoken.Tiktoken
}

// NewScanner loads the o200k_base encoding.
func NewScanner() (*Scanner, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("loading %s encoding: %w", encodingName, err)
	}
	return &Scanner{enc: enc}, nil
}

// Measure computes Metrics for content. It is pure and total: any byte
// sequence measures without error, and identical content always yields
// identical Metrics.
func (s *Scanner) Measure(content []byte) Metrics {
	if len(content) == 0 {
		return Metrics{}
	}
	return Metrics{
		Lines:  countLines(content),
		Tokens: len(s.enc.Encode(string(content), nil, nil)),
	}
}

// ScanProject walks root for .go files and measures each one. Directories the
// tool never rewrites (.git, vendor, node_modules, testdata) are skipped.
func (s *Scanner) ScanProject(root string) (*ProjectStats, error) {
	stats := &ProjectStats{}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			base := filepath.Base(path)
			if base == ".git" || base == "vendor" || base == "node_modules" || base == "testdata" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			relPath = path
		}

		m := s.Measure(content)
		stats.Files = append(stats.Files, FileStat{
			Path:    relPath,
			Metrics: m,
			Ratio:   Ratio(m.Tokens, m.Lines),
		})
		stats.TotalLines += m.Lines
		stats.TotalTokens += m.Tokens

		code, comment, blank := classifyLines(string(content))
		stats.CodeLines += code
		stats.CommentLines += comment
		stats.BlankLines += blank
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(stats.Files, func(i, j int) bool {
		return stats.Files[i].Path < stats.Files[j].Path
	})
	return stats, nil
}

// countLines counts newline-terminated lines plus a trailing partial line.
func countLines(content []byte) int {
	n := 0
	for _, b := range content {
		if b == '\n' {
			n++
		}
	}
	if len(content) > 0 && content[len(content)-1] != '\n' {
		n++
	}
	return n
}

// classifyLines splits content into code, comment, and blank line counts.
// A line inside a /* */ block counts as a comment even when the block opened
// on an earlier line. Lines mixing code and a trailing comment count as code.
func classifyLines(content string) (code, comment, blank int) {
	inBlock := false
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case inBlock:
			comment++
			if strings.Contains(trimmed, "*/") {
				inBlock = false
			}
		case trimmed == "":
			blank++
		case strings.HasPrefix(trimmed, "//"):
			comment++
		case strings.HasPrefix(trimmed, "/*"):
			comment++
			if !strings.Contains(trimmed[2:], "*/") {
				inBlock = true
			}
		default:
			code++
			// A block comment can open mid-line after code; anything past a
			// line comment marker never opens one.
			rest := trimmed
			if i := strings.Index(rest, "//"); i >= 0 {
				rest = rest[:i]
			}
			if i := strings.LastIndex(rest, "/*"); i >= 0 && !strings.Contains(rest[i+2:], "*/") {
				inBlock = true
			}
		}
	}
	return code, comment, blank
}
