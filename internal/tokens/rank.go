// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package tokens

import "sort"

// RankedFile is one entry in a token-weight ranking. WeightFraction is this
// file's share of the total token count across the full ranked set, so the
// fractions sum to 1 even when a caller only consumes a prefix.
type RankedFile struct {
	Path           string
	Metrics        Metrics
	WeightFraction float64
}

// Rank orders the scanned files by token count descending, ties broken by
// path ascending for determinism. An empty scan yields an empty ranking.
// Rank has no side effects and never mutates stats.
func Rank(stats *ProjectStats) []RankedFile {
	if stats == nil || len(stats.Files) == 0 {
		return nil
	}

	ranked := make([]RankedFile, 0, len(stats.Files))
	for _, f := range stats.Files {
		var frac float64
		if stats.TotalTokens > 0 {
			frac = float64(f.Metrics.Tokens) / float64(stats.TotalTokens)
		}
		ranked = append(ranked, RankedFile{
			Path:           f.Path,
			Metrics:        f.Metrics,
			WeightFraction: frac,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Metrics.Tokens != ranked[j].Metrics.Tokens {
			return ranked[i].Metrics.Tokens > ranked[j].Metrics.Tokens
		}
		return ranked[i].Path < ranked[j].Path
	})
	return ranked
}

// Grade buckets a tokens-per-line ratio into an efficiency grade. The color is
// a shields.io badge color name.
func Grade(ratio float64) (letter, color, blurb string) {
	switch {
	case ratio < 6:
		return "A+", "brightgreen", "Excellent — extremely token-efficient"
	case ratio < 8:
		return "A", "green", "Great — lean and concise code"
	case ratio < 10:
		return "B", "yellowgreen", "Good — some room for improvement"
	case ratio < 12:
		return "C", "yellow", "Fair — consider running `go-syntax fix`"
	default:
		return "D", "red", "Verbose — run `go-syntax batch` to reduce tokens"
	}
}
