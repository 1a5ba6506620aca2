// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-syntax/internal/tokens"
)

const badgeLink = "https://github.com/petar-djukic/go-syntax"

// newAuditCmd creates the "audit" command.
func newAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Report per-file token counts and the efficiency grade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := scanWorkDir()
			if err != nil {
				return err
			}

			fmt.Printf("%-60s %6s %8s %6s\n", "File", "Lines", "Tokens", "T/L")
			fmt.Println(strings.Repeat("-", 83))
			for _, f := range stats.Files {
				fmt.Printf("%-60s %6d %8d %5.1f\n", f.Path, f.Metrics.Lines, f.Metrics.Tokens, f.Ratio)
			}

			avgRatio := tokens.Ratio(stats.TotalTokens, stats.TotalLines)
			fmt.Println(strings.Repeat("-", 83))
			fmt.Printf("%-60s %6d %8d %5.1f\n", "Total", stats.TotalLines, stats.TotalTokens, avgRatio)

			fmt.Printf("\nCode: %d | Comments: %d | Blanks: %d\n",
				stats.CodeLines, stats.CommentLines, stats.BlankLines)

			letter, _, blurb := tokens.Grade(avgRatio)
			fmt.Printf("\nToken efficiency: %s (%.1f tokens/line)\n%s\n", letter, avgRatio, blurb)
			return nil
		},
	}
}

// newTopCmd creates the "top" command.
func newTopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "top [n]",
		Short: "List the most token-heavy files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 10
			if len(args) == 1 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil || parsed < 1 {
					return fmt.Errorf("invalid count %q", args[0])
				}
				n = parsed
			}

			stats, err := scanWorkDir()
			if err != nil {
				return err
			}
			ranked := tokens.Rank(stats)
			if n > len(ranked) {
				n = len(ranked)
			}

			fmt.Printf("Top %d most token-heavy files:\n\n", n)
			fmt.Printf("%-4s %-50s %6s %8s %6s %7s\n", "#", "File", "Lines", "Tokens", "T/L", "% Tot")
			fmt.Println(strings.Repeat("-", 84))

			topTokens := 0
			for i, rf := range ranked[:n] {
				fmt.Printf("%-4d %-50s %6d %8d %5.1f %6.1f%%\n",
					i+1, rf.Path, rf.Metrics.Lines, rf.Metrics.Tokens,
					tokens.Ratio(rf.Metrics.Tokens, rf.Metrics.Lines), rf.WeightFraction*100)
				topTokens += rf.Metrics.Tokens
			}

			topPct := 0.0
			if stats.TotalTokens > 0 {
				topPct = float64(topTokens) / float64(stats.TotalTokens) * 100
			}
			fmt.Println(strings.Repeat("-", 84))
			fmt.Printf("Top %d = %d tokens (%.1f%% of %d total)\n", n, topTokens, topPct, stats.TotalTokens)
			return nil
		},
	}
}

// newBadgeCmd creates the "badge" command.
func newBadgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "badge",
		Short: "Print token-efficiency badge markup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := scanWorkDir()
			if err != nil {
				return err
			}

			ratio := tokens.Ratio(stats.TotalTokens, stats.TotalLines)
			letter, color, _ := tokens.Grade(ratio)

			badgeURL := fmt.Sprintf(
				"https://img.shields.io/badge/token_efficiency-%s%%20(%.1f%%20T/L)-%s",
				letter, ratio, color)

			fmt.Println("Markdown:")
			fmt.Printf("[![Token Efficiency](%s)](%s)\n\n", badgeURL, badgeLink)
			fmt.Println("HTML:")
			fmt.Printf("<a href=%q><img src=%q alt=\"Token Efficiency\"></a>\n\n", badgeLink, badgeURL)
			fmt.Println("reStructuredText:")
			fmt.Printf(".. image:: %s\n   :target: %s\n   :alt: Token Efficiency\n", badgeURL, badgeLink)
			return nil
		},
	}
}

// scanWorkDir measures the configured project root.
func scanWorkDir() (*tokens.ProjectStats, error) {
	scanner, err := tokens.NewScanner()
	if err != nil {
		return nil, err
	}
	return scanner.ScanProject(viper.GetString("workdir"))
}
