// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package rewrite

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ConsoleConfirmer prompts a terminal user to accept, reject, or inspect a
// proposed change. The first prompt for a change set shows before/after
// metrics and the change descriptions; re-prompts after a diff just ask.
type ConsoleConfirmer struct {
	in   *bufio.Reader
	out  io.Writer
	seen *ChangeSet
}

// NewConsoleConfirmer reads decisions from in and writes prompts to out.
func NewConsoleConfirmer(in io.Reader, out io.Writer) *ConsoleConfirmer {
	return &ConsoleConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm asks for a decision on cs. Unrecognized input counts as Reject,
// matching the cautious default of the interactive flow.
func (c *ConsoleConfirmer) Confirm(cs *ChangeSet) (Decision, error) {
	if c.seen != cs {
		c.seen = cs
		c.present(cs)
	}

	fmt.Fprint(c.out, "Accept? [y/n/d=diff] ")

	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return Reject, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return Accept, nil
	case "d", "diff":
		return ShowDiff, nil
	default:
		return Reject, nil
	}
}

// present renders the change summary shown before the first prompt.
func (c *ConsoleConfirmer) present(cs *ChangeSet) {
	fmt.Fprintf(c.out, "  Lines:  %d → %d\n", cs.Before.Lines, cs.After.Lines)
	fmt.Fprintf(c.out, "  Tokens: %d → %d\n", cs.Before.Tokens, cs.After.Tokens)

	saved := cs.Saved()
	switch {
	case saved > 0:
		pct := float64(saved) / float64(cs.Before.Tokens) * 100
		color.New(color.FgGreen).Fprintf(c.out, "  Saves %d tokens (%.1f%%)\n", saved, pct)
	case saved < 0:
		color.New(color.FgRed).Fprintf(c.out, "  Adds %d tokens\n", -saved)
	default:
		fmt.Fprintln(c.out, "  No token change")
	}

	if len(cs.Descriptions) > 0 {
		fmt.Fprintln(c.out, "  Changes:")
		for _, d := range cs.Descriptions {
			fmt.Fprintf(c.out, "    - %s\n", d)
		}
	}
}
