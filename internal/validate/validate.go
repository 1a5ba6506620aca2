// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package validate runs the project-level gate after a rewrite is applied:
// go build, go vet, and an optional test command against the working tree.
package validate

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const (
	defaultCmdTimeout  = 60 * time.Second
	defaultTestTimeout = 120 * time.Second
)

// Failure reports a failed validation. Diagnostic preserves the gate's output
// verbatim so the user sees exactly what the toolchain printed.
type Failure struct {
	Step       string // "go build", "go vet", or the test command
	Diagnostic string // Raw combined output of the failing step
}

func (f *Failure) Error() string {
	if first := firstErrorLine(f.Diagnostic); first != "" {
		return fmt.Sprintf("%s: %s", f.Step, first)
	}
	return fmt.Sprintf("%s failed", f.Step)
}

// Config configures the validation gate.
type Config struct {
	WorkDir     string        // Module root the gate runs in
	TestCmd     string        // Test command (empty to skip tests)
	CmdTimeout  time.Duration // Timeout for build/vet (default 60s)
	TestTimeout time.Duration // Timeout for the test command (default 120s)
}

// Runner executes the gate against the current working tree. It holds no
// state of its own; every call inspects the tree as it is right now.
type Runner struct {
	cfg Config
}

// NewRunner creates a validation runner.
func NewRunner(cfg Config) *Runner {
	if cfg.CmdTimeout == 0 {
		cfg.CmdTimeout = defaultCmdTimeout
	}
	if cfg.TestTimeout == 0 {
		cfg.TestTimeout = defaultTestTimeout
	}
	return &Runner{cfg: cfg}
}

// Validate runs go build ./..., go vet ./..., and the configured test command
// in sequence. The first failing step produces a *Failure; a timeout is an
// ordinary failure, never a distinct fatal error. Nil means the tree passed.
func (r *Runner) Validate(ctx context.Context) error {
	out, err := runCommand(ctx, r.cfg.WorkDir, r.cfg.CmdTimeout, "go", "build", "./...")
	if err != nil {
		return &Failure{Step: "go build", Diagnostic: out}
	}

	out, err = runCommand(ctx, r.cfg.WorkDir, r.cfg.CmdTimeout, "go", "vet", "./...")
	if err != nil {
		return &Failure{Step: "go vet", Diagnostic: out}
	}

	if r.cfg.TestCmd == "" {
		return nil
	}

	parts := strings.Fields(r.cfg.TestCmd)
	out, err = runCommand(ctx, r.cfg.WorkDir, r.cfg.TestTimeout, parts[0], parts[1:]...)
	if err != nil {
		return &Failure{Step: r.cfg.TestCmd, Diagnostic: out}
	}

	return nil
}

// runCommand executes a command with a timeout and captures combined output.
func runCommand(ctx context.Context, dir string, timeout time.Duration, name string, args ...string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, name, args...)
	cmd.Dir = dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	return buf.String(), err
}

// goErrorRegex matches Go compiler/vet error output lines:
// file.go:10:5: error message
// file.go:10: error message
var goErrorRegex = regexp.MustCompile(`^(.+?\.go):(\d+)(?::(\d+))?: (.+)$`)

// firstErrorLine returns the first line of output that looks like a Go
// compiler or vet error, falling back to the first non-empty line.
func firstErrorLine(output string) string {
	fallback := ""
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if goErrorRegex.MatchString(line) {
			return line
		}
		if fallback == "" && !strings.HasPrefix(line, "#") {
			fallback = line
		}
	}
	return fallback
}
