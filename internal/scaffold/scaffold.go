// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scaffold creates and retrofits projects with the token-efficient
// configuration set: lint rules, formatting, ignore patterns, and a style
// guide for code-generating agents.
package scaffold

import (
	"embed"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

//go:embed templates
var templatesFS embed.FS

// template maps an embedded file to its destination name in the project.
type template struct {
	src  string
	dest string
}

var configTemplates = []template{
	{src: "templates/golangci.yml", dest: ".golangci.yml"},
	{src: "templates/AGENTS.md", dest: "AGENTS.md"},
}

const gitignoreSrc = "templates/gitignore"

// Init creates a new Go project named name: a fresh directory, go mod init,
// a main.go stub, and the config set. Fails when the directory exists.
func Init(name string, out io.Writer) error {
	if _, err := os.Stat(name); err == nil {
		return fmt.Errorf("directory %q already exists", name)
	}

	fmt.Fprintf(out, "Creating project %q...\n", name)

	if err := os.MkdirAll(name, 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}

	cmd := exec.Command("go", "mod", "init", name)
	cmd.Dir = name
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("go mod init failed: %w\n%s", err, output)
	}

	stub, err := templatesFS.ReadFile("templates/main.go.tmpl")
	if err != nil {
		return fmt.Errorf("reading main.go template: %w", err)
	}
	if err := os.WriteFile(filepath.Join(name, "main.go"), stub, 0o644); err != nil {
		return fmt.Errorf("writing main.go: %w", err)
	}

	for _, tmpl := range configTemplates {
		if err := writeTemplate(name, tmpl, out); err != nil {
			return err
		}
	}
	if err := writeTemplate(name, template{src: gitignoreSrc, dest: ".gitignore"}, out); err != nil {
		return err
	}

	fmt.Fprintf(out, "Project %q created with token-efficient config.\n\n", name)
	fmt.Fprintf(out, "  cd %s\n  go-syntax check\n", name)
	return nil
}

// Apply writes the config set into an existing project at dir. Existing
// config files are kept; an existing .gitignore gets the missing patterns
// appended instead of being replaced.
func Apply(dir string, out io.Writer) error {
	if _, err := os.Stat(filepath.Join(dir, "go.mod")); err != nil {
		return fmt.Errorf("no go.mod found in %s: run this from a Go project root", dir)
	}

	for _, tmpl := range configTemplates {
		dest := filepath.Join(dir, tmpl.dest)
		if _, err := os.Stat(dest); err == nil {
			fmt.Fprintf(out, "%s already exists, skipping\n", tmpl.dest)
			continue
		}
		if err := writeTemplate(dir, tmpl, out); err != nil {
			return err
		}
	}

	if err := mergeGitignore(dir, out); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nDone. Run `go-syntax check` to verify.\n")
	return nil
}

func writeTemplate(dir string, tmpl template, out io.Writer) error {
	content, err := templatesFS.ReadFile(tmpl.src)
	if err != nil {
		return fmt.Errorf("reading template %s: %w", tmpl.src, err)
	}
	dest := filepath.Join(dir, tmpl.dest)
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmpl.dest, err)
	}
	fmt.Fprintf(out, "Created %s\n", tmpl.dest)
	return nil
}

func mergeGitignore(dir string, out io.Writer) error {
	patterns, err := templatesFS.ReadFile(gitignoreSrc)
	if err != nil {
		return fmt.Errorf("reading gitignore template: %w", err)
	}

	path := filepath.Join(dir, ".gitignore")
	existing, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := os.WriteFile(path, patterns, 0o644); err != nil {
			return fmt.Errorf("writing .gitignore: %w", err)
		}
		fmt.Fprintln(out, "Created .gitignore")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading .gitignore: %w", err)
	}

	var missing []string
	for _, line := range strings.Split(strings.TrimSpace(string(patterns)), "\n") {
		if !strings.Contains(string(existing), line) {
			missing = append(missing, line)
		}
	}
	if len(missing) == 0 {
		fmt.Fprintln(out, ".gitignore already covers the ignore set, skipping")
		return nil
	}

	merged := strings.TrimRight(string(existing), "\n") + "\n\n# Added by go-syntax\n" +
		strings.Join(missing, "\n") + "\n"
	if err := os.WriteFile(path, []byte(merged), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	fmt.Fprintln(out, "Appended to .gitignore")
	return nil
}
