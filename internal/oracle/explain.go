// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package oracle

import (
	"context"
	"encoding/json"
	"fmt"
)

const explainFilePrompt = `You are a Go code explainer for developer onboarding. Given a Go source file, explain what it does clearly and concisely. Focus on purpose, key types/functions, and how it fits into a project. Be brief — developers want to understand quickly, not read an essay. Respond with a JSON object of the form {"purpose":"...","key_items":[{"name":"...","kind":"...","description":"..."}],"depends_on":["..."]} and nothing else.`

const explainProjectPrompt = `You are a Go project explainer for developer onboarding. Given a list of all source files with their sizes and contents, explain the project architecture: what it does, how packages connect, and where a new developer should start reading. Be concise. Respond with a JSON object of the form {"summary":"...","modules":[{"path":"...","purpose":"..."}],"start_here":"..."} and nothing else.`

// FileExplanation summarizes a single source file.
type FileExplanation struct {
	Purpose  string `json:"purpose"`
	KeyItems []struct {
		Name        string `json:"name"`
		Kind        string `json:"kind"`
		Description string `json:"description"`
	} `json:"key_items"`
	DependsOn []string `json:"depends_on"`
}

// ProjectExplanation summarizes a whole project.
type ProjectExplanation struct {
	Summary string `json:"summary"`
	Modules []struct {
		Path    string `json:"path"`
		Purpose string `json:"purpose"`
	} `json:"modules"`
	StartHere string `json:"start_here"`
}

// ExplainFile asks the model to summarize one source file.
func (c *Client) ExplainFile(ctx context.Context, content []byte, model string) (*FileExplanation, error) {
	var result FileExplanation
	if err := c.chatJSON(ctx, model, explainFilePrompt, string(content), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExplainProject asks the model to summarize a project from a file manifest.
func (c *Client) ExplainProject(ctx context.Context, manifest string, model string) (*ProjectExplanation, error) {
	var result ProjectExplanation
	if err := c.chatJSON(ctx, model, explainProjectPrompt, manifest, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// chatJSON sends a prompt expecting a JSON response and decodes it into out.
func (c *Client) chatJSON(ctx context.Context, model, system, user string, out any) error {
	raw, err := c.chat(ctx, model, system, user)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(StripFences(raw)), out); err != nil {
		return fmt.Errorf("%w: decoding JSON response: %v", ErrMalformed, err)
	}
	return nil
}
