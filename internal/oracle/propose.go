// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package oracle

import (
	"context"
	"encoding/json"
	"fmt"
)

const rewritePrompt = `You are a Go code optimizer focused on token efficiency. Rewrite the given Go code to minimize token count while preserving identical behavior. Apply these rules:
- Collapse redundant branches and unnecessary else blocks
- Prefer early returns over nested conditionals
- Remove unnecessary type annotations, conversions, and intermediate variables
- Use short variable declarations and named idioms (errors.Is, strings.Builder)
- Remove comments that restate the code
- Keep exported identifiers, signatures, and package structure unchanged
Return ONLY the rewritten Go code. No markdown fences, no explanations.`

const describePrompt = `You are a Go code auditor. Given an ORIGINAL and REWRITTEN version of the same file, list each change: what was changed and how many tokens it saves. Be specific (mention function names, patterns). Respond with a JSON object of the form {"changes":[{"description":"...","tokens_saved":N}]} and nothing else.`

// changeList is the JSON shape the describe call returns.
type changeList struct {
	Changes []struct {
		Description string `json:"description"`
		TokensSaved int    `json:"tokens_saved"`
	} `json:"changes"`
}

// Propose sends content to the model and returns the rewritten file plus
// change descriptions. The proposal is fence-stripped and goimports-normalized
// before it is returned; a proposal that does not parse as Go is malformed.
// Propose makes exactly one logical rewrite attempt.
func (c *Client) Propose(ctx context.Context, content []byte, model string) (*Result, error) {
	raw, err := c.chat(ctx, model, rewritePrompt, string(content))
	if err != nil {
		return nil, err
	}

	proposed, err := NormalizeGo(StripFences(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: proposal is not valid Go: %v", ErrMalformed, err)
	}

	result := &Result{Proposed: proposed}

	// The description pass is best-effort: a failed or malformed describe call
	// degrades to an empty list, it never discards a good proposal.
	result.Descriptions = c.describe(ctx, model, content, proposed)
	return result, nil
}

// describe asks the model to enumerate the changes between the two versions.
func (c *Client) describe(ctx context.Context, model string, original, proposed []byte) []string {
	input := fmt.Sprintf("ORIGINAL:\n%s\n\nREWRITTEN:\n%s", original, proposed)

	raw, err := c.chat(ctx, model, describePrompt, input)
	if err != nil {
		return nil
	}

	var list changeList
	if err := json.Unmarshal([]byte(StripFences(raw)), &list); err != nil {
		return nil
	}

	descriptions := make([]string, 0, len(list.Changes))
	for _, ch := range list.Changes {
		if ch.Description == "" {
			continue
		}
		if ch.TokensSaved > 0 {
			descriptions = append(descriptions, fmt.Sprintf("%s (~%d tokens)", ch.Description, ch.TokensSaved))
		} else {
			descriptions = append(descriptions, ch.Description)
		}
	}
	return descriptions
}
