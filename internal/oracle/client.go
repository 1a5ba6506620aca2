// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package oracle wraps the AWS Bedrock Converse API as the rewrite oracle:
// given file content and a model ID it proposes a token-leaner replacement
// plus human-readable change descriptions.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const (
	defaultTimeout   = 120 * time.Second
	defaultMaxTokens = 8192
	maxThrottleTries = 3
	baseRetryDelay   = 1 * time.Second
)

// Oracle failure taxonomy. Every error returned by Propose wraps exactly one
// of these, so callers can classify without inspecting SDK types.
var (
	ErrUnreachable = errors.New("oracle unreachable")
	ErrTimeout     = errors.New("oracle timeout")
	ErrMalformed   = errors.New("oracle response malformed")
)

// Result is a proposed replacement for one file.
type Result struct {
	Proposed     []byte   // Replacement content, fence-stripped and goimports-normalized
	Descriptions []string // Human-readable change descriptions (may be empty)
}

// Oracle proposes rewrites. Implementations make exactly one logical attempt
// per call; callers never retry a failed proposal.
type Oracle interface {
	Propose(ctx context.Context, content []byte, model string) (*Result, error)
}

// BedrockAPI abstracts the Bedrock Converse call for testing.
type BedrockAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// ClientConfig configures the Bedrock oracle client.
type ClientConfig struct {
	Region    string        // AWS region (required)
	Profile   string        // AWS credential profile (optional)
	Timeout   time.Duration // Per-call timeout (default 120s)
	MaxTokens int           // Max tokens for the response (default 8192)
}

// Client talks to Bedrock. The model ID is supplied per call so one client
// serves an entire batch regardless of which model each session targets.
type Client struct {
	api       BedrockAPI
	timeout   time.Duration
	maxTokens int
}

// NewClient initializes the AWS SDK client using the standard credential chain.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: region is required", ErrUnreachable)
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: loading AWS config: %v", ErrUnreachable, err)
	}

	return NewClientWithAPI(bedrockruntime.NewFromConfig(awsCfg), cfg), nil
}

// NewClientWithAPI creates a client with a pre-configured API implementation.
// Used for testing with mock clients.
func NewClientWithAPI(api BedrockAPI, cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	return &Client{api: api, timeout: timeout, maxTokens: maxTokens}
}

// chat sends one system+user exchange and returns the assistant text.
// A Bedrock ThrottlingException triggers bounded exponential backoff; this is
// re-delivery of the same logical attempt, not a caller-visible retry.
func (c *Client) chat(ctx context.Context, model, system, user string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= maxThrottleTries; attempt++ {
		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: cancelled during backoff: %v", ErrTimeout, ctx.Err())
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)

		input := &bedrockruntime.ConverseInput{
			ModelId: aws.String(model),
			System: []brtypes.SystemContentBlock{
				&brtypes.SystemContentBlockMemberText{Value: system},
			},
			Messages: []brtypes.Message{{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: user},
				},
			}},
			InferenceConfig: &brtypes.InferenceConfiguration{
				MaxTokens: aws.Int32(int32(c.maxTokens)),
			},
		}

		output, err := c.api.Converse(callCtx, input)
		cancel()
		if err != nil {
			var throttle *brtypes.ThrottlingException
			if errors.As(err, &throttle) {
				lastErr = err
				continue
			}
			return "", c.classifyError(err, model)
		}

		text, err := extractText(output)
		if err != nil {
			return "", err
		}
		return text, nil
	}

	return "", fmt.Errorf("%w: rate limited after %d retries: %v", ErrUnreachable, maxThrottleTries, lastErr)
}

// extractText pulls the assistant message text out of a Converse response.
func extractText(output *bedrockruntime.ConverseOutput) (string, error) {
	msg, ok := output.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("%w: unexpected output type %T", ErrMalformed, output.Output)
	}

	var buf strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*brtypes.ContentBlockMemberText); ok {
			buf.WriteString(text.Value)
		}
	}
	if buf.Len() == 0 {
		return "", fmt.Errorf("%w: empty response", ErrMalformed)
	}
	return buf.String(), nil
}

// classifyError maps Bedrock errors onto the oracle taxonomy.
func (c *Client) classifyError(err error, model string) error {
	var accessDenied *brtypes.AccessDeniedException
	if errors.As(err, &accessDenied) {
		return fmt.Errorf("%w: credential or permission issue: %v", ErrUnreachable, err)
	}

	var notFound *brtypes.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: model not found: %s", ErrUnreachable, model)
	}

	var validation *brtypes.ValidationException
	if errors.As(err, &validation) {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: no response after %s", ErrTimeout, c.timeout)
	}

	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
