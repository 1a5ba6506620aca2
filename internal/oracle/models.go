// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package oracle

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	bedrocktypes "github.com/aws/aws-sdk-go-v2/service/bedrock/types"
)

// ModelInfo describes one Bedrock foundation model usable as a rewrite oracle.
type ModelInfo struct {
	ID        string
	Name      string
	Provider  string
	Streaming bool
}

// ModelLister fetches the model catalog.
type ModelLister interface {
	ListFoundationModels(ctx context.Context, params *bedrock.ListFoundationModelsInput, optFns ...func(*bedrock.Options)) (*bedrock.ListFoundationModelsOutput, error)
}

// ListModels returns text-output foundation models, optionally filtered by a
// case-insensitive substring of the ID, name, or provider. Results are sorted
// by provider then ID for stable output.
func ListModels(ctx context.Context, api ModelLister, search string) ([]ModelInfo, error) {
	output, err := api.ListFoundationModels(ctx, &bedrock.ListFoundationModelsInput{
		ByOutputModality: bedrocktypes.ModelModalityText,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing models: %v", ErrUnreachable, err)
	}

	query := strings.ToLower(search)
	var models []ModelInfo
	for _, s := range output.ModelSummaries {
		m := ModelInfo{
			ID:        aws.ToString(s.ModelId),
			Name:      aws.ToString(s.ModelName),
			Provider:  aws.ToString(s.ProviderName),
			Streaming: aws.ToBool(s.ResponseStreamingSupported),
		}
		if query != "" && !matchesModel(m, query) {
			continue
		}
		models = append(models, m)
	}

	sort.Slice(models, func(i, j int) bool {
		if models[i].Provider != models[j].Provider {
			return models[i].Provider < models[j].Provider
		}
		return models[i].ID < models[j].ID
	})
	return models, nil
}

// NewModelLister builds a Bedrock control-plane client for the catalog call.
func NewModelLister(ctx context.Context, region, profile string) (ModelLister, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: loading AWS config: %v", ErrUnreachable, err)
	}
	return bedrock.NewFromConfig(awsCfg), nil
}

func matchesModel(m ModelInfo, query string) bool {
	return strings.Contains(strings.ToLower(m.ID), query) ||
		strings.Contains(strings.ToLower(m.Name), query) ||
		strings.Contains(strings.ToLower(m.Provider), query)
}
