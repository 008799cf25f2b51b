package llm

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/bedrock"
)

// BedrockProvider implements Provider using AWS Bedrock.
type BedrockProvider struct {
	llm     *bedrock.LLM
	modelID string
}

// BedrockOptions holds connection settings for the Bedrock provider.
type BedrockOptions struct {
	Region          string // AWS region, defaults to us-east-1
	ModelID         string // Model ID, defaults to a Haiku variant
	Profile         string // AWS profile name (optional)
	AccessKeyID     string // explicit credentials (optional)
	SecretAccessKey string
}

// NewBedrockProvider creates a Bedrock-backed provider.
func NewBedrockProvider(ctx context.Context, opts BedrockOptions) (*BedrockProvider, error) {
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	if opts.ModelID == "" {
		// Haiku keeps per-summary cost negligible
		opts.ModelID = "anthropic.claude-3-haiku-20240307-v1:0"
	}

	var loadOpts []func(*config.LoadOptions) error
	loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := bedrockruntime.NewFromConfig(awsCfg)

	llm, err := bedrock.New(
		bedrock.WithModel(opts.ModelID),
		bedrock.WithClient(client),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bedrock LLM: %w", err)
	}

	return &BedrockProvider{llm: llm, modelID: opts.ModelID}, nil
}

// GenerateText implements Provider.
func (p *BedrockProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, p.llm, prompt,
		llms.WithMaxTokens(512),
		llms.WithTemperature(0.3),
	)
	if err != nil {
		return "", fmt.Errorf("bedrock generation failed: %w", err)
	}
	return response, nil
}

// Name implements Provider.
func (p *BedrockProvider) Name() string {
	return "bedrock"
}
