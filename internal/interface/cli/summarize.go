package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmorrell/ccscope/internal/core/discover"
	"github.com/pmorrell/ccscope/internal/core/llm"
)

var summarizeTimeout time.Duration

var summarizeCmd = &cobra.Command{
	Use:   "summarize <session-id>",
	Short: "Generate an LLM summary of a conversation",
	Long: `Summarize one conversation using AWS Bedrock.

Requires AWS credentials (environment, shared config, or a profile set
in the [bedrock] config section). The default model is Claude Haiku.

Examples:
  ccscope summarize 0ccfddc4
  ccscope summarize 0ccfddc4 --timeout 60s`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().DurationVar(&summarizeTimeout, "timeout", 30*time.Second, "Generation timeout")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	file, err := discover.FindConversation(cfg.ProjectsDir, args[0])
	if err != nil {
		return err
	}
	conv, err := newParser(cfg).ParseFile(file.Path)
	if err != nil {
		return fmt.Errorf("failed to parse conversation: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), summarizeTimeout)
	defer cancel()

	provider, err := llm.NewBedrockProvider(ctx, llm.BedrockOptions{
		Region:  cfg.Bedrock.Region,
		ModelID: cfg.Bedrock.ModelID,
		Profile: cfg.Bedrock.Profile,
	})
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	summary, err := llm.NewSummarizer(provider).Summarize(ctx, conv)
	if err != nil {
		return fmt.Errorf("summarization failed: %w", err)
	}

	fmt.Println(summary)
	return nil
}
