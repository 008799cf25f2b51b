package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pmorrell/ccscope/internal/core/convlog"
	"github.com/pmorrell/ccscope/internal/core/discover"
)

var (
	showMeta bool
	showRaw  bool
)

var showCmd = &cobra.Command{
	Use:   "show <session-id | file>",
	Short: "Print a conversation transcript",
	Long: `Print the normalized transcript of one conversation.

Accepts a session id (abbreviated to any unique prefix) or a path to a
JSONL log file. Tool calls show as placeholders; use --raw to include
full tool result payloads.

Examples:
  ccscope show 0ccfddc4-00e7-443a-bb82-58ede5936619
  ccscope show 0ccfddc4 --meta
  ccscope show ~/.claude/projects/-Users-anna-src-widget/sess.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showMeta, "meta", false, "Print session metadata before the transcript")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Include full tool result payloads")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := args[0]
	if _, statErr := os.Stat(path); statErr != nil {
		file, err := discover.FindConversation(cfg.ProjectsDir, path)
		if err != nil {
			return err
		}
		path = file.Path
	}

	conv, err := newParser(cfg).ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse conversation: %w", err)
	}

	if showMeta {
		printMetadata(&conv.Metadata)
	}

	for _, msg := range conv.Messages {
		printMessage(&msg)
	}
	return nil
}

func printMetadata(meta *convlog.Metadata) {
	fmt.Printf("Session:  %s\n", meta.SessionID)
	fmt.Printf("Project:  %s\n", meta.ProjectPath)
	if meta.GitBranch != "" {
		fmt.Printf("Branch:   %s\n", meta.GitBranch)
	}
	if !meta.StartedAt.IsZero() {
		fmt.Printf("Started:  %s (%s)\n", meta.StartedAt.Format("2006-01-02 15:04:05"), humanize.Time(meta.StartedAt))
	}
	fmt.Printf("Messages: %d\n", meta.MessageCount)
	if meta.MalformedLines > 0 {
		fmt.Printf("Skipped:  %d malformed line(s)\n", meta.MalformedLines)
	}
	fmt.Println()
}

func printMessage(msg *convlog.Message) {
	header := strings.ToUpper(string(msg.Role))
	if !msg.Timestamp.IsZero() {
		header += "  " + msg.Timestamp.Format("15:04:05")
	}
	fmt.Printf("--- %s ---\n", header)

	text := msg.Text
	if msg.Role == convlog.RoleTool && !showRaw {
		text = truncateText(text, 200)
	}
	if text != "" {
		fmt.Println(text)
	}
	fmt.Println()
}

// truncateText truncates long payloads at a word boundary for display
func truncateText(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	truncated := s[:maxLen]
	lastSpace := strings.LastIndexAny(truncated, " \n\t")
	if lastSpace > maxLen-50 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}
