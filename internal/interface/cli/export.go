package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/cbroglie/mustache"
	"github.com/spf13/cobra"

	"github.com/pmorrell/ccscope/internal/core/convlog"
	"github.com/pmorrell/ccscope/internal/core/discover"
)

var (
	exportOutput   string
	exportTemplate string
	exportCopy     bool
)

// defaultExportTemplate renders a conversation as markdown.
const defaultExportTemplate = `# Conversation {{session_id}}

**Project:** ` + "`{{project}}`" + `  {{#git_branch}}
**Branch:** ` + "`{{git_branch}}`" + `  {{/git_branch}}
**Started:** {{started_at}}
**Messages:** {{message_count}}  {{#cost}}
**Est. cost:** {{cost}}  {{/cost}}

---
{{#messages}}

## {{role}}{{#timestamp}} ({{timestamp}}){{/timestamp}}

{{{text}}}
{{/messages}}
`

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a conversation to markdown",
	Long: `Export a normalized conversation transcript to markdown.

By default writes conversation-<id>.md in the current directory. The
output layout is a mustache template; supply your own with --template.

Examples:
  ccscope export 0ccfddc4
  ccscope export 0ccfddc4 --output ~/notes/session.md
  ccscope export 0ccfddc4 --copy
  ccscope export 0ccfddc4 --template report.mustache`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportTemplate, "template", "", "Custom mustache template file")
	exportCmd.Flags().BoolVar(&exportCopy, "copy", false, "Copy to clipboard instead of writing a file")
}

func runExport(cmd *cobra.Command, args []string) error {
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

	rendered, err := renderConversation(conv, exportTemplate)
	if err != nil {
		return err
	}

	if exportCopy {
		if err := clipboard.WriteAll(rendered); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Println("Copied transcript to clipboard")
		return nil
	}

	outputPath := exportOutput
	if outputPath == "" {
		shortID := conv.Metadata.SessionID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}
		outputPath = fmt.Sprintf("conversation-%s.md", shortID)
	}
	if !filepath.IsAbs(outputPath) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		outputPath = filepath.Join(cwd, outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Printf("Exported to %s\n", outputPath)
	return nil
}

// renderConversation renders a transcript through a mustache template.
// templatePath may be empty to use the built-in markdown layout.
func renderConversation(conv *convlog.Conversation, templatePath string) (string, error) {
	tmpl := defaultExportTemplate
	if templatePath != "" {
		raw, err := os.ReadFile(templatePath)
		if err != nil {
			return "", fmt.Errorf("failed to read template: %w", err)
		}
		tmpl = string(raw)
	}

	meta := conv.Metadata

	var totalCost float64
	messages := make([]map[string]interface{}, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		if msg.Usage != nil {
			totalCost += msg.Usage.CostUSD
		}
		m := map[string]interface{}{
			"role": string(msg.Role),
			"text": msg.Text,
		}
		if !msg.Timestamp.IsZero() {
			m["timestamp"] = msg.Timestamp.Format("2006-01-02 15:04:05")
		}
		messages = append(messages, m)
	}

	data := map[string]interface{}{
		"session_id":    meta.SessionID,
		"project":       meta.ProjectPath,
		"git_branch":    meta.GitBranch,
		"message_count": meta.MessageCount,
		"messages":      messages,
	}
	if !meta.StartedAt.IsZero() {
		data["started_at"] = meta.StartedAt.Format("2006-01-02 15:04:05")
	}
	if totalCost > 0 {
		data["cost"] = fmt.Sprintf("$%.4f", totalCost)
	}

	out, err := mustache.Render(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return out, nil
}
