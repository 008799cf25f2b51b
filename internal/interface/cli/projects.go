package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pmorrell/ccscope/internal/core/discover"
)

var projectsLimit int

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects with conversation logs",
	Long: `List the project directories under the Claude Code projects root,
most recently active first, with conversation counts and sizes.

Examples:
  ccscope projects
  ccscope projects --limit 5`,
	RunE: runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.Flags().IntVar(&projectsLimit, "limit", 20, "Maximum number of projects to display")
}

func runProjects(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	projects, err := discover.Projects(cfg.ProjectsDir)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		fmt.Printf("No projects found under %s\n", cfg.ProjectsDir)
		return nil
	}

	shown := projects
	if len(shown) > projectsLimit {
		shown = shown[:projectsLimit]
	}

	fmt.Printf("Showing %d of %d project(s)\n\n", len(shown), len(projects))
	for i, p := range shown {
		var totalSize int64
		for _, c := range p.Conversations {
			totalSize += c.Size
		}
		latest := p.Conversations[0] // newest first

		fmt.Printf("[%d] %s\n", i+1, p.Name)
		fmt.Printf("    Path:          %s\n", p.Path)
		fmt.Printf("    Conversations: %d (%s)\n", len(p.Conversations), humanize.Bytes(uint64(totalSize)))
		fmt.Printf("    Last active:   %s\n", humanize.Time(latest.Mtime))
		fmt.Println()
	}

	if len(projects) > projectsLimit {
		fmt.Printf("... and %d more projects (use --limit to see more)\n", len(projects)-projectsLimit)
	}
	return nil
}
