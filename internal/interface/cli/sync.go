package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pmorrell/ccscope/internal/core/index"
)

var syncCmd = &cobra.Command{
	Use:   "sync [path]",
	Short: "Build or refresh the search index",
	Long: `Index conversations from ~/.claude/projects (or a given directory)
into the sqlite full-text index used by 'search --indexed' and the MCP
server.

The sync is incremental - unchanged files are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	root := cfg.ProjectsDir
	if len(args) > 0 {
		root = args[0]
	}

	fmt.Printf("Syncing conversations from: %s\n", root)
	fmt.Printf("Index: %s\n\n", cfg.IndexPath)

	db, err := index.Open(cfg.IndexPath)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer func() { _ = db.Close() }()

	stats, err := index.NewIndexer(db, newParser(cfg)).SyncRoot(root)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Printf("Indexed: %d  Skipped: %d  Failed: %d\n", stats.Indexed, stats.Skipped, stats.Failed)
	return nil
}
