package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pmorrell/ccscope/internal/core/config"
	"github.com/pmorrell/ccscope/internal/core/convlog"
)

var (
	cfgFile     string
	projectsDir string
	indexPath   string
	versionInfo string
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ccscope",
	Short: "Claude Code conversation explorer",
	Long: `ccscope - parse, search, and analyze your Claude Code conversation logs

Reads the JSONL logs under ~/.claude/projects directly, normalizes them
into clean transcripts, and layers search, cost reporting, export, and
summarization on top.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to TUI if no subcommand specified
		return tuiCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.config/ccscope/config.toml)")
	rootCmd.PersistentFlags().StringVar(&projectsDir, "projects-dir", "", "Claude Code projects directory (default ~/.claude/projects)")
	rootCmd.PersistentFlags().StringVar(&indexPath, "index", "", "Search index path (default ~/.config/ccscope/index.db)")
}

// loadConfig resolves config from file and global flags. Flags win.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if projectsDir != "" {
		cfg.ProjectsDir = projectsDir
	}
	if indexPath != "" {
		cfg.IndexPath = indexPath
	}
	return cfg, nil
}

func newParser(cfg *config.Config) *convlog.Parser {
	return &convlog.Parser{Prices: cfg.PriceTable()}
}
