package cli

import (
	"github.com/spf13/cobra"

	"github.com/pmorrell/ccscope/internal/interface/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web dashboard",
	Long: `Serve a browser dashboard over the conversation logs.

The dashboard reads the log files on every request, so it stays live
without a sync step.

Examples:
  ccscope serve
  ccscope serve --addr 127.0.0.1:9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr := cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	server := web.NewServer(cfg.ProjectsDir, newParser(cfg))
	return server.ListenAndServe(addr)
}
