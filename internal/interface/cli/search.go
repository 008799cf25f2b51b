package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pmorrell/ccscope/internal/core/discover"
	"github.com/pmorrell/ccscope/internal/core/index"
	"github.com/pmorrell/ccscope/internal/core/search"
)

var (
	searchLimit   int
	searchIndexed bool
	searchCase    bool
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search conversation transcripts",
	Long: `Search through all conversations for a term.

By default this scans the log files directly, so results are always
current. With --indexed the sqlite full-text index answers instead,
which is much faster on large histories (run 'ccscope sync' first).

Filter syntax inside the query:
  project:<path>   restrict to a project
  role:<role>      restrict to user, assistant, tool, or summary
  after:<date>     messages after this date (ISO or natural language)
  before:<date>    messages before this date

Examples:
  ccscope search "authentication flow"
  ccscope search "timeout role:assistant after:last-monday"
  ccscope search "migrate" --indexed --limit 10`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "Maximum number of matches to show")
	searchCmd.Flags().BoolVar(&searchIndexed, "indexed", false, "Query the sqlite index instead of scanning files")
	searchCmd.Flags().BoolVar(&searchCase, "case", false, "Case-sensitive matching (live scan only)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Emit JSON instead of text")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	filters := search.ParseQuery(query)
	if filters.Query == "" {
		return fmt.Errorf("query has no search term after filters")
	}

	if searchIndexed {
		return runIndexedSearch(cfg.IndexPath, filters.Query)
	}

	projects, err := discover.Projects(cfg.ProjectsDir)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	parser := newParser(cfg)
	opts := search.Options{
		ContextRunes: cfg.ContextRunes,
		MatchCase:    searchCase,
	}

	var matches []search.Match
	for _, project := range projects {
		for _, file := range project.Conversations {
			conv, err := parser.ParseFile(file.Path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", file.Path, err)
				continue
			}
			matches = append(matches, search.Conversation(conv, filters, opts)...)
		}
	}

	if searchJSON {
		if matches == nil {
			matches = []search.Match{}
		}
		return writeJSONOut(map[string]interface{}{"matches": matches})
	}

	if len(matches) == 0 {
		fmt.Printf("No results found for: %s\n", filters.Query)
		return nil
	}

	fmt.Printf("Found %d match(es) for: %s\n\n", len(matches), filters.Query)
	for i, m := range matches {
		if i >= searchLimit {
			fmt.Printf("\n... and %d more matches (use --limit to see more)\n", len(matches)-searchLimit)
			break
		}
		fmt.Printf("[%s] %s #%d (%s)\n", m.Role, m.SessionID, m.MessageIndex, m.ProjectPath)
		if !m.Timestamp.IsZero() {
			fmt.Printf("  At: %s\n", m.Timestamp.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("  %s\n\n", m.Snippet)
	}
	return nil
}

func runIndexedSearch(indexPath, query string) error {
	db, err := index.Open(indexPath)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer func() { _ = db.Close() }()

	results, err := db.Search(query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if searchJSON {
		if results == nil {
			results = []index.Result{}
		}
		return writeJSONOut(map[string]interface{}{"matches": results})
	}
	if len(results) == 0 {
		fmt.Printf("No indexed results for: %s (run 'ccscope sync' to refresh)\n", query)
		return nil
	}

	fmt.Printf("Found %d match(es) for: %s\n\n", len(results), query)
	for _, r := range results {
		fmt.Printf("[%s] %s #%d (%s)\n", r.Role, r.SessionID, r.Seq, r.ProjectPath)
		fmt.Printf("  %s\n\n", r.Snippet)
	}
	return nil
}

func writeJSONOut(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
