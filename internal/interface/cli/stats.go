package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pmorrell/ccscope/internal/core/convlog"
	"github.com/pmorrell/ccscope/internal/core/discover"
)

var (
	statsProject string
	statsDaily   bool
	statsJSON    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token and cost statistics",
	Long: `Aggregate token usage and estimated API cost across all conversations.

Costs are computed from per-model price tables; override rates in the
config file's [pricing] section.

Examples:
  ccscope stats
  ccscope stats --project widget
  ccscope stats --daily
  ccscope stats --json`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsProject, "project", "", "Restrict to projects whose path contains this string")
	statsCmd.Flags().BoolVar(&statsDaily, "daily", false, "Break usage down by day instead of by project")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Emit JSON instead of text")
}

type usageBucket struct {
	Key           string  `json:"key"`
	Conversations int     `json:"conversations"`
	Messages      int     `json:"messages"`
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	CacheTokens   int     `json:"cache_tokens"`
	CostUSD       float64 `json:"cost_usd"`
}

func (b *usageBucket) addMessage(msg *convlog.Message) {
	b.Messages++
	if msg.Usage == nil {
		return
	}
	b.InputTokens += msg.Usage.InputTokens
	b.OutputTokens += msg.Usage.OutputTokens
	b.CacheTokens += msg.Usage.CacheCreationTokens + msg.Usage.CacheReadTokens
	b.CostUSD += msg.Usage.CostUSD
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	projects, err := discover.Projects(cfg.ProjectsDir)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	parser := newParser(cfg)
	buckets := make(map[string]*usageBucket)
	var malformed int

	bucket := func(key string) *usageBucket {
		b := buckets[key]
		if b == nil {
			b = &usageBucket{Key: key}
			buckets[key] = b
		}
		return b
	}

	for _, project := range projects {
		if statsProject != "" && !containsFold(project.Path, statsProject) {
			continue
		}
		for _, file := range project.Conversations {
			conv, err := parser.ParseFile(file.Path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", file.Path, err)
				continue
			}
			malformed += conv.Metadata.MalformedLines

			if !statsDaily {
				b := bucket(project.Name)
				b.Conversations++
				for i := range conv.Messages {
					b.addMessage(&conv.Messages[i])
				}
				continue
			}

			seenDays := make(map[string]bool)
			for i := range conv.Messages {
				msg := &conv.Messages[i]
				day := "unknown"
				if !msg.Timestamp.IsZero() {
					day = msg.Timestamp.Format("2006-01-02")
				}
				b := bucket(day)
				if !seenDays[day] {
					b.Conversations++
					seenDays[day] = true
				}
				b.addMessage(msg)
			}
		}
	}

	if len(buckets) == 0 {
		fmt.Println("No conversations found. Nothing to report.")
		return nil
	}

	ordered := make([]*usageBucket, 0, len(buckets))
	var total usageBucket
	for _, b := range buckets {
		ordered = append(ordered, b)
		total.Conversations += b.Conversations
		total.Messages += b.Messages
		total.InputTokens += b.InputTokens
		total.OutputTokens += b.OutputTokens
		total.CacheTokens += b.CacheTokens
		total.CostUSD += b.CostUSD
	}
	if statsDaily {
		// Chronological; the per-day totals read like a ledger
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].Key < ordered[j].Key })
	} else {
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].CostUSD > ordered[j].CostUSD })
	}

	if statsJSON {
		total.Key = "total"
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"buckets":         ordered,
			"total":           total,
			"malformed_lines": malformed,
		})
	}

	heading := "Usage by Project"
	if statsDaily {
		heading = "Usage by Day"
	}
	fmt.Println(heading)
	fmt.Println(strings.Repeat("=", len(heading)))
	fmt.Println()
	for _, b := range ordered {
		fmt.Printf("%s\n", b.Key)
		printBucket(b)
	}

	fmt.Println("Total")
	fmt.Println("=====")
	printBucket(&total)
	if malformed > 0 {
		fmt.Printf("Skipped: %d malformed line(s) across all logs\n", malformed)
	}
	return nil
}

func printBucket(b *usageBucket) {
	fmt.Printf("  Conversations: %d\n", b.Conversations)
	fmt.Printf("  Messages:      %d\n", b.Messages)
	fmt.Printf("  Tokens:        %s in / %s out / %s cached\n",
		humanize.Comma(int64(b.InputTokens)),
		humanize.Comma(int64(b.OutputTokens)),
		humanize.Comma(int64(b.CacheTokens)))
	fmt.Printf("  Est. cost:     $%.4f\n", b.CostUSD)
	fmt.Println()
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
