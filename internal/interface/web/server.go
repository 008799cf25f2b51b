// Package web serves a local dashboard over the conversation logs. Every
// API request re-reads the files, so the view stays live as new
// conversations are written.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pmorrell/ccscope/internal/core/convlog"
	"github.com/pmorrell/ccscope/internal/core/discover"
	"github.com/pmorrell/ccscope/internal/core/search"
)

//go:embed templates/index.html
var templateFS embed.FS

// Server answers dashboard requests from the projects root.
type Server struct {
	root   string
	parser *convlog.Parser
}

// NewServer creates a dashboard server over the given projects root.
func NewServer(root string, parser *convlog.Parser) *Server {
	if parser == nil {
		parser = &convlog.Parser{}
	}
	return &Server{root: root, parser: parser}
}

// ListenAndServe blocks serving the dashboard on addr.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		data, err := templateFS.ReadFile("templates/index.html")
		if err != nil {
			http.Error(w, "internal error", 500)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
	})

	mux.HandleFunc("/api/projects", s.handleProjects)
	mux.HandleFunc("/api/conversations", s.handleConversations)
	mux.HandleFunc("/api/conversation", s.handleConversation)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/stats", s.handleStats)

	fmt.Printf("Dashboard at http://%s\n", addr)
	fmt.Println("Press Ctrl+C to stop.")

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

type projectJSON struct {
	Name          string    `json:"name"`
	Path          string    `json:"path"`
	Conversations int       `json:"conversations"`
	LastActive    time.Time `json:"last_active"`
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := discover.Projects(s.root)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	out := make([]projectJSON, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectJSON{
			Name:          p.Name,
			Path:          p.Path,
			Conversations: len(p.Conversations),
			LastActive:    p.Conversations[0].Mtime,
		})
	}
	writeJSON(w, map[string]interface{}{"projects": out})
}

type conversationJSON struct {
	SessionID string    `json:"session_id"`
	Project   string    `json:"project"`
	Size      int64     `json:"size"`
	Mtime     time.Time `json:"mtime"`
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	projectFilter := r.URL.Query().Get("project")

	projects, err := discover.Projects(s.root)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	var out []conversationJSON
	for _, p := range projects {
		if projectFilter != "" && p.Path != projectFilter && p.Name != projectFilter {
			continue
		}
		for _, c := range p.Conversations {
			out = append(out, conversationJSON{
				SessionID: c.SessionID,
				Project:   p.Path,
				Size:      c.Size,
				Mtime:     c.Mtime,
			})
		}
	}
	writeJSON(w, map[string]interface{}{"conversations": out})
}

type messageJSON struct {
	Index     int        `json:"index"`
	Role      string     `json:"role"`
	Text      string     `json:"text"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Model     string     `json:"model,omitempty"`
	CostUSD   float64    `json:"cost_usd,omitempty"`
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", 400)
		return
	}

	file, err := discover.FindConversation(s.root, sessionID)
	if err != nil {
		http.Error(w, err.Error(), 404)
		return
	}
	conv, err := s.parser.ParseFile(file.Path)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	messages := make([]messageJSON, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		m := messageJSON{
			Index: msg.Index,
			Role:  string(msg.Role),
			Text:  msg.Text,
			Model: msg.Model,
		}
		if !msg.Timestamp.IsZero() {
			ts := msg.Timestamp
			m.Timestamp = &ts
		}
		if msg.Usage != nil {
			m.CostUSD = msg.Usage.CostUSD
		}
		messages = append(messages, m)
	}

	writeJSON(w, map[string]interface{}{
		"session_id": conv.Metadata.SessionID,
		"project":    conv.Metadata.ProjectPath,
		"git_branch": conv.Metadata.GitBranch,
		"started_at": conv.Metadata.StartedAt,
		"ended_at":   conv.Metadata.EndedAt,
		"malformed":  conv.Metadata.MalformedLines,
		"warnings":   conv.Metadata.Warnings,
		"messages":   messages,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "q parameter required", 400)
		return
	}
	filters := search.ParseQuery(query)

	projects, err := discover.Projects(s.root)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	var matches []search.Match
	for _, p := range projects {
		for _, file := range p.Conversations {
			conv, err := s.parser.ParseFile(file.Path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", file.Path, err)
				continue
			}
			matches = append(matches, search.Conversation(conv, filters, search.Options{})...)
		}
	}
	if matches == nil {
		matches = []search.Match{}
	}
	writeJSON(w, map[string]interface{}{"matches": matches})
}

type statsJSON struct {
	Conversations int     `json:"conversations"`
	Messages      int     `json:"messages"`
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	CostUSD       float64 `json:"cost_usd"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	projects, err := discover.Projects(s.root)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	byProject := make(map[string]*statsJSON)
	for _, p := range projects {
		for _, file := range p.Conversations {
			conv, err := s.parser.ParseFile(file.Path)
			if err != nil {
				continue
			}
			st := byProject[p.Path]
			if st == nil {
				st = &statsJSON{}
				byProject[p.Path] = st
			}
			st.Conversations++
			st.Messages += len(conv.Messages)
			for _, msg := range conv.Messages {
				if msg.Usage == nil {
					continue
				}
				st.InputTokens += msg.Usage.InputTokens
				st.OutputTokens += msg.Usage.OutputTokens
				st.CostUSD += msg.Usage.CostUSD
			}
		}
	}
	writeJSON(w, map[string]interface{}{"projects": byProject})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
