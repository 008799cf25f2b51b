// Package discover enumerates Claude Code conversation logs on disk.
// Project directories under ~/.claude/projects carry dash-encoded paths;
// decoding them back to filesystem paths lives in the parser, so this
// package only finds and groups the files.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ConversationFile is one JSONL log file on disk.
type ConversationFile struct {
	Path      string
	SessionID string
	Size      int64
	Mtime     time.Time
}

// Project groups the conversation files that share a project directory.
type Project struct {
	Name          string // decoded directory name, e.g. widget
	Path          string // decoded filesystem path, e.g. /Users/anna/src/widget
	EncodedDir    string // raw directory under the projects root
	Conversations []ConversationFile
}

// DefaultRoot returns the standard Claude Code projects directory.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".claude", "projects"), nil
}

// Projects lists all project directories under root, most recently active
// first. Unreadable entries are skipped; an unreadable root is an error.
func Projects(root string) ([]Project, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read projects dir: %w", err)
	}

	var projects []Project
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p := Project{
			EncodedDir: entry.Name(),
			Path:       DecodePath(entry.Name()),
		}
		p.Name = filepath.Base(p.Path)

		files, err := Conversations(filepath.Join(root, entry.Name()))
		if err != nil {
			continue
		}
		if len(files) == 0 {
			continue
		}
		p.Conversations = files
		projects = append(projects, p)
	}

	sort.Slice(projects, func(i, j int) bool {
		return latestMtime(projects[i]).After(latestMtime(projects[j]))
	})
	return projects, nil
}

// Conversations lists the JSONL files in one project directory, newest
// first.
func Conversations(dir string) ([]ConversationFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read project dir: %w", err)
	}

	var files []ConversationFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, ConversationFile{
			Path:      filepath.Join(dir, entry.Name()),
			SessionID: strings.TrimSuffix(entry.Name(), ".jsonl"),
			Size:      info.Size(),
			Mtime:     info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Mtime.After(files[j].Mtime)
	})
	return files, nil
}

// FindConversation resolves a session id (or unique prefix) to a file
// anywhere under root.
func FindConversation(root, sessionID string) (*ConversationFile, error) {
	projects, err := Projects(root)
	if err != nil {
		return nil, err
	}

	var match *ConversationFile
	for _, p := range projects {
		for i := range p.Conversations {
			c := p.Conversations[i]
			if c.SessionID == sessionID {
				return &c, nil
			}
			if strings.HasPrefix(c.SessionID, sessionID) {
				if match != nil {
					return nil, fmt.Errorf("session id prefix %q is ambiguous", sessionID)
				}
				match = &c
			}
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no conversation found for session %q", sessionID)
	}
	return match, nil
}

// DecodePath reconstructs a filesystem path from a dash-encoded project
// directory name.
func DecodePath(encoded string) string {
	if len(encoded) > 0 && encoded[0] == '-' {
		return "/" + strings.ReplaceAll(encoded[1:], "-", "/")
	}
	return encoded
}

func latestMtime(p Project) time.Time {
	var latest time.Time
	for _, c := range p.Conversations {
		if c.Mtime.After(latest) {
			latest = c.Mtime
		}
	}
	return latest
}
