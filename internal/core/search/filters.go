package search

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Filters are the structured parts of a search query.
type Filters struct {
	Query     string // the remaining search text
	Project   string // substring match on project path
	Role      string // user, assistant, tool, summary
	After     time.Time
	Before    time.Time
	HasAfter  bool
	HasBefore bool
}

// ParseQuery extracts filters from a query string. Supported syntax:
//
//	project:<path>       restrict to a project
//	role:<role>          restrict to a message role
//	after:<date>         messages after this date
//	before:<date>        messages before this date
//
// Dates accept natural language ("yesterday", "last monday") as well as
// ISO forms.
func ParseQuery(query string) Filters {
	var f Filters

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	var queryParts []string
	for _, token := range strings.Fields(query) {
		switch {
		case strings.HasPrefix(token, "project:"):
			f.Project = strings.TrimPrefix(token, "project:")
		case strings.HasPrefix(token, "role:"):
			f.Role = strings.TrimPrefix(token, "role:")
		case strings.HasPrefix(token, "after:"):
			if parsed := parseDate(w, strings.TrimPrefix(token, "after:")); parsed != nil {
				f.After = *parsed
				f.HasAfter = true
			}
		case strings.HasPrefix(token, "before:"):
			if parsed := parseDate(w, strings.TrimPrefix(token, "before:")); parsed != nil {
				f.Before = *parsed
				f.HasBefore = true
			}
		default:
			queryParts = append(queryParts, token)
		}
	}

	f.Query = strings.Join(queryParts, " ")
	return f
}

func parseDate(w *when.Parser, s string) *time.Time {
	// ISO dates first; when's rules are for the rest
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	// when treats dashes as separators, so "last-week" works as "last week"
	natural := strings.ReplaceAll(s, "-", " ")
	result, err := w.Parse(natural, time.Now())
	if err != nil || result == nil {
		return nil
	}
	return &result.Time
}
