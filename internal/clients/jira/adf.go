package jira

import (
	"strings"
	"time"
)

// adf is the minimal Atlassian Document Format tree this client needs for
// descriptions and comment bodies.
type adf struct {
	Type    string `json:"type"`
	Version int    `json:"version,omitempty"`
	Text    string `json:"text,omitempty"`
	Content []adf  `json:"content,omitempty"`
}

// adfDocument wraps plain text in a single-paragraph document.
func adfDocument(text string) *adf {
	return &adf{
		Type:    "doc",
		Version: 1,
		Content: []adf{
			{
				Type: "paragraph",
				Content: []adf{
					{Type: "text", Text: text},
				},
			},
		},
	}
}

// plainText flattens a document to text, one line per paragraph. Formatting
// marks are discarded.
func (a *adf) plainText() string {
	if a == nil {
		return ""
	}

	var lines []string
	var current strings.Builder

	var walk func(n *adf)
	walk = func(n *adf) {
		if n.Type == "text" {
			current.WriteString(n.Text)
		}
		for i := range n.Content {
			walk(&n.Content[i])
		}
		if n.Type == "paragraph" || n.Type == "heading" {
			lines = append(lines, current.String())
			current.Reset()
		}
	}
	walk(a)

	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// jiraTimeFormat is the timestamp layout used by the Jira REST API.
const jiraTimeFormat = "2006-01-02T15:04:05.999-0700"

// parseJiraTime parses a Jira timestamp, returning the zero time on failure.
func parseJiraTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(jiraTimeFormat, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
