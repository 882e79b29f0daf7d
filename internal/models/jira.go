package models

import "time"

// Issue is the flattened view of a Jira issue returned by the client.
type Issue struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	IssueType   string    `json:"issue_type"`
	Priority    string    `json:"priority,omitempty"`
	Assignee    string    `json:"assignee,omitempty"`
	Reporter    string    `json:"reporter,omitempty"`
	Labels      []string  `json:"labels,omitempty"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

// SearchResult holds one page of a JQL search.
type SearchResult struct {
	Total      int      `json:"total"`
	StartAt    int      `json:"start_at"`
	MaxResults int      `json:"max_results"`
	Issues     []*Issue `json:"issues"`
}

// Comment is a single issue comment.
type Comment struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Body    string    `json:"body"`
	Created time.Time `json:"created"`
}

// Transition is an available workflow transition for an issue.
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	To   string `json:"to"`
}

// Board is an agile board.
type Board struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Sprint is an agile sprint on a board.
type Sprint struct {
	ID        int        `json:"id"`
	BoardID   int        `json:"board_id"`
	Name      string     `json:"name"`
	State     string     `json:"state"`
	Goal      string     `json:"goal,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}
