package main

import (
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/jira-mcp/internal/models"
)

func TestFormatIssue(t *testing.T) {
	issue := &models.Issue{
		Key:         "PROJ-42",
		Summary:     "Checkout button unresponsive",
		IssueType:   "Bug",
		Status:      "In Progress",
		Priority:    "High",
		Assignee:    "Dana",
		Labels:      []string{"checkout", "ui"},
		Description: "Clicking pay does nothing on Safari.",
		Updated:     time.Date(2026, 8, 2, 11, 30, 0, 0, time.UTC),
	}

	output := formatIssue(issue)

	if !strings.Contains(output, "# PROJ-42: Checkout button unresponsive") {
		t.Error("missing issue heading")
	}
	if !strings.Contains(output, "**Status:** In Progress") {
		t.Error("missing status line")
	}
	if !strings.Contains(output, "checkout, ui") {
		t.Error("missing labels")
	}
	if !strings.Contains(output, "Clicking pay does nothing") {
		t.Error("missing description body")
	}
	if strings.Contains(output, "**Reporter:**") {
		t.Error("empty reporter should be omitted")
	}
}

func TestFormatSearchResult(t *testing.T) {
	result := &models.SearchResult{
		Total: 2,
		Issues: []*models.Issue{
			{Key: "PROJ-1", IssueType: "Bug", Status: "Open", Assignee: "Dana", Summary: "First"},
			{Key: "PROJ-2", IssueType: "Task", Status: "Done", Summary: "Second"},
		},
	}

	output := formatSearchResult("project = PROJ", result)

	if !strings.Contains(output, "Found 2 issue(s)") {
		t.Error("missing result count")
	}
	if !strings.Contains(output, "| Key | Type | Status | Assignee | Summary |") {
		t.Error("missing table header")
	}
	if !strings.Contains(output, "| PROJ-1 | Bug | Open | Dana | First |") {
		t.Error("missing first row")
	}
	// Unassigned issues render a placeholder rather than an empty cell.
	if !strings.Contains(output, "| PROJ-2 | Task | Done | — | Second |") {
		t.Error("missing unassigned placeholder")
	}
}

func TestFormatSearchResultEmpty(t *testing.T) {
	output := formatSearchResult("project = NONE", &models.SearchResult{})
	if !strings.Contains(output, "No issues matched") {
		t.Errorf("unexpected empty-result output: %s", output)
	}
}

func TestFormatTransitions(t *testing.T) {
	transitions := []*models.Transition{
		{ID: "11", Name: "Start Progress", To: "In Progress"},
		{ID: "31", Name: "Done", To: "Done"},
	}

	output := formatTransitions("PROJ-1", transitions)

	if !strings.Contains(output, "Start Progress") || !strings.Contains(output, "id 11") {
		t.Errorf("missing transition entry: %s", output)
	}

	if out := formatTransitions("PROJ-1", nil); !strings.Contains(out, "No transitions") {
		t.Errorf("unexpected empty output: %s", out)
	}
}

func TestFormatComments(t *testing.T) {
	comments := []*models.Comment{
		{ID: "1", Author: "Dana", Body: "Reproduced on staging.", Created: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)},
		{ID: "2", Author: "Sam", Body: "Fix is in review.", Created: time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)},
	}

	output := formatComments("PROJ-1", comments)

	if !strings.Contains(output, "**Dana**") || !strings.Contains(output, "Reproduced on staging.") {
		t.Error("missing first comment")
	}
	if strings.HasSuffix(strings.TrimSpace(output), "---") {
		t.Error("trailing separator should be trimmed")
	}
}

func TestFormatSprints(t *testing.T) {
	start := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	sprints := []*models.Sprint{
		{ID: 7, Name: "Sprint 12", State: "active", Goal: "Ship checkout fix", StartDate: &start, EndDate: &end},
		{ID: 8, Name: "Sprint 13", State: "future"},
	}

	output := formatSprints(3, sprints)

	if !strings.Contains(output, "Sprint 12") || !strings.Contains(output, "Ship checkout fix") {
		t.Errorf("missing sprint detail: %s", output)
	}
	if !strings.Contains(output, "Aug 3") {
		t.Errorf("missing sprint dates: %s", output)
	}
	if !strings.Contains(output, "[id 8, future]") {
		t.Errorf("missing dateless sprint: %s", output)
	}
}

func TestFormatBoards(t *testing.T) {
	output := formatBoards([]*models.Board{{ID: 3, Name: "Platform", Type: "scrum"}})
	if !strings.Contains(output, "| 3 | Platform | scrum |") {
		t.Errorf("missing board row: %s", output)
	}

	if out := formatBoards(nil); !strings.Contains(out, "No boards") {
		t.Errorf("unexpected empty output: %s", out)
	}
}
