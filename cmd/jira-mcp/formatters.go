package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/jira-mcp/internal/clients/jira"
	"github.com/bobmcallan/jira-mcp/internal/models"
)

// formatIssue formats a single issue as markdown
func formatIssue(issue *models.Issue) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s: %s\n\n", issue.Key, issue.Summary))
	sb.WriteString(fmt.Sprintf("**Type:** %s\n", issue.IssueType))
	sb.WriteString(fmt.Sprintf("**Status:** %s\n", issue.Status))
	if issue.Priority != "" {
		sb.WriteString(fmt.Sprintf("**Priority:** %s\n", issue.Priority))
	}
	if issue.Assignee != "" {
		sb.WriteString(fmt.Sprintf("**Assignee:** %s\n", issue.Assignee))
	}
	if issue.Reporter != "" {
		sb.WriteString(fmt.Sprintf("**Reporter:** %s\n", issue.Reporter))
	}
	if len(issue.Labels) > 0 {
		sb.WriteString(fmt.Sprintf("**Labels:** %s\n", strings.Join(issue.Labels, ", ")))
	}
	if !issue.Updated.IsZero() {
		sb.WriteString(fmt.Sprintf("**Updated:** %s\n", issue.Updated.Format("2006-01-02 15:04")))
	}
	if issue.Description != "" {
		sb.WriteString(fmt.Sprintf("\n%s\n", issue.Description))
	}

	return sb.String()
}

// formatSearchResult formats a JQL search result as a markdown table
func formatSearchResult(jql string, result *models.SearchResult) string {
	if len(result.Issues) == 0 {
		return fmt.Sprintf("No issues matched `%s`.", jql)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d issue(s) for `%s` (showing %d):\n\n", result.Total, jql, len(result.Issues)))
	sb.WriteString("| Key | Type | Status | Assignee | Summary |\n")
	sb.WriteString("|-----|------|--------|----------|--------|\n")
	for _, issue := range result.Issues {
		assignee := issue.Assignee
		if assignee == "" {
			assignee = "—"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			issue.Key, issue.IssueType, issue.Status, assignee, issue.Summary))
	}
	return sb.String()
}

// formatTransitions lists the workflow transitions available on an issue
func formatTransitions(key string, transitions []*models.Transition) string {
	if len(transitions) == 0 {
		return fmt.Sprintf("No transitions available on %s.", key)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Available transitions for %s:\n\n", key))
	for _, t := range transitions {
		sb.WriteString(fmt.Sprintf("- **%s** (id %s) → %s\n", t.Name, t.ID, t.To))
	}
	return sb.String()
}

// formatComments formats issue comments as markdown
func formatComments(key string, comments []*models.Comment) string {
	if len(comments) == 0 {
		return fmt.Sprintf("No comments on %s.", key)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Comments on %s\n\n", key))
	for _, c := range comments {
		sb.WriteString(fmt.Sprintf("**%s** — %s\n\n%s\n\n---\n\n",
			c.Author, c.Created.Format("2006-01-02 15:04"), c.Body))
	}
	return strings.TrimSuffix(sb.String(), "---\n\n")
}

// formatBoards formats the board list
func formatBoards(boards []*models.Board) string {
	if len(boards) == 0 {
		return "No boards visible to this credential."
	}

	var sb strings.Builder
	sb.WriteString("| ID | Name | Type |\n")
	sb.WriteString("|----|------|------|\n")
	for _, b := range boards {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s |\n", b.ID, b.Name, b.Type))
	}
	return sb.String()
}

// formatSprints formats the sprint list for a board
func formatSprints(boardID int, sprints []*models.Sprint) string {
	if len(sprints) == 0 {
		return fmt.Sprintf("No sprints on board %d.", boardID)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Sprints on board %d:\n\n", boardID))
	for _, s := range sprints {
		dates := ""
		if s.StartDate != nil && s.EndDate != nil {
			dates = fmt.Sprintf(" (%s → %s)", s.StartDate.Format("Jan 2"), s.EndDate.Format("Jan 2"))
		}
		sb.WriteString(fmt.Sprintf("- **%s** [id %d, %s]%s", s.Name, s.ID, s.State, dates))
		if s.Goal != "" {
			sb.WriteString(fmt.Sprintf(" — %s", s.Goal))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatAuthStatus renders authentication and breaker diagnostics
func formatAuthStatus(client *jira.Client) string {
	var sb strings.Builder

	authority := client.Authority()
	sb.WriteString("# Auth Status\n\n")

	if authority.AccessToken() == "" {
		sb.WriteString("**Token:** absent\n")
	} else {
		sb.WriteString("**Token:** present\n")
	}
	if lastRefreshed := authority.LastRefreshedAt(); !lastRefreshed.IsZero() {
		sb.WriteString(fmt.Sprintf("**Last refreshed:** %s\n", lastRefreshed.Format(time.RFC3339)))
	}
	if cloudID := authority.CloudID(); cloudID != "" {
		sb.WriteString(fmt.Sprintf("**Cloud ID:** %s\n", cloudID))
	} else {
		sb.WriteString("**Cloud ID:** not yet resolved\n")
	}

	snap := client.Breaker().State()
	sb.WriteString(fmt.Sprintf("\n**Circuit breaker:** %s\n", snap.State))
	sb.WriteString(fmt.Sprintf("**Failure count:** %d\n", snap.FailureCount))
	sb.WriteString(fmt.Sprintf("**Success count:** %d\n", snap.SuccessCount))
	if !snap.NextAttemptAt.IsZero() {
		sb.WriteString(fmt.Sprintf("**Next attempt at:** %s\n", snap.NextAttemptAt.Format(time.RFC3339)))
	}

	return sb.String()
}
