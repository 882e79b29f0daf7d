package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/jira-mcp/internal/clients/jira"
	"github.com/bobmcallan/jira-mcp/internal/common"
	"github.com/bobmcallan/jira-mcp/internal/interfaces"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("jira-mcp Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleGetAuthStatus implements the get_auth_status tool
func handleGetAuthStatus(client *jira.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return textResult(formatAuthStatus(client)), nil
	}
}

// handleGetIssue implements the get_issue tool
func handleGetIssue(client interfaces.JiraClient, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := request.RequireString("key")
		if err != nil || key == "" {
			return errorResult("Error: key parameter is required"), nil
		}

		issue, err := client.GetIssue(ctx, key)
		if err != nil {
			logger.Error().Err(err).Str("key", key).Msg("Get issue failed")
			return toolError("get issue", err), nil
		}

		return textResult(formatIssue(issue)), nil
	}
}

// handleSearchIssues implements the search_issues tool
func handleSearchIssues(client interfaces.JiraClient, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jql, err := request.RequireString("jql")
		if err != nil || jql == "" {
			return errorResult("Error: jql parameter is required"), nil
		}

		maxResults := request.GetInt("max_results", 25)
		if maxResults > 100 {
			maxResults = 100
		}

		result, err := client.SearchIssues(ctx, jql, maxResults)
		if err != nil {
			logger.Error().Err(err).Str("jql", jql).Msg("Search failed")
			return toolError("search", err), nil
		}

		return textResult(formatSearchResult(jql, result)), nil
	}
}

// handleCreateIssue implements the create_issue tool
func handleCreateIssue(client interfaces.JiraClient, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectKey, err := request.RequireString("project_key")
		if err != nil || projectKey == "" {
			return errorResult("Error: project_key parameter is required"), nil
		}
		summary, err := request.RequireString("summary")
		if err != nil || summary == "" {
			return errorResult("Error: summary parameter is required"), nil
		}

		issue, err := client.CreateIssue(ctx, &interfaces.CreateIssueRequest{
			ProjectKey:  projectKey,
			Summary:     summary,
			Description: request.GetString("description", ""),
			IssueType:   request.GetString("issue_type", "Task"),
			Priority:    request.GetString("priority", ""),
			Labels:      request.GetStringSlice("labels", nil),
		})
		if err != nil {
			logger.Error().Err(err).Str("project", projectKey).Msg("Create issue failed")
			return toolError("create issue", err), nil
		}

		return textResult(fmt.Sprintf("Created **%s**: %s", issue.Key, issue.Summary)), nil
	}
}

// handleUpdateIssue implements the update_issue tool
func handleUpdateIssue(client interfaces.JiraClient, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := request.RequireString("key")
		if err != nil || key == "" {
			return errorResult("Error: key parameter is required"), nil
		}

		fields := map[string]interface{}{}
		if v := request.GetString("summary", ""); v != "" {
			fields["summary"] = v
		}
		if v := request.GetString("description", ""); v != "" {
			fields["description"] = v
		}
		if v := request.GetStringSlice("labels", nil); v != nil {
			fields["labels"] = v
		}
		if len(fields) == 0 {
			return errorResult("Error: nothing to update — provide summary, description or labels"), nil
		}

		if err := client.UpdateIssue(ctx, key, fields); err != nil {
			logger.Error().Err(err).Str("key", key).Msg("Update issue failed")
			return toolError("update issue", err), nil
		}

		return textResult(fmt.Sprintf("Updated **%s**", key)), nil
	}
}

// handleTransitionIssue implements the transition_issue tool. Without a
// transition argument it lists the available transitions instead.
func handleTransitionIssue(client interfaces.JiraClient, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := request.RequireString("key")
		if err != nil || key == "" {
			return errorResult("Error: key parameter is required"), nil
		}

		transitions, err := client.GetTransitions(ctx, key)
		if err != nil {
			logger.Error().Err(err).Str("key", key).Msg("Get transitions failed")
			return toolError("get transitions", err), nil
		}

		want := request.GetString("transition", "")
		if want == "" {
			return textResult(formatTransitions(key, transitions)), nil
		}

		var transitionID string
		for _, t := range transitions {
			if t.ID == want || strings.EqualFold(t.Name, want) {
				transitionID = t.ID
				break
			}
		}
		if transitionID == "" {
			return errorResult(fmt.Sprintf("Error: no transition %q available on %s.\n\n%s",
				want, key, formatTransitions(key, transitions))), nil
		}

		if err := client.TransitionIssue(ctx, key, transitionID); err != nil {
			logger.Error().Err(err).Str("key", key).Str("transition", want).Msg("Transition failed")
			return toolError("transition issue", err), nil
		}

		return textResult(fmt.Sprintf("Transitioned **%s** via %q", key, want)), nil
	}
}

// handleGetComments implements the get_comments tool
func handleGetComments(client interfaces.JiraClient, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := request.RequireString("key")
		if err != nil || key == "" {
			return errorResult("Error: key parameter is required"), nil
		}

		comments, err := client.GetComments(ctx, key)
		if err != nil {
			logger.Error().Err(err).Str("key", key).Msg("Get comments failed")
			return toolError("get comments", err), nil
		}

		return textResult(formatComments(key, comments)), nil
	}
}

// handleAddComment implements the add_comment tool
func handleAddComment(client interfaces.JiraClient, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := request.RequireString("key")
		if err != nil || key == "" {
			return errorResult("Error: key parameter is required"), nil
		}
		body, err := request.RequireString("body")
		if err != nil || body == "" {
			return errorResult("Error: body parameter is required"), nil
		}

		comment, err := client.AddComment(ctx, key, body)
		if err != nil {
			logger.Error().Err(err).Str("key", key).Msg("Add comment failed")
			return toolError("add comment", err), nil
		}

		return textResult(fmt.Sprintf("Commented on **%s** (comment id %s)", key, comment.ID)), nil
	}
}

// handleListBoards implements the list_boards tool
func handleListBoards(client interfaces.JiraClient, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		boards, err := client.GetBoards(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("List boards failed")
			return toolError("list boards", err), nil
		}

		return textResult(formatBoards(boards)), nil
	}
}

// handleListSprints implements the list_sprints tool
func handleListSprints(client interfaces.JiraClient, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		boardID, err := request.RequireInt("board_id")
		if err != nil {
			return errorResult("Error: board_id parameter is required"), nil
		}

		sprints, err := client.GetSprints(ctx, boardID, request.GetString("state", ""))
		if err != nil {
			logger.Error().Err(err).Int("board_id", boardID).Msg("List sprints failed")
			return toolError("list sprints", err), nil
		}

		return textResult(formatSprints(boardID, sprints)), nil
	}
}

// handleCreateSprint implements the create_sprint tool
func handleCreateSprint(client interfaces.JiraClient, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		boardID, err := request.RequireInt("board_id")
		if err != nil {
			return errorResult("Error: board_id parameter is required"), nil
		}
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}

		sprint, err := client.CreateSprint(ctx, boardID, name, request.GetString("goal", ""))
		if err != nil {
			logger.Error().Err(err).Int("board_id", boardID).Msg("Create sprint failed")
			return toolError("create sprint", err), nil
		}

		return textResult(fmt.Sprintf("Created sprint **%s** (id %d, state %s)", sprint.Name, sprint.ID, sprint.State)), nil
	}
}

// handleMoveToSprint implements the move_to_sprint tool
func handleMoveToSprint(client interfaces.JiraClient, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sprintID, err := request.RequireInt("sprint_id")
		if err != nil {
			return errorResult("Error: sprint_id parameter is required"), nil
		}
		issueKeys := request.GetStringSlice("issue_keys", nil)
		if len(issueKeys) == 0 {
			return errorResult("Error: issue_keys parameter is required"), nil
		}

		if err := client.MoveIssuesToSprint(ctx, sprintID, issueKeys); err != nil {
			logger.Error().Err(err).Int("sprint_id", sprintID).Msg("Move to sprint failed")
			return toolError("move to sprint", err), nil
		}

		return textResult(fmt.Sprintf("Moved %d issue(s) to sprint %d", len(issueKeys), sprintID)), nil
	}
}

// Helper functions

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// toolError renders an operation failure, flagging circuit-open rejections
// as transient so the agent knows to retry later rather than re-shape the
// request.
func toolError(op string, err error) *mcp.CallToolResult {
	var coe *jira.CircuitOpenError
	if errors.As(err, &coe) {
		return errorResult(fmt.Sprintf("Jira is temporarily unavailable (circuit open until %s). Retry later.",
			coe.RetryAfter.Format("15:04:05")))
	}
	return errorResult(fmt.Sprintf("Error: %s failed: %v", op, err))
}
