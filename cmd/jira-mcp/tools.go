package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the jira-mcp server version and status. Use this to verify connectivity."),
	)
}

// createGetAuthStatusTool returns the get_auth_status tool definition
func createGetAuthStatusTool() mcp.Tool {
	return mcp.NewTool("get_auth_status",
		mcp.WithDescription("Report authentication and circuit breaker diagnostics: token freshness, tenant id, breaker state and counters."),
	)
}

// createGetIssueTool returns the get_issue tool definition
func createGetIssueTool() mcp.Tool {
	return mcp.NewTool("get_issue",
		mcp.WithDescription("Get a Jira issue by key, including status, assignee, description and labels."),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Issue key (e.g., 'PROJ-123')"),
		),
	)
}

// createSearchIssuesTool returns the search_issues tool definition
func createSearchIssuesTool() mcp.Tool {
	return mcp.NewTool("search_issues",
		mcp.WithDescription("Search Jira issues with a JQL query. Returns a summary table of matching issues."),
		mcp.WithString("jql",
			mcp.Required(),
			mcp.Description("JQL query (e.g., 'project = PROJ AND status = \"In Progress\"')"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum results to return (default: 25, max: 100)"),
		),
	)
}

// createCreateIssueTool returns the create_issue tool definition
func createCreateIssueTool() mcp.Tool {
	return mcp.NewTool("create_issue",
		mcp.WithDescription("Create a new Jira issue in a project."),
		mcp.WithString("project_key",
			mcp.Required(),
			mcp.Description("Project key (e.g., 'PROJ')"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("One-line issue summary"),
		),
		mcp.WithString("description",
			mcp.Description("Issue description (plain text)"),
		),
		mcp.WithString("issue_type",
			mcp.Description("Issue type: Task, Bug, Story (default: Task)"),
		),
		mcp.WithString("priority",
			mcp.Description("Priority name (e.g., 'High')"),
		),
		mcp.WithArray("labels",
			mcp.WithStringItems(),
			mcp.Description("Labels to apply"),
		),
	)
}

// createUpdateIssueTool returns the update_issue tool definition
func createUpdateIssueTool() mcp.Tool {
	return mcp.NewTool("update_issue",
		mcp.WithDescription("Update fields on an existing Jira issue."),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Issue key (e.g., 'PROJ-123')"),
		),
		mcp.WithString("summary",
			mcp.Description("New summary"),
		),
		mcp.WithString("description",
			mcp.Description("New description (plain text)"),
		),
		mcp.WithArray("labels",
			mcp.WithStringItems(),
			mcp.Description("Replacement label set"),
		),
	)
}

// createTransitionIssueTool returns the transition_issue tool definition
func createTransitionIssueTool() mcp.Tool {
	return mcp.NewTool("transition_issue",
		mcp.WithDescription("Move an issue through a workflow transition. Omit transition to list the available transitions."),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Issue key (e.g., 'PROJ-123')"),
		),
		mcp.WithString("transition",
			mcp.Description("Transition name or id to apply (e.g., 'Done'). Omit to list options."),
		),
	)
}

// createGetCommentsTool returns the get_comments tool definition
func createGetCommentsTool() mcp.Tool {
	return mcp.NewTool("get_comments",
		mcp.WithDescription("Get the comments on a Jira issue."),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Issue key (e.g., 'PROJ-123')"),
		),
	)
}

// createAddCommentTool returns the add_comment tool definition
func createAddCommentTool() mcp.Tool {
	return mcp.NewTool("add_comment",
		mcp.WithDescription("Add a comment to a Jira issue."),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Issue key (e.g., 'PROJ-123')"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Comment text"),
		),
	)
}

// createListBoardsTool returns the list_boards tool definition
func createListBoardsTool() mcp.Tool {
	return mcp.NewTool("list_boards",
		mcp.WithDescription("List the agile boards visible to this credential."),
	)
}

// createListSprintsTool returns the list_sprints tool definition
func createListSprintsTool() mcp.Tool {
	return mcp.NewTool("list_sprints",
		mcp.WithDescription("List sprints on an agile board."),
		mcp.WithNumber("board_id",
			mcp.Required(),
			mcp.Description("Board id (use list_boards to find it)"),
		),
		mcp.WithString("state",
			mcp.Description("Filter by state: active, future, closed (default: all)"),
		),
	)
}

// createCreateSprintTool returns the create_sprint tool definition
func createCreateSprintTool() mcp.Tool {
	return mcp.NewTool("create_sprint",
		mcp.WithDescription("Create a future sprint on an agile board."),
		mcp.WithNumber("board_id",
			mcp.Required(),
			mcp.Description("Board id the sprint belongs to"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Sprint name"),
		),
		mcp.WithString("goal",
			mcp.Description("Sprint goal"),
		),
	)
}

// createMoveToSprintTool returns the move_to_sprint tool definition
func createMoveToSprintTool() mcp.Tool {
	return mcp.NewTool("move_to_sprint",
		mcp.WithDescription("Move issues into a sprint."),
		mcp.WithNumber("sprint_id",
			mcp.Required(),
			mcp.Description("Target sprint id"),
		),
		mcp.WithArray("issue_keys",
			mcp.WithStringItems(),
			mcp.Required(),
			mcp.Description("Issue keys to move (e.g., ['PROJ-1', 'PROJ-2'])"),
		),
	)
}
