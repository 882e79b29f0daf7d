package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/jira-mcp/internal/auth"
	"github.com/bobmcallan/jira-mcp/internal/clients/jira"
	"github.com/bobmcallan/jira-mcp/internal/common"
	"github.com/bobmcallan/jira-mcp/internal/resilience"
)

func main() {
	configPath := os.Getenv("JIRAMCP_CONFIG")

	config, err := common.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol; the logger writes to stderr.
	logger := common.NewLogger(config.Logging.Level)

	authority := auth.NewAuthority(config.Atlassian, logger)
	breaker := resilience.NewCircuitBreaker(config.Breaker, logger)

	client := jira.NewClient(authority,
		jira.WithBaseURL(config.Atlassian.BaseURL),
		jira.WithLogger(logger),
		jira.WithRateLimit(config.Atlassian.RateLimit),
		jira.WithTimeout(config.Atlassian.GetTimeout()),
		jira.WithBreaker(breaker),
		jira.WithBackoff(&resilience.BackoffPolicy{
			InitialDelay: config.Retry.GetInitialDelay(),
			Multiplier:   config.Retry.Multiplier,
			MaxDelay:     config.Retry.GetMaxDelay(),
			MaxJitter:    config.Retry.GetMaxJitter(),
		}),
		jira.WithMaxRetries(config.Retry.MaxRetries),
	)

	mcpServer := server.NewMCPServer(
		"jira-mcp",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createGetVersionTool(), handleGetVersion())
	mcpServer.AddTool(createGetAuthStatusTool(), handleGetAuthStatus(client))
	mcpServer.AddTool(createGetIssueTool(), handleGetIssue(client, logger))
	mcpServer.AddTool(createSearchIssuesTool(), handleSearchIssues(client, logger))
	mcpServer.AddTool(createCreateIssueTool(), handleCreateIssue(client, logger))
	mcpServer.AddTool(createUpdateIssueTool(), handleUpdateIssue(client, logger))
	mcpServer.AddTool(createTransitionIssueTool(), handleTransitionIssue(client, logger))
	mcpServer.AddTool(createGetCommentsTool(), handleGetComments(client, logger))
	mcpServer.AddTool(createAddCommentTool(), handleAddComment(client, logger))
	mcpServer.AddTool(createListBoardsTool(), handleListBoards(client, logger))
	mcpServer.AddTool(createListSprintsTool(), handleListSprints(client, logger))
	mcpServer.AddTool(createCreateSprintTool(), handleCreateSprint(client, logger))
	mcpServer.AddTool(createMoveToSprintTool(), handleMoveToSprint(client, logger))

	logger.Info().
		Str("version", common.GetFullVersion()).
		Int("effective_requests_to_open", config.Breaker.EffectiveRequestsToOpen(config.Retry.MaxRetries)).
		Msg("jira-mcp ready on stdio")

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error().Err(err).Msg("MCP server exited")
		os.Exit(1)
	}
}
