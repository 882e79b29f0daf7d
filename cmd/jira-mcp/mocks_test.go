package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bobmcallan/jira-mcp/internal/common"
	"github.com/bobmcallan/jira-mcp/internal/interfaces"
	"github.com/bobmcallan/jira-mcp/internal/models"
)

func testLogger() *common.Logger {
	return common.NewSilentLogger()
}

// --- mockJiraClient ---

type mockJiraClient struct {
	getIssueFn       func(ctx context.Context, key string) (*models.Issue, error)
	searchIssuesFn   func(ctx context.Context, jql string, maxResults int) (*models.SearchResult, error)
	createIssueFn    func(ctx context.Context, req *interfaces.CreateIssueRequest) (*models.Issue, error)
	updateIssueFn    func(ctx context.Context, key string, fields map[string]interface{}) error
	getTransitionsFn func(ctx context.Context, key string) ([]*models.Transition, error)
	transitionFn     func(ctx context.Context, key, transitionID string) error
	getCommentsFn    func(ctx context.Context, key string) ([]*models.Comment, error)
	addCommentFn     func(ctx context.Context, key, body string) (*models.Comment, error)
	getBoardsFn      func(ctx context.Context) ([]*models.Board, error)
	getSprintsFn     func(ctx context.Context, boardID int, state string) ([]*models.Sprint, error)
	createSprintFn   func(ctx context.Context, boardID int, name, goal string) (*models.Sprint, error)
	moveToSprintFn   func(ctx context.Context, sprintID int, issueKeys []string) error
}

func (m *mockJiraClient) Execute(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *mockJiraClient) GetIssue(ctx context.Context, key string) (*models.Issue, error) {
	if m.getIssueFn != nil {
		return m.getIssueFn(ctx, key)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockJiraClient) SearchIssues(ctx context.Context, jql string, maxResults int) (*models.SearchResult, error) {
	if m.searchIssuesFn != nil {
		return m.searchIssuesFn(ctx, jql, maxResults)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockJiraClient) CreateIssue(ctx context.Context, req *interfaces.CreateIssueRequest) (*models.Issue, error) {
	if m.createIssueFn != nil {
		return m.createIssueFn(ctx, req)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockJiraClient) UpdateIssue(ctx context.Context, key string, fields map[string]interface{}) error {
	if m.updateIssueFn != nil {
		return m.updateIssueFn(ctx, key, fields)
	}
	return fmt.Errorf("not implemented")
}

func (m *mockJiraClient) GetTransitions(ctx context.Context, key string) ([]*models.Transition, error) {
	if m.getTransitionsFn != nil {
		return m.getTransitionsFn(ctx, key)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockJiraClient) TransitionIssue(ctx context.Context, key, transitionID string) error {
	if m.transitionFn != nil {
		return m.transitionFn(ctx, key, transitionID)
	}
	return fmt.Errorf("not implemented")
}

func (m *mockJiraClient) GetComments(ctx context.Context, key string) ([]*models.Comment, error) {
	if m.getCommentsFn != nil {
		return m.getCommentsFn(ctx, key)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockJiraClient) AddComment(ctx context.Context, key, body string) (*models.Comment, error) {
	if m.addCommentFn != nil {
		return m.addCommentFn(ctx, key, body)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockJiraClient) GetBoards(ctx context.Context) ([]*models.Board, error) {
	if m.getBoardsFn != nil {
		return m.getBoardsFn(ctx)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockJiraClient) GetSprints(ctx context.Context, boardID int, state string) ([]*models.Sprint, error) {
	if m.getSprintsFn != nil {
		return m.getSprintsFn(ctx, boardID, state)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockJiraClient) CreateSprint(ctx context.Context, boardID int, name, goal string) (*models.Sprint, error) {
	if m.createSprintFn != nil {
		return m.createSprintFn(ctx, boardID, name, goal)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockJiraClient) MoveIssuesToSprint(ctx context.Context, sprintID int, issueKeys []string) error {
	if m.moveToSprintFn != nil {
		return m.moveToSprintFn(ctx, sprintID, issueKeys)
	}
	return fmt.Errorf("not implemented")
}

var _ interfaces.JiraClient = (*mockJiraClient)(nil)
