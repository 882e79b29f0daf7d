package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bobmcallan/jira-mcp/internal/interfaces"
	"github.com/bobmcallan/jira-mcp/internal/models"
)

// issueFields is the field set requested for issue reads.
const issueFields = "summary,description,status,issuetype,priority,assignee,reporter,labels,created,updated"

type issuePayload struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Fields struct {
		Summary     string `json:"summary"`
		Description *adf   `json:"description"`
		Status      struct {
			Name string `json:"name"`
		} `json:"status"`
		IssueType struct {
			Name string `json:"name"`
		} `json:"issuetype"`
		Priority *struct {
			Name string `json:"name"`
		} `json:"priority"`
		Assignee *struct {
			DisplayName string `json:"displayName"`
		} `json:"assignee"`
		Reporter *struct {
			DisplayName string `json:"displayName"`
		} `json:"reporter"`
		Labels  []string `json:"labels"`
		Created string   `json:"created"`
		Updated string   `json:"updated"`
	} `json:"fields"`
}

func (p *issuePayload) toModel() *models.Issue {
	issue := &models.Issue{
		ID:          p.ID,
		Key:         p.Key,
		Summary:     p.Fields.Summary,
		Description: p.Fields.Description.plainText(),
		Status:      p.Fields.Status.Name,
		IssueType:   p.Fields.IssueType.Name,
		Labels:      p.Fields.Labels,
		Created:     parseJiraTime(p.Fields.Created),
		Updated:     parseJiraTime(p.Fields.Updated),
	}
	if p.Fields.Priority != nil {
		issue.Priority = p.Fields.Priority.Name
	}
	if p.Fields.Assignee != nil {
		issue.Assignee = p.Fields.Assignee.DisplayName
	}
	if p.Fields.Reporter != nil {
		issue.Reporter = p.Fields.Reporter.DisplayName
	}
	return issue
}

// GetIssue retrieves a single issue by key
func (c *Client) GetIssue(ctx context.Context, key string) (*models.Issue, error) {
	path, err := c.apiPath(ctx, fmt.Sprintf("/issue/%s?fields=%s", url.PathEscape(key), issueFields))
	if err != nil {
		return nil, err
	}

	body, err := c.Execute(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var payload issuePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode issue: %w", err)
	}
	return payload.toModel(), nil
}

// SearchIssues runs a JQL query
func (c *Client) SearchIssues(ctx context.Context, jql string, maxResults int) (*models.SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 50
	}

	path, err := c.apiPath(ctx, "/search")
	if err != nil {
		return nil, err
	}

	req := map[string]interface{}{
		"jql":        jql,
		"maxResults": maxResults,
		"fields":     []string{"summary", "status", "issuetype", "priority", "assignee", "reporter", "labels", "created", "updated"},
	}

	body, err := c.Execute(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}

	var resp struct {
		StartAt    int             `json:"startAt"`
		MaxResults int             `json:"maxResults"`
		Total      int             `json:"total"`
		Issues     []*issuePayload `json:"issues"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search result: %w", err)
	}

	result := &models.SearchResult{
		Total:      resp.Total,
		StartAt:    resp.StartAt,
		MaxResults: resp.MaxResults,
		Issues:     make([]*models.Issue, len(resp.Issues)),
	}
	for i, p := range resp.Issues {
		result.Issues[i] = p.toModel()
	}
	return result, nil
}

// CreateIssue creates an issue and returns it with the server-assigned key
func (c *Client) CreateIssue(ctx context.Context, req *interfaces.CreateIssueRequest) (*models.Issue, error) {
	if req.ProjectKey == "" || req.Summary == "" {
		return nil, fmt.Errorf("project key and summary are required")
	}

	issueType := req.IssueType
	if issueType == "" {
		issueType = "Task"
	}

	fields := map[string]interface{}{
		"project":   map[string]string{"key": req.ProjectKey},
		"summary":   req.Summary,
		"issuetype": map[string]string{"name": issueType},
	}
	if req.Description != "" {
		fields["description"] = adfDocument(req.Description)
	}
	if req.Priority != "" {
		fields["priority"] = map[string]string{"name": req.Priority}
	}
	if len(req.Labels) > 0 {
		fields["labels"] = req.Labels
	}
	if req.Assignee != "" {
		fields["assignee"] = map[string]string{"id": req.Assignee}
	}

	path, err := c.apiPath(ctx, "/issue")
	if err != nil {
		return nil, err
	}

	body, err := c.Execute(ctx, http.MethodPost, path, map[string]interface{}{"fields": fields})
	if err != nil {
		return nil, err
	}

	var created struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to decode created issue: %w", err)
	}

	return &models.Issue{
		ID:        created.ID,
		Key:       created.Key,
		Summary:   req.Summary,
		IssueType: issueType,
		Labels:    req.Labels,
	}, nil
}

// UpdateIssue applies field updates to an issue
func (c *Client) UpdateIssue(ctx context.Context, key string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return fmt.Errorf("no fields to update")
	}

	// Plain-text descriptions are converted to document form.
	if desc, ok := fields["description"].(string); ok {
		fields["description"] = adfDocument(desc)
	}

	path, err := c.apiPath(ctx, fmt.Sprintf("/issue/%s", url.PathEscape(key)))
	if err != nil {
		return err
	}

	_, err = c.Execute(ctx, http.MethodPut, path, map[string]interface{}{"fields": fields})
	return err
}

// GetTransitions lists the available workflow transitions for an issue
func (c *Client) GetTransitions(ctx context.Context, key string) ([]*models.Transition, error) {
	path, err := c.apiPath(ctx, fmt.Sprintf("/issue/%s/transitions", url.PathEscape(key)))
	if err != nil {
		return nil, err
	}

	body, err := c.Execute(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Transitions []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			To   struct {
				Name string `json:"name"`
			} `json:"to"`
		} `json:"transitions"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode transitions: %w", err)
	}

	transitions := make([]*models.Transition, len(resp.Transitions))
	for i, t := range resp.Transitions {
		transitions[i] = &models.Transition{
			ID:   t.ID,
			Name: t.Name,
			To:   t.To.Name,
		}
	}
	return transitions, nil
}

// TransitionIssue moves an issue through a workflow transition
func (c *Client) TransitionIssue(ctx context.Context, key, transitionID string) error {
	path, err := c.apiPath(ctx, fmt.Sprintf("/issue/%s/transitions", url.PathEscape(key)))
	if err != nil {
		return err
	}

	req := map[string]interface{}{
		"transition": map[string]string{"id": transitionID},
	}
	_, err = c.Execute(ctx, http.MethodPost, path, req)
	return err
}
