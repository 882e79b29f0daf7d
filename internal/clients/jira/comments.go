package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bobmcallan/jira-mcp/internal/models"
)

type commentPayload struct {
	ID     string `json:"id"`
	Author struct {
		DisplayName string `json:"displayName"`
	} `json:"author"`
	Body    *adf   `json:"body"`
	Created string `json:"created"`
}

func (p *commentPayload) toModel() *models.Comment {
	return &models.Comment{
		ID:      p.ID,
		Author:  p.Author.DisplayName,
		Body:    p.Body.plainText(),
		Created: parseJiraTime(p.Created),
	}
}

// GetComments retrieves comments on an issue
func (c *Client) GetComments(ctx context.Context, key string) ([]*models.Comment, error) {
	path, err := c.apiPath(ctx, fmt.Sprintf("/issue/%s/comment", url.PathEscape(key)))
	if err != nil {
		return nil, err
	}

	body, err := c.Execute(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Comments []*commentPayload `json:"comments"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}

	comments := make([]*models.Comment, len(resp.Comments))
	for i, p := range resp.Comments {
		comments[i] = p.toModel()
	}
	return comments, nil
}

// AddComment posts a comment on an issue
func (c *Client) AddComment(ctx context.Context, key, body string) (*models.Comment, error) {
	if body == "" {
		return nil, fmt.Errorf("comment body is required")
	}

	path, err := c.apiPath(ctx, fmt.Sprintf("/issue/%s/comment", url.PathEscape(key)))
	if err != nil {
		return nil, err
	}

	respBody, err := c.Execute(ctx, http.MethodPost, path, map[string]interface{}{
		"body": adfDocument(body),
	})
	if err != nil {
		return nil, err
	}

	var payload commentPayload
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode comment: %w", err)
	}
	return payload.toModel(), nil
}
