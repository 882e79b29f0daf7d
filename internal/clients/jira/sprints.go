package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bobmcallan/jira-mcp/internal/models"
)

// GetBoards lists agile boards
func (c *Client) GetBoards(ctx context.Context) ([]*models.Board, error) {
	path, err := c.agilePath(ctx, "/board")
	if err != nil {
		return nil, err
	}

	body, err := c.Execute(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Values []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"values"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode boards: %w", err)
	}

	boards := make([]*models.Board, len(resp.Values))
	for i, b := range resp.Values {
		boards[i] = &models.Board{
			ID:   b.ID,
			Name: b.Name,
			Type: b.Type,
		}
	}
	return boards, nil
}

type sprintPayload struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	State         string `json:"state"`
	Goal          string `json:"goal"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	OriginBoardID int    `json:"originBoardId"`
}

func (p *sprintPayload) toModel() *models.Sprint {
	sprint := &models.Sprint{
		ID:      p.ID,
		BoardID: p.OriginBoardID,
		Name:    p.Name,
		State:   p.State,
		Goal:    p.Goal,
	}
	if t := parseJiraTime(p.StartDate); !t.IsZero() {
		sprint.StartDate = &t
	}
	if t := parseJiraTime(p.EndDate); !t.IsZero() {
		sprint.EndDate = &t
	}
	return sprint
}

// GetSprints lists sprints on a board, optionally filtered by state
// (active, future, closed)
func (c *Client) GetSprints(ctx context.Context, boardID int, state string) ([]*models.Sprint, error) {
	suffix := fmt.Sprintf("/board/%d/sprint", boardID)
	if state != "" {
		suffix += "?state=" + url.QueryEscape(state)
	}

	path, err := c.agilePath(ctx, suffix)
	if err != nil {
		return nil, err
	}

	body, err := c.Execute(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Values []*sprintPayload `json:"values"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode sprints: %w", err)
	}

	sprints := make([]*models.Sprint, len(resp.Values))
	for i, p := range resp.Values {
		sprints[i] = p.toModel()
	}
	return sprints, nil
}

// CreateSprint creates a sprint on a board
func (c *Client) CreateSprint(ctx context.Context, boardID int, name, goal string) (*models.Sprint, error) {
	if name == "" {
		return nil, fmt.Errorf("sprint name is required")
	}

	path, err := c.agilePath(ctx, "/sprint")
	if err != nil {
		return nil, err
	}

	req := map[string]interface{}{
		"name":          name,
		"originBoardId": boardID,
	}
	if goal != "" {
		req["goal"] = goal
	}

	body, err := c.Execute(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}

	var payload sprintPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode sprint: %w", err)
	}
	return payload.toModel(), nil
}

// MoveIssuesToSprint assigns issues to a sprint
func (c *Client) MoveIssuesToSprint(ctx context.Context, sprintID int, issueKeys []string) error {
	if len(issueKeys) == 0 {
		return fmt.Errorf("no issues to move")
	}

	path, err := c.agilePath(ctx, fmt.Sprintf("/sprint/%d/issue", sprintID))
	if err != nil {
		return err
	}

	_, err = c.Execute(ctx, http.MethodPost, path, map[string]interface{}{
		"issues": issueKeys,
	})
	return err
}
