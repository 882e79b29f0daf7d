// Package interfaces defines service contracts for jira-mcp
package interfaces

import (
	"context"
	"encoding/json"

	"github.com/bobmcallan/jira-mcp/internal/models"
)

// JiraClient provides access to the Jira Cloud REST APIs
type JiraClient interface {
	// Execute performs one authenticated request with retry, backoff and
	// circuit breaker handling, returning the raw response body.
	Execute(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error)

	// GetIssue retrieves a single issue by key
	GetIssue(ctx context.Context, key string) (*models.Issue, error)

	// SearchIssues runs a JQL query
	SearchIssues(ctx context.Context, jql string, maxResults int) (*models.SearchResult, error)

	// CreateIssue creates an issue and returns its key
	CreateIssue(ctx context.Context, req *CreateIssueRequest) (*models.Issue, error)

	// UpdateIssue applies field updates to an issue
	UpdateIssue(ctx context.Context, key string, fields map[string]interface{}) error

	// GetTransitions lists the available workflow transitions for an issue
	GetTransitions(ctx context.Context, key string) ([]*models.Transition, error)

	// TransitionIssue moves an issue through a workflow transition
	TransitionIssue(ctx context.Context, key, transitionID string) error

	// GetComments retrieves comments on an issue
	GetComments(ctx context.Context, key string) ([]*models.Comment, error)

	// AddComment posts a comment on an issue
	AddComment(ctx context.Context, key, body string) (*models.Comment, error)

	// GetBoards lists agile boards
	GetBoards(ctx context.Context) ([]*models.Board, error)

	// GetSprints lists sprints on a board
	GetSprints(ctx context.Context, boardID int, state string) ([]*models.Sprint, error)

	// CreateSprint creates a sprint on a board
	CreateSprint(ctx context.Context, boardID int, name, goal string) (*models.Sprint, error)

	// MoveIssuesToSprint assigns issues to a sprint
	MoveIssuesToSprint(ctx context.Context, sprintID int, issueKeys []string) error
}

// CreateIssueRequest holds the fields for issue creation
type CreateIssueRequest struct {
	ProjectKey  string
	Summary     string
	Description string
	IssueType   string
	Priority    string
	Labels      []string
	Assignee    string
}

// TokenAuthority owns the OAuth credential pair for diagnostics consumers
type TokenAuthority interface {
	// AccessToken returns the current access token
	AccessToken() string

	// CloudID returns the current tenant identifier, which may be empty
	// until resolved
	CloudID() string

	// EnsureFresh guarantees the access token is valid for at least the
	// freshness window, refreshing it if needed
	EnsureFresh(ctx context.Context) error

	// ForceRefresh performs an unconditional token refresh
	ForceRefresh(ctx context.Context) error
}

// CredentialStore persists the credential and tenant-id caches
type CredentialStore interface {
	// LoadCredentials returns the cached credential record, or ok=false if
	// the cache is absent or unreadable
	LoadCredentials() (*models.CachedCredential, bool)

	// SaveCredentials writes the credential cache best-effort
	SaveCredentials(rec *models.CachedCredential)

	// LoadCloudID returns the cached tenant id, or ok=false if absent,
	// unreadable or expired
	LoadCloudID() (string, bool)

	// SaveCloudID writes the tenant-id cache best-effort
	SaveCloudID(cloudID string)
}
