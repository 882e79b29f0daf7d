// Package models defines the data structures shared across jira-mcp
package models

import "time"

// Credential holds the OAuth token pair and client identity for an
// Atlassian cloud site. AccessToken and RefreshToken are always replaced
// together on a successful refresh, never individually.
type Credential struct {
	AccessToken     string
	RefreshToken    string
	ClientID        string
	ClientSecret    string
	CloudID         string
	LastRefreshedAt time.Time
}

// CachedCredential is the on-disk credential record. WrittenBy records the
// client id that produced it; a cached record is only adopted on startup
// when WrittenBy matches the configured client id, so a credential rotation
// never silently resurrects tokens minted under the old identity.
type CachedCredential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	CloudID      string    `json:"cloud_id,omitempty"`
	WrittenBy    string    `json:"written_by"`
	SavedAt      time.Time `json:"saved_at"`
}

// CachedCloudID is the on-disk tenant identifier record. Entries older than
// the store's TTL load as absent.
type CachedCloudID struct {
	CloudID string    `json:"cloud_id"`
	SavedAt time.Time `json:"saved_at"`
}
