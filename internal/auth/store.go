// Package auth manages the OAuth credential lifecycle for jira-mcp: durable
// caching, expiry tracking and single-flight refresh.
package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/jira-mcp/internal/common"
	"github.com/bobmcallan/jira-mcp/internal/models"
)

const (
	credentialsFile = "credentials.json"
	cloudIDFile     = "cloudid.json"

	// cloudIDTTL bounds how long a cached tenant id is trusted.
	cloudIDTTL = 7 * 24 * time.Hour
)

// FileStore persists the credential and cloud-id caches as JSON files in a
// fixed directory under the user's home. Persistence is an optimization:
// reads never fail (a malformed file loads as absent) and writes are
// best-effort, logged on error and never propagated.
type FileStore struct {
	dir    string
	logger *common.Logger
}

// NewFileStore creates a store rooted at ~/.jira-mcp.
func NewFileStore(logger *common.Logger) *FileStore {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return NewFileStoreAt(filepath.Join(home, ".jira-mcp"), logger)
}

// NewFileStoreAt creates a store rooted at an explicit directory.
func NewFileStoreAt(dir string, logger *common.Logger) *FileStore {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &FileStore{dir: dir, logger: logger}
}

// LoadCredentials returns the cached credential record, or ok=false when the
// cache is absent, unreadable or incomplete.
func (fs *FileStore) LoadCredentials() (*models.CachedCredential, bool) {
	var rec models.CachedCredential
	if !fs.readJSON(credentialsFile, &rec) {
		return nil, false
	}
	if rec.AccessToken == "" || rec.RefreshToken == "" {
		return nil, false
	}
	return &rec, true
}

// SaveCredentials writes the credential cache.
func (fs *FileStore) SaveCredentials(rec *models.CachedCredential) {
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now()
	}
	fs.writeJSON(credentialsFile, rec)
}

// LoadCloudID returns the cached tenant id. Entries older than the TTL are
// treated as absent.
func (fs *FileStore) LoadCloudID() (string, bool) {
	var rec models.CachedCloudID
	if !fs.readJSON(cloudIDFile, &rec) {
		return "", false
	}
	if rec.CloudID == "" || time.Since(rec.SavedAt) > cloudIDTTL {
		return "", false
	}
	return rec.CloudID, true
}

// SaveCloudID writes the tenant-id cache.
func (fs *FileStore) SaveCloudID(cloudID string) {
	fs.writeJSON(cloudIDFile, &models.CachedCloudID{
		CloudID: cloudID,
		SavedAt: time.Now(),
	})
}

// readJSON reads and unmarshals a cache file. Any failure reads as absent.
func (fs *FileStore) readJSON(name string, dest interface{}) bool {
	data, err := os.ReadFile(filepath.Join(fs.dir, name))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		fs.logger.Debug().Err(err).Str("file", name).Msg("Ignoring malformed cache file")
		return false
	}
	return true
}

// writeJSON marshals and writes a cache file, creating the directory if
// needed. Failures are logged, not returned.
func (fs *FileStore) writeJSON(name string, v interface{}) {
	if err := os.MkdirAll(fs.dir, 0700); err != nil {
		fs.logger.Warn().Err(err).Str("dir", fs.dir).Msg("Failed to create cache directory")
		return
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fs.logger.Warn().Err(err).Str("file", name).Msg("Failed to marshal cache file")
		return
	}

	path := filepath.Join(fs.dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		fs.logger.Warn().Err(err).Str("path", path).Msg("Failed to write cache file")
	}
}
