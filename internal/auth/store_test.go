package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bobmcallan/jira-mcp/internal/common"
	"github.com/bobmcallan/jira-mcp/internal/models"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStoreAt(t.TempDir(), common.NewSilentLogger())
}

func TestLoadCredentialsAbsent(t *testing.T) {
	fs := newTestStore(t)
	if _, ok := fs.LoadCredentials(); ok {
		t.Error("LoadCredentials on an empty store should report absent")
	}
}

func TestLoadCredentialsMalformed(t *testing.T) {
	fs := newTestStore(t)
	if err := os.WriteFile(filepath.Join(fs.dir, credentialsFile), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, ok := fs.LoadCredentials(); ok {
		t.Error("a malformed cache file must read as absent")
	}
}

func TestLoadCredentialsIncomplete(t *testing.T) {
	fs := newTestStore(t)
	fs.SaveCredentials(&models.CachedCredential{
		AccessToken: "only-access",
		WrittenBy:   "client-a",
	})

	if _, ok := fs.LoadCredentials(); ok {
		t.Error("a record missing the refresh token must read as absent")
	}
}

func TestSaveLoadCredentialsRoundTrip(t *testing.T) {
	fs := newTestStore(t)
	fs.SaveCredentials(&models.CachedCredential{
		AccessToken:  "access",
		RefreshToken: "refresh",
		CloudID:      "cloud-1",
		WrittenBy:    "client-a",
	})

	rec, ok := fs.LoadCredentials()
	if !ok {
		t.Fatal("LoadCredentials failed after save")
	}
	if rec.AccessToken != "access" || rec.RefreshToken != "refresh" {
		t.Errorf("tokens = %q/%q, want access/refresh", rec.AccessToken, rec.RefreshToken)
	}
	if rec.WrittenBy != "client-a" {
		t.Errorf("WrittenBy = %q, want client-a", rec.WrittenBy)
	}
	if rec.SavedAt.IsZero() {
		t.Error("SavedAt should be stamped on save")
	}
}

func TestSaveCredentialsUnwritableDirIsSilent(t *testing.T) {
	fs := NewFileStoreAt("/proc/no-such-dir/jira-mcp", common.NewSilentLogger())
	// Must not panic or return an error; persistence is best-effort.
	fs.SaveCredentials(&models.CachedCredential{
		AccessToken:  "a",
		RefreshToken: "r",
		WrittenBy:    "c",
	})
}

func TestCloudIDRoundTrip(t *testing.T) {
	fs := newTestStore(t)
	fs.SaveCloudID("cloud-42")

	id, ok := fs.LoadCloudID()
	if !ok || id != "cloud-42" {
		t.Errorf("LoadCloudID = %q, %t, want cloud-42, true", id, ok)
	}
}

func TestCloudIDExpiresAfterTTL(t *testing.T) {
	fs := newTestStore(t)

	stale := models.CachedCloudID{
		CloudID: "cloud-42",
		SavedAt: time.Now().Add(-8 * 24 * time.Hour),
	}
	data, err := json.Marshal(stale)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(fs.dir, cloudIDFile), data, 0600); err != nil {
		t.Fatal(err)
	}

	if _, ok := fs.LoadCloudID(); ok {
		t.Error("a cloud-id record older than 7 days must read as absent")
	}
}

func TestCloudIDFreshWithinTTL(t *testing.T) {
	fs := newTestStore(t)

	fresh := models.CachedCloudID{
		CloudID: "cloud-42",
		SavedAt: time.Now().Add(-6 * 24 * time.Hour),
	}
	data, err := json.Marshal(fresh)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(fs.dir, cloudIDFile), data, 0600); err != nil {
		t.Fatal(err)
	}

	if id, ok := fs.LoadCloudID(); !ok || id != "cloud-42" {
		t.Errorf("LoadCloudID = %q, %t, want cloud-42, true", id, ok)
	}
}
