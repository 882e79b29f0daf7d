package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/bobmcallan/jira-mcp/internal/common"
	"github.com/bobmcallan/jira-mcp/internal/interfaces"
	"github.com/bobmcallan/jira-mcp/internal/models"
)

const (
	// freshnessWindow is the minimum remaining validity EnsureFresh
	// guarantees on return.
	freshnessWindow = 5 * time.Minute

	// refreshAttempts bounds the token endpoint exchange.
	refreshAttempts = 3

	refreshKey = "refresh"
)

// ErrRefreshFailed indicates the token endpoint rejected the refresh
// credential after all attempts.
var ErrRefreshFailed = errors.New("token refresh failed")

// Authority owns the access/refresh credential pair. It decides when a
// refresh is needed, guarantees at most one in-flight refresh across any
// number of concurrent callers, and persists every successful refresh.
type Authority struct {
	store      interfaces.CredentialStore
	logger     *common.Logger
	httpClient *http.Client
	authURL    string
	baseURL    string
	timeout    time.Duration

	mu   sync.RWMutex
	cred models.Credential

	group singleflight.Group

	// refreshBase is the first retry delay for the token exchange.
	refreshBase time.Duration
}

// AuthorityOption configures the authority
type AuthorityOption func(*Authority)

// WithHTTPClient sets the HTTP client used for token exchanges
func WithHTTPClient(hc *http.Client) AuthorityOption {
	return func(a *Authority) {
		a.httpClient = hc
	}
}

// WithStore sets the credential store
func WithStore(store interfaces.CredentialStore) AuthorityOption {
	return func(a *Authority) {
		a.store = store
	}
}

// NewAuthority creates an authority and adopts credentials per the
// cache-identity rule: a cached credential written under the same client id
// wins over the caller-supplied one; anything else is discarded in favor of
// the configuration, which then overwrites the cache.
func NewAuthority(cfg common.AtlassianConfig, logger *common.Logger, opts ...AuthorityOption) *Authority {
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	a := &Authority{
		logger:      logger,
		authURL:     cfg.AuthURL,
		baseURL:     cfg.BaseURL,
		timeout:     cfg.GetTimeout(),
		refreshBase: time.Second,
		httpClient: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
	}

	for _, opt := range opts {
		opt(a)
	}
	if a.store == nil {
		a.store = NewFileStore(logger)
	}

	a.configure(cfg)
	return a
}

// configure adopts caller-supplied credentials unless a cached credential
// with a matching writer identity exists. The decision is logged so the
// silent adoption is auditable.
func (a *Authority) configure(cfg common.AtlassianConfig) {
	cred := models.Credential{
		AccessToken:  cfg.AccessToken,
		RefreshToken: cfg.RefreshToken,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		CloudID:      cfg.CloudID,
	}

	if cached, ok := a.store.LoadCredentials(); ok && cached.WrittenBy == cfg.ClientID {
		cred.AccessToken = cached.AccessToken
		cred.RefreshToken = cached.RefreshToken
		cred.LastRefreshedAt = cached.SavedAt
		if cred.CloudID == "" {
			cred.CloudID = cached.CloudID
		}
		a.logger.Info().Str("client_id", cfg.ClientID).Str("source", "cache").Msg("Adopted credentials")
	} else {
		a.logger.Info().Str("client_id", cfg.ClientID).Str("source", "config").Msg("Adopted credentials")
		if cred.AccessToken != "" && cred.RefreshToken != "" {
			a.store.SaveCredentials(&models.CachedCredential{
				AccessToken:  cred.AccessToken,
				RefreshToken: cred.RefreshToken,
				CloudID:      cred.CloudID,
				WrittenBy:    cfg.ClientID,
			})
		}
	}

	if cred.CloudID == "" {
		if cloudID, ok := a.store.LoadCloudID(); ok {
			cred.CloudID = cloudID
		}
	}

	a.mu.Lock()
	a.cred = cred
	a.mu.Unlock()
}

// AccessToken returns the current access token.
func (a *Authority) AccessToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cred.AccessToken
}

// CloudID returns the current tenant identifier, which may be empty until
// resolved.
func (a *Authority) CloudID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cred.CloudID
}

// LastRefreshedAt returns when the credential pair last changed.
func (a *Authority) LastRefreshedAt() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cred.LastRefreshedAt
}

// EnsureFresh guarantees the access token is valid for at least the
// freshness window on return. Concurrent callers that find a refresh in
// flight attach to its result instead of starting their own; a refresh
// failure is reported to every waiter, and the next call starts over.
func (a *Authority) EnsureFresh(ctx context.Context) error {
	if remaining, ok := a.tokenRemaining(); ok && remaining > freshnessWindow {
		return nil
	}
	return a.ForceRefresh(ctx)
}

// ForceRefresh performs an unconditional token refresh, still subject to the
// single-flight guarantee so a burst of 401-triggered refreshes consumes the
// refresh token once.
func (a *Authority) ForceRefresh(ctx context.Context) error {
	_, err, _ := a.group.Do(refreshKey, func() (interface{}, error) {
		return nil, a.refresh(ctx)
	})
	return err
}

// tokenRemaining decodes the access token's expiry claim without verifying
// the signature. An undecodable token reads as "needs refresh".
func (a *Authority) tokenRemaining() (time.Duration, bool) {
	token := a.AccessToken()
	if token == "" {
		return 0, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return 0, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, false
	}

	return time.Until(exp.Time), true
}

// tokenResponse is the token endpoint's success body.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// tokenError is the token endpoint's failure body.
type tokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// refresh exchanges the refresh credential for a new token pair, retrying
// with exponential backoff. On success both tokens are replaced together and
// persisted.
func (a *Authority) refresh(ctx context.Context) error {
	a.mu.RLock()
	clientID := a.cred.ClientID
	clientSecret := a.cred.ClientSecret
	refreshToken := a.cred.RefreshToken
	cloudID := a.cred.CloudID
	a.mu.RUnlock()

	if refreshToken == "" {
		return fmt.Errorf("%w: no refresh token configured", ErrRefreshFailed)
	}

	var lastErr error
	for attempt := 0; attempt < refreshAttempts; attempt++ {
		if attempt > 0 {
			delay := a.refreshBase << (attempt - 1)
			if delay > a.timeout {
				delay = a.timeout
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrRefreshFailed, ctx.Err())
			}
		}

		resp, err := a.exchange(ctx, clientID, clientSecret, refreshToken)
		if err != nil {
			lastErr = err
			a.logger.Debug().Err(err).Int("attempt", attempt+1).Msg("Token refresh attempt failed")
			continue
		}

		now := time.Now()
		a.mu.Lock()
		a.cred.AccessToken = resp.AccessToken
		a.cred.RefreshToken = resp.RefreshToken
		a.cred.LastRefreshedAt = now
		a.mu.Unlock()

		a.store.SaveCredentials(&models.CachedCredential{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
			CloudID:      cloudID,
			WrittenBy:    clientID,
			SavedAt:      now,
		})

		a.logger.Info().Msg("Access token refreshed")
		return nil
	}

	a.logger.Error().Err(lastErr).Int("attempts", refreshAttempts).Msg("Token refresh exhausted")
	return fmt.Errorf("%w after %d attempts: %v", ErrRefreshFailed, refreshAttempts, lastErr)
}

// exchange performs one token endpoint call.
func (a *Authority) exchange(ctx context.Context, clientID, clientSecret, refreshToken string) (*tokenResponse, error) {
	payload, err := json.Marshal(map[string]string{
		"grant_type":    "refresh_token",
		"client_id":     clientID,
		"client_secret": clientSecret,
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.authURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token endpoint request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var te tokenError
		if json.Unmarshal(body, &te) == nil && te.Error != "" {
			return nil, fmt.Errorf("token endpoint returned %d: %s (%s)", resp.StatusCode, te.Error, te.ErrorDescription)
		}
		return nil, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" || tr.RefreshToken == "" {
		return nil, fmt.Errorf("token endpoint returned an incomplete token pair")
	}

	return &tr, nil
}

// accessibleResource is one entry of the accessible-resources response.
type accessibleResource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ResolveCloudID returns the tenant identifier, resolving and caching it via
// the accessible-resources endpoint when not already known.
func (a *Authority) ResolveCloudID(ctx context.Context) (string, error) {
	if id := a.CloudID(); id != "" {
		return id, nil
	}

	if err := a.EnsureFresh(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/oauth/token/accessible-resources", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.AccessToken())
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("accessible-resources request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("accessible-resources returned %d", resp.StatusCode)
	}

	var resources []accessibleResource
	if err := json.NewDecoder(resp.Body).Decode(&resources); err != nil {
		return "", fmt.Errorf("failed to decode accessible-resources: %w", err)
	}
	if len(resources) == 0 {
		return "", fmt.Errorf("no accessible Atlassian sites for this credential")
	}

	id := resources[0].ID
	a.mu.Lock()
	a.cred.CloudID = id
	a.mu.Unlock()
	a.store.SaveCloudID(id)

	a.logger.Info().Str("cloud_id", id).Str("site", resources[0].Name).Msg("Resolved cloud id")
	return id, nil
}

// Ensure Authority implements TokenAuthority
var _ interfaces.TokenAuthority = (*Authority)(nil)
