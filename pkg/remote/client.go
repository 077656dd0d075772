// Package remote is the HTTP/WebSocket client for the financas sync
// server. It satisfies store.RemoteStore, so the engine never sees the
// transport.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/abrito/financas/financas-sync/pkg/store"
	"github.com/rs/zerolog/log"
)

// errorTypeAuthDisabled is the problem type the server returns when
// anonymous sign-in is switched off.
const errorTypeAuthDisabled = "https://financas.app/errors/auth-disabled"

// Config describes how to reach a sync server. A zero Config means the
// client runs offline-only.
type Config struct {
	// BaseURL of the sync server, e.g. "https://sync.financas.app".
	BaseURL string
	// FamilyID names the shared document space.
	FamilyID string
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to one family's documents on the sync server. Methods
// other than Configured and SignInAnonymously require a session.
type Client struct {
	baseURL  string
	familyID string
	http     *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a Client. It does not touch the network.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		familyID: cfg.FamilyID,
		http:     httpClient,
	}
}

// Configured reports whether a server and family were provided. An
// unconfigured client is a deliberate offline-only setup, not an error.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.familyID != ""
}

// Token returns the current session token, empty before sign-in.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type problemDetails struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type anonymousRequest struct {
	FamilyID string `json:"familyId"`
}

type anonymousResponse struct {
	Token    string `json:"token"`
	FamilyID string `json:"familyId"`
}

// SignInAnonymously obtains a session for the configured family. A
// server with anonymous auth switched off yields domain.ErrAuthDisabled,
// which callers treat as a degraded mode rather than a failure.
func (c *Client) SignInAnonymously(ctx context.Context) error {
	if !c.Configured() {
		return domain.ErrNotConfigured
	}

	body, err := json.Marshal(anonymousRequest{FamilyID: c.familyID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/auth/anonymous", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("anonymous sign-in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var problem problemDetails
		if err := json.NewDecoder(resp.Body).Decode(&problem); err == nil && problem.Type == errorTypeAuthDisabled {
			return domain.ErrAuthDisabled
		}
		return fmt.Errorf("anonymous sign-in: unexpected status %d", resp.StatusCode)
	}

	var session anonymousResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return fmt.Errorf("anonymous sign-in: decode response: %w", err)
	}

	c.mu.Lock()
	c.token = session.Token
	c.mu.Unlock()

	log.Debug().Str("family_id", c.familyID).Msg("Signed in to sync server")
	return nil
}

func (c *Client) monthURL(key string) string {
	return fmt.Sprintf("%s/api/v1/families/%s/months/%s", c.baseURL, c.familyID, key)
}

// Get fetches the remote document for a month key.
func (c *Client) Get(ctx context.Context, key string) (*domain.MonthData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.monthURL(key), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domain.ErrNotFound
	case http.StatusUnauthorized:
		return nil, domain.ErrUnauthorized
	default:
		return nil, fmt.Errorf("get %s: unexpected status %d", key, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var data domain.MonthData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("get %s: decode document: %w", key, err)
	}
	return &data, nil
}

// Put replaces the remote document for a month key.
func (c *Client) Put(ctx context.Context, key string, data *domain.MonthData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.monthURL(key), bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token())
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	default:
		return fmt.Errorf("put %s: unexpected status %d", key, resp.StatusCode)
	}
}

var _ store.RemoteStore = (*Client)(nil)
