// Package mailapi is the client for the mail backend's admin API, which
// owns mailbox creation and deletion. Credentials for new addresses are
// minted there, not here.
package mailapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a mail admin API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config for the admin API client
type Config struct {
	BaseURL string // e.g., https://mail.example.com
	APIKey  string
}

// NewAddressResult is the backend's reply to an address creation
type NewAddressResult struct {
	Address    string `json:"address"`
	AddressID  int64  `json:"address_id"`
	Credential string `json:"jwt"`
	Password   string `json:"password,omitempty"`
}

// NewClient creates an admin API client
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewAddress creates a new mailbox address. An empty name asks the backend
// for a random one.
func (c *Client) NewAddress(ctx context.Context, name string) (*NewAddressResult, error) {
	body := map[string]any{
		"name":         name,
		"enablePrefix": true,
	}

	var result NewAddressResult
	if err := c.doRequest(ctx, http.MethodPost, "/admin/new_address", body, &result); err != nil {
		return nil, err
	}
	if result.Address == "" || result.Credential == "" {
		return nil, fmt.Errorf("backend returned an incomplete address record")
	}
	return &result, nil
}

// DeleteAddress deletes a mailbox address by its internal id
func (c *Client) DeleteAddress(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/admin/delete_address/%d", id)
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-admin-auth", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail api %s %s: status %d: %s", method, path, resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
