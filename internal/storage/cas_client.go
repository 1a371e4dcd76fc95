package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/split-ledger/internal/config"
)

// ContentStore is the content-addressed storage backend the persistence
// gateway uploads to. Upload returns an opaque content identifier uniquely
// addressing the stored bytes.
type ContentStore interface {
	PinJSON(ctx context.Context, name string, value interface{}) (string, error)
	Fetch(ctx context.Context, contentID string) ([]byte, error)
}

// CASClient pins JSON payloads to a Pinata-compatible IPFS pinning API and
// fetches them back through a read gateway.
type CASClient struct {
	pinEndpoint string
	gatewayURL  string
	apiToken    string
	client      *http.Client
}

// NewCASClient creates a content store client
func NewCASClient(cfg *config.StorageConfig) *CASClient {
	return &CASClient{
		pinEndpoint: strings.TrimRight(cfg.PinEndpoint, "/"),
		gatewayURL:  strings.TrimRight(cfg.GatewayURL, "/"),
		apiToken:    cfg.APIToken,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// pinRequest is the pinning API request body
type pinRequest struct {
	PinataMetadata pinMetadata `json:"pinataMetadata"`
	PinataContent  interface{} `json:"pinataContent"`
}

type pinMetadata struct {
	Name string `json:"name"`
}

// pinResponse is the pinning API response body
type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
	Error     string `json:"error,omitempty"`
}

// PinJSON uploads a JSON payload and returns its content identifier
func (c *CASClient) PinJSON(ctx context.Context, name string, value interface{}) (string, error) {
	body, err := json.Marshal(&pinRequest{
		PinataMetadata: pinMetadata{Name: name},
		PinataContent:  value,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal pin request: %w", err)
	}

	url := c.pinEndpoint + "/pinning/pinJSONToIPFS"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create pin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("pin request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read pin response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pin request returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var pinned pinResponse
	if err := json.Unmarshal(respBody, &pinned); err != nil {
		return "", fmt.Errorf("failed to decode pin response: %w", err)
	}
	if pinned.IpfsHash == "" {
		return "", fmt.Errorf("pin response missing content id")
	}

	return pinned.IpfsHash, nil
}

// Fetch retrieves previously pinned bytes by content identifier
func (c *CASClient) Fetch(ctx context.Context, contentID string) ([]byte, error) {
	if contentID == "" {
		return nil, fmt.Errorf("content id cannot be empty")
	}

	url := fmt.Sprintf("%s/%s", c.gatewayURL, contentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch returned status %d for %s", resp.StatusCode, contentID)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
}
