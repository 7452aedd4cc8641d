package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Tunnel describes a single active tunnel as reported by the agent.
type Tunnel struct {
	Name      string `json:"name"`
	ID        string `json:"ID"`
	URI       string `json:"uri"`
	PublicURL string `json:"public_url"`
	Proto     string `json:"proto"`
	Config    struct {
		Addr string `json:"addr"`
	} `json:"config"`
}

// TunnelsResponse represents the agent's tunnel list payload. A missing
// tunnels field decodes to a nil slice, which callers treat as empty.
type TunnelsResponse struct {
	Tunnels []Tunnel `json:"tunnels"`
	URI     string   `json:"uri"`
}

// ErrUnexpectedStatus indicates the agent answered with a non-OK status code.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Client is a client for the tunnel agent diagnostics API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new agent client for the given base URL. The timeout
// bounds each request end to end, including connection setup.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: slog.Default(),
	}
}

// SetLogger sets the logger used for debug output
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// Tunnels fetches the list of active tunnels from the agent.
func (c *Client) Tunnels(ctx context.Context) (*TunnelsResponse, error) {
	// Create request
	url := fmt.Sprintf("%s/api/tunnels", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	// Send request
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// Read response body
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Check status code
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	// Parse response
	var tunnelsResp TunnelsResponse
	if err := json.Unmarshal(respBody, &tunnelsResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	c.logger.Debug("fetched tunnels",
		slog.String("agent", c.baseURL),
		slog.Int("count", len(tunnelsResp.Tunnels)))

	return &tunnelsResp, nil
}
