package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Tip is an indexed tip as served by the tipjar API.
type Tip struct {
	RecordAddress  string    `json:"record_address"`
	Tipper         string    `json:"tipper"`
	TipperShort    string    `json:"tipper_short"`
	AmountLamports int64     `json:"amount_lamports"`
	AmountSOL      float64   `json:"amount_sol"`
	Message        string    `json:"message"`
	TimestampMS    int64     `json:"timestamp_ms"`
	Network        string    `json:"network"`
	IndexedAt      time.Time `json:"indexed_at"`
}

// ListTipsOptions controls pagination and network selection for ListTips.
type ListTipsOptions struct {
	Network string
	Limit   int
	Offset  int
}

// Client is the HTTP client for the tipjar feed service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new tipjar service client.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// ListTips retrieves the tip feed, most recent first.
func (c *Client) ListTips(ctx context.Context, opts ListTipsOptions) ([]*Tip, error) {
	q := url.Values{}
	if opts.Network != "" {
		q.Set("network", opts.Network)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	u := c.baseURL + "/api/v1/tips"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var response struct {
		Tips []*Tip `json:"tips"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("tips listed", "count", len(response.Tips))
	return response.Tips, nil
}

// GetTip retrieves a single tip by its record address.
func (c *Client) GetTip(ctx context.Context, recordAddress string) (*Tip, error) {
	u := fmt.Sprintf("%s/api/v1/tips/%s", c.baseURL, url.PathEscape(recordAddress))
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var t Tip
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &t, nil
}

// Health checks whether the server is up.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// parseErrorResponse extracts the error message from an API error response.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, apiErr.Error)
}
