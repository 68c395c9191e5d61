package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Result mirrors the JSON body of a successful import response.
type Result struct {
	Received         int      `json:"sessions_received"`
	Written          int      `json:"sessions_written"`
	Skipped          int      `json:"sessions_skipped"`
	VolumeMismatches int      `json:"volume_mismatches"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Client sends export files to a liftlog server's import routes.
type Client struct {
	serverURL  string
	token      string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a client. token is sent as a bearer token and apiKey as
// X-API-Key; either may be empty.
func NewClient(serverURL, token, apiKey string) *Client {
	return &Client{
		serverURL:  serverURL,
		token:      token,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		backoff:    time.Second,
	}
}

// Push POSTs one export to /api/v1/import/{source}. unit is passed on for
// legacy exports. Transport errors and 5xx responses are retried up to 3
// times with exponential backoff; 4xx responses are returned at once.
func (c *Client) Push(ctx context.Context, source, unit string, data []byte) (Result, error) {
	endpoint := c.serverURL + "/api/v1/import/" + url.PathEscape(source)
	if unit != "" {
		endpoint += "?" + url.Values{"unit": {unit}}.Encode()
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
		}

		res, retry, err := c.post(ctx, endpoint, data)
		if err == nil {
			return res, nil
		}
		if !retry {
			return Result{}, err
		}
		lastErr = err
	}
	return Result{}, fmt.Errorf("after 3 attempts: %w", lastErr)
}

func (c *Client) post(ctx context.Context, endpoint string, data []byte) (Result, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return Result{}, false, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("import failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
		return Result{}, resp.StatusCode >= 500, err
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, false, fmt.Errorf("decoding import result: %w", err)
	}
	return res, false, nil
}
