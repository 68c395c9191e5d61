package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/aggregate"
	"github.com/claude/liftlog/internal/logbook"
	"github.com/claude/liftlog/internal/workout"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server. The remote server resolves the user
// from the connection or token, so the user arguments are ignored.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. A
// non-empty token is sent as a bearer token.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func dayParams(day workout.Day) url.Values {
	v := url.Values{}
	if !day.IsZero() {
		v.Set("date", day.String())
	}
	return v
}

func (c *HTTPClient) Calendar(ctx context.Context, _ workout.UserID, day workout.Day) (logbook.CalendarView, error) {
	var view logbook.CalendarView
	err := c.get(ctx, "/api/v1/calendar", dayParams(day), &view)
	return view, err
}

func (c *HTTPClient) Monthly(ctx context.Context, _ workout.UserID, day workout.Day) (aggregate.MonthlyStats, error) {
	var stats aggregate.MonthlyStats
	err := c.get(ctx, "/api/v1/stats/monthly", dayParams(day), &stats)
	return stats, err
}

func (c *HTTPClient) Profile(ctx context.Context, _ workout.UserID) (aggregate.ProfileStats, error) {
	var stats aggregate.ProfileStats
	err := c.get(ctx, "/api/v1/stats/profile", nil, &stats)
	return stats, err
}

func (c *HTTPClient) ListSessions(ctx context.Context, _ workout.UserID) ([]workout.Session, error) {
	var sessions []workout.Session
	if err := c.get(ctx, "/api/v1/sessions", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *HTTPClient) RecentSessions(ctx context.Context, _ workout.UserID, limit int) ([]workout.Session, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	var sessions []workout.Session
	if err := c.get(ctx, "/api/v1/sessions", params, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
