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

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/plan"
)

// HTTPClient implements DataSource by calling the MuscleMind REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but data
// lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// get performs a GET request. A 404 returns (nil, nil) so absent plans and
// today-lookups map to the storage layer's nil-without-error convention.
func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("httpclient: reading %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned HTTP %d", path, resp.StatusCode)
	}
	return body, nil
}

// GetCompletedWorkouts fetches workout history via the REST API. The user ID
// is ignored; the server scopes data itself.
func (c *HTTPClient) GetCompletedWorkouts(ctx context.Context, userID, limit int) ([]models.CompletedWorkout, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.get(ctx, "/api/v1/workouts", params)
	if err != nil || body == nil {
		return nil, err
	}

	var workouts []models.CompletedWorkout
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decoding workouts: %w", err)
	}
	return workouts, nil
}

// GetTodaysCompletedWorkout fetches today's completed workout, nil when none.
func (c *HTTPClient) GetTodaysCompletedWorkout(ctx context.Context, userID int) (*models.CompletedWorkout, error) {
	body, err := c.get(ctx, "/api/v1/workouts/today", nil)
	if err != nil || body == nil {
		return nil, err
	}

	var w models.CompletedWorkout
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("httpclient: decoding workout: %w", err)
	}
	return &w, nil
}

// GetPlan fetches the weekly plan, nil when none is saved.
func (c *HTTPClient) GetPlan(ctx context.Context, userID int) (*plan.WorkoutPlan, error) {
	body, err := c.get(ctx, "/api/v1/plan", nil)
	if err != nil || body == nil {
		return nil, err
	}

	var p plan.WorkoutPlan
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("httpclient: decoding plan: %w", err)
	}
	return &p, nil
}
