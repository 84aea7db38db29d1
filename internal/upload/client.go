// Package upload pushes locally recorded workouts to a remote MuscleMind
// server, tracking what has already been sent so re-runs are cheap.
package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
)

// Client sends workouts to the MuscleMind server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the MuscleMind server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SendWorkout POSTs a completed workout to the server's history endpoint.
// Retries up to 3 times with exponential backoff on failure. A 409 means the
// server already has a workout for that date and counts as success.
func (c *Client) SendWorkout(w models.CompletedWorkout) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshaling workout: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, c.serverURL+"/api/v1/workouts", bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusCreated, http.StatusOK, http.StatusConflict:
			return nil
		}
		lastErr = fmt.Errorf("upload failed (status %d): %s", resp.StatusCode, body)
	}

	return fmt.Errorf("after 3 attempts: %w", lastErr)
}
