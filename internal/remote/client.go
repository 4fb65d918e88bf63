// Package remote talks to a typerush server over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/saurabhk79/TypeRush/internal/api"
	"github.com/saurabhk79/TypeRush/internal/model"
)

// Client implements the text provider, score sink and ghost store against a server.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for the server at baseURL. A nil httpClient uses a 10s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// FetchText asks the server for a passage.
func (c *Client) FetchText(ctx context.Context) (string, error) {
	var resp api.TextResponse
	if err := c.do(ctx, http.MethodGet, api.RouteText, nil, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// SubmitResult posts the score of a finished attempt.
func (c *Client) SubmitResult(ctx context.Context, profile string, res model.Result) error {
	_, err := c.InsertScore(ctx, res.Score(profile))
	return err
}

// InsertScore posts a score record and returns the id assigned by the server.
func (c *Client) InsertScore(ctx context.Context, rec model.ScoreRecord) (string, error) {
	var resp api.ScoreResponse
	if err := c.do(ctx, http.MethodPost, api.RouteScore, api.NewScoreRequest(rec), &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// ListScores fetches stored scores, oldest first. An empty profile lists every profile.
func (c *Client) ListScores(ctx context.Context, profile string) ([]model.ScoreRecord, error) {
	path := api.RouteScore
	if profile != "" {
		path += "?" + url.Values{"user_id": {profile}}.Encode()
	}
	var resp api.ScoreListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Scores, nil
}

// SaveGhost uploads the latest recording for a profile.
func (c *Client) SaveGhost(ctx context.Context, profile string, rec model.GhostRecording) error {
	return c.do(ctx, http.MethodPost, api.RouteGhost, api.NewGhostRequest(profile, rec), nil)
}

// FetchGhost downloads the recording for a profile. A 404 maps to model.ErrGhostNotFound.
func (c *Client) FetchGhost(ctx context.Context, profile string) (model.GhostRecording, error) {
	var rec model.GhostRecording
	err := c.do(ctx, http.MethodGet, api.RouteGhost+"/"+url.PathEscape(profile), nil, &rec)
	if err != nil {
		return model.GhostRecording{}, err
	}
	return rec, nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// Is maps 404 responses onto model.ErrGhostNotFound for ghost lookups.
func (e *StatusError) Is(target error) bool {
	return target == model.ErrGhostNotFound && e.Status == http.StatusNotFound &&
		strings.HasPrefix(e.Path, api.RouteGhost+"/")
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr api.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
