package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stateofclarity/refinery/internal/core/domain"
)

// HTTPAgent talks JSON over HTTP to a hosted agent endpoint. It implements
// both Scorer and Fixer; which one applies depends on how it is wired.
type HTTPAgent struct {
	name       string
	endpoint   string
	dimension  string
	httpClient *http.Client
}

// NewHTTPAgent creates a new HTTP-based agent client. dimension is empty for
// scorers.
func NewHTTPAgent(name, endpoint, dimension string, timeout time.Duration) *HTTPAgent {
	return &HTTPAgent{
		name:      name,
		endpoint:  endpoint,
		dimension: dimension,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (a *HTTPAgent) Name() string      { return a.name }
func (a *HTTPAgent) Dimension() string { return a.dimension }

// Score asks the agent to grade the brief.
func (a *HTTPAgent) Score(ctx context.Context, brief *domain.Brief) (domain.DimensionScores, error) {
	var scores domain.DimensionScores
	body := map[string]any{
		"brief_id": brief.ID,
		"topic":    brief.Topic,
		"content":  brief.Content,
	}
	if err := a.post(ctx, "/score", body, &scores); err != nil {
		return scores, err
	}
	return scores, nil
}

// Fix asks the agent for edits improving its dimension.
func (a *HTTPAgent) Fix(ctx context.Context, brief *domain.Brief) ([]domain.Edit, error) {
	body := map[string]any{
		"brief_id":  brief.ID,
		"topic":     brief.Topic,
		"content":   brief.Content,
		"dimension": a.dimension,
	}
	var resp struct {
		Edits []domain.Edit `json:"edits"`
	}
	if err := a.post(ctx, "/fix", body, &resp); err != nil {
		return nil, err
	}
	return resp.Edits, nil
}

func (a *HTTPAgent) post(ctx context.Context, path string, body any, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.endpoint+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("agent call: %w", err)
	}
	defer resp.Body.Close()

	// Surface limit/auth statuses in the error text so the retry classifier
	// sees them.
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := resp.Header.Get("Retry-After")
		return fmt.Errorf("rate limited (429), retry after: %s", retryAfter)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("401 unauthorized")
	}
	if resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("403 forbidden")
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
