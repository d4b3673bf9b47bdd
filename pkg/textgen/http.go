package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// HTTPClient talks to a HuggingFace-style summarisation inference
// endpoint. Requests are rate limited client-side so bulk analyses do
// not trip endpoint quotas.
type HTTPClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewHTTP creates an HTTPClient. rps caps requests per second; zero or
// negative means unlimited.
func NewHTTP(endpoint, apiKey string, rps float64, timeout time.Duration) *HTTPClient {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		limiter:  limiter,
	}
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxLength  int  `json:"max_length"`
	MinLength  int  `json:"min_length"`
	Truncation bool `json:"truncation"`
}

type inferenceResult struct {
	SummaryText string `json:"summary_text"`
}

func (c *HTTPClient) Summarise(ctx context.Context, text string, maxTokens int) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "textgen: rate limit wait")
	}

	body, err := json.Marshal(inferenceRequest{
		Inputs: text,
		Parameters: inferenceParameters{
			MaxLength:  maxTokens,
			MinLength:  maxTokens / 3,
			Truncation: true,
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "textgen: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "textgen: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "textgen: inference call")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "textgen: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("textgen: endpoint returned %d: %s", resp.StatusCode, string(respBody))
	}

	// The endpoint returns either a bare object or a one-element array.
	var results []inferenceResult
	if err := json.Unmarshal(respBody, &results); err != nil {
		var single inferenceResult
		if err := json.Unmarshal(respBody, &single); err != nil {
			return "", eris.Wrap(err, "textgen: unmarshal response")
		}
		results = []inferenceResult{single}
	}
	if len(results) == 0 || results[0].SummaryText == "" {
		return "", eris.New("textgen: endpoint returned no summary")
	}
	return results[0].SummaryText, nil
}
