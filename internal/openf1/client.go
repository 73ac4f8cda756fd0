// Package openf1 implements a client for the OpenF1 racing-data API.
package openf1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/nawanshaju/pitlane/internal/constants"
)

const DefaultUserAgent = "pitlane/1.0 (https://github.com/nawanshaju/pitlane)"

// Record is one flat row as returned by the API: column name to scalar value.
type Record map[string]any

// Client issues rate-limited GET requests against the OpenF1 API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
}

// NewClient creates a client for the given base URL. requestsPerSecond bounds
// the outbound request rate with a token bucket.
func NewClient(baseURL string, requestsPerSecond float64) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = constants.DefaultRequestRate
	}
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: constants.APIRequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Fetch performs a GET against <base_url>/<endpoint> with the given query
// parameters and decodes the JSON collection. Callers in the ingestion path
// treat an error the same as an empty result.
func (c *Client) Fetch(ctx context.Context, endpoint string, params url.Values) ([]Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed for %s: %w", endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openf1 returned status %d for %s", resp.StatusCode, endpoint)
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return records, nil
}
