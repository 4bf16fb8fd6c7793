package macrodata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Observation is one year of macro data as published by the source API.
type Observation struct {
	Country       string   `json:"country"`
	Year          int      `json:"year"`
	InflationRate float64  `json:"inflationRate"`
	InterestRate  *float64 `json:"interestRate,omitempty"`
	M2Growth      *float64 `json:"m2Growth,omitempty"`
}

// Client pulls annual inflation observations from a macro statistics API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient instantiates the macro data client with sane defaults.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("macro data base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

// AnnualInflation fetches the full annual inflation history for a country.
func (c *Client) AnnualInflation(ctx context.Context, country string) ([]Observation, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("macro data client not configured")
	}
	country = strings.TrimSpace(country)
	if country == "" {
		return nil, errors.New("country code is required")
	}
	endpoint := fmt.Sprintf("%s/v1/macro/%s/inflation", c.baseURL, url.PathEscape(country))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build macro data request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call macro data API: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("macro data API has no series for %s", country)
	default:
		return nil, fmt.Errorf("macro data API unexpected status: %s", resp.Status)
	}

	var payload struct {
		Observations []Observation `json:"observations"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode macro data response: %w", err)
	}
	if len(payload.Observations) == 0 {
		return nil, fmt.Errorf("macro data API returned an empty series for %s", country)
	}
	return payload.Observations, nil
}
