// Package profanity calls the third-party profanity filter.
package profanity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hottakes/internal/config"
	"hottakes/internal/metrics"
	"hottakes/internal/model"
)

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("profanity: missing api key")

// Checker censors and flags text.
type Checker interface {
	Check(ctx context.Context, text string) (model.ProfanityResult, error)
}

// Client is the HTTP profanity gateway.
type Client struct {
	baseURL string
	apiKey  string
	do      func(*http.Request) (*http.Response, error)
}

func NewClient(cfg config.ProfanityConfig) *Client {
	hc := &http.Client{Timeout: 10 * time.Second}
	return &Client{baseURL: strings.TrimRight(cfg.BaseURL, "/"), apiKey: cfg.APIKey, do: hc.Do}
}

// Check runs text through /v1/profanityfilter.
func (c *Client) Check(ctx context.Context, text string) (model.ProfanityResult, error) {
	var out model.ProfanityResult
	if c.apiKey == "" {
		return out, ErrNoAPIKey
	}
	u := c.baseURL + "/v1/profanityfilter?text=" + url.QueryEscape(text)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return out, err
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	resp, err := c.do(req)
	if err != nil {
		metrics.ObserveAPI("/v1/profanityfilter", 0, start)
		return out, err
	}
	defer resp.Body.Close()
	metrics.ObserveAPI("/v1/profanityfilter", resp.StatusCode, start)
	if resp.StatusCode >= 300 {
		return out, fmt.Errorf("profanity api status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, err
	}
	if out.Original == "" {
		out.Original = text
	}
	return out, nil
}
