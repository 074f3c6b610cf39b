package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"hottakes/internal/config"
	"hottakes/internal/metrics"
	"hottakes/internal/model"
)

// Gateway defines the backend calls the client layer makes.
type Gateway interface {
	Register(ctx context.Context, username, email, password string) (model.AuthResponse, error)
	Login(ctx context.Context, username, password string) (model.AuthResponse, error)
	CurrentUser(ctx context.Context, userID string) (model.AuthUser, error)
	NextOpinion(ctx context.Context, exclude []string, userID string) (model.Opinion, error)
	GetOpinion(ctx context.Context, id string) (model.Opinion, error)
	SubmitOpinion(ctx context.Context, op model.NewOpinion) error
	Vote(ctx context.Context, opinionID string, value int, userID string) (model.VoteResult, error)
	VoteStatus(ctx context.Context, opinionID, userID string) (model.VoteStatus, error)
	Leaderboard(ctx context.Context, limit int, typ string) ([]model.Opinion, error)
	NearMe(ctx context.Context, region string, limit int) ([]model.Opinion, error)
	Location(ctx context.Context) (model.LocationInfo, error)
}

// TokenSource supplies the current session token; empty means anonymous.
type TokenSource interface {
	Token() string
}

// HTTPClient is a bearer-token JSON client for the hot takes backend.
type HTTPClient struct {
	baseURL     string
	tokens      TokenSource
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
}

func NewHTTPClient(cfg config.BackendConfig, tokens TokenSource) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := time.Duration(cfg.BaseBackoffMS) * time.Millisecond
	if backoff <= 0 {
		backoff = 300 * time.Millisecond
	}
	return &HTTPClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		tokens:      tokens,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     newLimiter(cfg.RPS, cfg.Burst),
		maxAttempts: attempts,
		baseBackoff: backoff,
	}
}

func (c *HTTPClient) auth(req *http.Request) {
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
}

func (c *HTTPClient) Register(ctx context.Context, username, email, password string) (model.AuthResponse, error) {
	var out model.AuthResponse
	body := map[string]string{"username": username, "email": email, "password": password}
	err := c.call(ctx, "/api/auth/register", http.MethodPost, "/api/auth/register", nil, body, &out)
	return out, err
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (model.AuthResponse, error) {
	var out model.AuthResponse
	body := map[string]string{"username": username, "password": password}
	err := c.call(ctx, "/api/auth/login", http.MethodPost, "/api/auth/login", nil, body, &out)
	return out, err
}

// CurrentUser returns the user with stats; an empty userID asks for the
// token's owner.
func (c *HTTPClient) CurrentUser(ctx context.Context, userID string) (model.AuthUser, error) {
	var out model.AuthUser
	q := url.Values{}
	if userID != "" {
		q.Set("userId", userID)
	}
	err := c.call(ctx, "/api/auth/user", http.MethodGet, "/api/auth/user", q, nil, &out)
	return out, err
}

// NextOpinion fetches an opinion not in exclude.
func (c *HTTPClient) NextOpinion(ctx context.Context, exclude []string, userID string) (model.Opinion, error) {
	var out model.Opinion
	q := url.Values{}
	if len(exclude) > 0 {
		q.Set("exclude", strings.Join(exclude, ","))
	}
	if userID != "" {
		q.Set("userId", userID)
	}
	err := c.call(ctx, "/api/opinions/next", http.MethodGet, "/api/opinions/next", q, nil, &out)
	return out, err
}

func (c *HTTPClient) GetOpinion(ctx context.Context, id string) (model.Opinion, error) {
	var out model.Opinion
	if id == "" {
		return out, errors.New("empty opinion id")
	}
	err := c.call(ctx, "/api/opinions/:id", http.MethodGet, "/api/opinions/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *HTTPClient) SubmitOpinion(ctx context.Context, op model.NewOpinion) error {
	return c.call(ctx, "/api/opinions", http.MethodPost, "/api/opinions", nil, op, nil)
}

// Vote records value (1 or -1) for opinionID.
func (c *HTTPClient) Vote(ctx context.Context, opinionID string, value int, userID string) (model.VoteResult, error) {
	var out model.VoteResult
	if value != 1 && value != -1 {
		return out, fmt.Errorf("invalid vote value %d", value)
	}
	body := map[string]any{"vote": value, "userId": userID}
	err := c.call(ctx, "/api/opinions/:id/vote", http.MethodPost, "/api/opinions/"+url.PathEscape(opinionID)+"/vote", nil, body, &out)
	return out, err
}

func (c *HTTPClient) VoteStatus(ctx context.Context, opinionID, userID string) (model.VoteStatus, error) {
	var out model.VoteStatus
	q := url.Values{"userId": {userID}}
	err := c.call(ctx, "/api/opinions/:id/vote-status", http.MethodGet, "/api/opinions/"+url.PathEscape(opinionID)+"/vote-status", q, nil, &out)
	return out, err
}

// Leaderboard returns the top opinions; typ is "top" or "new".
func (c *HTTPClient) Leaderboard(ctx context.Context, limit int, typ string) ([]model.Opinion, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(clamp(limit, 1, 100)))
	if typ == "" {
		typ = "top"
	}
	q.Set("type", typ)
	var raw struct {
		Opinions []model.Opinion `json:"opinions"`
	}
	if err := c.call(ctx, "/api/leaderboard/top", http.MethodGet, "/api/leaderboard/top", q, nil, &raw); err != nil {
		return nil, err
	}
	return raw.Opinions, nil
}

// NearMe returns the top opinions submitted from region.
func (c *HTTPClient) NearMe(ctx context.Context, region string, limit int) ([]model.Opinion, error) {
	if region == "" {
		return nil, errors.New("empty region")
	}
	q := url.Values{}
	q.Set("region", region)
	q.Set("limit", strconv.Itoa(clamp(limit, 1, 100)))
	var raw struct {
		Opinions []model.Opinion `json:"opinions"`
	}
	if err := c.call(ctx, "/api/leaderboard/near-me", http.MethodGet, "/api/leaderboard/near-me", q, nil, &raw); err != nil {
		return nil, err
	}
	return raw.Opinions, nil
}

func (c *HTTPClient) Location(ctx context.Context) (model.LocationInfo, error) {
	var out model.LocationInfo
	err := c.call(ctx, "/api/location", http.MethodGet, "/api/location", nil, nil, &out)
	return out, err
}

// call performs one JSON round-trip. route is the path template used as the
// metrics label; out may be nil.
func (c *HTTPClient) call(ctx context.Context, route, method, path string, q url.Values, body, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return err
	}
	c.auth(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	start := time.Now()
	var resp *http.Response
	if method == http.MethodGet {
		resp, err = c.doWithRetry(ctx, route, req)
	} else {
		// not idempotent; a retried vote or submission could double up
		resp, err = c.httpClient.Do(req)
	}
	if err != nil {
		metrics.ObserveAPI(route, 0, start)
		return err
	}
	defer resp.Body.Close()
	metrics.ObserveAPI(route, resp.StatusCode, start)
	if resp.StatusCode >= 300 {
		return statusError(resp, method, path)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func (c *HTTPClient) doWithRetry(ctx context.Context, route string, req *http.Request) (*http.Response, error) {
	backoff := c.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			metrics.IncAPIRetry(route)
		}
		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err == nil {
			retryable := resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599)
			if !retryable || attempt == c.maxAttempts {
				return resp, nil
			}
			ra := resp.Header.Get("Retry-After")
			_ = resp.Body.Close()
			wait := backoff
			if ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					wait = time.Duration(secs) * time.Second
				} else if t, err := http.ParseTime(ra); err == nil {
					if d := time.Until(t); d > 0 {
						wait = d
					}
				}
			}
			// jitter +/-20%
			jitter := time.Duration(float64(wait) * 0.2)
			if jitter > 0 {
				wait = wait - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter))
			}
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
			continue
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == c.maxAttempts {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxAttempts, lastErr)
}
