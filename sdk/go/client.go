// Package sdk provides a typed Go client for the LearnKit HTTP and
// WebSocket API.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Option configures the Client.
type Option func(*Client)

// Client provides typed access to the LearnKit HTTP + WebSocket API.
type Client struct {
	baseURL    string
	wsURL      string
	httpClient *http.Client
	headers    http.Header
}

// NewClient constructs a new SDK client targeting the given baseURL (e.g., http://localhost:8080/api).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL:    baseURL,
		wsURL:      deriveWSURL(baseURL),
		httpClient: http.DefaultClient,
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithAuthToken adds an Authorization: Bearer token header to all requests (HTTP + WS).
func WithAuthToken(token string) Option {
	return func(c *Client) {
		if strings.TrimSpace(token) != "" {
			c.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithAPIKey adds an X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if strings.TrimSpace(key) != "" {
			c.headers.Set("X-API-Key", key)
		}
	}
}

// WithHeader sets an arbitrary header applied to HTTP and WS calls.
func WithHeader(k, v string) Option {
	return func(c *Client) {
		if k != "" {
			c.headers.Set(k, v)
		}
	}
}

// CompleteStage marks one stage of a lesson done for a user. A zero xp lets
// the server fall back to the catalog reward.
func (c *Client) CompleteStage(ctx context.Context, userID, courseID, lessonID, stage string, xp int) (ProgressResult, error) {
	if strings.TrimSpace(userID) == "" {
		return ProgressResult{}, ErrEmptyUserID
	}

	u, err := url.Parse(fmt.Sprintf("%s/users/%s/stages/%s", c.baseURL, url.PathEscape(userID), url.PathEscape(stage)))
	if err != nil {
		return ProgressResult{}, err
	}
	q := u.Query()
	q.Set("course", courseID)
	q.Set("lesson", lessonID)
	if xp > 0 {
		q.Set("xp", fmt.Sprintf("%d", xp))
	}
	u.RawQuery = q.Encode()

	var res ProgressResult
	if err := c.post(ctx, u.String(), nil, &res); err != nil {
		return ProgressResult{}, err
	}
	return res, nil
}

// CompleteLesson marks all stages of a lesson done in one call. quizScore
// feeds the XP bonus tiers; zero xp falls back to the catalog reward total.
func (c *Client) CompleteLesson(ctx context.Context, userID, courseID, lessonID string, xp, quizScore int) (ProgressResult, error) {
	if strings.TrimSpace(userID) == "" {
		return ProgressResult{}, ErrEmptyUserID
	}

	u, err := url.Parse(fmt.Sprintf("%s/users/%s/lessons/complete", c.baseURL, url.PathEscape(userID)))
	if err != nil {
		return ProgressResult{}, err
	}
	q := u.Query()
	q.Set("course", courseID)
	q.Set("lesson", lessonID)
	if xp > 0 {
		q.Set("xp", fmt.Sprintf("%d", xp))
	}
	q.Set("score", fmt.Sprintf("%d", quizScore))
	u.RawQuery = q.Encode()

	var res ProgressResult
	if err := c.post(ctx, u.String(), nil, &res); err != nil {
		return ProgressResult{}, err
	}
	return res, nil
}

// SubmitQuiz grades answers against a lesson's question bank.
func (c *Client) SubmitQuiz(ctx context.Context, courseID, lessonID string, answers []int) (QuizResult, error) {
	u, err := url.Parse(c.baseURL + "/quizzes/score")
	if err != nil {
		return QuizResult{}, err
	}
	q := u.Query()
	q.Set("course", courseID)
	q.Set("lesson", lessonID)
	u.RawQuery = q.Encode()

	body, err := json.Marshal(map[string][]int{"answers": answers})
	if err != nil {
		return QuizResult{}, err
	}

	var res QuizResult
	if err := c.post(ctx, u.String(), body, &res); err != nil {
		return QuizResult{}, err
	}
	return res, nil
}

// GetProgress fetches the current progression snapshot for a user.
func (c *Client) GetProgress(ctx context.Context, userID string) (Progress, error) {
	if strings.TrimSpace(userID) == "" {
		return Progress{}, ErrEmptyUserID
	}
	u := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(userID))

	var p Progress
	if err := c.get(ctx, u, &p); err != nil {
		return Progress{}, err
	}
	return p, nil
}

// GetAccess fetches the lesson gating view of a course for a user.
func (c *Client) GetAccess(ctx context.Context, userID, courseID string) ([]LessonAccess, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	u, err := url.Parse(fmt.Sprintf("%s/users/%s/access", c.baseURL, url.PathEscape(userID)))
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("course", courseID)
	u.RawQuery = q.Encode()

	var access []LessonAccess
	if err := c.get(ctx, u.String(), &access); err != nil {
		return nil, err
	}
	return access, nil
}

// Health probes /healthz and returns status + storage check.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var hs HealthStatus
	if err := c.get(ctx, c.baseURL+"/healthz", &hs); err != nil {
		return HealthStatus{}, err
	}
	return hs, nil
}

// SubscribeEvents connects to the WebSocket stream and emits Event values.
// The returned channel closes when ctx is done or the connection drops.
func (c *Client) SubscribeEvents(ctx context.Context) (<-chan Event, error) {
	if c.wsURL == "" {
		return nil, errors.New("wsURL is not set; ensure baseURL is http/https")
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, c.wsURL, c.headers)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, 32)
	go func() {
		defer close(out)
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
				var evt Event
				if err := conn.ReadJSON(&evt); err != nil {
					return
				}
				select {
				case out <- evt:
				default:
					// drop if consumer is slow
				}
			}
		}
	}()
	return out, nil
}

func (c *Client) get(ctx context.Context, rawURL string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp, target)
}

func (c *Client) post(ctx context.Context, rawURL string, body []byte, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp, target)
}

func (c *Client) applyHeaders(r *http.Request) {
	for k, vals := range c.headers {
		for _, v := range vals {
			r.Header.Add(k, v)
		}
	}
}

func deriveWSURL(httpBase string) string {
	u, err := url.Parse(httpBase)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		// leave as-is for custom schemes
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}
