// Package hass is a Home Assistant client. REST api serves states, history,
// calendars and template rendering, websocket api serves persistent notifications.
package hass

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

	"golang.org/x/time/rate"

	"github.com/umputun/homefeed/pkg/domain"
)

// timeLayout is the time format of history and calendar urls, always UTC
const timeLayout = "2006-01-02T15:04:05"

// Config defines connection to Home Assistant
type Config struct {
	URL       string
	Token     string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 is unlimited
}

// Client talks to Home Assistant REST and websocket api
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New makes a client
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
	}
}

// States returns current states of all entities
func (c *Client) States(ctx context.Context) (domain.States, error) {
	var list []domain.StateSnapshot
	if err := c.call(ctx, http.MethodGet, "/api/states", nil, nil, &list); err != nil {
		return nil, fmt.Errorf("get states: %w", err)
	}
	res := make(domain.States, len(list))
	for _, st := range list {
		res[st.EntityID] = st
	}
	return res, nil
}

// History returns state transitions of entities between start and end, one sequence per entity
func (c *Client) History(ctx context.Context, start, end time.Time, entityIDs []string) ([][]domain.StateSnapshot, error) {
	query := url.Values{}
	query.Set("end_time", end.UTC().Format(timeLayout)+"Z")
	query.Set("filter_entity_id", strings.Join(entityIDs, ","))

	var res [][]domain.StateSnapshot
	path := "/api/history/period/" + start.UTC().Format(timeLayout) + "Z"
	if err := c.call(ctx, http.MethodGet, path, query, nil, &res); err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return res, nil
}

// Events returns events of a calendar entity between start and end
func (c *Client) Events(ctx context.Context, calendarID string, start, end time.Time) ([]domain.RawEvent, error) {
	query := url.Values{}
	query.Set("start", start.UTC().Format(timeLayout)+"Z")
	query.Set("end", end.UTC().Format(timeLayout)+"Z")

	var res []domain.RawEvent
	if err := c.call(ctx, http.MethodGet, "/api/calendars/"+url.PathEscape(calendarID), query, nil, &res); err != nil {
		return nil, fmt.Errorf("get events of %s: %w", calendarID, err)
	}
	return res, nil
}

// Render renders a template with variables
func (c *Client) Render(ctx context.Context, tmpl string, vars map[string]string) (string, error) {
	body := struct {
		Template  string            `json:"template"`
		Variables map[string]string `json:"variables,omitempty"`
	}{Template: tmpl, Variables: vars}

	var res string
	if err := c.call(ctx, http.MethodPost, "/api/template", nil, body, &res); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return res, nil
}

// Dismiss removes persistent notification with persistent_notification.dismiss service
func (c *Client) Dismiss(ctx context.Context, notificationID string) error {
	body := map[string]string{"notification_id": notificationID}
	var changed string // list of changed states, not used
	if err := c.call(ctx, http.MethodPost, "/api/services/persistent_notification/dismiss", nil, body, &changed); err != nil {
		return fmt.Errorf("dismiss notification %s: %w", notificationID, err)
	}
	return nil
}

// call makes a request and decodes response. A *string destination gets the raw body.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, path, strings.TrimSpace(string(msg)))
	}

	if s, ok := out.(*string); ok {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		*s = string(data)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
