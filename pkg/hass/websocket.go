package hass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/net/websocket"

	"github.com/umputun/homefeed/pkg/domain"
)

// NotificationsUpdatedEvent is fired by Home Assistant on any persistent notification change
const NotificationsUpdatedEvent = "persistent_notifications_updated"

const maxReconnectDelay = 30 * time.Second

type wsMessage struct {
	ID        int             `json:"id,omitempty"`
	Type      string          `json:"type"`
	Success   bool            `json:"success,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *wsError        `json:"error,omitempty"`
	Message   string          `json:"message,omitempty"`
	HAVersion string          `json:"ha_version,omitempty"`
}

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Notifications returns all persistent notifications
func (c *Client) Notifications(ctx context.Context) ([]domain.Notification, error) {
	ws, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	if err := ws.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}
	resp, err := c.command(ws, map[string]any{"id": 1, "type": "persistent_notification/get"})
	if err != nil {
		return nil, fmt.Errorf("get notifications: %w", err)
	}

	var res []domain.Notification
	if err := json.Unmarshal(resp.Result, &res); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return res, nil
}

// Subscribe calls onUpdate on every notification change until ctx is done or unsubscribe is called.
// Broken connections are re-established, onUpdate is called after each reconnect.
func (c *Client) Subscribe(ctx context.Context, onUpdate func()) (func(), error) {
	ws, err := c.subscribe(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.listen(ctx, ws, onUpdate)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}, nil
}

// listen reads events and reconnects with growing delay
func (c *Client) listen(ctx context.Context, ws *websocket.Conn, onUpdate func()) {
	delay := time.Second
	for {
		stop := context.AfterFunc(ctx, func() { _ = ws.Close() })
		err := c.readEvents(ws, onUpdate)
		stop()
		_ = ws.Close()
		if ctx.Err() != nil {
			return
		}
		lgr.Printf("[WARN] notification subscription lost: %v", err)

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			if ws, err = c.subscribe(ctx); err == nil {
				break
			}
			lgr.Printf("[WARN] can't resubscribe to notifications, retry in %v: %v", delay, err)
			delay = min(delay*2, maxReconnectDelay)
		}
		delay = time.Second
		lgr.Printf("[INFO] notification subscription restored")
		onUpdate() // changes could be missed while disconnected
	}
}

func (c *Client) readEvents(ws *websocket.Conn, onUpdate func()) error {
	for {
		var msg wsMessage
		if err := websocket.JSON.Receive(ws, &msg); err != nil {
			return fmt.Errorf("receive: %w", err)
		}
		if msg.Type == "event" {
			onUpdate()
		}
	}
}

func (c *Client) subscribe(ctx context.Context) (*websocket.Conn, error) {
	ws, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	if err := ws.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("set deadline: %w", err)
	}
	if _, err := c.command(ws, map[string]any{"id": 1, "type": "subscribe_events", "event_type": NotificationsUpdatedEvent}); err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", NotificationsUpdatedEvent, err)
	}
	if err := ws.SetDeadline(time.Time{}); err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("reset deadline: %w", err)
	}
	return ws, nil
}

// dial connects and authenticates
func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	cfg, err := websocket.NewConfig(c.wsURL(), c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("websocket config: %w", err)
	}
	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ws, err := cfg.DialContext(dialCtx)
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}

	if err := ws.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("set deadline: %w", err)
	}
	if err := c.auth(ws); err != nil {
		_ = ws.Close()
		return nil, err
	}
	return ws, nil
}

func (c *Client) auth(ws *websocket.Conn) error {
	var msg wsMessage
	if err := websocket.JSON.Receive(ws, &msg); err != nil {
		return fmt.Errorf("receive auth request: %w", err)
	}
	if msg.Type != "auth_required" {
		return fmt.Errorf("unexpected message %q, auth_required expected", msg.Type)
	}
	if err := websocket.JSON.Send(ws, map[string]string{"type": "auth", "access_token": c.token}); err != nil {
		return fmt.Errorf("send auth: %w", err)
	}
	if err := websocket.JSON.Receive(ws, &msg); err != nil {
		return fmt.Errorf("receive auth result: %w", err)
	}
	switch msg.Type {
	case "auth_ok":
		return nil
	case "auth_invalid":
		return fmt.Errorf("auth invalid: %s", msg.Message)
	default:
		return fmt.Errorf("unexpected auth result %q", msg.Type)
	}
}

// command sends a message and waits for its result
func (c *Client) command(ws *websocket.Conn, req map[string]any) (*wsMessage, error) {
	if err := websocket.JSON.Send(ws, req); err != nil {
		return nil, fmt.Errorf("send %v: %w", req["type"], err)
	}
	for {
		var msg wsMessage
		if err := websocket.JSON.Receive(ws, &msg); err != nil {
			return nil, fmt.Errorf("receive result: %w", err)
		}
		if msg.Type != "result" || msg.ID != req["id"] {
			continue
		}
		if !msg.Success {
			if msg.Error != nil {
				return nil, fmt.Errorf("command failed: %s %s", msg.Error.Code, msg.Error.Message)
			}
			return nil, errors.New("command failed")
		}
		return &msg, nil
	}
}

func (c *Client) wsURL() string {
	switch {
	case strings.HasPrefix(c.baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.baseURL, "https://") + "/api/websocket"
	case strings.HasPrefix(c.baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.baseURL, "http://") + "/api/websocket"
	default:
		return c.baseURL + "/api/websocket"
	}
}
