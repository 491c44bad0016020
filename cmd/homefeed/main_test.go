package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/umputun/homefeed/pkg/config"
)

// fakeHomeAssistant serves states, template rendering and the notification websocket api
func fakeHomeAssistant(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/states", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			http.Error(w, "401: Unauthorized", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"entity_id":"sensor.door","state":"open","attributes":{"friendly_name":"Door"},
			"last_changed":"2024-03-01T10:00:00+00:00","last_updated":"2024-03-01T10:00:00+00:00"}]`))
	})
	mux.HandleFunc("POST /api/template", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("rendered"))
	})
	mux.Handle("/api/websocket", websocket.Handler(func(ws *websocket.Conn) {
		_ = websocket.JSON.Send(ws, map[string]any{"type": "auth_required"})
		var msg map[string]any
		if err := websocket.JSON.Receive(ws, &msg); err != nil || msg["access_token"] != "secret" {
			_ = websocket.JSON.Send(ws, map[string]any{"type": "auth_invalid", "message": "bad token"})
			return
		}
		_ = websocket.JSON.Send(ws, map[string]any{"type": "auth_ok"})
		for {
			var req map[string]any
			if err := websocket.JSON.Receive(ws, &req); err != nil {
				return
			}
			res := map[string]any{"id": req["id"], "type": "result", "success": true}
			if req["type"] == "persistent_notification/get" {
				res["result"] = []map[string]any{{"notification_id": "backup_done", "message": "Backup done",
					"created_at": "2024-03-01T09:00:00+00:00"}}
			}
			_ = websocket.JSON.Send(ws, res)
		}
	}))
	return httptest.NewServer(mux)
}

func freePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return port
}

func writeConfig(t *testing.T, path string, port int, haURL, title string) {
	t.Helper()
	data := fmt.Sprintf(`
server:
  listen: "127.0.0.1:%d"
cache:
  type: memory
homeassistant:
  url: %s
  token: secret
schedule:
  state_poll: 1s
feed:
  title: %s
  timezone: UTC
  entities:
    - sensor.door
`, port, haURL, title)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
}

func TestRun_MissingConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: "non-existent-config.yml"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRun_InvalidConfig(t *testing.T) {
	tbl := []struct {
		name, content string
	}{
		{"bad yaml", "invalid: yaml: content: ["},
		{"bad entities", "homeassistant:\n  url: http://ha\nfeed:\n  entities: sensor.door\n"},
		{"no url", "feed:\n  title: Home\n"},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()
			err := run(ctx, Opts{Config: path})
			require.Error(t, err)
			require.Contains(t, err.Error(), "failed to load config")
		})
	}
}

func TestRun_HomeAssistantDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	writeConfig(t, path, freePort(t), "http://127.0.0.1:1", "Home")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := run(ctx, Opts{Config: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start scheduler")
}

func TestRun_ServerStartStop(t *testing.T) {
	ha := fakeHomeAssistant(t)
	defer ha.Close()

	port := freePort(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	writeConfig(t, path, port, ha.URL, "Home")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx, Opts{Config: path}) }()

	status := func() map[string]any {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/v1/status", port))
		if err != nil {
			return nil
		}
		defer resp.Body.Close()
		var res map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return nil
		}
		return res
	}

	require.Eventually(t, func() bool {
		st := status()
		return st != nil && st["ready"] == true
	}, 5*time.Second, 50*time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/v1/feed", port))
	require.NoError(t, err)
	var feedResp struct {
		Items []struct {
			Type     string `json:"item_type"`
			EntityID string `json:"entity_id"`
			Name     string `json:"display_name"`
		} `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&feedResp))
	resp.Body.Close()
	require.Len(t, feedResp.Items, 2)
	assert.Equal(t, "notification", feedResp.Items[0].Type)
	assert.Equal(t, "Backup Done", feedResp.Items[0].Name)
	assert.Equal(t, "sensor.door", feedResp.Items[1].EntityID)

	resp, err = http.Get(fmt.Sprintf("http://127.0.0.1:%d/rss", port))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// feed section is reloaded on file change
	assert.Eventually(t, func() bool {
		if st := status(); st != nil && st["title"] == "Other" {
			return true
		}
		writeConfig(t, path, port, ha.URL, "Other")
		return false
	}, 5*time.Second, 300*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown timeout")
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, closeFn, err := openStore(ctx, config.CacheConfig{Type: "memory"})
		require.NoError(t, err)
		defer closeFn()
		require.NoError(t, store.Set(ctx, "k", "v"))
		v, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", v)
	})

	t.Run("sqlite", func(t *testing.T) {
		dsn := "file:" + filepath.Join(t.TempDir(), "cache.db") + "?mode=rwc"
		store, closeFn, err := openStore(ctx, config.CacheConfig{Type: "sqlite", DSN: dsn})
		require.NoError(t, err)
		defer closeFn()
		require.NoError(t, store.Set(ctx, "k", "v"))
		v, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", v)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := openStore(ctx, config.CacheConfig{Type: "redis"})
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "redis"))
	})
}

func TestSetupLog(t *testing.T) {
	t.Run("debug mode enabled", func(t *testing.T) {
		setupLog(true)
	})

	t.Run("debug mode disabled", func(t *testing.T) {
		setupLog(false)
	})

	t.Run("with secrets", func(t *testing.T) {
		setupLog(true, "secret1", "secret2")
	})
}
