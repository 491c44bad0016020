// Package cache provides persisted key/value storage for feed sources.
// Values are JSON text, keys are scoped by the feed cache id.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store

// Store is a key/value store. Get returns an empty string for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// source names used as key prefixes
const (
	keyPrefix               = "home-feed-"
	SourceEvents            = "events"
	SourceEventsLastUpdate  = "events-last-update"
	SourceNotifications     = "notifications"
	SourceNotificationsLast = "notifications-last-update"
	SourceHistory           = "history"
)

// Keys builds cache keys for a single feed instance
type Keys struct {
	CacheID string
}

// Key returns the full key of a source
func (k Keys) Key(source string) string { return keyPrefix + source + k.CacheID }

// Events key of cached calendar events
func (k Keys) Events() string { return k.Key(SourceEvents) }

// EventsLastUpdate key of calendar refresh time
func (k Keys) EventsLastUpdate() string { return k.Key(SourceEventsLastUpdate) }

// Notifications key of cached notifications
func (k Keys) Notifications() string { return k.Key(SourceNotifications) }

// NotificationsLastUpdate key of notification refresh time
func (k Keys) NotificationsLastUpdate() string { return k.Key(SourceNotificationsLast) }

// History key of cached history items
func (k Keys) History() string { return k.Key(SourceHistory) }

// All returns all keys owned by the feed instance
func (k Keys) All() []string {
	return []string{k.Events(), k.EventsLastUpdate(), k.Notifications(), k.NotificationsLastUpdate(), k.History()}
}

// ClearAll removes all keys of a feed instance
func ClearAll(ctx context.Context, store Store, cacheID string) error {
	for _, key := range (Keys{CacheID: cacheID}).All() {
		if err := store.Remove(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

// Load decodes a JSON value. Missing key or empty value is not an error, ok is false in this case.
func Load[T any](ctx context.Context, store Store, key string) (val T, ok bool, err error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return val, false, fmt.Errorf("get %s: %w", key, err)
	}
	if raw == "" || raw == "null" {
		return val, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &val); err != nil {
		return val, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return val, true, nil
}

// Save encodes value as JSON and stores it
func Save(ctx context.Context, store Store, key string, val any) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
