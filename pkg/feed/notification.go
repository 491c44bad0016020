package feed

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/umputun/homefeed/pkg/cache"
	"github.com/umputun/homefeed/pkg/domain"
)

// notification refresh states
const (
	notifyIdle int32 = iota
	notifyRefreshing
)

var nonAlphaNum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// RefreshNotifications gets notifications and caches them with the update time.
// It returns false without doing anything if another refresh is in progress.
func (e *Engine) RefreshNotifications(ctx context.Context) (bool, error) {
	if !e.notifyState.CompareAndSwap(notifyIdle, notifyRefreshing) {
		lgr.Printf("[DEBUG] notifications refresh for %s is in progress, skipped", e.keys.CacheID)
		return false, nil
	}
	defer e.notifyState.Store(notifyIdle)

	if e.notifier == nil {
		return true, fmt.Errorf("notification api is not configured")
	}
	list, err := e.notifier.Notifications(ctx)
	if err != nil {
		return true, fmt.Errorf("get notifications: %w", err)
	}

	items := make([]domain.FeedItem, 0, len(list))
	for _, n := range list {
		if e.idFilter != nil && !e.idFilter.MatchString(n.NotificationID) {
			continue
		}
		items = append(items, e.notificationItem(n))
	}

	if err := cache.Save(ctx, e.store, e.keys.Notifications(), items); err != nil {
		return true, fmt.Errorf("save notifications: %w", err)
	}
	if err := cache.Save(ctx, e.store, e.keys.NotificationsLastUpdate(), e.now().UTC().Format(time.RFC3339)); err != nil {
		return true, fmt.Errorf("save notifications update time: %w", err)
	}
	e.loaded.Store(true)
	lgr.Printf("[DEBUG] cached %d notifications for %s", len(items), e.keys.CacheID)
	return true, nil
}

// NotificationsRefreshing reports whether a refresh is running now
func (e *Engine) NotificationsRefreshing() bool {
	return e.notifyState.Load() == notifyRefreshing
}

// NotificationsLoaded reports whether notifications were refreshed at least once
func (e *Engine) NotificationsLoaded() bool {
	return e.loaded.Load()
}

// NeedsNotifications is true if notifications were never loaded or have no cached update time
func (e *Engine) NeedsNotifications(ctx context.Context) bool {
	if !e.loaded.Load() {
		return true
	}
	_, ok, err := cache.Load[string](ctx, e.store, e.keys.NotificationsLastUpdate())
	return err != nil || !ok
}

// CachedNotifications returns notification items saved by the last refresh
func (e *Engine) CachedNotifications(ctx context.Context) ([]domain.FeedItem, error) {
	items, _, err := cache.Load[[]domain.FeedItem](ctx, e.store, e.keys.Notifications())
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	return items, nil
}

// Subscribe registers for notification changes
func (e *Engine) Subscribe(ctx context.Context, onUpdate func()) (func(), error) {
	if e.notifier == nil {
		return func() {}, nil
	}
	return e.notifier.Subscribe(ctx, onUpdate)
}

// DismissNotification dismisses notification in Home Assistant, cached notifications are not touched
func (e *Engine) DismissNotification(ctx context.Context, notificationID string) error {
	if e.notifier == nil {
		return fmt.Errorf("notification api is not configured")
	}
	if err := e.notifier.Dismiss(ctx, notificationID); err != nil {
		return fmt.Errorf("dismiss: %w", err)
	}
	return nil
}

func (e *Engine) notificationItem(n domain.Notification) domain.FeedItem {
	if n.Title == "" {
		n.Title = TitleFromID(n.NotificationID)
	}
	if e.sanitizer != nil {
		n.Message = e.sanitizer.Sanitize(n.Message)
	}
	return domain.FeedItem{
		Type:         domain.ItemNotification,
		DisplayName:  n.Title,
		Format:       domain.FormatRelative,
		Notification: &n,
		Condition:    true,
	}
}

// TitleFromID makes a title of notification id, "backup_done" becomes "Backup Done"
func TitleFromID(id string) string {
	words := nonAlphaNum.ReplaceAllString(id, " ")
	return cases.Title(language.Und).String(strings.ToLower(words))
}
