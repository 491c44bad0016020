package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/homefeed/pkg/domain"
)

// DebugEntityID is the entity id of the synthetic debug item
const DebugEntityID = "home_feed.debug_info"

// Build merges all sources into the feed. Cached notifications and history are used as is,
// calendar events are refreshed when expired. Items are ordered by descending time difference,
// so the oldest come first and future events last.
func (e *Engine) Build(ctx context.Context, states StateProvider) ([]domain.FeedItem, error) {
	var items []domain.FeedItem
	if e.feed.Debug {
		items = append(items, e.debugItem(ctx))
	}

	notifications, err := e.CachedNotifications(ctx)
	if err != nil {
		lgr.Printf("[WARN] %v", err)
	}
	items = append(items, notifications...)

	events, err := e.Events(ctx, states)
	if err != nil {
		lgr.Printf("[WARN] %v", err)
	}
	items = append(items, events...)

	items = append(items, e.Entities(states)...)
	items = append(items, e.MultiItems(states)...)

	history, err := e.CachedHistory(ctx)
	if err != nil {
		lgr.Printf("[WARN] %v", err)
	}
	items = append(items, history...)

	resolved, err := e.resolveTemplates(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("build feed %s: %w", e.keys.CacheID, err)
	}

	now := e.now()
	res := make([]domain.FeedItem, 0, len(resolved))
	for _, item := range resolved {
		if !item.Condition {
			continue
		}
		ts := e.itemTime(item, now)
		item.Timestamp = formatTime(ts)
		item.TimeDifference = domain.NewTimeDifference(now.Sub(ts).Seconds())
		res = append(res, item)
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].TimeDifference.Value > res[j].TimeDifference.Value
	})
	if e.feed.MaxItemCount > 0 && len(res) > e.feed.MaxItemCount {
		res = res[:e.feed.MaxItemCount]
	}
	return res, nil
}

// itemTime resolves display time of an item, unparseable values are treated as now
func (e *Engine) itemTime(item domain.FeedItem, now time.Time) time.Time {
	var raw any
	switch item.Type {
	case domain.ItemNotification:
		if item.Notification != nil {
			raw = item.Notification.CreatedAt
		}
	case domain.ItemCalendarEvent:
		if item.Event != nil {
			if t, ok := e.eventTime(item.Event.StartTime); ok {
				return t
			}
		}
	case domain.ItemEntity, domain.ItemEntityHistory, domain.ItemMultiEntity:
		raw = snapshotTime(item)
	case domain.ItemUnavailable:
		return now
	default:
		return now
	}

	if t, ok := parseTimeValue(raw, e.loc); ok {
		return t
	}
	return now
}

// snapshotTime picks explicit attribute, timestamp state, automation trigger time or last change
func snapshotTime(item domain.FeedItem) any {
	st := item.Snapshot
	if st == nil {
		return nil
	}
	if item.Attribute != "" {
		return st.Attributes[item.Attribute]
	}
	if st.Attr("device_class") == "timestamp" {
		return st.State
	}
	if item.Domain() == "automation" {
		return st.Attributes["last_triggered"]
	}
	if v, ok := st.Attributes["last_changed"]; ok && v != nil && v != "" {
		return v
	}
	return st.LastChanged
}

func (e *Engine) debugItem(ctx context.Context) domain.FeedItem {
	status := "Live"
	if raw, err := e.store.Get(ctx, e.keys.History()); err == nil && raw != "" {
		status = "From Cache"
	}
	info := "## Debug Information\n\n" +
		"**Cache Id:** " + e.keys.CacheID + "\n\n" +
		"**Cache Status:** " + status + "\n\n" +
		"**Locale:** " + string(e.locale)

	return domain.FeedItem{
		Type:          domain.ItemEntity,
		EntityID:      DebugEntityID,
		DisplayName:   info,
		Icon:          "mdi:bug",
		Format:        domain.FormatRelative,
		State:         "on",
		Snapshot:      &domain.StateSnapshot{EntityID: DebugEntityID, State: "on", Attributes: map[string]any{"device_class": "debug"}, LastChanged: formatTime(e.now())},
		MoreInfoOnTap: true,
		Detail:        info,
		Condition:     true,
	}
}
