package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/homefeed/pkg/cache"
	"github.com/umputun/homefeed/pkg/config"
	"github.com/umputun/homefeed/pkg/domain"
	"github.com/umputun/homefeed/pkg/feed/mocks"
)

func TestEngine_Build(t *testing.T) {
	ctx := context.Background()
	states := domain.States{
		"sensor.old":    {EntityID: "sensor.old", State: "1", LastChanged: testNow.Add(-100 * time.Second).Format(time.RFC3339)},
		"sensor.recent": {EntityID: "sensor.recent", State: "2", LastChanged: testNow.Add(-50 * time.Second).Format(time.RFC3339)},
		"calendar.home": {EntityID: "calendar.home", State: "off", Attributes: map[string]any{"friendly_name": "Home"}},
	}

	t.Run("further in the past sorts first", func(t *testing.T) {
		e := newTestEngine(t, config.Feed{Entities: config.EntityList{{Entity: "sensor.recent"}, {Entity: "sensor.old"}}}, Params{})
		items, err := e.Build(ctx, states)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "sensor.old", items[0].EntityID)
		assert.InDelta(t, 100, items[0].TimeDifference.Value, 0.001)
		assert.Equal(t, 1, items[0].TimeDifference.Sign)
		assert.Equal(t, "sensor.recent", items[1].EntityID)
		assert.InDelta(t, 50, items[1].TimeDifference.Value, 0.001)
		assert.Equal(t, "2024-03-01T11:58:20Z", items[0].Timestamp)
	})

	t.Run("sources merged, future events last", func(t *testing.T) {
		store := cache.NewMemory()
		keys := cache.Keys{CacheID: "card"}
		require.NoError(t, cache.Save(ctx, store, keys.Notifications(), []domain.FeedItem{{
			Type: domain.ItemNotification, DisplayName: "Backup", Condition: true,
			Notification: &domain.Notification{NotificationID: "n1", CreatedAt: testNow.Add(-time.Hour).Format(time.RFC3339)},
		}}))
		require.NoError(t, cache.Save(ctx, store, keys.History(), []domain.FeedItem{{
			Type: domain.ItemEntityHistory, EntityID: "binary_sensor.door", Condition: true,
			Snapshot: &domain.StateSnapshot{State: "on", LastChanged: testNow.Add(-2 * time.Hour).Format(time.RFC3339)},
		}}))
		api := &mocks.CalendarAPIMock{
			EventsFunc: func(ctx context.Context, calendarID string, start, end time.Time) ([]domain.RawEvent, error) {
				return []domain.RawEvent{{Summary: "Dinner", Start: domain.EventTime{DateTime: "2024-03-01T19:00:00Z"},
					End: domain.EventTime{DateTime: "2024-03-01T21:00:00Z"}}}, nil
			},
		}
		e := newTestEngine(t, config.Feed{CardID: "card", Calendars: []string{"calendar.home"},
			Entities: config.EntityList{{Entity: "sensor.old"}}}, Params{Store: store, Calendar: api})

		items, err := e.Build(ctx, states)
		require.NoError(t, err)
		require.Len(t, items, 4)
		assert.Equal(t, domain.ItemEntityHistory, items[0].Type)
		assert.Equal(t, domain.ItemNotification, items[1].Type)
		assert.Equal(t, domain.ItemEntity, items[2].Type)
		assert.Equal(t, domain.ItemCalendarEvent, items[3].Type)
		assert.Equal(t, -1, items[3].TimeDifference.Sign)
		assert.InDelta(t, 7*3600, items[3].TimeDifference.Abs, 0.001)
	})

	t.Run("calendar failure does not fail the build", func(t *testing.T) {
		api := &mocks.CalendarAPIMock{
			EventsFunc: func(ctx context.Context, calendarID string, start, end time.Time) ([]domain.RawEvent, error) {
				return nil, errors.New("boom")
			},
		}
		e := newTestEngine(t, config.Feed{Calendars: []string{"calendar.home"}, Entities: config.EntityList{{Entity: "sensor.old"}}},
			Params{Calendar: api})
		items, err := e.Build(ctx, states)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "sensor.old", items[0].EntityID)
	})

	t.Run("condition filters and max count", func(t *testing.T) {
		hidden := "False"
		e := newTestEngine(t, config.Feed{MaxItemCount: 1, Entities: config.EntityList{
			{Entity: "sensor.old", Condition: &hidden},
			{Entity: "sensor.recent"},
			{Entity: "sensor.missing"},
		}}, Params{})
		items, err := e.Build(ctx, states)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "sensor.recent", items[0].EntityID, "missing entity is stamped now and sorts after")
	})

	t.Run("ties keep input order", func(t *testing.T) {
		tie := domain.States{
			"sensor.a": {EntityID: "sensor.a", State: "1", LastChanged: "2024-03-01T11:00:00Z"},
			"sensor.b": {EntityID: "sensor.b", State: "1", LastChanged: "2024-03-01T11:00:00Z"},
			"sensor.c": {EntityID: "sensor.c", State: "1", LastChanged: "2024-03-01T11:00:00Z"},
		}
		e := newTestEngine(t, config.Feed{Entities: config.EntityList{{Entity: "sensor.b"}, {Entity: "sensor.c"}, {Entity: "sensor.a"}}}, Params{})
		items, err := e.Build(ctx, tie)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, []string{"sensor.b", "sensor.c", "sensor.a"}, []string{items[0].EntityID, items[1].EntityID, items[2].EntityID})
	})

	t.Run("strict template failure fails the build", func(t *testing.T) {
		e := newTestEngine(t, config.Feed{StrictTemplates: true, Entities: config.EntityList{{Entity: "sensor.old", ContentTemplate: "{{fail}}"}}},
			Params{Renderer: substRenderer()})
		_, err := e.Build(ctx, states)
		require.Error(t, err)
	})

	t.Run("debug item", func(t *testing.T) {
		store := cache.NewMemory()
		e := newTestEngine(t, config.Feed{CardID: "dbg", Debug: true}, Params{Store: store})
		items, err := e.Build(ctx, states)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, DebugEntityID, items[0].EntityID)
		assert.Equal(t, "mdi:bug", items[0].Icon)
		assert.Contains(t, items[0].DisplayName, "**Cache Id:** dbg")
		assert.Contains(t, items[0].DisplayName, "**Cache Status:** Live")
		assert.Contains(t, items[0].DisplayName, "**Locale:** en_US")

		require.NoError(t, store.Set(ctx, e.keys.History(), "[]"))
		items, err = e.Build(ctx, states)
		require.NoError(t, err)
		assert.Contains(t, items[0].DisplayName, "**Cache Status:** From Cache")
	})
}

func TestEngine_ItemTime(t *testing.T) {
	e := newTestEngine(t, config.Feed{}, Params{})
	ts := func(s string) time.Time {
		res, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return res
	}

	tests := []struct {
		name string
		item domain.FeedItem
		want time.Time
	}{
		{name: "notification created", want: ts("2024-03-01T10:00:00Z"),
			item: domain.FeedItem{Type: domain.ItemNotification, Notification: &domain.Notification{CreatedAt: "2024-03-01T10:00:00Z"}}},
		{name: "calendar start", want: ts("2024-03-02T00:00:00Z"),
			item: domain.FeedItem{Type: domain.ItemCalendarEvent, Event: &domain.CalendarEvent{StartTime: "2024-03-02"}}},
		{name: "explicit attribute", want: ts("2024-02-01T00:00:00Z"),
			item: domain.FeedItem{Type: domain.ItemEntity, EntityID: "sensor.a", Attribute: "seen",
				Snapshot: &domain.StateSnapshot{State: "x", LastChanged: "2024-03-01T00:00:00Z", Attributes: map[string]any{"seen": "2024-02-01T00:00:00Z"}}}},
		{name: "timestamp device class", want: ts("2024-01-15T08:00:00Z"),
			item: domain.FeedItem{Type: domain.ItemEntity, EntityID: "sensor.next_alarm", State: "formatted",
				Snapshot: &domain.StateSnapshot{State: "2024-01-15T08:00:00Z", Attributes: map[string]any{"device_class": "timestamp"}}}},
		{name: "automation last triggered", want: ts("2024-02-29T22:00:00Z"),
			item: domain.FeedItem{Type: domain.ItemEntity, EntityID: "automation.night",
				Snapshot: &domain.StateSnapshot{State: "on", LastChanged: "2024-01-01T00:00:00Z", Attributes: map[string]any{"last_triggered": "2024-02-29T22:00:00Z"}}}},
		{name: "last_changed attribute wins", want: ts("2024-02-10T00:00:00Z"),
			item: domain.FeedItem{Type: domain.ItemEntityHistory, EntityID: "sensor.a",
				Snapshot: &domain.StateSnapshot{State: "on", LastChanged: "2024-01-01T00:00:00Z", Attributes: map[string]any{"last_changed": "2024-02-10T00:00:00Z"}}}},
		{name: "multi record time", want: ts("2024-02-20T00:00:00Z"),
			item: domain.FeedItem{Type: domain.ItemMultiEntity, EntityID: "sensor.list",
				Snapshot: &domain.StateSnapshot{State: "1", LastChanged: "2024-02-20T00:00:00Z"}}},
		{name: "unix seconds attribute", want: time.Unix(1709200000, 0).UTC(),
			item: domain.FeedItem{Type: domain.ItemEntity, EntityID: "sensor.a", Attribute: "ts",
				Snapshot: &domain.StateSnapshot{State: "1", Attributes: map[string]any{"ts": float64(1709200000)}}}},
		{name: "unparseable is now", want: testNow,
			item: domain.FeedItem{Type: domain.ItemEntity, EntityID: "sensor.a", Snapshot: &domain.StateSnapshot{State: "1", LastChanged: "garbage"}}},
		{name: "unavailable is now", want: testNow, item: domain.FeedItem{Type: domain.ItemUnavailable, EntityID: "sensor.gone"}},
		{name: "unknown type is now", want: testNow, item: domain.FeedItem{Type: "other"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(e.itemTime(tt.item, testNow)), "got %v", e.itemTime(tt.item, testNow))
		})
	}
}
