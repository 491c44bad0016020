package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/homefeed/pkg/cache"
	"github.com/umputun/homefeed/pkg/config"
	"github.com/umputun/homefeed/pkg/domain"
	"github.com/umputun/homefeed/pkg/feed/mocks"
)

func TestEngine_Events(t *testing.T) {
	ctx := context.Background()
	states := domain.States{
		"calendar.home": {EntityID: "calendar.home", State: "off", Attributes: map[string]any{"friendly_name": "Home"}},
		"calendar.work": {EntityID: "calendar.work", State: "off", Attributes: map[string]any{"friendly_name": "Work"}},
	}
	feedCfg := config.Feed{Title: "feed", Calendars: []string{"calendar.home", "calendar.work"}, CalendarTimeFormat: "date"}

	t.Run("fetch all calendars", func(t *testing.T) {
		store := cache.NewMemory()
		var mu sync.Mutex
		var windows [][2]time.Time
		api := &mocks.CalendarAPIMock{
			EventsFunc: func(ctx context.Context, calendarID string, start, end time.Time) ([]domain.RawEvent, error) {
				mu.Lock()
				windows = append(windows, [2]time.Time{start, end})
				mu.Unlock()
				if calendarID == "calendar.home" {
					return []domain.RawEvent{{Summary: "Bins", Start: domain.EventTime{Date: "2024-03-01"}, End: domain.EventTime{Date: "2024-03-02"}}}, nil
				}
				return []domain.RawEvent{{Title: "Standup",
					Start: domain.EventTime{DateTime: "2024-03-01T10:00:00Z"}, End: domain.EventTime{DateTime: "2024-03-01T10:15:00Z"}}}, nil
			},
		}
		e := newTestEngine(t, feedCfg, Params{Store: store, Calendar: api})

		items, err := e.Events(ctx, states)
		require.NoError(t, err)
		require.Len(t, items, 2)

		assert.Equal(t, domain.ItemCalendarEvent, items[0].Type)
		assert.Equal(t, "Bins", items[0].DisplayName)
		assert.Equal(t, "date", items[0].Format)
		require.NotNil(t, items[0].Event)
		assert.True(t, items[0].Event.AllDay)
		assert.Equal(t, "calendar.home", items[0].Event.Calendar)
		assert.Equal(t, "2024-03-01", items[0].Event.StartTime)
		assert.Equal(t, "<ha-icon icon=\"mdi:clock\"></ha-icon> Friday, 1 March\n<ha-icon icon=\"mdi:calendar\"></ha-icon> Home", items[0].Detail)

		assert.Equal(t, "Standup", items[1].DisplayName)
		assert.False(t, items[1].Event.AllDay)
		assert.Contains(t, items[1].Detail, "Friday, 1 March  ⋅ 10:00 - 10:15 am")
		assert.Contains(t, items[1].Detail, "Work")

		require.Len(t, windows, 2)
		for _, w := range windows {
			assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), w[0])
			assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), w[1], "forward 1 day plus one")
		}

		last, ok, err := cache.Load[string](ctx, store, e.keys.EventsLastUpdate())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "2024-03-01T12:00:00Z", last)
	})

	t.Run("fresh cache is served", func(t *testing.T) {
		store := cache.NewMemory()
		api := &mocks.CalendarAPIMock{}
		e := newTestEngine(t, feedCfg, Params{Store: store, Calendar: api})
		cached := []domain.FeedItem{{Type: domain.ItemCalendarEvent, DisplayName: "cached", Condition: true}}
		require.NoError(t, cache.Save(ctx, store, e.keys.Events(), cached))
		require.NoError(t, cache.Save(ctx, store, e.keys.EventsLastUpdate(), testNow.Add(-10*time.Minute).Format(time.RFC3339)))

		items, err := e.Events(ctx, states)
		require.NoError(t, err)
		assert.Equal(t, cached, items)
		assert.Empty(t, api.EventsCalls())
	})

	t.Run("expired cache is refetched", func(t *testing.T) {
		store := cache.NewMemory()
		api := &mocks.CalendarAPIMock{
			EventsFunc: func(ctx context.Context, calendarID string, start, end time.Time) ([]domain.RawEvent, error) {
				return nil, nil
			},
		}
		e := newTestEngine(t, feedCfg, Params{Store: store, Calendar: api})
		require.NoError(t, cache.Save(ctx, store, e.keys.Events(), []domain.FeedItem{{DisplayName: "old"}}))
		require.NoError(t, cache.Save(ctx, store, e.keys.EventsLastUpdate(), testNow.Add(-16*time.Minute).Format(time.RFC3339)))

		items, err := e.Events(ctx, states)
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Len(t, api.EventsCalls(), 2)
	})

	t.Run("one failing calendar empties the cycle", func(t *testing.T) {
		store := cache.NewMemory()
		api := &mocks.CalendarAPIMock{
			EventsFunc: func(ctx context.Context, calendarID string, start, end time.Time) ([]domain.RawEvent, error) {
				if calendarID == "calendar.work" {
					return nil, errors.New("calendar is down")
				}
				return []domain.RawEvent{{Summary: "Bins", Start: domain.EventTime{Date: "2024-03-01"}, End: domain.EventTime{Date: "2024-03-02"}}}, nil
			},
		}
		e := newTestEngine(t, feedCfg, Params{Store: store, Calendar: api})
		items, err := e.Events(ctx, states)
		require.NoError(t, err)
		assert.Empty(t, items)

		raw, err := store.Get(ctx, e.keys.Events())
		require.NoError(t, err)
		assert.Equal(t, "[]", raw, "empty result is cached")
	})

	t.Run("missing calendar entity is skipped", func(t *testing.T) {
		api := &mocks.CalendarAPIMock{
			EventsFunc: func(ctx context.Context, calendarID string, start, end time.Time) ([]domain.RawEvent, error) {
				return []domain.RawEvent{{Summary: calendarID, Start: domain.EventTime{Date: "2024-03-01"}, End: domain.EventTime{Date: "2024-03-02"}}}, nil
			},
		}
		e := newTestEngine(t, feedCfg, Params{Calendar: api})
		items, err := e.Events(ctx, domain.States{"calendar.home": states["calendar.home"]})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "calendar.home", items[0].DisplayName)
	})

	t.Run("no calendars", func(t *testing.T) {
		e := newTestEngine(t, config.Feed{}, Params{})
		items, err := e.Events(ctx, states)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestEngine_AllDay(t *testing.T) {
	e := newTestEngine(t, config.Feed{}, Params{})
	assert.True(t, e.allDay(domain.RawEvent{Start: domain.EventTime{Date: "2024-03-01"}}))
	assert.False(t, e.allDay(domain.RawEvent{Start: domain.EventTime{DateTime: "2024-03-01T00:00:00Z"},
		End: domain.EventTime{DateTime: "2024-03-03T00:00:00Z"}}), "date-time start is never all-day")
	assert.True(t, e.allDay(domain.RawEvent{Start: domain.EventTime{Raw: "2024-03-01T00:00:00Z"}, End: domain.EventTime{Raw: "2024-03-02T00:00:00Z"}}))
	assert.False(t, e.allDay(domain.RawEvent{Start: domain.EventTime{Raw: "2024-03-01T00:00:00Z"}, End: domain.EventTime{Raw: "2024-03-01T23:00:00Z"}}))
	assert.False(t, e.allDay(domain.RawEvent{Start: domain.EventTime{Raw: "garbage"}, End: domain.EventTime{Raw: "2024-03-01T23:00:00Z"}}))
}

func TestEngine_EventRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		allDay     bool
		want       string
	}{
		{name: "all-day single day", start: "2024-03-01", end: "2024-03-02", allDay: true, want: "Friday, 1 March"},
		{name: "all-day same month", start: "2024-03-01", end: "2024-03-04", allDay: true, want: "1 - 3 March 2024"},
		{name: "all-day same year", start: "2024-03-30", end: "2024-04-03", allDay: true, want: "30 March - 2 April 2024"},
		{name: "all-day across years", start: "2024-12-30", end: "2025-01-03", allDay: true, want: "30 December 2024 - 2 January 2025"},
		{name: "all-day same month different year", start: "2024-03-30", end: "2025-03-02", allDay: true,
			want: "30 March 2024 - 1 March 2025"},
		{name: "timed same meridiem", start: "2024-03-01T10:00:00Z", end: "2024-03-01T11:30:00Z",
			want: "Friday, 1 March  ⋅ 10:00 - 11:30 am"},
		{name: "timed across noon", start: "2024-03-01T10:00:00Z", end: "2024-03-01T13:05:00Z",
			want: "Friday, 1 March  ⋅ 10:00 am - 1:05 pm"},
		{name: "timed multi day", start: "2024-03-01T10:00:00Z", end: "2024-03-02T09:00:00Z",
			want: "1 March 2024, 10:00 am - 2 March 2024, 9:00 am"},
		{name: "unparseable", start: "soon", end: "later", want: "soon - later"},
	}

	e := newTestEngine(t, config.Feed{}, Params{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.eventRange(&domain.CalendarEvent{StartTime: tt.start, EndTime: tt.end, AllDay: tt.allDay})
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("timed event in feed timezone", func(t *testing.T) {
		berlin := newTestEngine(t, config.Feed{Timezone: "Europe/Berlin"}, Params{})
		got := berlin.eventRange(&domain.CalendarEvent{StartTime: "2024-03-01T10:00:00Z", EndTime: "2024-03-01T10:30:00Z"})
		assert.Equal(t, "Friday, 1 March  ⋅ 11:00 - 11:30 am", got)
	})

	t.Run("german locale", func(t *testing.T) {
		de := newTestEngine(t, config.Feed{Locale: "de_DE"}, Params{})
		got := de.eventRange(&domain.CalendarEvent{StartTime: "2024-03-01", EndTime: "2024-03-02", AllDay: true})
		assert.Equal(t, "Freitag, 1 März", got)
	})
}
