package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/homefeed/pkg/cache"
	"github.com/umputun/homefeed/pkg/domain"
)

const maxCalendarFetchers = 4

type taggedEvent struct {
	calendar string
	event    domain.RawEvent
}

// Events returns calendar event items. Cached events are served while younger than the calendar ttl,
// otherwise all calendars are fetched again. A failure of any calendar empties the whole cycle.
func (e *Engine) Events(ctx context.Context, states StateProvider) ([]domain.FeedItem, error) {
	if len(e.feed.Calendars) == 0 {
		return nil, nil
	}

	if items, ok := e.cachedEvents(ctx); ok {
		return items, nil
	}

	raw, err := e.fetchEvents(ctx)
	if err != nil {
		lgr.Printf("[WARN] failed to fetch calendar events for %s: %v", e.keys.CacheID, err)
		raw = nil
	}

	items := make([]domain.FeedItem, 0, len(raw))
	for _, te := range raw {
		calendar, ok := states.State(te.calendar)
		if !ok {
			continue
		}
		items = append(items, e.eventItem(te.calendar, te.event, calendar))
	}

	if err := cache.Save(ctx, e.store, e.keys.Events(), items); err != nil {
		return items, fmt.Errorf("save events: %w", err)
	}
	if err := cache.Save(ctx, e.store, e.keys.EventsLastUpdate(), e.now().UTC().Format(time.RFC3339)); err != nil {
		return items, fmt.Errorf("save events update time: %w", err)
	}
	return items, nil
}

// cachedEvents returns cached events if they are fresh
func (e *Engine) cachedEvents(ctx context.Context) ([]domain.FeedItem, bool) {
	last, ok, err := cache.Load[string](ctx, e.store, e.keys.EventsLastUpdate())
	if err != nil {
		lgr.Printf("[WARN] can't load events update time: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	updated, err := time.Parse(time.RFC3339, last)
	if err != nil || e.now().Sub(updated) > e.ttl {
		return nil, false
	}

	items, _, err := cache.Load[[]domain.FeedItem](ctx, e.store, e.keys.Events())
	if err != nil {
		lgr.Printf("[WARN] can't load cached events: %v", err)
		return nil, false
	}
	return items, true
}

func (e *Engine) fetchEvents(ctx context.Context) ([]taggedEvent, error) {
	if e.calendar == nil {
		return nil, fmt.Errorf("calendar api is not configured")
	}

	today := e.startOfDay(e.now())
	start := today.AddDate(0, 0, -e.feed.CalendarDaysBack).UTC()
	end := today.AddDate(0, 0, e.feed.DaysForward()+1).UTC()

	results := make([][]domain.RawEvent, len(e.feed.Calendars))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxCalendarFetchers)
	for i, cal := range e.feed.Calendars {
		g.Go(func() error {
			events, err := e.calendar.Events(gctx, cal, start, end)
			if err != nil {
				return fmt.Errorf("calendar %s: %w", cal, err)
			}
			results[i] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var res []taggedEvent
	for i, events := range results {
		for _, ev := range events {
			res = append(res, taggedEvent{calendar: e.feed.Calendars[i], event: ev})
		}
	}
	return res, nil
}

func (e *Engine) eventItem(calendarID string, ev domain.RawEvent, calendar *domain.StateSnapshot) domain.FeedItem {
	name := ev.Summary
	if name == "" {
		name = ev.Title
	}
	event := &domain.CalendarEvent{
		Calendar:  calendarID,
		Summary:   name,
		StartTime: ev.Start.Value(),
		EndTime:   ev.End.Value(),
		AllDay:    e.allDay(ev),
	}

	detail := fmt.Sprintf("<ha-icon icon=\"mdi:clock\"></ha-icon> %s\n<ha-icon icon=\"mdi:calendar\"></ha-icon> %s",
		e.eventRange(event), calendar.Attr("friendly_name"))

	return domain.FeedItem{
		Type:        domain.ItemCalendarEvent,
		EntityID:    calendarID,
		DisplayName: name,
		Format:      e.feed.CalendarTimeFormat,
		Event:       event,
		Detail:      detail,
		Condition:   true,
	}
}

// allDay is true for date-only start, false for date-time start, otherwise span of 24h or more
func (e *Engine) allDay(ev domain.RawEvent) bool {
	switch {
	case ev.Start.Date != "":
		return true
	case ev.Start.DateTime != "":
		return false
	}
	start, okStart := e.eventTime(ev.Start.Raw)
	end, okEnd := e.eventTime(ev.End.Raw)
	if !okStart || !okEnd {
		return false
	}
	return end.Sub(start) >= 24*time.Hour
}
