// Package feed builds the home feed. Each source (entities, multi-item
// entities, history, calendars, notifications) produces domain.FeedItem
// values through its own constructor, Build merges them, resolves templates
// and orders the result.
package feed

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/goodsign/monday"
	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/homefeed/pkg/cache"
	"github.com/umputun/homefeed/pkg/config"
	"github.com/umputun/homefeed/pkg/domain"
)

//go:generate moq -out mocks/renderer.go -pkg mocks -skip-ensure -fmt goimports . Renderer
//go:generate moq -out mocks/history.go -pkg mocks -skip-ensure -fmt goimports . HistoryAPI
//go:generate moq -out mocks/calendar.go -pkg mocks -skip-ensure -fmt goimports . CalendarAPI
//go:generate moq -out mocks/notification.go -pkg mocks -skip-ensure -fmt goimports . NotificationAPI

// Renderer renders Home Assistant templates
type Renderer interface {
	Render(ctx context.Context, tmpl string, vars map[string]string) (string, error)
}

// StateProvider looks up current entity states
type StateProvider interface {
	State(entityID string) (*domain.StateSnapshot, bool)
}

// HistoryAPI returns state transitions, one sequence per entity
type HistoryAPI interface {
	History(ctx context.Context, start, end time.Time, entityIDs []string) ([][]domain.StateSnapshot, error)
}

// CalendarAPI returns events of a calendar entity within a time window
type CalendarAPI interface {
	Events(ctx context.Context, calendarID string, start, end time.Time) ([]domain.RawEvent, error)
}

// NotificationAPI gets persistent notifications, subscribes to their changes and dismisses them
type NotificationAPI interface {
	Notifications(ctx context.Context) ([]domain.Notification, error)
	Subscribe(ctx context.Context, onUpdate func()) (unsubscribe func(), err error)
	Dismiss(ctx context.Context, notificationID string) error
}

// StateFormatter makes display text of an entity state
type StateFormatter interface {
	FormatState(s *domain.StateSnapshot) string
}

// Localizer translates UI messages
type Localizer interface {
	Localize(key string, args ...any) string
}

// message keys known to the default localizer
const (
	MsgEntityNotFound = "entity_not_found"
	MsgTriggered      = "triggered"
)

// Params defines engine collaborators. Formatter, Localizer and Now are optional.
type Params struct {
	Feed          config.Feed
	Store         cache.Store
	Renderer      Renderer
	History       HistoryAPI
	Calendar      CalendarAPI
	Notifications NotificationAPI
	Formatter     StateFormatter
	Localizer     Localizer
	CalendarTTL   time.Duration
	Now           func() time.Time
}

// Engine produces feed items for a single feed instance
type Engine struct {
	feed      config.Feed
	keys      cache.Keys
	store     cache.Store
	renderer  Renderer
	history   HistoryAPI
	calendar  CalendarAPI
	notifier  NotificationAPI
	formatter StateFormatter
	localizer Localizer
	ttl       time.Duration
	now       func() time.Time

	loc       *time.Location
	locale    monday.Locale
	idFilter  *regexp.Regexp
	sanitizer *bluemonday.Policy

	notifyState atomic.Int32 // notifyIdle or notifyRefreshing
	loaded      atomic.Bool  // notifications refreshed at least once
}

// New makes an engine for the feed configuration
func New(p Params) (*Engine, error) {
	if p.Store == nil {
		return nil, errors.New("cache store is required")
	}
	if p.Renderer == nil {
		return nil, errors.New("template renderer is required")
	}

	loc, err := p.Feed.Location()
	if err != nil {
		return nil, fmt.Errorf("feed location: %w", err)
	}

	res := &Engine{
		feed:      p.Feed,
		keys:      cache.Keys{CacheID: p.Feed.CacheID()},
		store:     p.Store,
		renderer:  p.Renderer,
		history:   p.History,
		calendar:  p.Calendar,
		notifier:  p.Notifications,
		formatter: p.Formatter,
		localizer: p.Localizer,
		ttl:       p.CalendarTTL,
		now:       p.Now,
		loc:       loc,
		locale:    monday.Locale(p.Feed.Locale),
	}

	if p.Feed.IDFilter != "" {
		if res.idFilter, err = regexp.Compile(p.Feed.IDFilter); err != nil {
			return nil, fmt.Errorf("compile id filter %q: %w", p.Feed.IDFilter, err)
		}
	}
	if p.Feed.SanitizeEnabled() {
		res.sanitizer = bluemonday.UGCPolicy()
	}
	if res.formatter == nil {
		res.formatter = UnitFormatter{}
	}
	if res.localizer == nil {
		res.localizer = EnglishLocalizer{}
	}
	if res.ttl == 0 {
		res.ttl = 15 * time.Minute
	}
	if res.now == nil {
		res.now = time.Now
	}
	if res.locale == "" {
		res.locale = monday.LocaleEnUS
	}
	return res, nil
}

// CacheID returns the cache identity of the feed
func (e *Engine) CacheID() string { return e.keys.CacheID }

// Feed returns feed configuration the engine was made with
func (e *Engine) Feed() config.Feed { return e.feed }

// ClearCache removes all cached sources of the feed
func (e *Engine) ClearCache(ctx context.Context) error {
	return cache.ClearAll(ctx, e.store, e.keys.CacheID)
}

// startOfDay returns local midnight of t in the feed location
func (e *Engine) startOfDay(t time.Time) time.Time {
	lt := t.In(e.loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, e.loc)
}

// UnitFormatter shows state with unit of measurement if present
type UnitFormatter struct{}

// FormatState returns "21.5 °C" for a state with unit, raw state otherwise
func (UnitFormatter) FormatState(s *domain.StateSnapshot) string {
	if s == nil {
		return ""
	}
	if unit := s.Attr("unit_of_measurement"); unit != "" {
		return s.State + " " + unit
	}
	return s.State
}

// EnglishLocalizer is the built-in localizer
type EnglishLocalizer struct{}

var englishMessages = map[string]string{
	MsgEntityNotFound: "Entity not available: %s",
	MsgTriggered:      "Triggered",
}

// Localize formats message by key, unknown keys are returned as is
func (EnglishLocalizer) Localize(key string, args ...any) string {
	msg, ok := englishMessages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
