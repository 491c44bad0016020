// Package scheduler keeps the feed built. It polls entity states, refreshes history
// after state changes, reacts to notification updates and publishes the newest build.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/robfig/cron/v3"

	"github.com/umputun/homefeed/pkg/config"
	"github.com/umputun/homefeed/pkg/domain"
	"github.com/umputun/homefeed/pkg/feed"
)

//go:generate moq -out mocks/states.go -pkg mocks -skip-ensure -fmt goimports . StatesAPI

// StatesAPI returns current states of all entities
type StatesAPI interface {
	States(ctx context.Context) (domain.States, error)
}

// EngineFactory makes a feed engine for the feed configuration
type EngineFactory func(f config.Feed) (*feed.Engine, error)

// Params defines scheduler dependencies and intervals
type Params struct {
	States          StatesAPI
	NewEngine       EngineFactory
	StatePoll       time.Duration
	HistoryDebounce time.Duration
}

// Scheduler drives feed builds of a single feed
type Scheduler struct {
	states    StatesAPI
	newEngine EngineFactory
	poll      time.Duration
	debounce  time.Duration

	mu      sync.RWMutex
	engine  *feed.Engine
	current domain.States // latest polled states
	prev    domain.States // states of previous poll, nil after reconfiguration
	items   []domain.FeedItem
	builtAt time.Time

	epoch atomic.Uint64 // sequence of the latest started build

	timerMu      sync.Mutex
	historyTimer *time.Timer
	stopped      bool // no history refresh is scheduled after stop

	cron        *cron.Cron
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

// New makes a scheduler with engine for the feed configuration
func New(p Params, f config.Feed) (*Scheduler, error) {
	if p.States == nil {
		return nil, errors.New("states api is required")
	}
	if p.NewEngine == nil {
		return nil, errors.New("engine factory is required")
	}
	if p.StatePoll == 0 {
		p.StatePoll = 10 * time.Second
	}
	if p.HistoryDebounce == 0 {
		p.HistoryDebounce = 2 * time.Second
	}

	eng, err := p.NewEngine(f)
	if err != nil {
		return nil, fmt.Errorf("make engine: %w", err)
	}
	return &Scheduler{
		states:    p.States,
		newEngine: p.NewEngine,
		poll:      p.StatePoll,
		debounce:  p.HistoryDebounce,
		engine:    eng,
	}, nil
}

// Start clears the cache of the initial configuration unless in preview,
// subscribes to notification updates and begins state polling
func (s *Scheduler) Start(ctx context.Context) error {
	if err := clearUnlessPreview(ctx, s.Engine()); err != nil {
		return err
	}

	ctx, s.cancel = context.WithCancel(ctx)

	unsubscribe, err := s.Engine().Subscribe(ctx, func() { s.notificationsUpdated(ctx) })
	if err != nil {
		s.cancel()
		return fmt.Errorf("subscribe to notifications: %w", err)
	}
	s.unsubscribe = unsubscribe

	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := s.cron.AddFunc("@every "+s.poll.String(), func() { s.Poll(ctx) }); err != nil {
		s.unsubscribe()
		s.cancel()
		return fmt.Errorf("schedule state poll: %w", err)
	}
	s.cron.Start()

	// poll immediately on start
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Poll(ctx)
	}()

	lgr.Printf("[INFO] scheduler started with state poll %v, history debounce %v", s.poll, s.debounce)
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.timerMu.Lock()
	s.stopped = true
	if s.historyTimer != nil {
		s.historyTimer.Stop()
	}
	s.timerMu.Unlock()
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// Engine returns the current feed engine
func (s *Scheduler) Engine() *feed.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// FeedInfo returns title and cache identity of the current feed
func (s *Scheduler) FeedInfo() (title, cacheID string) {
	eng := s.Engine()
	return eng.Feed().Title, eng.CacheID()
}

// Feed returns the latest published items and their build time, zero time if nothing built yet
func (s *Scheduler) Feed() (items []domain.FeedItem, builtAt time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items, s.builtAt
}

// Poll fetches entity states, schedules history refresh on change and rebuilds the feed
func (s *Scheduler) Poll(ctx context.Context) {
	states, err := s.states.States(ctx)
	if err != nil {
		lgr.Printf("[WARN] failed to get states: %v", err)
		return
	}

	s.mu.Lock()
	prev := s.prev
	s.prev, s.current = states, states
	eng := s.engine
	s.mu.Unlock()

	if eng.HistoryChanged(prev, states) {
		lgr.Printf("[DEBUG] history entities changed, refresh in %v", s.debounce)
		s.scheduleHistory(ctx)
	}
	s.buildIfReady(ctx)
}

// buildIfReady makes sure notifications were loaded once and rebuilds
func (s *Scheduler) buildIfReady(ctx context.Context) {
	if eng := s.Engine(); eng.NeedsNotifications(ctx) {
		if _, err := eng.RefreshNotifications(ctx); err != nil {
			lgr.Printf("[WARN] failed to refresh notifications: %v", err)
		}
	}
	if _, err := s.Rebuild(ctx); err != nil {
		lgr.Printf("[WARN] feed build failed: %v", err)
	}
}

// scheduleHistory restarts the debounce timer of history refresh
func (s *Scheduler) scheduleHistory(ctx context.Context) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.stopped {
		return
	}
	if s.historyTimer != nil {
		s.historyTimer.Stop()
	}
	s.historyTimer = time.AfterFunc(s.debounce, func() {
		// registered under timerMu so Stop either waits for the refresh or prevents it
		s.timerMu.Lock()
		if s.stopped || ctx.Err() != nil {
			s.timerMu.Unlock()
			return
		}
		s.wg.Add(1)
		s.timerMu.Unlock()
		defer s.wg.Done()
		s.RefreshHistory(ctx)
	})
}

// RefreshHistory refreshes cached history for the latest states and rebuilds
func (s *Scheduler) RefreshHistory(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.mu.RLock()
	eng, states := s.engine, s.current
	s.mu.RUnlock()
	if states == nil {
		return
	}
	if _, err := eng.RefreshHistory(ctx, states); err != nil {
		lgr.Printf("[WARN] failed to refresh history: %v", err)
	}
	if _, err := s.Rebuild(ctx); err != nil {
		lgr.Printf("[WARN] feed build failed: %v", err)
	}
}

// notificationsUpdated is the subscription callback, concurrent updates are dropped by the engine
func (s *Scheduler) notificationsUpdated(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	refreshed, err := s.RefreshNotifications(ctx)
	if err != nil {
		lgr.Printf("[WARN] failed to refresh notifications: %v", err)
	}
	if !refreshed {
		return
	}
	if _, err := s.Rebuild(ctx); err != nil {
		lgr.Printf("[WARN] feed build failed: %v", err)
	}
}

// RefreshNotifications refreshes cached notifications. Returns false if a refresh is already running.
func (s *Scheduler) RefreshNotifications(ctx context.Context) (bool, error) {
	refreshed, err := s.Engine().RefreshNotifications(ctx)
	if err != nil {
		return refreshed, fmt.Errorf("refresh notifications: %w", err)
	}
	return refreshed, nil
}

// DismissNotification dismisses notification in Home Assistant, then refreshes notifications and rebuilds
func (s *Scheduler) DismissNotification(ctx context.Context, notificationID string) error {
	if err := s.Engine().DismissNotification(ctx, notificationID); err != nil {
		return fmt.Errorf("dismiss notification %s: %w", notificationID, err)
	}
	s.notificationsUpdated(ctx)
	return nil
}

// Rebuild builds the feed from the latest states and publishes it.
// Returns false if nothing was published, either no states polled yet or a newer build started meanwhile.
func (s *Scheduler) Rebuild(ctx context.Context) (bool, error) {
	epoch := s.epoch.Add(1)

	s.mu.RLock()
	eng, states := s.engine, s.current
	s.mu.RUnlock()
	if states == nil {
		return false, nil
	}

	items, err := eng.Build(ctx, states)
	if err != nil {
		return false, fmt.Errorf("build feed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if latest := s.epoch.Load(); epoch != latest {
		lgr.Printf("[DEBUG] build %d discarded, build %d started meanwhile", epoch, latest)
		return false, nil
	}
	s.items, s.builtAt = items, time.Now()
	lgr.Printf("[DEBUG] build %d published, %d items", epoch, len(items))
	return true, nil
}

// ClearCache removes all cached sources of the current feed and rebuilds
func (s *Scheduler) ClearCache(ctx context.Context) error {
	if err := s.Engine().ClearCache(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	s.mu.Lock()
	s.prev = nil // next poll refreshes history
	s.mu.Unlock()
	if _, err := s.Rebuild(ctx); err != nil {
		return err
	}
	return nil
}

// Reconfigure replaces the engine with one for the new feed configuration.
// Cache is cleared unless the feed is in preview context, history is refreshed on the next poll.
func (s *Scheduler) Reconfigure(ctx context.Context, f config.Feed) error {
	eng, err := s.newEngine(f)
	if err != nil {
		return fmt.Errorf("make engine: %w", err)
	}
	if err := clearUnlessPreview(ctx, eng); err != nil {
		return err
	}

	s.mu.Lock()
	s.engine = eng
	s.prev = nil
	s.mu.Unlock()

	s.buildIfReady(ctx)
	return nil
}

// clearUnlessPreview drops cached sources left from a previous configuration or run
func clearUnlessPreview(ctx context.Context, eng *feed.Engine) error {
	if f := eng.Feed(); f.IsPreviewContext() {
		return nil
	}
	lgr.Printf("[INFO] clearing cache of %q", eng.CacheID())
	if err := eng.ClearCache(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}
