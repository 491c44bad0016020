package feed

import (
	"context"
	"fmt"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/homefeed/pkg/cache"
	"github.com/umputun/homefeed/pkg/config"
	"github.com/umputun/homefeed/pkg/domain"
)

const undefinedState = "undefined"

// HistoryChanged compares states of history entities, missing entities count as "undefined".
// Nil prev means nothing was observed yet.
func (e *Engine) HistoryChanged(prev, cur StateProvider) bool {
	for _, ec := range e.feed.Entities.HistoryEntities() {
		if stateOf(prev, ec.Entity) != stateOf(cur, ec.Entity) {
			return true
		}
	}
	return false
}

func stateOf(states StateProvider, entityID string) string {
	if states == nil {
		return undefinedState
	}
	st, ok := states.State(entityID)
	if !ok {
		return undefinedState
	}
	return st.State
}

// RefreshHistory fetches history of include_history entities and caches the result.
// Fetch errors are logged and cached as an empty list.
func (e *Engine) RefreshHistory(ctx context.Context, states StateProvider) ([]domain.FeedItem, error) {
	if len(e.feed.Entities) == 0 {
		if err := e.store.Remove(ctx, e.keys.History()); err != nil {
			return nil, fmt.Errorf("remove cached history: %w", err)
		}
		return nil, nil
	}

	items, err := e.fetchHistory(ctx, states)
	if err != nil {
		lgr.Printf("[WARN] failed to fetch history for %s: %v", e.keys.CacheID, err)
		items = []domain.FeedItem{}
	}
	if err := cache.Save(ctx, e.store, e.keys.History(), items); err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}
	return items, nil
}

// CachedHistory returns history items saved by the last refresh
func (e *Engine) CachedHistory(ctx context.Context) ([]domain.FeedItem, error) {
	items, _, err := cache.Load[[]domain.FeedItem](ctx, e.store, e.keys.History())
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return items, nil
}

func (e *Engine) fetchHistory(ctx context.Context, states StateProvider) ([]domain.FeedItem, error) {
	entities := e.feed.Entities.HistoryEntities()
	if len(entities) == 0 {
		return []domain.FeedItem{}, nil
	}
	if e.history == nil {
		return nil, fmt.Errorf("history api is not configured")
	}

	ids := make([]string, 0, len(entities))
	for _, ec := range entities {
		ids = append(ids, ec.Entity)
	}

	now := e.now()
	start := e.startOfDay(now).AddDate(0, 0, -e.feed.HistoryDaysBack).UTC()
	seqs, err := e.history.History(ctx, start, now.UTC(), ids)
	if err != nil {
		return nil, fmt.Errorf("history api: %w", err)
	}

	res := []domain.FeedItem{}
	for _, seq := range seqs {
		if len(seq) == 0 {
			continue
		}
		ec, ok := e.feed.Entities.Find(seq[0].EntityID)
		if !ok {
			continue
		}
		live, ok := states.State(ec.Entity)
		if !ok {
			continue // entity is gone
		}
		for _, rec := range filterHistory(ec, seq) {
			res = append(res, e.historyItem(ec, rec, live))
		}
	}
	return res, nil
}

// filterHistory drops excluded states and repeats, returns newest first limited by max_history
func filterHistory(ec config.EntityConfig, seq []domain.StateSnapshot) []domain.StateSnapshot {
	kept := make([]domain.StateSnapshot, 0, len(seq))
	for _, rec := range seq {
		if !ec.IsExcluded(rec.State) {
			kept = append(kept, rec)
		}
	}

	filtered := make([]domain.StateSnapshot, 0, len(kept))
	for i, rec := range kept {
		if keepRecord(kept, i, ec.RemoveRepeatsEnabled(), ec.KeepLatest) {
			filtered = append(filtered, rec)
		}
	}

	res := make([]domain.StateSnapshot, 0, len(filtered))
	for i := len(filtered) - 1; i >= 0; i-- {
		res = append(res, filtered[i])
	}
	if limit := ec.MaxHistoryOrDefault(); len(res) > limit {
		res = res[:limit]
	}
	return res
}

// keepRecord is the repeat filter, a record equal to its predecessor is dropped
// unless repeats are allowed or it is the latest one and keepLatest is set
func keepRecord(seq []domain.StateSnapshot, idx int, removeRepeats, keepLatest bool) bool {
	if !removeRepeats {
		return true
	}
	repeated := idx > 0 && seq[idx].State == seq[idx-1].State
	return !repeated || (keepLatest && idx == len(seq)-1)
}

func (e *Engine) historyItem(ec config.EntityConfig, rec domain.StateSnapshot, live *domain.StateSnapshot) domain.FeedItem {
	snap := live.Clone()
	snap.State = rec.State
	snap.Attributes = rec.Attributes
	if snap.Attributes == nil {
		snap.Attributes = map[string]any{}
	}
	snap.LastChanged = rec.LastChanged
	snap.LastUpdated = rec.LastUpdated

	return domain.FeedItem{
		Type:              domain.ItemEntityHistory,
		EntityID:          ec.Entity,
		DisplayName:       displayName(ec, snap),
		Icon:              entityIcon(ec, snap),
		Format:            ec.FormatOrDefault(),
		State:             e.displayState(ec, snap),
		Snapshot:          snap,
		Latest:            live.Clone(),
		MoreInfoOnTap:     ec.MoreInfoOnTap,
		ContentTemplate:   ec.ContentTemplate,
		DetailTemplate:    ec.DetailTemplate,
		Attribute:         ec.Attribute,
		ConditionTemplate: ec.Condition,
		Condition:         true,
	}
}
