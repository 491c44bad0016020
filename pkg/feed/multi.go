package feed

import (
	"sort"
	"time"

	"github.com/umputun/homefeed/pkg/config"
	"github.com/umputun/homefeed/pkg/domain"
)

// MultiItems expands list attributes of multiple_items entities into one item per record,
// newest first and limited by max_items. Missing entity or attribute yields nothing.
func (e *Engine) MultiItems(states StateProvider) []domain.FeedItem {
	var res []domain.FeedItem
	for _, ec := range e.feed.Entities {
		if !ec.IsMulti() {
			continue
		}
		st, ok := states.State(ec.Entity)
		if !ok {
			continue
		}
		res = append(res, e.expand(ec, st)...)
	}
	return res
}

type multiRecord struct {
	data  map[string]any
	ts    time.Time
	valid bool
	raw   string
}

func (e *Engine) expand(ec config.EntityConfig, st *domain.StateSnapshot) []domain.FeedItem {
	list, ok := st.Attributes[ec.ListAttribute].([]any)
	if !ok || len(list) == 0 {
		return nil
	}

	records := make([]multiRecord, 0, len(list))
	for _, v := range list {
		data, ok := v.(map[string]any)
		if !ok {
			data = map[string]any{"value": v}
		}
		rec := multiRecord{data: data, raw: st.LastChanged}
		var created any = st.LastChanged
		if ec.TimestampProperty != "" {
			if tv, found := data[ec.TimestampProperty]; found && tv != nil && tv != "" {
				created = tv
			}
		}
		rec.ts, rec.valid = parseTimeValue(created, e.loc)
		if s, isStr := created.(string); isStr {
			rec.raw = s
		}
		records = append(records, rec)
	}

	// newest first, unparseable timestamps last
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].valid != records[j].valid {
			return records[i].valid
		}
		return records[i].ts.After(records[j].ts)
	})
	if limit := ec.MaxItemsOrDefault(); len(records) > limit {
		records = records[:limit]
	}

	res := make([]domain.FeedItem, 0, len(records))
	for _, rec := range records {
		snap := st.Clone()
		snap.LastChanged = rec.raw
		if rec.valid {
			snap.LastChanged = formatTime(rec.ts)
		}
		res = append(res, domain.FeedItem{
			Type:              domain.ItemMultiEntity,
			EntityID:          ec.Entity,
			DisplayName:       displayName(ec, st),
			Icon:              entityIcon(ec, st),
			Format:            ec.FormatOrDefault(),
			State:             st.State,
			Snapshot:          snap,
			MoreInfoOnTap:     ec.MoreInfoOnTap,
			ContentTemplate:   ec.ContentTemplate,
			DetailTemplate:    ec.DetailTemplate,
			Attribute:         ec.Attribute,
			ConditionTemplate: ec.Condition,
			Condition:         true,
			ItemData:          rec.data,
		})
	}
	return res
}
