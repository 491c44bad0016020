package feed

import (
	"github.com/umputun/homefeed/pkg/config"
	"github.com/umputun/homefeed/pkg/domain"
)

// Entities returns items of plain entities, i.e. configured without multiple_items and include_history.
// Missing entities show up as unavailable items, excluded states and never triggered automations are skipped.
func (e *Engine) Entities(states StateProvider) []domain.FeedItem {
	res := make([]domain.FeedItem, 0, len(e.feed.Entities))
	for _, ec := range e.feed.Entities {
		if !ec.IsPlain() {
			continue
		}
		st, ok := states.State(ec.Entity)
		if !ok {
			res = append(res, e.unavailableItem(ec))
			continue
		}
		if item, ok := e.entityItem(ec, st); ok {
			res = append(res, item)
		}
	}
	return res
}

func (e *Engine) unavailableItem(ec config.EntityConfig) domain.FeedItem {
	return domain.FeedItem{
		Type:          domain.ItemUnavailable,
		EntityID:      ec.Entity,
		DisplayName:   e.localizer.Localize(MsgEntityNotFound, ec.Entity),
		Format:        domain.FormatRelative,
		State:         "unavailable",
		MoreInfoOnTap: false,
		Condition:     true,
	}
}

func (e *Engine) entityItem(ec config.EntityConfig, st *domain.StateSnapshot) (domain.FeedItem, bool) {
	if ec.IsExcluded(st.State) {
		return domain.FeedItem{}, false
	}
	if domain.EntityDomain(ec.Entity) == "automation" && !st.HasAttr("last_triggered") {
		return domain.FeedItem{}, false
	}

	return domain.FeedItem{
		Type:              domain.ItemEntity,
		EntityID:          ec.Entity,
		DisplayName:       displayName(ec, st),
		Icon:              entityIcon(ec, st),
		Format:            ec.FormatOrDefault(),
		State:             e.displayState(ec, st),
		Snapshot:          st.Clone(),
		MoreInfoOnTap:     ec.MoreInfoOnTap,
		ContentTemplate:   ec.ContentTemplate,
		DetailTemplate:    ec.DetailTemplate,
		Attribute:         ec.Attribute,
		ConditionTemplate: ec.Condition,
		Condition:         true,
	}, true
}

// displayState is "Triggered" for automations, state_map override or formatted state otherwise
func (e *Engine) displayState(ec config.EntityConfig, st *domain.StateSnapshot) string {
	if domain.EntityDomain(ec.Entity) == "automation" {
		return e.localizer.Localize(MsgTriggered)
	}
	if mapped, ok := ec.StateMap[st.State]; ok {
		return mapped
	}
	return e.formatter.FormatState(st)
}

func displayName(ec config.EntityConfig, st *domain.StateSnapshot) string {
	if ec.Name != "" {
		return ec.Name
	}
	return st.Attr("friendly_name")
}

// entityIcon picks configured icon, then icon attribute
func entityIcon(ec config.EntityConfig, st *domain.StateSnapshot) string {
	if ec.Icon != "" {
		return ec.Icon
	}
	return st.Attr("icon")
}
