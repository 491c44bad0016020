package domain

import "math"

// ItemType is the variant tag of a feed item
type ItemType string

// enum of all item types produced by feed sources
const (
	ItemNotification  ItemType = "notification"
	ItemCalendarEvent ItemType = "calendar_event"
	ItemEntity        ItemType = "entity"
	ItemEntityHistory ItemType = "entity_history"
	ItemMultiEntity   ItemType = "multi_entity"
	ItemUnavailable   ItemType = "unavailable"
)

// FormatRelative is the default timestamp display format
const FormatRelative = "relative"

// FeedItem is the canonical unit of the aggregated feed. Every source builds
// it through its own constructor, fields not relevant to a type stay empty.
type FeedItem struct {
	Type          ItemType       `json:"item_type"`
	EntityID      string         `json:"entity_id,omitempty"`
	DisplayName   string         `json:"display_name"`
	Icon          string         `json:"icon,omitempty"`
	Format        string         `json:"format"`
	State         string         `json:"state,omitempty"`
	Snapshot      *StateSnapshot `json:"state_obj,omitempty"`
	Latest        *StateSnapshot `json:"latest_state_obj,omitempty"` // live snapshot, history items only
	MoreInfoOnTap bool           `json:"more_info_on_tap"`

	ContentTemplate   string  `json:"content_template,omitempty"`
	DetailTemplate    string  `json:"detail_template,omitempty"`
	Attribute         string  `json:"attribute,omitempty"`
	ConditionTemplate *string `json:"condition_template,omitempty"` // nil if not declared, empty template renders to false
	Condition         bool    `json:"condition"`
	Detail            string  `json:"detail,omitempty"`

	ItemData     map[string]any `json:"item_data,omitempty"`
	Notification *Notification  `json:"original_notification,omitempty"`
	Event        *CalendarEvent `json:"event,omitempty"`

	Timestamp      string         `json:"timestamp,omitempty"`
	TimeDifference TimeDifference `json:"time_difference"`
}

// HasCondition reports whether the item declares a condition template
func (i *FeedItem) HasCondition() bool {
	return i.ConditionTemplate != nil
}

// Domain returns the domain part of the item's entity id, i.e. "sensor" for "sensor.x"
func (i *FeedItem) Domain() string {
	return EntityDomain(i.EntityID)
}

// TimeDifference describes how far in the past (positive) or future (negative) an item is
type TimeDifference struct {
	Value float64 `json:"value"` // seconds, now minus event time
	Abs   float64 `json:"abs"`
	Sign  int     `json:"sign"`
}

// NewTimeDifference makes TimeDifference from a signed number of seconds
func NewTimeDifference(seconds float64) TimeDifference {
	sign := 0
	switch {
	case seconds > 0:
		sign = 1
	case seconds < 0:
		sign = -1
	}
	return TimeDifference{Value: seconds, Abs: math.Abs(seconds), Sign: sign}
}
