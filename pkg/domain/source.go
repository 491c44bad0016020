package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Notification is a persistent notification as reported by Home Assistant
type Notification struct {
	NotificationID string `json:"notification_id"`
	Title          string `json:"title,omitempty"`
	Message        string `json:"message"`
	CreatedAt      string `json:"created_at"`
}

// CalendarEvent is a normalized calendar event payload
type CalendarEvent struct {
	Calendar  string `json:"calendar"`
	Summary   string `json:"summary"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	AllDay    bool   `json:"all_day"`
}

// RawEvent is a calendar event as returned by the calendar API
type RawEvent struct {
	Summary string    `json:"summary,omitempty"`
	Title   string    `json:"title,omitempty"`
	Start   EventTime `json:"start"`
	End     EventTime `json:"end"`
}

// EventTime is either {date}, {dateTime} or a bare value
type EventTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	Raw      string `json:"raw,omitempty"`
}

// Value returns date, dateTime or raw value, in this order
func (t EventTime) Value() string {
	switch {
	case t.Date != "":
		return t.Date
	case t.DateTime != "":
		return t.DateTime
	default:
		return t.Raw
	}
}

// UnmarshalJSON accepts an object with date/dateTime or a plain string
func (t *EventTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("parse event time: %w", err)
		}
		*t = EventTime{Raw: s}
		return nil
	}
	type plain EventTime
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parse event time: %w", err)
	}
	*t = EventTime(p)
	return nil
}
