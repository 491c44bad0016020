package domain

import (
	"fmt"
	"strings"
)

// StateSnapshot is a state of a Home Assistant entity at some point in time.
// The same shape is used for live states and for history transition records.
type StateSnapshot struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged string         `json:"last_changed"`
	LastUpdated string         `json:"last_updated"`
}

// Attr returns attribute value as string, empty if missing
func (s *StateSnapshot) Attr(name string) string {
	if s == nil || s.Attributes == nil {
		return ""
	}
	v, ok := s.Attributes[name]
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", v)
}

// HasAttr reports whether attribute is present and not null
func (s *StateSnapshot) HasAttr(name string) bool {
	if s == nil || s.Attributes == nil {
		return false
	}
	v, ok := s.Attributes[name]
	return ok && v != nil
}

// Clone makes a shallow copy with its own attributes map
func (s *StateSnapshot) Clone() *StateSnapshot {
	if s == nil {
		return nil
	}
	res := *s
	res.Attributes = make(map[string]any, len(s.Attributes))
	for k, v := range s.Attributes {
		res.Attributes[k] = v
	}
	return &res
}

// States is a snapshot of all entity states keyed by entity id
type States map[string]StateSnapshot

// State looks up a single entity
func (s States) State(entityID string) (*StateSnapshot, bool) {
	st, ok := s[entityID]
	if !ok {
		return nil, false
	}
	return &st, true
}

// EntityDomain returns domain part of entity id
func EntityDomain(entityID string) string {
	domain, _, _ := strings.Cut(entityID, ".")
	return domain
}
