package config

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// defaults for entity options
const (
	DefaultMaxItems   = 5
	DefaultMaxHistory = 3
)

// ConfigurationError reports a malformed entities section.
// Position is the index of the offending element, -1 for the section itself.
type ConfigurationError struct {
	Position int
	Msg      string
}

func (e *ConfigurationError) Error() string {
	if e.Position < 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s at position %d", e.Msg, e.Position)
}

// EntityConfig defines how one entity contributes to the feed
type EntityConfig struct {
	Entity        string            `yaml:"entity" json:"entity" jsonschema:"required,description=Entity id"`
	ExcludeStates []string          `yaml:"exclude_states" json:"exclude_states,omitempty" jsonschema:"description=States hiding the entity, null matches an absent state"`
	Name          string            `yaml:"name" json:"name,omitempty" jsonschema:"description=Display name override"`
	Icon          string            `yaml:"icon" json:"icon,omitempty" jsonschema:"description=Icon or icon template"`
	Format        string            `yaml:"format" json:"format,omitempty" jsonschema:"description=Timestamp format, relative by default"`
	StateMap      map[string]string `yaml:"state_map" json:"state_map,omitempty" jsonschema:"description=Display text per raw state"`
	MoreInfoOnTap bool              `yaml:"more_info_on_tap" json:"more_info_on_tap,omitempty"`

	ContentTemplate string  `yaml:"content_template" json:"content_template,omitempty"`
	DetailTemplate  string  `yaml:"detail_template" json:"detail_template,omitempty"`
	Attribute       string  `yaml:"attribute" json:"attribute,omitempty" jsonschema:"description=Template yielding the attribute holding the item timestamp"`
	Condition       *string `yaml:"condition" json:"condition,omitempty" jsonschema:"description=Template, item is shown only when it renders to True"`

	MultipleItems     bool   `yaml:"multiple_items" json:"multiple_items,omitempty"`
	ListAttribute     string `yaml:"list_attribute" json:"list_attribute,omitempty"`
	TimestampProperty string `yaml:"timestamp_property" json:"timestamp_property,omitempty"`
	MaxItems          int    `yaml:"max_items" json:"max_items,omitempty" jsonschema:"default=5,minimum=0"`

	IncludeHistory bool  `yaml:"include_history" json:"include_history,omitempty"`
	RemoveRepeats  *bool `yaml:"remove_repeats" json:"remove_repeats,omitempty" jsonschema:"default=true"`
	KeepLatest     bool  `yaml:"keep_latest" json:"keep_latest,omitempty"`
	MaxHistory     int   `yaml:"max_history" json:"max_history,omitempty" jsonschema:"default=3,minimum=0"`
}

// IsExcluded checks if the state is in exclude_states
func (e *EntityConfig) IsExcluded(state string) bool {
	return slices.Contains(e.ExcludeStates, state)
}

// RemoveRepeatsEnabled returns remove_repeats, true if not set
func (e *EntityConfig) RemoveRepeatsEnabled() bool {
	return e.RemoveRepeats == nil || *e.RemoveRepeats
}

// MaxItemsOrDefault returns max_items or the default
func (e *EntityConfig) MaxItemsOrDefault() int {
	if e.MaxItems > 0 {
		return e.MaxItems
	}
	return DefaultMaxItems
}

// MaxHistoryOrDefault returns max_history or the default
func (e *EntityConfig) MaxHistoryOrDefault() int {
	if e.MaxHistory > 0 {
		return e.MaxHistory
	}
	return DefaultMaxHistory
}

// FormatOrDefault returns format or "relative"
func (e *EntityConfig) FormatOrDefault() string {
	if e.Format != "" {
		return e.Format
	}
	return "relative"
}

// IsPlain reports whether the entity is shown as a single live snapshot
func (e *EntityConfig) IsPlain() bool {
	return !e.MultipleItems && !e.IncludeHistory
}

// IsMulti reports whether the entity is expanded from a list attribute
func (e *EntityConfig) IsMulti() bool {
	return e.MultipleItems && e.ListAttribute != "" && e.ContentTemplate != ""
}

// EntityList is the entities section. Elements are either an entity id or
// a full entity object, anything else is a ConfigurationError.
type EntityList []EntityConfig

// UnmarshalYAML normalizes entities and fills in exclude_states defaults
func (l *EntityList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.ShortTag() == "!!null" {
		*l = nil
		return nil
	}
	if value.Kind != yaml.SequenceNode {
		return &ConfigurationError{Position: -1, Msg: "entities need to be an array"}
	}

	res := make(EntityList, 0, len(value.Content))
	for i, node := range value.Content {
		switch node.Kind {
		case yaml.ScalarNode:
			if node.ShortTag() != "!!str" || node.Value == "" {
				return &ConfigurationError{Position: i, Msg: "invalid entity specified"}
			}
			res = append(res, EntityConfig{Entity: node.Value, ExcludeStates: []string{"unknown"}})
		case yaml.MappingNode:
			var ec EntityConfig
			if err := node.Decode(&ec); err != nil {
				return &ConfigurationError{Position: i, Msg: fmt.Sprintf("invalid entity object: %v", err)}
			}
			if ec.Entity == "" {
				return &ConfigurationError{Position: i, Msg: "entity object is missing entity field"}
			}
			if ec.ExcludeStates == nil {
				// empty string stands for a null state
				ec.ExcludeStates = []string{"unknown", ""}
			}
			res = append(res, ec)
		default:
			return &ConfigurationError{Position: i, Msg: "invalid entity specified"}
		}
	}
	*l = res
	return nil
}

// HistoryEntities returns entities with include_history set
func (l EntityList) HistoryEntities() []EntityConfig {
	var res []EntityConfig
	for _, e := range l {
		if e.IncludeHistory {
			res = append(res, e)
		}
	}
	return res
}

// Find returns the first entity config with the given id
func (l EntityList) Find(entityID string) (EntityConfig, bool) {
	for _, e := range l {
		if e.Entity == entityID {
			return e, true
		}
	}
	return EntityConfig{}, false
}
