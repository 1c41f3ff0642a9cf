package models

import (
	"regexp"

	"github.com/google/uuid"
)

// Field types a custom field definition may declare. Values are stored as
// strings; type-specific parsing and formatting is a client concern.
const (
	FieldTypeText    = "TEXT"
	FieldTypeNumber  = "NUMBER"
	FieldTypeDate    = "DATE"
	FieldTypeBoolean = "BOOLEAN"
)

// IsValidFieldType reports whether t is a known custom field type.
func IsValidFieldType(t string) bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeBoolean:
		return true
	}
	return false
}

// fieldKeyPattern is the machine identifier format for custom field keys.
var fieldKeyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// IsValidFieldKey reports whether key matches [a-z0-9_]+.
func IsValidFieldKey(key string) bool {
	return fieldKeyPattern.MatchString(key)
}

// CustomFieldDefinition is one schema entry belonging to exactly one
// GoalType. Key is unique within the owning type; the owning type never
// changes after creation.
type CustomFieldDefinition struct {
	ID          uuid.UUID `json:"id"`
	GoalTypeID  uuid.UUID `json:"goal_type_id"`
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Type        string    `json:"type"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// CustomFieldAnswer is a value supplied for one field definition on one
// goal. Exactly one answer exists per (goal, definition) pair. Key, Label
// and Type are denormalized from the definition at read time only; writes
// store the definition reference alone.
type CustomFieldAnswer struct {
	ID                uuid.UUID `json:"id"`
	GoalID            uuid.UUID `json:"goal_id"`
	FieldDefinitionID uuid.UUID `json:"field_definition_id"`
	Value             string    `json:"value"`

	Key   string `json:"key,omitempty"`
	Label string `json:"label,omitempty"`
	Type  string `json:"type,omitempty"`
}
