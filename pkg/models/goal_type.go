package models

import (
	"github.com/google/uuid"
)

// MaxGoalTypeTitleLength bounds goal type titles.
const MaxGoalTypeTitleLength = 255

// GoalType represents one hierarchy level a user has configured.
// Levels form a dense 1..N sequence per owner; (user_id, level_number) is
// unique and maintained by the level renumbering on delete.
type GoalType struct {
	ID           uuid.UUID                `json:"id"`
	UserID       uuid.UUID                `json:"user_id"`
	Title        string                   `json:"title"`
	LevelNumber  int                      `json:"level_number"`
	CustomFields []*CustomFieldDefinition `json:"custom_fields"`
}
