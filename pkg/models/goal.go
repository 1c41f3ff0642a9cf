package models

import (
	"time"

	"github.com/google/uuid"
)

// Goal status values.
const (
	StatusNotStarted = "NOT_STARTED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
	StatusOnHold     = "ON_HOLD"
)

// IsValidGoalStatus reports whether s is a known goal status.
func IsValidGoalStatus(s string) bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusCancelled, StatusOnHold:
		return true
	}
	return false
}

// MaxGoalTitleLength bounds goal titles.
const MaxGoalTitleLength = 255

// Goal is a user's tracked objective instantiating one GoalType. TypeID
// always references a GoalType owned by the same user; that is verified on
// every write, never assumed from client input.
type Goal struct {
	ID            uuid.UUID            `json:"id"`
	UserID        uuid.UUID            `json:"user_id"`
	Title         string               `json:"title"`
	Description   string               `json:"description,omitempty"`
	TypeID        uuid.UUID            `json:"type_id"`
	Status        string               `json:"status"`
	ParentID      *uuid.UUID           `json:"parent_id,omitempty"`
	CustomAnswers []*CustomFieldAnswer `json:"custom_answers"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}
