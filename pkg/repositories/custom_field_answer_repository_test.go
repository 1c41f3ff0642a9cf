//go:build integration

package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/axis-inc/goal-engine/pkg/apperrors"
	"github.com/axis-inc/goal-engine/pkg/models"
)

// answerTestContext creates the goal type, definitions and goal an answer
// needs before it can exist.
type answerTestContext struct {
	userID   uuid.UUID
	goalType *models.GoalType
	revenue  *models.CustomFieldDefinition
	notes    *models.CustomFieldDefinition
	goal     *models.Goal
}

func setupAnswerTest(t *testing.T, ctx context.Context, userID uuid.UUID) *answerTestContext {
	t.Helper()

	typeRepo := NewGoalTypeRepository()
	defRepo := NewCustomFieldDefinitionRepository()
	goalRepo := NewGoalRepository()

	tc := &answerTestContext{userID: userID}
	tc.goalType = mustCreateGoalType(t, ctx, typeRepo, userID, "Annual", 1)
	tc.revenue = mustCreateDefinition(t, ctx, defRepo, tc.goalType.ID, "target_revenue", true)
	tc.notes = mustCreateDefinition(t, ctx, defRepo, tc.goalType.ID, "notes", false)
	tc.goal = mustCreateGoal(t, ctx, goalRepo, userID, tc.goalType.ID, "Grow ARR", models.StatusInProgress)
	return tc
}

func TestCustomFieldAnswerRepository_CreateAndGetByID(t *testing.T) {
	db := testDB(t)
	repo := NewCustomFieldAnswerRepository()
	userID := uuid.New()

	ctx, release := ownerContext(t, db, userID)
	defer release()
	tc := setupAnswerTest(t, ctx, userID)

	created := mustCreateAnswer(t, ctx, repo, tc.goal.ID, tc.revenue.ID, "1000000")

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got == nil {
		t.Fatal("expected answer, got nil")
	}
	if got.Value != "1000000" || got.GoalID != tc.goal.ID {
		t.Errorf("unexpected answer: %+v", got)
	}
	// Reads denormalize the definition metadata.
	if got.Key != "target_revenue" || got.Type != models.FieldTypeText {
		t.Errorf("expected definition metadata on read, got key=%q type=%q", got.Key, got.Type)
	}
}

func TestCustomFieldAnswerRepository_Create_DuplicatePair(t *testing.T) {
	db := testDB(t)
	repo := NewCustomFieldAnswerRepository()
	userID := uuid.New()

	ctx, release := ownerContext(t, db, userID)
	defer release()
	tc := setupAnswerTest(t, ctx, userID)

	mustCreateAnswer(t, ctx, repo, tc.goal.ID, tc.revenue.ID, "1000000")

	err := repo.Create(ctx, &models.CustomFieldAnswer{
		GoalID:            tc.goal.ID,
		FieldDefinitionID: tc.revenue.ID,
		Value:             "2000000",
	})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected conflict for duplicate (goal, definition) pair, got %v", err)
	}
}

func TestCustomFieldAnswerRepository_ExistsForField(t *testing.T) {
	db := testDB(t)
	repo := NewCustomFieldAnswerRepository()
	userID := uuid.New()

	ctx, release := ownerContext(t, db, userID)
	defer release()
	tc := setupAnswerTest(t, ctx, userID)

	mustCreateAnswer(t, ctx, repo, tc.goal.ID, tc.revenue.ID, "1000000")

	exists, err := repo.ExistsForField(ctx, tc.goal.ID, tc.revenue.ID)
	if err != nil {
		t.Fatalf("ExistsForField() error = %v", err)
	}
	if !exists {
		t.Error("expected answer to exist for answered field")
	}

	exists, err = repo.ExistsForField(ctx, tc.goal.ID, tc.notes.ID)
	if err != nil {
		t.Fatalf("ExistsForField() error = %v", err)
	}
	if exists {
		t.Error("expected no answer for unanswered field")
	}
}

func TestCustomFieldAnswerRepository_UpdateValue(t *testing.T) {
	db := testDB(t)
	repo := NewCustomFieldAnswerRepository()
	userID := uuid.New()

	ctx, release := ownerContext(t, db, userID)
	defer release()
	tc := setupAnswerTest(t, ctx, userID)

	answer := mustCreateAnswer(t, ctx, repo, tc.goal.ID, tc.revenue.ID, "1000000")

	if err := repo.UpdateValue(ctx, answer.ID, "2500000"); err != nil {
		t.Fatalf("UpdateValue() error = %v", err)
	}

	got, err := repo.GetByID(ctx, answer.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Value != "2500000" {
		t.Errorf("expected updated value, got %q", got.Value)
	}
	if got.FieldDefinitionID != tc.revenue.ID {
		t.Error("expected definition binding to be unchanged")
	}

	err = repo.UpdateValue(ctx, uuid.New(), "whatever")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found for unknown answer, got %v", err)
	}
}

func TestCustomFieldAnswerRepository_DeleteByGoal(t *testing.T) {
	db := testDB(t)
	repo := NewCustomFieldAnswerRepository()
	userID := uuid.New()

	ctx, release := ownerContext(t, db, userID)
	defer release()
	tc := setupAnswerTest(t, ctx, userID)

	mustCreateAnswer(t, ctx, repo, tc.goal.ID, tc.revenue.ID, "1000000")
	mustCreateAnswer(t, ctx, repo, tc.goal.ID, tc.notes.ID, "stretch target")

	if err := repo.DeleteByGoal(ctx, tc.goal.ID); err != nil {
		t.Fatalf("DeleteByGoal() error = %v", err)
	}

	remaining, err := repo.ListByGoal(ctx, tc.goal.ID)
	if err != nil {
		t.Fatalf("ListByGoal() error = %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected no answers after full replace delete, got %d", len(remaining))
	}
}

func TestCustomFieldAnswerRepository_ListByGoal_OrderedByKey(t *testing.T) {
	db := testDB(t)
	repo := NewCustomFieldAnswerRepository()
	userID := uuid.New()

	ctx, release := ownerContext(t, db, userID)
	defer release()
	tc := setupAnswerTest(t, ctx, userID)

	mustCreateAnswer(t, ctx, repo, tc.goal.ID, tc.revenue.ID, "1000000")
	mustCreateAnswer(t, ctx, repo, tc.goal.ID, tc.notes.ID, "stretch target")

	answers, err := repo.ListByGoal(ctx, tc.goal.ID)
	if err != nil {
		t.Fatalf("ListByGoal() error = %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(answers))
	}
	if answers[0].Key != "notes" || answers[1].Key != "target_revenue" {
		t.Error("expected answers ordered by definition key")
	}
}

func TestCustomFieldAnswerRepository_CascadeWithDefinition(t *testing.T) {
	db := testDB(t)
	repo := NewCustomFieldAnswerRepository()
	defRepo := NewCustomFieldDefinitionRepository()
	userID := uuid.New()

	ctx, release := ownerContext(t, db, userID)
	defer release()
	tc := setupAnswerTest(t, ctx, userID)

	answer := mustCreateAnswer(t, ctx, repo, tc.goal.ID, tc.notes.ID, "stretch target")

	if err := defRepo.Delete(ctx, tc.notes.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := repo.GetByID(ctx, answer.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got != nil {
		t.Error("expected answer to cascade with its definition")
	}
}
