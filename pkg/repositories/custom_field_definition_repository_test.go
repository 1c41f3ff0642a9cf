//go:build integration

package repositories

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/axis-inc/goal-engine/pkg/apperrors"
	"github.com/axis-inc/goal-engine/pkg/models"
)

func TestCustomFieldDefinitionRepository_Create_DuplicateKey(t *testing.T) {
	db := testDB(t)
	typeRepo := NewGoalTypeRepository()
	repo := NewCustomFieldDefinitionRepository()
	userID := uuid.New()

	ctx, release := ownerContext(t, db, userID)
	defer release()

	goalType := mustCreateGoalType(t, ctx, typeRepo, userID, "Annual", 1)
	otherType := mustCreateGoalType(t, ctx, typeRepo, userID, "Quarterly", 2)

	mustCreateDefinition(t, ctx, repo, goalType.ID, "target_revenue", true)

	err := repo.Create(ctx, &models.CustomFieldDefinition{
		GoalTypeID: goalType.ID,
		Key:        "target_revenue",
		Label:      "Target Revenue",
		Type:       models.FieldTypeNumber,
	})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected conflict for duplicate key, got %v", err)
	}

	// Keys are scoped per goal type, not per user.
	mustCreateDefinition(t, ctx, repo, otherType.ID, "target_revenue", false)
}

func TestCustomFieldDefinitionRepository_KeyExists(t *testing.T) {
	db := testDB(t)
	typeRepo := NewGoalTypeRepository()
	repo := NewCustomFieldDefinitionRepository()
	userID := uuid.New()

	ctx, release := ownerContext(t, db, userID)
	defer release()

	goalType := mustCreateGoalType(t, ctx, typeRepo, userID, "Annual", 1)
	def := mustCreateDefinition(t, ctx, repo, goalType.ID, "notes", false)

	exists, err := repo.KeyExists(ctx, goalType.ID, "notes", uuid.Nil)
	if err != nil {
		t.Fatalf("KeyExists() error = %v", err)
	}
	if !exists {
		t.Error("expected key to exist")
	}

	// The holder of the key is excluded when checking its own update.
	exists, err = repo.KeyExists(ctx, goalType.ID, "notes", def.ID)
	if err != nil {
		t.Fatalf("KeyExists() error = %v", err)
	}
	if exists {
		t.Error("expected key excluded for its own definition")
	}

	exists, err = repo.KeyExists(ctx, goalType.ID, "missing", uuid.Nil)
	if err != nil {
		t.Fatalf("KeyExists() error = %v", err)
	}
	if exists {
		t.Error("expected unknown key to not exist")
	}
}

func TestCustomFieldDefinitionRepository_Update_PersistsEverythingButBinding(t *testing.T) {
	db := testDB(t)
	typeRepo := NewGoalTypeRepository()
	repo := NewCustomFieldDefinitionRepository()
	userID := uuid.New()

	ctx, release := ownerContext(t, db, userID)
	defer release()

	goalType := mustCreateGoalType(t, ctx, typeRepo, userID, "Annual", 1)
	def := mustCreateDefinition(t, ctx, repo, goalType.ID, "notes", false)

	def.Key = "remarks"
	def.Label = "Remarks"
	def.Type = models.FieldTypeText
	def.Required = true
	def.Placeholder = "Anything notable"
	if err := repo.Update(ctx, def); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, def.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got == nil {
		t.Fatal("expected definition, got nil")
	}
	if got.Key != "remarks" || !got.Required || got.Placeholder != "Anything notable" {
		t.Errorf("unexpected definition after update: %+v", got)
	}
	if got.GoalTypeID != goalType.ID {
		t.Error("expected goal type binding to be unchanged")
	}
}

func TestCustomFieldDefinitionRepository_DeleteByGoalTypeExcluding(t *testing.T) {
	db := testDB(t)
	typeRepo := NewGoalTypeRepository()
	repo := NewCustomFieldDefinitionRepository()
	userID := uuid.New()

	ctx, release := ownerContext(t, db, userID)
	defer release()

	goalType := mustCreateGoalType(t, ctx, typeRepo, userID, "Annual", 1)
	kept := mustCreateDefinition(t, ctx, repo, goalType.ID, "keep_me", false)
	mustCreateDefinition(t, ctx, repo, goalType.ID, "drop_me", false)
	mustCreateDefinition(t, ctx, repo, goalType.ID, "drop_me_too", false)

	if err := repo.DeleteByGoalTypeExcluding(ctx, goalType.ID, []uuid.UUID{kept.ID}); err != nil {
		t.Fatalf("DeleteByGoalTypeExcluding() error = %v", err)
	}

	remaining, err := repo.ListByGoalType(ctx, goalType.ID)
	if err != nil {
		t.Fatalf("ListByGoalType() error = %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != kept.ID {
		t.Errorf("expected only the kept definition to remain, got %d", len(remaining))
	}

	// An empty keep list clears the whole schema.
	if err := repo.DeleteByGoalTypeExcluding(ctx, goalType.ID, nil); err != nil {
		t.Fatalf("DeleteByGoalTypeExcluding() error = %v", err)
	}
	remaining, err = repo.ListByGoalType(ctx, goalType.ID)
	if err != nil {
		t.Fatalf("ListByGoalType() error = %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected empty schema, got %d definitions", len(remaining))
	}
}

func TestCustomFieldDefinitionRepository_FreedKeyReusable(t *testing.T) {
	db := testDB(t)
	typeRepo := NewGoalTypeRepository()
	repo := NewCustomFieldDefinitionRepository()
	userID := uuid.New()

	ctx, release := ownerContext(t, db, userID)
	defer release()

	goalType := mustCreateGoalType(t, ctx, typeRepo, userID, "Annual", 1)
	old := mustCreateDefinition(t, ctx, repo, goalType.ID, "budget", false)

	// Pruning first frees the key for reuse within the same replace.
	if err := repo.DeleteByGoalTypeExcluding(ctx, goalType.ID, nil); err != nil {
		t.Fatalf("DeleteByGoalTypeExcluding() error = %v", err)
	}
	fresh := mustCreateDefinition(t, ctx, repo, goalType.ID, "budget", true)
	if fresh.ID == old.ID {
		t.Error("expected a new definition identity for the reused key")
	}
}
