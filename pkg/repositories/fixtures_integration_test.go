//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/axis-inc/goal-engine/pkg/database"
	"github.com/axis-inc/goal-engine/pkg/models"
	"github.com/axis-inc/goal-engine/pkg/testhelpers"
)

// ownerContext acquires an owner-scoped connection for userID and stores it
// on the context. The returned release func must be deferred.
func ownerContext(t *testing.T, db *database.DB, userID uuid.UUID) (context.Context, func()) {
	t.Helper()
	ctx := context.Background()
	scope, err := db.WithOwner(ctx, userID)
	if err != nil {
		t.Fatalf("failed to acquire owner scope: %v", err)
	}
	return database.SetOwnerScope(ctx, scope), func() { scope.Close() }
}

func mustCreateGoalType(t *testing.T, ctx context.Context, repo GoalTypeRepository, userID uuid.UUID, title string, level int) *models.GoalType {
	t.Helper()
	goalType := &models.GoalType{UserID: userID, Title: title, LevelNumber: level}
	if err := repo.Create(ctx, goalType); err != nil {
		t.Fatalf("failed to create goal type %q: %v", title, err)
	}
	return goalType
}

func mustCreateDefinition(t *testing.T, ctx context.Context, repo CustomFieldDefinitionRepository, goalTypeID uuid.UUID, key string, required bool) *models.CustomFieldDefinition {
	t.Helper()
	def := &models.CustomFieldDefinition{
		GoalTypeID: goalTypeID,
		Key:        key,
		Label:      key,
		Type:       models.FieldTypeText,
		Required:   required,
	}
	if err := repo.Create(ctx, def); err != nil {
		t.Fatalf("failed to create definition %q: %v", key, err)
	}
	return def
}

func mustCreateGoal(t *testing.T, ctx context.Context, repo GoalRepository, userID, typeID uuid.UUID, title, status string) *models.Goal {
	t.Helper()
	goal := &models.Goal{
		UserID: userID,
		TypeID: typeID,
		Title:  title,
		Status: status,
	}
	if err := repo.Create(ctx, goal); err != nil {
		t.Fatalf("failed to create goal %q: %v", title, err)
	}
	return goal
}

func mustCreateAnswer(t *testing.T, ctx context.Context, repo CustomFieldAnswerRepository, goalID, defID uuid.UUID, value string) *models.CustomFieldAnswer {
	t.Helper()
	answer := &models.CustomFieldAnswer{
		GoalID:            goalID,
		FieldDefinitionID: defID,
		Value:             value,
	}
	if err := repo.Create(ctx, answer); err != nil {
		t.Fatalf("failed to create answer: %v", err)
	}
	return answer
}

// testDB returns the shared migrated database for the package.
func testDB(t *testing.T) *database.DB {
	t.Helper()
	return testhelpers.GetTestDB(t).DB
}
