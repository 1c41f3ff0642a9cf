package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/axis-inc/goal-engine/pkg/apperrors"
	"github.com/axis-inc/goal-engine/pkg/database"
	"github.com/axis-inc/goal-engine/pkg/models"
)

// CustomFieldDefinitionRepository provides data access for custom field
// definitions. Ownership is checked transitively through the parent goal
// type by the service layer; lookups here are by bare id.
type CustomFieldDefinitionRepository interface {
	Create(ctx context.Context, def *models.CustomFieldDefinition) error
	Update(ctx context.Context, def *models.CustomFieldDefinition) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CustomFieldDefinition, error)
	ListByGoalType(ctx context.Context, goalTypeID uuid.UUID) ([]*models.CustomFieldDefinition, error)

	// GetByIDForUpdate loads the definition with a row lock. Must run
	// inside a transaction; holds off concurrent definition updates
	// until the caller commits, so flags read here stay true for the
	// rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.CustomFieldDefinition, error)

	// KeyExists reports whether another definition under the goal type
	// already uses key. excludeID skips the definition being updated;
	// pass uuid.Nil on create. This is a fast-path pre-check only, the
	// unique constraint is the final arbiter.
	KeyExists(ctx context.Context, goalTypeID uuid.UUID, key string, excludeID uuid.UUID) (bool, error)

	// DeleteByGoalTypeExcluding removes all definitions of the goal type
	// whose id is not in keep. Used for full-replace updates.
	DeleteByGoalTypeExcluding(ctx context.Context, goalTypeID uuid.UUID, keep []uuid.UUID) error
}

type customFieldDefinitionRepository struct{}

// NewCustomFieldDefinitionRepository creates a new CustomFieldDefinitionRepository.
func NewCustomFieldDefinitionRepository() CustomFieldDefinitionRepository {
	return &customFieldDefinitionRepository{}
}

var _ CustomFieldDefinitionRepository = (*customFieldDefinitionRepository)(nil)

func (r *customFieldDefinitionRepository) Create(ctx context.Context, def *models.CustomFieldDefinition) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	query := `
		INSERT INTO custom_field_definitions (goal_type_id, key, label, field_type, required, placeholder)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := scope.Conn.QueryRow(ctx, query,
		def.GoalTypeID,
		def.Key,
		def.Label,
		def.Type,
		def.Required,
		nullString(def.Placeholder),
	).Scan(&def.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflict("custom field with key %q already exists", def.Key)
		}
		return fmt.Errorf("failed to create custom field definition: %w", err)
	}

	return nil
}

func (r *customFieldDefinitionRepository) Update(ctx context.Context, def *models.CustomFieldDefinition) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	// goal_type_id is immutable after creation and deliberately absent
	// from the SET list.
	query := `
		UPDATE custom_field_definitions
		SET key = $2, label = $3, field_type = $4, required = $5, placeholder = $6
		WHERE id = $1`

	result, err := scope.Conn.Exec(ctx, query,
		def.ID,
		def.Key,
		def.Label,
		def.Type,
		def.Required,
		nullString(def.Placeholder),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflict("custom field with key %q already exists", def.Key)
		}
		return fmt.Errorf("failed to update custom field definition: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFound("CustomFieldDefinition", def.ID)
	}

	return nil
}

func (r *customFieldDefinitionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	result, err := scope.Conn.Exec(ctx,
		`DELETE FROM custom_field_definitions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete custom field definition: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFound("CustomFieldDefinition", id)
	}

	return nil
}

func (r *customFieldDefinitionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CustomFieldDefinition, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no owner scope in context")
	}

	query := `
		SELECT id, goal_type_id, key, label, field_type, required, placeholder
		FROM custom_field_definitions
		WHERE id = $1`

	row := scope.Conn.QueryRow(ctx, query, id)
	def, err := scanCustomFieldDefinition(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Definition not found
		}
		return nil, err
	}

	return def, nil
}

func (r *customFieldDefinitionRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.CustomFieldDefinition, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no owner scope in context")
	}

	query := `
		SELECT id, goal_type_id, key, label, field_type, required, placeholder
		FROM custom_field_definitions
		WHERE id = $1
		FOR UPDATE`

	row := scope.Conn.QueryRow(ctx, query, id)
	def, err := scanCustomFieldDefinition(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Definition not found
		}
		return nil, err
	}

	return def, nil
}

func (r *customFieldDefinitionRepository) ListByGoalType(ctx context.Context, goalTypeID uuid.UUID) ([]*models.CustomFieldDefinition, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no owner scope in context")
	}

	query := `
		SELECT id, goal_type_id, key, label, field_type, required, placeholder
		FROM custom_field_definitions
		WHERE goal_type_id = $1
		ORDER BY key`

	rows, err := scope.Conn.Query(ctx, query, goalTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom field definitions: %w", err)
	}
	defer rows.Close()

	var defs []*models.CustomFieldDefinition
	for rows.Next() {
		def, err := scanCustomFieldDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating custom field definitions: %w", err)
	}

	return defs, nil
}

func (r *customFieldDefinitionRepository) KeyExists(ctx context.Context, goalTypeID uuid.UUID, key string, excludeID uuid.UUID) (bool, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return false, fmt.Errorf("no owner scope in context")
	}

	var exists bool
	err := scope.Conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM custom_field_definitions
			WHERE goal_type_id = $1 AND key = $2 AND id != $3
		)`, goalTypeID, key, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check key existence: %w", err)
	}

	return exists, nil
}

func (r *customFieldDefinitionRepository) DeleteByGoalTypeExcluding(ctx context.Context, goalTypeID uuid.UUID, keep []uuid.UUID) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	// Answers referencing the removed definitions go via ON DELETE CASCADE.
	query := `
		DELETE FROM custom_field_definitions
		WHERE goal_type_id = $1 AND NOT (id = ANY($2))`

	if _, err := scope.Conn.Exec(ctx, query, goalTypeID, keep); err != nil {
		return fmt.Errorf("failed to prune custom field definitions: %w", err)
	}

	return nil
}

func scanCustomFieldDefinition(row pgx.Row) (*models.CustomFieldDefinition, error) {
	var d models.CustomFieldDefinition
	var placeholder *string

	err := row.Scan(&d.ID, &d.GoalTypeID, &d.Key, &d.Label, &d.Type, &d.Required, &placeholder)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan custom field definition: %w", err)
	}

	if placeholder != nil {
		d.Placeholder = *placeholder
	}

	return &d, nil
}
