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

// CustomFieldAnswerRepository provides data access for custom field
// answers. Reads join the backing definition so responses carry
// key/label/type without a second lookup; writes store the definition
// reference only.
type CustomFieldAnswerRepository interface {
	Create(ctx context.Context, answer *models.CustomFieldAnswer) error
	UpdateValue(ctx context.Context, id uuid.UUID, value string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByGoal(ctx context.Context, goalID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CustomFieldAnswer, error)
	ListByGoal(ctx context.Context, goalID uuid.UUID) ([]*models.CustomFieldAnswer, error)

	// ExistsForField reports whether the goal already has an answer for
	// the definition. Fast-path pre-check; the unique constraint on
	// (goal_id, field_definition_id) is the final arbiter.
	ExistsForField(ctx context.Context, goalID, fieldDefinitionID uuid.UUID) (bool, error)
}

type customFieldAnswerRepository struct{}

// NewCustomFieldAnswerRepository creates a new CustomFieldAnswerRepository.
func NewCustomFieldAnswerRepository() CustomFieldAnswerRepository {
	return &customFieldAnswerRepository{}
}

var _ CustomFieldAnswerRepository = (*customFieldAnswerRepository)(nil)

func (r *customFieldAnswerRepository) Create(ctx context.Context, answer *models.CustomFieldAnswer) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	query := `
		INSERT INTO custom_field_answers (goal_id, field_definition_id, field_value)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := scope.Conn.QueryRow(ctx, query,
		answer.GoalID,
		answer.FieldDefinitionID,
		answer.Value,
	).Scan(&answer.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflict("answer for this custom field already exists, use update instead")
		}
		return fmt.Errorf("failed to create custom field answer: %w", err)
	}

	return nil
}

func (r *customFieldAnswerRepository) UpdateValue(ctx context.Context, id uuid.UUID, value string) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	// The definition binding is immutable; only the value changes.
	result, err := scope.Conn.Exec(ctx,
		`UPDATE custom_field_answers SET field_value = $2 WHERE id = $1`, id, value)
	if err != nil {
		return fmt.Errorf("failed to update custom field answer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFound("CustomFieldAnswer", id)
	}

	return nil
}

func (r *customFieldAnswerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	result, err := scope.Conn.Exec(ctx,
		`DELETE FROM custom_field_answers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete custom field answer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFound("CustomFieldAnswer", id)
	}

	return nil
}

func (r *customFieldAnswerRepository) DeleteByGoal(ctx context.Context, goalID uuid.UUID) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	if _, err := scope.Conn.Exec(ctx,
		`DELETE FROM custom_field_answers WHERE goal_id = $1`, goalID); err != nil {
		return fmt.Errorf("failed to delete answers for goal: %w", err)
	}

	return nil
}

func (r *customFieldAnswerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CustomFieldAnswer, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no owner scope in context")
	}

	query := `
		SELECT a.id, a.goal_id, a.field_definition_id, a.field_value,
		       d.key, d.label, d.field_type
		FROM custom_field_answers a
		JOIN custom_field_definitions d ON d.id = a.field_definition_id
		WHERE a.id = $1`

	row := scope.Conn.QueryRow(ctx, query, id)
	answer, err := scanCustomFieldAnswer(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Answer not found
		}
		return nil, err
	}

	return answer, nil
}

func (r *customFieldAnswerRepository) ListByGoal(ctx context.Context, goalID uuid.UUID) ([]*models.CustomFieldAnswer, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no owner scope in context")
	}

	query := `
		SELECT a.id, a.goal_id, a.field_definition_id, a.field_value,
		       d.key, d.label, d.field_type
		FROM custom_field_answers a
		JOIN custom_field_definitions d ON d.id = a.field_definition_id
		WHERE a.goal_id = $1
		ORDER BY d.key`

	rows, err := scope.Conn.Query(ctx, query, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom field answers: %w", err)
	}
	defer rows.Close()

	var answers []*models.CustomFieldAnswer
	for rows.Next() {
		answer, err := scanCustomFieldAnswer(rows)
		if err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating custom field answers: %w", err)
	}

	return answers, nil
}

func (r *customFieldAnswerRepository) ExistsForField(ctx context.Context, goalID, fieldDefinitionID uuid.UUID) (bool, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return false, fmt.Errorf("no owner scope in context")
	}

	var exists bool
	err := scope.Conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM custom_field_answers
			WHERE goal_id = $1 AND field_definition_id = $2
		)`, goalID, fieldDefinitionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check answer existence: %w", err)
	}

	return exists, nil
}

func scanCustomFieldAnswer(row pgx.Row) (*models.CustomFieldAnswer, error) {
	var a models.CustomFieldAnswer
	err := row.Scan(
		&a.ID,
		&a.GoalID,
		&a.FieldDefinitionID,
		&a.Value,
		&a.Key,
		&a.Label,
		&a.Type,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan custom field answer: %w", err)
	}
	return &a, nil
}
