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

// goalTypeSortColumns whitelists sortable attributes for goal type lists.
// Both wire names and column names are accepted.
var goalTypeSortColumns = map[string]string{
	"levelNumber":  "level_number",
	"level_number": "level_number",
	"title":        "title",
}

// GoalTypeRepository provides data access for goal types.
type GoalTypeRepository interface {
	Create(ctx context.Context, goalType *models.GoalType) error
	UpdateTitle(ctx context.Context, goalType *models.GoalType) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.GoalType, error)
	List(ctx context.Context, userID uuid.UUID, page models.PageRequest) ([]*models.GoalType, error)
	Count(ctx context.Context, userID uuid.UUID) (int64, error)

	// MaxLevel returns the highest level number for the user, 0 when the
	// user has no goal types.
	MaxLevel(ctx context.Context, userID uuid.UUID) (int, error)

	// LockOwnerLevels takes a transaction-scoped advisory lock on the
	// owner. Level computations (max level, follower sweeps) must run
	// under this lock so concurrent level mutations for one owner
	// serialize instead of working from stale snapshots. Must be called
	// inside a transaction.
	LockOwnerLevels(ctx context.Context, userID uuid.UUID) error

	// ListAboveLevel returns the user's goal types with level_number
	// greater than level, ordered ascending.
	ListAboveLevel(ctx context.Context, userID uuid.UUID, level int) ([]*models.GoalType, error)

	// SetLevel assigns a level number to a single goal type.
	SetLevel(ctx context.Context, id uuid.UUID, level int) error
}

type goalTypeRepository struct{}

// NewGoalTypeRepository creates a new GoalTypeRepository.
func NewGoalTypeRepository() GoalTypeRepository {
	return &goalTypeRepository{}
}

var _ GoalTypeRepository = (*goalTypeRepository)(nil)

func (r *goalTypeRepository) Create(ctx context.Context, goalType *models.GoalType) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	query := `
		INSERT INTO goal_types (user_id, title, level_number)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := scope.Conn.QueryRow(ctx, query,
		goalType.UserID,
		goalType.Title,
		goalType.LevelNumber,
	).Scan(&goalType.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflict("level %d is already taken", goalType.LevelNumber)
		}
		return fmt.Errorf("failed to create goal type: %w", err)
	}

	return nil
}

func (r *goalTypeRepository) UpdateTitle(ctx context.Context, goalType *models.GoalType) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	query := `
		UPDATE goal_types
		SET title = $3
		WHERE id = $1 AND user_id = $2`

	result, err := scope.Conn.Exec(ctx, query, goalType.ID, goalType.UserID, goalType.Title)
	if err != nil {
		return fmt.Errorf("failed to update goal type: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFound("GoalType", goalType.ID)
	}

	return nil
}

func (r *goalTypeRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	// Definitions and goals (and their answers) go with the type via
	// ON DELETE CASCADE.
	query := `DELETE FROM goal_types WHERE id = $1 AND user_id = $2`

	result, err := scope.Conn.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete goal type: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFound("GoalType", id)
	}

	return nil
}

func (r *goalTypeRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.GoalType, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no owner scope in context")
	}

	query := `
		SELECT id, user_id, title, level_number
		FROM goal_types
		WHERE id = $1 AND user_id = $2`

	row := scope.Conn.QueryRow(ctx, query, id, userID)
	goalType, err := scanGoalType(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Not found or not owned by caller
		}
		return nil, err
	}

	return goalType, nil
}

func (r *goalTypeRepository) List(ctx context.Context, userID uuid.UUID, page models.PageRequest) ([]*models.GoalType, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no owner scope in context")
	}

	column, ok := goalTypeSortColumns[page.SortBy]
	if !ok {
		return nil, apperrors.NewValidation("unsupported sort key: %s", page.SortBy)
	}
	direction := "ASC"
	if page.SortDir == models.SortDesc {
		direction = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, title, level_number
		FROM goal_types
		WHERE user_id = $1
		ORDER BY %s %s
		LIMIT $2 OFFSET $3`, column, direction)

	rows, err := scope.Conn.Query(ctx, query, userID, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to query goal types: %w", err)
	}
	defer rows.Close()

	var goalTypes []*models.GoalType
	for rows.Next() {
		goalType, err := scanGoalType(rows)
		if err != nil {
			return nil, err
		}
		goalTypes = append(goalTypes, goalType)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goal types: %w", err)
	}

	return goalTypes, nil
}

func (r *goalTypeRepository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no owner scope in context")
	}

	var count int64
	err := scope.Conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM goal_types WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count goal types: %w", err)
	}

	return count, nil
}

func (r *goalTypeRepository) MaxLevel(ctx context.Context, userID uuid.UUID) (int, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no owner scope in context")
	}

	var maxLevel int
	err := scope.Conn.QueryRow(ctx,
		`SELECT COALESCE(MAX(level_number), 0) FROM goal_types WHERE user_id = $1`,
		userID).Scan(&maxLevel)
	if err != nil {
		return 0, fmt.Errorf("failed to get max level: %w", err)
	}

	return maxLevel, nil
}

func (r *goalTypeRepository) LockOwnerLevels(ctx context.Context, userID uuid.UUID) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	// A per-owner advisory lock rather than FOR UPDATE on the owner's
	// rows: a user with no goal types yet has no rows to lock, and two
	// concurrent first creates would both read max level 0. The lock is
	// released when the surrounding transaction ends.
	_, err := scope.Conn.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`,
		userID)
	if err != nil {
		return fmt.Errorf("failed to lock goal type levels: %w", err)
	}

	return nil
}

func (r *goalTypeRepository) ListAboveLevel(ctx context.Context, userID uuid.UUID, level int) ([]*models.GoalType, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no owner scope in context")
	}

	query := `
		SELECT id, user_id, title, level_number
		FROM goal_types
		WHERE user_id = $1 AND level_number > $2
		ORDER BY level_number`

	rows, err := scope.Conn.Query(ctx, query, userID, level)
	if err != nil {
		return nil, fmt.Errorf("failed to query goal types above level: %w", err)
	}
	defer rows.Close()

	var goalTypes []*models.GoalType
	for rows.Next() {
		goalType, err := scanGoalType(rows)
		if err != nil {
			return nil, err
		}
		goalTypes = append(goalTypes, goalType)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goal types: %w", err)
	}

	return goalTypes, nil
}

func (r *goalTypeRepository) SetLevel(ctx context.Context, id uuid.UUID, level int) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	result, err := scope.Conn.Exec(ctx,
		`UPDATE goal_types SET level_number = $2 WHERE id = $1`, id, level)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflict("level %d is already taken", level)
		}
		return fmt.Errorf("failed to set goal type level: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFound("GoalType", id)
	}

	return nil
}

func scanGoalType(row pgx.Row) (*models.GoalType, error) {
	var t models.GoalType
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.LevelNumber)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan goal type: %w", err)
	}
	return &t, nil
}
