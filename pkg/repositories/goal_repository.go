package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/axis-inc/goal-engine/pkg/apperrors"
	"github.com/axis-inc/goal-engine/pkg/database"
	"github.com/axis-inc/goal-engine/pkg/models"
)

// goalSortColumns whitelists sortable attributes for goal lists.
var goalSortColumns = map[string]string{
	"createdAt":  "created_at",
	"created_at": "created_at",
	"updatedAt":  "updated_at",
	"updated_at": "updated_at",
	"title":      "title",
	"status":     "status",
}

// GoalFilter narrows goal lists. Zero values mean no filtering.
type GoalFilter struct {
	Status string
	TypeID uuid.UUID
}

// GoalRepository provides data access for goals.
type GoalRepository interface {
	Create(ctx context.Context, goal *models.Goal) error
	Update(ctx context.Context, goal *models.Goal) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Goal, error)
	List(ctx context.Context, userID uuid.UUID, filter GoalFilter, page models.PageRequest) ([]*models.Goal, error)
	Count(ctx context.Context, userID uuid.UUID, filter GoalFilter) (int64, error)

	// OwnerOf returns the owning user of the goal, or uuid.Nil when the
	// goal does not exist. Used for owner comparisons on entities looked
	// up by bare id (answers).
	OwnerOf(ctx context.Context, goalID uuid.UUID) (uuid.UUID, error)
}

type goalRepository struct{}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository() GoalRepository {
	return &goalRepository{}
}

var _ GoalRepository = (*goalRepository)(nil)

func (r *goalRepository) Create(ctx context.Context, goal *models.Goal) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	now := time.Now()

	query := `
		INSERT INTO goals (user_id, goal_type_id, title, description, status, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := scope.Conn.QueryRow(ctx, query,
		goal.UserID,
		goal.TypeID,
		goal.Title,
		nullString(goal.Description),
		goal.Status,
		goal.ParentID,
		now,
		now,
	).Scan(&goal.ID, &goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	return nil
}

func (r *goalRepository) Update(ctx context.Context, goal *models.Goal) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	query := `
		UPDATE goals
		SET goal_type_id = $3, title = $4, description = $5, status = $6, parent_id = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`

	err := scope.Conn.QueryRow(ctx, query,
		goal.ID,
		goal.UserID,
		goal.TypeID,
		goal.Title,
		nullString(goal.Description),
		goal.Status,
		goal.ParentID,
		time.Now(),
	).Scan(&goal.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("Goal", goal.ID)
		}
		return fmt.Errorf("failed to update goal: %w", err)
	}

	return nil
}

func (r *goalRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	// Answers and sub-goals go with the goal via ON DELETE CASCADE.
	result, err := scope.Conn.Exec(ctx,
		`DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFound("Goal", id)
	}

	return nil
}

func (r *goalRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Goal, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no owner scope in context")
	}

	query := `
		SELECT id, user_id, goal_type_id, title, description, status, parent_id, created_at, updated_at
		FROM goals
		WHERE id = $1 AND user_id = $2`

	row := scope.Conn.QueryRow(ctx, query, id, userID)
	goal, err := scanGoal(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Not found or not owned by caller
		}
		return nil, err
	}

	return goal, nil
}

func (r *goalRepository) List(ctx context.Context, userID uuid.UUID, filter GoalFilter, page models.PageRequest) ([]*models.Goal, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no owner scope in context")
	}

	column, ok := goalSortColumns[page.SortBy]
	if !ok {
		return nil, apperrors.NewValidation("unsupported sort key: %s", page.SortBy)
	}
	direction := "ASC"
	if page.SortDir == models.SortDesc {
		direction = "DESC"
	}

	where, args := goalFilterClause(userID, filter)
	args = append(args, page.Size, page.Offset())

	query := fmt.Sprintf(`
		SELECT id, user_id, goal_type_id, title, description, status, parent_id, created_at, updated_at
		FROM goals
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d`, where, column, direction, len(args)-1, len(args))

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []*models.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}

	return goals, nil
}

func (r *goalRepository) Count(ctx context.Context, userID uuid.UUID, filter GoalFilter) (int64, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no owner scope in context")
	}

	where, args := goalFilterClause(userID, filter)

	var count int64
	err := scope.Conn.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM goals %s`, where), args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count goals: %w", err)
	}

	return count, nil
}

func (r *goalRepository) OwnerOf(ctx context.Context, goalID uuid.UUID) (uuid.UUID, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return uuid.Nil, fmt.Errorf("no owner scope in context")
	}

	var owner uuid.UUID
	err := scope.Conn.QueryRow(ctx,
		`SELECT user_id FROM goals WHERE id = $1`, goalID).Scan(&owner)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, nil // Goal not found
		}
		return uuid.Nil, fmt.Errorf("failed to resolve goal owner: %w", err)
	}

	return owner, nil
}

// goalFilterClause builds the WHERE clause and arguments for a filtered
// owner-scoped goal query. user_id is always the first condition.
func goalFilterClause(userID uuid.UUID, filter GoalFilter) (string, []any) {
	where := "WHERE user_id = $1"
	args := []any{userID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.TypeID != uuid.Nil {
		args = append(args, filter.TypeID)
		where += fmt.Sprintf(" AND goal_type_id = $%d", len(args))
	}

	return where, args
}

func scanGoal(row pgx.Row) (*models.Goal, error) {
	var g models.Goal
	var description *string

	err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.TypeID,
		&g.Title,
		&description,
		&g.Status,
		&g.ParentID,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan goal: %w", err)
	}

	if description != nil {
		g.Description = *description
	}

	return &g, nil
}
