package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/axis-inc/goal-engine/pkg/apperrors"
	"github.com/axis-inc/goal-engine/pkg/database"
	"github.com/axis-inc/goal-engine/pkg/models"
	"github.com/axis-inc/goal-engine/pkg/repositories"
)

// GoalInput carries the client-editable attributes of a goal.
type GoalInput struct {
	Title         string
	Description   string
	TypeID        uuid.UUID
	Status        string
	ParentID      *uuid.UUID
	CustomAnswers []AnswerSubmission
}

// GoalService defines the interface for goal operations.
type GoalService interface {
	Create(ctx context.Context, userID uuid.UUID, input GoalInput) (*models.Goal, error)
	Update(ctx context.Context, userID, id uuid.UUID, input GoalInput) (*models.Goal, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Goal, error)
	List(ctx context.Context, userID uuid.UUID, filter repositories.GoalFilter, page models.PageRequest) (models.Page[*models.Goal], error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// goalService implements GoalService.
type goalService struct {
	goalRepo   repositories.GoalRepository
	typeRepo   repositories.GoalTypeRepository
	answerRepo repositories.CustomFieldAnswerRepository
	validator  SchemaValidator
	logger     *zap.Logger
}

// NewGoalService creates a new goal service with dependencies.
func NewGoalService(
	goalRepo repositories.GoalRepository,
	typeRepo repositories.GoalTypeRepository,
	answerRepo repositories.CustomFieldAnswerRepository,
	validator SchemaValidator,
	logger *zap.Logger,
) GoalService {
	return &goalService{
		goalRepo:   goalRepo,
		typeRepo:   typeRepo,
		answerRepo: answerRepo,
		validator:  validator,
		logger:     logger.Named("goal-service"),
	}
}

var _ GoalService = (*goalService)(nil)

// Create stores a new goal after resolving its type, parent and answer
// set. Nothing is written when any part of the submission is invalid.
func (s *goalService) Create(ctx context.Context, userID uuid.UUID, input GoalInput) (*models.Goal, error) {
	if input.Status == "" {
		input.Status = models.StatusNotStarted
	}
	if err := validateGoalInput(input); err != nil {
		return nil, err
	}

	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no owner scope in context")
	}

	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	goalType, err := s.resolveGoalType(ctx, userID, input.TypeID)
	if err != nil {
		return nil, err
	}
	if err = s.checkParent(ctx, userID, input.ParentID, uuid.Nil); err != nil {
		return nil, err
	}

	answers, err := s.validator.ResolveGoalAnswers(ctx, goalType, input.CustomAnswers)
	if err != nil {
		return nil, err
	}

	goal := &models.Goal{
		UserID:      userID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		TypeID:      goalType.ID,
		Status:      input.Status,
		ParentID:    input.ParentID,
	}
	if err = s.goalRepo.Create(ctx, goal); err != nil {
		return nil, err
	}

	for _, answer := range answers {
		answer.GoalID = goal.ID
		if err = s.answerRepo.Create(ctx, answer); err != nil {
			return nil, err
		}
	}
	goal.CustomAnswers = answers

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Created goal",
		zap.String("goal_id", goal.ID.String()),
		zap.String("goal_type_id", goalType.ID.String()),
		zap.Int("answers", len(answers)))

	return goal, nil
}

// Update replaces the goal's attributes and its full answer set. The new
// answer set is validated against the (possibly different) target type
// before the stored set is swapped out.
func (s *goalService) Update(ctx context.Context, userID, id uuid.UUID, input GoalInput) (*models.Goal, error) {
	if err := validateGoalInput(input); err != nil {
		return nil, err
	}

	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no owner scope in context")
	}

	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	goal, err := s.goalRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		err = apperrors.NewNotFound("Goal", id)
		return nil, err
	}

	goalType, err := s.resolveGoalType(ctx, userID, input.TypeID)
	if err != nil {
		return nil, err
	}
	if err = s.checkParent(ctx, userID, input.ParentID, id); err != nil {
		return nil, err
	}

	answers, err := s.validator.ResolveGoalAnswers(ctx, goalType, input.CustomAnswers)
	if err != nil {
		return nil, err
	}

	goal.Title = strings.TrimSpace(input.Title)
	goal.Description = input.Description
	goal.TypeID = goalType.ID
	goal.Status = input.Status
	goal.ParentID = input.ParentID
	if err = s.goalRepo.Update(ctx, goal); err != nil {
		return nil, err
	}

	// Full-replace semantics: the submitted set becomes the stored set.
	if err = s.answerRepo.DeleteByGoal(ctx, id); err != nil {
		return nil, err
	}
	for _, answer := range answers {
		answer.GoalID = id
		if err = s.answerRepo.Create(ctx, answer); err != nil {
			return nil, err
		}
	}
	goal.CustomAnswers = answers

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Updated goal",
		zap.String("goal_id", id.String()),
		zap.Int("answers", len(answers)))

	return goal, nil
}

// Get returns the goal with its answers.
func (s *goalService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Goal, error) {
	goal, err := s.goalRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, apperrors.NewNotFound("Goal", id)
	}

	if goal.CustomAnswers, err = s.answerRepo.ListByGoal(ctx, id); err != nil {
		return nil, err
	}

	return goal, nil
}

// List returns one page of the user's goals, optionally narrowed by
// status and goal type, newest first unless the request asks otherwise.
func (s *goalService) List(ctx context.Context, userID uuid.UUID, filter repositories.GoalFilter, page models.PageRequest) (models.Page[*models.Goal], error) {
	if filter.Status != "" && !models.IsValidGoalStatus(filter.Status) {
		return models.Page[*models.Goal]{}, apperrors.NewValidation("invalid goal status: %s", filter.Status)
	}

	page = page.Normalize("created_at", models.SortDesc)

	goals, err := s.goalRepo.List(ctx, userID, filter, page)
	if err != nil {
		return models.Page[*models.Goal]{}, err
	}

	total, err := s.goalRepo.Count(ctx, userID, filter)
	if err != nil {
		return models.Page[*models.Goal]{}, err
	}

	for _, goal := range goals {
		if goal.CustomAnswers, err = s.answerRepo.ListByGoal(ctx, goal.ID); err != nil {
			return models.Page[*models.Goal]{}, err
		}
	}

	return models.NewPage(goals, total, page.Number, page.Size), nil
}

// Delete removes the goal and, via cascade, its answers and sub-goals.
func (s *goalService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.goalRepo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.logger.Info("Deleted goal", zap.String("goal_id", id.String()))
	return nil
}

// resolveGoalType loads the target type owner-scoped. An unknown or
// foreign type id reads as absent.
func (s *goalService) resolveGoalType(ctx context.Context, userID, typeID uuid.UUID) (*models.GoalType, error) {
	goalType, err := s.typeRepo.GetByID(ctx, typeID, userID)
	if err != nil {
		return nil, err
	}
	if goalType == nil {
		return nil, apperrors.NewNotFound("GoalType", typeID)
	}
	return goalType, nil
}

// checkParent verifies a referenced parent goal exists, belongs to the
// caller, and is not the goal itself.
func (s *goalService) checkParent(ctx context.Context, userID uuid.UUID, parentID *uuid.UUID, selfID uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if selfID != uuid.Nil && *parentID == selfID {
		return apperrors.NewValidation("goal cannot be its own parent")
	}

	parent, err := s.goalRepo.GetByID(ctx, *parentID, userID)
	if err != nil {
		return err
	}
	if parent == nil {
		return apperrors.NewNotFound("Goal", *parentID)
	}
	return nil
}

// validateGoalInput checks title presence and length and status
// membership.
func validateGoalInput(input GoalInput) error {
	var fieldErrs []apperrors.FieldError

	title := strings.TrimSpace(input.Title)
	if title == "" {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field: "title", Message: "title must not be blank",
		})
	} else if len(title) > models.MaxGoalTitleLength {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field:   "title",
			Message: fmt.Sprintf("title must not exceed %d characters", models.MaxGoalTitleLength),
		})
	}

	if !models.IsValidGoalStatus(input.Status) {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field:         "status",
			Message:       "status must be one of NOT_STARTED, IN_PROGRESS, COMPLETED, CANCELLED, ON_HOLD",
			RejectedValue: input.Status,
		})
	}

	if input.TypeID == uuid.Nil {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field: "type_id", Message: "type_id must be set",
		})
	}

	if len(fieldErrs) > 0 {
		return apperrors.NewFieldValidation("goal validation failed", fieldErrs...)
	}

	return nil
}
