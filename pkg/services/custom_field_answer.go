package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/axis-inc/goal-engine/pkg/apperrors"
	"github.com/axis-inc/goal-engine/pkg/database"
	"github.com/axis-inc/goal-engine/pkg/models"
	"github.com/axis-inc/goal-engine/pkg/repositories"
)

// CustomFieldAnswerService defines the interface for standalone answer
// operations. Answers are addressed by bare id, so ownership is resolved
// through the parent goal: someone else's answer reads as forbidden, a
// nonexistent one as absent.
type CustomFieldAnswerService interface {
	Create(ctx context.Context, userID, goalID uuid.UUID, submission AnswerSubmission) (*models.CustomFieldAnswer, error)
	Update(ctx context.Context, userID, id uuid.UUID, value string) (*models.CustomFieldAnswer, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.CustomFieldAnswer, error)
	ListByGoal(ctx context.Context, userID, goalID uuid.UUID) ([]*models.CustomFieldAnswer, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// customFieldAnswerService implements CustomFieldAnswerService.
type customFieldAnswerService struct {
	answerRepo repositories.CustomFieldAnswerRepository
	goalRepo   repositories.GoalRepository
	typeRepo   repositories.GoalTypeRepository
	defRepo    repositories.CustomFieldDefinitionRepository
	validator  SchemaValidator
	logger     *zap.Logger
}

// NewCustomFieldAnswerService creates a new custom field answer service
// with dependencies.
func NewCustomFieldAnswerService(
	answerRepo repositories.CustomFieldAnswerRepository,
	goalRepo repositories.GoalRepository,
	typeRepo repositories.GoalTypeRepository,
	defRepo repositories.CustomFieldDefinitionRepository,
	validator SchemaValidator,
	logger *zap.Logger,
) CustomFieldAnswerService {
	return &customFieldAnswerService{
		answerRepo: answerRepo,
		goalRepo:   goalRepo,
		typeRepo:   typeRepo,
		defRepo:    defRepo,
		validator:  validator,
		logger:     logger.Named("answer-service"),
	}
}

var _ CustomFieldAnswerService = (*customFieldAnswerService)(nil)

// Create adds one answer to an existing goal. The referenced definition
// must belong to the goal's type, and the goal must not already have an
// answer for it.
func (s *customFieldAnswerService) Create(ctx context.Context, userID, goalID uuid.UUID, submission AnswerSubmission) (*models.CustomFieldAnswer, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, apperrors.NewNotFound("Goal", goalID)
	}

	goalType, err := s.typeRepo.GetByID(ctx, goal.TypeID, userID)
	if err != nil {
		return nil, err
	}
	if goalType == nil {
		return nil, fmt.Errorf("goal %s references missing goal type %s", goalID, goal.TypeID)
	}

	answer, err := s.validator.ResolveAnswer(ctx, goalType, submission)
	if err != nil {
		return nil, err
	}

	// Fast-path duplicate check for a clean error message. The unique
	// constraint on (goal_id, field_definition_id) is the final arbiter
	// when two creates race.
	exists, err := s.answerRepo.ExistsForField(ctx, goalID, answer.FieldDefinitionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict("answer for this custom field already exists, use update instead")
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

	answer.GoalID = goalID
	if err = s.answerRepo.Create(ctx, answer); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Created custom field answer",
		zap.String("answer_id", answer.ID.String()),
		zap.String("goal_id", goalID.String()))

	return answer, nil
}

// Update changes the answer's value. The definition binding is immutable,
// and a required field cannot be blanked.
func (s *customFieldAnswerService) Update(ctx context.Context, userID, id uuid.UUID, value string) (*models.CustomFieldAnswer, error) {
	answer, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	def, err := s.defRepo.GetByID(ctx, answer.FieldDefinitionID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("answer %s references missing definition %s", id, answer.FieldDefinitionID)
	}
	if err := requireValuePresent(def, value); err != nil {
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

	// The required flag is re-read under a row lock so it cannot change
	// between the check and the write.
	def, err = s.defRepo.GetByIDForUpdate(ctx, answer.FieldDefinitionID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		err = apperrors.NewNotFound("CustomFieldAnswer", id)
		return nil, err
	}
	if err = requireValuePresent(def, value); err != nil {
		return nil, err
	}

	if err = s.answerRepo.UpdateValue(ctx, id, value); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	answer.Value = value

	return answer, nil
}

// Get returns a single answer with its definition metadata.
func (s *customFieldAnswerService) Get(ctx context.Context, userID, id uuid.UUID) (*models.CustomFieldAnswer, error) {
	return s.getOwned(ctx, userID, id)
}

// ListByGoal returns all answers of an owned goal.
func (s *customFieldAnswerService) ListByGoal(ctx context.Context, userID, goalID uuid.UUID) ([]*models.CustomFieldAnswer, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, apperrors.NewNotFound("Goal", goalID)
	}

	return s.answerRepo.ListByGoal(ctx, goalID)
}

// Delete removes the answer. Answers for required fields are protected;
// the goal must keep satisfying its type's schema.
func (s *customFieldAnswerService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	answer, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	def, err := s.defRepo.GetByID(ctx, answer.FieldDefinitionID)
	if err != nil {
		return err
	}
	if def != nil && def.Required {
		return apperrors.NewValidation("cannot delete answer for required field: %s", def.Label)
	}

	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return fmt.Errorf("no owner scope in context")
	}

	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Same row lock as Update: the required flag read above must still
	// hold when the row is removed.
	def, err = s.defRepo.GetByIDForUpdate(ctx, answer.FieldDefinitionID)
	if err != nil {
		return err
	}
	if def != nil && def.Required {
		err = apperrors.NewValidation("cannot delete answer for required field: %s", def.Label)
		return err
	}

	if err = s.answerRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Deleted custom field answer",
		zap.String("answer_id", id.String()),
		zap.String("goal_id", answer.GoalID.String()))

	return nil
}

// requireValuePresent rejects a blank value for a required field.
func requireValuePresent(def *models.CustomFieldDefinition, value string) error {
	if def.Required && isBlank(value) {
		return apperrors.NewFieldValidation(
			"value is required for field: "+def.Label,
			apperrors.FieldError{
				Field:         def.Key,
				Message:       "value is required for field: " + def.Label,
				RejectedValue: value,
			})
	}
	return nil
}

// getOwned loads an answer by bare id and checks ownership through the
// parent goal.
func (s *customFieldAnswerService) getOwned(ctx context.Context, userID, id uuid.UUID) (*models.CustomFieldAnswer, error) {
	answer, err := s.answerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return nil, apperrors.NewNotFound("CustomFieldAnswer", id)
	}

	owner, err := s.goalRepo.OwnerOf(ctx, answer.GoalID)
	if err != nil {
		return nil, err
	}
	if owner != userID {
		return nil, apperrors.NewForbidden("you don't have permission to access this answer")
	}

	return answer, nil
}
