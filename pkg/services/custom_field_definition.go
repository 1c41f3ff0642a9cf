package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/axis-inc/goal-engine/pkg/apperrors"
	"github.com/axis-inc/goal-engine/pkg/models"
	"github.com/axis-inc/goal-engine/pkg/repositories"
)

// CustomFieldDefinitionService defines the interface for standalone
// definition operations, addressed by bare definition id or by parent
// goal type. Ownership is resolved transitively through the parent type:
// a definition under someone else's type reads as forbidden, not absent,
// because the definition id itself was valid.
type CustomFieldDefinitionService interface {
	Create(ctx context.Context, userID, goalTypeID uuid.UUID, input CustomFieldDefinitionInput) (*models.CustomFieldDefinition, error)
	Update(ctx context.Context, userID, id uuid.UUID, input CustomFieldDefinitionInput) (*models.CustomFieldDefinition, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.CustomFieldDefinition, error)
	ListByGoalType(ctx context.Context, userID, goalTypeID uuid.UUID) ([]*models.CustomFieldDefinition, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// customFieldDefinitionService implements CustomFieldDefinitionService.
type customFieldDefinitionService struct {
	defRepo  repositories.CustomFieldDefinitionRepository
	typeRepo repositories.GoalTypeRepository
	logger   *zap.Logger
}

// NewCustomFieldDefinitionService creates a new custom field definition
// service with dependencies.
func NewCustomFieldDefinitionService(
	defRepo repositories.CustomFieldDefinitionRepository,
	typeRepo repositories.GoalTypeRepository,
	logger *zap.Logger,
) CustomFieldDefinitionService {
	return &customFieldDefinitionService{
		defRepo:  defRepo,
		typeRepo: typeRepo,
		logger:   logger.Named("custom-field-service"),
	}
}

var _ CustomFieldDefinitionService = (*customFieldDefinitionService)(nil)

// Create adds a definition to an existing goal type. Existing goals of
// the type are not re-validated; the new field applies going forward.
func (s *customFieldDefinitionService) Create(ctx context.Context, userID, goalTypeID uuid.UUID, input CustomFieldDefinitionInput) (*models.CustomFieldDefinition, error) {
	if err := validateDefinitionInput(input); err != nil {
		return nil, err
	}

	goalType, err := s.typeRepo.GetByID(ctx, goalTypeID, userID)
	if err != nil {
		return nil, err
	}
	if goalType == nil {
		return nil, apperrors.NewNotFound("GoalType", goalTypeID)
	}

	taken, err := s.defRepo.KeyExists(ctx, goalTypeID, input.Key, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflict("custom field with key %q already exists", input.Key)
	}

	def := definitionFromInput(goalTypeID, input)
	if err := s.defRepo.Create(ctx, def); err != nil {
		return nil, err
	}

	s.logger.Info("Created custom field definition",
		zap.String("definition_id", def.ID.String()),
		zap.String("goal_type_id", goalTypeID.String()),
		zap.String("key", def.Key))

	return def, nil
}

// Update rewrites the definition's attributes. The parent goal type
// binding is immutable.
func (s *customFieldDefinitionService) Update(ctx context.Context, userID, id uuid.UUID, input CustomFieldDefinitionInput) (*models.CustomFieldDefinition, error) {
	if err := validateDefinitionInput(input); err != nil {
		return nil, err
	}

	def, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.defRepo.KeyExists(ctx, def.GoalTypeID, input.Key, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflict("custom field with key %q already exists", input.Key)
	}

	updated := definitionFromInput(def.GoalTypeID, input)
	updated.ID = id
	if err := s.defRepo.Update(ctx, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// Get returns a single definition.
func (s *customFieldDefinitionService) Get(ctx context.Context, userID, id uuid.UUID) (*models.CustomFieldDefinition, error) {
	return s.getOwned(ctx, userID, id)
}

// ListByGoalType returns all definitions of an owned goal type.
func (s *customFieldDefinitionService) ListByGoalType(ctx context.Context, userID, goalTypeID uuid.UUID) ([]*models.CustomFieldDefinition, error) {
	goalType, err := s.typeRepo.GetByID(ctx, goalTypeID, userID)
	if err != nil {
		return nil, err
	}
	if goalType == nil {
		return nil, apperrors.NewNotFound("GoalType", goalTypeID)
	}

	return s.defRepo.ListByGoalType(ctx, goalTypeID)
}

// Delete removes the definition; answers referencing it go via cascade.
func (s *customFieldDefinitionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	def, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.defRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Deleted custom field definition",
		zap.String("definition_id", id.String()),
		zap.String("key", def.Key))

	return nil
}

// getOwned loads a definition by bare id and checks ownership through
// the parent goal type.
func (s *customFieldDefinitionService) getOwned(ctx context.Context, userID, id uuid.UUID) (*models.CustomFieldDefinition, error) {
	def, err := s.defRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, apperrors.NewNotFound("CustomFieldDefinition", id)
	}

	goalType, err := s.typeRepo.GetByID(ctx, def.GoalTypeID, userID)
	if err != nil {
		return nil, err
	}
	if goalType == nil {
		return nil, apperrors.NewForbidden("you don't have permission to access this custom field")
	}

	return def, nil
}

// validateDefinitionInput checks a standalone definition submission.
func validateDefinitionInput(input CustomFieldDefinitionInput) error {
	var fieldErrs []apperrors.FieldError

	if !models.IsValidFieldKey(input.Key) {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field:         "key",
			Message:       "key must contain only lowercase letters, digits and underscores",
			RejectedValue: input.Key,
		})
	}
	if input.Label == "" {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field: "label", Message: "label must not be blank",
		})
	}
	if !models.IsValidFieldType(input.Type) {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field:         "type",
			Message:       "type must be one of TEXT, NUMBER, DATE, BOOLEAN",
			RejectedValue: input.Type,
		})
	}

	if len(fieldErrs) > 0 {
		return apperrors.NewFieldValidation("custom field validation failed", fieldErrs...)
	}

	return nil
}
