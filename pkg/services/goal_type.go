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

// CustomFieldDefinitionInput is a submitted definition. ID is set when the
// client refers to an existing definition (full-replace updates) and nil
// for new definitions.
type CustomFieldDefinitionInput struct {
	ID          *uuid.UUID
	Key         string
	Label       string
	Type        string
	Required    bool
	Placeholder string
}

// GoalTypeInput carries the client-editable attributes of a goal type.
// The level number is never client-supplied; it is assigned on create and
// maintained by the renumberer afterwards.
type GoalTypeInput struct {
	Title        string
	CustomFields []CustomFieldDefinitionInput
}

// GoalTypeService defines the interface for goal type operations.
type GoalTypeService interface {
	Create(ctx context.Context, userID uuid.UUID, input GoalTypeInput) (*models.GoalType, error)
	Update(ctx context.Context, userID, id uuid.UUID, input GoalTypeInput) (*models.GoalType, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.GoalType, error)
	List(ctx context.Context, userID uuid.UUID, page models.PageRequest) (models.Page[*models.GoalType], error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// goalTypeService implements GoalTypeService.
type goalTypeService struct {
	typeRepo   repositories.GoalTypeRepository
	defRepo    repositories.CustomFieldDefinitionRepository
	renumberer LevelRenumberer
	logger     *zap.Logger
}

// NewGoalTypeService creates a new goal type service with dependencies.
func NewGoalTypeService(
	typeRepo repositories.GoalTypeRepository,
	defRepo repositories.CustomFieldDefinitionRepository,
	renumberer LevelRenumberer,
	logger *zap.Logger,
) GoalTypeService {
	return &goalTypeService{
		typeRepo:   typeRepo,
		defRepo:    defRepo,
		renumberer: renumberer,
		logger:     logger.Named("goal-type-service"),
	}
}

var _ GoalTypeService = (*goalTypeService)(nil)

// Create stores a new goal type at the next free level together with its
// custom field definitions, all in one transaction.
func (s *goalTypeService) Create(ctx context.Context, userID uuid.UUID, input GoalTypeInput) (*models.GoalType, error) {
	if err := validateGoalTypeInput(input); err != nil {
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

	// Serialize level assignment per owner so two concurrent creates
	// cannot read the same max level.
	if err = s.typeRepo.LockOwnerLevels(ctx, userID); err != nil {
		return nil, err
	}

	level, err := s.renumberer.NextLevel(ctx, userID)
	if err != nil {
		return nil, err
	}

	goalType := &models.GoalType{
		UserID:      userID,
		Title:       strings.TrimSpace(input.Title),
		LevelNumber: level,
	}
	if err = s.typeRepo.Create(ctx, goalType); err != nil {
		return nil, err
	}

	for _, field := range input.CustomFields {
		def := definitionFromInput(goalType.ID, field)
		if err = s.defRepo.Create(ctx, def); err != nil {
			return nil, err
		}
		goalType.CustomFields = append(goalType.CustomFields, def)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Created goal type",
		zap.String("goal_type_id", goalType.ID.String()),
		zap.Int("level", goalType.LevelNumber),
		zap.Int("custom_fields", len(goalType.CustomFields)))

	return goalType, nil
}

// Update replaces the goal type's title and custom field set. Submitted
// definitions with an id are updated in place, definitions without an id
// are created, and stored definitions absent from the submission are
// removed along with their answers. The level number is untouched.
func (s *goalTypeService) Update(ctx context.Context, userID, id uuid.UUID, input GoalTypeInput) (*models.GoalType, error) {
	if err := validateGoalTypeInput(input); err != nil {
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

	goalType, err := s.typeRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if goalType == nil {
		err = apperrors.NewNotFound("GoalType", id)
		return nil, err
	}

	goalType.Title = strings.TrimSpace(input.Title)
	if err = s.typeRepo.UpdateTitle(ctx, goalType); err != nil {
		return nil, err
	}

	existing, err := s.defRepo.ListByGoalType(ctx, id)
	if err != nil {
		return nil, err
	}
	existingByID := make(map[uuid.UUID]*models.CustomFieldDefinition, len(existing))
	for _, def := range existing {
		existingByID[def.ID] = def
	}

	kept := make([]uuid.UUID, 0, len(input.CustomFields))
	for _, field := range input.CustomFields {
		if field.ID != nil {
			if _, found := existingByID[*field.ID]; !found {
				err = apperrors.NewNotFound("CustomFieldDefinition", *field.ID)
				return nil, err
			}
			kept = append(kept, *field.ID)
		}
	}

	// Prune removed definitions first so their keys are free for the
	// updates and inserts below.
	if err = s.defRepo.DeleteByGoalTypeExcluding(ctx, id, kept); err != nil {
		return nil, err
	}

	goalType.CustomFields = nil
	for _, field := range input.CustomFields {
		def := definitionFromInput(id, field)
		if field.ID != nil {
			def.ID = *field.ID
			if err = s.defRepo.Update(ctx, def); err != nil {
				return nil, err
			}
		} else {
			if err = s.defRepo.Create(ctx, def); err != nil {
				return nil, err
			}
		}
		goalType.CustomFields = append(goalType.CustomFields, def)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Updated goal type",
		zap.String("goal_type_id", id.String()),
		zap.Int("custom_fields", len(goalType.CustomFields)))

	return goalType, nil
}

// Get returns the goal type with its custom field definitions.
func (s *goalTypeService) Get(ctx context.Context, userID, id uuid.UUID) (*models.GoalType, error) {
	goalType, err := s.typeRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if goalType == nil {
		return nil, apperrors.NewNotFound("GoalType", id)
	}

	if goalType.CustomFields, err = s.defRepo.ListByGoalType(ctx, id); err != nil {
		return nil, err
	}

	return goalType, nil
}

// List returns one page of the user's goal types ordered by level unless
// the request asks otherwise.
func (s *goalTypeService) List(ctx context.Context, userID uuid.UUID, page models.PageRequest) (models.Page[*models.GoalType], error) {
	page = page.Normalize("level_number", models.SortAsc)

	goalTypes, err := s.typeRepo.List(ctx, userID, page)
	if err != nil {
		return models.Page[*models.GoalType]{}, err
	}

	total, err := s.typeRepo.Count(ctx, userID)
	if err != nil {
		return models.Page[*models.GoalType]{}, err
	}

	for _, goalType := range goalTypes {
		if goalType.CustomFields, err = s.defRepo.ListByGoalType(ctx, goalType.ID); err != nil {
			return models.Page[*models.GoalType]{}, err
		}
	}

	return models.NewPage(goalTypes, total, page.Number, page.Size), nil
}

// Delete removes the goal type, its definitions, its goals and their
// answers, then shifts every higher type down one level so the sequence
// stays dense.
func (s *goalTypeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
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

	if err = s.typeRepo.LockOwnerLevels(ctx, userID); err != nil {
		return err
	}

	goalType, err := s.typeRepo.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if goalType == nil {
		err = apperrors.NewNotFound("GoalType", id)
		return err
	}

	if err = s.typeRepo.Delete(ctx, id, userID); err != nil {
		return err
	}

	if err = s.renumberer.CloseGap(ctx, userID, goalType.LevelNumber); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Deleted goal type",
		zap.String("goal_type_id", id.String()),
		zap.Int("vacated_level", goalType.LevelNumber))

	return nil
}

// validateGoalTypeInput checks the client-editable attributes: title
// presence and length, per-field key format, label presence, field type
// membership, and key uniqueness within the submitted set.
func validateGoalTypeInput(input GoalTypeInput) error {
	var fieldErrs []apperrors.FieldError

	title := strings.TrimSpace(input.Title)
	if title == "" {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field: "title", Message: "title must not be blank",
		})
	} else if len(title) > models.MaxGoalTypeTitleLength {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field:   "title",
			Message: fmt.Sprintf("title must not exceed %d characters", models.MaxGoalTypeTitleLength),
		})
	}

	seen := make(map[string]bool, len(input.CustomFields))
	for i, field := range input.CustomFields {
		prefix := fmt.Sprintf("custom_fields[%d].", i)

		if !models.IsValidFieldKey(field.Key) {
			fieldErrs = append(fieldErrs, apperrors.FieldError{
				Field:         prefix + "key",
				Message:       "key must contain only lowercase letters, digits and underscores",
				RejectedValue: field.Key,
			})
		} else if seen[field.Key] {
			return apperrors.NewConflict("custom field with key %q already exists", field.Key)
		} else {
			seen[field.Key] = true
		}

		if strings.TrimSpace(field.Label) == "" {
			fieldErrs = append(fieldErrs, apperrors.FieldError{
				Field: prefix + "label", Message: "label must not be blank",
			})
		}

		if !models.IsValidFieldType(field.Type) {
			fieldErrs = append(fieldErrs, apperrors.FieldError{
				Field:         prefix + "type",
				Message:       "type must be one of TEXT, NUMBER, DATE, BOOLEAN",
				RejectedValue: field.Type,
			})
		}
	}

	if len(fieldErrs) > 0 {
		return apperrors.NewFieldValidation("goal type validation failed", fieldErrs...)
	}

	return nil
}

func definitionFromInput(goalTypeID uuid.UUID, field CustomFieldDefinitionInput) *models.CustomFieldDefinition {
	return &models.CustomFieldDefinition{
		GoalTypeID:  goalTypeID,
		Key:         field.Key,
		Label:       strings.TrimSpace(field.Label),
		Type:        field.Type,
		Required:    field.Required,
		Placeholder: field.Placeholder,
	}
}
