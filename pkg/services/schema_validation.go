package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/axis-inc/goal-engine/pkg/apperrors"
	"github.com/axis-inc/goal-engine/pkg/models"
	"github.com/axis-inc/goal-engine/pkg/repositories"
)

// AnswerSubmission is a client-supplied answer: a definition reference and
// a value. Anything else the client sends about the definition is ignored;
// the definition is always re-resolved from the store.
type AnswerSubmission struct {
	FieldDefinitionID uuid.UUID
	Value             string
}

// SchemaValidator enforces consistency between custom field answers, their
// definitions, and the goal's type. It has no persistence of its own; goal
// and answer services invoke it inside their transactions.
type SchemaValidator interface {
	// ResolveGoalAnswers validates a goal's full answer set against the
	// type's schema: every referenced definition must exist and belong to
	// the type, required fields must have non-blank values, and no
	// definition may be answered twice. Returns the resolved answers with
	// definition metadata attached.
	ResolveGoalAnswers(ctx context.Context, goalType *models.GoalType, submissions []AnswerSubmission) ([]*models.CustomFieldAnswer, error)

	// ResolveAnswer validates a single standalone answer against the
	// goal's type: existence, type membership, and the required-field
	// value rule. Completeness of the goal's answer set is not checked
	// here.
	ResolveAnswer(ctx context.Context, goalType *models.GoalType, submission AnswerSubmission) (*models.CustomFieldAnswer, error)
}

type schemaValidator struct {
	defRepo repositories.CustomFieldDefinitionRepository
	logger  *zap.Logger
}

// NewSchemaValidator creates a new SchemaValidator.
func NewSchemaValidator(defRepo repositories.CustomFieldDefinitionRepository, logger *zap.Logger) SchemaValidator {
	return &schemaValidator{
		defRepo: defRepo,
		logger:  logger.Named("schema-validator"),
	}
}

var _ SchemaValidator = (*schemaValidator)(nil)

func (v *schemaValidator) ResolveGoalAnswers(ctx context.Context, goalType *models.GoalType, submissions []AnswerSubmission) ([]*models.CustomFieldAnswer, error) {
	defs, err := v.defRepo.ListByGoalType(ctx, goalType.ID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.CustomFieldDefinition, len(defs))
	for _, def := range defs {
		byID[def.ID] = def
	}

	var fieldErrs []apperrors.FieldError
	answered := make(map[uuid.UUID]bool, len(submissions))
	answers := make([]*models.CustomFieldAnswer, 0, len(submissions))

	for _, sub := range submissions {
		def, ok := byID[sub.FieldDefinitionID]
		if !ok {
			return nil, v.rejectForeignDefinition(ctx, goalType, sub.FieldDefinitionID)
		}

		if answered[def.ID] {
			return nil, apperrors.NewConflict("duplicate answer for custom field %q", def.Label)
		}
		answered[def.ID] = true

		if def.Required && isBlank(sub.Value) {
			fieldErrs = append(fieldErrs, apperrors.FieldError{
				Field:         def.Key,
				Message:       "value is required for field: " + def.Label,
				RejectedValue: sub.Value,
			})
			continue
		}

		answers = append(answers, resolveAnswer(def, sub.Value))
	}

	// Required definitions with no submitted answer at all.
	for _, def := range defs {
		if def.Required && !answered[def.ID] {
			fieldErrs = append(fieldErrs, apperrors.FieldError{
				Field:   def.Key,
				Message: "value is required for field: " + def.Label,
			})
		}
	}

	if len(fieldErrs) > 0 {
		v.logger.Debug("Goal answers rejected by schema",
			zap.String("goal_type_id", goalType.ID.String()),
			zap.Int("violations", len(fieldErrs)))
		return nil, apperrors.NewFieldValidation(
			"goal does not satisfy the custom field schema of type "+goalType.Title, fieldErrs...)
	}

	return answers, nil
}

func (v *schemaValidator) ResolveAnswer(ctx context.Context, goalType *models.GoalType, submission AnswerSubmission) (*models.CustomFieldAnswer, error) {
	def, err := v.defRepo.GetByID(ctx, submission.FieldDefinitionID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, apperrors.NewNotFound("CustomFieldDefinition", submission.FieldDefinitionID)
	}

	if def.GoalTypeID != goalType.ID {
		return nil, apperrors.NewValidation(
			"custom field %q does not belong to goal type %q", def.Label, goalType.Title)
	}

	if def.Required && isBlank(submission.Value) {
		return nil, apperrors.NewFieldValidation(
			"value is required for field: "+def.Label,
			apperrors.FieldError{
				Field:         def.Key,
				Message:       "value is required for field: " + def.Label,
				RejectedValue: submission.Value,
			})
	}

	return resolveAnswer(def, submission.Value), nil
}

// rejectForeignDefinition classifies a definition id that is not part of
// the goal type's schema: absent entirely (NotFound) or owned by a
// different type (Validation, naming both sides for diagnostics).
func (v *schemaValidator) rejectForeignDefinition(ctx context.Context, goalType *models.GoalType, defID uuid.UUID) error {
	def, err := v.defRepo.GetByID(ctx, defID)
	if err != nil {
		return err
	}
	if def == nil {
		return apperrors.NewNotFound("CustomFieldDefinition", defID)
	}
	return apperrors.NewValidation(
		"custom field %q does not belong to goal type %q", def.Label, goalType.Title)
}

// resolveAnswer builds an answer carrying the server-resolved definition
// reference and metadata, never a client-supplied copy.
func resolveAnswer(def *models.CustomFieldDefinition, value string) *models.CustomFieldAnswer {
	return &models.CustomFieldAnswer{
		FieldDefinitionID: def.ID,
		Value:             value,
		Key:               def.Key,
		Label:             def.Label,
		Type:              def.Type,
	}
}

// isBlank reports whether a submitted value is empty or whitespace only.
func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
