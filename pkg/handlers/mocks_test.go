package handlers

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/axis-inc/goal-engine/pkg/auth"
	"github.com/axis-inc/goal-engine/pkg/models"
	"github.com/axis-inc/goal-engine/pkg/repositories"
	"github.com/axis-inc/goal-engine/pkg/services"
)

// withUser attaches claims for userID to the request context, as the auth
// middleware would after validating a token.
func withUser(req *http.Request, userID uuid.UUID) *http.Request {
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
	}
	ctx := context.WithValue(req.Context(), auth.ClaimsKey, claims)
	return req.WithContext(ctx)
}

// mockGoalTypeService is a configurable mock for GoalTypeService.
type mockGoalTypeService struct {
	goalType *models.GoalType
	page     models.Page[*models.GoalType]
	err      error

	capturedInput services.GoalTypeInput
	capturedID    uuid.UUID
}

func (m *mockGoalTypeService) Create(ctx context.Context, userID uuid.UUID, input services.GoalTypeInput) (*models.GoalType, error) {
	m.capturedInput = input
	if m.err != nil {
		return nil, m.err
	}
	return m.goalType, nil
}

func (m *mockGoalTypeService) Update(ctx context.Context, userID, id uuid.UUID, input services.GoalTypeInput) (*models.GoalType, error) {
	m.capturedID = id
	m.capturedInput = input
	if m.err != nil {
		return nil, m.err
	}
	return m.goalType, nil
}

func (m *mockGoalTypeService) Get(ctx context.Context, userID, id uuid.UUID) (*models.GoalType, error) {
	m.capturedID = id
	if m.err != nil {
		return nil, m.err
	}
	return m.goalType, nil
}

func (m *mockGoalTypeService) List(ctx context.Context, userID uuid.UUID, page models.PageRequest) (models.Page[*models.GoalType], error) {
	if m.err != nil {
		return models.Page[*models.GoalType]{}, m.err
	}
	return m.page, nil
}

func (m *mockGoalTypeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.capturedID = id
	return m.err
}

var _ services.GoalTypeService = (*mockGoalTypeService)(nil)

// mockGoalService is a configurable mock for GoalService.
type mockGoalService struct {
	goal *models.Goal
	page models.Page[*models.Goal]
	err  error

	capturedInput  services.GoalInput
	capturedID     uuid.UUID
	capturedFilter repositories.GoalFilter
}

func (m *mockGoalService) Create(ctx context.Context, userID uuid.UUID, input services.GoalInput) (*models.Goal, error) {
	m.capturedInput = input
	if m.err != nil {
		return nil, m.err
	}
	return m.goal, nil
}

func (m *mockGoalService) Update(ctx context.Context, userID, id uuid.UUID, input services.GoalInput) (*models.Goal, error) {
	m.capturedID = id
	m.capturedInput = input
	if m.err != nil {
		return nil, m.err
	}
	return m.goal, nil
}

func (m *mockGoalService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Goal, error) {
	m.capturedID = id
	if m.err != nil {
		return nil, m.err
	}
	return m.goal, nil
}

func (m *mockGoalService) List(ctx context.Context, userID uuid.UUID, filter repositories.GoalFilter, page models.PageRequest) (models.Page[*models.Goal], error) {
	m.capturedFilter = filter
	if m.err != nil {
		return models.Page[*models.Goal]{}, m.err
	}
	return m.page, nil
}

func (m *mockGoalService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.capturedID = id
	return m.err
}

var _ services.GoalService = (*mockGoalService)(nil)

// mockCustomFieldDefinitionService is a configurable mock for
// CustomFieldDefinitionService.
type mockCustomFieldDefinitionService struct {
	def  *models.CustomFieldDefinition
	defs []*models.CustomFieldDefinition
	err  error

	capturedID    uuid.UUID
	capturedInput services.CustomFieldDefinitionInput
}

func (m *mockCustomFieldDefinitionService) Create(ctx context.Context, userID, goalTypeID uuid.UUID, input services.CustomFieldDefinitionInput) (*models.CustomFieldDefinition, error) {
	m.capturedID = goalTypeID
	m.capturedInput = input
	if m.err != nil {
		return nil, m.err
	}
	return m.def, nil
}

func (m *mockCustomFieldDefinitionService) Update(ctx context.Context, userID, id uuid.UUID, input services.CustomFieldDefinitionInput) (*models.CustomFieldDefinition, error) {
	m.capturedID = id
	m.capturedInput = input
	if m.err != nil {
		return nil, m.err
	}
	return m.def, nil
}

func (m *mockCustomFieldDefinitionService) Get(ctx context.Context, userID, id uuid.UUID) (*models.CustomFieldDefinition, error) {
	m.capturedID = id
	if m.err != nil {
		return nil, m.err
	}
	return m.def, nil
}

func (m *mockCustomFieldDefinitionService) ListByGoalType(ctx context.Context, userID, goalTypeID uuid.UUID) ([]*models.CustomFieldDefinition, error) {
	m.capturedID = goalTypeID
	if m.err != nil {
		return nil, m.err
	}
	return m.defs, nil
}

func (m *mockCustomFieldDefinitionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.capturedID = id
	return m.err
}

var _ services.CustomFieldDefinitionService = (*mockCustomFieldDefinitionService)(nil)

// mockCustomFieldAnswerService is a configurable mock for
// CustomFieldAnswerService.
type mockCustomFieldAnswerService struct {
	answer  *models.CustomFieldAnswer
	answers []*models.CustomFieldAnswer
	err     error

	capturedID         uuid.UUID
	capturedSubmission services.AnswerSubmission
	capturedValue      string
}

func (m *mockCustomFieldAnswerService) Create(ctx context.Context, userID, goalID uuid.UUID, submission services.AnswerSubmission) (*models.CustomFieldAnswer, error) {
	m.capturedID = goalID
	m.capturedSubmission = submission
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockCustomFieldAnswerService) Update(ctx context.Context, userID, id uuid.UUID, value string) (*models.CustomFieldAnswer, error) {
	m.capturedID = id
	m.capturedValue = value
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockCustomFieldAnswerService) Get(ctx context.Context, userID, id uuid.UUID) (*models.CustomFieldAnswer, error) {
	m.capturedID = id
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockCustomFieldAnswerService) ListByGoal(ctx context.Context, userID, goalID uuid.UUID) ([]*models.CustomFieldAnswer, error) {
	m.capturedID = goalID
	if m.err != nil {
		return nil, m.err
	}
	return m.answers, nil
}

func (m *mockCustomFieldAnswerService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.capturedID = id
	return m.err
}

var _ services.CustomFieldAnswerService = (*mockCustomFieldAnswerService)(nil)
