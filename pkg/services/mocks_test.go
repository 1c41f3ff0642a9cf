package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/axis-inc/goal-engine/pkg/models"
	"github.com/axis-inc/goal-engine/pkg/repositories"
)

// mockGoalTypeRepository is a configurable mock for goal type data access.
type mockGoalTypeRepository struct {
	goalType  *models.GoalType
	goalTypes []*models.GoalType
	above     []*models.GoalType
	count     int64
	maxLevel  int

	createErr   error
	updateErr   error
	deleteErr   error
	getErr      error
	listErr     error
	countErr    error
	maxErr      error
	lockErr     error
	aboveErr    error
	setLevelErr error

	// Capture inputs for verification
	createdType *models.GoalType
	deletedID   uuid.UUID
	lockCalls   int
	setLevels   []levelAssignment
}

type levelAssignment struct {
	ID    uuid.UUID
	Level int
}

func (m *mockGoalTypeRepository) Create(ctx context.Context, goalType *models.GoalType) error {
	if m.createErr != nil {
		return m.createErr
	}
	goalType.ID = uuid.New()
	m.createdType = goalType
	return nil
}

func (m *mockGoalTypeRepository) UpdateTitle(ctx context.Context, goalType *models.GoalType) error {
	return m.updateErr
}

func (m *mockGoalTypeRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedID = id
	return nil
}

func (m *mockGoalTypeRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.GoalType, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.goalType != nil && m.goalType.ID == id && m.goalType.UserID == userID {
		return m.goalType, nil
	}
	return nil, nil
}

func (m *mockGoalTypeRepository) List(ctx context.Context, userID uuid.UUID, page models.PageRequest) ([]*models.GoalType, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.goalTypes, nil
}

func (m *mockGoalTypeRepository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.count, nil
}

func (m *mockGoalTypeRepository) MaxLevel(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.maxErr != nil {
		return 0, m.maxErr
	}
	return m.maxLevel, nil
}

func (m *mockGoalTypeRepository) LockOwnerLevels(ctx context.Context, userID uuid.UUID) error {
	m.lockCalls++
	return m.lockErr
}

func (m *mockGoalTypeRepository) ListAboveLevel(ctx context.Context, userID uuid.UUID, level int) ([]*models.GoalType, error) {
	if m.aboveErr != nil {
		return nil, m.aboveErr
	}
	return m.above, nil
}

func (m *mockGoalTypeRepository) SetLevel(ctx context.Context, id uuid.UUID, level int) error {
	if m.setLevelErr != nil {
		return m.setLevelErr
	}
	m.setLevels = append(m.setLevels, levelAssignment{ID: id, Level: level})
	return nil
}

var _ repositories.GoalTypeRepository = (*mockGoalTypeRepository)(nil)

// mockCustomFieldDefinitionRepository is a configurable mock for
// definition data access. defsByID backs bare-id lookups, defs backs
// per-type listings.
type mockCustomFieldDefinitionRepository struct {
	defs     []*models.CustomFieldDefinition
	defsByID map[uuid.UUID]*models.CustomFieldDefinition
	keyTaken bool

	createErr error
	updateErr error
	deleteErr error
	getErr    error
	listErr   error
	keyErr    error
	pruneErr  error

	// Capture inputs for verification
	created    []*models.CustomFieldDefinition
	updated    []*models.CustomFieldDefinition
	deletedIDs []uuid.UUID
	keptIDs    []uuid.UUID
}

func (m *mockCustomFieldDefinitionRepository) Create(ctx context.Context, def *models.CustomFieldDefinition) error {
	if m.createErr != nil {
		return m.createErr
	}
	def.ID = uuid.New()
	m.created = append(m.created, def)
	return nil
}

func (m *mockCustomFieldDefinitionRepository) Update(ctx context.Context, def *models.CustomFieldDefinition) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = append(m.updated, def)
	return nil
}

func (m *mockCustomFieldDefinitionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func (m *mockCustomFieldDefinitionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CustomFieldDefinition, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.defsByID[id], nil
}

func (m *mockCustomFieldDefinitionRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.CustomFieldDefinition, error) {
	return m.GetByID(ctx, id)
}

func (m *mockCustomFieldDefinitionRepository) ListByGoalType(ctx context.Context, goalTypeID uuid.UUID) ([]*models.CustomFieldDefinition, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.defs, nil
}

func (m *mockCustomFieldDefinitionRepository) KeyExists(ctx context.Context, goalTypeID uuid.UUID, key string, excludeID uuid.UUID) (bool, error) {
	if m.keyErr != nil {
		return false, m.keyErr
	}
	return m.keyTaken, nil
}

func (m *mockCustomFieldDefinitionRepository) DeleteByGoalTypeExcluding(ctx context.Context, goalTypeID uuid.UUID, keep []uuid.UUID) error {
	if m.pruneErr != nil {
		return m.pruneErr
	}
	m.keptIDs = keep
	return nil
}

var _ repositories.CustomFieldDefinitionRepository = (*mockCustomFieldDefinitionRepository)(nil)

// mockGoalRepository is a configurable mock for goal data access, backed
// by an id-keyed map so parent and ownership lookups resolve naturally.
type mockGoalRepository struct {
	goals map[uuid.UUID]*models.Goal
	list  []*models.Goal
	count int64

	createErr error
	updateErr error
	deleteErr error
	getErr    error
	listErr   error
	countErr  error
	ownerErr  error

	// Capture inputs for verification
	createdGoal *models.Goal
	updatedGoal *models.Goal
	deletedID   uuid.UUID
}

func (m *mockGoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	if m.createErr != nil {
		return m.createErr
	}
	goal.ID = uuid.New()
	m.createdGoal = goal
	return nil
}

func (m *mockGoalRepository) Update(ctx context.Context, goal *models.Goal) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedGoal = goal
	return nil
}

func (m *mockGoalRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedID = id
	return nil
}

func (m *mockGoalRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Goal, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	goal, ok := m.goals[id]
	if !ok || goal.UserID != userID {
		return nil, nil
	}
	return goal, nil
}

func (m *mockGoalRepository) List(ctx context.Context, userID uuid.UUID, filter repositories.GoalFilter, page models.PageRequest) ([]*models.Goal, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.list, nil
}

func (m *mockGoalRepository) Count(ctx context.Context, userID uuid.UUID, filter repositories.GoalFilter) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.count, nil
}

func (m *mockGoalRepository) OwnerOf(ctx context.Context, goalID uuid.UUID) (uuid.UUID, error) {
	if m.ownerErr != nil {
		return uuid.Nil, m.ownerErr
	}
	goal, ok := m.goals[goalID]
	if !ok {
		return uuid.Nil, nil
	}
	return goal.UserID, nil
}

var _ repositories.GoalRepository = (*mockGoalRepository)(nil)

// mockCustomFieldAnswerRepository is a configurable mock for answer data
// access.
type mockCustomFieldAnswerRepository struct {
	answer  *models.CustomFieldAnswer
	answers []*models.CustomFieldAnswer
	exists  bool

	createErr error
	updateErr error
	deleteErr error
	getErr    error
	listErr   error
	existsErr error

	// Capture inputs for verification
	created       []*models.CustomFieldAnswer
	updatedID     uuid.UUID
	updatedValue  string
	deletedID     uuid.UUID
	deletedGoalID uuid.UUID
}

func (m *mockCustomFieldAnswerRepository) Create(ctx context.Context, answer *models.CustomFieldAnswer) error {
	if m.createErr != nil {
		return m.createErr
	}
	answer.ID = uuid.New()
	m.created = append(m.created, answer)
	return nil
}

func (m *mockCustomFieldAnswerRepository) UpdateValue(ctx context.Context, id uuid.UUID, value string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedID = id
	m.updatedValue = value
	return nil
}

func (m *mockCustomFieldAnswerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedID = id
	return nil
}

func (m *mockCustomFieldAnswerRepository) DeleteByGoal(ctx context.Context, goalID uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedGoalID = goalID
	return nil
}

func (m *mockCustomFieldAnswerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CustomFieldAnswer, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.answer != nil && m.answer.ID == id {
		return m.answer, nil
	}
	return nil, nil
}

func (m *mockCustomFieldAnswerRepository) ListByGoal(ctx context.Context, goalID uuid.UUID) ([]*models.CustomFieldAnswer, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.answers, nil
}

func (m *mockCustomFieldAnswerRepository) ExistsForField(ctx context.Context, goalID, fieldDefinitionID uuid.UUID) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.exists, nil
}

var _ repositories.CustomFieldAnswerRepository = (*mockCustomFieldAnswerRepository)(nil)
