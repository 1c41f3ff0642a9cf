package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/axis-inc/goal-engine/pkg/repositories"
)

// LevelRenumberer maintains the dense, gapless 1..N level sequence of a
// user's goal types. Callers must hold the owner's level locks (see
// GoalTypeRepository.LockOwnerLevels) and run inside a transaction.
type LevelRenumberer interface {
	// NextLevel returns the level the next goal type should take: one
	// past the user's current maximum, 1 for the first type.
	NextLevel(ctx context.Context, userID uuid.UUID) (int, error)

	// CloseGap shifts every goal type above the vacated level down by
	// one, ascending, so the sequence stays dense after a deletion.
	// No-op when nothing sits above the vacated level.
	CloseGap(ctx context.Context, userID uuid.UUID, vacatedLevel int) error
}

type levelRenumberer struct {
	typeRepo repositories.GoalTypeRepository
	logger   *zap.Logger
}

// NewLevelRenumberer creates a new LevelRenumberer.
func NewLevelRenumberer(typeRepo repositories.GoalTypeRepository, logger *zap.Logger) LevelRenumberer {
	return &levelRenumberer{
		typeRepo: typeRepo,
		logger:   logger.Named("level-renumberer"),
	}
}

var _ LevelRenumberer = (*levelRenumberer)(nil)

func (n *levelRenumberer) NextLevel(ctx context.Context, userID uuid.UUID) (int, error) {
	maxLevel, err := n.typeRepo.MaxLevel(ctx, userID)
	if err != nil {
		return 0, err
	}
	return maxLevel + 1, nil
}

func (n *levelRenumberer) CloseGap(ctx context.Context, userID uuid.UUID, vacatedLevel int) error {
	followers, err := n.typeRepo.ListAboveLevel(ctx, userID, vacatedLevel)
	if err != nil {
		return err
	}
	if len(followers) == 0 {
		return nil
	}

	// Ascending order: each decrement moves into a level the previous
	// iteration (or the deletion itself) just vacated, so the unique
	// constraint on (user_id, level_number) is never violated mid-sweep.
	for _, goalType := range followers {
		if err := n.typeRepo.SetLevel(ctx, goalType.ID, goalType.LevelNumber-1); err != nil {
			return err
		}
	}

	n.logger.Debug("Closed level gap",
		zap.String("user_id", userID.String()),
		zap.Int("vacated_level", vacatedLevel),
		zap.Int("shifted", len(followers)))

	return nil
}
