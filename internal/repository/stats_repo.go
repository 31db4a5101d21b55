package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heretounderstand/ndole/internal/model"
)

type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// FindLatest returns the most recent daily snapshot, or nil when the user
// has no history yet.
func (r *StatsRepository) FindLatest(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*model.StudyStats, error) {
	var snap model.StudyStats
	err := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("day DESC").
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *StatsRepository) Save(ctx context.Context, tx *gorm.DB, snap *model.StudyStats) error {
	return tx.WithContext(ctx).Save(snap).Error
}

// FindAll returns all daily snapshots for a user in day order.
func (r *StatsRepository) FindAll(ctx context.Context, userID uuid.UUID) ([]model.StudyStats, error) {
	return findAll(ctx, r.db, userID)
}

// FindAllTx is FindAll within an open transaction, so badge derivation sees
// the snapshot written by the same transaction.
func (r *StatsRepository) FindAllTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]model.StudyStats, error) {
	return findAll(ctx, tx, userID)
}

func findAll(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]model.StudyStats, error) {
	var snaps []model.StudyStats
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("day ASC").
		Find(&snaps).Error
	return snaps, err
}
