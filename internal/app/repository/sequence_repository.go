package repository

import (
	"errors"
	"fmt"

	apperrors "github.com/medikart/medikart-backend/internal/errors"
	"github.com/medikart/medikart-backend/internal/app/model"
	"github.com/medikart/medikart-backend/pkg/logger"
	"gorm.io/gorm"
)

// sequenceRetries bounds the optimistic-increment loop. Contention on the
// public id sequence is rare (one bump per new draft), so a handful of
// retries is plenty.
const sequenceRetries = 5

type SequenceRepository interface {
	// NextValue atomically increments and returns the named counter.
	NextValue(name string) (int64, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) NextValue(name string) (int64, error) {
	for attempt := 0; attempt < sequenceRetries; attempt++ {
		var seq model.Sequence
		err := r.db.Where("name = ?", name).First(&seq).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = model.Sequence{Name: name, Value: 1}
			if createErr := r.db.Create(&seq).Error; createErr != nil {
				if apperrors.IsDuplicateKey(createErr) {
					// Another writer created the row first, retry the
					// increment path
					continue
				}
				logger.Error("Failed to create sequence row", createErr, map[string]interface{}{
					"sequence": name,
				})
				return 0, createErr
			}
			return seq.Value, nil
		}
		if err != nil {
			logger.Error("Failed to read sequence row", err, map[string]interface{}{
				"sequence": name,
			})
			return 0, err
		}

		// Optimistic increment: only wins if nobody bumped value since the
		// read. Portable across postgres and the sqlite test database.
		next := seq.Value + 1
		res := r.db.Model(&model.Sequence{}).
			Where("name = ? AND value = ?", name, seq.Value).
			Update("value", next)
		if res.Error != nil {
			logger.Error("Failed to increment sequence", res.Error, map[string]interface{}{
				"sequence": name,
			})
			return 0, res.Error
		}
		if res.RowsAffected == 1 {
			return next, nil
		}
		// Lost the race, retry
	}

	err := fmt.Errorf("sequence %s: too much contention", name)
	logger.Error("Sequence increment exhausted retries", err, map[string]interface{}{
		"sequence": name,
	})
	return 0, err
}
