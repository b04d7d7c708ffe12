package repository

import (
	"github.com/medikart/medikart-backend/internal/app/model"
	"github.com/medikart/medikart-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProgressRepository interface {
	Create(progress *model.RegistrationProgress) error
	Update(progress *model.RegistrationProgress) error
	Delete(id uint) error
	FindByID(id uint) (*model.RegistrationProgress, error)
	// FindOpenByUserID returns the user's non-COMPLETED rows, newest first.
	// Rows that reached COMPLETED stay in the table as an audit trail but
	// never come back from this query.
	FindOpenByUserID(userID uint) ([]model.RegistrationProgress, error)
	FindAllInProgress() ([]model.RegistrationProgress, error)
	UpdateFlags(progress *model.RegistrationProgress) error
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Create(progress *model.RegistrationProgress) error {
	logger.Debug("Creating registration progress", map[string]interface{}{
		"user_id":      progress.UserID,
		"current_step": progress.CurrentStep,
	})

	if err := r.db.Create(progress).Error; err != nil {
		logger.Error("Failed to create registration progress", err, map[string]interface{}{
			"user_id": progress.UserID,
		})
		return err
	}
	return nil
}

func (r *progressRepository) Update(progress *model.RegistrationProgress) error {
	logger.Debug("Updating registration progress", map[string]interface{}{
		"progress_id":  progress.ID,
		"user_id":      progress.UserID,
		"current_step": progress.CurrentStep,
	})

	if err := r.db.Save(progress).Error; err != nil {
		logger.Error("Failed to update registration progress", err, map[string]interface{}{
			"progress_id": progress.ID,
		})
		return err
	}
	return nil
}

func (r *progressRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.RegistrationProgress{}, id).Error; err != nil {
		logger.Error("Failed to delete registration progress", err, map[string]interface{}{
			"progress_id": id,
		})
		return err
	}

	logger.Debug("Registration progress deleted", map[string]interface{}{
		"progress_id": id,
	})
	return nil
}

func (r *progressRepository) FindByID(id uint) (*model.RegistrationProgress, error) {
	var progress model.RegistrationProgress
	if err := r.db.First(&progress, id).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *progressRepository) FindOpenByUserID(userID uint) ([]model.RegistrationProgress, error) {
	logger.Debug("Finding open registration progress rows", map[string]interface{}{
		"user_id": userID,
	})

	var rows []model.RegistrationProgress
	if err := r.db.
		Where("user_id = ? AND status <> ?", userID, model.RegistrationCompleted).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		logger.Error("Failed to find open registration progress rows", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return rows, nil
}

func (r *progressRepository) FindAllInProgress() ([]model.RegistrationProgress, error) {
	var rows []model.RegistrationProgress
	if err := r.db.
		Where("status = ?", model.RegistrationInProgress).
		Find(&rows).Error; err != nil {
		logger.Error("Failed to list in-progress registrations", err)
		return nil, err
	}
	return rows, nil
}

// UpdateFlags persists only the derived flag columns and the step counter.
// Used by the read path's self-heal so it never overwrites the document.
func (r *progressRepository) UpdateFlags(progress *model.RegistrationProgress) error {
	updates := map[string]interface{}{
		"step1_completed": progress.Step1Completed,
		"step2_completed": progress.Step2Completed,
		"step3_completed": progress.Step3Completed,
		"step4_completed": progress.Step4Completed,
		"step5_completed": progress.Step5Completed,
		"step6_completed": progress.Step6Completed,
		"completed_steps": progress.CompletedSteps,
		"current_step":    progress.CurrentStep,
	}

	if err := r.db.Model(&model.RegistrationProgress{}).
		Where("id = ?", progress.ID).
		Updates(updates).Error; err != nil {
		logger.Error("Failed to persist healed flags", err, map[string]interface{}{
			"progress_id": progress.ID,
		})
		return err
	}

	logger.Debug("Healed flags persisted", map[string]interface{}{
		"progress_id":     progress.ID,
		"completed_steps": progress.CompletedSteps,
	})
	return nil
}
