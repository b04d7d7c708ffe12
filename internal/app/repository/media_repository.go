package repository

import (
	"github.com/medikart/medikart-backend/internal/app/model"
	"github.com/medikart/medikart-backend/pkg/logger"
	"gorm.io/gorm"
)

type MediaRepository interface {
	FindByScope(storeID uint, scope model.MediaScope) ([]model.StoreMedia, error)
	FindActiveByScope(storeID uint, scope model.MediaScope) ([]model.StoreMedia, error)
	// DeleteByScope hard-deletes all rows in the scope (onboarding-mode
	// destructive replace).
	DeleteByScope(storeID uint, scope model.MediaScope) error
	// DeactivateByScope soft-retires active rows in the scope (live-mode
	// additive replace; blobs stay).
	DeactivateByScope(storeID uint, scope model.MediaScope) error
	Create(media *model.StoreMedia) error
}

type mediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) FindByScope(storeID uint, scope model.MediaScope) ([]model.StoreMedia, error) {
	var media []model.StoreMedia
	if err := r.db.
		Where("store_id = ? AND scope = ?", storeID, scope).
		Find(&media).Error; err != nil {
		logger.Error("Failed to find store media", err, map[string]interface{}{
			"store_id": storeID,
			"scope":    scope,
		})
		return nil, err
	}
	return media, nil
}

func (r *mediaRepository) FindActiveByScope(storeID uint, scope model.MediaScope) ([]model.StoreMedia, error) {
	var media []model.StoreMedia
	if err := r.db.
		Where("store_id = ? AND scope = ? AND is_active = ?", storeID, scope, true).
		Find(&media).Error; err != nil {
		logger.Error("Failed to find active store media", err, map[string]interface{}{
			"store_id": storeID,
			"scope":    scope,
		})
		return nil, err
	}
	return media, nil
}

func (r *mediaRepository) DeleteByScope(storeID uint, scope model.MediaScope) error {
	if err := r.db.Unscoped().
		Where("store_id = ? AND scope = ?", storeID, scope).
		Delete(&model.StoreMedia{}).Error; err != nil {
		logger.Error("Failed to delete store media", err, map[string]interface{}{
			"store_id": storeID,
			"scope":    scope,
		})
		return err
	}
	return nil
}

func (r *mediaRepository) DeactivateByScope(storeID uint, scope model.MediaScope) error {
	if err := r.db.Model(&model.StoreMedia{}).
		Where("store_id = ? AND scope = ? AND is_active = ?", storeID, scope, true).
		Update("is_active", false).Error; err != nil {
		logger.Error("Failed to deactivate store media", err, map[string]interface{}{
			"store_id": storeID,
			"scope":    scope,
		})
		return err
	}
	return nil
}

func (r *mediaRepository) Create(media *model.StoreMedia) error {
	if err := r.db.Create(media).Error; err != nil {
		logger.Error("Failed to create store media", err, map[string]interface{}{
			"store_id":   media.StoreID,
			"scope":      media.Scope,
			"source":     media.Source,
			"object_key": media.ObjectKey,
		})
		return err
	}
	return nil
}
