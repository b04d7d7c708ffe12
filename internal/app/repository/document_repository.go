package repository

import (
	"errors"

	"github.com/medikart/medikart-backend/internal/app/model"
	"github.com/medikart/medikart-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepository interface {
	FindByStoreID(storeID uint) (*model.StoreDocument, error)
	// Upsert writes the row keyed on store_id. When the ON CONFLICT path
	// fails (conflict-target resolution is environment dependent) it falls
	// back to an explicit update-if-exists-else-insert sequence.
	Upsert(doc *model.StoreDocument) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) FindByStoreID(storeID uint) (*model.StoreDocument, error) {
	var doc model.StoreDocument
	if err := r.db.Where("store_id = ?", storeID).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) Upsert(doc *model.StoreDocument) error {
	logger.Debug("Upserting store documents", map[string]interface{}{
		"store_id": doc.StoreID,
	})

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}},
		UpdateAll: true,
	}).Create(doc).Error
	if err == nil {
		return nil
	}

	logger.Warn("Document upsert failed, falling back to update-or-insert", map[string]interface{}{
		"store_id": doc.StoreID,
		"error":    err.Error(),
	})

	var existing model.StoreDocument
	findErr := r.db.Where("store_id = ?", doc.StoreID).First(&existing).Error
	if findErr == nil {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
		if saveErr := r.db.Save(doc).Error; saveErr != nil {
			logger.Error("Failed to update store documents", saveErr, map[string]interface{}{
				"store_id": doc.StoreID,
			})
			return saveErr
		}
		return nil
	}
	if !errors.Is(findErr, gorm.ErrRecordNotFound) {
		logger.Error("Failed to look up store documents", findErr, map[string]interface{}{
			"store_id": doc.StoreID,
		})
		return findErr
	}

	if createErr := r.db.Create(doc).Error; createErr != nil {
		logger.Error("Failed to insert store documents", createErr, map[string]interface{}{
			"store_id": doc.StoreID,
		})
		return createErr
	}
	return nil
}
