package repository

import (
	"github.com/medikart/medikart-backend/internal/app/model"
	"github.com/medikart/medikart-backend/pkg/logger"
	"gorm.io/gorm"
)

type PayoutRepository interface {
	FindByStoreID(storeID uint) ([]model.StorePayout, error)
	// DeleteByStoreID removes every payout row for the store. Only one
	// payout method may be active, so a change replaces the whole set.
	DeleteByStoreID(storeID uint) error
	Create(payout *model.StorePayout) error
}

type payoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) FindByStoreID(storeID uint) ([]model.StorePayout, error) {
	var payouts []model.StorePayout
	if err := r.db.Where("store_id = ?", storeID).Find(&payouts).Error; err != nil {
		logger.Error("Failed to find payout rows", err, map[string]interface{}{
			"store_id": storeID,
		})
		return nil, err
	}
	return payouts, nil
}

func (r *payoutRepository) DeleteByStoreID(storeID uint) error {
	if err := r.db.Unscoped().
		Where("store_id = ?", storeID).
		Delete(&model.StorePayout{}).Error; err != nil {
		logger.Error("Failed to delete payout rows", err, map[string]interface{}{
			"store_id": storeID,
		})
		return err
	}

	logger.Debug("Payout rows deleted", map[string]interface{}{
		"store_id": storeID,
	})
	return nil
}

func (r *payoutRepository) Create(payout *model.StorePayout) error {
	logger.Debug("Creating payout row", map[string]interface{}{
		"store_id": payout.StoreID,
		"method":   payout.Method,
	})

	if err := r.db.Create(payout).Error; err != nil {
		logger.Error("Failed to create payout row", err, map[string]interface{}{
			"store_id": payout.StoreID,
			"method":   payout.Method,
		})
		return err
	}
	return nil
}
