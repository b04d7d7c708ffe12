package repository

import (
	"regexp"
	"strconv"

	"github.com/medikart/medikart-backend/internal/app/model"
	"github.com/medikart/medikart-backend/pkg/logger"
	"gorm.io/gorm"
)

type StoreRepository interface {
	Create(store *model.Store) error
	Update(store *model.Store) error
	FindByID(id uint) (*model.Store, error)
	FindByPublicID(publicID string) (*model.Store, error)
	// FindLatestDraftByUserID returns the owner's most recently updated
	// DRAFT row, the reuse target for step-2+ upserts.
	FindLatestDraftByUserID(userID uint) (*model.Store, error)
	UpdateOnboardingStep(storeID uint, step int) error
	// MaxPublicIDSuffix scans all catalog public ids and returns the
	// largest numeric suffix matching the prefix, 0 when none exist.
	MaxPublicIDSuffix(prefix string) (int64, error)
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(store *model.Store) error {
	logger.Debug("Creating store draft", map[string]interface{}{
		"name":      store.Name,
		"public_id": store.PublicID,
		"user_id":   store.UserID,
	})

	if err := r.db.Create(store).Error; err != nil {
		logger.Error("Failed to create store draft", err, map[string]interface{}{
			"name":      store.Name,
			"public_id": store.PublicID,
			"user_id":   store.UserID,
		})
		return err
	}

	logger.Debug("Store draft created", map[string]interface{}{
		"store_id":  store.ID,
		"public_id": store.PublicID,
	})
	return nil
}

func (r *storeRepository) Update(store *model.Store) error {
	logger.Debug("Updating store", map[string]interface{}{
		"store_id": store.ID,
		"name":     store.Name,
	})

	if err := r.db.Save(store).Error; err != nil {
		logger.Error("Failed to update store", err, map[string]interface{}{
			"store_id": store.ID,
		})
		return err
	}
	return nil
}

func (r *storeRepository) FindByID(id uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.First(&store, id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindByPublicID(publicID string) (*model.Store, error) {
	var store model.Store
	if err := r.db.Where("public_id = ?", publicID).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindLatestDraftByUserID(userID uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.
		Where("user_id = ? AND approval_status = ?", userID, model.ApprovalDraft).
		Order("updated_at DESC").
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) UpdateOnboardingStep(storeID uint, step int) error {
	if err := r.db.Model(&model.Store{}).
		Where("id = ?", storeID).
		Update("current_onboarding_step", step).Error; err != nil {
		logger.Error("Failed to update onboarding step", err, map[string]interface{}{
			"store_id": storeID,
			"step":     step,
		})
		return err
	}
	return nil
}

func (r *storeRepository) MaxPublicIDSuffix(prefix string) (int64, error) {
	var publicIDs []string
	if err := r.db.Model(&model.Store{}).
		Unscoped(). // soft-deleted rows still hold their public id
		Pluck("public_id", &publicIDs).Error; err != nil {
		logger.Error("Failed to scan public ids", err)
		return 0, err
	}

	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + `(\d+)$`)
	var max int64
	for _, id := range publicIDs {
		m := pattern.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}
