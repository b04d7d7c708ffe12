package service

import (
	"context"
	"errors"

	"github.com/medikart/medikart-backend/internal/app/model"
	"github.com/medikart/medikart-backend/internal/app/repository"
	"github.com/medikart/medikart-backend/internal/storage"
	"github.com/medikart/medikart-backend/pkg/logger"
	"gorm.io/gorm"
)

// Wizard field names inside the step3 sub-object.
const (
	fieldMenuImages = "menu_image_urls"
	fieldMenuSheet  = "menu_sheet_url"
)

// MediaSyncService keeps the MENU_REFERENCE media rows aligned with the
// step3 sub-object. Two policies, picked by re-reading the draft's state
// immediately before acting:
//
//   - onboarding: destructive replace. Rows and their blobs are deleted,
//     then fresh rows inserted. A blob whose key reappears in the incoming
//     list is spared (a re-submission must not destroy its own media).
//   - live: additive retire. Active rows are soft-retired and new ones
//     inserted; blobs are never deleted because customer-facing pages may
//     still reference them.
type MediaSyncService interface {
	Sync(ctx context.Context, storeID uint, step3 map[string]interface{}) error
}

type mediaSyncService struct {
	mediaRepo repository.MediaRepository
	storeRepo repository.StoreRepository
	blobStore storage.BlobStore
}

func NewMediaSyncService(mediaRepo repository.MediaRepository, storeRepo repository.StoreRepository, blobStore storage.BlobStore) MediaSyncService {
	return &mediaSyncService{mediaRepo: mediaRepo, storeRepo: storeRepo, blobStore: blobStore}
}

func (s *mediaSyncService) Sync(ctx context.Context, storeID uint, step3 map[string]interface{}) error {
	if step3 == nil {
		return nil
	}

	imageKeys := stringSliceAt(step3, fieldMenuImages)
	sheetKey := model.StringAt(step3, fieldMenuSheet)

	store, err := s.storeRepo.FindByID(storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Menu media sync skipped, store gone", map[string]interface{}{
				"store_id": storeID,
			})
			return nil
		}
		return err
	}

	if store.IsLive() {
		err = s.retireAndReplace(storeID, imageKeys, sheetKey)
	} else {
		err = s.destructiveReplace(ctx, storeID, imageKeys, sheetKey)
	}
	if err != nil {
		return err
	}

	logger.Debug("Menu media synced", map[string]interface{}{
		"store_id": storeID,
		"images":   len(imageKeys),
		"sheet":    sheetKey != "",
		"live":     store.IsLive(),
	})
	return nil
}

func (s *mediaSyncService) destructiveReplace(ctx context.Context, storeID uint, imageKeys []string, sheetKey string) error {
	existing, err := s.mediaRepo.FindByScope(storeID, model.ScopeMenuReference)
	if err != nil {
		return err
	}

	incoming := make(map[string]bool, len(imageKeys)+1)
	for _, k := range imageKeys {
		incoming[k] = true
	}
	if sheetKey != "" {
		incoming[sheetKey] = true
	}

	for _, row := range existing {
		if incoming[row.ObjectKey] {
			continue
		}
		if delErr := s.blobStore.Delete(ctx, row.ObjectKey); delErr != nil {
			logger.Warn("Failed to delete replaced menu blob", map[string]interface{}{
				"store_id":   storeID,
				"object_key": row.ObjectKey,
				"error":      delErr.Error(),
			})
		}
	}

	if err := s.mediaRepo.DeleteByScope(storeID, model.ScopeMenuReference); err != nil {
		return err
	}
	return s.insertRows(storeID, imageKeys, sheetKey)
}

func (s *mediaSyncService) retireAndReplace(storeID uint, imageKeys []string, sheetKey string) error {
	if err := s.mediaRepo.DeactivateByScope(storeID, model.ScopeMenuReference); err != nil {
		return err
	}
	return s.insertRows(storeID, imageKeys, sheetKey)
}

func (s *mediaSyncService) insertRows(storeID uint, imageKeys []string, sheetKey string) error {
	for _, key := range imageKeys {
		row := &model.StoreMedia{
			StoreID:   storeID,
			Scope:     model.ScopeMenuReference,
			Source:    model.SourceImage,
			ObjectKey: key,
			IsActive:  true,
		}
		if err := s.mediaRepo.Create(row); err != nil {
			return err
		}
	}
	if sheetKey != "" {
		row := &model.StoreMedia{
			StoreID:   storeID,
			Scope:     model.ScopeMenuReference,
			Source:    model.SourceSheet,
			ObjectKey: sheetKey,
			IsActive:  true,
		}
		if err := s.mediaRepo.Create(row); err != nil {
			return err
		}
	}
	return nil
}

// stringSliceAt reads a JSON string array at key, skipping non-string and
// empty entries.
func stringSliceAt(m map[string]interface{}, key string) []string {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, isStr := v.(string); isStr && s != "" {
			out = append(out, s)
		}
	}
	return out
}
