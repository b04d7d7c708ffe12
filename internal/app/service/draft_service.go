package service

import (
	"errors"

	apperrors "github.com/medikart/medikart-backend/internal/errors"
	"github.com/medikart/medikart-backend/internal/app/model"
	"github.com/medikart/medikart-backend/internal/app/repository"
	"github.com/medikart/medikart-backend/pkg/logger"
	"gorm.io/gorm"
)

// DraftOutcome tags how EnsureDraftAfterBasicInfo obtained its draft, so
// callers and tests can tell a fresh insert from a conflict recovery.
type DraftOutcome string

const (
	DraftInserted      DraftOutcome = "INSERTED"
	DraftFoundExisting DraftOutcome = "FOUND_EXISTING"
)

var ErrDraftNotFound = errors.New("store draft not found")

// Wizard field names inside the step1/step2 sub-objects. Part of the
// persisted document contract.
const (
	fieldStoreName  = "store_name"
	fieldStoreEmail = "store_email"
	fieldStorePhone = "store_phone"
	fieldCategory   = "category"

	fieldFullAddress = "full_address"
	fieldCity        = "city"
	fieldState       = "state"
	fieldPostalCode  = "postal_code"
)

// DraftService owns the business-draft lifecycle: create the catalog row as
// soon as minimal step-1 data exists, then update it in place as later steps
// arrive. Duplicate submissions are absorbed by insert-or-fetch on the
// unique public id and by reusing the owner's most recent DRAFT row.
type DraftService interface {
	// EnsureDraftAfterBasicInfo inserts a DRAFT row from step-1 data. A
	// missing business name returns (nil, "", nil): not yet creatable, not
	// an error. A public id conflict fetches and returns the existing row.
	EnsureDraftAfterBasicInfo(userID uint, step1 map[string]interface{}, desiredPublicID string) (*model.Store, DraftOutcome, error)

	// UpsertDraftWithAddress updates the draft once full address data is
	// available: by id when the caller knows it, else the owner's most
	// recently updated DRAFT row, else a brand-new row.
	UpsertDraftWithAddress(userID uint, step1, step2 map[string]interface{}, existingDraftID uint, nextStep int) (*model.Store, error)
}

type draftService struct {
	storeRepo repository.StoreRepository
	allocator *PublicIDAllocator
}

func NewDraftService(storeRepo repository.StoreRepository, allocator *PublicIDAllocator) DraftService {
	return &draftService{storeRepo: storeRepo, allocator: allocator}
}

func (s *draftService) EnsureDraftAfterBasicInfo(userID uint, step1 map[string]interface{}, desiredPublicID string) (*model.Store, DraftOutcome, error) {
	name := model.StringAt(step1, fieldStoreName)
	if name == "" {
		return nil, "", nil
	}

	store := &model.Store{
		PublicID:              desiredPublicID,
		UserID:                userID,
		Name:                  name,
		Email:                 model.StringAt(step1, fieldStoreEmail),
		PhoneNumber:           model.StringAt(step1, fieldStorePhone),
		Category:              model.StringAt(step1, fieldCategory),
		ApprovalStatus:        model.ApprovalDraft,
		CurrentOnboardingStep: 1,
	}

	err := s.storeRepo.Create(store)
	if err == nil {
		logger.Info("Store draft created from basic info", map[string]interface{}{
			"store_id":  store.ID,
			"public_id": store.PublicID,
			"user_id":   userID,
		})
		return store, DraftInserted, nil
	}

	if apperrors.IsDuplicateKey(err) {
		// Retry or double-submit already inserted this public id; adopt
		// that row instead of failing
		existing, findErr := s.storeRepo.FindByPublicID(desiredPublicID)
		if findErr != nil {
			logger.Error("Draft conflict recovery failed", findErr, map[string]interface{}{
				"public_id": desiredPublicID,
				"user_id":   userID,
			})
			return nil, "", findErr
		}
		logger.Info("Store draft already existed, reusing", map[string]interface{}{
			"store_id":  existing.ID,
			"public_id": existing.PublicID,
			"user_id":   userID,
		})
		return existing, DraftFoundExisting, nil
	}

	return nil, "", err
}

func (s *draftService) UpsertDraftWithAddress(userID uint, step1, step2 map[string]interface{}, existingDraftID uint, nextStep int) (*model.Store, error) {
	name := model.StringAt(step1, fieldStoreName)
	if name == "" || !hasFullAddress(step2) {
		return nil, nil
	}

	store, err := s.resolveDraft(userID, existingDraftID)
	if err != nil {
		return nil, err
	}

	if store == nil {
		publicID, allocErr := s.allocator.Allocate()
		if allocErr != nil {
			return nil, allocErr
		}
		store = &model.Store{
			PublicID:       publicID,
			UserID:         userID,
			ApprovalStatus: model.ApprovalDraft,
		}
		s.applyFields(store, step1, step2, nextStep)

		if createErr := s.storeRepo.Create(store); createErr != nil {
			if apperrors.IsDuplicateKey(createErr) {
				existing, findErr := s.storeRepo.FindByPublicID(publicID)
				if findErr != nil {
					return nil, findErr
				}
				s.applyFields(existing, step1, step2, nextStep)
				if updateErr := s.storeRepo.Update(existing); updateErr != nil {
					return nil, updateErr
				}
				return existing, nil
			}
			return nil, createErr
		}
		logger.Info("Store draft created with address", map[string]interface{}{
			"store_id":  store.ID,
			"public_id": store.PublicID,
			"user_id":   userID,
		})
		return store, nil
	}

	s.applyFields(store, step1, step2, nextStep)
	if err := s.storeRepo.Update(store); err != nil {
		return nil, err
	}
	return store, nil
}

// resolveDraft picks the row to update: the explicitly referenced one when
// it still exists, else the owner's most recent DRAFT. Returns nil when
// neither is found.
func (s *draftService) resolveDraft(userID, existingDraftID uint) (*model.Store, error) {
	if existingDraftID != 0 {
		store, err := s.storeRepo.FindByID(existingDraftID)
		if err == nil {
			return store, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		logger.Warn("Referenced draft no longer exists, falling back to latest", map[string]interface{}{
			"store_id": existingDraftID,
			"user_id":  userID,
		})
	}

	store, err := s.storeRepo.FindLatestDraftByUserID(userID)
	if err == nil {
		return store, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (s *draftService) applyFields(store *model.Store, step1, step2 map[string]interface{}, nextStep int) {
	store.Name = model.StringAt(step1, fieldStoreName)
	if v := model.StringAt(step1, fieldStoreEmail); v != "" {
		store.Email = v
	}
	if v := model.StringAt(step1, fieldStorePhone); v != "" {
		store.PhoneNumber = v
	}
	if v := model.StringAt(step1, fieldCategory); v != "" {
		store.Category = v
	}
	store.AddressLine = model.StringAt(step2, fieldFullAddress)
	store.City = model.StringAt(step2, fieldCity)
	store.State = model.StringAt(step2, fieldState)
	store.PostalCode = model.StringAt(step2, fieldPostalCode)
	store.CurrentOnboardingStep = nextStep
}

func hasFullAddress(step2 map[string]interface{}) bool {
	return model.StringAt(step2, fieldFullAddress) != "" &&
		model.StringAt(step2, fieldCity) != "" &&
		model.StringAt(step2, fieldState) != "" &&
		model.StringAt(step2, fieldPostalCode) != ""
}
