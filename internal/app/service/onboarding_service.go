package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/medikart/medikart-backend/internal/app/model"
	"github.com/medikart/medikart-backend/internal/app/repository"
	"github.com/medikart/medikart-backend/internal/storage"
	"github.com/medikart/medikart-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrInvalidStatus = errors.New("invalid registration status")

// Wizard step counter bounds. The wizard has nine pages; only the first
// six carry completion flags.
const (
	minWizardStep = 1
	maxWizardStep = 9
)

// Wizard field names inside the step5 sub-object.
const (
	fieldOpenTime  = "open_time"
	fieldCloseTime = "close_time"
	fieldLogo      = "logo_url"
)

// SaveProgressInput is one wizard save. FormData is a patch, not the full
// document; keys it omits stay untouched and explicit nulls clear.
type SaveProgressInput struct {
	CurrentStep        int
	NextStep           *int
	MarkStepComplete   bool
	FormData           map[string]interface{}
	RegistrationStatus string
	StorePublicIDHint  string
}

// OnboardingService is the root of the registration flow: it owns the two
// wizard operations and sequences the merge, flag reconciliation, draft
// lifecycle, and side-record synchronizers.
type OnboardingService interface {
	// GetProgress returns the owner's active registration, or nil when
	// none exists, forceNew was requested, or the linked draft is gone.
	GetProgress(ctx context.Context, userID uint, publicIDHint string, forceNew bool) (*model.RegistrationProgress, error)

	// SaveProgress applies one wizard patch and returns the updated row.
	SaveProgress(ctx context.Context, userID uint, input SaveProgressInput) (*model.RegistrationProgress, error)

	// CleanupDriftedProgress deletes in-progress rows whose linked draft
	// was removed out-of-band. Returns the number of rows removed.
	CleanupDriftedProgress() (int, error)
}

type onboardingService struct {
	progressRepo repository.ProgressRepository
	storeRepo    repository.StoreRepository
	draftService DraftService
	documentSync DocumentSyncService
	payoutSync   PayoutSyncService
	mediaSync    MediaSyncService
	allocator    *PublicIDAllocator
	blobStore    storage.BlobStore
	presignTTL   time.Duration
}

func NewOnboardingService(
	progressRepo repository.ProgressRepository,
	storeRepo repository.StoreRepository,
	draftService DraftService,
	documentSync DocumentSyncService,
	payoutSync PayoutSyncService,
	mediaSync MediaSyncService,
	allocator *PublicIDAllocator,
	blobStore storage.BlobStore,
	presignTTL time.Duration,
) OnboardingService {
	return &onboardingService{
		progressRepo: progressRepo,
		storeRepo:    storeRepo,
		draftService: draftService,
		documentSync: documentSync,
		payoutSync:   payoutSync,
		mediaSync:    mediaSync,
		allocator:    allocator,
		blobStore:    blobStore,
		presignTTL:   presignTTL,
	}
}

func (s *onboardingService) GetProgress(ctx context.Context, userID uint, publicIDHint string, forceNew bool) (*model.RegistrationProgress, error) {
	if forceNew {
		// Explicit start-over signal, nothing is read or written
		return nil, nil
	}

	row, err := s.findActive(userID, publicIDHint)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	if storeID := row.StoreDBID(); storeID != 0 {
		if _, findErr := s.storeRepo.FindByID(storeID); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				// Draft removed out-of-band; a dangling reference reads
				// as no progress so the wizard restarts cleanly
				logger.Warn("Registration points at a deleted draft", map[string]interface{}{
					"progress_id": row.ID,
					"store_id":    storeID,
					"user_id":     userID,
				})
				return nil, nil
			}
			return nil, findErr
		}
	}

	s.healFlags(row)

	// Blob references are refreshed on a copy; stored state keeps the raw
	// object keys
	out := *row
	out.FormData = s.refreshBlobURLs(ctx, row.FormData)
	return &out, nil
}

func (s *onboardingService) SaveProgress(ctx context.Context, userID uint, input SaveProgressInput) (*model.RegistrationProgress, error) {
	status := model.RegistrationStatus(input.RegistrationStatus)
	if input.RegistrationStatus != "" && status != model.RegistrationInProgress && status != model.RegistrationCompleted {
		return nil, ErrInvalidStatus
	}

	currentStep := clampStep(input.CurrentStep)
	newStep := currentStep
	if input.NextStep != nil {
		newStep = clampStep(*input.NextStep)
	}

	row, err := s.findActive(userID, input.StorePublicIDHint)
	if err != nil {
		return nil, err
	}

	var base model.JSONDocument
	existingStep := 0
	existingFlags := [model.NumSteps]bool{}
	if row != nil {
		base = row.FormData
		existingStep = row.CurrentStep
		existingFlags = row.Flags()
	}

	merged := model.JSONDocument(MergeDocuments(base, input.FormData))
	flags, count := ReconcileFlags(existingFlags, existingStep, newStep, merged, input.MarkStepComplete)

	draft, err := s.runDraftLifecycle(userID, merged, newStep)
	if err != nil {
		return nil, err
	}

	if draft != nil {
		s.embedDraftRef(merged, draft)
		s.runSynchronizers(ctx, draft, input.FormData, merged)
		s.applyProfileExtras(draft, input.FormData, merged)
		if stepErr := s.storeRepo.UpdateOnboardingStep(draft.ID, newStep); stepErr != nil {
			logger.Warn("Failed to persist onboarding step on draft", map[string]interface{}{
				"store_id": draft.ID,
				"step":     newStep,
				"error":    stepErr.Error(),
			})
		}
	}

	newStatus := model.RegistrationInProgress
	if row != nil {
		newStatus = row.Status
	}
	if input.RegistrationStatus != "" {
		newStatus = status
	}
	if newStep >= maxWizardStep {
		// A registration that reached the last page never comes back from
		// the active-row lookup
		newStatus = model.RegistrationCompleted
	}

	if row == nil {
		if newStatus == model.RegistrationCompleted || isCompletionAck(input.FormData) {
			// A final-step acknowledgment with nothing to resume must not
			// spawn a fresh row
			logger.Info("Completion ack without an active registration, nothing persisted", map[string]interface{}{
				"user_id": userID,
			})
			row = &model.RegistrationProgress{
				UserID:      userID,
				CurrentStep: newStep,
				FormData:    merged,
				Status:      newStatus,
			}
			row.SetFlags(flags, count)
			return row, nil
		}
		row = &model.RegistrationProgress{UserID: userID}
	}

	row.CurrentStep = newStep
	row.FormData = merged
	row.Status = newStatus
	row.SetFlags(flags, count)

	if row.ID == 0 {
		err = s.progressRepo.Create(row)
	} else {
		err = s.progressRepo.Update(row)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Registration progress saved", map[string]interface{}{
		"progress_id":     row.ID,
		"user_id":         userID,
		"current_step":    row.CurrentStep,
		"completed_steps": row.CompletedSteps,
		"status":          row.Status,
	})
	return row, nil
}

func (s *onboardingService) CleanupDriftedProgress() (int, error) {
	rows, err := s.progressRepo.FindAllInProgress()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, row := range rows {
		storeID := row.StoreDBID()
		if storeID == 0 {
			continue
		}
		_, findErr := s.storeRepo.FindByID(storeID)
		if findErr == nil {
			continue
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			logger.Warn("Drift sweep could not check draft", map[string]interface{}{
				"progress_id": row.ID,
				"store_id":    storeID,
				"error":       findErr.Error(),
			})
			continue
		}
		if delErr := s.progressRepo.Delete(row.ID); delErr != nil {
			continue
		}
		removed++
	}
	return removed, nil
}

// findActive picks the owner's current registration: the open row whose
// embedded public id matches the hint, else the most recently created open
// row, else nil.
func (s *onboardingService) findActive(userID uint, publicIDHint string) (*model.RegistrationProgress, error) {
	rows, err := s.progressRepo.FindOpenByUserID(userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	if publicIDHint != "" {
		for i := range rows {
			if rows[i].StorePublicID() == publicIDHint {
				return &rows[i], nil
			}
		}
	}
	return &rows[0], nil
}

// healFlags reconciles stored flags against the document and persists only
// when something changed. A persistence failure downgrades to a warning;
// the caller still gets the healed view.
func (s *onboardingService) healFlags(row *model.RegistrationProgress) {
	flags, count := ReconcileFlags(row.Flags(), row.CurrentStep, row.CurrentStep, row.FormData, false)
	if flags == row.Flags() && count == row.CompletedSteps {
		return
	}

	row.SetFlags(flags, count)
	if err := s.progressRepo.UpdateFlags(row); err != nil {
		logger.Warn("Failed to persist healed flags", map[string]interface{}{
			"progress_id": row.ID,
			"error":       err.Error(),
		})
	}
}

// runDraftLifecycle applies whichever draft operation the merged document
// has enough data for. A nil draft with nil error means the threshold is
// not met yet.
func (s *onboardingService) runDraftLifecycle(userID uint, merged model.JSONDocument, newStep int) (*model.Store, error) {
	step1 := merged.SubObject(model.DocKeyStep1)
	step2 := merged.SubObject(model.DocKeyStep2)
	if model.StringAt(step1, fieldStoreName) == "" {
		return nil, nil
	}

	ref := model.RegistrationProgress{FormData: merged}
	existingDraftID := ref.StoreDBID()

	if hasFullAddress(step2) {
		return s.draftService.UpsertDraftWithAddress(userID, step1, step2, existingDraftID, newStep)
	}

	if existingDraftID != 0 {
		store, err := s.storeRepo.FindByID(existingDraftID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Embedded draft reference is stale", map[string]interface{}{
					"store_id": existingDraftID,
					"user_id":  userID,
				})
				return nil, nil
			}
			return nil, err
		}
		return store, nil
	}

	// An already-reserved public id stays immutable; allocate only when
	// the document has never held one
	desiredPublicID := ref.StorePublicID()
	if desiredPublicID == "" {
		var allocErr error
		desiredPublicID, allocErr = s.allocator.Allocate()
		if allocErr != nil {
			return nil, allocErr
		}
	}

	store, _, err := s.draftService.EnsureDraftAfterBasicInfo(userID, step1, desiredPublicID)
	return store, err
}

// embedDraftRef writes the draft's ids into the document's step_store
// sub-object. A public id already present is never overwritten.
func (s *onboardingService) embedDraftRef(merged model.JSONDocument, draft *model.Store) {
	stepStore := merged.SubObject(model.DocKeyStepStore)
	if stepStore == nil {
		stepStore = map[string]interface{}{}
		merged[model.DocKeyStepStore] = stepStore
	}
	stepStore[model.DocKeyStoreDBID] = float64(draft.ID)
	if model.StringAt(stepStore, model.DocKeyStorePublicID) == "" {
		stepStore[model.DocKeyStorePublicID] = draft.PublicID
	}
}

// runSynchronizers fires each side-record sync whose sub-object appears in
// this patch (not merely in the merged document). Failures are logged and
// swallowed; the wizard still advances on a primary save.
func (s *onboardingService) runSynchronizers(ctx context.Context, draft *model.Store, patch map[string]interface{}, merged model.JSONDocument) {
	patchDoc := model.JSONDocument(patch)

	if _, touched := patch[model.DocKeyStep4]; touched {
		if err := s.documentSync.Sync(ctx, draft.ID, merged.SubObject(model.DocKeyStep4)); err != nil {
			logger.Error("Document sync failed", err, map[string]interface{}{
				"store_id": draft.ID,
			})
		}

		if patchStep4 := patchDoc.SubObject(model.DocKeyStep4); patchStep4 != nil {
			if _, bankTouched := patchStep4["bank"]; bankTouched {
				step4 := merged.SubObject(model.DocKeyStep4)
				bank, _ := step4["bank"].(map[string]interface{})
				if err := s.payoutSync.Sync(ctx, draft.ID, bank); err != nil {
					logger.Error("Payout sync failed", err, map[string]interface{}{
						"store_id": draft.ID,
					})
				}
			}
		}
	}

	if _, touched := patch[model.DocKeyStep3]; touched {
		if err := s.mediaSync.Sync(ctx, draft.ID, merged.SubObject(model.DocKeyStep3)); err != nil {
			logger.Error("Menu media sync failed", err, map[string]interface{}{
				"store_id": draft.ID,
			})
		}
	}
}

// applyProfileExtras copies step-5 profile fields (hours, logo) onto the
// draft when this patch touched them. Best effort.
func (s *onboardingService) applyProfileExtras(draft *model.Store, patch map[string]interface{}, merged model.JSONDocument) {
	if _, touched := patch[model.DocKeyStep5]; !touched {
		return
	}
	step5 := merged.SubObject(model.DocKeyStep5)
	if step5 == nil {
		return
	}

	changed := false
	if v := model.StringAt(step5, fieldOpenTime); v != "" && v != draft.OpenTime {
		draft.OpenTime = v
		changed = true
	}
	if v := model.StringAt(step5, fieldCloseTime); v != "" && v != draft.CloseTime {
		draft.CloseTime = v
		changed = true
	}
	if v := model.StringAt(step5, fieldLogo); v != "" && v != draft.LogoKey {
		draft.LogoKey = v
		changed = true
	}
	if !changed {
		return
	}

	if err := s.storeRepo.Update(draft); err != nil {
		logger.Warn("Failed to apply profile fields to draft", map[string]interface{}{
			"store_id": draft.ID,
			"error":    err.Error(),
		})
	}
}

// refreshBlobURLs walks the document and swaps stored object keys for
// fresh signed URLs wherever a *_url / *_urls field holds one. Values that
// already look like absolute URLs pass through. Returns a deep copy.
func (s *onboardingService) refreshBlobURLs(ctx context.Context, doc map[string]interface{}) map[string]interface{} {
	if doc == nil {
		return nil
	}
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		switch val := v.(type) {
		case map[string]interface{}:
			out[k] = s.refreshBlobURLs(ctx, val)
		case string:
			if strings.HasSuffix(k, "_url") {
				out[k] = s.signKey(ctx, val)
			} else {
				out[k] = val
			}
		case []interface{}:
			if strings.HasSuffix(k, "_urls") {
				out[k] = s.signKeyList(ctx, val)
			} else {
				out[k] = val
			}
		default:
			out[k] = v
		}
	}
	return out
}

func (s *onboardingService) signKeyList(ctx context.Context, vals []interface{}) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		if key, ok := v.(string); ok {
			out[i] = s.signKey(ctx, key)
		} else {
			out[i] = v
		}
	}
	return out
}

func (s *onboardingService) signKey(ctx context.Context, key string) string {
	if key == "" || strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	url, err := s.blobStore.SignURL(ctx, key, s.presignTTL)
	if err != nil {
		logger.Warn("Failed to sign blob URL, serving proxy URL", map[string]interface{}{
			"object_key": key,
			"error":      err.Error(),
		})
		return s.blobStore.ProxyURL(key)
	}
	return url
}

// isCompletionAck reports whether the patch is a bare final-step
// acknowledgment carrying no step data worth starting a row for.
func isCompletionAck(patch map[string]interface{}) bool {
	if len(patch) == 0 {
		return false
	}
	for k := range patch {
		if k != model.DocKeyFinal && k != model.DocKeyStepStore {
			return false
		}
	}
	_, hasFinal := patch[model.DocKeyFinal]
	return hasFinal
}

func clampStep(step int) int {
	if step < minWizardStep {
		return minWizardStep
	}
	if step > maxWizardStep {
		return maxWizardStep
	}
	return step
}
