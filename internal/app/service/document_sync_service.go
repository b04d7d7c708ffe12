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

// Wizard field names inside the step4 sub-object. The "_url" suffix is
// historical; the values are blob object keys handed back by the upload
// endpoint.
const (
	fieldPanImage            = "pan_image_url"
	fieldAadhaarFront        = "aadhaar_front_url"
	fieldAadhaarBack         = "aadhaar_back_url"
	fieldGSTCertificate      = "gst_certificate_url"
	fieldFSSAILicense        = "fssai_license_url"
	fieldDrugLicense         = "drug_license_url"
	fieldPharmacistCert      = "pharmacist_certificate_url"
	fieldCouncilRegistration = "council_registration_url"
	fieldOtherDocument       = "other_document_url"
)

// DocumentSyncService keeps the store's verification-document row aligned
// with the step4 sub-object. The accumulated document is the source of
// truth; this row is derived state.
type DocumentSyncService interface {
	Sync(ctx context.Context, storeID uint, step4 map[string]interface{}) error
}

type documentSyncService struct {
	documentRepo repository.DocumentRepository
	blobStore    storage.BlobStore
}

func NewDocumentSyncService(documentRepo repository.DocumentRepository, blobStore storage.BlobStore) DocumentSyncService {
	return &documentSyncService{documentRepo: documentRepo, blobStore: blobStore}
}

func (s *documentSyncService) Sync(ctx context.Context, storeID uint, step4 map[string]interface{}) error {
	if step4 == nil {
		return nil
	}

	var prev model.StoreDocument
	existing, err := s.documentRepo.FindByStoreID(storeID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil {
		prev = *existing
	}

	next := model.StoreDocument{StoreID: storeID}
	next.PanCardKey = s.resolveKey(ctx, step4, fieldPanImage, prev.PanCardKey)
	next.AadhaarFrontKey = s.resolveKey(ctx, step4, fieldAadhaarFront, prev.AadhaarFrontKey)
	next.AadhaarBackKey = s.resolveKey(ctx, step4, fieldAadhaarBack, prev.AadhaarBackKey)
	next.GSTCertificateKey = s.resolveKey(ctx, step4, fieldGSTCertificate, prev.GSTCertificateKey)
	next.FSSAILicenseKey = s.resolveKey(ctx, step4, fieldFSSAILicense, prev.FSSAILicenseKey)
	next.DrugLicenseKey = s.resolveKey(ctx, step4, fieldDrugLicense, prev.DrugLicenseKey)
	next.PharmacistCertificateKey = s.resolveKey(ctx, step4, fieldPharmacistCert, prev.PharmacistCertificateKey)
	next.CouncilRegistrationKey = s.resolveKey(ctx, step4, fieldCouncilRegistration, prev.CouncilRegistrationKey)
	next.OtherDocumentKey = s.resolveKey(ctx, step4, fieldOtherDocument, prev.OtherDocumentKey)

	if err := s.documentRepo.Upsert(&next); err != nil {
		return err
	}

	logger.Debug("Store documents synced", map[string]interface{}{
		"store_id": storeID,
	})
	return nil
}

// resolveKey picks the new blob key for one document field. A key absent
// from step4 keeps the previous value; an explicit null or empty string
// clears it and deletes the now-orphaned blob.
func (s *documentSyncService) resolveKey(ctx context.Context, step4 map[string]interface{}, field, prevKey string) string {
	raw, present := step4[field]
	if !present {
		return prevKey
	}

	newKey, _ := raw.(string)
	if newKey == "" && prevKey != "" {
		if err := s.blobStore.Delete(ctx, prevKey); err != nil {
			logger.Warn("Failed to delete cleared document blob", map[string]interface{}{
				"field":      field,
				"object_key": prevKey,
				"error":      err.Error(),
			})
		}
	}
	return newKey
}
