package service

import (
	"context"

	"github.com/medikart/medikart-backend/internal/app/model"
	"github.com/medikart/medikart-backend/internal/app/repository"
	"github.com/medikart/medikart-backend/internal/storage"
	"github.com/medikart/medikart-backend/pkg/logger"
)

// Wizard field names inside the step4.bank sub-object.
const (
	fieldPayoutMethod      = "payout_method"
	fieldUPIID             = "upi_id"
	fieldQRCode            = "qr_code_url"
	fieldAccountHolderName = "account_holder_name"
	fieldAccountNumber     = "account_number"
	fieldIFSCCode          = "ifsc_code"
	fieldBankName          = "bank_name"
)

// PayoutSyncService keeps the store's single active payout row aligned with
// the step4.bank sub-object. Only one method may be active, so a change
// replaces the whole row set.
type PayoutSyncService interface {
	Sync(ctx context.Context, storeID uint, bank map[string]interface{}) error
}

type payoutSyncService struct {
	payoutRepo repository.PayoutRepository
	blobStore  storage.BlobStore
}

func NewPayoutSyncService(payoutRepo repository.PayoutRepository, blobStore storage.BlobStore) PayoutSyncService {
	return &payoutSyncService{payoutRepo: payoutRepo, blobStore: blobStore}
}

func (s *payoutSyncService) Sync(ctx context.Context, storeID uint, bank map[string]interface{}) error {
	next := derivePayout(storeID, bank)
	if next == nil {
		// Not enough data for either method yet
		return nil
	}

	existing, err := s.payoutRepo.FindByStoreID(storeID)
	if err != nil {
		return err
	}

	if len(existing) == 1 && samePayout(&existing[0], next) {
		return nil
	}

	// QR blobs belonging to replaced rows are orphaned unless the new row
	// keeps the same key
	for _, row := range existing {
		if row.QRCodeKey != "" && row.QRCodeKey != next.QRCodeKey {
			if delErr := s.blobStore.Delete(ctx, row.QRCodeKey); delErr != nil {
				logger.Warn("Failed to delete orphaned QR blob", map[string]interface{}{
					"store_id":   storeID,
					"object_key": row.QRCodeKey,
					"error":      delErr.Error(),
				})
			}
		}
	}

	if err := s.payoutRepo.DeleteByStoreID(storeID); err != nil {
		return err
	}
	if err := s.payoutRepo.Create(next); err != nil {
		return err
	}

	logger.Info("Payout method synced", map[string]interface{}{
		"store_id": storeID,
		"method":   next.Method,
	})
	return nil
}

// derivePayout maps the bank sub-object to a payout row: UPI when the
// merchant picked upi and supplied both the id and a QR blob, else BANK
// when all four bank fields are present, else nil (no-op).
func derivePayout(storeID uint, bank map[string]interface{}) *model.StorePayout {
	if bank == nil {
		return nil
	}

	if model.StringAt(bank, fieldPayoutMethod) == "upi" {
		upiID := model.StringAt(bank, fieldUPIID)
		qrKey := model.StringAt(bank, fieldQRCode)
		if upiID != "" && qrKey != "" {
			return &model.StorePayout{
				StoreID:   storeID,
				Method:    model.PayoutUPI,
				UPIID:     upiID,
				QRCodeKey: qrKey,
				IsPrimary: true,
				IsActive:  true,
			}
		}
		return nil
	}

	holder := model.StringAt(bank, fieldAccountHolderName)
	account := model.StringAt(bank, fieldAccountNumber)
	ifsc := model.StringAt(bank, fieldIFSCCode)
	bankName := model.StringAt(bank, fieldBankName)
	if holder != "" && account != "" && ifsc != "" && bankName != "" {
		return &model.StorePayout{
			StoreID:           storeID,
			Method:            model.PayoutBank,
			AccountHolderName: holder,
			AccountNumber:     account,
			IFSCCode:          ifsc,
			BankName:          bankName,
			IsPrimary:         true,
			IsActive:          true,
		}
	}
	return nil
}

func samePayout(a, b *model.StorePayout) bool {
	return a.Method == b.Method &&
		a.AccountHolderName == b.AccountHolderName &&
		a.AccountNumber == b.AccountNumber &&
		a.IFSCCode == b.IFSCCode &&
		a.BankName == b.BankName &&
		a.UPIID == b.UPIID &&
		a.QRCodeKey == b.QRCodeKey &&
		a.IsActive && b.IsActive
}
