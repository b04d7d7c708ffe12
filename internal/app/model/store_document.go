package model

import (
	"time"

	"gorm.io/gorm"
)

// StoreDocument holds the verification document blob keys for one store,
// one column per document type. An empty key means the document was never
// uploaded or has been cleared; clearing also deletes the old blob.
type StoreDocument struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	StoreID uint  `gorm:"not null;uniqueIndex" json:"store_id"` // 1:1 with stores
	Store   Store `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	PanCardKey               string `json:"pan_card_key"`
	AadhaarFrontKey          string `json:"aadhaar_front_key"`
	AadhaarBackKey           string `json:"aadhaar_back_key"`
	GSTCertificateKey        string `json:"gst_certificate_key"`
	FSSAILicenseKey          string `json:"fssai_license_key"`
	DrugLicenseKey           string `json:"drug_license_key"`
	PharmacistCertificateKey string `json:"pharmacist_certificate_key"`
	CouncilRegistrationKey   string `json:"council_registration_key"`
	OtherDocumentKey         string `json:"other_document_key"`
}

func (StoreDocument) TableName() string {
	return "store_documents"
}
