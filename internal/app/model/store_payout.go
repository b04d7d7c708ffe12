package model

import (
	"time"

	"gorm.io/gorm"
)

type PayoutMethod string

const (
	PayoutBank PayoutMethod = "BANK"
	PayoutUPI  PayoutMethod = "UPI"
)

// StorePayout is where settlement money goes. At most one row per store is
// active; changing the method replaces the row rather than editing it.
type StorePayout struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	StoreID uint  `gorm:"not null;index" json:"store_id"`
	Store   Store `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Method PayoutMethod `gorm:"type:varchar(10);not null" json:"method"`

	// BANK fields
	AccountHolderName string `json:"account_holder_name,omitempty"`
	AccountNumber     string `gorm:"type:varchar(30)" json:"account_number,omitempty"`
	IFSCCode          string `gorm:"type:varchar(15)" json:"ifsc_code,omitempty"`
	BankName          string `json:"bank_name,omitempty"`

	// UPI fields
	UPIID     string `gorm:"type:varchar(100)" json:"upi_id,omitempty"`
	QRCodeKey string `json:"qr_code_key,omitempty"` // blob key of the uploaded QR image

	IsPrimary bool `gorm:"default:true" json:"is_primary"`
	IsActive  bool `gorm:"default:true" json:"is_active"`
}

func (StorePayout) TableName() string {
	return "store_payouts"
}
