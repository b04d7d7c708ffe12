package model

import (
	"time"

	"gorm.io/gorm"
)

type ApprovalStatus string

const (
	ApprovalDraft             ApprovalStatus = "DRAFT"              // created from step-1 wizard data
	ApprovalSubmitted         ApprovalStatus = "SUBMITTED"          // wizard finished, waiting for review
	ApprovalUnderVerification ApprovalStatus = "UNDER_VERIFICATION" // documents being checked
	ApprovalApproved          ApprovalStatus = "APPROVED"           // live in the catalog
	ApprovalRejected          ApprovalStatus = "REJECTED"
)

// Store is the catalog entity the onboarding wizard populates. A draft row
// is created as soon as step-1 data carries a business name so search
// indexing and approval queues can reference the store before the wizard
// finishes.
type Store struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	PublicID string `gorm:"uniqueIndex;not null" json:"public_id"` // human-readable id, e.g. "MED00042", immutable once set
	UserID   uint   `gorm:"index;not null" json:"user_id"`         // owner
	User     User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`

	// Profile, filled incrementally across wizard steps
	Name        string `gorm:"not null" json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `gorm:"type:varchar(30)" json:"phone_number"`
	AddressLine string `gorm:"type:text" json:"address_line"`
	City        string `gorm:"index" json:"city"`
	State       string `json:"state"`
	PostalCode  string `gorm:"type:varchar(10)" json:"postal_code"`
	Category    string `gorm:"type:varchar(50)" json:"category"`  // pharmacy, wellness, ...
	OpenTime    string `gorm:"type:varchar(10)" json:"open_time"` // e.g. "09:00"
	CloseTime   string `gorm:"type:varchar(10)" json:"close_time"`
	LogoKey     string `json:"logo_key"` // blob object key for the store logo

	// Lifecycle
	ApprovalStatus        ApprovalStatus `gorm:"type:varchar(30);default:'DRAFT';index" json:"approval_status"`
	OnboardingCompleted   bool           `gorm:"default:false" json:"onboarding_completed"`
	CurrentOnboardingStep int            `gorm:"default:1" json:"current_onboarding_step"` // mirrors the wizard's current step

	// Operational flags, only meaningful after approval
	IsActive        bool `gorm:"default:false" json:"is_active"`
	AcceptingOrders bool `gorm:"default:false" json:"accepting_orders"`
	IsAvailable     bool `gorm:"default:false" json:"is_available"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Documents *StoreDocument `gorm:"foreignKey:StoreID" json:"documents,omitempty"`
	Payouts   []StorePayout  `gorm:"foreignKey:StoreID" json:"payouts,omitempty"`
	Media     []StoreMedia   `gorm:"foreignKey:StoreID" json:"media,omitempty"`
}

func (Store) TableName() string {
	return "stores"
}

// IsLive reports whether the store serves customer-facing pages. Menu media
// for a live store is retired additively, never destroyed.
func (s *Store) IsLive() bool {
	return s.OnboardingCompleted && s.ApprovalStatus == ApprovalApproved
}
