package model

import (
	"time"

	"gorm.io/gorm"
)

type MediaScope string

const (
	ScopeMenuReference MediaScope = "MENU_REFERENCE" // reference menu supplied during onboarding
)

type MediaSource string

const (
	SourceSheet MediaSource = "SHEET" // uploaded spreadsheet (see the menu template endpoint)
	SourceImage MediaSource = "IMAGE" // photographed menu page
)

// StoreMedia is a media attachment on a store. Before approval the menu
// reference set is replaced destructively on every save; once the store is
// live, old rows are soft-retired instead because their blobs may still be
// referenced by customer-facing pages.
type StoreMedia struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	StoreID uint  `gorm:"not null;index" json:"store_id"`
	Store   Store `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Scope     MediaScope  `gorm:"type:varchar(30);not null;index" json:"scope"`
	Source    MediaSource `gorm:"type:varchar(10);not null" json:"source"`
	ObjectKey string      `gorm:"not null" json:"object_key"`
	IsActive  bool        `gorm:"default:true;index" json:"is_active"`
}

func (StoreMedia) TableName() string {
	return "store_media"
}
