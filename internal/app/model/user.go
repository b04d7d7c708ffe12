package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleMerchant UserRole = "merchant" // store owner going through onboarding
	RoleAdmin    UserRole = "admin"    // ops/approval staff
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Phone        string         `json:"phone"`                                            // digits only, e.g. 9876543210
	Role         UserRole       `gorm:"type:varchar(20);default:'merchant'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Stores []Store `gorm:"foreignKey:UserID" json:"stores,omitempty"` // owned stores, drafts included
}

func (User) TableName() string {
	return "users"
}
