package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/medikart/medikart-backend/config"
	"github.com/medikart/medikart-backend/internal/app/model"
	"github.com/medikart/medikart-backend/internal/db"
	"github.com/medikart/medikart-backend/pkg/util"
	"gorm.io/gorm"
)

// Seeds a development environment: a demo merchant account plus the public
// id sequence row, and prints a ready-to-use bearer token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	gdb := db.GetDB()

	merchant, err := seedMerchant(gdb)
	if err != nil {
		log.Fatal("Failed to seed merchant:", err)
	}

	if err := seedSequence(gdb); err != nil {
		log.Fatal("Failed to seed sequence:", err)
	}

	tokens, err := util.GenerateTokenPair(
		merchant.ID,
		merchant.Email,
		string(merchant.Role),
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	if err != nil {
		log.Fatal("Failed to generate dev token:", err)
	}

	fmt.Println("Seed complete.")
	fmt.Printf("Merchant:    %s (id=%d)\n", merchant.Email, merchant.ID)
	fmt.Printf("Password:    %s\n", demoPassword)
	fmt.Printf("Bearer:      %s\n", tokens.AccessToken)
}

const (
	demoEmail    = "demo.merchant@medikart.in"
	demoPassword = "demo-pass-123"
)

func seedMerchant(gdb *gorm.DB) (*model.User, error) {
	var existing model.User
	err := gdb.Where("email = ?", demoEmail).First(&existing).Error
	if err == nil {
		fmt.Println("Demo merchant already exists, reusing.")
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := util.HashPassword(demoPassword)
	if err != nil {
		return nil, err
	}

	merchant := &model.User{
		Email:        demoEmail,
		PasswordHash: hash,
		Name:         "Demo Merchant",
		Phone:        "9876543210",
		Role:         model.RoleMerchant,
	}
	if err := gdb.Create(merchant).Error; err != nil {
		return nil, err
	}
	return merchant, nil
}

func seedSequence(gdb *gorm.DB) error {
	var existing model.Sequence
	err := gdb.Where("name = ?", model.SequenceStorePublicID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return gdb.Create(&model.Sequence{Name: model.SequenceStorePublicID, Value: 0}).Error
}
