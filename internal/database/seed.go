// internal/database/seed.go
package database

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/localshop-backend/internal/config"
	"github.com/javajoker/localshop-backend/internal/models"
	"github.com/javajoker/localshop-backend/internal/utils"
)

// SeedInitialData makes sure at least one active administrator exists and,
// when requested, loads a demo shopper and catalog into an empty database.
func SeedInitialData(db *gorm.DB, cfg config.SeedConfig) error {
	logrus.Info("Seeding initial data...")

	var adminCount int64
	if err := db.Model(&models.User{}).
		Where("role = ? AND active = ?", models.RoleAdmin, true).
		Count(&adminCount).Error; err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}

	if adminCount == 0 {
		password := cfg.AdminPassword
		generated := false
		if password == "" {
			var err error
			if password, err = utils.GenerateRandomString(16); err != nil {
				return fmt.Errorf("failed to generate admin password: %w", err)
			}
			generated = true
		}

		admin := &models.User{
			Email:  cfg.AdminEmail,
			Name:   "Administrator",
			Role:   models.RoleAdmin,
			Active: true,
		}
		if err := admin.SetPassword(password); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}
		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		entry := logrus.WithField("email", admin.Email)
		if generated {
			entry = entry.WithField("password", password)
		}
		entry.Info("Default admin user created")
	}

	if cfg.DemoData {
		if err := seedDemoData(db); err != nil {
			return err
		}
	}

	logrus.Info("Initial data seeding completed")
	return nil
}

func seedDemoData(db *gorm.DB) error {
	var userCount int64
	db.Model(&models.User{}).Where("email = ?", "user@example.com").Count(&userCount)
	if userCount == 0 {
		user := &models.User{
			Email:  "user@example.com",
			Name:   "Demo Shopper",
			Role:   models.RoleUser,
			Active: true,
		}
		if err := user.SetPassword("user123"); err != nil {
			return fmt.Errorf("failed to set demo user password: %w", err)
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create demo user: %w", err)
		}
	}

	var productCount int64
	db.Model(&models.Product{}).Count(&productCount)
	if productCount > 0 {
		return nil
	}

	apple := "Apple"
	sony := "Sony"
	products := []models.Product{
		{
			Name:         "iPhone 15 Pro",
			Description:  "A17 Pro chip, titanium design, pro camera system",
			Price:        decimal.NewFromInt(7999),
			ComparePrice: decimalPtr(8999),
			Category:     "phones",
			Brand:        &apple,
			Images:       models.StringList{"/products/iphone-15-pro-1.jpg", "/products/iphone-15-pro-2.jpg"},
			Stock:        50,
			Rating:       4.8,
			ReviewCount:  328,
			Featured:     true,
		},
		{
			Name:         "MacBook Pro 14\"",
			Description:  "M3 Pro chip, 14.2-inch Liquid Retina XDR display",
			Price:        decimal.NewFromInt(14999),
			ComparePrice: decimalPtr(16999),
			Category:     "computers",
			Brand:        &apple,
			Images:       models.StringList{"/products/macbook-pro-1.jpg", "/products/macbook-pro-2.jpg"},
			Stock:        30,
			Rating:       4.9,
			ReviewCount:  156,
			Featured:     true,
		},
		{
			Name:         "AirPods Pro 2",
			Description:  "Active noise cancellation, adaptive transparency, spatial audio",
			Price:        decimal.NewFromInt(1899),
			ComparePrice: decimalPtr(2099),
			Category:     "audio",
			Brand:        &apple,
			Images:       models.StringList{"/products/airpods-pro-1.jpg"},
			Stock:        100,
			Rating:       4.7,
			ReviewCount:  512,
		},
		{
			Name:        "WH-1000XM5",
			Description: "Industry-leading noise cancelling headphones",
			Price:       decimal.NewFromInt(2499),
			Category:    "audio",
			Brand:       &sony,
			Images:      models.StringList{"/products/sony-xm5-1.jpg"},
			Stock:       40,
			Rating:      4.6,
			ReviewCount: 208,
		},
	}

	if err := db.Create(&products).Error; err != nil {
		return fmt.Errorf("failed to create demo products: %w", err)
	}

	logrus.WithField("products", len(products)).Info("Demo catalog created")
	return nil
}

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
