package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/fairprice-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Report{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
