package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/nexovate-backend/internal/domain"
)

func AutoMigrateAll(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
