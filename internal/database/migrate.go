package database

import (
	"fmt"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"gorm.io/gorm"
)

// Models lists every table owned by the service
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Pizza{},
		&models.Order{},
		&models.OrderItem{},
		&models.OAuthClient{},
		&models.OAuthToken{},
	}
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	log.Info("Running database migrations")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("Database migrations completed")
	return nil
}
