package db

import (
	"context"

	"github.com/bloodlink-dev/bloodlink/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Redis holds short-lived state (email verification codes).
var Redis *redis.Client

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

func ConnectRedis(addr, password string, database int) error {
	Redis = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	})

	_, err := Redis.Ping(context.Background()).Result()
	return err
}

func MigrateDatabase() error {
	entities := []interface{}{
		&models.User{},
		&models.BloodBank{},
		&models.BloodInventory{},
		&models.DonationRequest{},
		&models.Donation{},
	}

	migrator := DB.Migrator()

	for _, entity := range entities {
		if !migrator.HasTable(entity) {
			if err := DB.AutoMigrate(entity); err != nil {
				return err
			}
		}
	}

	// One pending request per requester, enforced in the store so two
	// concurrent creations cannot both slip past the application check.
	// Partial index syntax works on both postgres and sqlite.
	return DB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_one_pending
		 ON donation_requests (requester_id)
		 WHERE status = 'pending' AND deleted_at IS NULL`,
	).Error
}
