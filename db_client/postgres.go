package db_client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Strum355/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	DB *gorm.DB
)

// Init connects to Postgres, retrying while the database starts up, and migrates the schema
func Init(ctx context.Context, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("database dsn is empty")
	}

	var err error
	for attempt := range 10 {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if err == nil {
			sqlDB, dbErr := DB.DB()
			if dbErr == nil {
				if err = sqlDB.PingContext(ctx); err == nil {
					break
				}
			} else {
				err = dbErr
			}
		}
		log.WithFields(log.Fields{"attempt": attempt + 1}).Info("Waiting for Postgres to be ready...")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := Migrate(DB); err != nil {
		return nil, err
	}
	return DB, nil
}

// Migrate creates or updates the tables used by the bot
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&GuildSettings{}); err != nil {
		return fmt.Errorf("unable to migrate schema: %w", err)
	}
	return nil
}
