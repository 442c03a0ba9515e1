package db_client

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GuildSettings holds the persisted settings of one guild
type GuildSettings struct {
	GuildID   string  `gorm:"primaryKey"`
	Volume    float64 `gorm:"not null"`
	UpdatedAt time.Time
}

// SettingsStore stores guild settings with gorm
type SettingsStore struct {
	db *gorm.DB
}

func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// LoadVolume returns the stored volume of a guild. found is false when nothing was stored yet.
func (s *SettingsStore) LoadVolume(ctx context.Context, guildID string) (float64, bool, error) {
	var settings GuildSettings
	err := s.db.WithContext(ctx).Where("guild_id = ?", guildID).Take(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return settings.Volume, true, nil
}

// SaveVolume inserts or updates the volume of a guild
func (s *SettingsStore) SaveVolume(ctx context.Context, guildID string, volume float64) error {
	settings := GuildSettings{GuildID: guildID, Volume: volume}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"volume", "updated_at"}),
	}).Create(&settings).Error
}
