package store

import (
	"errors"
	"time"

	"lovedu_client/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm persists settings in the table created by database.Open.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Get(key string) (string, bool, error) {
	var setting models.Setting
	err := g.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return setting.Value, true, nil
}

func (g *Gorm) Set(key, value string) error {
	setting := models.Setting{Key: key, Value: value, UpdatedAt: time.Now()}
	return g.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}

func (g *Gorm) Delete(key string) error {
	return g.db.Where("key = ?", key).Delete(&models.Setting{}).Error
}
