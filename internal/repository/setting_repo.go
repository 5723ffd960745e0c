package repository

import (
	"cafe-pos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	FindAll(publicOnly bool) ([]model.Setting, error)
	FindByKey(key string) (*model.Setting, error)
	Upsert(settings []model.Setting) error
	SeedDefaults() error
}

type settingRepo struct {
	db *gorm.DB
}

func NewSettingRepo(db *gorm.DB) SettingRepository {
	return &settingRepo{db}
}

func (r *settingRepo) FindAll(publicOnly bool) ([]model.Setting, error) {
	var settings []model.Setting
	query := r.db.Order("key ASC")
	if publicOnly {
		query = query.Where("is_public = ?", true)
	}
	err := query.Find(&settings).Error
	return settings, err
}

func (r *settingRepo) FindByKey(key string) (*model.Setting, error) {
	var setting model.Setting
	if err := r.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert writes every setting, replacing value and updated_by on key conflicts
func (r *settingRepo) Upsert(settings []model.Setting) error {
	if len(settings) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(&settings).Error
}

// SeedDefaults creates default settings if they don't exist
func (r *settingRepo) SeedDefaults() error {
	for _, s := range model.DefaultSettings {
		var existing model.Setting
		if err := r.db.Where("key = ?", s.Key).First(&existing).Error; err == gorm.ErrRecordNotFound {
			setting := s
			setting.UpdatedBy = "system"
			if err := r.db.Create(&setting).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
