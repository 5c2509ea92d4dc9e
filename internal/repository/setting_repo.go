package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smmonirhasan92/man2man-sub004/internal/models"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Get(key string) (string, error) {
	var s models.SystemSetting
	if err := r.db.Where("`key` = ?", key).First(&s).Error; err != nil {
		return "", err
	}
	return s.Value, nil
}

func (r *SettingRepository) Set(key, value, category string) (*models.SystemSetting, error) {
	s := &models.SystemSetting{Key: key, Value: value, Category: category}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "category", "updated_at"}),
	}).Create(s).Error
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SettingRepository) GetAll() ([]models.SystemSetting, error) {
	var list []models.SystemSetting
	err := r.db.Order("category ASC, `key` ASC").Find(&list).Error
	return list, err
}

// SeedDefaults inserts default settings if they don't already exist.
func (r *SettingRepository) SeedDefaults(defaults map[string][2]string) error {
	for k, vc := range defaults {
		var count int64
		r.db.Model(&models.SystemSetting{}).Where("`key` = ?", k).Count(&count)
		if count == 0 {
			s := &models.SystemSetting{Key: k, Value: vc[0], Category: vc[1]}
			if err := r.db.Create(s).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
