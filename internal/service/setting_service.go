package service

import (
	"strings"

	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"

	"github.com/spf13/cast"
)

type SettingService interface {
	GetAll(publicOnly bool) (map[string]string, error)
	Update(values map[string]interface{}, userID string) (map[string]string, error)
}

type settingService struct {
	settingRepo repository.SettingRepository
}

func NewSettingService(settingRepo repository.SettingRepository) SettingService {
	return &settingService{settingRepo: settingRepo}
}

func (s *settingService) GetAll(publicOnly bool) (map[string]string, error) {
	settings, err := s.settingRepo.FindAll(publicOnly)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string, len(settings))
	for _, setting := range settings {
		result[setting.Key] = setting.Value
	}
	return result, nil
}

// Update upserts the given keys. Values may be any JSON scalar.
func (s *settingService) Update(values map[string]interface{}, userID string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, newValidationError("No settings given")
	}

	public := make(map[string]bool, len(model.DefaultSettings))
	for _, d := range model.DefaultSettings {
		public[d.Key] = d.IsPublic
	}

	settings := make([]model.Setting, 0, len(values))
	for key, raw := range values {
		key = strings.TrimSpace(key)
		if key == "" || len(key) > 100 {
			return nil, newValidationError("Invalid setting key '%s'", key)
		}
		value, err := cast.ToStringE(raw)
		if err != nil {
			return nil, newValidationError("Setting '%s' must be a scalar value", key)
		}
		if key == model.SettingTaxRate {
			if _, err := cast.ToFloat64E(value); err != nil {
				return nil, newValidationError("Setting '%s' must be numeric", key)
			}
		}
		settings = append(settings, model.Setting{
			Key:       key,
			Value:     value,
			IsPublic:  public[key],
			UpdatedBy: userID,
		})
	}

	if err := s.settingRepo.Upsert(settings); err != nil {
		return nil, err
	}
	return s.GetAll(false)
}
