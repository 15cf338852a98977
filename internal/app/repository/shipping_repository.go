package repository

import (
	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/pkg/logger"
	"gorm.io/gorm"
)

type ShippingRepository interface {
	CreateConfig(config *model.ShippingConfig) error
	FindActiveConfigs() ([]model.ShippingConfig, error)
	FindAllConfigs() ([]model.ShippingConfig, error)
	FindConfigByID(id uint) (*model.ShippingConfig, error)
	UpdateConfig(config *model.ShippingConfig) error
	DeleteConfig(id uint) error
	GetSettings() (*model.ShippingSettings, error)
	UpdateSettings(settings *model.ShippingSettings) error
}

type shippingRepository struct {
	db *gorm.DB
}

func NewShippingRepository(db *gorm.DB) ShippingRepository {
	return &shippingRepository{db: db}
}

func (r *shippingRepository) CreateConfig(config *model.ShippingConfig) error {
	logger.Debug("Creating shipping config in database", map[string]interface{}{
		"name":        config.Name,
		"region_type": config.RegionType,
		"priority":    config.Priority,
	})

	if err := r.db.Create(config).Error; err != nil {
		logger.Error("Failed to create shipping config in database", err, map[string]interface{}{
			"name": config.Name,
		})
		return err
	}
	return nil
}

// FindActiveConfigs returns active rules ordered by priority descending,
// the order in which the resolver evaluates them.
func (r *shippingRepository) FindActiveConfigs() ([]model.ShippingConfig, error) {
	var configs []model.ShippingConfig
	if err := r.db.Where("is_active = ?", true).Order("priority DESC, id ASC").Find(&configs).Error; err != nil {
		logger.Error("Failed to fetch active shipping configs from database", err, nil)
		return nil, err
	}
	return configs, nil
}

func (r *shippingRepository) FindAllConfigs() ([]model.ShippingConfig, error) {
	var configs []model.ShippingConfig
	if err := r.db.Order("priority DESC, id ASC").Find(&configs).Error; err != nil {
		logger.Error("Failed to fetch shipping configs from database", err, nil)
		return nil, err
	}
	return configs, nil
}

func (r *shippingRepository) FindConfigByID(id uint) (*model.ShippingConfig, error) {
	var config model.ShippingConfig
	if err := r.db.First(&config, id).Error; err != nil {
		logger.Debug("Shipping config not found by ID", map[string]interface{}{
			"config_id": id,
			"error":     err.Error(),
		})
		return nil, err
	}
	return &config, nil
}

func (r *shippingRepository) UpdateConfig(config *model.ShippingConfig) error {
	if err := r.db.Save(config).Error; err != nil {
		logger.Error("Failed to update shipping config in database", err, map[string]interface{}{
			"config_id": config.ID,
		})
		return err
	}
	return nil
}

func (r *shippingRepository) DeleteConfig(id uint) error {
	if err := r.db.Delete(&model.ShippingConfig{}, id).Error; err != nil {
		logger.Error("Failed to delete shipping config from database", err, map[string]interface{}{
			"config_id": id,
		})
		return err
	}
	return nil
}

// GetSettings returns the singleton settings row.
func (r *shippingRepository) GetSettings() (*model.ShippingSettings, error) {
	var settings model.ShippingSettings
	if err := r.db.First(&settings).Error; err != nil {
		logger.Debug("Shipping settings not found in database", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	return &settings, nil
}

func (r *shippingRepository) UpdateSettings(settings *model.ShippingSettings) error {
	if err := r.db.Save(settings).Error; err != nil {
		logger.Error("Failed to update shipping settings in database", err, map[string]interface{}{
			"settings_id": settings.ID,
		})
		return err
	}
	return nil
}
