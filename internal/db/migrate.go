package db

import (
	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Address{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.ShippingConfig{},
		&model.ShippingSettings{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData()
}

func seedInitialData() error {
	logger.Info("Seeding initial data...")

	if err := seedShippingSettings(); err != nil {
		logger.Error("Failed to seed shipping settings", err)
		return err
	}

	if err := seedShippingConfigs(); err != nil {
		logger.Error("Failed to seed shipping configs", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

// seedShippingSettings creates the merchant origin singleton if absent.
func seedShippingSettings() error {
	var count int64
	if err := DB.Model(&model.ShippingSettings{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Shipping settings already present, skipping...")
		return nil
	}

	settings := &model.ShippingSettings{
		OriginCEP:           "88010000",
		OriginState:         "SC",
		OriginCity:          "Florianópolis",
		OriginAddress:       "Rua das Carvalhas, 120 - Centro",
		DefaultCostCents:    2500,
		DefaultDeliveryDays: 12,
	}
	return DB.Create(settings).Error
}

// seedShippingConfigs creates a starter rule set covering each region type.
func seedShippingConfigs() error {
	var count int64
	if err := DB.Model(&model.ShippingConfig{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Shipping configs already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	configs := []model.ShippingConfig{
		{
			Name:          "Retirada local",
			RegionType:    model.RegionSameCEP,
			BaseCostCents: 0,
			DeliveryDays:  1,
			IsActive:      true,
			Priority:      100,
		},
		{
			Name:             "Grande Florianópolis",
			RegionType:       model.RegionMetro,
			StateCode:        "SC",
			CEPPrefix:        "88",
			BaseCostCents:    1500,
			DeliveryDays:     3,
			WeightMultiplier: 0.05,
			MinWeightKg:      5,
			IsActive:         true,
			Priority:         50,
		},
		{
			Name:             "Interior de SC",
			RegionType:       model.RegionStateInterior,
			StateCode:        "SC",
			BaseCostCents:    2200,
			DeliveryDays:     5,
			WeightMultiplier: 0.08,
			MinWeightKg:      5,
			IsActive:         true,
			Priority:         30,
		},
		{
			Name:             "Demais estados",
			RegionType:       model.RegionOtherStates,
			BaseCostCents:    3800,
			DeliveryDays:     10,
			WeightMultiplier: 0.1,
			MinWeightKg:      3,
			IsActive:         true,
			Priority:         10,
		},
	}

	if err := DB.Create(&configs).Error; err != nil {
		return err
	}

	logger.Info("Shipping configs seeded", map[string]interface{}{
		"count": len(configs),
	})
	return nil
}
