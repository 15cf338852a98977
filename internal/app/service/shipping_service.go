package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/lumeatelie/lume-backend/config"
	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/repository"
	"github.com/lumeatelie/lume-backend/pkg/logger"
	"github.com/lumeatelie/lume-backend/pkg/util"
	"gorm.io/gorm"
)

var ErrShippingConfigNotFound = errors.New("shipping config not found")

// Quote sources.
const (
	QuoteSourceDatabase = "database"
	QuoteSourceDefault  = "default"
)

const defaultServiceName = "Entrega padrão"

// ShippingQuote is the resolver output for one destination and weight.
type ShippingQuote struct {
	CostCents    int64  `json:"cost_cents"`
	DeliveryDays int    `json:"delivery_days"`
	ServiceName  string `json:"service_name"`
	Source       string `json:"source"`
}

type ShippingService interface {
	Estimate(ctx context.Context, destCEP string, weightKg float64) (*ShippingQuote, error)
	CreateConfig(shippingConfig *model.ShippingConfig) (*model.ShippingConfig, error)
	ListConfigs() ([]model.ShippingConfig, error)
	UpdateConfig(shippingConfig *model.ShippingConfig) (*model.ShippingConfig, error)
	DeleteConfig(id uint) error
	GetSettings() (*model.ShippingSettings, error)
	UpdateSettings(settings *model.ShippingSettings) (*model.ShippingSettings, error)
}

type shippingService struct {
	shippingRepo repository.ShippingRepository
	cepClient    CEPLookuper
	fallback     config.ShippingConfig
}

func NewShippingService(
	shippingRepo repository.ShippingRepository,
	cepClient CEPLookuper,
	fallback config.ShippingConfig,
) ShippingService {
	return &shippingService{
		shippingRepo: shippingRepo,
		cepClient:    cepClient,
		fallback:     fallback,
	}
}

// Estimate resolves shipping cost and lead time for a destination CEP and
// package weight. A malformed CEP is the only error surfaced to the caller;
// every other failure degrades to the merchant's default quote so the
// storefront always has a number to show.
func (s *shippingService) Estimate(ctx context.Context, destCEP string, weightKg float64) (*ShippingQuote, error) {
	dest, err := util.NormalizeCEP(destCEP)
	if err != nil {
		return nil, err
	}

	settings, err := s.shippingRepo.GetSettings()
	if err != nil {
		logger.Error("Failed to load shipping settings, using fallback", err, nil)
		settings = nil
	}

	origin, err := util.NormalizeCEP(s.originCEP(settings))
	if err != nil {
		return nil, err
	}

	configs, err := s.shippingRepo.FindActiveConfigs()
	if err != nil {
		logger.Error("Failed to load shipping configs, using default quote", err, map[string]interface{}{
			"cep_destination": dest,
		})
		return s.defaultQuote(settings, weightKg), nil
	}

	// Same-origin destination short-circuits to the same-CEP rule when one
	// is configured, regardless of priority.
	if origin == dest {
		for _, rule := range configs {
			if rule.RegionType == model.RegionSameCEP {
				return s.ruleQuote(rule, weightKg), nil
			}
		}
	}

	destState := s.originState(settings)
	if origin != dest {
		address, err := s.cepClient.Lookup(ctx, dest)
		if err != nil {
			logger.Warn("CEP lookup failed, using default quote", map[string]interface{}{
				"cep_destination": dest,
				"error":           err.Error(),
			})
			return s.defaultQuote(settings, weightKg), nil
		}
		destState = address.UF
	}

	for _, rule := range configs {
		if s.matches(rule, origin, dest, destState, s.originState(settings)) {
			logger.Debug("Shipping rule matched", map[string]interface{}{
				"cep_destination": dest,
				"rule":            rule.Name,
				"region_type":     rule.RegionType,
				"priority":        rule.Priority,
			})
			return s.ruleQuote(rule, weightKg), nil
		}
	}

	logger.Debug("No shipping rule matched, using default quote", map[string]interface{}{
		"cep_destination": dest,
		"dest_state":      destState,
	})
	return s.defaultQuote(settings, weightKg), nil
}

func (s *shippingService) matches(rule model.ShippingConfig, origin, dest, destState, originState string) bool {
	switch rule.RegionType {
	case model.RegionSameCEP:
		return origin == dest
	case model.RegionMetro:
		return destState == rule.StateCode &&
			destState == originState &&
			rule.CEPPrefix != "" &&
			strings.HasPrefix(dest, rule.CEPPrefix)
	case model.RegionStateInterior:
		return destState == originState && destState == rule.StateCode
	case model.RegionOtherStates:
		return destState != originState
	case model.RegionCustom:
		if rule.StateCode != "" && destState != rule.StateCode {
			return false
		}
		if rule.CEPPrefix != "" && !strings.HasPrefix(dest, rule.CEPPrefix) {
			return false
		}
		return true
	default:
		return false
	}
}

func (s *shippingService) ruleQuote(rule model.ShippingConfig, weightKg float64) *ShippingQuote {
	cost := rule.BaseCostCents
	if weightKg > rule.MinWeightKg && rule.WeightMultiplier > 0 {
		cost += int64(math.Round(float64(rule.BaseCostCents) * rule.WeightMultiplier * (weightKg - rule.MinWeightKg)))
	}
	return &ShippingQuote{
		CostCents:    cost,
		DeliveryDays: rule.DeliveryDays,
		ServiceName:  rule.Name,
		Source:       QuoteSourceDatabase,
	}
}

// defaultQuote applies the merchant default with a flat 10%-per-extra-kg
// surcharge over 1kg.
func (s *shippingService) defaultQuote(settings *model.ShippingSettings, weightKg float64) *ShippingQuote {
	cost := s.fallback.FallbackCostCents
	days := s.fallback.FallbackDeliveryDays
	if settings != nil {
		if settings.DefaultCostCents > 0 {
			cost = settings.DefaultCostCents
		}
		if settings.DefaultDeliveryDays > 0 {
			days = settings.DefaultDeliveryDays
		}
	}

	if weightKg > 1 {
		cost += int64(math.Round(float64(cost) * 0.10 * (weightKg - 1)))
	}

	return &ShippingQuote{
		CostCents:    cost,
		DeliveryDays: days,
		ServiceName:  defaultServiceName,
		Source:       QuoteSourceDefault,
	}
}

func (s *shippingService) originCEP(settings *model.ShippingSettings) string {
	if settings != nil && settings.OriginCEP != "" {
		return settings.OriginCEP
	}
	return s.fallback.OriginCEP
}

func (s *shippingService) originState(settings *model.ShippingSettings) string {
	if settings != nil && settings.OriginState != "" {
		return settings.OriginState
	}
	return s.fallback.OriginState
}

// ==================== admin ====================

func (s *shippingService) CreateConfig(shippingConfig *model.ShippingConfig) (*model.ShippingConfig, error) {
	if err := s.shippingRepo.CreateConfig(shippingConfig); err != nil {
		return nil, err
	}
	logger.Info("Shipping config created", map[string]interface{}{
		"config_id":   shippingConfig.ID,
		"name":        shippingConfig.Name,
		"region_type": shippingConfig.RegionType,
	})
	return shippingConfig, nil
}

func (s *shippingService) ListConfigs() ([]model.ShippingConfig, error) {
	return s.shippingRepo.FindAllConfigs()
}

func (s *shippingService) UpdateConfig(shippingConfig *model.ShippingConfig) (*model.ShippingConfig, error) {
	if _, err := s.shippingRepo.FindConfigByID(shippingConfig.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShippingConfigNotFound
		}
		return nil, err
	}
	if err := s.shippingRepo.UpdateConfig(shippingConfig); err != nil {
		return nil, err
	}
	return shippingConfig, nil
}

func (s *shippingService) DeleteConfig(id uint) error {
	if _, err := s.shippingRepo.FindConfigByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShippingConfigNotFound
		}
		return err
	}
	return s.shippingRepo.DeleteConfig(id)
}

func (s *shippingService) GetSettings() (*model.ShippingSettings, error) {
	return s.shippingRepo.GetSettings()
}

func (s *shippingService) UpdateSettings(settings *model.ShippingSettings) (*model.ShippingSettings, error) {
	normalized, err := util.NormalizeCEP(settings.OriginCEP)
	if err != nil {
		return nil, err
	}
	settings.OriginCEP = normalized

	if err := s.shippingRepo.UpdateSettings(settings); err != nil {
		return nil, err
	}

	logger.Info("Shipping settings updated", map[string]interface{}{
		"origin_cep":   settings.OriginCEP,
		"default_cost": settings.DefaultCostCents,
		"default_days": settings.DefaultDeliveryDays,
	})
	return settings, nil
}
