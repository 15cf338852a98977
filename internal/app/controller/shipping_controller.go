package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/service"
	apperrors "github.com/lumeatelie/lume-backend/internal/errors"
	"github.com/lumeatelie/lume-backend/internal/middleware"
	"github.com/lumeatelie/lume-backend/pkg/util"
)

type ShippingController struct {
	shippingService service.ShippingService
}

func NewShippingController(shippingService service.ShippingService) *ShippingController {
	return &ShippingController{shippingService: shippingService}
}

type EstimateRequest struct {
	CEPDestination string  `json:"cep_destination" binding:"required"`
	Weight         float64 `json:"weight" binding:"required,gt=0"`
	Length         float64 `json:"length"`
	Height         float64 `json:"height"`
	Width          float64 `json:"width"`
}

type ShippingConfigRequest struct {
	Name             string           `json:"name" binding:"required"`
	RegionType       model.RegionType `json:"region_type" binding:"required"`
	StateCode        string           `json:"state_code"`
	CEPPrefix        string           `json:"cep_prefix"`
	BaseCostCents    int64            `json:"base_cost_cents" binding:"required,gt=0"`
	DeliveryDays     int              `json:"delivery_days" binding:"required,gt=0"`
	WeightMultiplier float64          `json:"weight_multiplier"`
	MinWeightKg      float64          `json:"min_weight_kg"`
	IsActive         *bool            `json:"is_active"`
	Priority         int              `json:"priority"`
}

type ShippingSettingsRequest struct {
	OriginCEP           string `json:"origin_cep" binding:"required"`
	OriginState         string `json:"origin_state" binding:"required,len=2"`
	OriginCity          string `json:"origin_city"`
	OriginAddress       string `json:"origin_address"`
	DefaultCostCents    int64  `json:"default_cost_cents" binding:"required,gt=0"`
	DefaultDeliveryDays int    `json:"default_delivery_days" binding:"required,gt=0"`
}

// Estimate quotes shipping for a destination CEP and package weight.
// Dimensions are accepted for forward compatibility but do not affect the
// quote today.
// POST /api/v1/shipping/estimate
func (ctrl *ShippingController) Estimate(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dados de frete inválidos")
		return
	}

	quote, err := ctrl.shippingService.Estimate(c.Request.Context(), req.CEPDestination, req.Weight)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCEP) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidCEP, "CEP inválido")
			return
		}
		log.Error("Failed to estimate shipping", err, map[string]interface{}{
			"cep_destination": req.CEPDestination,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cep_destination": req.CEPDestination,
		"cost_cents":      quote.CostCents,
		"delivery_days":   quote.DeliveryDays,
		"service_name":    quote.ServiceName,
		"source":          quote.Source,
	})
}

// ListConfigs returns every shipping rule, active or not
// GET /api/v1/admin/shipping/configs
func (ctrl *ShippingController) ListConfigs(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	configs, err := ctrl.shippingService.ListConfigs()
	if err != nil {
		log.Error("Failed to list shipping configs", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"configs": configs, "total": len(configs)})
}

// CreateConfig adds a shipping rule
// POST /api/v1/admin/shipping/configs
func (ctrl *ShippingController) CreateConfig(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ShippingConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dados da regra de frete inválidos")
		return
	}

	created, err := ctrl.shippingService.CreateConfig(reqToShippingConfig(&req))
	if err != nil {
		log.Error("Failed to create shipping config", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateConfig rewrites a shipping rule
// PUT /api/v1/admin/shipping/configs/:id
func (ctrl *ShippingController) UpdateConfig(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID inválido")
		return
	}

	var req ShippingConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dados da regra de frete inválidos")
		return
	}

	shippingConfig := reqToShippingConfig(&req)
	shippingConfig.ID = uint(id)

	updated, err := ctrl.shippingService.UpdateConfig(shippingConfig)
	if err != nil {
		if errors.Is(err, service.ErrShippingConfigNotFound) {
			apperrors.NotFound(c, apperrors.ShippingConfigNotFound, "Regra de frete não encontrada")
			return
		}
		log.Error("Failed to update shipping config", err, map[string]interface{}{
			"config_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteConfig removes a shipping rule
// DELETE /api/v1/admin/shipping/configs/:id
func (ctrl *ShippingController) DeleteConfig(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID inválido")
		return
	}

	if err := ctrl.shippingService.DeleteConfig(uint(id)); err != nil {
		if errors.Is(err, service.ErrShippingConfigNotFound) {
			apperrors.NotFound(c, apperrors.ShippingConfigNotFound, "Regra de frete não encontrada")
			return
		}
		log.Error("Failed to delete shipping config", err, map[string]interface{}{
			"config_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Regra de frete removida"})
}

// GetSettings returns the workshop origin and fallback quote
// GET /api/v1/admin/shipping/settings
func (ctrl *ShippingController) GetSettings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	settings, err := ctrl.shippingService.GetSettings()
	if err != nil {
		log.Error("Failed to fetch shipping settings", err)
		apperrors.InternalError(c, "")
		return
	}
	if settings == nil {
		apperrors.NotFound(c, apperrors.ShippingSettingsMissing, "Configurações de frete não cadastradas")
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings rewrites the workshop origin and fallback quote
// PUT /api/v1/admin/shipping/settings
func (ctrl *ShippingController) UpdateSettings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ShippingSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dados de configuração de frete inválidos")
		return
	}

	updated, err := ctrl.shippingService.UpdateSettings(&model.ShippingSettings{
		OriginCEP:           req.OriginCEP,
		OriginState:         req.OriginState,
		OriginCity:          req.OriginCity,
		OriginAddress:       req.OriginAddress,
		DefaultCostCents:    req.DefaultCostCents,
		DefaultDeliveryDays: req.DefaultDeliveryDays,
	})
	if err != nil {
		if errors.Is(err, util.ErrInvalidCEP) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidCEP, "CEP de origem inválido")
			return
		}
		log.Error("Failed to update shipping settings", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, updated)
}

func reqToShippingConfig(req *ShippingConfigRequest) *model.ShippingConfig {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	return &model.ShippingConfig{
		Name:             req.Name,
		RegionType:       req.RegionType,
		StateCode:        req.StateCode,
		CEPPrefix:        req.CEPPrefix,
		BaseCostCents:    req.BaseCostCents,
		DeliveryDays:     req.DeliveryDays,
		WeightMultiplier: req.WeightMultiplier,
		MinWeightKg:      req.MinWeightKg,
		IsActive:         isActive,
		Priority:         req.Priority,
	}
}
