package model

import (
	"time"

	"gorm.io/gorm"
)

// RegionType is the closed set of predicate shapes a shipping rule can use.
type RegionType string

const (
	RegionSameCEP       RegionType = "same_cep"       // destination equals the origin CEP
	RegionMetro         RegionType = "metro_region"   // origin state + CEP prefix
	RegionStateInterior RegionType = "state_interior" // same state, outside the metro prefix
	RegionOtherStates   RegionType = "other_states"
	RegionCustom        RegionType = "custom" // optional state and/or prefix match
)

// ShippingConfig is an administrator-authored shipping rule. Rules are
// evaluated in descending priority order; the first match wins.
type ShippingConfig struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	Name             string         `gorm:"size:100;not null" json:"name"`
	RegionType       RegionType     `gorm:"type:varchar(30);not null" json:"region_type"`
	StateCode        string         `gorm:"size:2" json:"state_code"`
	CEPPrefix        string         `gorm:"size:8" json:"cep_prefix"`
	BaseCostCents    int64          `gorm:"not null" json:"base_cost_cents"`
	DeliveryDays     int            `gorm:"not null" json:"delivery_days"`
	WeightMultiplier float64        `gorm:"default:0" json:"weight_multiplier"` // extra cost fraction per kg over MinWeightKg
	MinWeightKg      float64        `gorm:"default:0" json:"min_weight_kg"`
	IsActive         bool           `gorm:"default:true" json:"is_active"`
	Priority         int            `gorm:"default:0;index" json:"priority"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ShippingConfig) TableName() string {
	return "shipping_configs"
}

// ShippingSettings is the merchant-wide singleton: workshop origin and the
// fallback quote used when no rule matches.
type ShippingSettings struct {
	ID                  uint      `gorm:"primarykey" json:"id"`
	OriginCEP           string    `gorm:"size:8;not null" json:"origin_cep"`
	OriginState         string    `gorm:"size:2;not null" json:"origin_state"`
	OriginCity          string    `gorm:"size:100" json:"origin_city"`
	OriginAddress       string    `gorm:"type:text" json:"origin_address"`
	DefaultCostCents    int64     `gorm:"not null" json:"default_cost_cents"`
	DefaultDeliveryDays int       `gorm:"not null" json:"default_delivery_days"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (ShippingSettings) TableName() string {
	return "shipping_settings"
}
