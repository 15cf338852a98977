package model

import (
	"time"

	"gorm.io/gorm"
)

type WoodType string

const (
	WoodPinus     WoodType = "pinus"
	WoodEucalipto WoodType = "eucalipto"
	WoodImbuia    WoodType = "imbuia"
	WoodPeroba    WoodType = "peroba"
	WoodMDF       WoodType = "mdf"
)

// Product is a made-to-order catalog entry. There is no stock tracking:
// every piece is produced after the order, so availability is expressed as
// a production lead time instead of a quantity.
type Product struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	Name           string         `gorm:"not null" json:"name"`
	Slug           string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description    string         `gorm:"type:text" json:"description"`
	PriceCents     int64          `gorm:"not null" json:"price_cents"`
	WeightKg       float64        `json:"weight_kg"`
	LengthCm       float64        `json:"length_cm"`
	HeightCm       float64        `json:"height_cm"`
	WidthCm        float64        `json:"width_cm"`
	Wood           WoodType       `gorm:"type:varchar(30)" json:"wood"`
	LeadTimeDays   int            `gorm:"default:15" json:"lead_time_days"`
	Personalizable bool           `gorm:"default:false" json:"personalizable"`
	ImageURL       string         `json:"image_url"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	OrderItems []OrderItem `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
