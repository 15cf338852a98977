package model

import (
	"time"

	"gorm.io/gorm"
)

type Address struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Label      string         `gorm:"size:100;not null" json:"label"` // e.g. "Casa", "Trabalho"
	Recipient  string         `gorm:"size:100;not null" json:"recipient"`
	Phone      string         `gorm:"size:30" json:"phone"`
	CEP        string         `gorm:"size:8;not null" json:"cep"` // digits only
	Street     string         `gorm:"size:200;not null" json:"street"`
	Number     string         `gorm:"size:20;not null" json:"number"`
	Complement string         `gorm:"size:100" json:"complement"`
	District   string         `gorm:"size:100" json:"district"`
	City       string         `gorm:"size:100;not null" json:"city"`
	State      string         `gorm:"size:2;not null" json:"state"` // UF code
	IsDefault  bool           `gorm:"default:false" json:"is_default"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Address) TableName() string {
	return "addresses"
}
