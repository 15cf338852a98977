package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string
type PaymentStatus string
type DeliveryType string

const (
	OrderStatusPending    OrderStatus = "pending"    // awaiting payment
	OrderStatusConfirmed  OrderStatus = "confirmed"  // paid, queued for production
	OrderStatusProduction OrderStatus = "production" // being built
	OrderStatusShipping   OrderStatus = "shipping"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"

	DeliveryStandard DeliveryType = "standard"
	DeliveryPickup   DeliveryType = "pickup" // pickup at the workshop
)

type Order struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	OrderNumber       string         `gorm:"uniqueIndex;size:20;not null" json:"order_number"`
	UserID            *uint          `gorm:"index" json:"user_id,omitempty"` // nil for guest checkout
	CustomerName      string         `gorm:"size:100;not null" json:"customer_name"`
	CustomerEmail     string         `gorm:"size:200;not null;index" json:"customer_email"`
	CustomerPhone     string         `gorm:"size:30" json:"customer_phone"`
	SubtotalCents     int64          `gorm:"not null" json:"subtotal_cents"`
	ShippingCents     int64          `gorm:"not null" json:"shipping_cents"`
	TotalCents        int64          `gorm:"not null" json:"total_cents"`
	ShippingService   string         `gorm:"size:100" json:"shipping_service"`
	ShippingSource    string         `gorm:"size:20" json:"shipping_source"` // database or default
	DeliveryDays      int            `json:"delivery_days"`
	DeliveryType      DeliveryType   `gorm:"type:varchar(20);default:'standard'" json:"delivery_type"`
	Status            OrderStatus    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaymentStatus     PaymentStatus  `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`
	PaymentProvider   string         `gorm:"type:varchar(50)" json:"payment_provider,omitempty"`
	StripeSessionID   string         `gorm:"type:varchar(255);index" json:"stripe_session_id,omitempty"`
	StripeIntentID    string         `gorm:"type:varchar(255)" json:"stripe_intent_id,omitempty"`
	ReceiptURL        string         `gorm:"type:text" json:"receipt_url,omitempty"`
	PaymentApprovedAt *time.Time     `json:"payment_approved_at,omitempty"`
	ShippingCEP       string         `gorm:"size:8" json:"shipping_cep"`
	ShippingAddress   string         `gorm:"type:text" json:"shipping_address"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID                       uint           `gorm:"primarykey" json:"id"`
	OrderID                  uint           `gorm:"not null;index" json:"order_id"`
	ProductID                uint           `gorm:"not null;index" json:"product_id"`
	ProductName              string         `gorm:"size:200;not null" json:"product_name"` // snapshot at order time
	Quantity                 int            `gorm:"not null" json:"quantity"`
	UnitPriceCents           int64          `gorm:"not null" json:"unit_price_cents"`
	PersonalizationImageURL  string         `gorm:"type:text" json:"personalization_image_url,omitempty"`
	PersonalizationImagePath string         `gorm:"type:text" json:"personalization_image_path,omitempty"`
	PersonalizationNote      string         `gorm:"size:500" json:"personalization_note,omitempty"`
	CreatedAt                time.Time      `json:"created_at"`
	DeletedAt                gorm.DeletedAt `gorm:"index" json:"-"`

	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
