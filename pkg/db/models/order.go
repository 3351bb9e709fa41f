package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// Order is a single-shop purchase. Totals are fixed at placement.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID         uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null"`
	ShopID          uuid.UUID         `gorm:"column:shop_id;type:uuid;not null"`
	ShippingAddress string            `gorm:"column:shipping_address;not null"`
	TotalAmount     decimal.Decimal   `gorm:"column:total_amount;type:numeric(14,2);not null"`
	VendorEarning   decimal.Decimal   `gorm:"column:vendor_earning;type:numeric(14,2);not null"`
	AdminCommission decimal.Decimal   `gorm:"column:admin_commission;type:numeric(14,2);not null"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:pending"`
	Items           []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderLineItem snapshots product, quantity and unit price at order time.
type OrderLineItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Title     string          `gorm:"column:title;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (l *OrderLineItem) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

// Commission is the platform's cut of exactly one order.
type Commission struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID       `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	ShopID           uuid.UUID       `gorm:"column:shop_id;type:uuid;not null"`
	TotalAmount      decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2);not null"`
	VendorEarning    decimal.Decimal `gorm:"column:vendor_earning;type:numeric(14,2);not null"`
	CommissionAmount decimal.Decimal `gorm:"column:commission_amount;type:numeric(14,2);not null"`
	Rate             decimal.Decimal `gorm:"column:rate;type:numeric(5,4);not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (c *Commission) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
