package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a listing owned by a single shop.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID        uuid.UUID       `gorm:"column:shop_id;type:uuid;not null"`
	Title         string          `gorm:"column:title;not null"`
	Description   string          `gorm:"column:description;not null;default:''"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock         int             `gorm:"column:stock;not null;default:0"`
	ImageURL      string          `gorm:"column:image_url;not null;default:''"`
	Category      string          `gorm:"column:category;not null;default:''"`
	AverageRating float64         `gorm:"column:average_rating;not null;default:0"`
	TotalRatings  int             `gorm:"column:total_ratings;not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
