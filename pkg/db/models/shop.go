package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const DefaultShopCountry = "India"

// Shop is a vendor storefront. One user may own several; (owner, name) is unique.
type Shop struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID            uuid.UUID       `gorm:"column:owner_id;type:uuid;not null"`
	ShopName           string          `gorm:"column:shop_name;not null"`
	Description        string          `gorm:"column:description;not null;default:''"`
	Category           string          `gorm:"column:category;not null;default:''"`
	Categories         pq.StringArray  `gorm:"column:categories;type:text[];not null;default:'{}'"`
	Country            string          `gorm:"column:country;not null;default:India"`
	LogoURL            string          `gorm:"column:logo_url;not null;default:''"`
	BannerURL          string          `gorm:"column:banner_url;not null;default:''"`
	Address            string          `gorm:"column:address;not null;default:''"`
	ContactEmail       string          `gorm:"column:contact_email;not null;default:''"`
	ContactPhone       string          `gorm:"column:contact_phone;not null;default:''"`
	AverageRating      float64         `gorm:"column:average_rating;not null;default:0"`
	TotalRatings       int             `gorm:"column:total_ratings;not null;default:0"`
	OnboardingComplete bool            `gorm:"column:onboarding_complete;not null;default:false"`
	TotalEarnings      decimal.Decimal `gorm:"column:total_earnings;type:numeric(14,2);not null;default:0"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Shop) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	if s.Country == "" {
		s.Country = DefaultShopCountry
	}
	if s.Categories == nil {
		s.Categories = pq.StringArray{}
	}
	return nil
}
