package shops

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	product "github.com/angelmondragon/marketplace-backend/internal/products"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
)

// ShopDTO is the API shape of a vendor shop.
type ShopDTO struct {
	ID                 uuid.UUID       `json:"id"`
	OwnerID            uuid.UUID       `json:"ownerId"`
	ShopName           string          `json:"shopName"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	Categories         []string        `json:"categories"`
	Country            string          `json:"country"`
	LogoURL            string          `json:"logoUrl"`
	BannerURL          string          `json:"bannerUrl"`
	Address            string          `json:"address"`
	ContactEmail       string          `json:"contactEmail"`
	ContactPhone       string          `json:"contactPhone"`
	AverageRating      float64         `json:"averageRating"`
	TotalRatings       int             `json:"totalRatings"`
	OnboardingComplete bool            `json:"onboardingComplete"`
	TotalEarnings      decimal.Decimal `json:"totalEarnings"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// PublicShopDTO is a shop page: the shop and its listings.
type PublicShopDTO struct {
	Shop     ShopDTO              `json:"shop"`
	Products []product.ProductDTO `json:"products"`
}

// ShopInput carries the fields accepted when creating or re-submitting a shop.
type ShopInput struct {
	ShopName     string
	Description  string
	Category     string
	Categories   []string
	Country      string
	LogoURL      string
	BannerURL    string
	Address      string
	ContactEmail string
	ContactPhone string
}

// UpdateShopInput captures the mutable shop fields.
type UpdateShopInput struct {
	ShopName     *string
	Description  *string
	Category     *string
	Categories   *[]string
	Country      *string
	LogoURL      *string
	BannerURL    *string
	Address      *string
	ContactEmail *string
	ContactPhone *string
}

func FromModel(s *models.Shop) ShopDTO {
	categories := append([]string{}, []string(s.Categories)...)
	return ShopDTO{
		ID:                 s.ID,
		OwnerID:            s.OwnerID,
		ShopName:           s.ShopName,
		Description:        s.Description,
		Category:           s.Category,
		Categories:         categories,
		Country:            s.Country,
		LogoURL:            s.LogoURL,
		BannerURL:          s.BannerURL,
		Address:            s.Address,
		ContactEmail:       s.ContactEmail,
		ContactPhone:       s.ContactPhone,
		AverageRating:      s.AverageRating,
		TotalRatings:       s.TotalRatings,
		OnboardingComplete: s.OnboardingComplete,
		TotalEarnings:      s.TotalEarnings,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func FromModels(rows []models.Shop) []ShopDTO {
	out := make([]ShopDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

// NewShopModel builds an onboarded shop for ownerID from input.
func NewShopModel(ownerID uuid.UUID, input ShopInput) *models.Shop {
	shop := &models.Shop{OwnerID: ownerID}
	applyShopInput(shop, input)
	return shop
}

func applyShopInput(shop *models.Shop, in ShopInput) {
	shop.ShopName = strings.TrimSpace(in.ShopName)
	shop.Description = strings.TrimSpace(in.Description)
	shop.Category = strings.TrimSpace(in.Category)
	shop.Categories = cleanCategories(in.Categories)
	shop.Country = strings.TrimSpace(in.Country)
	if shop.Country == "" {
		shop.Country = models.DefaultShopCountry
	}
	shop.LogoURL = strings.TrimSpace(in.LogoURL)
	shop.BannerURL = strings.TrimSpace(in.BannerURL)
	shop.Address = strings.TrimSpace(in.Address)
	shop.ContactEmail = strings.TrimSpace(in.ContactEmail)
	shop.ContactPhone = strings.TrimSpace(in.ContactPhone)
	shop.OnboardingComplete = true
}

func applyShopUpdate(shop *models.Shop, in UpdateShopInput) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&shop.ShopName, in.ShopName)
	set(&shop.Description, in.Description)
	set(&shop.Category, in.Category)
	set(&shop.Country, in.Country)
	set(&shop.LogoURL, in.LogoURL)
	set(&shop.BannerURL, in.BannerURL)
	set(&shop.Address, in.Address)
	set(&shop.ContactEmail, in.ContactEmail)
	set(&shop.ContactPhone, in.ContactPhone)
	if in.Categories != nil {
		shop.Categories = cleanCategories(*in.Categories)
	}
	if shop.Country == "" {
		shop.Country = models.DefaultShopCountry
	}
}

func cleanCategories(in []string) pq.StringArray {
	out := pq.StringArray{}
	seen := map[string]struct{}{}
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
