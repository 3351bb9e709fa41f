package product

import (
	"strings"
	"time"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the API shape of a product.
type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	ShopID        uuid.UUID       `json:"shopId"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	ImageURL      string          `json:"imageUrl"`
	Category      string          `json:"category"`
	AverageRating float64         `json:"averageRating"`
	TotalRatings  int             `json:"totalRatings"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ProductPage is a paginated listing.
type ProductPage struct {
	Products   []ProductDTO    `json:"products"`
	Pagination pagination.Meta `json:"pagination"`
}

// CreateProductInput carries the fields a vendor supplies for a new listing.
// ShopID nil selects the vendor's most recent shop.
type CreateProductInput struct {
	ShopID      *uuid.UUID
	Title       string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
	Category    string
}

// UpdateProductInput captures the mutable product fields.
type UpdateProductInput struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	ImageURL    *string
	Category    *string
}

func FromModel(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:            p.ID,
		ShopID:        p.ShopID,
		Title:         p.Title,
		Description:   p.Description,
		Price:         p.Price,
		Stock:         p.Stock,
		ImageURL:      p.ImageURL,
		Category:      p.Category,
		AverageRating: p.AverageRating,
		TotalRatings:  p.TotalRatings,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func FromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

func (in CreateProductInput) toModel(shopID uuid.UUID) *models.Product {
	return &models.Product{
		ShopID:      shopID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price.Round(2),
		Stock:       in.Stock,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Category:    strings.TrimSpace(in.Category),
	}
}

// changes maps the set fields of in to their columns. Stock is an absolute
// value chosen by the vendor; rating aggregates are never part of an edit.
func (in UpdateProductInput) changes() map[string]any {
	out := map[string]any{}
	if in.Title != nil {
		out["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		out["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		out["price"] = in.Price.Round(2)
	}
	if in.Stock != nil {
		out["stock"] = *in.Stock
	}
	if in.ImageURL != nil {
		out["image_url"] = strings.TrimSpace(*in.ImageURL)
	}
	if in.Category != nil {
		out["category"] = strings.TrimSpace(*in.Category)
	}
	return out
}
