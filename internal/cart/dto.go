package cart

import (
	"time"

	product "github.com/angelmondragon/marketplace-backend/internal/products"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemDTO is a stored cart row.
type ItemDTO struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"productId"`
	Quantity   int             `json:"quantity"`
	PriceAtAdd decimal.Decimal `json:"priceAtAdd"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// LineDTO is a cart row with the live product attached.
type LineDTO struct {
	ItemDTO
	Product product.ProductDTO `json:"product"`
}

// CartDTO is the buyer's cart as returned by ListCart.
type CartDTO struct {
	Items    []LineDTO       `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func itemFromModel(m *models.CartItem) ItemDTO {
	return ItemDTO{
		ID:         m.ID,
		ProductID:  m.ProductID,
		Quantity:   m.Quantity,
		PriceAtAdd: m.PriceAtAdd,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
