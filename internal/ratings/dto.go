package ratings

import (
	"time"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/google/uuid"
)

// SubmitInput is a buyer's rating of a product from one of their orders.
type SubmitInput struct {
	ProductID uuid.UUID
	OrderID   uuid.UUID
	Rating    int
	Review    string
}

// Reviewer identifies the buyer behind a rating.
type Reviewer struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// RatingDTO is the API shape of a rating.
type RatingDTO struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	BuyerID   uuid.UUID `json:"buyerId"`
	OrderID   uuid.UUID `json:"orderId"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review"`
	Buyer     *Reviewer `json:"buyer,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromModel(r *models.Rating) RatingDTO {
	return RatingDTO{
		ID:        r.ID,
		ProductID: r.ProductID,
		BuyerID:   r.BuyerID,
		OrderID:   r.OrderID,
		Rating:    r.Rating,
		Review:    r.Review,
		CreatedAt: r.CreatedAt,
	}
}
