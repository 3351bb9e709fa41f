package ratings

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/api/controllers/actor"
	"github.com/angelmondragon/marketplace-backend/api/responses"
	"github.com/angelmondragon/marketplace-backend/api/validators"
	internalratings "github.com/angelmondragon/marketplace-backend/internal/ratings"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

const maxReviewLength = 2000

type submitRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	OrderID   uuid.UUID `json:"orderId" validate:"required"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review"`
}

// Submit records a buyer's rating for a product from one of their orders.
func Submit(svc internalratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := actor.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload submitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rating, err := svc.SubmitRating(r.Context(), buyerID, internalratings.SubmitInput{
			ProductID: payload.ProductID,
			OrderID:   payload.OrderID,
			Rating:    payload.Rating,
			Review:    validators.SanitizeString(payload.Review, maxReviewLength),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rating)
	}
}

func ListForProduct(svc internalratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListProductRatings(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
