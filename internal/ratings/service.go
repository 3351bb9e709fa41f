package ratings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgdb "github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ratingRepository interface {
	CreateWithTx(ctx context.Context, tx *gorm.DB, rating *models.Rating) error
	ExistsWithTx(ctx context.Context, tx *gorm.DB, productID, buyerID uuid.UUID) (bool, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Rating, error)
}

type orderReader interface {
	FindByIDWithTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Order, error)
}

type ratingAggregator interface {
	RecomputeRatingWithTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error
}

type userLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

// Service records and lists product ratings.
type Service interface {
	SubmitRating(ctx context.Context, buyerID uuid.UUID, input SubmitInput) (*RatingDTO, error)
	ListProductRatings(ctx context.Context, productID uuid.UUID) ([]RatingDTO, error)
}

type service struct {
	tx       txRunner
	repo     ratingRepository
	orders   orderReader
	products ratingAggregator
	users    userLookup
	logg     *logger.Logger
}

func NewService(tx txRunner, repo ratingRepository, orders orderReader, products ratingAggregator, users userLookup, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("rating repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{tx: tx, repo: repo, orders: orders, products: products, users: users, logg: logg}, nil
}

var errDuplicateRating = pkgerrors.New(pkgerrors.CodeDuplicateRating, "You have already rated this product")

// SubmitRating stores one rating per (buyer, product) for a product the buyer
// ordered and recomputes the product aggregates from every stored rating.
func (s *service) SubmitRating(ctx context.Context, buyerID uuid.UUID, input SubmitInput) (*RatingDTO, error) {
	if input.Rating < MinRating || input.Rating > MaxRating {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Rating must be between 1 and 5")
	}

	rating := &models.Rating{
		ProductID: input.ProductID,
		BuyerID:   buyerID,
		OrderID:   input.OrderID,
		Rating:    input.Rating,
		Review:    strings.TrimSpace(input.Review),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.orders.FindByIDWithTx(ctx, tx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
			}
			return err
		}
		if order.BuyerID != buyerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized")
		}
		if !orderContains(order, input.ProductID) {
			return pkgerrors.New(pkgerrors.CodeInvalidRating, "Product not in this order")
		}

		exists, err := s.repo.ExistsWithTx(ctx, tx, input.ProductID, buyerID)
		if err != nil {
			return err
		}
		if exists {
			return errDuplicateRating
		}
		if err := s.repo.CreateWithTx(ctx, tx, rating); err != nil {
			if pkgdb.IsUniqueViolation(err, "") {
				return errDuplicateRating
			}
			return err
		}
		return s.products.RecomputeRatingWithTx(ctx, tx, input.ProductID)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit rating")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"rating_id":  rating.ID.String(),
		"product_id": rating.ProductID.String(),
	}), "rating.submitted")
	dto := FromModel(rating)
	return &dto, nil
}

func (s *service) ListProductRatings(ctx context.Context, productID uuid.UUID) ([]RatingDTO, error) {
	rows, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ratings")
	}

	buyerIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		buyerIDs = append(buyerIDs, r.BuyerID)
	}
	buyers, err := s.users.FindByIDs(ctx, buyerIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reviewers")
	}

	out := make([]RatingDTO, 0, len(rows))
	for i := range rows {
		dto := FromModel(&rows[i])
		if u, ok := buyers[rows[i].BuyerID]; ok {
			dto.Buyer = &Reviewer{ID: u.ID, Username: u.Username}
		}
		out = append(out, dto)
	}
	return out, nil
}

func orderContains(order *models.Order, productID uuid.UUID) bool {
	for _, item := range order.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
