package ratings

import (
	"context"
	"fmt"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists product ratings.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithTx inserts a rating; the (product, buyer) unique key rejects a
// second rating from the same buyer.
func (r *Repository) CreateWithTx(ctx context.Context, tx *gorm.DB, rating *models.Rating) error {
	if rating == nil {
		return fmt.Errorf("rating is required")
	}
	return tx.WithContext(ctx).Create(rating).Error
}

// ExistsWithTx reports whether buyerID already rated productID.
func (r *Repository) ExistsWithTx(ctx context.Context, tx *gorm.DB, productID, buyerID uuid.UUID) (bool, error) {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&models.Rating{}).
		Where("product_id = ? AND buyer_id = ?", productID, buyerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByProduct returns a product's ratings, newest first.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Rating, error) {
	var rows []models.Rating
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
