package cart

import (
	"context"
	"fmt"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistent cart items keyed by (buyer, product).
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, item *models.CartItem) error {
	if item == nil {
		return fmt.Errorf("cart item is required")
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// Find loads the buyer's row for productID.
func (r *Repository) Find(ctx context.Context, buyerID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByBuyer returns the buyer's cart, oldest addition first.
func (r *Repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// IncrementQuantity adds qty to an existing row in one statement and reports
// whether a row matched.
func (r *Repository) IncrementQuantity(ctx context.Context, buyerID, productID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetQuantity overwrites the quantity of an existing row.
func (r *Repository) SetQuantity(ctx context.Context, buyerID, productID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		Update("quantity", qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the buyer's row for productID, reporting whether one existed.
func (r *Repository) Delete(ctx context.Context, buyerID, productID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteByIDs removes rows by primary key.
func (r *Repository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.CartItem{}).Error
}

// Clear empties the buyer's cart.
func (r *Repository) Clear(ctx context.Context, buyerID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("buyer_id = ?", buyerID).Delete(&models.CartItem{}).Error
}

// DeleteProductsWithTx removes the purchased products from the buyer's cart.
func (r *Repository) DeleteProductsWithTx(ctx context.Context, tx *gorm.DB, buyerID uuid.UUID, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	return tx.WithContext(ctx).
		Where("buyer_id = ? AND product_id IN ?", buyerID, productIDs).
		Delete(&models.CartItem{}).Error
}
