package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles product persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListFilter narrows product listings. Zero values disable a filter; a
// non-nil empty ShopIDs matches nothing.
type ListFilter struct {
	Category string
	ShopIDs  []uuid.UUID
}

func (f ListFilter) apply(q *gorm.DB) *gorm.DB {
	if category := strings.TrimSpace(f.Category); category != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	if f.ShopIDs != nil {
		if len(f.ShopIDs) == 0 {
			return q.Where("1 = 0")
		}
		q = q.Where("shop_id IN ?", f.ShopIDs)
	}
	return q
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	if product == nil {
		return fmt.Errorf("product is required")
	}
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return r.FindByIDWithTx(ctx, r.db, id)
}

// FindByIDWithTx loads a product using the provided transaction.
func (r *Repository) FindByIDWithTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := tx.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs returns the products that still exist, keyed by id.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// List returns one page of products, newest first, with the unpaged total.
func (r *Repository) List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.Product, int64, error) {
	page = page.Normalize()

	var total int64
	if err := filter.apply(r.db.WithContext(ctx).Model(&models.Product{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	if err := filter.apply(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAll returns every product matching filter, newest first.
func (r *Repository) ListAll(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	var rows []models.Product
	if err := filter.apply(r.db.WithContext(ctx)).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateFields writes only the given columns of one product, leaving stock
// and rating counters maintained elsewhere untouched unless named.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStockWithTx removes qty units only while enough stock remains.
// It reports false when the guard rejected the write.
func (r *Repository) DecrementStockWithTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

const productRatingAggregates = `
	average_rating = COALESCE((SELECT AVG(rating) FROM ratings WHERE ratings.product_id = products.id), 0),
	total_ratings = (SELECT COUNT(*) FROM ratings WHERE ratings.product_id = products.id)`

// RecomputeRatingWithTx rebuilds average_rating and total_ratings for one
// product from every stored rating.
func (r *Repository) RecomputeRatingWithTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return tx.WithContext(ctx).
		Exec("UPDATE products SET"+productRatingAggregates+" WHERE id = ?", id).Error
}

// ReconcileRatings rebuilds the rating aggregates of every product.
func (r *Repository) ReconcileRatings(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec("UPDATE products SET" + productRatingAggregates)
	return res.RowsAffected, res.Error
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
