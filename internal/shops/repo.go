package shops

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository handles shop persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to shop operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new shop row.
func (r *Repository) Create(ctx context.Context, shop *models.Shop) error {
	return r.CreateWithTx(ctx, r.db, shop)
}

// CreateWithTx persists a new shop using the provided transaction.
func (r *Repository) CreateWithTx(ctx context.Context, tx *gorm.DB, shop *models.Shop) error {
	if shop == nil {
		return fmt.Errorf("shop is required")
	}
	return tx.WithContext(ctx).Create(shop).Error
}

// FindByID loads a shop by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// FindByIDs returns shops keyed by id. Missing ids are skipped.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Shop, error) {
	out := make(map[uuid.UUID]models.Shop, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Shop
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, s := range rows {
		out[s.ID] = s
	}
	return out, nil
}

// FindByOwnerAndName loads the shop identified by the (owner, name) key.
func (r *Repository) FindByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND shop_name = ?", ownerID, name).
		First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// ListByOwner returns all shops owned by the provided user, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Shop, error) {
	var shops []models.Shop
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

// LatestByOwner returns the owner's most recently created shop.
func (r *Repository) LatestByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// OwnedIDs lists the ids of every shop owned by ownerID.
func (r *Repository) OwnedIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	if err := r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("owner_id = ?", ownerID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListPublic returns onboarded shops, optionally filtered by category.
func (r *Repository) ListPublic(ctx context.Context, category string) ([]models.Shop, error) {
	q := r.db.WithContext(ctx).Where("onboarding_complete = ?", true)
	if c := strings.TrimSpace(category); c != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(c))
	}
	var shops []models.Shop
	if err := q.Order("created_at DESC").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

// ListAll returns every shop ordered by name.
func (r *Repository) ListAll(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	if err := r.db.WithContext(ctx).Order("shop_name ASC").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

// profileColumns are the vendor-editable columns. Earnings and rating
// aggregates are maintained by their own statements.
var profileColumns = []string{
	"shop_name", "description", "category", "categories", "country",
	"logo_url", "banner_url", "address", "contact_email", "contact_phone",
	"onboarding_complete", "updated_at",
}

// Update writes the profile columns of shop and reloads it so counters
// changed concurrently are reported as stored.
func (r *Repository) Update(ctx context.Context, shop *models.Shop) error {
	if shop == nil {
		return fmt.Errorf("shop is required")
	}
	db := r.db.WithContext(ctx)
	res := db.Model(shop).Select(profileColumns).Updates(shop)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return db.First(shop, "id = ?", shop.ID).Error
}

// IncrementEarningsWithTx adds amount to total_earnings in a single statement.
func (r *Repository) IncrementEarningsWithTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	res := tx.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", id).
		UpdateColumn("total_earnings", gorm.Expr("total_earnings + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Shop{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ReconcileEarnings rebuilds total_earnings of every shop from its orders.
func (r *Repository) ReconcileEarnings(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE shops SET total_earnings =
			COALESCE((SELECT SUM(vendor_earning) FROM orders WHERE orders.shop_id = shops.id), 0)`)
	return res.RowsAffected, res.Error
}

// ReconcileRatings rebuilds each shop's rating aggregates over the ratings
// of its products.
func (r *Repository) ReconcileRatings(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE shops SET
			average_rating = COALESCE((
				SELECT AVG(ratings.rating) FROM ratings
				JOIN products ON products.id = ratings.product_id
				WHERE products.shop_id = shops.id), 0),
			total_ratings = (
				SELECT COUNT(*) FROM ratings
				JOIN products ON products.id = ratings.product_id
				WHERE products.shop_id = shops.id)`)
	return res.RowsAffected, res.Error
}
