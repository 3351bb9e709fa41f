package orders

import (
	"context"
	"fmt"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository persists orders, their line items and commission records.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithTx inserts the order together with its line items.
func (r *Repository) CreateWithTx(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}
	return tx.WithContext(ctx).Create(order).Error
}

// CreateCommissionWithTx inserts the commission record for an order.
func (r *Repository) CreateCommissionWithTx(ctx context.Context, tx *gorm.DB, commission *models.Commission) error {
	if commission == nil {
		return fmt.Errorf("commission is required")
	}
	return tx.WithContext(ctx).Create(commission).Error
}

// FindByID loads an order with its line items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDWithTx loads an order with its line items inside tx.
func (r *Repository) FindByIDWithTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := tx.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByBuyer returns the buyer's orders, newest first.
func (r *Repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByShops returns orders placed against any of shopIDs, newest first.
func (r *Repository) ListByShops(ctx context.Context, shopIDs []uuid.UUID) ([]models.Order, error) {
	rows := []models.Order{}
	if len(shopIDs) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("shop_id IN ?", shopIDs).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus moves the order from one status to another only while it is
// still in from. It reports false when the order had already moved on.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListCommissions returns every commission record, newest first.
func (r *Repository) ListCommissions(ctx context.Context) ([]models.Commission, error) {
	var rows []models.Commission
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindCommissionByOrder loads the commission record linked to orderID.
func (r *Repository) FindCommissionByOrder(ctx context.Context, orderID uuid.UUID) (*models.Commission, error) {
	var c models.Commission
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Totals aggregates every order.
type Totals struct {
	Orders     int64           `gorm:"column:orders"`
	Revenue    decimal.Decimal `gorm:"column:revenue"`
	Commission decimal.Decimal `gorm:"column:commission"`
}

func (r *Repository) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS revenue, COALESCE(SUM(admin_commission), 0) AS commission").
		Scan(&t).Error
	return t, err
}

// ShopTotals aggregates the orders of one shop.
type ShopTotals struct {
	ShopID     uuid.UUID       `gorm:"column:shop_id"`
	Orders     int64           `gorm:"column:orders"`
	Revenue    decimal.Decimal `gorm:"column:revenue"`
	Commission decimal.Decimal `gorm:"column:commission"`
}

func (r *Repository) TotalsByShop(ctx context.Context) ([]ShopTotals, error) {
	var rows []ShopTotals
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("shop_id, COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS revenue, COALESCE(SUM(admin_commission), 0) AS commission").
		Group("shop_id").
		Scan(&rows).Error
	return rows, err
}
