package disputes

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists disputes and their message threads.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func withThread(q *gorm.DB) *gorm.DB {
	return q.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	})
}

// CreateWithTx inserts the dispute together with its opening messages.
func (r *Repository) CreateWithTx(ctx context.Context, tx *gorm.DB, dispute *models.Dispute) error {
	if dispute == nil {
		return fmt.Errorf("dispute is required")
	}
	return tx.WithContext(ctx).Create(dispute).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	if err := withThread(r.db.WithContext(ctx)).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// AppendMessageWithTx adds one entry to a dispute thread.
func (r *Repository) AppendMessageWithTx(ctx context.Context, tx *gorm.DB, msg *models.DisputeMessage) error {
	if msg == nil {
		return fmt.Errorf("message is required")
	}
	return tx.WithContext(ctx).Create(msg).Error
}

// UpdateStatusWithTx sets status (and admin notes when non-nil) only while
// the dispute is still in from.
func (r *Repository) UpdateStatusWithTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to enums.DisputeStatus, notes *string) (bool, error) {
	updates := map[string]any{"status": to}
	if notes != nil {
		updates["admin_notes"] = *notes
	}
	res := tx.WithContext(ctx).
		Model(&models.Dispute{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// TouchWithTx bumps updated_at without changing the status.
func (r *Repository) TouchWithTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return tx.WithContext(ctx).
		Model(&models.Dispute{}).
		Where("id = ?", id).
		Update("updated_at", time.Now().UTC()).Error
}

func (r *Repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Dispute, error) {
	var rows []models.Dispute
	err := withThread(r.db.WithContext(ctx)).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) ListByShops(ctx context.Context, shopIDs []uuid.UUID) ([]models.Dispute, error) {
	rows := []models.Dispute{}
	if len(shopIDs) == 0 {
		return rows, nil
	}
	err := withThread(r.db.WithContext(ctx)).
		Where("shop_id IN ?", shopIDs).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListAll returns every dispute, optionally narrowed to one status.
func (r *Repository) ListAll(ctx context.Context, status *enums.DisputeStatus) ([]models.Dispute, error) {
	q := withThread(r.db.WithContext(ctx))
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var rows []models.Dispute
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}
