package contact

import (
	"context"
	"fmt"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists contact form submissions.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, msg *models.ContactMessage) error {
	if msg == nil {
		return fmt.Errorf("contact message is required")
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	var msg models.ContactMessage
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// List returns one page of messages, newest first, plus the filtered total.
func (r *Repository) List(ctx context.Context, status *enums.ContactStatus, page pagination.Params) ([]models.ContactMessage, int64, error) {
	page = page.Normalize()
	scope := func(q *gorm.DB) *gorm.DB {
		if status != nil {
			return q.Where("status = ?", *status)
		}
		return q
	}

	var total int64
	if err := scope(r.db.WithContext(ctx).Model(&models.ContactMessage{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ContactMessage
	if err := scope(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repository) Update(ctx context.Context, msg *models.ContactMessage) error {
	if msg == nil {
		return fmt.Errorf("contact message is required")
	}
	return r.db.WithContext(ctx).Save(msg).Error
}

// Delete removes a message, returning gorm.ErrRecordNotFound when absent.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ContactMessage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type statusCount struct {
	Status enums.ContactStatus `gorm:"column:status"`
	Count  int64               `gorm:"column:count"`
}

// CountByStatus returns the number of messages in each status present.
func (r *Repository) CountByStatus(ctx context.Context) (map[enums.ContactStatus]int64, error) {
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.ContactMessage{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[enums.ContactStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
