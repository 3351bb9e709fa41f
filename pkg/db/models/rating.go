package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rating is one buyer's score for one product; (product, buyer) is unique.
type Rating struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	BuyerID   uuid.UUID `gorm:"column:buyer_id;type:uuid;not null"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	Rating    int       `gorm:"column:rating;not null"`
	Review    string    `gorm:"column:review;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (r *Rating) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
