package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// Dispute is a buyer complaint against one order, driven by an append-only thread.
type Dispute struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID           `gorm:"column:order_id;type:uuid;not null"`
	BuyerID     uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null"`
	ShopID      uuid.UUID           `gorm:"column:shop_id;type:uuid;not null"`
	Reason      enums.DisputeReason `gorm:"column:reason;type:text;not null"`
	Description string              `gorm:"column:description;not null"`
	Images      pq.StringArray      `gorm:"column:images;type:text[];not null;default:'{}'"`
	Status      enums.DisputeStatus `gorm:"column:status;type:text;not null;default:open"`
	AdminNotes  string              `gorm:"column:admin_notes;not null;default:''"`
	Messages    []DisputeMessage    `gorm:"foreignKey:DisputeID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *Dispute) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	if d.Images == nil {
		d.Images = pq.StringArray{}
	}
	return nil
}

// DisputeMessage is one entry in a dispute thread, tagged with the author's role.
type DisputeMessage struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DisputeID  uuid.UUID      `gorm:"column:dispute_id;type:uuid;not null"`
	SenderRole enums.UserRole `gorm:"column:sender_role;type:text;not null"`
	SenderID   uuid.UUID      `gorm:"column:sender_id;type:uuid;not null"`
	Message    string         `gorm:"column:message;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (m *DisputeMessage) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
