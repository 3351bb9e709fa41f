package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// ContactMessage is a public contact-form submission moderated by admins.
type ContactMessage struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string              `gorm:"column:name;not null"`
	Email      string              `gorm:"column:email;not null"`
	Subject    string              `gorm:"column:subject;not null"`
	Message    string              `gorm:"column:message;not null"`
	Status     enums.ContactStatus `gorm:"column:status;type:text;not null;default:new"`
	AdminNotes string              `gorm:"column:admin_notes;not null;default:''"`
	RepliedAt  *time.Time          `gorm:"column:replied_at"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *ContactMessage) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
