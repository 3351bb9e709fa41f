package disputes

import (
	"time"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/google/uuid"
)

// OpenInput is a buyer's complaint against one of their orders.
type OpenInput struct {
	OrderID     uuid.UUID
	Reason      string
	Description string
	Images      []string
}

// MessageDTO is one thread entry.
type MessageDTO struct {
	ID         uuid.UUID      `json:"id"`
	SenderRole enums.UserRole `json:"senderRole"`
	SenderID   uuid.UUID      `json:"senderId"`
	Message    string         `json:"message"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// ShopRef names the shop a dispute is raised against.
type ShopRef struct {
	ID       uuid.UUID `json:"id"`
	ShopName string    `json:"shopName"`
}

// DisputeDTO is the API shape of a dispute with its thread.
type DisputeDTO struct {
	ID          uuid.UUID           `json:"id"`
	OrderID     uuid.UUID           `json:"orderId"`
	BuyerID     uuid.UUID           `json:"buyerId"`
	ShopID      uuid.UUID           `json:"shopId"`
	Shop        *ShopRef            `json:"shop,omitempty"`
	Reason      enums.DisputeReason `json:"reason"`
	Description string              `json:"description"`
	Images      []string            `json:"images"`
	Status      enums.DisputeStatus `json:"status"`
	AdminNotes  string              `json:"adminNotes"`
	Messages    []MessageDTO        `json:"messages"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func FromModel(d *models.Dispute) DisputeDTO {
	messages := make([]MessageDTO, 0, len(d.Messages))
	for _, m := range d.Messages {
		messages = append(messages, MessageDTO{
			ID:         m.ID,
			SenderRole: m.SenderRole,
			SenderID:   m.SenderID,
			Message:    m.Message,
			CreatedAt:  m.CreatedAt,
		})
	}
	return DisputeDTO{
		ID:          d.ID,
		OrderID:     d.OrderID,
		BuyerID:     d.BuyerID,
		ShopID:      d.ShopID,
		Reason:      d.Reason,
		Description: d.Description,
		Images:      append([]string{}, []string(d.Images)...),
		Status:      d.Status,
		AdminNotes:  d.AdminNotes,
		Messages:    messages,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
