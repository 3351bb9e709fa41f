package contact

import (
	"time"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/google/uuid"
)

// SubmitInput is a public contact form submission.
type SubmitInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// MessageDTO is the admin view of a contact message.
type MessageDTO struct {
	ID         uuid.UUID           `json:"id"`
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	Subject    string              `json:"subject"`
	Message    string              `json:"message"`
	Status     enums.ContactStatus `json:"status"`
	AdminNotes string              `json:"adminNotes"`
	RepliedAt  *time.Time          `json:"repliedAt,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// MessagePage is a paginated admin listing.
type MessagePage struct {
	Messages   []MessageDTO    `json:"messages"`
	Pagination pagination.Meta `json:"pagination"`
}

// Stats counts messages per status.
type Stats struct {
	Total    int64 `json:"total"`
	New      int64 `json:"new"`
	Read     int64 `json:"read"`
	Replied  int64 `json:"replied"`
	Archived int64 `json:"archived"`
}

func FromModel(m *models.ContactMessage) MessageDTO {
	return MessageDTO{
		ID:         m.ID,
		Name:       m.Name,
		Email:      m.Email,
		Subject:    m.Subject,
		Message:    m.Message,
		Status:     m.Status,
		AdminNotes: m.AdminNotes,
		RepliedAt:  m.RepliedAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
