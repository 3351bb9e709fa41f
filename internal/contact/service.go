package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type messageRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error)
	List(ctx context.Context, status *enums.ContactStatus, page pagination.Params) ([]models.ContactMessage, int64, error)
	Update(ctx context.Context, msg *models.ContactMessage) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[enums.ContactStatus]int64, error)
}

// Service handles contact form intake and admin moderation.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*MessageDTO, error)
	List(ctx context.Context, status string, page pagination.Params) (*MessagePage, error)
	Get(ctx context.Context, id uuid.UUID) (*MessageDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, notes *string) (*MessageDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo messageRepository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo messageRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contact repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*MessageDTO, error) {
	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Subject: strings.TrimSpace(input.Subject),
		Message: strings.TrimSpace(input.Message),
		Status:  enums.ContactStatusNew,
	}
	details := map[string]string{}
	if msg.Name == "" {
		details["name"] = "Name is required"
	}
	if !strings.Contains(msg.Email, "@") {
		details["email"] = "Valid email is required"
	}
	if msg.Subject == "" {
		details["subject"] = "Subject is required"
	}
	if msg.Message == "" {
		details["message"] = "Message is required"
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Validation failed").WithDetails(details)
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save contact message")
	}
	s.logg.Info(s.logg.WithField(ctx, "contact_id", msg.ID.String()), "contact.submitted")
	dto := FromModel(msg)
	return &dto, nil
}

func (s *service) List(ctx context.Context, status string, page pagination.Params) (*MessagePage, error) {
	var filter *enums.ContactStatus
	if strings.TrimSpace(status) != "" {
		parsed, err := enums.ParseContactStatus(status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid status")
		}
		filter = &parsed
	}

	page = page.Normalize()
	rows, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contact messages")
	}
	out := make([]MessageDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return &MessagePage{Messages: out, Pagination: pagination.NewMeta(page, total)}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*MessageDTO, error) {
	msg, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(msg)
	return &dto, nil
}

// UpdateStatus sets the moderation status; moving to replied stamps repliedAt.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status string, notes *string) (*MessageDTO, error) {
	next, err := enums.ParseContactStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid status")
	}
	msg, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	msg.Status = next
	if next == enums.ContactStatusReplied {
		now := s.now().UTC()
		msg.RepliedAt = &now
	}
	if notes != nil {
		msg.AdminNotes = strings.TrimSpace(*notes)
	}
	if err := s.repo.Update(ctx, msg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update contact message")
	}
	dto := FromModel(msg)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Message not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete contact message")
	}
	return nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count contact messages")
	}
	stats := &Stats{
		New:      counts[enums.ContactStatusNew],
		Read:     counts[enums.ContactStatusRead],
		Replied:  counts[enums.ContactStatusReplied],
		Archived: counts[enums.ContactStatusArchived],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Message not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contact message")
	}
	return msg, nil
}
