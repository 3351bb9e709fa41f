package disputes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/events"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type disputeRepository interface {
	CreateWithTx(ctx context.Context, tx *gorm.DB, dispute *models.Dispute) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	AppendMessageWithTx(ctx context.Context, tx *gorm.DB, msg *models.DisputeMessage) error
	UpdateStatusWithTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to enums.DisputeStatus, notes *string) (bool, error)
	TouchWithTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Dispute, error)
	ListByShops(ctx context.Context, shopIDs []uuid.UUID) ([]models.Dispute, error)
	ListAll(ctx context.Context, status *enums.DisputeStatus) ([]models.Dispute, error)
}

type orderReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type shopDirectory interface {
	OwnedIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Shop, error)
}

// Service drives dispute threads between buyers, vendors and admins.
type Service interface {
	Open(ctx context.Context, buyerID uuid.UUID, input OpenInput) (*DisputeDTO, error)
	VendorReply(ctx context.Context, vendorID, disputeID uuid.UUID, reply string) (*DisputeDTO, error)
	AdminSetStatus(ctx context.Context, adminID, disputeID uuid.UUID, status string, notes *string) (*DisputeDTO, error)
	ListBuyerDisputes(ctx context.Context, buyerID uuid.UUID) ([]DisputeDTO, error)
	ListVendorDisputes(ctx context.Context, vendorID uuid.UUID) ([]DisputeDTO, error)
	ListAllDisputes(ctx context.Context, status string) ([]DisputeDTO, error)
	GetDispute(ctx context.Context, viewerID uuid.UUID, role enums.UserRole, disputeID uuid.UUID) (*DisputeDTO, error)
}

// ServiceParams groups the dispute service dependencies.
type ServiceParams struct {
	Tx        txRunner
	Repo      disputeRepository
	Orders    orderReader
	Shops     shopDirectory
	Publisher events.Publisher
	Logger    *logger.Logger
}

type service struct {
	tx        txRunner
	repo      disputeRepository
	orders    orderReader
	shops     shopDirectory
	publisher events.Publisher
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("dispute repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Shops == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	if params.Publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		tx:        params.Tx,
		repo:      params.Repo,
		orders:    params.Orders,
		shops:     params.Shops,
		publisher: params.Publisher,
		logg:      logg,
	}, nil
}

// Open files a dispute against one of the buyer's orders. The description is
// also the first message of the thread.
func (s *service) Open(ctx context.Context, buyerID uuid.UUID, input OpenInput) (*DisputeDTO, error) {
	reason, err := enums.ParseDisputeReason(input.Reason)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid reason")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Description is required")
	}

	order, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized")
	}

	dispute := &models.Dispute{
		OrderID:     order.ID,
		BuyerID:     buyerID,
		ShopID:      order.ShopID,
		Reason:      reason,
		Description: description,
		Images:      cleanImages(input.Images),
		Status:      enums.DisputeStatusOpen,
		Messages: []models.DisputeMessage{{
			SenderRole: enums.UserRoleBuyer,
			SenderID:   buyerID,
			Message:    description,
		}},
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.CreateWithTx(ctx, tx, dispute)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create dispute")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"dispute_id": dispute.ID.String(), "order_id": order.ID.String()})
	s.logg.Info(logCtx, "dispute.opened")
	evt, err := events.DisputeCreated(events.DisputeCreatedPayload{
		DisputeID: dispute.ID,
		VendorID:  dispute.ShopID,
		BuyerID:   buyerID,
	})
	s.publish(logCtx, evt, err)

	dto := FromModel(dispute)
	return &dto, nil
}

// VendorReply appends the vendor's message. An open dispute moves to
// vendor-responded; closed disputes accept no replies.
func (s *service) VendorReply(ctx context.Context, vendorID, disputeID uuid.UUID, reply string) (*DisputeDTO, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Reply is required")
	}

	owned, err := s.shops.OwnedIDs(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}
	if len(owned) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Vendor profile not found")
	}

	dispute, err := s.load(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if !containsID(owned, dispute.ShopID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized")
	}
	if dispute.Status.IsTerminal() {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "dispute is already %s", dispute.Status)
	}

	current := dispute.Status
	next := current.AfterVendorReply()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.AppendMessageWithTx(ctx, tx, &models.DisputeMessage{
			DisputeID:  dispute.ID,
			SenderRole: enums.UserRoleVendor,
			SenderID:   vendorID,
			Message:    reply,
		}); err != nil {
			return err
		}
		if next == current {
			return s.repo.TouchWithTx(ctx, tx, dispute.ID)
		}
		ok, err := s.repo.UpdateStatusWithTx(ctx, tx, dispute.ID, current, next, nil)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "dispute status changed concurrently")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reply to dispute")
	}

	s.logg.Info(s.logg.WithField(ctx, "dispute_id", dispute.ID.String()), "dispute.vendor_replied")
	return s.get(ctx, dispute.ID)
}

// AdminSetStatus moves a dispute to any other status unless it is closed.
// Notes, when present, are stored and appended to the thread.
func (s *service) AdminSetStatus(ctx context.Context, adminID, disputeID uuid.UUID, status string, notes *string) (*DisputeDTO, error) {
	next, err := enums.ParseDisputeStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid status")
	}

	dispute, err := s.load(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	current := dispute.Status
	if !current.CanAdminSet(next) {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move dispute from %s to %s", current, next)
	}

	var trimmed *string
	if notes != nil {
		if n := strings.TrimSpace(*notes); n != "" {
			trimmed = &n
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.repo.UpdateStatusWithTx(ctx, tx, dispute.ID, current, next, trimmed)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "dispute status changed concurrently")
		}
		if trimmed == nil {
			return nil
		}
		return s.repo.AppendMessageWithTx(ctx, tx, &models.DisputeMessage{
			DisputeID:  dispute.ID,
			SenderRole: enums.UserRoleAdmin,
			SenderID:   adminID,
			Message:    *trimmed,
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update dispute status")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"dispute_id": dispute.ID.String(),
		"from":       current.String(),
		"to":         next.String(),
	})
	s.logg.Info(logCtx, "dispute.status_updated")
	if next == enums.DisputeStatusResolved {
		evt, err := events.DisputeResolved(events.DisputeResolvedPayload{
			DisputeID: dispute.ID,
			BuyerID:   dispute.BuyerID,
			VendorID:  dispute.ShopID,
		})
		s.publish(logCtx, evt, err)
	}
	return s.get(ctx, dispute.ID)
}

func (s *service) ListBuyerDisputes(ctx context.Context, buyerID uuid.UUID) ([]DisputeDTO, error) {
	rows, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list disputes")
	}
	return s.withShops(ctx, rows)
}

func (s *service) ListVendorDisputes(ctx context.Context, vendorID uuid.UUID) ([]DisputeDTO, error) {
	owned, err := s.shops.OwnedIDs(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}
	if len(owned) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Vendor profile not found")
	}
	rows, err := s.repo.ListByShops(ctx, owned)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list disputes")
	}
	return s.withShops(ctx, rows)
}

func (s *service) ListAllDisputes(ctx context.Context, status string) ([]DisputeDTO, error) {
	var filter *enums.DisputeStatus
	if strings.TrimSpace(status) != "" {
		parsed, err := enums.ParseDisputeStatus(status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid status")
		}
		filter = &parsed
	}
	rows, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list disputes")
	}
	return s.withShops(ctx, rows)
}

// GetDispute returns a dispute to its buyer, the owner of its shop, or an admin.
func (s *service) GetDispute(ctx context.Context, viewerID uuid.UUID, role enums.UserRole, disputeID uuid.UUID) (*DisputeDTO, error) {
	dispute, err := s.load(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	allowed := role == enums.UserRoleAdmin || dispute.BuyerID == viewerID
	if !allowed && role == enums.UserRoleVendor {
		owned, err := s.shops.OwnedIDs(ctx, viewerID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
		}
		allowed = containsID(owned, dispute.ShopID)
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized")
	}
	out, err := s.withShops(ctx, []models.Dispute{*dispute})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *service) get(ctx context.Context, id uuid.UUID) (*DisputeDTO, error) {
	dispute, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(dispute)
	return &dto, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	dispute, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Dispute not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dispute")
	}
	return dispute, nil
}

func (s *service) withShops(ctx context.Context, rows []models.Dispute) ([]DisputeDTO, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, d := range rows {
		ids = append(ids, d.ShopID)
	}
	shops, err := s.shops.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shops")
	}
	out := make([]DisputeDTO, 0, len(rows))
	for i := range rows {
		dto := FromModel(&rows[i])
		if shop, ok := shops[rows[i].ShopID]; ok {
			dto.Shop = &ShopRef{ID: shop.ID, ShopName: shop.ShopName}
		}
		out = append(out, dto)
	}
	return out, nil
}

func (s *service) publish(ctx context.Context, evt events.Event, err error) {
	if err != nil {
		s.logg.Error(ctx, "dispute.event_encode_failed", err)
		return
	}
	s.publisher.Publish(ctx, evt)
}

func cleanImages(in []string) []string {
	out := make([]string, 0, len(in))
	for _, img := range in {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}

func containsID(ids []uuid.UUID, target uuid.UUID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
