package disputes

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketplace-backend/internal/orders"
	"github.com/angelmondragon/marketplace-backend/internal/shops"
	"github.com/angelmondragon/marketplace-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/events"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, evt events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordingPublisher) count(t events.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, evt := range r.events {
		if evt.Type == t {
			n++
		}
	}
	return n
}

type fixture struct {
	svc    Service
	events *recordingPublisher
	buyer  uuid.UUID
	vendor uuid.UUID
	shop   *models.Shop
	order  *models.Order
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client, conn := dbtest.Client(t)
	ctx := context.Background()
	shopRepo := shops.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)

	f := fixture{events: &recordingPublisher{}, buyer: uuid.New(), vendor: uuid.New()}
	f.shop = &models.Shop{OwnerID: f.vendor, ShopName: "Disputed Goods", OnboardingComplete: true}
	require.NoError(t, shopRepo.Create(ctx, f.shop))
	f.order = &models.Order{
		BuyerID:         f.buyer,
		ShopID:          f.shop.ID,
		ShippingAddress: "addr",
		TotalAmount:     decimal.NewFromInt(10),
		VendorEarning:   decimal.NewFromInt(9),
		AdminCommission: decimal.NewFromInt(1),
	}
	require.NoError(t, orderRepo.CreateWithTx(ctx, conn, f.order))

	svc, err := NewService(ServiceParams{
		Tx:        client,
		Repo:      NewRepository(conn),
		Orders:    orderRepo,
		Shops:     shopRepo,
		Publisher: f.events,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f fixture) open(t *testing.T) *DisputeDTO {
	t.Helper()
	d, err := f.svc.Open(context.Background(), f.buyer, OpenInput{
		OrderID:     f.order.ID,
		Reason:      "damaged_product",
		Description: "Arrived broken",
		Images:      []string{"https://img.example.com/1.jpg", " "},
	})
	require.NoError(t, err)
	return d
}

func TestOpenCreatesThread(t *testing.T) {
	f := newFixture(t)
	d := f.open(t)

	require.Equal(t, enums.DisputeStatusOpen, d.Status)
	require.Equal(t, f.shop.ID, d.ShopID)
	require.Equal(t, []string{"https://img.example.com/1.jpg"}, d.Images)
	require.Len(t, d.Messages, 1)
	require.Equal(t, enums.UserRoleBuyer, d.Messages[0].SenderRole)
	require.Equal(t, "Arrived broken", d.Messages[0].Message)
	require.Equal(t, 1, f.events.count(events.TypeDisputeCreated))
}

func TestOpenRejectsForeignOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Open(ctx, uuid.New(), OpenInput{OrderID: f.order.ID, Reason: "other", Description: "x"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)

	_, err = f.svc.Open(ctx, f.buyer, OpenInput{OrderID: f.order.ID, Reason: "lost", Description: "x"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Open(ctx, f.buyer, OpenInput{OrderID: uuid.New(), Reason: "other", Description: "x"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestVendorReplyAdvancesOpenOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.open(t)

	_, err := f.svc.VendorReply(ctx, uuid.New(), d.ID, "not mine")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "vendor without shops, got %v", err)

	replied, err := f.svc.VendorReply(ctx, f.vendor, d.ID, "Sending a replacement")
	require.NoError(t, err)
	require.Equal(t, enums.DisputeStatusVendorResponded, replied.Status)
	require.Len(t, replied.Messages, 2)
	require.Equal(t, enums.UserRoleVendor, replied.Messages[1].SenderRole)

	_, err = f.svc.AdminSetStatus(ctx, uuid.New(), d.ID, "under-review", nil)
	require.NoError(t, err)

	again, err := f.svc.VendorReply(ctx, f.vendor, d.ID, "Any update?")
	require.NoError(t, err)
	require.Equal(t, enums.DisputeStatusUnderReview, again.Status, "reply must not regress review")
	require.Len(t, again.Messages, 3)
}

func TestAdminResolvePublishesAndCloses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := uuid.New()
	d := f.open(t)

	notes := "  Refund issued  "
	resolved, err := f.svc.AdminSetStatus(ctx, admin, d.ID, "resolved", &notes)
	require.NoError(t, err)
	require.Equal(t, enums.DisputeStatusResolved, resolved.Status)
	require.Equal(t, "Refund issued", resolved.AdminNotes)
	require.Equal(t, enums.UserRoleAdmin, resolved.Messages[len(resolved.Messages)-1].SenderRole)
	require.Equal(t, 1, f.events.count(events.TypeDisputeResolved))

	_, err = f.svc.AdminSetStatus(ctx, admin, d.ID, "open", nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.VendorReply(ctx, f.vendor, d.ID, "late reply")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.AdminSetStatus(ctx, admin, d.ID, "closed", nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDisputeListsAndAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.open(t)

	mine, err := f.svc.ListBuyerDisputes(ctx, f.buyer)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Shop)
	require.Equal(t, "Disputed Goods", mine[0].Shop.ShopName)

	vendorRows, err := f.svc.ListVendorDisputes(ctx, f.vendor)
	require.NoError(t, err)
	require.Len(t, vendorRows, 1)

	open, err := f.svc.ListAllDisputes(ctx, "open")
	require.NoError(t, err)
	require.Len(t, open, 1)
	resolved, err := f.svc.ListAllDisputes(ctx, "resolved")
	require.NoError(t, err)
	require.Empty(t, resolved)

	_, err = f.svc.GetDispute(ctx, f.vendor, enums.UserRoleVendor, d.ID)
	require.NoError(t, err)
	_, err = f.svc.GetDispute(ctx, uuid.New(), enums.UserRoleBuyer, d.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}
