package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/orders"
	product "github.com/angelmondragon/marketplace-backend/internal/products"
	"github.com/angelmondragon/marketplace-backend/internal/shops"
	"github.com/angelmondragon/marketplace-backend/internal/users"
	"github.com/angelmondragon/marketplace-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

type fixture struct {
	conn   *gorm.DB
	users  *users.Repository
	shops  *shops.Repository
	orders *orders.Repository
	svc    Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	f := &fixture{
		conn:   conn,
		users:  users.NewRepository(conn),
		shops:  shops.NewRepository(conn),
		orders: orders.NewRepository(conn),
	}
	svc, err := NewService(ServiceParams{
		Users:    f.users,
		Shops:    f.shops,
		Products: product.NewRepository(conn),
		Orders:   f.orders,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) user(t *testing.T, name string, role enums.UserRole) *models.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), users.CreateUserDTO{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) shop(t *testing.T, ownerID uuid.UUID, name string) *models.Shop {
	t.Helper()
	shop := &models.Shop{OwnerID: ownerID, ShopName: name}
	require.NoError(t, f.shops.Create(context.Background(), shop))
	return shop
}

func (f *fixture) order(t *testing.T, shopID uuid.UUID, total string) {
	t.Helper()
	ctx := context.Background()
	amount := decimal.RequireFromString(total)
	rate := decimal.RequireFromString("0.10")
	vendor, commission := orders.Split(amount, rate)
	order := &models.Order{
		BuyerID:         uuid.New(),
		ShopID:          shopID,
		ShippingAddress: "addr",
		TotalAmount:     amount,
		VendorEarning:   vendor,
		AdminCommission: commission,
	}
	require.NoError(t, f.orders.CreateWithTx(ctx, f.conn, order))
	require.NoError(t, f.orders.CreateCommissionWithTx(ctx, f.conn, &models.Commission{
		OrderID:          order.ID,
		ShopID:           shopID,
		TotalAmount:      amount,
		VendorEarning:    vendor,
		CommissionAmount: commission,
		Rate:             rate,
	}))
	require.NoError(t, f.shops.IncrementEarningsWithTx(ctx, f.conn, shopID, vendor))
}

func TestDashboardCountsAndSums(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "buyer", enums.UserRoleBuyer)
	vendor := f.user(t, "vendor", enums.UserRoleVendor)
	shop := f.shop(t, vendor.ID, "Corner Shop")
	f.order(t, shop.ID, "100.00")
	f.order(t, shop.ID, "25.50")

	dash, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, dash.TotalUsers)
	require.EqualValues(t, 1, dash.TotalVendors)
	require.EqualValues(t, 1, dash.TotalShops)
	require.EqualValues(t, 0, dash.TotalProducts)
	require.EqualValues(t, 2, dash.TotalOrders)
	require.Equal(t, "125.5", dash.TotalRevenue.String())
	require.Equal(t, "12.55", dash.TotalCommission.String())
}

func TestCommissionsReport(t *testing.T) {
	f := newFixture(t)
	vendor := f.user(t, "vendor", enums.UserRoleVendor)
	shop := f.shop(t, vendor.ID, "Ledger Shop")
	f.order(t, shop.ID, "10.00")
	f.order(t, shop.ID, "20.00")

	report, err := f.svc.Commissions(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Commissions, 2)
	require.Equal(t, 2, report.TotalOrders)
	require.Equal(t, "3", report.TotalCommission.String())
}

func TestVendorEarningsIncludesIdleShopsAndMissingOwners(t *testing.T) {
	f := newFixture(t)
	vendor := f.user(t, "vendor", enums.UserRoleVendor)
	busy := f.shop(t, vendor.ID, "Busy Shop")
	idle := f.shop(t, vendor.ID, "Idle Shop")
	orphan := f.shop(t, uuid.New(), "Orphan Shop")
	f.order(t, busy.ID, "100.00")

	rows, err := f.svc.VendorEarnings(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byShop := map[uuid.UUID]VendorEarning{}
	for _, row := range rows {
		byShop[row.ShopID] = row
	}
	require.Equal(t, "vendor", byShop[busy.ID].Username)
	require.Equal(t, "90", byShop[busy.ID].TotalEarnings.String())
	require.Equal(t, "10", byShop[busy.ID].AdminCommission.String())
	require.Equal(t, "100", byShop[busy.ID].TotalRevenue.String())
	require.EqualValues(t, 1, byShop[busy.ID].TotalOrders)

	require.EqualValues(t, 0, byShop[idle.ID].TotalOrders)
	require.True(t, byShop[idle.ID].TotalRevenue.IsZero())

	require.Equal(t, missingOwner, byShop[orphan.ID].Username)
	require.Equal(t, missingOwner, byShop[orphan.ID].Email)
}

type failingOrders struct{ *orders.Repository }

func (failingOrders) Totals(context.Context) (orders.Totals, error) {
	return orders.Totals{}, errors.New("db down")
}

func TestDashboardWrapsStorageErrors(t *testing.T) {
	f := newFixture(t)
	svc, err := NewService(ServiceParams{
		Users:    f.users,
		Shops:    f.shops,
		Products: product.NewRepository(f.conn),
		Orders:   failingOrders{Repository: f.orders},
	})
	require.NoError(t, err)

	_, err = svc.Dashboard(context.Background())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestNewServiceRequiresRepositories(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}
