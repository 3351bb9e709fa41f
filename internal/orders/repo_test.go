package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	pkgdb "github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// ensureShop inserts a bare shop row for id unless one exists.
func ensureShop(t *testing.T, repo *Repository, id uuid.UUID) {
	t.Helper()
	var n int64
	require.NoError(t, repo.db.Model(&models.Shop{}).Where("id = ?", id).Count(&n).Error)
	if n > 0 {
		return
	}
	require.NoError(t, repo.db.Create(&models.Shop{ID: id, OwnerID: uuid.New(), ShopName: "shop " + id.String()}).Error)
}

func seedOrder(t *testing.T, repo *Repository, shopID uuid.UUID, total string) *models.Order {
	t.Helper()
	ensureShop(t, repo, shopID)
	amount := decimal.RequireFromString(total)
	vendor, commission := Split(amount, decimal.RequireFromString("0.10"))
	order := &models.Order{
		BuyerID:         uuid.New(),
		ShopID:          shopID,
		ShippingAddress: "addr",
		TotalAmount:     amount,
		VendorEarning:   vendor,
		AdminCommission: commission,
		Items: []models.OrderLineItem{{
			ProductID: uuid.New(),
			Title:     "thing",
			Quantity:  1,
			UnitPrice: amount,
		}},
	}
	require.NoError(t, repo.CreateWithTx(context.Background(), repo.db, order))
	return order
}

func TestRepositoryConditionalStatusUpdate(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	order := seedOrder(t, repo, uuid.New(), "20.00")

	loaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPending, loaded.Status)
	require.Len(t, loaded.Items, 1)

	ok, err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusConfirmed)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusCancelled)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRepositoryCommissionUniquePerOrder(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	order := seedOrder(t, repo, uuid.New(), "10.00")

	c := func() *models.Commission {
		return &models.Commission{
			OrderID:          order.ID,
			ShopID:           order.ShopID,
			TotalAmount:      order.TotalAmount,
			VendorEarning:    order.VendorEarning,
			CommissionAmount: order.AdminCommission,
			Rate:             decimal.RequireFromString("0.10"),
		}
	}
	require.NoError(t, repo.CreateCommissionWithTx(ctx, conn, c()))
	err := repo.CreateCommissionWithTx(ctx, conn, c())
	require.True(t, pkgdb.IsUniqueViolation(err, ""))
}

func TestRepositoryTotals(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	shopA, shopB := uuid.New(), uuid.New()
	seedOrder(t, repo, shopA, "100.00")
	seedOrder(t, repo, shopA, "50.00")
	seedOrder(t, repo, shopB, "10.00")

	totals, err := repo.Totals(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, totals.Orders)
	require.True(t, totals.Revenue.Equal(decimal.RequireFromString("160")), totals.Revenue.String())
	require.True(t, totals.Commission.Equal(decimal.RequireFromString("16")), totals.Commission.String())

	byShop, err := repo.TotalsByShop(ctx)
	require.NoError(t, err)
	require.Len(t, byShop, 2)
	for _, row := range byShop {
		if row.ShopID == shopA {
			require.EqualValues(t, 2, row.Orders)
			require.True(t, row.Revenue.Equal(decimal.RequireFromString("150")))
		}
	}

	listed, err := repo.ListByShops(ctx, []uuid.UUID{shopA})
	require.NoError(t, err)
	require.Len(t, listed, 2)

	none, err := repo.ListByShops(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, none)
}
