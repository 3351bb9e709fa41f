package admin

import (
	"context"
	"fmt"

	"github.com/angelmondragon/marketplace-backend/internal/orders"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const missingOwner = "N/A"

type userCounter interface {
	Count(ctx context.Context, role *enums.UserRole) (int64, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

type shopReader interface {
	Count(ctx context.Context) (int64, error)
	ListAll(ctx context.Context) ([]models.Shop, error)
}

type productCounter interface {
	Count(ctx context.Context) (int64, error)
}

type orderAggregator interface {
	Totals(ctx context.Context) (orders.Totals, error)
	TotalsByShop(ctx context.Context) ([]orders.ShopTotals, error)
	ListCommissions(ctx context.Context) ([]models.Commission, error)
}

// Service answers the read-only admin rollups.
type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	Commissions(ctx context.Context) (*CommissionReport, error)
	VendorEarnings(ctx context.Context) ([]VendorEarning, error)
}

// ServiceParams bundles the repositories the rollups read from.
type ServiceParams struct {
	Users    userCounter
	Shops    shopReader
	Products productCounter
	Orders   orderAggregator
	Logger   *logger.Logger
}

type service struct {
	users    userCounter
	shops    shopReader
	products productCounter
	orders   orderAggregator
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Shops == nil {
		return nil, fmt.Errorf("shops repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		users:    params.Users,
		shops:    params.Shops,
		products: params.Products,
		orders:   params.Orders,
		logg:     logg,
	}, nil
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		out Dashboard
		err error
	)
	if out.TotalUsers, err = s.users.Count(ctx, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	vendor := enums.UserRoleVendor
	if out.TotalVendors, err = s.users.Count(ctx, &vendor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count vendors")
	}
	if out.TotalShops, err = s.shops.Count(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count shops")
	}
	if out.TotalProducts, err = s.products.Count(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	totals, err := s.orders.Totals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum orders")
	}
	out.TotalOrders = totals.Orders
	out.TotalRevenue = totals.Revenue.Round(2)
	out.TotalCommission = totals.Commission.Round(2)
	return &out, nil
}

func (s *service) Commissions(ctx context.Context) (*CommissionReport, error) {
	rows, err := s.orders.ListCommissions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list commissions")
	}
	report := &CommissionReport{
		Commissions:     make([]orders.CommissionDTO, 0, len(rows)),
		TotalCommission: decimal.Zero,
		TotalOrders:     len(rows),
	}
	for i := range rows {
		report.Commissions = append(report.Commissions, orders.CommissionFromModel(&rows[i]))
		report.TotalCommission = report.TotalCommission.Add(rows[i].CommissionAmount)
	}
	report.TotalCommission = report.TotalCommission.Round(2)
	return report, nil
}

// VendorEarnings returns one row per shop, including shops with no orders.
func (s *service) VendorEarnings(ctx context.Context) ([]VendorEarning, error) {
	shops, err := s.shops.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}
	totals, err := s.orders.TotalsByShop(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum orders by shop")
	}
	byShop := make(map[uuid.UUID]orders.ShopTotals, len(totals))
	for _, t := range totals {
		byShop[t.ShopID] = t
	}

	ownerIDs := make([]uuid.UUID, 0, len(shops))
	for _, shop := range shops {
		ownerIDs = append(ownerIDs, shop.OwnerID)
	}
	owners, err := s.users.FindByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop owners")
	}

	out := make([]VendorEarning, 0, len(shops))
	for _, shop := range shops {
		row := VendorEarning{
			ShopID:          shop.ID,
			VendorID:        shop.OwnerID,
			ShopName:        shop.ShopName,
			Username:        missingOwner,
			Email:           missingOwner,
			TotalEarnings:   shop.TotalEarnings.Round(2),
			AdminCommission: decimal.Zero,
			TotalRevenue:    decimal.Zero,
		}
		if owner, ok := owners[shop.OwnerID]; ok {
			row.Username = owner.Username
			row.Email = owner.Email
		}
		if t, ok := byShop[shop.ID]; ok {
			row.AdminCommission = t.Commission.Round(2)
			row.TotalRevenue = t.Revenue.Round(2)
			row.TotalOrders = t.Orders
		}
		out = append(out, row)
	}
	return out, nil
}
