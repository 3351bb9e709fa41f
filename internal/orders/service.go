package orders

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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderRepository interface {
	CreateWithTx(ctx context.Context, tx *gorm.DB, order *models.Order) error
	CreateCommissionWithTx(ctx context.Context, tx *gorm.DB, commission *models.Commission) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error)
	ListByShops(ctx context.Context, shopIDs []uuid.UUID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error)
}

type productStock interface {
	FindByIDWithTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Product, error)
	DecrementStockWithTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) (bool, error)
}

type shopLedger interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	OwnedIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
	IncrementEarningsWithTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error
}

type cartCleaner interface {
	DeleteProductsWithTx(ctx context.Context, tx *gorm.DB, buyerID uuid.UUID, productIDs []uuid.UUID) error
}

// Service places orders and drives their status.
type Service interface {
	PlaceOrder(ctx context.Context, buyerID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, vendorID, orderID uuid.UUID, status string) (*OrderDTO, error)
	ListBuyerOrders(ctx context.Context, buyerID uuid.UUID) ([]OrderDTO, error)
	ListVendorOrders(ctx context.Context, vendorID uuid.UUID, shopID *uuid.UUID) ([]OrderDTO, error)
	GetOrder(ctx context.Context, viewerID uuid.UUID, role enums.UserRole, orderID uuid.UUID) (*OrderDTO, error)
}

// ServiceParams groups the order service dependencies.
type ServiceParams struct {
	Tx        txRunner
	Repo      orderRepository
	Products  productStock
	Shops     shopLedger
	Cart      cartCleaner
	Publisher events.Publisher
	Rate      decimal.Decimal
	Logger    *logger.Logger
}

type service struct {
	tx        txRunner
	repo      orderRepository
	products  productStock
	shops     shopLedger
	cart      cartCleaner
	publisher events.Publisher
	rate      decimal.Decimal
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Shops == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	if params.Rate.IsNegative() || params.Rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("commission rate must be in [0, 1), got %s", params.Rate)
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		tx:        params.Tx,
		repo:      params.Repo,
		products:  params.Products,
		shops:     params.Shops,
		cart:      params.Cart,
		publisher: params.Publisher,
		rate:      params.Rate,
		logg:      logg,
	}, nil
}

// PlaceOrder validates the request against live stock, decrements inventory,
// records the order with its commission, credits the shop and removes the
// purchased products from the buyer's cart, all in one transaction. The
// OrderPlaced event is published only after commit.
func (s *service) PlaceOrder(ctx context.Context, buyerID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Products are required")
	}
	address := strings.TrimSpace(input.ShippingAddress)
	if address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Shipping address is required")
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]string{"productId": item.ProductID.String()})
		}
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		built, err := s.placeWithTx(ctx, tx, buyerID, address, input.Items)
		if err != nil {
			return err
		}
		order = built
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":     order.ID.String(),
		"shop_id":      order.ShopID.String(),
		"total_amount": order.TotalAmount.StringFixed(2),
	})
	s.logg.Info(logCtx, "order.placed")

	evt, err := events.OrderPlaced(events.OrderPlacedPayload{
		OrderID:     order.ID,
		VendorID:    order.ShopID,
		BuyerID:     order.BuyerID,
		TotalAmount: order.TotalAmount,
	})
	if err != nil {
		s.logg.Error(logCtx, "order.event_encode_failed", err)
	} else {
		s.publisher.Publish(ctx, evt)
	}

	dto := FromModel(order)
	return &dto, nil
}

func (s *service) placeWithTx(ctx context.Context, tx *gorm.DB, buyerID uuid.UUID, address string, items []ItemInput) (*models.Order, error) {
	var (
		shopID     uuid.UUID
		total      = decimal.Zero
		lineItems  = make([]models.OrderLineItem, 0, len(items))
		productIDs = make([]uuid.UUID, 0, len(items))
	)

	for _, item := range items {
		p, err := s.products.FindByIDWithTx(ctx, tx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "Product %s not found", item.ProductID)
			}
			return nil, err
		}
		if p.Stock < item.Quantity {
			return nil, insufficientStock(p)
		}
		if shopID == uuid.Nil {
			shopID = p.ShopID
		} else if p.ShopID != shopID {
			return nil, pkgerrors.New(pkgerrors.CodeMixedVendorOrder, "All products must be from the same vendor")
		}

		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		lineItems = append(lineItems, models.OrderLineItem{
			ProductID: p.ID,
			Title:     p.Title,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
		})
		productIDs = append(productIDs, p.ID)

		ok, err := s.products.DecrementStockWithTx(ctx, tx, p.ID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, insufficientStock(p)
		}
	}

	total = total.Round(2)
	vendorEarning, commission := Split(total, s.rate)

	order := &models.Order{
		BuyerID:         buyerID,
		ShopID:          shopID,
		ShippingAddress: address,
		TotalAmount:     total,
		VendorEarning:   vendorEarning,
		AdminCommission: commission,
		Status:          enums.OrderStatusPending,
		Items:           lineItems,
	}
	if err := s.repo.CreateWithTx(ctx, tx, order); err != nil {
		return nil, err
	}

	if err := s.repo.CreateCommissionWithTx(ctx, tx, &models.Commission{
		OrderID:          order.ID,
		ShopID:           shopID,
		TotalAmount:      total,
		VendorEarning:    vendorEarning,
		CommissionAmount: commission,
		Rate:             s.rate,
	}); err != nil {
		return nil, err
	}

	if err := s.shops.IncrementEarningsWithTx(ctx, tx, shopID, vendorEarning); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Vendor profile not found")
		}
		return nil, err
	}

	if err := s.cart.DeleteProductsWithTx(ctx, tx, buyerID, productIDs); err != nil {
		return nil, err
	}
	return order, nil
}

func insufficientStock(p *models.Product) error {
	return pkgerrors.Newf(pkgerrors.CodeInsufficientStock, "Insufficient stock for %s", p.Title).
		WithDetails(map[string]any{"productId": p.ID.String(), "available": p.Stock})
}

// UpdateStatus applies a vendor status change following the order transition
// table. Cancellation does not restock.
func (s *service) UpdateStatus(ctx context.Context, vendorID, orderID uuid.UUID, status string) (*OrderDTO, error) {
	next, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid status")
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	owned, err := s.ownsShop(ctx, vendorID, order.ShopID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized to update this order")
	}

	current := order.Status
	if !current.CanTransitionTo(next) {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move order from %s to %s", current, next)
	}
	ok, err := s.repo.UpdateStatus(ctx, order.ID, current, next)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
	}
	order.Status = next

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"from":     current.String(),
		"to":       next.String(),
	})
	s.logg.Info(logCtx, "order.status_updated")

	evt, err := events.OrderStatusUpdated(events.OrderStatusUpdatedPayload{
		OrderID: order.ID,
		BuyerID: order.BuyerID,
		Status:  next.String(),
	})
	if err != nil {
		s.logg.Error(logCtx, "order.event_encode_failed", err)
	} else {
		s.publisher.Publish(ctx, evt)
	}

	dto := FromModel(order)
	return &dto, nil
}

func (s *service) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID) ([]OrderDTO, error) {
	rows, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return FromModels(rows), nil
}

// ListVendorOrders lists orders of one owned shop, or of every shop the
// vendor owns when shopID is nil.
func (s *service) ListVendorOrders(ctx context.Context, vendorID uuid.UUID, shopID *uuid.UUID) ([]OrderDTO, error) {
	ids, err := s.shops.OwnedIDs(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}
	if shopID != nil {
		if !containsID(ids, *shopID) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized for this shop")
		}
		ids = []uuid.UUID{*shopID}
	}
	rows, err := s.repo.ListByShops(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return FromModels(rows), nil
}

// GetOrder returns an order to its buyer, the owner of its shop, or an admin.
func (s *service) GetOrder(ctx context.Context, viewerID uuid.UUID, role enums.UserRole, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	allowed := role == enums.UserRoleAdmin || order.BuyerID == viewerID
	if !allowed && role == enums.UserRoleVendor {
		if allowed, err = s.ownsShop(ctx, viewerID, order.ShopID); err != nil {
			return nil, err
		}
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized to view this order")
	}
	dto := FromModel(order)
	return &dto, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ownsShop(ctx context.Context, ownerID, shopID uuid.UUID) (bool, error) {
	shop, err := s.shops.FindByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	return shop.OwnerID == ownerID, nil
}

func containsID(ids []uuid.UUID, target uuid.UUID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
