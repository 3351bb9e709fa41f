package cart

import (
	"context"
	"errors"
	"fmt"

	product "github.com/angelmondragon/marketplace-backend/internal/products"
	pkgdb "github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type cartRepository interface {
	Create(ctx context.Context, item *models.CartItem) error
	Find(ctx context.Context, buyerID, productID uuid.UUID) (*models.CartItem, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.CartItem, error)
	IncrementQuantity(ctx context.Context, buyerID, productID uuid.UUID, qty int) (bool, error)
	SetQuantity(ctx context.Context, buyerID, productID uuid.UUID, qty int) (bool, error)
	Delete(ctx context.Context, buyerID, productID uuid.UUID) (bool, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
	Clear(ctx context.Context, buyerID uuid.UUID) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// Service exposes buyer cart operations.
type Service interface {
	AddItem(ctx context.Context, buyerID, productID uuid.UUID, quantity int) (*ItemDTO, error)
	UpdateQuantity(ctx context.Context, buyerID, productID uuid.UUID, quantity int) (*ItemDTO, error)
	ListCart(ctx context.Context, buyerID uuid.UUID) (*CartDTO, error)
	RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) error
	ClearCart(ctx context.Context, buyerID uuid.UUID) error
}

type service struct {
	repo     cartRepository
	products productLoader
	logg     *logger.Logger
}

// NewService builds a cart service backed by the provided repositories.
func NewService(repo cartRepository, products productLoader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, products: products, logg: logg}, nil
}

// AddItem increments an existing row or snapshots the current price into a
// new one. Stock is not checked here; checkout enforces it.
func (s *service) AddItem(ctx context.Context, buyerID, productID uuid.UUID, quantity int) (*ItemDTO, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	// A concurrent add may insert the row between our increment and create;
	// the unique (buyer, product) key turns that into one retry.
	for attempt := 0; attempt < 2; attempt++ {
		matched, err := s.repo.IncrementQuantity(ctx, buyerID, productID, quantity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}
		if matched {
			return s.load(ctx, buyerID, productID)
		}

		item := &models.CartItem{
			BuyerID:    buyerID,
			ProductID:  productID,
			Quantity:   quantity,
			PriceAtAdd: p.Price,
		}
		err = s.repo.Create(ctx, item)
		if err == nil {
			dto := itemFromModel(item)
			return &dto, nil
		}
		if !pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart item changed concurrently, retry")
}

// UpdateQuantity overwrites the quantity; a non-positive value removes the row.
func (s *service) UpdateQuantity(ctx context.Context, buyerID, productID uuid.UUID, quantity int) (*ItemDTO, error) {
	if quantity <= 0 {
		removed, err := s.repo.Delete(ctx, buyerID, productID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
		}
		if !removed {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cart item not found")
		}
		return nil, nil
	}

	matched, err := s.repo.SetQuantity(ctx, buyerID, productID, quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	if !matched {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cart item not found")
	}
	return s.load(ctx, buyerID, productID)
}

// ListCart attaches live product data and drops rows whose product is gone.
func (s *service) ListCart(ctx context.Context, buyerID uuid.UUID) (*CartDTO, error) {
	items, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart")
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	out := &CartDTO{Items: make([]LineDTO, 0, len(items)), Subtotal: decimal.Zero}
	var orphans []uuid.UUID
	for i := range items {
		p, ok := found[items[i].ProductID]
		if !ok {
			orphans = append(orphans, items[i].ID)
			continue
		}
		out.Items = append(out.Items, LineDTO{ItemDTO: itemFromModel(&items[i]), Product: product.FromModel(&p)})
		out.Subtotal = out.Subtotal.Add(items[i].PriceAtAdd.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
	}
	out.Subtotal = out.Subtotal.Round(2)

	if len(orphans) > 0 {
		if err := s.repo.DeleteByIDs(ctx, orphans); err != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"orphans": len(orphans), "error": err.Error()}), "cart.orphan_cleanup_failed")
		} else {
			s.logg.Info(s.logg.WithField(ctx, "orphans", len(orphans)), "cart.orphans_removed")
		}
	}
	return out, nil
}

func (s *service) RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) error {
	if _, err := s.repo.Delete(ctx, buyerID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return nil
}

func (s *service) ClearCart(ctx context.Context, buyerID uuid.UUID) error {
	if err := s.repo.Clear(ctx, buyerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) load(ctx context.Context, buyerID, productID uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.Find(ctx, buyerID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	dto := itemFromModel(item)
	return &dto, nil
}
