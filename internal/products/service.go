package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type productRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.Product, int64, error)
	ListAll(ctx context.Context, filter ListFilter) ([]models.Product, error)
	UpdateFields(ctx context.Context, id uuid.UUID, changes map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type shopDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	LatestByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error)
	OwnedIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
}

// Service exposes catalog operations.
type Service interface {
	List(ctx context.Context, category string, page pagination.Params) (*ProductPage, error)
	ListByCategory(ctx context.Context, category string) ([]ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	MyProducts(ctx context.Context, ownerID uuid.UUID, shopID *uuid.UUID) ([]ProductDTO, error)
	Create(ctx context.Context, ownerID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, ownerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, ownerID, productID uuid.UUID) error
}

type service struct {
	repo  productRepository
	shops shopDirectory
	logg  *logger.Logger
}

func NewService(repo productRepository, shops shopDirectory, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if shops == nil {
		return nil, fmt.Errorf("shop directory required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, shops: shops, logg: logg}, nil
}

func (s *service) List(ctx context.Context, category string, page pagination.Params) (*ProductPage, error) {
	page = page.Normalize()
	rows, total, err := s.repo.List(ctx, ListFilter{Category: category}, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return &ProductPage{
		Products:   FromModels(rows),
		Pagination: pagination.NewMeta(page, total),
	}, nil
}

func (s *service) ListByCategory(ctx context.Context, category string) ([]ProductDTO, error) {
	if strings.TrimSpace(category) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	rows, err := s.repo.ListAll(ctx, ListFilter{Category: category})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(p)
	return &dto, nil
}

func (s *service) MyProducts(ctx context.Context, ownerID uuid.UUID, shopID *uuid.UUID) ([]ProductDTO, error) {
	var filter ListFilter
	if shopID != nil {
		if _, err := s.ownedShop(ctx, ownerID, *shopID); err != nil {
			return nil, err
		}
		filter.ShopIDs = []uuid.UUID{*shopID}
	} else {
		ids, err := s.shops.OwnedIDs(ctx, ownerID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
		}
		filter.ShopIDs = ids
	}

	rows, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return FromModels(rows), nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if err := validateProductFields(&input.Title, &input.Price, &input.Stock); err != nil {
		return nil, err
	}

	var (
		shop *models.Shop
		err  error
	)
	if input.ShopID != nil {
		shop, err = s.ownedShop(ctx, ownerID, *input.ShopID)
	} else {
		shop, err = s.shops.LatestByOwner(ctx, ownerID)
		if err != nil {
			err = shopLookupError(err)
		}
	}
	if err != nil {
		return nil, err
	}

	p := input.toModel(shop.ID)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"product_id": p.ID.String(), "shop_id": shop.ID.String()}), "product.created")
	dto := FromModel(p)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, ownerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if err := validateProductFields(input.Title, input.Price, input.Stock); err != nil {
		return nil, err
	}

	if _, err := s.loadOwned(ctx, ownerID, productID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFields(ctx, productID, input.changes()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	p, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}
	dto := FromModel(p)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, ownerID, productID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, ownerID, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", productID.String()), "product.deleted")
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return p, nil
}

func (s *service) loadOwned(ctx context.Context, ownerID, productID uuid.UUID) (*models.Product, error) {
	p, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}
	shop, err := s.shops.FindByID(ctx, p.ShopID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	if shop == nil || shop.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized to modify this product")
	}
	return p, nil
}

func (s *service) ownedShop(ctx context.Context, ownerID, shopID uuid.UUID) (*models.Shop, error) {
	shop, err := s.shops.FindByID(ctx, shopID)
	if err != nil {
		return nil, shopLookupError(err)
	}
	if shop.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized for this shop")
	}
	return shop, nil
}

func shopLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Vendor profile not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
}

func validateProductFields(title *string, price *decimal.Decimal, stock *int) error {
	details := map[string]string{}
	if title != nil && strings.TrimSpace(*title) == "" {
		details["title"] = "is required"
	}
	if price != nil && price.IsNegative() {
		details["price"] = "must be greater than or equal to 0"
	}
	if stock != nil && *stock < 0 {
		details["stock"] = "must be greater than or equal to 0"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}
