package shops

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	product "github.com/angelmondragon/marketplace-backend/internal/products"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	minShopNameLength    = 3
	maxDescriptionLength = 500
)

type shopRepository interface {
	Create(ctx context.Context, shop *models.Shop) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	FindByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (*models.Shop, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Shop, error)
	LatestByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error)
	ListPublic(ctx context.Context, category string) ([]models.Shop, error)
	Update(ctx context.Context, shop *models.Shop) error
}

type productLister interface {
	ListAll(ctx context.Context, filter product.ListFilter) ([]models.Product, error)
}

// Service exposes vendor shop operations.
type Service interface {
	CreateShop(ctx context.Context, ownerID uuid.UUID, input ShopInput) (*ShopDTO, error)
	MyShops(ctx context.Context, ownerID uuid.UUID) ([]ShopDTO, error)
	MyLatestShop(ctx context.Context, ownerID uuid.UUID) (*ShopDTO, error)
	UpdateShop(ctx context.Context, ownerID uuid.UUID, shopID *uuid.UUID, input UpdateShopInput) (*ShopDTO, error)
	ListPublicShops(ctx context.Context, category string) ([]ShopDTO, error)
	GetPublicShop(ctx context.Context, id uuid.UUID) (*PublicShopDTO, error)
}

type service struct {
	repo     shopRepository
	products productLister
	logg     *logger.Logger
}

// NewService builds a shop service with the provided repositories.
func NewService(repo shopRepository, products productLister, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, products: products, logg: logg}, nil
}

// CreateShop creates a shop or, when the owner already has one with the same
// name, rewrites it in place.
func (s *service) CreateShop(ctx context.Context, ownerID uuid.UUID, input ShopInput) (*ShopDTO, error) {
	name := strings.TrimSpace(input.ShopName)
	if err := validateShopFields(&name, &input.Description); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByOwnerAndName(ctx, ownerID, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}

	if existing != nil {
		applyShopInput(existing, input)
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shop")
		}
		dto := FromModel(existing)
		return &dto, nil
	}

	shop := NewShopModel(ownerID, input)
	if err := s.repo.Create(ctx, shop); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shop")
	}
	s.logg.Info(s.logg.WithField(ctx, "shop_id", shop.ID.String()), "shop.created")
	dto := FromModel(shop)
	return &dto, nil
}

func (s *service) MyShops(ctx context.Context, ownerID uuid.UUID) ([]ShopDTO, error) {
	rows, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}
	return FromModels(rows), nil
}

func (s *service) MyLatestShop(ctx context.Context, ownerID uuid.UUID) (*ShopDTO, error) {
	shop, err := s.repo.LatestByOwner(ctx, ownerID)
	if err != nil {
		return nil, lookupError(err)
	}
	dto := FromModel(shop)
	return &dto, nil
}

// UpdateShop edits an owned shop. A nil shopID targets the owner's latest shop.
func (s *service) UpdateShop(ctx context.Context, ownerID uuid.UUID, shopID *uuid.UUID, input UpdateShopInput) (*ShopDTO, error) {
	if err := validateShopFields(input.ShopName, input.Description); err != nil {
		return nil, err
	}

	var (
		shop *models.Shop
		err  error
	)
	if shopID != nil {
		shop, err = s.repo.FindByID(ctx, *shopID)
	} else {
		shop, err = s.repo.LatestByOwner(ctx, ownerID)
	}
	if err != nil {
		return nil, lookupError(err)
	}
	if shop.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized to update this shop")
	}

	applyShopUpdate(shop, input)
	if err := s.repo.Update(ctx, shop); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shop")
	}
	dto := FromModel(shop)
	return &dto, nil
}

func (s *service) ListPublicShops(ctx context.Context, category string) ([]ShopDTO, error) {
	rows, err := s.repo.ListPublic(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}
	return FromModels(rows), nil
}

func (s *service) GetPublicShop(ctx context.Context, id uuid.UUID) (*PublicShopDTO, error) {
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	rows, err := s.products.ListAll(ctx, product.ListFilter{ShopIDs: []uuid.UUID{shop.ID}})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return &PublicShopDTO{Shop: FromModel(shop), Products: product.FromModels(rows)}, nil
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Vendor profile not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
}

func validateShopFields(name, description *string) error {
	details := map[string]string{}
	if name != nil && utf8.RuneCountInString(strings.TrimSpace(*name)) < minShopNameLength {
		details["shopName"] = fmt.Sprintf("must be at least %d characters", minShopNameLength)
	}
	if description != nil && utf8.RuneCountInString(strings.TrimSpace(*description)) > maxDescriptionLength {
		details["description"] = fmt.Sprintf("must be at most %d characters", maxDescriptionLength)
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}
