package product

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
)

type stubProductRepo struct {
	products map[uuid.UUID]*models.Product
	created  []*models.Product
	deleted  []uuid.UUID
	listErr  error
	lastList ListFilter
}

func newStubProductRepo(products ...*models.Product) *stubProductRepo {
	repo := &stubProductRepo{products: map[uuid.UUID]*models.Product{}}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (s *stubProductRepo) Create(_ context.Context, p *models.Product) error {
	p.ID = uuid.New()
	s.products[p.ID] = p
	s.created = append(s.created, p)
	return nil
}

func (s *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *stubProductRepo) List(_ context.Context, filter ListFilter, page pagination.Params) ([]models.Product, int64, error) {
	s.lastList = filter
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	rows := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		rows = append(rows, *p)
	}
	return rows, int64(len(rows)), nil
}

func (s *stubProductRepo) ListAll(_ context.Context, filter ListFilter) ([]models.Product, error) {
	s.lastList = filter
	return nil, s.listErr
}

func (s *stubProductRepo) UpdateFields(_ context.Context, id uuid.UUID, changes map[string]any) error {
	p, ok := s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := changes["title"].(string); ok {
		p.Title = v
	}
	if v, ok := changes["stock"].(int); ok {
		p.Stock = v
	}
	if v, ok := changes["price"].(decimal.Decimal); ok {
		p.Price = v
	}
	return nil
}

func (s *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.products, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubShops struct {
	shops map[uuid.UUID]*models.Shop
}

func newStubShops(shops ...*models.Shop) *stubShops {
	out := &stubShops{shops: map[uuid.UUID]*models.Shop{}}
	for _, s := range shops {
		out.shops[s.ID] = s
	}
	return out
}

func (s *stubShops) FindByID(_ context.Context, id uuid.UUID) (*models.Shop, error) {
	shop, ok := s.shops[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return shop, nil
}

func (s *stubShops) LatestByOwner(_ context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	var latest *models.Shop
	for _, shop := range s.shops {
		if shop.OwnerID != ownerID {
			continue
		}
		if latest == nil || shop.CreatedAt.After(latest.CreatedAt) {
			latest = shop
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (s *stubShops) OwnedIDs(_ context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	for id, shop := range s.shops {
		if shop.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, newStubShops(), nil); err == nil {
		t.Fatal("expected error without repo")
	}
	if _, err := NewService(newStubProductRepo(), nil, nil); err == nil {
		t.Fatal("expected error without shops")
	}
}

func TestCreateDefaultsToLatestShop(t *testing.T) {
	owner := uuid.New()
	shop := &models.Shop{ID: uuid.New(), OwnerID: owner}
	repo := newStubProductRepo()
	svc, err := NewService(repo, newStubShops(shop), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.Create(context.Background(), owner, CreateProductInput{
		Title: "  Teapot ",
		Price: decimal.RequireFromString("12.499"),
		Stock: 4,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.ShopID != shop.ID {
		t.Fatalf("expected shop %s got %s", shop.ID, dto.ShopID)
	}
	if dto.Title != "Teapot" {
		t.Fatalf("expected trimmed title, got %q", dto.Title)
	}
	if !dto.Price.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("expected price rounded to 12.50, got %s", dto.Price)
	}
}

func TestCreateWithoutShopIsNotFound(t *testing.T) {
	svc, _ := NewService(newStubProductRepo(), newStubShops(), nil)
	_, err := svc.Create(context.Background(), uuid.New(), CreateProductInput{Title: "x", Price: decimal.NewFromInt(1)})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateRejectsForeignShop(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), OwnerID: uuid.New()}
	svc, _ := NewService(newStubProductRepo(), newStubShops(shop), nil)
	_, err := svc.Create(context.Background(), uuid.New(), CreateProductInput{ShopID: &shop.ID, Title: "x", Price: decimal.NewFromInt(1)})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateValidatesFields(t *testing.T) {
	svc, _ := NewService(newStubProductRepo(), newStubShops(), nil)
	_, err := svc.Create(context.Background(), uuid.New(), CreateProductInput{
		Title: " ",
		Price: decimal.NewFromInt(-1),
		Stock: -2,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok || len(details) != 3 {
		t.Fatalf("expected three field details, got %#v", pkgerrors.As(err).Details())
	}
}

func TestUpdateAndDeleteRequireOwnership(t *testing.T) {
	owner := uuid.New()
	shop := &models.Shop{ID: uuid.New(), OwnerID: owner}
	p := &models.Product{ID: uuid.New(), ShopID: shop.ID, Title: "old", Price: decimal.NewFromInt(5)}
	repo := newStubProductRepo(p)
	svc, _ := NewService(repo, newStubShops(shop), nil)
	ctx := context.Background()

	title := "new"
	_, err := svc.Update(ctx, uuid.New(), p.ID, UpdateProductInput{Title: &title})
	assertCode(t, err, pkgerrors.CodeForbidden)
	assertCode(t, svc.Delete(ctx, uuid.New(), p.ID), pkgerrors.CodeForbidden)

	dto, err := svc.Update(ctx, owner, p.ID, UpdateProductInput{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Title != "new" {
		t.Fatalf("expected updated title, got %q", dto.Title)
	}

	if err := svc.Delete(ctx, owner, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected one delete, got %d", len(repo.deleted))
	}
	_, err = svc.Get(ctx, p.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestMyProductsScopesToOwnedShops(t *testing.T) {
	owner := uuid.New()
	mine := &models.Shop{ID: uuid.New(), OwnerID: owner}
	theirs := &models.Shop{ID: uuid.New(), OwnerID: uuid.New()}
	repo := newStubProductRepo()
	svc, _ := NewService(repo, newStubShops(mine, theirs), nil)
	ctx := context.Background()

	if _, err := svc.MyProducts(ctx, owner, nil); err != nil {
		t.Fatalf("my products: %v", err)
	}
	if len(repo.lastList.ShopIDs) != 1 || repo.lastList.ShopIDs[0] != mine.ID {
		t.Fatalf("expected filter on owned shop, got %v", repo.lastList.ShopIDs)
	}

	_, err := svc.MyProducts(ctx, owner, &theirs.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestListWrapsStorageErrors(t *testing.T) {
	repo := newStubProductRepo()
	repo.listErr = errors.New("boom")
	svc, _ := NewService(repo, newStubShops(), nil)
	_, err := svc.List(context.Background(), "", pagination.Params{})
	assertCode(t, err, pkgerrors.CodeDependency)

	_, err = svc.ListByCategory(context.Background(), " ")
	assertCode(t, err, pkgerrors.CodeValidation)
}
