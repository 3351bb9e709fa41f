package products

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/api/middleware"
	product "github.com/angelmondragon/marketplace-backend/internal/products"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
)

type stubProductService struct {
	product.Service
	list   func(ctx context.Context, category string, page pagination.Params) (*product.ProductPage, error)
	create func(ctx context.Context, ownerID uuid.UUID, input product.CreateProductInput) (*product.ProductDTO, error)
	delete func(ctx context.Context, ownerID, productID uuid.UUID) error
}

func (s stubProductService) List(ctx context.Context, category string, page pagination.Params) (*product.ProductPage, error) {
	return s.list(ctx, category, page)
}

func (s stubProductService) Create(ctx context.Context, ownerID uuid.UUID, input product.CreateProductInput) (*product.ProductDTO, error) {
	return s.create(ctx, ownerID, input)
}

func (s stubProductService) Delete(ctx context.Context, ownerID, productID uuid.UUID) error {
	return s.delete(ctx, ownerID, productID)
}

func withRouteParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestListParsesPaginationAndCategory(t *testing.T) {
	svc := stubProductService{list: func(_ context.Context, category string, page pagination.Params) (*product.ProductPage, error) {
		if category != "Books" || page.Page != 2 || page.Limit != 5 {
			t.Fatalf("unexpected args %q %+v", category, page)
		}
		return &product.ProductPage{Products: []product.ProductDTO{}, Pagination: pagination.NewMeta(page, 7)}, nil
	}}
	rec := httptest.NewRecorder()
	List(svc, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products?category=%20Books%20&page=2&limit=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var env struct {
		Data product.ProductPage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Pagination.TotalPages != 2 {
		t.Fatalf("expected 2 pages, got %d", env.Data.Pagination.TotalPages)
	}
}

func TestCreateDecodesDecimalPrice(t *testing.T) {
	owner := uuid.New()
	svc := stubProductService{create: func(_ context.Context, ownerID uuid.UUID, input product.CreateProductInput) (*product.ProductDTO, error) {
		if ownerID != owner {
			t.Fatalf("unexpected owner")
		}
		if input.Price.String() != "19.99" {
			t.Fatalf("unexpected price %s", input.Price)
		}
		return &product.ProductDTO{Title: input.Title, Price: input.Price}, nil
	}}
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"title":"Mug","price":19.99,"stock":3}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), owner.String()))
	rec := httptest.NewRecorder()
	Create(svc, logger.Nop()).ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestCreateRejectsNegativeStock(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Mug","price":1,"stock":-1}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()
	Create(stubProductService{}, logger.Nop()).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteForbiddenForForeignVendor(t *testing.T) {
	productID := uuid.New()
	svc := stubProductService{delete: func(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
		if id != productID {
			t.Fatalf("unexpected product id")
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized to modify this product")
	}}
	req := withRouteParam(httptest.NewRequest(http.MethodDelete, "/", nil), "productId", productID.String())
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()
	Delete(svc, logger.Nop()).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
