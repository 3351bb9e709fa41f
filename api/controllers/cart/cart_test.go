package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/api/middleware"
	cartsvc "github.com/angelmondragon/marketplace-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

type stubCartService struct {
	cart       *cartsvc.CartDTO
	item       *cartsvc.ItemDTO
	err        error
	lastBuyer  uuid.UUID
	lastProdID uuid.UUID
	lastQty    int
	cleared    bool
}

func (s *stubCartService) AddItem(_ context.Context, buyerID, productID uuid.UUID, quantity int) (*cartsvc.ItemDTO, error) {
	s.lastBuyer, s.lastProdID, s.lastQty = buyerID, productID, quantity
	return s.item, s.err
}

func (s *stubCartService) UpdateQuantity(_ context.Context, buyerID, productID uuid.UUID, quantity int) (*cartsvc.ItemDTO, error) {
	s.lastBuyer, s.lastProdID, s.lastQty = buyerID, productID, quantity
	return s.item, s.err
}

func (s *stubCartService) ListCart(_ context.Context, buyerID uuid.UUID) (*cartsvc.CartDTO, error) {
	s.lastBuyer = buyerID
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, buyerID, productID uuid.UUID) error {
	s.lastBuyer, s.lastProdID = buyerID, productID
	return s.err
}

func (s *stubCartService) ClearCart(_ context.Context, buyerID uuid.UUID) error {
	s.lastBuyer = buyerID
	s.cleared = true
	return s.err
}

func buyerRequest(method, target, body string, buyerID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(middleware.WithUserID(req.Context(), buyerID.String()))
}

func withProductParam(req *http.Request, productID uuid.UUID) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productId", productID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCartFetchSuccess(t *testing.T) {
	buyer := uuid.New()
	svc := &stubCartService{cart: &cartsvc.CartDTO{Items: []cartsvc.LineDTO{}, Subtotal: decimal.RequireFromString("12.50")}}

	resp := httptest.NewRecorder()
	CartFetch(svc, nil).ServeHTTP(resp, buyerRequest(http.MethodGet, "/api/cart", "", buyer))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastBuyer != buyer {
		t.Fatalf("expected buyer %s, got %s", buyer, svc.lastBuyer)
	}
	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Subtotal.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected subtotal %s", envelope.Data.Subtotal)
	}
}

func TestCartFetchRequiresUser(t *testing.T) {
	resp := httptest.NewRecorder()
	CartFetch(&stubCartService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddReturnsOK(t *testing.T) {
	buyer, productID := uuid.New(), uuid.New()
	svc := &stubCartService{item: &cartsvc.ItemDTO{ProductID: productID, Quantity: 3}}
	body := `{"productId":"` + productID.String() + `","quantity":3}`

	resp := httptest.NewRecorder()
	CartAdd(svc, nil).ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/cart", body, buyer))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastProdID != productID || svc.lastQty != 3 {
		t.Fatalf("unexpected args %s %d", svc.lastProdID, svc.lastQty)
	}
}

func TestCartAddMissingProduct(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")}
	body := `{"productId":"` + uuid.NewString() + `"}`

	resp := httptest.NewRecorder()
	CartAdd(svc, nil).ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/cart", body, uuid.New()))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestCartUpdateZeroRemoves(t *testing.T) {
	productID := uuid.New()
	svc := &stubCartService{}
	req := buyerRequest(http.MethodPut, "/api/cart/update", `{"productId":"`+productID.String()+`","quantity":0}`, uuid.New())

	resp := httptest.NewRecorder()
	CartUpdate(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Item removed from cart") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
	if svc.lastProdID != productID {
		t.Fatalf("expected product %s, got %s", productID, svc.lastProdID)
	}
}

func TestCartRemove(t *testing.T) {
	productID := uuid.New()
	svc := &stubCartService{}
	req := withProductParam(buyerRequest(http.MethodDelete, "/", "", uuid.New()), productID)

	resp := httptest.NewRecorder()
	CartRemove(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastProdID != productID {
		t.Fatalf("expected product %s, got %s", productID, svc.lastProdID)
	}
}

func TestCartClear(t *testing.T) {
	svc := &stubCartService{}
	resp := httptest.NewRecorder()
	CartClear(svc, nil).ServeHTTP(resp, buyerRequest(http.MethodDelete, "/api/cart", "", uuid.New()))

	if resp.Code != http.StatusOK || !svc.cleared {
		t.Fatalf("expected cleared cart, got %d", resp.Code)
	}
}

func TestCartNilService(t *testing.T) {
	resp := httptest.NewRecorder()
	CartClear(nil, nil).ServeHTTP(resp, buyerRequest(http.MethodDelete, "/api/cart", "", uuid.New()))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
