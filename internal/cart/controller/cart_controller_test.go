package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
)

type mockCartService struct {
	AddItemFunc         func(ctx context.Context, userID, productID int64, qty int) error
	SetQuantityFunc     func(ctx context.Context, userID, productID int64, qty int) (bool, error)
	RemoveItemFunc      func(ctx context.Context, userID, productID int64) error
	ClearFunc           func(ctx context.Context, userID int64) error
	SnapshotFunc        func(ctx context.Context, userID int64) ([]domain.CartLine, error)
	IsProductInCartFunc func(ctx context.Context, userID, productID int64) (bool, error)
}

func (m *mockCartService) AddItem(ctx context.Context, userID, productID int64, qty int) error {
	return m.AddItemFunc(ctx, userID, productID, qty)
}

func (m *mockCartService) SetQuantity(ctx context.Context, userID, productID int64, qty int) (bool, error) {
	return m.SetQuantityFunc(ctx, userID, productID, qty)
}

func (m *mockCartService) RemoveItem(ctx context.Context, userID, productID int64) error {
	return m.RemoveItemFunc(ctx, userID, productID)
}

func (m *mockCartService) Clear(ctx context.Context, userID int64) error {
	return m.ClearFunc(ctx, userID)
}

func (m *mockCartService) Snapshot(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	return m.SnapshotFunc(ctx, userID)
}

func (m *mockCartService) IsProductInCart(ctx context.Context, userID, productID int64) (bool, error) {
	return m.IsProductInCartFunc(ctx, userID, productID)
}

func newRouter(c *CartController) http.Handler {
	r := chi.NewRouter()
	r.Post("/cart/items", c.AddItem)
	r.Put("/cart/items", c.SetQuantity)
	r.Delete("/cart/users/{userId}/items/{productId}", c.RemoveItem)
	r.Delete("/cart/users/{userId}", c.Clear)
	r.Get("/cart/users/{userId}", c.GetCart)
	r.Get("/cart/users/{userId}/products/{productId}", c.IsProductInCart)
	return r
}

func oneLine(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	return []domain.CartLine{{UserID: userID, ProductID: 2, Quantity: 3, UnitPrice: decimal.NewFromInt(10)}}, nil
}

func TestAddItem_Created(t *testing.T) {
	svc := &mockCartService{
		AddItemFunc: func(ctx context.Context, userID, productID int64, qty int) error {
			assert.Equal(t, int64(1), userID)
			assert.Equal(t, int64(2), productID)
			assert.Equal(t, 3, qty)
			return nil
		},
		SnapshotFunc: oneLine,
	}
	c := NewCartController(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"userId":1,"productId":2,"quantity":3}`))
	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body dto.CartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.ItemCount)
	assert.Equal(t, "30", body.TotalValue.String())
}

func TestAddItem_ValidationDetails(t *testing.T) {
	c := NewCartController(&mockCartService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"userId":0,"productId":2,"quantity":0}`))
	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Details, 2)
}

func TestAddItem_InsufficientStock(t *testing.T) {
	svc := &mockCartService{
		AddItemFunc: func(ctx context.Context, userID, productID int64, qty int) error {
			return apperrors.NewInsufficientStockError(productID, qty, 1)
		},
	}
	c := NewCartController(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"userId":1,"productId":2,"quantity":3}`))
	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSetQuantity_RemovedReturnsNoContent(t *testing.T) {
	svc := &mockCartService{
		SetQuantityFunc: func(ctx context.Context, userID, productID int64, qty int) (bool, error) {
			return true, nil
		},
	}
	c := NewCartController(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPut, "/cart/items", strings.NewReader(`{"userId":1,"productId":2,"quantity":0}`))
	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRemoveItem(t *testing.T) {
	svc := &mockCartService{
		RemoveItemFunc: func(ctx context.Context, userID, productID int64) error {
			return nil
		},
	}
	c := NewCartController(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cart/users/1/items/2", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClear_InvalidUser(t *testing.T) {
	c := NewCartController(&mockCartService{}, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cart/users/x", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIsProductInCart(t *testing.T) {
	svc := &mockCartService{
		IsProductInCartFunc: func(ctx context.Context, userID, productID int64) (bool, error) {
			return true, nil
		},
	}
	c := NewCartController(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart/users/1/products/2", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body dto.InCartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.InCart)
}
