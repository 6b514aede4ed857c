package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
)

type mockCreateOrderUseCase struct {
	CreateOrderFunc func(ctx context.Context, quotationID int64, file io.Reader, fileName string) (*domain.Order, error)
	PaymentSlipFunc func(ctx context.Context, orderID int64) (string, []byte, error)
}

func (m *mockCreateOrderUseCase) CreateOrder(ctx context.Context, quotationID int64, file io.Reader, fileName string) (*domain.Order, error) {
	return m.CreateOrderFunc(ctx, quotationID, file, fileName)
}

func (m *mockCreateOrderUseCase) PaymentSlip(ctx context.Context, orderID int64) (string, []byte, error) {
	return m.PaymentSlipFunc(ctx, orderID)
}

type mockOrderService struct {
	UpdatePaymentStatusFunc  func(ctx context.Context, orderID int64, status domain.PaymentStatus) (*domain.Order, error)
	UpdateDeliveryStatusFunc func(ctx context.Context, orderID int64, raw string) (*domain.Order, error)
	StatusFunc               func(ctx context.Context, orderID int64) (*dto.OrderStatusResponse, error)
	ListAllFunc              func(ctx context.Context) ([]dto.OrderDTO, error)
	ListByUserFunc           func(ctx context.Context, userID int64) ([]dto.OrderDTO, error)
}

func (m *mockOrderService) UpdatePaymentStatus(ctx context.Context, orderID int64, status domain.PaymentStatus) (*domain.Order, error) {
	return m.UpdatePaymentStatusFunc(ctx, orderID, status)
}

func (m *mockOrderService) UpdateDeliveryStatus(ctx context.Context, orderID int64, raw string) (*domain.Order, error) {
	return m.UpdateDeliveryStatusFunc(ctx, orderID, raw)
}

func (m *mockOrderService) Status(ctx context.Context, orderID int64) (*dto.OrderStatusResponse, error) {
	return m.StatusFunc(ctx, orderID)
}

func (m *mockOrderService) ListAll(ctx context.Context) ([]dto.OrderDTO, error) {
	return m.ListAllFunc(ctx)
}

func (m *mockOrderService) ListByUser(ctx context.Context, userID int64) ([]dto.OrderDTO, error) {
	return m.ListByUserFunc(ctx, userID)
}

func newRouter(c *OrderController) http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", c.Create)
	r.Get("/orders", c.List)
	r.Get("/orders/users/{userId}", c.ListByUser)
	r.Get("/orders/{orderId}/status", c.Status)
	r.Post("/orders/{orderId}/payment/approve", c.ApprovePayment)
	r.Post("/orders/{orderId}/payment/reject", c.RejectPayment)
	r.Post("/orders/{orderId}/delivery-status", c.UpdateDeliveryStatus)
	r.Get("/orders/{orderId}/payment-slip", c.PaymentSlip)
	return r
}

func multipartRequest(t *testing.T, quotationID string, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if quotationID != "" {
		require.NoError(t, mw.WriteField("quotationId", quotationID))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/orders", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCreate_Created(t *testing.T) {
	uc := &mockCreateOrderUseCase{
		CreateOrderFunc: func(ctx context.Context, quotationID int64, file io.Reader, fileName string) (*domain.Order, error) {
			data, err := io.ReadAll(file)
			require.NoError(t, err)
			assert.Equal(t, "slip-bytes", string(data))
			assert.Equal(t, "receipt.pdf", fileName)
			return &domain.Order{
				ID:            1,
				QuotationID:   quotationID,
				TotalAmount:   decimal.NewFromInt(250),
				PaymentSlip:   "1_ab_receipt.pdf",
				PaymentStatus: domain.PaymentStatusPending,
				DeliverStatus: domain.DeliverStatusPending,
				CreatedAt:     time.Now().UTC(),
			}, nil
		},
	}
	c := NewOrderController(uc, &mockOrderService{}, 1<<20, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, multipartRequest(t, "11", "receipt.pdf", []byte("slip-bytes")))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var got dto.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(11), got.QuotationID)
	assert.Equal(t, "PENDING", got.PaymentStatus)
	assert.Equal(t, "PENDING", got.DeliverStatus)
}

func TestCreate_MissingParts(t *testing.T) {
	c := NewOrderController(&mockCreateOrderUseCase{}, &mockOrderService{}, 1<<20, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, multipartRequest(t, "abc", "", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var got dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Details, 2)
}

func TestCreate_NotMultipart(t *testing.T) {
	c := NewOrderController(&mockCreateOrderUseCase{}, &mockOrderService{}, 1<<20, zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"quotationId":1}`))
	req.Header.Set("Content-Type", "application/json")
	newRouter(c).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_TooLarge(t *testing.T) {
	c := NewOrderController(&mockCreateOrderUseCase{}, &mockOrderService{}, 64, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, multipartRequest(t, "11", "receipt.pdf", bytes.Repeat([]byte("x"), 4096)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var got dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Details, 1)
	assert.Equal(t, "file", got.Details[0].Field)
}

func TestCreate_Duplicate(t *testing.T) {
	uc := &mockCreateOrderUseCase{
		CreateOrderFunc: func(ctx context.Context, quotationID int64, file io.Reader, fileName string) (*domain.Order, error) {
			return nil, apperrors.NewDuplicateOrderError(quotationID)
		},
	}
	c := NewOrderController(uc, &mockOrderService{}, 1<<20, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, multipartRequest(t, "11", "receipt.pdf", []byte("slip")))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreate_InsufficientStock(t *testing.T) {
	uc := &mockCreateOrderUseCase{
		CreateOrderFunc: func(ctx context.Context, quotationID int64, file io.Reader, fileName string) (*domain.Order, error) {
			return nil, apperrors.NewInsufficientStockError(4, 5, 2)
		},
	}
	c := NewOrderController(uc, &mockOrderService{}, 1<<20, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, multipartRequest(t, "11", "receipt.pdf", []byte("slip")))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPaymentDecisions(t *testing.T) {
	var decided []domain.PaymentStatus
	svc := &mockOrderService{
		UpdatePaymentStatusFunc: func(ctx context.Context, orderID int64, status domain.PaymentStatus) (*domain.Order, error) {
			decided = append(decided, status)
			return &domain.Order{ID: orderID, PaymentStatus: status}, nil
		},
	}
	c := NewOrderController(&mockCreateOrderUseCase{}, svc, 1<<20, zap.NewNop())
	router := newRouter(c)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders/5/payment/approve", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders/6/payment/reject", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []domain.PaymentStatus{domain.PaymentStatusApproved, domain.PaymentStatusRejected}, decided)
}

func TestUpdateDeliveryStatus(t *testing.T) {
	svc := &mockOrderService{
		UpdateDeliveryStatusFunc: func(ctx context.Context, orderID int64, raw string) (*domain.Order, error) {
			assert.Equal(t, "shipped", raw)
			return &domain.Order{ID: orderID, DeliverStatus: domain.DeliverStatusShipped}, nil
		},
	}
	c := NewOrderController(&mockCreateOrderUseCase{}, svc, 1<<20, zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders/5/delivery-status", strings.NewReader(`{"status":"shipped"}`))
	newRouter(c).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got dto.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "SHIPPED", got.DeliverStatus)
}

func TestUpdateDeliveryStatus_Invalid(t *testing.T) {
	svc := &mockOrderService{
		UpdateDeliveryStatusFunc: func(ctx context.Context, orderID int64, raw string) (*domain.Order, error) {
			return nil, apperrors.NewInvalidStatusError("delivery", raw)
		},
	}
	c := NewOrderController(&mockCreateOrderUseCase{}, svc, 1<<20, zap.NewNop())
	router := newRouter(c)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders/5/delivery-status", strings.NewReader(`{"status":"LOST"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders/5/delivery-status", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatus(t *testing.T) {
	svc := &mockOrderService{
		StatusFunc: func(ctx context.Context, orderID int64) (*dto.OrderStatusResponse, error) {
			return &dto.OrderStatusResponse{OrderID: orderID, PaymentStatus: "APPROVED", DeliverStatus: "PROCESSING"}, nil
		},
	}
	c := NewOrderController(&mockCreateOrderUseCase{}, svc, 1<<20, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/5/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var got dto.OrderStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(5), got.OrderID)
	assert.Equal(t, "PROCESSING", got.DeliverStatus)
}

func TestListByUser_InvalidID(t *testing.T) {
	c := NewOrderController(&mockCreateOrderUseCase{}, &mockOrderService{}, 1<<20, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/users/zero", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestList(t *testing.T) {
	svc := &mockOrderService{
		ListAllFunc: func(ctx context.Context) ([]dto.OrderDTO, error) {
			return []dto.OrderDTO{{OrderID: 1, CustomerName: "Jane"}}, nil
		},
	}
	c := NewOrderController(&mockCreateOrderUseCase{}, svc, 1<<20, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []dto.OrderDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Jane", got[0].CustomerName)
}

func TestPaymentSlip_Inline(t *testing.T) {
	uc := &mockCreateOrderUseCase{
		PaymentSlipFunc: func(ctx context.Context, orderID int64) (string, []byte, error) {
			return "1_ab_receipt.png", []byte("png-bytes"), nil
		},
	}
	c := NewOrderController(uc, &mockOrderService{}, 1<<20, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/5/payment-slip", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "inline"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "png-bytes", rec.Body.String())
}

func TestPaymentSlip_NotFound(t *testing.T) {
	uc := &mockCreateOrderUseCase{
		PaymentSlipFunc: func(ctx context.Context, orderID int64) (string, []byte, error) {
			return "", nil, apperrors.NewNotFoundError("order not found")
		},
	}
	c := NewOrderController(uc, &mockOrderService{}, 1<<20, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/5/payment-slip", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
