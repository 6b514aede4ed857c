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
	"storefront/internal/quotation/service"
)

type mockQuotationService struct {
	CreateFunc               func(ctx context.Context, in service.CreateInput) (*domain.Quotation, error)
	SetStatusFunc            func(ctx context.Context, id int64, status domain.QuotationStatus) (*domain.Quotation, error)
	GetFunc                  func(ctx context.Context, id int64) (*domain.Quotation, error)
	ListAllFunc              func(ctx context.Context) ([]domain.Quotation, error)
	ListApprovedUnbilledFunc func(ctx context.Context, userID int64) ([]domain.Quotation, error)
}

func (m *mockQuotationService) Create(ctx context.Context, in service.CreateInput) (*domain.Quotation, error) {
	return m.CreateFunc(ctx, in)
}

func (m *mockQuotationService) SetStatus(ctx context.Context, id int64, status domain.QuotationStatus) (*domain.Quotation, error) {
	return m.SetStatusFunc(ctx, id, status)
}

func (m *mockQuotationService) Get(ctx context.Context, id int64) (*domain.Quotation, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockQuotationService) ListAll(ctx context.Context) ([]domain.Quotation, error) {
	return m.ListAllFunc(ctx)
}

func (m *mockQuotationService) ListApprovedUnbilled(ctx context.Context, userID int64) ([]domain.Quotation, error) {
	return m.ListApprovedUnbilledFunc(ctx, userID)
}

func newRouter(c *QuotationController) http.Handler {
	r := chi.NewRouter()
	r.Post("/quotations", c.Create)
	r.Get("/quotations", c.List)
	r.Get("/quotations/{quotationId}", c.Get)
	r.Post("/quotations/{quotationId}/approve", c.Approve)
	r.Post("/quotations/{quotationId}/reject", c.Reject)
	r.Get("/quotations/users/{userId}/approved", c.ListApprovedUnbilled)
	return r
}

func TestCreate_Created(t *testing.T) {
	svc := &mockQuotationService{
		CreateFunc: func(ctx context.Context, in service.CreateInput) (*domain.Quotation, error) {
			assert.Equal(t, "Jane", in.Name)
			return &domain.Quotation{ID: 5, UserID: in.UserID, Status: domain.QuotationStatusPending, TotalPrice: decimal.NewFromInt(250)}, nil
		},
	}
	c := NewQuotationController(svc, zap.NewNop())

	body := `{"userId":1,"name":" Jane ","address":"1 Main St","contact":"555"}`
	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quotations", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var got dto.QuotationDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(5), got.QuotationID)
	assert.Equal(t, "PENDING", got.Status)
	assert.True(t, got.TotalPrice.Equal(decimal.NewFromInt(250)))
}

func TestCreate_MissingFields(t *testing.T) {
	c := NewQuotationController(&mockQuotationService{}, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quotations", strings.NewReader(`{"userId":1}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var got dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Details, 3)
}

func TestCreate_FieldsTooLong(t *testing.T) {
	svc := &mockQuotationService{
		CreateFunc: func(ctx context.Context, in service.CreateInput) (*domain.Quotation, error) {
			t.Fatal("over-long fields must not reach the store")
			return nil, nil
		},
	}
	c := NewQuotationController(svc, zap.NewNop())

	payload, err := json.Marshal(dto.CreateQuotationRequest{
		UserID:  1,
		Name:    strings.Repeat("n", maxNameLen+1),
		Address: "1 Main St",
		Contact: strings.Repeat("5", maxContactLen+1),
	})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quotations", strings.NewReader(string(payload))))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var got dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Details, 2)
	assert.Equal(t, "name", got.Details[0].Field)
	assert.Equal(t, "contact", got.Details[1].Field)
}

func TestCreate_FieldsAtLimitAccepted(t *testing.T) {
	var in service.CreateInput
	svc := &mockQuotationService{
		CreateFunc: func(ctx context.Context, got service.CreateInput) (*domain.Quotation, error) {
			in = got
			return &domain.Quotation{ID: 5, UserID: got.UserID, Status: domain.QuotationStatusPending}, nil
		},
	}
	c := NewQuotationController(svc, zap.NewNop())

	payload, err := json.Marshal(dto.CreateQuotationRequest{
		UserID:  1,
		Name:    strings.Repeat("é", maxNameLen),
		Address: strings.Repeat("a", maxAddressLen),
		Contact: "  " + strings.Repeat("5", maxContactLen) + "  ",
	})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quotations", strings.NewReader(string(payload))))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, in.Contact, maxContactLen)
}

func TestCreate_EmptyCart(t *testing.T) {
	svc := &mockQuotationService{
		CreateFunc: func(ctx context.Context, in service.CreateInput) (*domain.Quotation, error) {
			return nil, apperrors.NewEmptyCartError(in.UserID)
		},
	}
	c := NewQuotationController(svc, zap.NewNop())

	body := `{"userId":1,"name":"Jane","address":"1 Main St","contact":"555"}`
	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quotations", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestApproveAndReject(t *testing.T) {
	var decided []domain.QuotationStatus
	svc := &mockQuotationService{
		SetStatusFunc: func(ctx context.Context, id int64, status domain.QuotationStatus) (*domain.Quotation, error) {
			decided = append(decided, status)
			return &domain.Quotation{ID: id, Status: status}, nil
		},
	}
	c := NewQuotationController(svc, zap.NewNop())
	router := newRouter(c)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quotations/7/approve", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quotations/8/reject", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []domain.QuotationStatus{domain.QuotationStatusApproved, domain.QuotationStatusRejected}, decided)
}

func TestApprove_InvalidTransition(t *testing.T) {
	svc := &mockQuotationService{
		SetStatusFunc: func(ctx context.Context, id int64, status domain.QuotationStatus) (*domain.Quotation, error) {
			return nil, apperrors.NewInvalidTransitionError("quotation", "REJECTED", "APPROVED")
		},
	}
	c := NewQuotationController(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quotations/7/approve", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGet_NotFound(t *testing.T) {
	svc := &mockQuotationService{
		GetFunc: func(ctx context.Context, id int64) (*domain.Quotation, error) {
			return nil, apperrors.NewNotFoundError("quotation not found")
		},
	}
	c := NewQuotationController(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quotations/7", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListApprovedUnbilled(t *testing.T) {
	svc := &mockQuotationService{
		ListApprovedUnbilledFunc: func(ctx context.Context, userID int64) ([]domain.Quotation, error) {
			return []domain.Quotation{{ID: 1, UserID: userID, Status: domain.QuotationStatusApproved}}, nil
		},
	}
	c := NewQuotationController(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quotations/users/3/approved", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []dto.QuotationDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].UserID)
}
