package httpresponse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperrors.NewValidationError("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid status", apperrors.NewInvalidStatusError("delivery", "LOST"), http.StatusBadRequest, "INVALID_STATUS"},
		{"not found", apperrors.NewNotFoundError("order 1 not found"), http.StatusNotFound, "NOT_FOUND"},
		{"invalid transition", apperrors.NewInvalidTransitionError("quotation", "APPROVED", "REJECTED"), http.StatusConflict, "INVALID_TRANSITION"},
		{"duplicate order", apperrors.NewDuplicateOrderError(4), http.StatusConflict, "DUPLICATE_ORDER"},
		{"deadlock", apperrors.NewDeadlockError("deadlock"), http.StatusConflict, "DEADLOCK"},
		{"insufficient stock", fmt.Errorf("wrapped: %w", apperrors.NewInsufficientStockError(1, 3, 2)), http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
		{"empty cart", apperrors.NewEmptyCartError(1), http.StatusUnprocessableEntity, "EMPTY_CART"},
		{"product unavailable", apperrors.NewProductUnavailableError(1), http.StatusUnprocessableEntity, "PRODUCT_UNAVAILABLE"},
		{"internal", errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, "trace-1", tt.err, zap.NewNop())

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "trace-1", body.TraceID)
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestWriteError_InternalHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, "t", errors.New("password=hunter2"), zap.NewNop())

	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.Contains(t, rec.Body.String(), "an unexpected error occurred")
}

func TestWriteValidationError_Details(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, "t", "validation failed", zap.NewNop(),
		apperrors.ValidationDetail{Field: "quantity", Message: "quantity must be positive"})

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Details, 1)
	assert.Equal(t, "quantity", body.Details[0].Field)
}

func TestWriteJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusNoContent, nil, zap.NewNop())

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
