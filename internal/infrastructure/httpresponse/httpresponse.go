package httpresponse

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
)

func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// WriteError maps err onto a status code and writes the error envelope.
// Unknown errors are logged and reported as 500 without their message.
func WriteError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	status, code, message, details := classify(err)

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("unexpected error", zap.Error(err))
	case status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		logger.Warn("request rejected", zap.String("code", code), zap.Error(err))
	}

	WriteJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}, logger)
}

func WriteValidationError(w http.ResponseWriter, traceID string, message string, logger *zap.Logger, details ...apperrors.ValidationDetail) {
	WriteError(w, traceID, apperrors.NewValidationError(message, details...), logger)
}

func classify(err error) (int, string, string, []apperrors.ValidationDetail) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		return http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details
	}
	if _, ok := apperrors.IsInvalidStatusError(err); ok {
		return http.StatusBadRequest, "INVALID_STATUS", err.Error(), nil
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return http.StatusNotFound, "NOT_FOUND", err.Error(), nil
	}
	if _, ok := apperrors.IsInvalidTransitionError(err); ok {
		return http.StatusConflict, "INVALID_TRANSITION", err.Error(), nil
	}
	if _, ok := apperrors.IsDuplicateOrderError(err); ok {
		return http.StatusConflict, "DUPLICATE_ORDER", err.Error(), nil
	}
	if _, ok := apperrors.IsDeadlockError(err); ok {
		return http.StatusConflict, "DEADLOCK", err.Error(), nil
	}
	if _, ok := apperrors.IsInsufficientStockError(err); ok {
		return http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK", err.Error(), nil
	}
	if _, ok := apperrors.IsEmptyCartError(err); ok {
		return http.StatusUnprocessableEntity, "EMPTY_CART", err.Error(), nil
	}
	if _, ok := apperrors.IsProductUnavailableError(err); ok {
		return http.StatusUnprocessableEntity, "PRODUCT_UNAVAILABLE", err.Error(), nil
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil
}
