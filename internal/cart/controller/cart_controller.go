package controller

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/httpresponse"
)

type CartService interface {
	AddItem(ctx context.Context, userID, productID int64, qty int) error
	SetQuantity(ctx context.Context, userID, productID int64, qty int) (bool, error)
	RemoveItem(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
	Snapshot(ctx context.Context, userID int64) ([]domain.CartLine, error)
	IsProductInCart(ctx context.Context, userID, productID int64) (bool, error)
}

type CartController struct {
	service CartService
	logger  *zap.Logger
}

func NewCartController(service CartService, logger *zap.Logger) *CartController {
	return &CartController{
		service: service,
		logger:  logger,
	}
}

func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	req, err := decodeItemRequest(r, true)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	if err := c.service.AddItem(r.Context(), req.UserID, req.ProductID, req.Quantity); err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	c.writeCart(w, r, traceID, req.UserID, http.StatusCreated, logger)
}

func (c *CartController) SetQuantity(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	req, err := decodeItemRequest(r, false)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	removed, err := c.service.SetQuantity(r.Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	if removed {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	c.writeCart(w, r, traceID, req.UserID, http.StatusOK, logger)
}

func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	userID, productID, err := userAndProduct(r)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	if err := c.service.RemoveItem(r.Context(), userID, productID); err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	userID, err := httpresponse.PathID(r, "userId")
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	if err := c.service.Clear(r.Context(), userID); err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	userID, err := httpresponse.PathID(r, "userId")
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	c.writeCart(w, r, traceID, userID, http.StatusOK, logger)
}

func (c *CartController) IsProductInCart(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	userID, productID, err := userAndProduct(r)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	inCart, err := c.service.IsProductInCart(r.Context(), userID, productID)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	httpresponse.WriteJSON(w, http.StatusOK, dto.InCartResponse{UserID: userID, ProductID: productID, InCart: inCart}, logger)
}

func (c *CartController) writeCart(w http.ResponseWriter, r *http.Request, traceID string, userID int64, status int, logger *zap.Logger) {
	lines, err := c.service.Snapshot(r.Context(), userID)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}
	httpresponse.WriteJSON(w, status, dto.NewCartResponse(userID, lines), logger)
}

func decodeItemRequest(r *http.Request, positiveQuantity bool) (dto.CartItemRequest, error) {
	var req dto.CartItemRequest
	if err := httpresponse.DecodeJSON(r, &req); err != nil {
		return req, err
	}

	var details []apperrors.ValidationDetail
	if req.UserID <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "userId", Message: "userId must be a positive integer"})
	}
	if req.ProductID <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "productId", Message: "productId must be a positive integer"})
	}
	if positiveQuantity && req.Quantity <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "quantity", Message: "quantity must be greater than zero"})
	}

	if len(details) > 0 {
		return req, apperrors.NewValidationError("validation failed", details...)
	}
	return req, nil
}

func userAndProduct(r *http.Request) (int64, int64, error) {
	userID, err := httpresponse.PathID(r, "userId")
	if err != nil {
		return 0, 0, err
	}
	productID, err := httpresponse.PathID(r, "productId")
	if err != nil {
		return 0, 0, err
	}
	return userID, productID, nil
}
