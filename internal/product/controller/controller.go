package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/httpresponse"
)

type SearchUseCase interface {
	SearchProducts(ctx context.Context, req dto.SearchProductsRequest) (*dto.SearchProductsResponse, error)
}

type Service interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	SetStock(ctx context.Context, id int64, quantity int) error
}

type AvailabilityChecker interface {
	CheckAvailable(ctx context.Context, productID int64, qty int) (bool, error)
}

type Controller struct {
	useCase   SearchUseCase
	service   Service
	inventory AvailabilityChecker
	logger    *zap.Logger
}

func NewController(useCase SearchUseCase, service Service, inventory AvailabilityChecker, logger *zap.Logger) *Controller {
	return &Controller{
		useCase:   useCase,
		service:   service,
		inventory: inventory,
		logger:    logger,
	}
}

func (c *Controller) HandleSearchProducts(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.SearchProductsRequest
	if err := httpresponse.DecodeJSON(r, &req); err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	if err := validateSearchRequest(req); err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	resp, err := c.useCase.SearchProducts(r.Context(), req)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	httpresponse.WriteJSON(w, http.StatusOK, resp, logger)
}

func (c *Controller) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, err := httpresponse.PathID(r, "productId")
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	p, err := c.service.GetProduct(r.Context(), id)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	httpresponse.WriteJSON(w, http.StatusOK, dto.NewProductDTO(*p), logger)
}

func (c *Controller) HandleSetStock(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, err := httpresponse.PathID(r, "productId")
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	var req dto.SetStockRequest
	if err := httpresponse.DecodeJSON(r, &req); err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	if err := c.service.SetStock(r.Context(), id, req.Quantity); err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	p, err := c.service.GetProduct(r.Context(), id)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	httpresponse.WriteJSON(w, http.StatusOK, dto.NewProductDTO(*p), logger)
}

// HandleAvailability answers whether qty units (default 1) can be supplied
// right now. The answer is advisory; nothing is reserved.
func (c *Controller) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, err := httpresponse.PathID(r, "productId")
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	qty := 1
	if raw := r.URL.Query().Get("qty"); raw != "" {
		qty, err = strconv.Atoi(raw)
		if err != nil || qty <= 0 {
			httpresponse.WriteError(w, traceID, apperrors.NewValidationError("invalid qty", apperrors.ValidationDetail{
				Field:   "qty",
				Message: "qty must be a positive integer",
			}), logger)
			return
		}
	}

	ok, err := c.inventory.CheckAvailable(r.Context(), id, qty)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	httpresponse.WriteJSON(w, http.StatusOK, dto.AvailabilityResponse{
		ProductID: id,
		Quantity:  qty,
		Available: ok,
	}, logger)
}

func validateSearchRequest(req dto.SearchProductsRequest) error {
	if len(req.ProductIDs) == 0 {
		return apperrors.NewValidationError("productIds is required", apperrors.ValidationDetail{
			Field:   "productIds",
			Message: "productIds must not be empty",
		})
	}

	if len(req.ProductIDs) > 100 {
		msg := "productIds exceeds maximum of 100"
		return apperrors.NewValidationError(msg, apperrors.ValidationDetail{
			Field:   "productIds",
			Message: msg,
		})
	}

	for _, id := range req.ProductIDs {
		if id <= 0 {
			msg := "each productId must be a positive integer"
			return apperrors.NewValidationError(msg, apperrors.ValidationDetail{
				Field:   "productIds",
				Message: msg,
			})
		}
	}

	return nil
}
