package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/httpresponse"
	"storefront/internal/infrastructure/storage"
)

// Parts larger than this spill to temporary files while parsing.
const multipartMemory = 1 << 20

type CreateOrderUseCase interface {
	CreateOrder(ctx context.Context, quotationID int64, file io.Reader, fileName string) (*domain.Order, error)
	PaymentSlip(ctx context.Context, orderID int64) (string, []byte, error)
}

type OrderService interface {
	UpdatePaymentStatus(ctx context.Context, orderID int64, status domain.PaymentStatus) (*domain.Order, error)
	UpdateDeliveryStatus(ctx context.Context, orderID int64, raw string) (*domain.Order, error)
	Status(ctx context.Context, orderID int64) (*dto.OrderStatusResponse, error)
	ListAll(ctx context.Context) ([]dto.OrderDTO, error)
	ListByUser(ctx context.Context, userID int64) ([]dto.OrderDTO, error)
}

type OrderController struct {
	useCase        CreateOrderUseCase
	service        OrderService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewOrderController(useCase CreateOrderUseCase, service OrderService, maxUploadBytes int64, logger *zap.Logger) *OrderController {
	return &OrderController{
		useCase:        useCase,
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	r.Body = http.MaxBytesReader(w, r.Body, c.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		httpresponse.WriteError(w, traceID, c.uploadError(err), logger)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	var details []apperrors.ValidationDetail

	quotationID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("quotationId")), 10, 64)
	if err != nil || quotationID <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "quotationId", Message: "quotationId must be a positive integer"})
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		details = append(details, apperrors.ValidationDetail{Field: "file", Message: "payment slip file is required"})
	} else {
		defer file.Close()
	}

	if len(details) > 0 {
		httpresponse.WriteValidationError(w, traceID, "validation failed", logger, details...)
		return
	}

	o, err := c.useCase.CreateOrder(r.Context(), quotationID, file, header.Filename)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	httpresponse.WriteJSON(w, http.StatusCreated, dto.NewOrderResponse(*o), logger)
}

func (c *OrderController) uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.NewValidationError("upload too large", apperrors.ValidationDetail{
			Field:   "file",
			Message: fmt.Sprintf("request body must not exceed %d bytes", c.maxUploadBytes),
		})
	}
	return apperrors.NewValidationError("invalid multipart body", apperrors.ValidationDetail{
		Field:   "body",
		Message: "request body must be multipart/form-data",
	})
}

func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orders, err := c.service.ListAll(r.Context())
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	httpresponse.WriteJSON(w, http.StatusOK, orders, logger)
}

func (c *OrderController) ListByUser(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	userID, err := httpresponse.PathID(r, "userId")
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	orders, err := c.service.ListByUser(r.Context(), userID)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	httpresponse.WriteJSON(w, http.StatusOK, orders, logger)
}

func (c *OrderController) Status(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, err := httpresponse.PathID(r, "orderId")
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	status, err := c.service.Status(r.Context(), orderID)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	httpresponse.WriteJSON(w, http.StatusOK, status, logger)
}

func (c *OrderController) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	c.decidePayment(w, r, domain.PaymentStatusApproved)
}

func (c *OrderController) RejectPayment(w http.ResponseWriter, r *http.Request) {
	c.decidePayment(w, r, domain.PaymentStatusRejected)
}

func (c *OrderController) decidePayment(w http.ResponseWriter, r *http.Request, status domain.PaymentStatus) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, err := httpresponse.PathID(r, "orderId")
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	o, err := c.service.UpdatePaymentStatus(r.Context(), orderID, status)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	httpresponse.WriteJSON(w, http.StatusOK, dto.NewOrderResponse(*o), logger)
}

func (c *OrderController) UpdateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, err := httpresponse.PathID(r, "orderId")
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	var req dto.DeliveryStatusRequest
	if err := httpresponse.DecodeJSON(r, &req); err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		httpresponse.WriteValidationError(w, traceID, "validation failed", logger,
			apperrors.ValidationDetail{Field: "status", Message: "status is required"})
		return
	}

	o, err := c.service.UpdateDeliveryStatus(r.Context(), orderID, req.Status)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	httpresponse.WriteJSON(w, http.StatusOK, dto.NewOrderResponse(*o), logger)
}

func (c *OrderController) PaymentSlip(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, err := httpresponse.PathID(r, "orderId")
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	locator, data, err := c.useCase.PaymentSlip(r.Context(), orderID)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	// The slip is uploaded by a customer; browsers must not sniff it into
	// something executable.
	w.Header().Set("Content-Type", storage.ContentType(locator))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", locator))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Warn("failed to write payment slip", zap.Int64("orderId", orderID), zap.Error(err))
	}
}
