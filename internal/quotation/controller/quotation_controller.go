package controller

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/httpresponse"
	"storefront/internal/quotation/service"
)

type QuotationService interface {
	Create(ctx context.Context, in service.CreateInput) (*domain.Quotation, error)
	SetStatus(ctx context.Context, id int64, status domain.QuotationStatus) (*domain.Quotation, error)
	Get(ctx context.Context, id int64) (*domain.Quotation, error)
	ListAll(ctx context.Context) ([]domain.Quotation, error)
	ListApprovedUnbilled(ctx context.Context, userID int64) ([]domain.Quotation, error)
}

type QuotationController struct {
	service QuotationService
	logger  *zap.Logger
}

func NewQuotationController(service QuotationService, logger *zap.Logger) *QuotationController {
	return &QuotationController{
		service: service,
		logger:  logger,
	}
}

func (c *QuotationController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateQuotationRequest
	if err := httpresponse.DecodeJSON(r, &req); err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	if err := validateCreateRequest(req); err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	q, err := c.service.Create(r.Context(), service.CreateInput{
		UserID:  req.UserID,
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		Contact: strings.TrimSpace(req.Contact),
	})
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	httpresponse.WriteJSON(w, http.StatusCreated, dto.NewQuotationDTO(*q), logger)
}

func (c *QuotationController) Approve(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, domain.QuotationStatusApproved)
}

func (c *QuotationController) Reject(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, domain.QuotationStatusRejected)
}

func (c *QuotationController) decide(w http.ResponseWriter, r *http.Request, status domain.QuotationStatus) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, err := httpresponse.PathID(r, "quotationId")
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	q, err := c.service.SetStatus(r.Context(), id, status)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	httpresponse.WriteJSON(w, http.StatusOK, dto.NewQuotationDTO(*q), logger)
}

func (c *QuotationController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, err := httpresponse.PathID(r, "quotationId")
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	q, err := c.service.Get(r.Context(), id)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	httpresponse.WriteJSON(w, http.StatusOK, dto.NewQuotationDTO(*q), logger)
}

func (c *QuotationController) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	qs, err := c.service.ListAll(r.Context())
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	httpresponse.WriteJSON(w, http.StatusOK, dto.NewQuotationDTOs(qs), logger)
}

func (c *QuotationController) ListApprovedUnbilled(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	userID, err := httpresponse.PathID(r, "userId")
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	qs, err := c.service.ListApprovedUnbilled(r.Context(), userID)
	if err != nil {
		httpresponse.WriteError(w, traceID, err, logger)
		return
	}

	httpresponse.WriteJSON(w, http.StatusOK, dto.NewQuotationDTOs(qs), logger)
}

// Column widths of the quotations table, in characters.
const (
	maxNameLen    = 150
	maxAddressLen = 255
	maxContactLen = 50
)

func validateCreateRequest(req dto.CreateQuotationRequest) error {
	var details []apperrors.ValidationDetail

	if req.UserID <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "userId", Message: "userId must be a positive integer"})
	}
	details = appendTextDetail(details, "name", req.Name, maxNameLen)
	details = appendTextDetail(details, "address", req.Address, maxAddressLen)
	details = appendTextDetail(details, "contact", req.Contact, maxContactLen)

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func appendTextDetail(details []apperrors.ValidationDetail, field, value string, limit int) []apperrors.ValidationDetail {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return append(details, apperrors.ValidationDetail{Field: field, Message: field + " is required"})
	case utf8.RuneCountInString(value) > limit:
		return append(details, apperrors.ValidationDetail{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, limit)})
	}
	return details
}
