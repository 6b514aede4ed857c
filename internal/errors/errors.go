package errors

import (
	stderrors "errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if stderrors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

// InvalidStatusError reports a status string that maps to no known value.
type InvalidStatusError struct {
	Entity string
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid %s status %q", e.Entity, e.Status)
}

func NewInvalidStatusError(entity, status string) *InvalidStatusError {
	return &InvalidStatusError{Entity: entity, Status: status}
}

func IsInvalidStatusError(err error) (*InvalidStatusError, bool) {
	var ise *InvalidStatusError
	if stderrors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

// InvalidTransitionError reports a status change not allowed from the current state.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

func NewInvalidTransitionError(entity, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, From: from, To: to}
}

func IsInvalidTransitionError(err error) (*InvalidTransitionError, bool) {
	var ite *InvalidTransitionError
	if stderrors.As(err, &ite) {
		return ite, true
	}
	return nil, false
}

type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func NewInsufficientStockError(productID int64, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{ProductID: productID, Requested: requested, Available: available}
}

func IsInsufficientStockError(err error) (*InsufficientStockError, bool) {
	var ise *InsufficientStockError
	if stderrors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

type EmptyCartError struct {
	UserID int64
}

func (e *EmptyCartError) Error() string {
	return fmt.Sprintf("cart of user %d is empty", e.UserID)
}

func NewEmptyCartError(userID int64) *EmptyCartError {
	return &EmptyCartError{UserID: userID}
}

func IsEmptyCartError(err error) (*EmptyCartError, bool) {
	var ece *EmptyCartError
	if stderrors.As(err, &ece) {
		return ece, true
	}
	return nil, false
}

type DuplicateOrderError struct {
	QuotationID int64
}

func (e *DuplicateOrderError) Error() string {
	return fmt.Sprintf("an order already exists for quotation %d", e.QuotationID)
}

func NewDuplicateOrderError(quotationID int64) *DuplicateOrderError {
	return &DuplicateOrderError{QuotationID: quotationID}
}

func IsDuplicateOrderError(err error) (*DuplicateOrderError, bool) {
	var doe *DuplicateOrderError
	if stderrors.As(err, &doe) {
		return doe, true
	}
	return nil, false
}

// ProductUnavailableError covers both missing and inactive products.
type ProductUnavailableError struct {
	ProductID int64
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %d is not available", e.ProductID)
}

func NewProductUnavailableError(productID int64) *ProductUnavailableError {
	return &ProductUnavailableError{ProductID: productID}
}

func IsProductUnavailableError(err error) (*ProductUnavailableError, bool) {
	var pue *ProductUnavailableError
	if stderrors.As(err, &pue) {
		return pue, true
	}
	return nil, false
}

type DeadlockError struct {
	Message string
}

func (e *DeadlockError) Error() string {
	return e.Message
}

func NewDeadlockError(message string) *DeadlockError {
	return &DeadlockError{Message: message}
}

func IsDeadlockError(err error) (*DeadlockError, bool) {
	var de *DeadlockError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}
