package application

import (
	"errors"
	"fmt"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
	"github.com/Abka012/Odin-AI/internal/platform/validation"
)

var (
	// ErrNotFound signals no record exists at the given id.
	ErrNotFound = errors.New("inventory item not found")
	// ErrInsufficientStock signals a reduction larger than the stock on hand.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicateConflict signals a product name uniqueness violation.
	ErrDuplicateConflict = errors.New("duplicate product name")
	// ErrForecastUnavailable covers every failure contacting or parsing the forecast service.
	ErrForecastUnavailable = errors.New("forecast unavailable")
	// ErrValidationFailed signals the request violated a field constraint.
	ErrValidationFailed = errors.New("validation failed")
	// ErrWriteConflict signals a conditional write lost a race; the caller may retry.
	ErrWriteConflict = errors.New("write conflict, retry the request")
)

// InsufficientStockError carries the quantities involved in a rejected reduction.
type InsufficientStockError struct {
	ItemID      string
	ProductName string
	Requested   float64
	Available   float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %g, available %g", e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ValidationError lists the offending fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return (&validation.Error{Fields: e.Fields}).Error()
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

func invalidField(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return &ValidationError{Fields: verr.Fields}
	case errors.Is(err, ports.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, ports.ErrVersionConflict):
		return fmt.Errorf("%w: %w", ErrWriteConflict, err)
	case errors.Is(err, ports.ErrDuplicateName):
		return fmt.Errorf("%w: %w", ErrDuplicateConflict, err)
	case errors.Is(err, domain.ErrInvalidQuantity):
		return invalidField("quantity", domain.ErrInvalidQuantity.Error())
	case errors.Is(err, domain.ErrInvalidHorizon):
		return invalidField("months", domain.ErrInvalidHorizon.Error())
	}
	return err
}
