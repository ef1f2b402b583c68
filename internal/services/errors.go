// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("admin access required")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")

	ErrUserNotFound         = errors.New("user not found")
	ErrNoUpdateFields       = errors.New("role or active must be provided")
	ErrSelfDemoteForbidden  = errors.New("cannot remove own admin role")
	ErrSelfDisableForbidden = errors.New("cannot disable own account")
	ErrLastAdminForbidden   = errors.New("at least one active admin must remain")

	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")

	ErrPaymentsDisabled    = errors.New("payments are not configured")
	ErrOrderNotPayable     = errors.New("order is not awaiting payment")
	ErrPaymentNotCompleted = errors.New("payment has not completed")
)

// InsufficientStockError names the first line that could not be reserved.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ProductName)
}

// ValidationError is a malformed request detected below the handler layer.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

type InvalidTransitionError struct {
	From, To string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}
