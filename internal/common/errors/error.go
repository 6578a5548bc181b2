package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrEmptyAuth         = errors.New("missing authorization")
	ErrTokenInvalid      = errors.New("invalid token")
	ErrUnauthorized      = errors.New("session expired, please log in again")
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrMissingAttribute  = errors.New("required attribute is not selected")
	ErrLineNotFound      = errors.New("cart line not found")
	ErrNotFound          = errors.New("resource not found")
	ErrEmptySlug         = errors.New("product slug is required")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrGuestCheckout     = errors.New("guest checkout is disabled")
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
