package booking

import "errors"

var (
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrInvalidQuantity       = errors.New("quantity must be a positive integer")
	ErrInsufficientInventory = errors.New("not enough tickets available")
)
