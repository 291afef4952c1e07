package ordering

import "errors"

var (
	ErrInvalidTableID    = errors.New("Invalid table ID format")
	ErrInvalidOrderID    = errors.New("Invalid order ID format")
	ErrTableNotFound     = errors.New("Table not found")
	ErrOrderNotFound     = errors.New("Order not found")
	ErrRelationMissing   = errors.New("Orders table not found. Please contact support.")
	ErrStaleOrder        = errors.New("Order was changed by someone else, refresh and try again")
	ErrOrderLocked       = errors.New("Order can no longer be modified")
	ErrInvalidTransition = errors.New("Invalid status transition")
	ErrUnknownStatus     = errors.New("Unknown order status")
	ErrNotPayable        = errors.New("Order is not ready for payment")
	ErrEmptyCart         = errors.New("Cart is empty")
	ErrInvalidQuantity   = errors.New("Quantity must be greater than zero")
	ErrItemUnavailable   = errors.New("Menu item is not available")
)
