package client

import (
	"fmt"
	"strings"

	"github.com/yeremiapane/table-order/ordering"
)

// known dipakai untuk memetakan pesan server kembali ke error ordering
var known = []error{
	ordering.ErrInvalidTableID,
	ordering.ErrInvalidOrderID,
	ordering.ErrTableNotFound,
	ordering.ErrOrderNotFound,
	ordering.ErrRelationMissing,
	ordering.ErrStaleOrder,
	ordering.ErrOrderLocked,
	ordering.ErrInvalidTransition,
	ordering.ErrUnknownStatus,
	ordering.ErrNotPayable,
	ordering.ErrEmptyCart,
	ordering.ErrInvalidQuantity,
	ordering.ErrItemUnavailable,
}

// APIError is a non-2xx answer from the server. errors.Is matches it against
// the ordering errors when the message starts with one of them.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	for _, err := range known {
		if strings.HasPrefix(e.Message, err.Error()) {
			return err
		}
	}
	return nil
}
