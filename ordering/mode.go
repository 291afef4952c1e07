package ordering

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/yeremiapane/table-order/models"
)

type Mode string

const (
	ModeMenu    Mode = "menu"
	ModeTracker Mode = "tracker"
	ModeBill    Mode = "bill"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeMenu, ModeTracker, ModeBill:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Resolution is what a table scan lands on. OrderID is set only for tracker mode.
type Resolution struct {
	Mode    Mode   `json:"mode"`
	OrderID string `json:"order_id,omitempty"`
}

// ParseID accepts only the canonical 36-char 8-4-4-4-12 form.
func ParseID(id string) (uuid.UUID, bool) {
	if len(id) != 36 {
		return uuid.Nil, false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, false
	}
	return parsed, true
}

func ValidateTableID(id string) error {
	if _, ok := ParseID(id); !ok {
		return ErrInvalidTableID
	}
	return nil
}

func ValidateOrderID(id string) error {
	if _, ok := ParseID(id); !ok {
		return ErrInvalidOrderID
	}
	return nil
}

// ResolveMode picks the interface a table should open in from the table's orders.
// Every order that is not completed or cancelled counts, including one with a
// status this package does not know; the most recently created one decides. Ties on
// created_at are broken by the larger id so the result never depends on input order.
func ResolveMode(orders []models.Order) Resolution {
	var latest *models.Order
	for i := range orders {
		o := &orders[i]
		if !Status(o.Status).IsOpen() {
			continue
		}
		if latest == nil || newer(o, latest) {
			latest = o
		}
	}

	if latest == nil {
		return Resolution{Mode: ModeMenu}
	}
	if Status(latest.Status) == StatusServed {
		return Resolution{Mode: ModeBill}
	}
	return Resolution{Mode: ModeTracker, OrderID: latest.ID.String()}
}

func newer(a, b *models.Order) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() > b.ID.String()
}
