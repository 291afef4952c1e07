package ordering

import (
	"github.com/yeremiapane/table-order/models"
)

// AdjustQuantity returns a new cart with delta applied to the line for item.
// A missing line is appended; a line that drops to zero or below is removed.
func AdjustQuantity(lines []models.OrderLine, item models.OrderLine, delta int) []models.OrderLine {
	out := make([]models.OrderLine, 0, len(lines)+1)
	found := false
	for _, l := range lines {
		if l.ID == item.ID {
			found = true
			l.Quantity += delta
			if l.Quantity <= 0 {
				continue
			}
		}
		out = append(out, l)
	}
	if !found && delta > 0 {
		item.Quantity = delta
		out = append(out, item)
	}
	return out
}

// SetQuantity returns a new cart with the line for id set to qty. qty <= 0 removes it.
func SetQuantity(lines []models.OrderLine, id uint, qty int) []models.OrderLine {
	out := make([]models.OrderLine, 0, len(lines))
	for _, l := range lines {
		if l.ID == id {
			if qty <= 0 {
				continue
			}
			l.Quantity = qty
		}
		out = append(out, l)
	}
	return out
}

func ItemCount(lines []models.OrderLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// OrderTotal is the persisted total_amount: subtotal rounded to cents.
func OrderTotal(lines []models.OrderLine) float64 {
	return Subtotal(lines).Round(2).InexactFloat64()
}

// ValidateLines checks an order body before it is written.
func ValidateLines(lines []models.OrderLine, allowEmpty bool) error {
	if len(lines) == 0 && !allowEmpty {
		return ErrEmptyCart
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}
