package ordering

import (
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/utils"
)

// TaxRate is applied to the subtotal of every bill.
var TaxRate = decimal.RequireFromString("0.085")

type Bill struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// BillDisplay holds the dollar strings shown to the customer.
type BillDisplay struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// LineTotal -> price x quantity, exact
func LineTotal(l models.OrderLine) decimal.Decimal {
	return decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func Subtotal(lines []models.OrderLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineTotal(l))
	}
	return sum
}

// ComputeBill keeps full precision; rounding happens only in Display.
func ComputeBill(lines []models.OrderLine) Bill {
	sub := Subtotal(lines)
	tax := sub.Mul(TaxRate)
	return Bill{
		Subtotal: sub,
		Tax:      tax,
		Total:    sub.Add(tax),
	}
}

func (b Bill) Display() BillDisplay {
	return BillDisplay{
		Subtotal: utils.FormatUSD(b.Subtotal),
		Tax:      utils.FormatUSD(b.Tax),
		Total:    utils.FormatUSD(b.Total),
	}
}
