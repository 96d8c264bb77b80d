// AngelaMos | 2026
// entity.go

package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID        int64           `db:"id"`
	UserID    int64           `db:"user_id"`
	Status    Status          `db:"status"`
	Price     decimal.Decimal `db:"price"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
	NumItems  int             `db:"item_count"`
	Items     []Item          `db:"-"`
}

type Item struct {
	ID        int64           `db:"id"`
	OrderID   int64           `db:"order_id"`
	Flavor    string          `db:"flavor"`
	Quantity  int             `db:"quantity"`
	Size      string          `db:"size"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	CreatedAt time.Time       `db:"created_at"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// RecomputePrice sums unit_price * quantity over items.
func RecomputePrice(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Recompute sets Price from the attached items.
func (o *Order) Recompute() {
	o.Price = RecomputePrice(o.Items)
}

// ItemCount prefers the loaded items and falls back to the count read with
// the order row.
func (o *Order) ItemCount() int {
	if o.Items != nil {
		return len(o.Items)
	}
	return o.NumItems
}

// priceScale and maxUnitPrice mirror the NUMERIC(12,2) money columns.
const priceScale = 2

var maxUnitPrice = decimal.RequireFromString("9999999999.99")

type NewItem struct {
	Flavor    string
	Quantity  int
	Size      string
	UnitPrice decimal.Decimal
}

func (n NewItem) Validate() error {
	switch {
	case n.Flavor == "":
		return errInvalidItem("flavor is required")
	case n.Size == "":
		return errInvalidItem("size is required")
	case n.Quantity <= 0:
		return errInvalidItem("quantity must be positive")
	case n.UnitPrice.IsNegative():
		return errInvalidItem("unit price must not be negative")
	case !n.UnitPrice.Equal(n.UnitPrice.Round(priceScale)):
		return errInvalidItem("unit price must have at most 2 decimal places")
	case n.UnitPrice.GreaterThan(maxUnitPrice):
		return errInvalidItem("unit price is too large")
	}
	return nil
}
