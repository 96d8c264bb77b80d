// AngelaMos | 2026
// dto.go

package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddItemRequest takes unit_price as a JSON number or string. It is a
// pointer so an omitted price fails validation instead of reading as zero.
type AddItemRequest struct {
	Flavor    string           `json:"flavor"     validate:"required,min=1,max=100"`
	Quantity  int              `json:"quantity"   validate:"required,gt=0,lte=1000"`
	Size      string           `json:"size"       validate:"required,min=1,max=20"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"required"`
}

func (r AddItemRequest) toNewItem() NewItem {
	return NewItem{
		Flavor:    r.Flavor,
		Quantity:  r.Quantity,
		Size:      r.Size,
		UnitPrice: *r.UnitPrice,
	}
}

type ItemResponse struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Flavor    string    `json:"flavor"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size"`
	UnitPrice string    `json:"unit_price"`
	Subtotal  string    `json:"subtotal"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderResponse struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Status    Status         `json:"status"`
	Price     string         `json:"price"`
	ItemCount int            `json:"item_count"`
	Items     []ItemResponse `json:"items,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type AddItemResponse struct {
	ItemID     int64  `json:"item_id"`
	OrderID    int64  `json:"order_id"`
	OrderPrice string `json:"order_price"`
}

type RemoveItemResponse struct {
	RemainingItems int           `json:"remaining_items"`
	Order          OrderResponse `json:"order"`
}

type StatsResponse struct {
	Pending          int    `json:"pending"`
	Canceled         int    `json:"canceled"`
	Completed        int    `json:"completed"`
	CompletedRevenue string `json:"completed_revenue"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func ToItemResponse(it Item) ItemResponse {
	return ItemResponse{
		ID:        it.ID,
		OrderID:   it.OrderID,
		Flavor:    it.Flavor,
		Quantity:  it.Quantity,
		Size:      it.Size,
		UnitPrice: money(it.UnitPrice),
		Subtotal:  money(it.Subtotal()),
		CreatedAt: it.CreatedAt,
	}
}

// ToOrderResponse renders o. Items are included only when they were loaded.
func ToOrderResponse(o *Order) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    o.Status,
		Price:     money(o.Price),
		ItemCount: o.ItemCount(),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}

	if len(o.Items) > 0 {
		resp.Items = make([]ItemResponse, 0, len(o.Items))
		for _, it := range o.Items {
			resp.Items = append(resp.Items, ToItemResponse(it))
		}
	}

	return resp
}

func ToOrderResponseList(orders []Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToOrderResponse(&orders[i]))
	}
	return out
}

func ToStatsResponse(st *Stats) StatsResponse {
	return StatsResponse{
		Pending:          st.Pending,
		Canceled:         st.Canceled,
		Completed:        st.Completed,
		CompletedRevenue: money(st.CompletedRevenue),
	}
}
