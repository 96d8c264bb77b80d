// AngelaMos | 2026
// memrepo_test.go

package order

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// memState backs memRepo. A transaction holds mu for its whole duration,
// which gives the same serialization as a row lock on every order.
type memState struct {
	mu       sync.Mutex
	users    map[int64]bool
	orders   map[int64]Order
	items    map[int64]Item
	nextID   int64
	rollback int
}

type memRepo struct {
	st     *memState
	inTx   bool
	failOn string
}

func newMemRepo(userIDs ...int64) *memRepo {
	st := &memState{
		users:  map[int64]bool{},
		orders: map[int64]Order{},
		items:  map[int64]Item{},
	}
	for _, id := range userIDs {
		st.users[id] = true
	}
	return &memRepo{st: st}
}

func (r *memRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.st.mu.Lock()
	return r.st.mu.Unlock
}

func (r *memRepo) InTx(ctx context.Context, fn func(repo Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	orders := maps.Clone(r.st.orders)
	items := maps.Clone(r.st.items)

	if err := fn(&memRepo{st: r.st, inTx: true, failOn: r.failOn}); err != nil {
		r.st.orders = orders
		r.st.items = items
		r.st.rollback++
		return err
	}
	return nil
}

func (r *memRepo) UserExists(_ context.Context, userID int64) (bool, error) {
	defer r.lock()()
	return r.st.users[userID], nil
}

func (r *memRepo) Create(_ context.Context, o *Order) error {
	defer r.lock()()
	if !r.st.users[o.UserID] {
		return ErrTargetUserNotFound
	}
	r.st.nextID++
	o.ID = r.st.nextID
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	stored := *o
	stored.Items = nil
	r.st.orders[o.ID] = stored
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*Order, error) {
	defer r.lock()()
	o, ok := r.st.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	o.NumItems = r.countItems(id)
	return &o, nil
}

func (r *memRepo) countItems(orderID int64) int {
	n := 0
	for _, it := range r.st.items {
		if it.OrderID == orderID {
			n++
		}
	}
	return n
}

func (r *memRepo) GetByIDForUpdate(ctx context.Context, id int64) (*Order, error) {
	return r.GetByID(ctx, id)
}

func (r *memRepo) List(_ context.Context, filter ListFilter) ([]Order, error) {
	defer r.lock()()
	out := []Order{}
	for _, o := range r.st.orders {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		o.NumItems = r.countItems(o.ID)
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id int64, status Status) error {
	defer r.lock()()
	o, ok := r.st.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = status
	r.st.orders[id] = o
	return nil
}

func (r *memRepo) UpdatePrice(_ context.Context, id int64, price decimal.Decimal) error {
	defer r.lock()()
	if r.failOn == "UpdatePrice" {
		return errStoreDown
	}
	o, ok := r.st.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.Price = price
	r.st.orders[id] = o
	return nil
}

func (r *memRepo) GetItem(_ context.Context, itemID int64) (*Item, error) {
	defer r.lock()()
	it, ok := r.st.items[itemID]
	if !ok {
		return nil, ErrItemNotFound
	}
	return &it, nil
}

func (r *memRepo) ListItems(_ context.Context, orderID int64) ([]Item, error) {
	defer r.lock()()
	out := []Item{}
	for _, it := range r.st.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) InsertItem(_ context.Context, item *Item) error {
	defer r.lock()()
	if _, ok := r.st.orders[item.OrderID]; !ok {
		return ErrOrderNotFound
	}
	r.st.nextID++
	item.ID = r.st.nextID
	item.CreatedAt = time.Now()
	r.st.items[item.ID] = *item
	return nil
}

func (r *memRepo) DeleteItem(_ context.Context, itemID int64) error {
	defer r.lock()()
	if _, ok := r.st.items[itemID]; !ok {
		return ErrItemNotFound
	}
	delete(r.st.items, itemID)
	return nil
}

func (r *memRepo) Stats(_ context.Context) (*Stats, error) {
	defer r.lock()()
	s := &Stats{CompletedRevenue: decimal.Zero}
	for _, o := range r.st.orders {
		switch o.Status {
		case StatusPending:
			s.Pending++
		case StatusCanceled:
			s.Canceled++
		case StatusCompleted:
			s.Completed++
			s.CompletedRevenue = s.CompletedRevenue.Add(o.Price)
		}
	}
	return s, nil
}

// storedPrice reads the committed price outside any transaction.
func (r *memRepo) storedPrice(orderID int64) decimal.Decimal {
	defer r.lock()()
	return r.st.orders[orderID].Price
}

func (r *memRepo) storedItems(orderID int64) []Item {
	items, _ := r.ListItems(context.Background(), orderID)
	return items
}
