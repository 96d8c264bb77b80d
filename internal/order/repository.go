// AngelaMos | 2026
// repository.go

package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/food-orders/internal/core"
)

type Repository interface {
	// InTx runs fn against a repository bound to one transaction. Nested
	// calls reuse the outer transaction.
	InTx(ctx context.Context, fn func(repo Repository) error) error

	UserExists(ctx context.Context, userID int64) (bool, error)
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error

	GetItem(ctx context.Context, itemID int64) (*Item, error)
	ListItems(ctx context.Context, orderID int64) ([]Item, error)
	InsertItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, itemID int64) error

	Stats(ctx context.Context) (*Stats, error)
}

type ListFilter struct {
	UserID *int64
	Status Status
}

type Stats struct {
	Pending          int             `db:"pending"`
	Canceled         int             `db:"canceled"`
	Completed        int             `db:"completed"`
	CompletedRevenue decimal.Decimal `db:"completed_revenue"`
}

type repository struct {
	db   core.DBTX
	conn *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, conn: db}
}

func (r *repository) InTx(
	ctx context.Context,
	fn func(repo Repository) error,
) error {
	if r.conn == nil {
		return fn(r)
	}

	return core.InTx(ctx, r.conn, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) UserExists(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}

	return exists, nil
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	query := `
		INSERT INTO orders (user_id, status, price)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query, o.UserID, o.Status, o.Price)
	if err := row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create order: %w", ErrTargetUserNotFound)
		}
		return fmt.Errorf("create order: %w", err)
	}

	return nil
}

// orderColumns reads the item count in the same statement as the order row,
// so a listed or locked order never pairs a price with a stale count.
const orderColumns = `id, user_id, status, price, created_at, updated_at, ` +
	`(SELECT COUNT(*) FROM order_items WHERE order_items.order_id = orders.id) AS item_count`

func (r *repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	return r.getOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetByIDForUpdate locks the order row until the surrounding transaction
// ends, so concurrent item mutations on one order serialize.
func (r *repository) GetByIDForUpdate(ctx context.Context, id int64) (*Order, error) {
	return r.getOrder(
		ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`,
		id,
	)
}

func (r *repository) getOrder(ctx context.Context, query string, id int64) (*Order, error) {
	var o Order
	err := r.db.GetContext(ctx, &o, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get order %d: %w", id, ErrOrderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}

	return &o, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, *filter.UserID)
		argIdx++
	}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY id`

	orders := []Order{}
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return orders, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	query := `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "update order status", query, id, status)
}

func (r *repository) UpdatePrice(
	ctx context.Context,
	id int64,
	price decimal.Decimal,
) error {
	query := `
		UPDATE orders
		SET price = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "update order price", query, id, price)
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, ErrOrderNotFound)
	}

	return nil
}

const itemColumns = `id, order_id, flavor, quantity, size, unit_price, created_at`

func (r *repository) GetItem(ctx context.Context, itemID int64) (*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE id = $1`

	var it Item
	err := r.db.GetContext(ctx, &it, query, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get item %d: %w", itemID, ErrItemNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", itemID, err)
	}

	return &it, nil
}

func (r *repository) ListItems(ctx context.Context, orderID int64) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY id`

	items := []Item{}
	if err := r.db.SelectContext(ctx, &items, query, orderID); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return items, nil
}

func (r *repository) InsertItem(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO order_items (order_id, flavor, quantity, size, unit_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	row := r.db.QueryRowxContext(ctx, query,
		item.OrderID,
		item.Flavor,
		item.Quantity,
		item.Size,
		item.UnitPrice,
	)
	if err := row.Scan(&item.ID, &item.CreatedAt); err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("insert item: %w", ErrOrderNotFound)
		}
		return fmt.Errorf("insert item: %w", err)
	}

	return nil
}

func (r *repository) DeleteItem(ctx context.Context, itemID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM order_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete item: %w", ErrItemNotFound)
	}

	return nil
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'PENDING')   AS pending,
			COUNT(*) FILTER (WHERE status = 'CANCELED')  AS canceled,
			COUNT(*) FILTER (WHERE status = 'COMPLETED') AS completed,
			COALESCE(SUM(price) FILTER (WHERE status = 'COMPLETED'), 0) AS completed_revenue
		FROM orders`

	var s Stats
	if err := r.db.GetContext(ctx, &s, query); err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}

	return &s, nil
}
