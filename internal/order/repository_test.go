// AngelaMos | 2026
// repository_test.go

package order

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/food-orders/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

var orderCols = []string{"id", "user_id", "status", "price", "created_at", "updated_at", "item_count"}

func TestRepository_GetByIDForUpdateLocksRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ AS item_count FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(int64(7), int64(1), "PENDING", "12.50", now, now, int64(3)))
	mock.ExpectCommit()

	var got *Order
	err := repo.InTx(context.Background(), func(tx Repository) error {
		var err error
		got, err = tx.GetByIDForUpdate(context.Background(), 7)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, StatusPending, got.Status)
	assert.True(t, decimal.RequireFromString("12.5").Equal(got.Price))
	assert.Equal(t, 3, got.ItemCount())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InTxRollsBackOnError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.InTx(context.Background(), func(tx Repository) error {
		_, err := tx.GetByIDForUpdate(context.Background(), 9)
		return err
	})

	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetItemNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM order_items WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetItem(context.Background(), 3)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRepository_CreateMapsMissingUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO orders`)).
		WithArgs(int64(42), StatusPending, sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	o := &Order{UserID: 42, Status: StatusPending, Price: decimal.Zero}
	err := repo.Create(context.Background(), o)

	assert.ErrorIs(t, err, ErrTargetUserNotFound)
}

func TestRepository_CreateReturnsID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO orders`)).
		WithArgs(int64(1), StatusPending, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(11), now, now))

	o := &Order{UserID: 1, Status: StatusPending, Price: decimal.Zero}
	require.NoError(t, repo.Create(context.Background(), o))
	assert.Equal(t, int64(11), o.ID)
}

func TestRepository_ListFilters(t *testing.T) {
	tests := []struct {
		name   string
		filter ListFilter
		query  string
		args   int
	}{
		{"none", ListFilter{}, `FROM orders ORDER BY id`, 0},
		{"status", ListFilter{Status: StatusCanceled}, `WHERE status = \$1 ORDER BY id`, 1},
		{"user and status", ListFilter{UserID: ptr(int64(5)), Status: StatusPending}, `WHERE user_id = \$1 AND status = \$2`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)

			args := make([]driver.Value, tt.args)
			for i := range args {
				args[i] = sqlmock.AnyArg()
			}

			q := mock.ExpectQuery(tt.query)
			if tt.args > 0 {
				q = q.WithArgs(args...)
			}
			q.WillReturnRows(sqlmock.NewRows(orderCols))

			orders, err := repo.List(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.NotNil(t, orders)
			assert.Empty(t, orders)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_DeleteItemMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM order_items WHERE id = $1`)).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteItem(context.Background(), 8)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRepository_UpdatePriceMissingOrder(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders`)).
		WithArgs(int64(4), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePrice(context.Background(), 4, decimal.NewFromInt(3))
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestRepository_StatsPropagatesError(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`COUNT\(\*\) FILTER`).WillReturnError(boom)

	_, err := repo.Stats(context.Background())
	assert.ErrorIs(t, err, boom)
}

func ptr[T any](v T) *T { return &v }
