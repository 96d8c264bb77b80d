// AngelaMos | 2026
// integration_test.go

//go:build integration

package order_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/carterperez-dev/food-orders/internal/authz"
	"github.com/carterperez-dev/food-orders/internal/config"
	"github.com/carterperez-dev/food-orders/internal/core"
	"github.com/carterperez-dev/food-orders/internal/order"
	"github.com/carterperez-dev/food-orders/internal/user"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "orders_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/orders_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func openDatabase(t *testing.T) *core.Database {
	t.Helper()
	ctx := context.Background()

	var (
		db  *core.Database
		err error
	)
	require.Eventually(t, func() bool {
		db, err = core.NewDatabase(ctx, config.DatabaseConfig{
			URL:             dsn,
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Minute,
			ConnMaxIdleTime: time.Minute,
		})
		return err == nil
	}, 30*time.Second, 500*time.Millisecond)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate())
	return db
}

func createActor(t *testing.T, db *core.Database, email string) authz.Actor {
	t.Helper()
	u := &user.User{
		Name:         "Integration",
		Email:        email,
		PasswordHash: "x",
		Active:       true,
	}
	require.NoError(t, user.NewRepository(db.DB).Create(context.Background(), u))
	return authz.Actor{ID: u.ID, Active: true}
}

func TestPostgres_ConcurrentAddsKeepPriceConsistent(t *testing.T) {
	db := openDatabase(t)
	ctx := context.Background()
	svc := order.NewService(order.NewRepository(db.DB), nil, nil)
	owner := createActor(t, db, "concurrent@example.com")

	o, err := svc.CreateForSelf(ctx, owner)
	require.NoError(t, err)

	const adds = 16
	var wg sync.WaitGroup
	errs := make(chan error, adds)
	for range adds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, owner, o.ID, order.NewItem{
				Flavor:    "margherita",
				Quantity:  3,
				Size:      "M",
				UnitPrice: decimal.RequireFromString("7.25"),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got, err := svc.View(ctx, authz.Actor{ID: owner.ID, Active: true, Admin: true}, o.ID)
	require.NoError(t, err)

	want := decimal.RequireFromString("7.25").Mul(decimal.NewFromInt(3 * adds))
	assert.True(t, want.Equal(got.Price), "price %s, want %s", got.Price, want)
	assert.Equal(t, adds, got.ItemCount())

	mine, err := svc.ListMine(ctx, owner, order.ListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, adds, mine[0].ItemCount())
}

func TestPostgres_CancelRacesFinalize(t *testing.T) {
	db := openDatabase(t)
	ctx := context.Background()
	svc := order.NewService(order.NewRepository(db.DB), nil, nil)
	owner := createActor(t, db, "race@example.com")
	admin := authz.Actor{ID: owner.ID, Active: true, Admin: true}

	o, err := svc.CreateForSelf(ctx, owner)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		cancelErr error
		finalErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, cancelErr = svc.Cancel(ctx, owner, o.ID)
	}()
	go func() {
		defer wg.Done()
		_, finalErr = svc.Finalize(ctx, admin, o.ID)
	}()
	wg.Wait()

	assert.True(t, (cancelErr == nil) != (finalErr == nil),
		"exactly one transition must win: cancel=%v finalize=%v", cancelErr, finalErr)
	if cancelErr != nil {
		assert.ErrorIs(t, cancelErr, core.ErrConflict)
	}
	if finalErr != nil {
		assert.ErrorIs(t, finalErr, core.ErrConflict)
	}
}
