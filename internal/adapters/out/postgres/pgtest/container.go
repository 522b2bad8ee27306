// Package pgtest starts a disposable Postgres for integration tests and
// migrates the service schema into it.
package pgtest

import (
	"context"
	"time"

	adapter "orderflow/internal/adapters/out/postgres"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// Truncate empties every table created by adapter.Migrate.
const Truncate = `TRUNCATE TABLE orders, order_items, order_status_history, coupons, coupon_usages,
	offers, offer_products, push_tokens, product_variants, products CASCADE`

// Start runs postgres:15-alpine and returns a migrated connection. The
// caller terminates the container.
func Start(ctx context.Context) (*postgres.PostgresContainer, *gorm.DB, error) {
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, nil, err
	}

	db, err := adapter.Open(ctx, dsn)
	if err != nil {
		return container, nil, err
	}

	if err = adapter.Migrate(db); err != nil {
		return container, nil, err
	}

	return container, db, nil
}
