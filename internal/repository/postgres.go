// Package repository implements the persistence layer backed by
// PostgreSQL. Each orchestration call runs inside one transaction opened
// through a per-domain Store adapter; every write is stamped with the
// acting identity by the audit stamper.
package repository

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/db"
	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/item"
	"github.com/xenking/storefront/internal/domain/order"
)

// NewPool creates a pgxpool.Pool for the given connection URL.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing database config")
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "creating connection pool")
	}

	return pool, nil
}

// RunMigrations executes the embedded DDL schema against the pool.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, db.Schema); err != nil {
		return errors.Wrap(err, "running migrations")
	}
	return nil
}

// querier is the query surface shared by pgxpool.Pool and pgx.Tx, letting
// row helpers serve both transactional and pool-level reads.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store owns the pool and opens units of work.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewStore creates a Store over the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, now: time.Now}
}

// withinTx runs fn inside one transaction. Any error from fn rolls the
// transaction back; otherwise it is committed.
func (s *Store) withinTx(ctx context.Context, actor string, fn func(*Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	t := &Tx{tx: tx, audit: stamper{actor: actor, now: s.now}}
	if err := fn(t); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(ctx), "commit tx")
}

// Tx is the concrete unit of work satisfying the item, cart and order
// transaction ports.
type Tx struct {
	tx    pgx.Tx
	audit stamper
}

// Compile-time checks that Tx covers every domain transaction port.
var (
	_ item.Tx  = (*Tx)(nil)
	_ cart.Tx  = (*Tx)(nil)
	_ order.Tx = (*Tx)(nil)
)

// ItemStore adapts Store to the item domain's unit-of-work port.
type ItemStore struct{ *Store }

var _ item.Store = ItemStore{}

func (s ItemStore) WithinTx(ctx context.Context, actor string, fn func(item.Tx) error) error {
	return s.withinTx(ctx, actor, func(t *Tx) error { return fn(t) })
}

// CartStore adapts Store to the cart domain's unit-of-work port.
type CartStore struct{ *Store }

var _ cart.Store = CartStore{}

func (s CartStore) WithinTx(ctx context.Context, actor string, fn func(cart.Tx) error) error {
	return s.withinTx(ctx, actor, func(t *Tx) error { return fn(t) })
}

// OrderStore adapts Store to the order domain's unit-of-work port.
type OrderStore struct{ *Store }

var _ order.Store = OrderStore{}

func (s OrderStore) WithinTx(ctx context.Context, actor string, fn func(order.Tx) error) error {
	return s.withinTx(ctx, actor, func(t *Tx) error { return fn(t) })
}
