package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/sheetsync/internal/domain/errors"
	"github.com/polkiloo/sheetsync/internal/domain/model"
	"github.com/polkiloo/sheetsync/internal/domain/repository"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type orderItemRepository struct {
	storage *Storage
}

type productRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) OrderItems() repository.OrderItemRepository {
	return &orderItemRepository{storage: s}
}

func (s *Storage) Products() repository.ProductRepository {
	return &productRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            order_id TEXT PRIMARY KEY,
            status TEXT NOT NULL,
            created_at TEXT NOT NULL DEFAULT '',
            paid_at TEXT NOT NULL DEFAULT '',
            shipped_at TEXT NOT NULL DEFAULT '',
            updated_at TEXT NOT NULL DEFAULT '',
            stock_discounted BOOLEAN NOT NULL DEFAULT FALSE,
            stock_reserved BOOLEAN NOT NULL DEFAULT FALSE,
            last_event TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id UUID PRIMARY KEY,
            order_id TEXT NOT NULL,
            variant_id TEXT NOT NULL,
            quantity BIGINT NOT NULL,
            price NUMERIC NOT NULL,
            event TEXT NOT NULL,
            logged_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            variant_id TEXT PRIMARY KEY,
            name TEXT NOT NULL DEFAULT '',
            price NUMERIC NOT NULL DEFAULT 0,
            on_hand BIGINT NOT NULL DEFAULT 0,
            reserved BIGINT NOT NULL DEFAULT 0,
            sku TEXT NOT NULL DEFAULT '',
            available BOOLEAN NOT NULL DEFAULT TRUE,
            synced_at TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id, logged_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Find(ctx context.Context, orderID string) (*model.OrderRow, error) {
	const query = `SELECT order_id, status, created_at, paid_at, shipped_at, updated_at, stock_discounted, stock_reserved, last_event
                   FROM orders WHERE order_id=$1`
	var (
		row               model.OrderRow
		status, lastEvent string
	)
	err := r.storage.pool.QueryRow(ctx, query, orderID).Scan(
		&row.OrderID, &status, &row.CreatedAt, &row.PaidAt, &row.ShippedAt, &row.UpdatedAt,
		&row.StockDiscounted, &row.StockReserved, &lastEvent,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	row.Status = model.OrderStatus(status)
	row.LastEvent = model.Event(lastEvent)
	return &row, nil
}

func (r *orderRepository) Save(ctx context.Context, row model.OrderRow) error {
	const query = `INSERT INTO orders (order_id, status, created_at, paid_at, shipped_at, updated_at, stock_discounted, stock_reserved, last_event)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                   ON CONFLICT (order_id) DO UPDATE SET
                       status = EXCLUDED.status,
                       created_at = EXCLUDED.created_at,
                       paid_at = EXCLUDED.paid_at,
                       shipped_at = EXCLUDED.shipped_at,
                       updated_at = EXCLUDED.updated_at,
                       stock_discounted = EXCLUDED.stock_discounted,
                       stock_reserved = EXCLUDED.stock_reserved,
                       last_event = EXCLUDED.last_event`
	_, err := r.storage.pool.Exec(ctx, query,
		row.OrderID, string(row.Status), row.CreatedAt, row.PaidAt, row.ShippedAt, row.UpdatedAt,
		row.StockDiscounted, row.StockReserved, string(row.LastEvent),
	)
	return err
}

// --- OrderItemRepository implementation ---

func (r *orderItemRepository) Append(ctx context.Context, rows []model.OrderItemRow) error {
	if len(rows) == 0 {
		return nil
	}
	const query = `INSERT INTO order_items (id, order_id, variant_id, quantity, price, event) VALUES ($1, $2, $3, $4, $5::numeric, $6)`
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		for _, row := range rows {
			if _, err := tx.Exec(ctx, query, row.ID, row.OrderID, row.VariantID, row.Quantity, row.Price.String(), string(row.Event)); err != nil {
				return err
			}
		}
		return nil
	})
}

// --- ProductRepository implementation ---

func (r *productRepository) FindByVariant(ctx context.Context, variantID string) (*model.ProductRow, error) {
	const query = `SELECT variant_id, name, price::text, on_hand, reserved, sku, available, synced_at
                   FROM products WHERE variant_id=$1`
	var (
		row   model.ProductRow
		price string
	)
	err := r.storage.pool.QueryRow(ctx, query, variantID).Scan(
		&row.VariantID, &row.Name, &price, &row.OnHand, &row.Reserved, &row.SKU, &row.Available, &row.SyncedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if row.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price of %s: %w", variantID, err)
	}
	return &row, nil
}

func (r *productRepository) UpdateStock(ctx context.Context, variantID string, onHand, reserved int64) error {
	const query = `UPDATE products SET on_hand=$1, reserved=$2 WHERE variant_id=$3`
	tag, err := r.storage.pool.Exec(ctx, query, onHand, reserved, variantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

const upsertProduct = `INSERT INTO products (variant_id, name, price, on_hand, reserved, sku, available, synced_at)
                       VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8)
                       ON CONFLICT (variant_id) DO UPDATE SET
                           name = EXCLUDED.name,
                           price = EXCLUDED.price,
                           on_hand = EXCLUDED.on_hand,
                           reserved = EXCLUDED.reserved,
                           sku = EXCLUDED.sku,
                           available = EXCLUDED.available,
                           synced_at = EXCLUDED.synced_at`

func productArgs(row model.ProductRow) []any {
	return []any{row.VariantID, row.Name, row.Price.String(), row.OnHand, row.Reserved, row.SKU, row.Available, row.SyncedAt}
}

func (r *productRepository) Upsert(ctx context.Context, row model.ProductRow) error {
	_, err := r.storage.pool.Exec(ctx, upsertProduct, productArgs(row)...)
	return err
}

// ReplaceAll swaps the whole table inside one transaction.
func (r *productRepository) ReplaceAll(ctx context.Context, rows []model.ProductRow) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM products`); err != nil {
			return err
		}
		for _, row := range rows {
			if _, err := tx.Exec(ctx, upsertProduct, productArgs(row)...); err != nil {
				return err
			}
		}
		return nil
	})
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
