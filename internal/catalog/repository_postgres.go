package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/igourd/igourd-pos/internal/platform/db"
)

const pgUniqueViolation = "23505"

// schemaLockKey serializes concurrent first opens across processes.
const schemaLockKey int64 = 0x6361_7461_6c6f_67

var postgresSchemaV1 = []string{
	`CREATE TABLE IF NOT EXISTS catalog_products (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		category   TEXT NOT NULL,
		status     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		document   JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_catalog_products_name ON catalog_products (name)`,
	`CREATE INDEX IF NOT EXISTS idx_catalog_products_category ON catalog_products (category)`,
	`CREATE INDEX IF NOT EXISTS idx_catalog_products_status ON catalog_products (status)`,
	`CREATE INDEX IF NOT EXISTS idx_catalog_products_created_at ON catalog_products (created_at)`,
}

// PostgresRepository stores products as JSONB documents in PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool

	mu       sync.Mutex
	upgraded bool
}

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Replacer   = (*PostgresRepository)(nil)
)

// NewPostgresRepository returns a repository over pool. The pool stays owned by the caller.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) open(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upgraded {
		return nil
	}
	if r.pool == nil {
		return unavailableErr("open", errors.New("no connection pool"))
	}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `CREATE TABLE IF NOT EXISTS catalog_schema (version INT NOT NULL)`); err != nil {
			return err
		}
		var version int
		if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM catalog_schema`).Scan(&version); err != nil {
			return err
		}
		if version >= SchemaVersion {
			return nil
		}
		for _, stmt := range postgresSchemaV1 {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, `INSERT INTO catalog_schema (version) VALUES ($1)`, SchemaVersion)
		return err
	})
	if err != nil {
		return unavailableErr("upgrade", err)
	}
	r.upgraded = true
	return nil
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]Product, error) {
	if err := r.open(ctx); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT document FROM catalog_products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("catalog: postgres get all: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("catalog: postgres scan: %w", err)
		}
		p, err := decodeProduct(doc)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const insertProductSQL = `INSERT INTO catalog_products (id, name, category, status, created_at, document)
	VALUES ($1, $2, $3, $4, $5, $6)`

func (r *PostgresRepository) Insert(ctx context.Context, product Product) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	if err := insertPostgres(ctx, r.pool, product); err != nil {
		return translatePostgres("insert", err)
	}
	return nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertPostgres(ctx context.Context, conn execer, p Product) error {
	doc, err := encodeProduct(p)
	if err != nil {
		return err
	}
	_, err = conn.Exec(ctx, insertProductSQL, p.ID, p.Name, p.Category, string(p.Status), p.CreatedAt, doc)
	return err
}

func (r *PostgresRepository) Put(ctx context.Context, product Product) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	doc, err := encodeProduct(product)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, insertProductSQL+`
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		category = EXCLUDED.category,
		status = EXCLUDED.status,
		created_at = EXCLUDED.created_at,
		document = EXCLUDED.document`,
		product.ID, product.Name, product.Category, string(product.Status), product.CreatedAt, doc)
	if err != nil {
		return fmt.Errorf("catalog: postgres put: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM catalog_products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("catalog: postgres delete: %w", err)
	}
	return nil
}

func (r *PostgresRepository) BulkInsert(ctx context.Context, products []Product) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return bulkInsertPostgres(ctx, tx, products)
	})
}

func (r *PostgresRepository) Clear(ctx context.Context) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM catalog_products`); err != nil {
		return fmt.Errorf("catalog: postgres clear: %w", err)
	}
	return nil
}

// ReplaceAll clears the table and inserts products in one transaction.
func (r *PostgresRepository) ReplaceAll(ctx context.Context, products []Product) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM catalog_products`); err != nil {
			return fmt.Errorf("catalog: postgres clear: %w", err)
		}
		return bulkInsertPostgres(ctx, tx, products)
	})
}

func bulkInsertPostgres(ctx context.Context, tx pgx.Tx, products []Product) error {
	for _, p := range products {
		if err := insertPostgres(ctx, tx, p); err != nil {
			return translatePostgres("bulk insert", err)
		}
	}
	return nil
}

// Close is a no-op: the pool belongs to the caller.
func (r *PostgresRepository) Close() error {
	return nil
}

func translatePostgres(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("catalog: postgres %s: %w", op, ErrDuplicateKey)
	}
	return fmt.Errorf("catalog: postgres %s: %w", op, err)
}
