package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/igourd/igourd-pos/internal/platform/db"
)

const sqliteBatchSize = 100

// productRow is the SQLite shape of a product: indexed columns plus the full JSON document.
type productRow struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Name      string    `gorm:"not null;index:idx_products_name"`
	Category  string    `gorm:"not null;index:idx_products_category"`
	Status    string    `gorm:"not null;index:idx_products_status"`
	CreatedAt time.Time `gorm:"autoCreateTime:false;index:idx_products_created_at"`
	Document  []byte    `gorm:"not null"`
}

func (productRow) TableName() string {
	return "products"
}

func toRow(p Product) (productRow, error) {
	doc, err := encodeProduct(p)
	if err != nil {
		return productRow{}, err
	}
	return productRow{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		Document:  doc,
	}, nil
}

func toRows(products []Product) ([]productRow, error) {
	rows := make([]productRow, 0, len(products))
	for _, p := range products {
		row, err := toRow(p)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SQLiteConfig locates the embedded database.
type SQLiteConfig struct {
	Path  string
	Debug bool
}

// SQLiteRepository stores products in an embedded SQLite database through GORM.
// The database is opened on first use and kept; a failed open is retried on the next call.
type SQLiteRepository struct {
	cfg SQLiteConfig

	mu   sync.Mutex
	conn *gorm.DB
}

var (
	_ Repository = (*SQLiteRepository)(nil)
	_ Replacer   = (*SQLiteRepository)(nil)
)

// NewSQLiteRepository returns a repository over the database at cfg.Path.
func NewSQLiteRepository(cfg SQLiteConfig) *SQLiteRepository {
	if cfg.Path == "" {
		cfg.Path = "catalog.db"
	}
	return &SQLiteRepository{cfg: cfg}
}

func (r *SQLiteRepository) open(ctx context.Context) (*gorm.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		conn, err := db.OpenSQLite(r.cfg.Path, r.cfg.Debug)
		if err != nil {
			return nil, unavailableErr("open", err)
		}
		if err := upgradeSQLite(conn); err != nil {
			_ = db.CloseSQLite(conn)
			return nil, unavailableErr("upgrade", err)
		}
		r.conn = conn
	}
	return r.conn.WithContext(ctx), nil
}

// upgradeSQLite creates the schema when the database is still at version 0.
func upgradeSQLite(conn *gorm.DB) error {
	var version int
	if err := conn.Raw("PRAGMA user_version").Scan(&version).Error; err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version >= SchemaVersion {
		return nil
	}
	return conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Migrator().CreateTable(&productRow{}); err != nil {
			return fmt.Errorf("create products table: %w", err)
		}
		return tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)).Error
	})
}

// SchemaVersion reports the version recorded in the database file.
func (r *SQLiteRepository) SchemaVersion(ctx context.Context) (int, error) {
	conn, err := r.open(ctx)
	if err != nil {
		return 0, err
	}
	var version int
	if err := conn.Raw("PRAGMA user_version").Scan(&version).Error; err != nil {
		return 0, err
	}
	return version, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]Product, error) {
	conn, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	var rows []productRow
	if err := conn.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("catalog: sqlite get all: %w", err)
	}
	products := make([]Product, 0, len(rows))
	for _, row := range rows {
		p, err := decodeProduct(row.Document)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, product Product) error {
	conn, err := r.open(ctx)
	if err != nil {
		return err
	}
	row, err := toRow(product)
	if err != nil {
		return err
	}
	if err := conn.Create(&row).Error; err != nil {
		return translateSQLite("insert", err)
	}
	return nil
}

func (r *SQLiteRepository) Put(ctx context.Context, product Product) error {
	conn, err := r.open(ctx)
	if err != nil {
		return err
	}
	row, err := toRow(product)
	if err != nil {
		return err
	}
	if err := conn.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("catalog: sqlite put: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.open(ctx)
	if err != nil {
		return err
	}
	if err := conn.Delete(&productRow{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("catalog: sqlite delete: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) BulkInsert(ctx context.Context, products []Product) error {
	conn, err := r.open(ctx)
	if err != nil {
		return err
	}
	return bulkInsertSQLite(conn, products)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	conn, err := r.open(ctx)
	if err != nil {
		return err
	}
	if err := conn.Exec("DELETE FROM products").Error; err != nil {
		return fmt.Errorf("catalog: sqlite clear: %w", err)
	}
	return nil
}

// ReplaceAll clears the table and inserts products in one transaction.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, products []Product) error {
	conn, err := r.open(ctx)
	if err != nil {
		return err
	}
	return conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM products").Error; err != nil {
			return fmt.Errorf("catalog: sqlite clear: %w", err)
		}
		return bulkInsertSQLite(tx, products)
	})
}

func bulkInsertSQLite(conn *gorm.DB, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	rows, err := toRows(products)
	if err != nil {
		return err
	}
	if err := conn.CreateInBatches(&rows, sqliteBatchSize).Error; err != nil {
		return translateSQLite("bulk insert", err)
	}
	return nil
}

// Close releases the database handle. The repository reopens on the next call.
func (r *SQLiteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn := r.conn
	r.conn = nil
	return db.CloseSQLite(conn)
}

func translateSQLite(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("catalog: sqlite %s: %w", op, ErrDuplicateKey)
	}
	return fmt.Errorf("catalog: sqlite %s: %w", op, err)
}
