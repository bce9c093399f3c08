// Package postgres implements the catalog store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mhalvorsen/stockroom/internal/catalog"
)

const productColumns = "id, name, unit, category, brand, stock, status, image, created_at, updated_at"

// Store is a catalog.Store backed by a pgx connection pool. The pool is
// created once at startup and shared for the process lifetime.
//
// Name uniqueness is enforced by a unique index on lower(trim(name)); the
// store-level duplicate pre-checks only exist to produce friendly errors
// before the index has the final say.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an established connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// querier is the subset of pgx shared by pools and transactions, so read
// helpers work against either.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func scanProduct(row pgx.Row) (*catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Name, &p.Unit, &p.Category, &p.Brand,
		&p.Stock, &p.Status, &p.Image, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func getProduct(ctx context.Context, q querier, id int64) (*catalog.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns)
	p, err := scanProduct(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product %d: %w", id, err)
	}
	return p, nil
}

func findByName(ctx context.Context, q querier, normalized string, excludeID int64) (*catalog.Product, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM products WHERE lower(trim(name)) = $1 AND id <> $2",
		productColumns,
	)
	p, err := scanProduct(q.QueryRow(ctx, query, normalized, excludeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query product by name: %w", err)
	}
	return p, nil
}

func collectProducts(rows pgx.Rows) ([]catalog.Product, error) {
	defer rows.Close()

	products := []catalog.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	return getProduct(ctx, s.pool, id)
}

func (s *Store) FindByName(ctx context.Context, normalized string, excludeID int64) (*catalog.Product, error) {
	return findByName(ctx, s.pool, normalized, excludeID)
}

// sortColumns whitelists ORDER BY targets. Anything else falls back to
// name; sort input never reaches the SQL string directly.
var sortColumns = map[string]string{
	"name":     "name",
	"brand":    "brand",
	"category": "category",
	"stock":    "stock",
	"status":   "status",
}

func (s *Store) ListProducts(ctx context.Context, opts catalog.ListOptions) ([]catalog.Product, int64, error) {
	col, ok := sortColumns[opts.SortBy]
	if !ok {
		col = "name"
	}
	dir := "ASC"
	if opts.SortDir == "desc" {
		dir = "DESC"
	}

	where := ""
	args := []any{}
	if opts.Category != "" {
		where = "WHERE category = $1"
		args = append(args, opts.Category)
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT count(*) FROM products %s", where)
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	offset := (opts.Page - 1) * opts.Limit
	query := fmt.Sprintf(
		"SELECT %s FROM products %s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d",
		productColumns, where, col, dir, len(args)+1, len(args)+2,
	)
	args = append(args, opts.Limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *Store) SearchProducts(ctx context.Context, name string) ([]catalog.Product, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM products WHERE lower(name) LIKE '%%' || $1 || '%%' ORDER BY name ASC",
		productColumns,
	)
	rows, err := s.pool.Query(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return collectProducts(rows)
}

func (s *Store) ProductsByName(ctx context.Context) ([]catalog.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products ORDER BY name ASC", productColumns)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	return collectProducts(rows)
}

// DeleteProduct removes a product row. Inventory log rows intentionally
// have no foreign key to products, so history survives deletion.
func (s *Store) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete product %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) History(ctx context.Context, productID int64) ([]catalog.InventoryLogEntry, error) {
	query := `SELECT id, product_id, old_stock, new_stock, changed_by, created_at
		FROM inventory_logs WHERE product_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := s.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("query inventory logs: %w", err)
	}
	defer rows.Close()

	entries := []catalog.InventoryLogEntry{}
	for rows.Next() {
		var e catalog.InventoryLogEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.OldStock, &e.NewStock, &e.ChangedBy, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan inventory log: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory logs: %w", err)
	}
	return entries, nil
}

func (s *Store) Begin(ctx context.Context) (catalog.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	return getProduct(ctx, t.tx, id)
}

func (t *pgTx) FindByName(ctx context.Context, normalized string, excludeID int64) (*catalog.Product, error) {
	return findByName(ctx, t.tx, normalized, excludeID)
}

func (t *pgTx) InsertProduct(ctx context.Context, row catalog.Row) (int64, error) {
	query := `INSERT INTO products (name, unit, category, brand, stock, status, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	var id int64
	err := t.tx.QueryRow(ctx, query,
		row.Name, row.Unit, row.Category, row.Brand, row.Stock, row.Status, row.Image,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert product %q: %w", row.Name, err)
	}
	return id, nil
}

func (t *pgTx) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	query := `UPDATE products
		SET name = $1, unit = $2, category = $3, brand = $4,
		    stock = $5, status = $6, image = $7, updated_at = now()
		WHERE id = $8`
	tag, err := t.tx.Exec(ctx, query,
		p.Name, p.Unit, p.Category, p.Brand, p.Stock, p.Status, p.Image, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (t *pgTx) AppendLog(ctx context.Context, e catalog.InventoryLogEntry) error {
	query := `INSERT INTO inventory_logs (product_id, old_stock, new_stock, changed_by)
		VALUES ($1, $2, $3, $4)`
	_, err := t.tx.Exec(ctx, query, e.ProductID, e.OldStock, e.NewStock, e.ChangedBy)
	if err != nil {
		return fmt.Errorf("insert inventory log: %w", err)
	}
	return nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback is safe to defer past a Commit; pgx reports the closed
// transaction and we swallow that case.
func (t *pgTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
