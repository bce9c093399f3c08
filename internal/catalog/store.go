package catalog

import (
	"context"
	"time"
)

// ListOptions parameterizes a paginated catalog listing.
type ListOptions struct {
	Page     int
	Limit    int
	Category string
	SortBy   string // one of: name, brand, category, stock, status
	SortDir  string // asc or desc
}

// ListResult is one page of products plus the unpaginated total.
type ListResult struct {
	Data  []Product `json:"data"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

// Store is the persistence boundary for the catalog: the products table
// plus the append-only inventory log. It owns the name-uniqueness
// invariant (a unique index on the normalized name is the authoritative
// guard; service-level pre-checks exist only for friendly errors).
//
// All writes happen through a Tx so that an import batch, or an update and
// its audit entry, become visible together or not at all.
type Store interface {
	// GetProduct returns the product with the given id, or ErrNotFound.
	GetProduct(ctx context.Context, id int64) (*Product, error)

	// FindByName looks a product up by normalized name. excludeID, when
	// non-zero, excludes that product from the match (used for update
	// conflict checks). Returns nil with no error when there is no match.
	FindByName(ctx context.Context, normalized string, excludeID int64) (*Product, error)

	// ListProducts returns one page of products and the total row count.
	ListProducts(ctx context.Context, opts ListOptions) ([]Product, int64, error)

	// SearchProducts returns products whose name contains the given
	// fragment case-insensitively, ordered by name ascending.
	SearchProducts(ctx context.Context, name string) ([]Product, error)

	// ProductsByName returns the full catalog ordered by name ascending.
	ProductsByName(ctx context.Context) ([]Product, error)

	// DeleteProduct removes a product row and reports whether it existed.
	// The product's inventory log entries are left untouched.
	DeleteProduct(ctx context.Context, id int64) (bool, error)

	// History returns the inventory log for a product id, newest first.
	History(ctx context.Context, productID int64) ([]InventoryLogEntry, error)

	// Begin opens a unit of work. The caller must Commit or Rollback.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is an atomic unit of work against the Store. Reads inside a Tx
// observe the Tx's own uncommitted writes. Rollback after Commit is a
// no-op, so `defer tx.Rollback(ctx)` is always safe.
type Tx interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
	FindByName(ctx context.Context, normalized string, excludeID int64) (*Product, error)

	// InsertProduct inserts a validated row and returns the assigned id.
	InsertProduct(ctx context.Context, row Row) (int64, error)

	// UpdateProduct replaces every mutable field of the product row
	// identified by p.ID.
	UpdateProduct(ctx context.Context, p *Product) error

	// AppendLog appends one immutable inventory log entry. The entry's
	// timestamp is assigned by the store.
	AppendLog(ctx context.Context, e InventoryLogEntry) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Cache is an optional read cache for catalog listings. Implementations
// must treat every method as best-effort: a miss or a backend error just
// means the store is consulted.
type Cache interface {
	GetList(ctx context.Context, key string) (*ListResult, bool)
	SetList(ctx context.Context, key string, res *ListResult)
	// Flush drops every cached listing; called after any write.
	Flush(ctx context.Context)
}

// EventPublisher announces committed stock changes to interested
// consumers. Publishing happens after commit and is best-effort; the
// audit log in the store is the source of truth.
type EventPublisher interface {
	PublishStockChange(ctx context.Context, e InventoryLogEntry) error
}

// clampListOptions applies the defaults the listing endpoints use.
func clampListOptions(opts ListOptions) ListOptions {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}
	switch opts.SortBy {
	case "name", "brand", "category", "stock", "status":
	default:
		opts.SortBy = "name"
	}
	if opts.SortDir != "desc" {
		opts.SortDir = "asc"
	}
	return opts
}

// now is stubbed in tests.
var now = time.Now
