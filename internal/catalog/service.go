package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/mhalvorsen/stockroom/internal/logging"
)

// Service wires the catalog operations to an injected Store. The store is
// opened once at process start and lives for the lifetime of the service;
// each operation runs as one unit of work against it.
//
// cache and events are optional and may be nil.
type Service struct {
	store  Store
	cache  Cache
	events EventPublisher
}

// NewService creates a Service. cache and events may be nil to disable
// listing caching and stock-change events.
func NewService(store Store, cache Cache, events EventPublisher) *Service {
	return &Service{store: store, cache: cache, events: events}
}

// Get returns a product by id.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.store.GetProduct(ctx, id)
}

// Add validates and inserts a single product. The name must not collide
// with any stored product under normalized comparison.
func (s *Service) Add(ctx context.Context, in ProductInput) (*Product, error) {
	row, err := in.Validate()
	if err != nil {
		return nil, err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin add: %w", err)
	}
	defer tx.Rollback(ctx)

	norm := NormalizeName(row.Name)
	if existing, err := tx.FindByName(ctx, norm, 0); err != nil {
		return nil, fmt.Errorf("name check: %w", err)
	} else if existing != nil {
		return nil, &ConflictError{Name: row.Name, ExistingID: existing.ID}
	}

	id, err := tx.InsertProduct(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	created, err := tx.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read back product %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit add: %w", err)
	}

	s.flushCache(ctx)
	return created, nil
}

// Update applies a full replacement payload to an existing product. When
// the numeric stock value changes, exactly one inventory log entry is
// appended in the same unit of work: the product row and its audit entry
// become visible together or not at all. A blank image retains the
// previous one.
func (s *Service) Update(ctx context.Context, id int64, in ProductInput) (*Product, error) {
	row, err := in.Validate()
	if err != nil {
		return nil, err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	existing, err := tx.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	norm := NormalizeName(row.Name)
	if other, err := tx.FindByName(ctx, norm, id); err != nil {
		return nil, fmt.Errorf("name check: %w", err)
	} else if other != nil {
		return nil, &ConflictError{Name: row.Name, ExistingID: other.ID}
	}

	updated := *existing
	updated.Name = row.Name
	updated.Unit = row.Unit
	updated.Category = row.Category
	updated.Brand = row.Brand
	updated.Stock = row.Stock
	updated.Status = row.Status
	if row.Image != nil {
		updated.Image = row.Image
	}

	if err := tx.UpdateProduct(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}

	var entry *InventoryLogEntry
	if existing.Stock != updated.Stock {
		entry = &InventoryLogEntry{
			ProductID: id,
			OldStock:  existing.Stock,
			NewStock:  updated.Stock,
			ChangedBy: ActorFromContext(ctx),
		}
		if err := tx.AppendLog(ctx, *entry); err != nil {
			return nil, fmt.Errorf("append inventory log: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}

	s.flushCache(ctx)
	if entry != nil {
		s.publishStockChange(ctx, *entry)
	}

	result, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a product. Its inventory log entries survive as an
// orphaned-but-valid audit trail keyed by the dead id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existed, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if !existed {
		return ErrNotFound
	}
	s.flushCache(ctx)
	return nil
}

// List returns one page of products with an optional category filter and
// whitelisted sorting. Results are served from the cache when possible.
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	opts = clampListOptions(opts)

	key := fmt.Sprintf("list:%d:%d:%s:%s:%s", opts.Page, opts.Limit, opts.Category, opts.SortBy, opts.SortDir)
	if s.cache != nil {
		if res, ok := s.cache.GetList(ctx, key); ok {
			return res, nil
		}
	}

	products, total, err := s.store.ListProducts(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	res := &ListResult{Data: products, Total: total, Page: opts.Page, Limit: opts.Limit}
	if s.cache != nil {
		s.cache.SetList(ctx, key, res)
	}
	return res, nil
}

// Search returns products whose name contains the fragment, ignoring case.
func (s *Service) Search(ctx context.Context, name string) ([]Product, error) {
	products, err := s.store.SearchProducts(ctx, NormalizeName(name))
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// History returns the inventory log for a product, newest first. The id
// does not have to belong to a live product: history outlives deletion.
func (s *Service) History(ctx context.Context, productID int64) ([]InventoryLogEntry, error) {
	entries, err := s.store.History(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product history %d: %w", productID, err)
	}
	return entries, nil
}

// ExportCSV streams the full catalog, ordered by name ascending, in the
// seven-column format accepted by Import.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	products, err := s.store.ProductsByName(ctx)
	if err != nil {
		return fmt.Errorf("export products: %w", err)
	}
	return WriteCSV(w, products)
}

func (s *Service) flushCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Flush(ctx)
	}
}

// publishStockChange announces a committed stock transition. Failures are
// logged, not surfaced: the durable audit entry is the source of truth.
func (s *Service) publishStockChange(ctx context.Context, e InventoryLogEntry) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishStockChange(ctx, e); err != nil {
		logging.FromContext(ctx).Warn("stock change event not published",
			"product_id", e.ProductID, "error", err)
	}
}
