package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-memory Store. It backs tests and local development
// without a database, and mirrors the transactional contract of the
// Postgres store: a Tx works on a private copy of the data and swaps it
// in atomically on Commit. Writers are serialized for the whole
// Begin-to-Commit window, so concurrent batches cannot interleave.
type MemStore struct {
	mu      sync.RWMutex // guards state
	writeMu sync.Mutex   // held from Begin until Commit/Rollback
	state   *memState
}

type memState struct {
	products  map[int64]*Product
	logs      []InventoryLogEntry
	nextID    int64
	nextLogID int64
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		state: &memState{
			products:  make(map[int64]*Product),
			nextID:    1,
			nextLogID: 1,
		},
	}
}

func (st *memState) clone() *memState {
	c := &memState{
		products:  make(map[int64]*Product, len(st.products)),
		logs:      make([]InventoryLogEntry, len(st.logs)),
		nextID:    st.nextID,
		nextLogID: st.nextLogID,
	}
	for id, p := range st.products {
		cp := *p
		c.products[id] = &cp
	}
	copy(c.logs, st.logs)
	return c
}

func (st *memState) getProduct(id int64) (*Product, error) {
	p, ok := st.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (st *memState) findByName(normalized string, excludeID int64) *Product {
	for _, p := range st.products {
		if p.ID != excludeID && NormalizeName(p.Name) == normalized {
			cp := *p
			return &cp
		}
	}
	return nil
}

func (st *memState) sorted(sortBy, sortDir string) []Product {
	out := make([]Product, 0, len(st.products))
	for _, p := range st.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if sortDir == "desc" {
			a, b = b, a
		}
		switch sortBy {
		case "brand":
			if a.Brand != b.Brand {
				return a.Brand < b.Brand
			}
		case "category":
			if a.Category != b.Category {
				return a.Category < b.Category
			}
		case "stock":
			if a.Stock != b.Stock {
				return a.Stock < b.Stock
			}
		case "status":
			if a.Status != b.Status {
				return a.Status < b.Status
			}
		}
		return a.Name < b.Name
	})
	return out
}

func (s *MemStore) GetProduct(ctx context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.getProduct(id)
}

func (s *MemStore) FindByName(ctx context.Context, normalized string, excludeID int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.findByName(normalized, excludeID), nil
}

func (s *MemStore) ListProducts(ctx context.Context, opts ListOptions) ([]Product, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.state.sorted(opts.SortBy, opts.SortDir)
	if opts.Category != "" {
		filtered := all[:0]
		for _, p := range all {
			if p.Category == opts.Category {
				filtered = append(filtered, p)
			}
		}
		all = filtered
	}

	total := int64(len(all))
	start := (opts.Page - 1) * opts.Limit
	if start >= len(all) {
		return []Product{}, total, nil
	}
	end := start + opts.Limit
	if end > len(all) {
		end = len(all)
	}
	page := make([]Product, end-start)
	copy(page, all[start:end])
	return page, total, nil
}

func (s *MemStore) SearchProducts(ctx context.Context, name string) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Product{}
	for _, p := range s.state.sorted("name", "asc") {
		if strings.Contains(NormalizeName(p.Name), name) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemStore) ProductsByName(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.sorted("name", "asc"), nil
}

func (s *MemStore) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.products[id]; !ok {
		return false, nil
	}
	delete(s.state.products, id)
	return true, nil
}

func (s *MemStore) History(ctx context.Context, productID int64) ([]InventoryLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []InventoryLogEntry{}
	for _, e := range s.state.logs {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	// Entries are appended in order, so newest first is a reversal.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Begin opens a transaction over a copy of the current state. The write
// lock is held until Commit or Rollback, giving writers strict mutual
// exclusion.
func (s *MemStore) Begin(ctx context.Context) (Tx, error) {
	s.writeMu.Lock()
	s.mu.RLock()
	st := s.state.clone()
	s.mu.RUnlock()
	return &memTx{store: s, state: st}, nil
}

type memTx struct {
	store *MemStore
	state *memState
	done  bool
}

func (t *memTx) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return t.state.getProduct(id)
}

func (t *memTx) FindByName(ctx context.Context, normalized string, excludeID int64) (*Product, error) {
	return t.state.findByName(normalized, excludeID), nil
}

func (t *memTx) InsertProduct(ctx context.Context, row Row) (int64, error) {
	ts := now()
	id := t.state.nextID
	t.state.nextID++
	t.state.products[id] = &Product{
		ID:        id,
		Name:      row.Name,
		Unit:      row.Unit,
		Category:  row.Category,
		Brand:     row.Brand,
		Stock:     row.Stock,
		Status:    row.Status,
		Image:     row.Image,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	return id, nil
}

func (t *memTx) UpdateProduct(ctx context.Context, p *Product) error {
	existing, ok := t.state.products[p.ID]
	if !ok {
		return ErrNotFound
	}
	cp := *p
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = now()
	t.state.products[p.ID] = &cp
	return nil
}

func (t *memTx) AppendLog(ctx context.Context, e InventoryLogEntry) error {
	e.ID = t.state.nextLogID
	t.state.nextLogID++
	e.Timestamp = now()
	t.state.logs = append(t.state.logs, e)
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Lock()
	t.store.state = t.state
	t.store.mu.Unlock()
	t.store.writeMu.Unlock()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.writeMu.Unlock()
	return nil
}
