// Package catalog provides the business logic for the product catalog:
// CSV import/export, single-product mutations, and the stock audit trail.
// This package has no HTTP dependencies and can be used by any frontend.
package catalog

import (
	"strings"
	"time"
)

// StockStatus is the availability state of a product.
type StockStatus string

const (
	StatusInStock    StockStatus = "In Stock"
	StatusOutOfStock StockStatus = "Out of Stock"
)

// Valid reports whether s is one of the recognized status values.
func (s StockStatus) Valid() bool {
	return s == StatusInStock || s == StatusOutOfStock
}

// DeriveStatus returns the status implied by a stock level.
// Used when an imported row leaves the status column blank.
func DeriveStatus(stock int) StockStatus {
	if stock > 0 {
		return StatusInStock
	}
	return StatusOutOfStock
}

// Product is a single stock-keeping record. The name is unique across the
// catalog under trimmed, case-insensitive comparison; the store enforces
// this with a unique index on the normalized name.
type Product struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Unit      string      `json:"unit"`
	Category  string      `json:"category"`
	Brand     string      `json:"brand"`
	Stock     int         `json:"stock"`
	Status    StockStatus `json:"status"`
	Image     *string     `json:"image"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// InventoryLogEntry is one immutable record of a stock-value transition.
// Entries reference a product by id but do not own it: deleting the product
// leaves its history retrievable.
type InventoryLogEntry struct {
	ID        int64     `json:"-"`
	ProductID int64     `json:"productId"`
	OldStock  int       `json:"oldStock"`
	NewStock  int       `json:"newStock"`
	ChangedBy string    `json:"changedBy"`
	Timestamp time.Time `json:"timestamp"`
}

// DuplicateRecord identifies an import row whose name collided with an
// already-stored product or with an earlier row in the same batch.
// ExistingID is the id of the record that won the name.
type DuplicateRecord struct {
	Name       string `json:"name"`
	ExistingID int64  `json:"existingId"`
}

// ImportSummary is the outcome of one import batch.
type ImportSummary struct {
	Added      int               `json:"added"`
	Skipped    int               `json:"skipped"`
	Duplicates []DuplicateRecord `json:"duplicates"`
}

// NormalizeName produces the canonical uniqueness key for a product name:
// surrounding whitespace trimmed, case folded. Every uniqueness decision in
// the catalog goes through this function.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
