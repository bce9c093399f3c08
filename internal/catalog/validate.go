package catalog

import (
	"math"
	"strconv"
	"strings"
)

// Record is one parsed CSV row: lowercased column name to raw cell value.
// Missing columns are simply absent keys.
type Record map[string]string

// Row is a validated, normalized import row ready for insertion.
type Row struct {
	Name     string
	Unit     string
	Category string
	Brand    string
	Stock    int
	Status   StockStatus
	Image    *string
}

// ValidateRecord checks a single parsed record against the required-field
// and numeric constraints and returns the normalized row or a rejection.
//
// Rules, in order: name/unit/category/brand are trimmed and must be
// non-empty; stock parses as a finite number >= 0 (blank means zero);
// a blank status is derived from the stock level, a non-blank status must
// be one of the two recognized values; a blank image becomes absent.
func ValidateRecord(rec Record) (Row, error) {
	var row Row

	row.Name = strings.TrimSpace(rec["name"])
	row.Unit = strings.TrimSpace(rec["unit"])
	row.Category = strings.TrimSpace(rec["category"])
	row.Brand = strings.TrimSpace(rec["brand"])

	for field, v := range map[string]string{
		"name": row.Name, "unit": row.Unit, "category": row.Category, "brand": row.Brand,
	} {
		if v == "" {
			return Row{}, &ValidationError{Field: field, Reason: "is required"}
		}
	}

	stock, err := parseStock(rec["stock"])
	if err != nil {
		return Row{}, err
	}
	row.Stock = stock

	status := strings.TrimSpace(rec["status"])
	if status == "" {
		row.Status = DeriveStatus(stock)
	} else {
		row.Status = StockStatus(status)
		if !row.Status.Valid() {
			return Row{}, &ValidationError{Field: "status", Reason: "must be 'In Stock' or 'Out of Stock'"}
		}
	}

	if img := strings.TrimSpace(rec["image"]); img != "" {
		row.Image = &img
	}

	return row, nil
}

// maxStock caps stock at what the store's integer column can hold.
// Anything above it would overflow the int conversion and flip negative.
const maxStock = math.MaxInt32

// parseStock parses a raw stock cell. A blank cell counts as zero.
func parseStock(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ValidationError{Field: "stock", Reason: "must be a number"}
	}
	if f < 0 {
		return 0, &ValidationError{Field: "stock", Reason: "must be >= 0"}
	}
	if f > maxStock {
		return 0, &ValidationError{Field: "stock", Reason: "exceeds the maximum of 2147483647"}
	}
	return int(f), nil
}

// ProductInput is the request body for single add and update operations.
// Stock is a pointer so a missing field can be told apart from zero.
type ProductInput struct {
	Name     string   `json:"name"`
	Unit     string   `json:"unit"`
	Category string   `json:"category"`
	Brand    string   `json:"brand"`
	Stock    *float64 `json:"stock"`
	Status   string   `json:"status"`
	Image    string   `json:"image"`
}

// Validate checks an add/update payload. Unlike the import path, every
// required field must be present, and the status must be supplied
// explicitly; the same enum policy applies to both paths.
func (in ProductInput) Validate() (Row, error) {
	row := Row{
		Name:     strings.TrimSpace(in.Name),
		Unit:     strings.TrimSpace(in.Unit),
		Category: strings.TrimSpace(in.Category),
		Brand:    strings.TrimSpace(in.Brand),
	}

	for field, v := range map[string]string{
		"name": row.Name, "unit": row.Unit, "category": row.Category, "brand": row.Brand,
	} {
		if v == "" {
			return Row{}, &ValidationError{Field: field, Reason: "is required"}
		}
	}

	if in.Stock == nil {
		return Row{}, &ValidationError{Field: "stock", Reason: "is required"}
	}
	f := *in.Stock
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return Row{}, &ValidationError{Field: "stock", Reason: "must be a number >= 0"}
	}
	if f > maxStock {
		return Row{}, &ValidationError{Field: "stock", Reason: "exceeds the maximum of 2147483647"}
	}
	row.Stock = int(f)

	status := strings.TrimSpace(in.Status)
	if status == "" {
		return Row{}, &ValidationError{Field: "status", Reason: "is required"}
	}
	row.Status = StockStatus(status)
	if !row.Status.Valid() {
		return Row{}, &ValidationError{Field: "status", Reason: "must be 'In Stock' or 'Out of Stock'"}
	}

	if img := strings.TrimSpace(in.Image); img != "" {
		row.Image = &img
	}

	return row, nil
}
