package catalog

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Rice", "rice"},
		{"  Rice  ", "rice"},
		{"RICE 5KG", "rice 5kg"},
		{"rice", "rice"},
		{"  Basmati Rice\t", "basmati rice"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		stock int
		want  StockStatus
	}{
		{0, StatusOutOfStock},
		{1, StatusInStock},
		{100, StatusInStock},
	}

	for _, tt := range tests {
		if got := DeriveStatus(tt.stock); got != tt.want {
			t.Errorf("DeriveStatus(%d) = %q, want %q", tt.stock, got, tt.want)
		}
	}
}

func TestStockStatusValid(t *testing.T) {
	tests := []struct {
		status StockStatus
		want   bool
	}{
		{StatusInStock, true},
		{StatusOutOfStock, true},
		{"in stock", false},
		{"Available", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.want {
			t.Errorf("StockStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
