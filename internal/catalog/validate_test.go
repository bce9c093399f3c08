package catalog

import (
	"testing"
)

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		want    Row
		wantErr string // expected field in the validation error, "" for success
	}{
		{
			name: "complete row",
			rec: Record{
				"name": "Rice 5kg", "unit": "bag", "category": "Grains",
				"brand": "Golden", "stock": "12", "status": "In Stock", "image": "rice.png",
			},
			want: Row{
				Name: "Rice 5kg", Unit: "bag", Category: "Grains",
				Brand: "Golden", Stock: 12, Status: StatusInStock, Image: strPtr("rice.png"),
			},
		},
		{
			name: "blank stock defaults to zero with derived status",
			rec:  Record{"name": "Salt", "unit": "box", "category": "Spices", "brand": "Sea"},
			want: Row{Name: "Salt", Unit: "box", Category: "Spices", Brand: "Sea", Stock: 0, Status: StatusOutOfStock},
		},
		{
			name: "blank status derived from positive stock",
			rec:  Record{"name": "Salt", "unit": "box", "category": "Spices", "brand": "Sea", "stock": "3"},
			want: Row{Name: "Salt", Unit: "box", Category: "Spices", Brand: "Sea", Stock: 3, Status: StatusInStock},
		},
		{
			name: "fields are trimmed",
			rec:  Record{"name": "  Tea  ", "unit": " box ", "category": " Drinks ", "brand": " Lipton ", "stock": "1"},
			want: Row{Name: "Tea", Unit: "box", Category: "Drinks", Brand: "Lipton", Stock: 1, Status: StatusInStock},
		},
		{
			name: "fractional stock truncates",
			rec:  Record{"name": "Oil", "unit": "bottle", "category": "Cooking", "brand": "Sun", "stock": "3.7"},
			want: Row{Name: "Oil", Unit: "bottle", Category: "Cooking", Brand: "Sun", Stock: 3, Status: StatusInStock},
		},
		{
			name:    "missing name",
			rec:     Record{"unit": "box", "category": "Spices", "brand": "Sea", "stock": "1"},
			wantErr: "name",
		},
		{
			name:    "whitespace-only name",
			rec:     Record{"name": "   ", "unit": "box", "category": "Spices", "brand": "Sea", "stock": "1"},
			wantErr: "name",
		},
		{
			name:    "missing unit",
			rec:     Record{"name": "Salt", "category": "Spices", "brand": "Sea", "stock": "1"},
			wantErr: "unit",
		},
		{
			name:    "missing category",
			rec:     Record{"name": "Salt", "unit": "box", "brand": "Sea", "stock": "1"},
			wantErr: "category",
		},
		{
			name:    "missing brand",
			rec:     Record{"name": "Salt", "unit": "box", "category": "Spices", "stock": "1"},
			wantErr: "brand",
		},
		{
			name:    "negative stock",
			rec:     Record{"name": "Salt", "unit": "box", "category": "Spices", "brand": "Sea", "stock": "-2"},
			wantErr: "stock",
		},
		{
			name:    "non-numeric stock",
			rec:     Record{"name": "Salt", "unit": "box", "category": "Spices", "brand": "Sea", "stock": "many"},
			wantErr: "stock",
		},
		{
			name:    "NaN stock",
			rec:     Record{"name": "Salt", "unit": "box", "category": "Spices", "brand": "Sea", "stock": "NaN"},
			wantErr: "stock",
		},
		{
			name:    "stock beyond integer range",
			rec:     Record{"name": "Salt", "unit": "box", "category": "Spices", "brand": "Sea", "stock": "1e20"},
			wantErr: "stock",
		},
		{
			name: "stock at integer boundary",
			rec:  Record{"name": "Salt", "unit": "box", "category": "Spices", "brand": "Sea", "stock": "2147483647"},
			want: Row{Name: "Salt", Unit: "box", Category: "Spices", Brand: "Sea", Stock: 2147483647, Status: StatusInStock},
		},
		{
			name:    "unrecognized status",
			rec:     Record{"name": "Salt", "unit": "box", "category": "Spices", "brand": "Sea", "stock": "1", "status": "Low"},
			wantErr: "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateRecord(tt.rec)

			if tt.wantErr != "" {
				var ve *ValidationError
				if err == nil {
					t.Fatalf("ValidateRecord() expected error on field %q, got row %+v", tt.wantErr, got)
				}
				if !IsValidation(err) {
					t.Fatalf("ValidateRecord() error = %v, want ValidationError", err)
				}
				ve = err.(*ValidationError)
				if ve.Field != tt.wantErr {
					t.Errorf("ValidateRecord() error field = %q, want %q", ve.Field, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("ValidateRecord() error = %v", err)
			}
			if !rowsEqual(got, tt.want) {
				t.Errorf("ValidateRecord() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProductInputValidate(t *testing.T) {
	stock := func(f float64) *float64 { return &f }

	valid := ProductInput{
		Name: "Rice", Unit: "bag", Category: "Grains", Brand: "Golden",
		Stock: stock(5), Status: "In Stock", Image: "rice.png",
	}

	t.Run("valid input", func(t *testing.T) {
		row, err := valid.Validate()
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if row.Stock != 5 || row.Status != StatusInStock {
			t.Errorf("Validate() = %+v", row)
		}
		if row.Image == nil || *row.Image != "rice.png" {
			t.Errorf("Validate() image = %v, want rice.png", row.Image)
		}
	})

	t.Run("blank image becomes absent", func(t *testing.T) {
		in := valid
		in.Image = "  "
		row, err := in.Validate()
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if row.Image != nil {
			t.Errorf("Validate() image = %q, want nil", *row.Image)
		}
	})

	tests := []struct {
		name      string
		mutate    func(*ProductInput)
		wantField string
	}{
		{"missing stock", func(in *ProductInput) { in.Stock = nil }, "stock"},
		{"negative stock", func(in *ProductInput) { in.Stock = stock(-1) }, "stock"},
		{"stock beyond integer range", func(in *ProductInput) { in.Stock = stock(1e20) }, "stock"},
		{"missing status", func(in *ProductInput) { in.Status = "" }, "status"},
		{"invalid status", func(in *ProductInput) { in.Status = "Available" }, "status"},
		{"missing name", func(in *ProductInput) { in.Name = "" }, "name"},
		{"missing unit", func(in *ProductInput) { in.Unit = " " }, "unit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := in.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Validate() error field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func strPtr(s string) *string { return &s }

func rowsEqual(a, b Row) bool {
	if a.Name != b.Name || a.Unit != b.Unit || a.Category != b.Category ||
		a.Brand != b.Brand || a.Stock != b.Stock || a.Status != b.Status {
		return false
	}
	if (a.Image == nil) != (b.Image == nil) {
		return false
	}
	if a.Image != nil && *a.Image != *b.Image {
		return false
	}
	return true
}
