package importer

import (
	"errors"
	"fmt"
	"testing"
)

// record builds a row of the given width with fixed fields set and
// attribute/stock cells named by position ("v5", "v6", ...).
func record(width int) []string {
	r := make([]string, width)
	copy(r, []string{"shirts", "Clothing>Shirts", "UPC1", "Red Shirt", "NULL"})
	for i := FixedFieldCount; i < width; i++ {
		r[i] = fmt.Sprintf("v%d", i)
	}
	return r
}

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("attr%d", i)
	}
	return out
}

func TestHeaderAttributes(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   int
	}{
		{"fixed only", []string{"a", "b", "c", "d", "e"}, 0},
		{"short header", []string{"a", "b"}, 0},
		{"two attributes", []string{"a", "b", "c", "d", "e", "color", "size"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeaderAttributes(tt.header); len(got) != tt.want {
				t.Errorf("HeaderAttributes() len = %d, want %d", len(got), tt.want)
			}
		})
	}

	got := HeaderAttributes([]string{"a", "b", "c", "d", "e", "color", "size"})
	if got[0] != "color" || got[1] != "size" {
		t.Errorf("HeaderAttributes() = %v, want [color size]", got)
	}
}

func TestParseRow_Widths(t *testing.T) {
	tests := []struct {
		width     int
		wantErr   bool
		wantStock bool
	}{
		{0, true, false},
		{5, true, false},
		{6, true, false},
		{PlainRowWidth, false, false},
		{8, true, false},
		{53, true, false},
		{AttributeRowWidth, false, false},
		{StockRowWidth, false, true},
		{56, true, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("width %d", tt.width), func(t *testing.T) {
			row, err := ParseRow(names(49), record(tt.width))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFieldCount) {
					t.Fatalf("ParseRow() error = %v, want ErrInvalidFieldCount", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRow() error = %v", err)
			}
			if (row.Stock != nil) != tt.wantStock {
				t.Errorf("Stock present = %v, want %v", row.Stock != nil, tt.wantStock)
			}
		})
	}
}

func TestParseRow_FixedFields(t *testing.T) {
	row, err := ParseRow([]string{"color", "size"},
		[]string{"shirts", "Clothing>Shirts", "UPC1", "Red Shirt", "NULL", "red", "M"})
	if err != nil {
		t.Fatalf("ParseRow() error = %v", err)
	}

	if row.ProductClass != "shirts" {
		t.Errorf("ProductClass = %q, want %q", row.ProductClass, "shirts")
	}
	if row.Breadcrumb != "Clothing>Shirts" {
		t.Errorf("Breadcrumb = %q, want %q", row.Breadcrumb, "Clothing>Shirts")
	}
	if row.UPC != "UPC1" {
		t.Errorf("UPC = %q, want %q", row.UPC, "UPC1")
	}
	if row.Title != "Red Shirt" {
		t.Errorf("Title = %q, want %q", row.Title, "Red Shirt")
	}
	// Description normalisation happens during reconciliation, not parsing.
	if row.Description != "NULL" {
		t.Errorf("Description = %q, want %q", row.Description, "NULL")
	}

	want := []Attribute{{"color", "red"}, {"size", "M"}}
	if len(row.Attributes) != len(want) {
		t.Fatalf("Attributes = %v, want %v", row.Attributes, want)
	}
	for i := range want {
		if row.Attributes[i] != want[i] {
			t.Errorf("Attributes[%d] = %v, want %v", i, row.Attributes[i], want[i])
		}
	}
}

func TestParseRow_AttributePairing(t *testing.T) {
	tests := []struct {
		name      string
		headers   int
		width     int
		wantAttrs int
	}{
		{"more headers than values", 49, PlainRowWidth, 2},
		{"fewer headers than values", 1, PlainRowWidth, 1},
		{"no headers", 0, PlainRowWidth, 0},
		{"full attribute row", 49, AttributeRowWidth, 49},
		{"wide header on attribute row", 60, AttributeRowWidth, 49},
		{"stock row excludes stock block", 60, StockRowWidth, 46},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := ParseRow(names(tt.headers), record(tt.width))
			if err != nil {
				t.Fatalf("ParseRow() error = %v", err)
			}
			if len(row.Attributes) != tt.wantAttrs {
				t.Errorf("len(Attributes) = %d, want %d", len(row.Attributes), tt.wantAttrs)
			}
		})
	}
}

func TestParseRow_StockFields(t *testing.T) {
	rec := record(StockRowWidth)
	rec[51], rec[52], rec[53], rec[54] = "Acme", "ACME-1", "12.50", "7"

	row, err := ParseRow(names(60), rec)
	if err != nil {
		t.Fatalf("ParseRow() error = %v", err)
	}
	if row.Stock == nil {
		t.Fatal("Stock = nil, want stock fields")
	}

	want := StockFields{PartnerName: "Acme", PartnerSKU: "ACME-1", Price: "12.50", Quantity: "7"}
	if *row.Stock != want {
		t.Errorf("Stock = %+v, want %+v", *row.Stock, want)
	}
	last := row.Attributes[len(row.Attributes)-1]
	if last.Value != "v50" {
		t.Errorf("last attribute value = %q, want %q", last.Value, "v50")
	}
}
