package importer

import (
	"errors"
	"fmt"
)

// Row widths accepted by ParseRow. They are fixed by the import file layout
// and are not derived from the header width: rows narrower than the header
// are valid and simply carry fewer attributes.
const (
	// FixedFieldCount is the number of leading fields on every row.
	FixedFieldCount = 5
	// StockFieldCount is the number of trailing stock fields on StockRowWidth rows.
	StockFieldCount = 4

	PlainRowWidth     = 7
	AttributeRowWidth = 54
	StockRowWidth     = 55
)

// ErrInvalidFieldCount is returned by ParseRow for rows of unsupported width.
var ErrInvalidFieldCount = errors.New("invalid number of fields")

// Attribute is one named attribute value taken from a row.
type Attribute struct {
	Name  string
	Value string
}

// StockFields are the trailing stock columns of a StockRowWidth row.
type StockFields struct {
	PartnerName string
	PartnerSKU  string
	Price       string
	Quantity    string
}

// Row is a parsed data row.
type Row struct {
	ProductClass string
	Breadcrumb   string
	UPC          string
	Title        string
	Description  string

	// Attributes in header order.
	Attributes []Attribute

	// Stock is nil unless the row is StockRowWidth wide.
	Stock *StockFields
}

// HeaderAttributes returns the attribute names of a header record.
func HeaderAttributes(header []string) []string {
	if len(header) <= FixedFieldCount {
		return nil
	}
	names := make([]string, len(header)-FixedFieldCount)
	copy(names, header[FixedFieldCount:])
	return names
}

// ParseRow splits a record into its fixed fields, attributes and optional
// stock fields. attrNames come from HeaderAttributes.
func ParseRow(attrNames []string, record []string) (Row, error) {
	width := len(record)
	switch width {
	case PlainRowWidth, AttributeRowWidth, StockRowWidth:
	default:
		return Row{}, fmt.Errorf("%w (%d)", ErrInvalidFieldCount, width)
	}

	row := Row{
		ProductClass: record[0],
		Breadcrumb:   record[1],
		UPC:          record[2],
		Title:        record[3],
		Description:  record[4],
	}

	values := record[FixedFieldCount:]
	if width == StockRowWidth {
		split := width - StockFieldCount
		values = record[FixedFieldCount:split]
		row.Stock = &StockFields{
			PartnerName: record[split],
			PartnerSKU:  record[split+1],
			Price:       record[split+2],
			Quantity:    record[split+3],
		}
	}

	n := min(len(attrNames), len(values))
	row.Attributes = make([]Attribute, n)
	for i := 0; i < n; i++ {
		row.Attributes[i] = Attribute{Name: attrNames[i], Value: values[i]}
	}

	return row, nil
}
