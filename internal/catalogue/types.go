// Package catalogue defines the catalogue domain model and the repository
// contracts the importer reconciles rows against.
//
// Storage engines live elsewhere (internal/database for PostgreSQL,
// internal/memstore for dry runs and tests); this package has no storage
// dependencies of its own.
package catalogue

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by repository lookups when no record matches.
var ErrNotFound = errors.New("catalogue: not found")

// AttributeType is the storage type of an attribute definition.
type AttributeType string

const (
	// AttributeText is the only type the importer creates.
	AttributeText AttributeType = "text"
)

// ProductClass groups products sharing an attribute schema.
type ProductClass struct {
	ID   uuid.UUID
	Name string // Identity key
	Slug string
}

// Product is a catalogue item identified by its UPC.
type Product struct {
	ID          uuid.UUID
	UPC         string // Identity key
	Title       string
	Description string
	ClassID     uuid.UUID
}

// AttributeDefinition is a named attribute scoped to a product class.
type AttributeDefinition struct {
	ID      uuid.UUID
	ClassID uuid.UUID
	Name    string
	Code    string
	Type    AttributeType
}

// AttributeValue holds one attribute's value for one product.
type AttributeValue struct {
	ID          uuid.UUID
	AttributeID uuid.UUID
	ProductID   uuid.UUID
	ValueText   string
}

// Category is a node in the category tree.
type Category struct {
	ID       uuid.UUID
	ParentID uuid.NullUUID // Invalid for root nodes
	Name     string
	Slug     string
	Depth    int    // 1 for root nodes
	Path     string // Slugs from root to this node joined by "/"
}

// Partner is a stock-supplying entity.
type Partner struct {
	ID   uuid.UUID
	Name string // Identity key
}

// StockRecord pairs a product with a partner, price and stock level.
type StockRecord struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	PartnerID  uuid.UUID
	PartnerSKU string // Identity key
	Price      decimal.Decimal
	NumInStock string // Stored as given; the store converts it to its column type
}

// ImportRun records the outcome of one committed import.
type ImportRun struct {
	ID           uuid.UUID
	FileName     string
	NewItems     int
	UpdatedItems int
	SkippedRows  int
	StartedAt    time.Time
	FinishedAt   time.Time
}
