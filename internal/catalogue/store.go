package catalogue

import (
	"context"

	"github.com/google/uuid"
)

// ProductClassRepository persists product classes.
type ProductClassRepository interface {
	// GetOrCreateProductClass returns the class with the given name, creating it if absent.
	GetOrCreateProductClass(ctx context.Context, name string) (ProductClass, error)
}

// ProductRepository persists products.
type ProductRepository interface {
	// GetProductByUPC returns ErrNotFound when no product has the UPC.
	GetProductByUPC(ctx context.Context, upc string) (Product, error)

	// SaveProduct inserts the product when its ID is unknown to the store,
	// otherwise overwrites it. Callers assign the ID of new products.
	SaveProduct(ctx context.Context, p *Product) error
}

// AttributeRepository persists attribute definitions and values.
type AttributeRepository interface {
	// GetAttributeByName looks a definition up by name across all classes.
	// When several classes define the name, the earliest created wins.
	GetAttributeByName(ctx context.Context, name string) (AttributeDefinition, error)

	// GetClassAttribute looks a definition up by (class, name).
	GetClassAttribute(ctx context.Context, classID uuid.UUID, name string) (AttributeDefinition, error)

	CreateAttribute(ctx context.Context, a *AttributeDefinition) error

	// GetOrCreateAttributeValue returns the value keyed by (attribute, product),
	// creating an empty one if absent.
	GetOrCreateAttributeValue(ctx context.Context, attributeID, productID uuid.UUID) (AttributeValue, error)

	SaveAttributeValue(ctx context.Context, v *AttributeValue) error
}

// CategoryRepository persists the category tree and product memberships.
type CategoryRepository interface {
	// GetChildCategory returns the child of parent named name. An invalid
	// parent selects root nodes.
	GetChildCategory(ctx context.Context, parent uuid.NullUUID, name string) (Category, error)

	CreateCategory(ctx context.Context, c *Category) error

	// SetProductCategory replaces every membership of the product with one
	// membership in the category.
	SetProductCategory(ctx context.Context, productID, categoryID uuid.UUID) error
}

// PartnerRepository persists partners.
type PartnerRepository interface {
	GetOrCreatePartner(ctx context.Context, name string) (Partner, error)
}

// StockRecordRepository persists stock records.
type StockRecordRepository interface {
	// GetStockRecordBySKU returns ErrNotFound when no record has the SKU.
	GetStockRecordBySKU(ctx context.Context, partnerSKU string) (StockRecord, error)

	// SaveStockRecord inserts or overwrites, like SaveProduct.
	SaveStockRecord(ctx context.Context, s *StockRecord) error
}

// ImportRunRepository records import runs.
type ImportRunRepository interface {
	InsertImportRun(ctx context.Context, run ImportRun) error
}

// Repositories is the full set of repositories available inside a session.
type Repositories interface {
	ProductClassRepository
	ProductRepository
	AttributeRepository
	CategoryRepository
	PartnerRepository
	StockRecordRepository
	ImportRunRepository
}

// Tx is a transactional session. Nothing written through it is visible
// outside the session until Commit succeeds. Rollback after Commit is a no-op.
type Tx interface {
	Repositories
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store opens sessions against a catalogue backend.
type Store interface {
	Begin(ctx context.Context) (Tx, error)

	// FlushCatalogue deletes all products, product classes, partners and
	// stock records. It commits on its own.
	FlushCatalogue(ctx context.Context) error
}
