package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/catalogue-import/internal/catalogue"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// nullDescription is the placeholder exporters write for a missing description.
const nullDescription = "NULL"

// Reconciler applies parsed rows to the catalogue repositories of a session.
type Reconciler struct {
	// ScopeAttributesByClass resolves attribute definitions by (class, name).
	// When false, definitions are resolved by name alone and a definition
	// created for one class is reused by every other class.
	ScopeAttributesByClass bool

	// BreadcrumbSeparator separates category names (default ">").
	BreadcrumbSeparator string
}

// UpsertProduct creates or updates the product identified by row.UPC together
// with its class, attribute values and category membership. created reports
// whether the product was new.
func (r *Reconciler) UpsertProduct(ctx context.Context, repos catalogue.Repositories, row Row) (product catalogue.Product, created bool, err error) {
	description := row.Description
	if description == nullDescription {
		description = ""
	}

	class, err := repos.GetOrCreateProductClass(ctx, row.ProductClass)
	if err != nil {
		return catalogue.Product{}, false, fmt.Errorf("product class %q: %w", row.ProductClass, err)
	}

	product, err = repos.GetProductByUPC(ctx, row.UPC)
	switch {
	case err == nil:
	case errors.Is(err, catalogue.ErrNotFound):
		product = catalogue.Product{ID: uuid.New(), UPC: row.UPC}
		created = true
	default:
		return catalogue.Product{}, false, fmt.Errorf("get product %q: %w", row.UPC, err)
	}

	product.Title = row.Title
	product.Description = description
	product.ClassID = class.ID
	if err := repos.SaveProduct(ctx, &product); err != nil {
		return catalogue.Product{}, false, fmt.Errorf("save product %q: %w", row.UPC, err)
	}

	for _, attr := range row.Attributes {
		if err := r.setAttribute(ctx, repos, class, product, attr); err != nil {
			return catalogue.Product{}, false, err
		}
	}

	category, err := catalogue.ResolveBreadcrumbs(ctx, repos, row.Breadcrumb, r.BreadcrumbSeparator)
	if err != nil {
		return catalogue.Product{}, false, fmt.Errorf("category for %q: %w", row.UPC, err)
	}
	if err := repos.SetProductCategory(ctx, product.ID, category.ID); err != nil {
		return catalogue.Product{}, false, fmt.Errorf("set category for %q: %w", row.UPC, err)
	}

	return product, created, nil
}

func (r *Reconciler) setAttribute(ctx context.Context, repos catalogue.Repositories, class catalogue.ProductClass, product catalogue.Product, attr Attribute) error {
	def, err := r.lookupAttribute(ctx, repos, class.ID, attr.Name)
	if errors.Is(err, catalogue.ErrNotFound) {
		def = catalogue.AttributeDefinition{
			ID:      uuid.New(),
			ClassID: class.ID,
			Name:    attr.Name,
			Code:    attr.Name,
			Type:    catalogue.AttributeText,
		}
		err = repos.CreateAttribute(ctx, &def)
	}
	if err != nil {
		return fmt.Errorf("attribute %q: %w", attr.Name, err)
	}

	value, err := repos.GetOrCreateAttributeValue(ctx, def.ID, product.ID)
	if err != nil {
		return fmt.Errorf("attribute value %q for %q: %w", attr.Name, product.UPC, err)
	}
	value.ValueText = attr.Value
	if err := repos.SaveAttributeValue(ctx, &value); err != nil {
		return fmt.Errorf("save attribute value %q for %q: %w", attr.Name, product.UPC, err)
	}
	return nil
}

func (r *Reconciler) lookupAttribute(ctx context.Context, repos catalogue.Repositories, classID uuid.UUID, name string) (catalogue.AttributeDefinition, error) {
	if r.ScopeAttributesByClass {
		return repos.GetClassAttribute(ctx, classID, name)
	}
	return repos.GetAttributeByName(ctx, name)
}

// UpsertStock creates or updates the stock record keyed by the partner SKU
// and links it to product and the named partner.
func (r *Reconciler) UpsertStock(ctx context.Context, repos catalogue.Repositories, product catalogue.Product, stock StockFields) error {
	partner, err := repos.GetOrCreatePartner(ctx, stock.PartnerName)
	if err != nil {
		return fmt.Errorf("partner %q: %w", stock.PartnerName, err)
	}

	price, err := decimal.NewFromString(stock.Price)
	if err != nil {
		return &ImportError{Kind: KindInvalidPrice, Value: stock.Price, Err: err}
	}

	record, err := repos.GetStockRecordBySKU(ctx, stock.PartnerSKU)
	switch {
	case err == nil:
	case errors.Is(err, catalogue.ErrNotFound):
		record = catalogue.StockRecord{ID: uuid.New()}
	default:
		return fmt.Errorf("get stock record %q: %w", stock.PartnerSKU, err)
	}

	record.ProductID = product.ID
	record.PartnerID = partner.ID
	record.PartnerSKU = stock.PartnerSKU
	record.Price = price
	record.NumInStock = stock.Quantity
	if err := repos.SaveStockRecord(ctx, &record); err != nil {
		return fmt.Errorf("save stock record %q: %w", stock.PartnerSKU, err)
	}
	return nil
}
