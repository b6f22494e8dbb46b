package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/catalogue-import/internal/catalogue"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Beginner starts transactions. Satisfied by *pgxpool.Pool and *pgx.Conn.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is a catalogue.Store backed by PostgreSQL.
type Store struct {
	db Beginner
}

var _ catalogue.Store = (*Store)(nil)

// NewStore returns a Store using db for transactions.
func NewStore(db Beginner) *Store {
	return &Store{db: db}
}

// Begin starts a transaction.
func (s *Store) Begin(ctx context.Context) (catalogue.Tx, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, q: New(tx)}, nil
}

// FlushCatalogue deletes products, product classes, partners and stock
// records, together with their attribute values, attribute definitions and
// category memberships, in a transaction of its own.
func (s *Store) FlushCatalogue(ctx context.Context) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return New(tx).FlushCatalogue(ctx)
	})
}

// Tx runs repository operations inside one PostgreSQL transaction.
type Tx struct {
	tx pgx.Tx
	q  *Queries
}

var _ catalogue.Tx = (*Tx)(nil)

func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback is a no-op once the transaction has been committed.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// notFound maps pgx.ErrNoRows to catalogue.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return catalogue.ErrNotFound
	}
	return err
}

func (t *Tx) GetOrCreateProductClass(ctx context.Context, name string) (catalogue.ProductClass, error) {
	row, err := t.q.UpsertProductClass(ctx, UpsertProductClassParams{
		ID:   pgUUID(uuid.New()),
		Name: name,
		Slug: catalogue.Slugify(name),
	})
	if err != nil {
		return catalogue.ProductClass{}, err
	}
	return catalogue.ProductClass{ID: fromPgUUID(row.ID), Name: row.Name, Slug: row.Slug}, nil
}

func (t *Tx) GetProductByUPC(ctx context.Context, upc string) (catalogue.Product, error) {
	row, err := t.q.GetProductByUpc(ctx, upc)
	if err != nil {
		return catalogue.Product{}, notFound(err)
	}
	return catalogue.Product{
		ID:          fromPgUUID(row.ID),
		UPC:         row.Upc,
		Title:       row.Title,
		Description: row.Description,
		ClassID:     fromPgUUID(row.ProductClassID),
	}, nil
}

func (t *Tx) SaveProduct(ctx context.Context, p *catalogue.Product) error {
	if p.ID == uuid.Nil {
		return errors.New("save product: id is required")
	}
	return t.q.UpsertProduct(ctx, UpsertProductParams{
		ID:             pgUUID(p.ID),
		Upc:            p.UPC,
		Title:          p.Title,
		Description:    p.Description,
		ProductClassID: pgUUID(p.ClassID),
	})
}

func attributeFromRow(row ProductAttribute) catalogue.AttributeDefinition {
	return catalogue.AttributeDefinition{
		ID:      fromPgUUID(row.ID),
		ClassID: fromPgUUID(row.ProductClassID),
		Name:    row.Name,
		Code:    row.Code,
		Type:    catalogue.AttributeType(row.Type),
	}
}

func (t *Tx) GetAttributeByName(ctx context.Context, name string) (catalogue.AttributeDefinition, error) {
	row, err := t.q.GetFirstAttributeByName(ctx, name)
	if err != nil {
		return catalogue.AttributeDefinition{}, notFound(err)
	}
	return attributeFromRow(row), nil
}

func (t *Tx) GetClassAttribute(ctx context.Context, classID uuid.UUID, name string) (catalogue.AttributeDefinition, error) {
	row, err := t.q.GetClassAttribute(ctx, GetClassAttributeParams{ProductClassID: pgUUID(classID), Name: name})
	if err != nil {
		return catalogue.AttributeDefinition{}, notFound(err)
	}
	return attributeFromRow(row), nil
}

func (t *Tx) CreateAttribute(ctx context.Context, a *catalogue.AttributeDefinition) error {
	return t.q.InsertAttribute(ctx, InsertAttributeParams{
		ID:             pgUUID(a.ID),
		ProductClassID: pgUUID(a.ClassID),
		Name:           a.Name,
		Code:           a.Code,
		Type:           string(a.Type),
	})
}

func (t *Tx) GetOrCreateAttributeValue(ctx context.Context, attributeID, productID uuid.UUID) (catalogue.AttributeValue, error) {
	row, err := t.q.EnsureAttributeValue(ctx, EnsureAttributeValueParams{
		ID:          pgUUID(uuid.New()),
		AttributeID: pgUUID(attributeID),
		ProductID:   pgUUID(productID),
	})
	if err != nil {
		return catalogue.AttributeValue{}, err
	}
	return catalogue.AttributeValue{
		ID:          fromPgUUID(row.ID),
		AttributeID: fromPgUUID(row.AttributeID),
		ProductID:   fromPgUUID(row.ProductID),
		ValueText:   row.ValueText,
	}, nil
}

func (t *Tx) SaveAttributeValue(ctx context.Context, v *catalogue.AttributeValue) error {
	return t.q.UpdateAttributeValue(ctx, UpdateAttributeValueParams{ID: pgUUID(v.ID), ValueText: v.ValueText})
}

func (t *Tx) GetChildCategory(ctx context.Context, parent uuid.NullUUID, name string) (catalogue.Category, error) {
	row, err := t.q.GetChildCategory(ctx, GetChildCategoryParams{ParentID: pgNullUUID(parent), Name: name})
	if err != nil {
		return catalogue.Category{}, notFound(err)
	}
	return catalogue.Category{
		ID:       fromPgUUID(row.ID),
		ParentID: fromPgNullUUID(row.ParentID),
		Name:     row.Name,
		Slug:     row.Slug,
		Depth:    int(row.Depth),
		Path:     row.Path,
	}, nil
}

func (t *Tx) CreateCategory(ctx context.Context, c *catalogue.Category) error {
	return t.q.InsertCategory(ctx, InsertCategoryParams{
		ID:       pgUUID(c.ID),
		ParentID: pgNullUUID(c.ParentID),
		Name:     c.Name,
		Slug:     c.Slug,
		Depth:    int32(c.Depth),
		Path:     c.Path,
	})
}

// SetProductCategory replaces the product's category memberships.
func (t *Tx) SetProductCategory(ctx context.Context, productID, categoryID uuid.UUID) error {
	if err := t.q.DeleteProductCategories(ctx, pgUUID(productID)); err != nil {
		return err
	}
	return t.q.InsertProductCategory(ctx, InsertProductCategoryParams{
		ProductID:  pgUUID(productID),
		CategoryID: pgUUID(categoryID),
	})
}

func (t *Tx) GetOrCreatePartner(ctx context.Context, name string) (catalogue.Partner, error) {
	row, err := t.q.UpsertPartner(ctx, UpsertPartnerParams{ID: pgUUID(uuid.New()), Name: name})
	if err != nil {
		return catalogue.Partner{}, err
	}
	return catalogue.Partner{ID: fromPgUUID(row.ID), Name: row.Name}, nil
}

func (t *Tx) GetStockRecordBySKU(ctx context.Context, partnerSKU string) (catalogue.StockRecord, error) {
	row, err := t.q.GetStockRecordBySku(ctx, partnerSKU)
	if err != nil {
		return catalogue.StockRecord{}, notFound(err)
	}
	price, err := fromPgNumeric(row.Price)
	if err != nil {
		return catalogue.StockRecord{}, fmt.Errorf("stock record %q: %w", partnerSKU, err)
	}
	return catalogue.StockRecord{
		ID:         fromPgUUID(row.ID),
		ProductID:  fromPgUUID(row.ProductID),
		PartnerID:  fromPgUUID(row.PartnerID),
		PartnerSKU: row.PartnerSku,
		Price:      price,
		NumInStock: row.NumInStock,
	}, nil
}

// SaveStockRecord stores NumInStock as an integer column; non-integer text
// fails in the database.
func (t *Tx) SaveStockRecord(ctx context.Context, r *catalogue.StockRecord) error {
	price, err := pgNumeric(r.Price)
	if err != nil {
		return err
	}
	return t.q.UpsertStockRecord(ctx, UpsertStockRecordParams{
		ID:         pgUUID(r.ID),
		ProductID:  pgUUID(r.ProductID),
		PartnerID:  pgUUID(r.PartnerID),
		PartnerSku: r.PartnerSKU,
		Price:      price,
		NumInStock: r.NumInStock,
	})
}

func (t *Tx) InsertImportRun(ctx context.Context, run catalogue.ImportRun) error {
	return t.q.InsertImportRun(ctx, InsertImportRunParams{
		ID:           pgUUID(run.ID),
		FileName:     run.FileName,
		NewItems:     int32(run.NewItems),
		UpdatedItems: int32(run.UpdatedItems),
		SkippedRows:  int32(run.SkippedRows),
		StartedAt:    pgTimestamptz(run.StartedAt),
		FinishedAt:   pgTimestamptz(run.FinishedAt),
	})
}
