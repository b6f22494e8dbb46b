package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const upsertProductClass = `-- name: UpsertProductClass :one
INSERT INTO product_classes (id, name, slug)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, slug
`

type UpsertProductClassParams struct {
	ID   pgtype.UUID
	Name string
	Slug string
}

func (q *Queries) UpsertProductClass(ctx context.Context, arg UpsertProductClassParams) (ProductClass, error) {
	row := q.db.QueryRow(ctx, upsertProductClass, arg.ID, arg.Name, arg.Slug)
	var i ProductClass
	err := row.Scan(&i.ID, &i.Name, &i.Slug)
	return i, err
}

const getProductByUpc = `-- name: GetProductByUpc :one
SELECT id, upc, title, description, product_class_id
FROM products
WHERE upc = $1
`

func (q *Queries) GetProductByUpc(ctx context.Context, upc string) (Product, error) {
	row := q.db.QueryRow(ctx, getProductByUpc, upc)
	var i Product
	err := row.Scan(&i.ID, &i.Upc, &i.Title, &i.Description, &i.ProductClassID)
	return i, err
}

const upsertProduct = `-- name: UpsertProduct :exec
INSERT INTO products (id, upc, title, description, product_class_id)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
    upc = EXCLUDED.upc,
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    product_class_id = EXCLUDED.product_class_id,
    updated_at = now()
`

type UpsertProductParams struct {
	ID             pgtype.UUID
	Upc            string
	Title          string
	Description    string
	ProductClassID pgtype.UUID
}

func (q *Queries) UpsertProduct(ctx context.Context, arg UpsertProductParams) error {
	_, err := q.db.Exec(ctx, upsertProduct,
		arg.ID,
		arg.Upc,
		arg.Title,
		arg.Description,
		arg.ProductClassID,
	)
	return err
}

const getFirstAttributeByName = `-- name: GetFirstAttributeByName :one
SELECT id, product_class_id, name, code, type
FROM product_attributes
WHERE name = $1
ORDER BY seq
LIMIT 1
`

func (q *Queries) GetFirstAttributeByName(ctx context.Context, name string) (ProductAttribute, error) {
	row := q.db.QueryRow(ctx, getFirstAttributeByName, name)
	var i ProductAttribute
	err := row.Scan(&i.ID, &i.ProductClassID, &i.Name, &i.Code, &i.Type)
	return i, err
}

const getClassAttribute = `-- name: GetClassAttribute :one
SELECT id, product_class_id, name, code, type
FROM product_attributes
WHERE product_class_id = $1 AND name = $2
ORDER BY seq
LIMIT 1
`

type GetClassAttributeParams struct {
	ProductClassID pgtype.UUID
	Name           string
}

func (q *Queries) GetClassAttribute(ctx context.Context, arg GetClassAttributeParams) (ProductAttribute, error) {
	row := q.db.QueryRow(ctx, getClassAttribute, arg.ProductClassID, arg.Name)
	var i ProductAttribute
	err := row.Scan(&i.ID, &i.ProductClassID, &i.Name, &i.Code, &i.Type)
	return i, err
}

const insertAttribute = `-- name: InsertAttribute :exec
INSERT INTO product_attributes (id, product_class_id, name, code, type)
VALUES ($1, $2, $3, $4, $5)
`

type InsertAttributeParams struct {
	ID             pgtype.UUID
	ProductClassID pgtype.UUID
	Name           string
	Code           string
	Type           string
}

func (q *Queries) InsertAttribute(ctx context.Context, arg InsertAttributeParams) error {
	_, err := q.db.Exec(ctx, insertAttribute,
		arg.ID,
		arg.ProductClassID,
		arg.Name,
		arg.Code,
		arg.Type,
	)
	return err
}

const ensureAttributeValue = `-- name: EnsureAttributeValue :one
INSERT INTO product_attribute_values (id, attribute_id, product_id)
VALUES ($1, $2, $3)
ON CONFLICT (attribute_id, product_id) DO UPDATE SET value_text = product_attribute_values.value_text
RETURNING id, attribute_id, product_id, value_text
`

type EnsureAttributeValueParams struct {
	ID          pgtype.UUID
	AttributeID pgtype.UUID
	ProductID   pgtype.UUID
}

func (q *Queries) EnsureAttributeValue(ctx context.Context, arg EnsureAttributeValueParams) (ProductAttributeValue, error) {
	row := q.db.QueryRow(ctx, ensureAttributeValue, arg.ID, arg.AttributeID, arg.ProductID)
	var i ProductAttributeValue
	err := row.Scan(&i.ID, &i.AttributeID, &i.ProductID, &i.ValueText)
	return i, err
}

const updateAttributeValue = `-- name: UpdateAttributeValue :exec
UPDATE product_attribute_values
SET value_text = $2
WHERE id = $1
`

type UpdateAttributeValueParams struct {
	ID        pgtype.UUID
	ValueText string
}

func (q *Queries) UpdateAttributeValue(ctx context.Context, arg UpdateAttributeValueParams) error {
	_, err := q.db.Exec(ctx, updateAttributeValue, arg.ID, arg.ValueText)
	return err
}

const getChildCategory = `-- name: GetChildCategory :one
SELECT id, parent_id, name, slug, depth, path
FROM categories
WHERE parent_id IS NOT DISTINCT FROM $1 AND name = $2
`

type GetChildCategoryParams struct {
	ParentID pgtype.UUID
	Name     string
}

func (q *Queries) GetChildCategory(ctx context.Context, arg GetChildCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, getChildCategory, arg.ParentID, arg.Name)
	var i Category
	err := row.Scan(&i.ID, &i.ParentID, &i.Name, &i.Slug, &i.Depth, &i.Path)
	return i, err
}

const insertCategory = `-- name: InsertCategory :exec
INSERT INTO categories (id, parent_id, name, slug, depth, path)
VALUES ($1, $2, $3, $4, $5, $6)
`

type InsertCategoryParams struct {
	ID       pgtype.UUID
	ParentID pgtype.UUID
	Name     string
	Slug     string
	Depth    int32
	Path     string
}

func (q *Queries) InsertCategory(ctx context.Context, arg InsertCategoryParams) error {
	_, err := q.db.Exec(ctx, insertCategory,
		arg.ID,
		arg.ParentID,
		arg.Name,
		arg.Slug,
		arg.Depth,
		arg.Path,
	)
	return err
}

const deleteProductCategories = `-- name: DeleteProductCategories :exec
DELETE FROM product_categories
WHERE product_id = $1
`

func (q *Queries) DeleteProductCategories(ctx context.Context, productID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, deleteProductCategories, productID)
	return err
}

const insertProductCategory = `-- name: InsertProductCategory :exec
INSERT INTO product_categories (product_id, category_id)
VALUES ($1, $2)
`

type InsertProductCategoryParams struct {
	ProductID  pgtype.UUID
	CategoryID pgtype.UUID
}

func (q *Queries) InsertProductCategory(ctx context.Context, arg InsertProductCategoryParams) error {
	_, err := q.db.Exec(ctx, insertProductCategory, arg.ProductID, arg.CategoryID)
	return err
}

const upsertPartner = `-- name: UpsertPartner :one
INSERT INTO partners (id, name)
VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name
`

type UpsertPartnerParams struct {
	ID   pgtype.UUID
	Name string
}

func (q *Queries) UpsertPartner(ctx context.Context, arg UpsertPartnerParams) (Partner, error) {
	row := q.db.QueryRow(ctx, upsertPartner, arg.ID, arg.Name)
	var i Partner
	err := row.Scan(&i.ID, &i.Name)
	return i, err
}

const getStockRecordBySku = `-- name: GetStockRecordBySku :one
SELECT id, product_id, partner_id, partner_sku, price, COALESCE(num_in_stock::text, '')
FROM stock_records
WHERE partner_sku = $1
`

func (q *Queries) GetStockRecordBySku(ctx context.Context, partnerSku string) (StockRecord, error) {
	row := q.db.QueryRow(ctx, getStockRecordBySku, partnerSku)
	var i StockRecord
	err := row.Scan(
		&i.ID,
		&i.ProductID,
		&i.PartnerID,
		&i.PartnerSku,
		&i.Price,
		&i.NumInStock,
	)
	return i, err
}

const upsertStockRecord = `-- name: UpsertStockRecord :exec
INSERT INTO stock_records (id, product_id, partner_id, partner_sku, price, num_in_stock)
VALUES ($1, $2, $3, $4, $5, NULLIF($6::text, '')::integer)
ON CONFLICT (id) DO UPDATE SET
    product_id = EXCLUDED.product_id,
    partner_id = EXCLUDED.partner_id,
    partner_sku = EXCLUDED.partner_sku,
    price = EXCLUDED.price,
    num_in_stock = EXCLUDED.num_in_stock
`

type UpsertStockRecordParams struct {
	ID         pgtype.UUID
	ProductID  pgtype.UUID
	PartnerID  pgtype.UUID
	PartnerSku string
	Price      pgtype.Numeric
	NumInStock string
}

func (q *Queries) UpsertStockRecord(ctx context.Context, arg UpsertStockRecordParams) error {
	_, err := q.db.Exec(ctx, upsertStockRecord,
		arg.ID,
		arg.ProductID,
		arg.PartnerID,
		arg.PartnerSku,
		arg.Price,
		arg.NumInStock,
	)
	return err
}

const insertImportRun = `-- name: InsertImportRun :exec
INSERT INTO import_runs (id, file_name, new_items, updated_items, skipped_rows, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type InsertImportRunParams struct {
	ID           pgtype.UUID
	FileName     string
	NewItems     int32
	UpdatedItems int32
	SkippedRows  int32
	StartedAt    pgtype.Timestamptz
	FinishedAt   pgtype.Timestamptz
}

func (q *Queries) InsertImportRun(ctx context.Context, arg InsertImportRunParams) error {
	_, err := q.db.Exec(ctx, insertImportRun,
		arg.ID,
		arg.FileName,
		arg.NewItems,
		arg.UpdatedItems,
		arg.SkippedRows,
		arg.StartedAt,
		arg.FinishedAt,
	)
	return err
}

const flushCatalogue = `-- name: FlushCatalogue :exec
DELETE FROM stock_records;
DELETE FROM partners;
DELETE FROM product_categories;
DELETE FROM product_attribute_values;
DELETE FROM products;
DELETE FROM product_attributes;
DELETE FROM product_classes;
`

// FlushCatalogue has no arguments, so pgx sends it over the simple protocol
// as a single multi-statement batch.
func (q *Queries) FlushCatalogue(ctx context.Context) error {
	_, err := q.db.Exec(ctx, flushCatalogue)
	return err
}
