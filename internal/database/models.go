package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type ProductClass struct {
	ID   pgtype.UUID
	Name string
	Slug string
}

type Product struct {
	ID             pgtype.UUID
	Upc            string
	Title          string
	Description    string
	ProductClassID pgtype.UUID
}

type ProductAttribute struct {
	ID             pgtype.UUID
	ProductClassID pgtype.UUID
	Name           string
	Code           string
	Type           string
}

type ProductAttributeValue struct {
	ID          pgtype.UUID
	AttributeID pgtype.UUID
	ProductID   pgtype.UUID
	ValueText   string
}

type Category struct {
	ID       pgtype.UUID
	ParentID pgtype.UUID
	Name     string
	Slug     string
	Depth    int32
	Path     string
}

type Partner struct {
	ID   pgtype.UUID
	Name string
}

type StockRecord struct {
	ID         pgtype.UUID
	ProductID  pgtype.UUID
	PartnerID  pgtype.UUID
	PartnerSku string
	Price      pgtype.Numeric
	NumInStock string
}

type ImportRun struct {
	ID           pgtype.UUID
	FileName     string
	NewItems     int32
	UpdatedItems int32
	SkippedRows  int32
	StartedAt    pgtype.Timestamptz
	FinishedAt   pgtype.Timestamptz
}
