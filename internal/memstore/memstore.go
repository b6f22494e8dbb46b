// Package memstore is an in-memory catalogue.Store.
//
// Each session works on a private copy of the committed state; Commit
// publishes the copy and Rollback discards it. Column limits and checks
// of the PostgreSQL schema are enforced so that rows failing there also
// fail here.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/JonMunkholm/catalogue-import/internal/catalogue"
	"github.com/google/uuid"
)

// MaxUPCLength mirrors the width of the products.upc column.
const MaxUPCLength = 64

var (
	// ErrConstraint is wrapped by every constraint violation.
	ErrConstraint = errors.New("memstore: constraint violation")

	// ErrTxDone is returned when a finished session is used.
	ErrTxDone = errors.New("memstore: transaction already committed or rolled back")
)

type valueKey struct {
	attributeID uuid.UUID
	productID   uuid.UUID
}

type state struct {
	classes     []catalogue.ProductClass
	products    map[uuid.UUID]catalogue.Product
	attributes  []catalogue.AttributeDefinition // Creation order
	values      map[valueKey]catalogue.AttributeValue
	categories  []catalogue.Category
	memberships map[uuid.UUID]uuid.UUID // Product ID -> category ID
	partners    []catalogue.Partner
	stock       map[uuid.UUID]catalogue.StockRecord
	runs        []catalogue.ImportRun

	byUPC map[string]uuid.UUID // Product UPC -> product ID
	bySKU map[string]uuid.UUID // Partner SKU -> stock record ID
}

func newState() *state {
	return &state{
		products:    make(map[uuid.UUID]catalogue.Product),
		values:      make(map[valueKey]catalogue.AttributeValue),
		memberships: make(map[uuid.UUID]uuid.UUID),
		stock:       make(map[uuid.UUID]catalogue.StockRecord),
		byUPC:       make(map[string]uuid.UUID),
		bySKU:       make(map[string]uuid.UUID),
	}
}

func (s *state) clone() *state {
	return &state{
		classes:     slices.Clone(s.classes),
		products:    maps.Clone(s.products),
		attributes:  slices.Clone(s.attributes),
		values:      maps.Clone(s.values),
		categories:  slices.Clone(s.categories),
		memberships: maps.Clone(s.memberships),
		partners:    slices.Clone(s.partners),
		stock:       maps.Clone(s.stock),
		runs:        slices.Clone(s.runs),
		byUPC:       maps.Clone(s.byUPC),
		bySKU:       maps.Clone(s.bySKU),
	}
}

func (s *state) productByUPC(upc string) (catalogue.Product, bool) {
	id, ok := s.byUPC[upc]
	if !ok {
		return catalogue.Product{}, false
	}
	return s.products[id], true
}

func (s *state) stockBySKU(sku string) (catalogue.StockRecord, bool) {
	id, ok := s.bySKU[sku]
	if !ok {
		return catalogue.StockRecord{}, false
	}
	return s.stock[id], true
}

// Store is an in-memory catalogue store. The zero value is not usable; use New.
type Store struct {
	mu        sync.Mutex
	committed *state
}

var _ catalogue.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{committed: newState()}
}

// Begin opens a session on a copy of the committed state.
func (s *Store) Begin(ctx context.Context) (catalogue.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Tx{store: s, st: s.committed.clone()}, nil
}

// FlushCatalogue deletes products, product classes, partners and stock
// records, along with the attribute definitions, values and category
// memberships that depend on them. Categories and import runs are kept.
func (s *Store) FlushCatalogue(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st := newState()
	st.categories = s.committed.categories
	st.runs = s.committed.runs
	s.committed = st
	return nil
}

// view runs fn against the committed state.
func (s *Store) view(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.committed)
}

// Tx is a session on a Store.
type Tx struct {
	store *Store
	st    *state
	done  bool
}

var _ catalogue.Tx = (*Tx)(nil)

// Commit publishes the session's state.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.store.mu.Lock()
	t.store.committed = t.st
	t.store.mu.Unlock()
	t.done = true
	return nil
}

// Rollback discards the session's state. It is a no-op after Commit.
func (t *Tx) Rollback(context.Context) error {
	t.done = true
	t.st = nil
	return nil
}

func (t *Tx) check(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	return ctx.Err()
}

func (t *Tx) GetOrCreateProductClass(ctx context.Context, name string) (catalogue.ProductClass, error) {
	if err := t.check(ctx); err != nil {
		return catalogue.ProductClass{}, err
	}
	for _, c := range t.st.classes {
		if c.Name == name {
			return c, nil
		}
	}
	c := catalogue.ProductClass{ID: uuid.New(), Name: name, Slug: catalogue.Slugify(name)}
	t.st.classes = append(t.st.classes, c)
	return c, nil
}

func (t *Tx) GetProductByUPC(ctx context.Context, upc string) (catalogue.Product, error) {
	if err := t.check(ctx); err != nil {
		return catalogue.Product{}, err
	}
	if p, ok := t.st.productByUPC(upc); ok {
		return p, nil
	}
	return catalogue.Product{}, catalogue.ErrNotFound
}

func (t *Tx) SaveProduct(ctx context.Context, p *catalogue.Product) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: product id is required", ErrConstraint)
	}
	if utf8.RuneCountInString(p.UPC) > MaxUPCLength {
		return fmt.Errorf("%w: upc %q longer than %d characters", ErrConstraint, p.UPC, MaxUPCLength)
	}
	if id, ok := t.st.byUPC[p.UPC]; ok && id != p.ID {
		return fmt.Errorf("%w: duplicate upc %q", ErrConstraint, p.UPC)
	}
	if !slices.ContainsFunc(t.st.classes, func(c catalogue.ProductClass) bool { return c.ID == p.ClassID }) {
		return fmt.Errorf("%w: unknown product class %s", ErrConstraint, p.ClassID)
	}
	if old, ok := t.st.products[p.ID]; ok && old.UPC != p.UPC {
		delete(t.st.byUPC, old.UPC)
	}
	t.st.products[p.ID] = *p
	t.st.byUPC[p.UPC] = p.ID
	return nil
}

func (t *Tx) GetAttributeByName(ctx context.Context, name string) (catalogue.AttributeDefinition, error) {
	if err := t.check(ctx); err != nil {
		return catalogue.AttributeDefinition{}, err
	}
	for _, a := range t.st.attributes {
		if a.Name == name {
			return a, nil
		}
	}
	return catalogue.AttributeDefinition{}, catalogue.ErrNotFound
}

func (t *Tx) GetClassAttribute(ctx context.Context, classID uuid.UUID, name string) (catalogue.AttributeDefinition, error) {
	if err := t.check(ctx); err != nil {
		return catalogue.AttributeDefinition{}, err
	}
	for _, a := range t.st.attributes {
		if a.ClassID == classID && a.Name == name {
			return a, nil
		}
	}
	return catalogue.AttributeDefinition{}, catalogue.ErrNotFound
}

func (t *Tx) CreateAttribute(ctx context.Context, a *catalogue.AttributeDefinition) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	for _, other := range t.st.attributes {
		if other.ClassID == a.ClassID && other.Code == a.Code {
			return fmt.Errorf("%w: duplicate attribute code %q", ErrConstraint, a.Code)
		}
	}
	t.st.attributes = append(t.st.attributes, *a)
	return nil
}

func (t *Tx) GetOrCreateAttributeValue(ctx context.Context, attributeID, productID uuid.UUID) (catalogue.AttributeValue, error) {
	if err := t.check(ctx); err != nil {
		return catalogue.AttributeValue{}, err
	}
	key := valueKey{attributeID: attributeID, productID: productID}
	if v, ok := t.st.values[key]; ok {
		return v, nil
	}
	if _, ok := t.st.products[productID]; !ok {
		return catalogue.AttributeValue{}, fmt.Errorf("%w: unknown product %s", ErrConstraint, productID)
	}
	v := catalogue.AttributeValue{ID: uuid.New(), AttributeID: attributeID, ProductID: productID}
	t.st.values[key] = v
	return v, nil
}

func (t *Tx) SaveAttributeValue(ctx context.Context, v *catalogue.AttributeValue) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	t.st.values[valueKey{attributeID: v.AttributeID, productID: v.ProductID}] = *v
	return nil
}

func (t *Tx) GetChildCategory(ctx context.Context, parent uuid.NullUUID, name string) (catalogue.Category, error) {
	if err := t.check(ctx); err != nil {
		return catalogue.Category{}, err
	}
	for _, c := range t.st.categories {
		if c.ParentID == parent && c.Name == name {
			return c, nil
		}
	}
	return catalogue.Category{}, catalogue.ErrNotFound
}

func (t *Tx) CreateCategory(ctx context.Context, c *catalogue.Category) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	t.st.categories = append(t.st.categories, *c)
	return nil
}

func (t *Tx) SetProductCategory(ctx context.Context, productID, categoryID uuid.UUID) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	t.st.memberships[productID] = categoryID
	return nil
}

func (t *Tx) GetOrCreatePartner(ctx context.Context, name string) (catalogue.Partner, error) {
	if err := t.check(ctx); err != nil {
		return catalogue.Partner{}, err
	}
	for _, p := range t.st.partners {
		if p.Name == name {
			return p, nil
		}
	}
	p := catalogue.Partner{ID: uuid.New(), Name: name}
	t.st.partners = append(t.st.partners, p)
	return p, nil
}

func (t *Tx) GetStockRecordBySKU(ctx context.Context, partnerSKU string) (catalogue.StockRecord, error) {
	if err := t.check(ctx); err != nil {
		return catalogue.StockRecord{}, err
	}
	if r, ok := t.st.stockBySKU(partnerSKU); ok {
		return r, nil
	}
	return catalogue.StockRecord{}, catalogue.ErrNotFound
}

func (t *Tx) SaveStockRecord(ctx context.Context, r *catalogue.StockRecord) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	if r.NumInStock != "" {
		n, err := strconv.Atoi(r.NumInStock)
		if err != nil {
			return fmt.Errorf("%w: num_in_stock %q is not an integer", ErrConstraint, r.NumInStock)
		}
		if n < 0 {
			return fmt.Errorf("%w: num_in_stock %d is negative", ErrConstraint, n)
		}
	}
	if _, ok := t.st.products[r.ProductID]; !ok {
		return fmt.Errorf("%w: unknown product %s", ErrConstraint, r.ProductID)
	}
	if id, ok := t.st.bySKU[r.PartnerSKU]; ok && id != r.ID {
		return fmt.Errorf("%w: duplicate partner sku %q", ErrConstraint, r.PartnerSKU)
	}
	if old, ok := t.st.stock[r.ID]; ok && old.PartnerSKU != r.PartnerSKU {
		delete(t.st.bySKU, old.PartnerSKU)
	}
	t.st.stock[r.ID] = *r
	t.st.bySKU[r.PartnerSKU] = r.ID
	return nil
}

func (t *Tx) InsertImportRun(ctx context.Context, run catalogue.ImportRun) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	t.st.runs = append(t.st.runs, run)
	return nil
}
