package memstore

import (
	"slices"
	"strings"

	"github.com/JonMunkholm/catalogue-import/internal/catalogue"
)

// Counts holds the number of committed records per kind.
type Counts struct {
	ProductClasses  int
	Products        int
	Attributes      int
	AttributeValues int
	Categories      int
	Partners        int
	StockRecords    int
	ImportRuns      int
}

// Counts returns committed record counts.
func (s *Store) Counts() Counts {
	var c Counts
	s.view(func(st *state) {
		c = Counts{
			ProductClasses:  len(st.classes),
			Products:        len(st.products),
			Attributes:      len(st.attributes),
			AttributeValues: len(st.values),
			Categories:      len(st.categories),
			Partners:        len(st.partners),
			StockRecords:    len(st.stock),
			ImportRuns:      len(st.runs),
		}
	})
	return c
}

// Product returns the committed product with the UPC.
func (s *Store) Product(upc string) (catalogue.Product, bool) {
	var (
		p  catalogue.Product
		ok bool
	)
	s.view(func(st *state) {
		p, ok = st.productByUPC(upc)
	})
	return p, ok
}

// ProductClass returns the committed class of p.
func (s *Store) ProductClass(p catalogue.Product) (catalogue.ProductClass, bool) {
	var (
		c  catalogue.ProductClass
		ok bool
	)
	s.view(func(st *state) {
		i := slices.IndexFunc(st.classes, func(c catalogue.ProductClass) bool { return c.ID == p.ClassID })
		if i >= 0 {
			c, ok = st.classes[i], true
		}
	})
	return c, ok
}

// AttributeValues returns the product's attribute values keyed by attribute name.
func (s *Store) AttributeValues(p catalogue.Product) map[string]string {
	out := make(map[string]string)
	s.view(func(st *state) {
		for key, v := range st.values {
			if key.productID != p.ID {
				continue
			}
			for _, a := range st.attributes {
				if a.ID == key.attributeID {
					out[a.Name] = v.ValueText
				}
			}
		}
	})
	return out
}

// Attributes returns the committed attribute definitions in creation order.
func (s *Store) Attributes() []catalogue.AttributeDefinition {
	var out []catalogue.AttributeDefinition
	s.view(func(st *state) {
		out = slices.Clone(st.attributes)
	})
	return out
}

// ProductCategoryPath returns the breadcrumb of the product's category,
// names joined by " > ".
func (s *Store) ProductCategoryPath(p catalogue.Product) (string, bool) {
	var (
		path string
		ok   bool
	)
	s.view(func(st *state) {
		id, member := st.memberships[p.ID]
		if !member {
			return
		}
		var names []string
		for {
			i := slices.IndexFunc(st.categories, func(c catalogue.Category) bool { return c.ID == id })
			if i < 0 {
				return
			}
			c := st.categories[i]
			names = append(names, c.Name)
			if !c.ParentID.Valid {
				break
			}
			id = c.ParentID.UUID
		}
		slices.Reverse(names)
		path, ok = strings.Join(names, " > "), true
	})
	return path, ok
}

// StockRecord returns the committed stock record with the partner SKU.
func (s *Store) StockRecord(partnerSKU string) (catalogue.StockRecord, bool) {
	var (
		r  catalogue.StockRecord
		ok bool
	)
	s.view(func(st *state) {
		r, ok = st.stockBySKU(partnerSKU)
	})
	return r, ok
}

// ImportRuns returns the committed import runs, oldest first.
func (s *Store) ImportRuns() []catalogue.ImportRun {
	var out []catalogue.ImportRun
	s.view(func(st *state) {
		out = slices.Clone(st.runs)
	})
	return out
}
