package memstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JonMunkholm/catalogue-import/internal/catalogue"
	"github.com/google/uuid"
)

func seedProduct(t *testing.T, ctx context.Context, tx catalogue.Tx, upc string) catalogue.Product {
	t.Helper()
	class, err := tx.GetOrCreateProductClass(ctx, "shirts")
	if err != nil {
		t.Fatalf("GetOrCreateProductClass() error = %v", err)
	}
	p := catalogue.Product{ID: uuid.New(), UPC: upc, Title: "Shirt", ClassID: class.ID}
	if err := tx.SaveProduct(ctx, &p); err != nil {
		t.Fatalf("SaveProduct() error = %v", err)
	}
	return p
}

func TestTx_CommitPublishes(t *testing.T) {
	ctx := context.Background()
	s := New()

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	seedProduct(t, ctx, tx, "UPC1")

	if got := s.Counts().Products; got != 0 {
		t.Errorf("Products before commit = %d, want 0", got)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if got := s.Counts().Products; got != 1 {
		t.Errorf("Products after commit = %d, want 1", got)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Errorf("Rollback() after Commit error = %v, want nil", err)
	}
	if got := s.Counts().Products; got != 1 {
		t.Errorf("Products after late rollback = %d, want 1", got)
	}
}

func TestTx_RollbackDiscards(t *testing.T) {
	ctx := context.Background()
	s := New()

	tx, _ := s.Begin(ctx)
	seedProduct(t, ctx, tx, "UPC1")
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	if got := s.Counts(); got != (Counts{}) {
		t.Errorf("Counts() after rollback = %+v, want zero", got)
	}
	if _, err := tx.GetProductByUPC(ctx, "UPC1"); !errors.Is(err, ErrTxDone) {
		t.Errorf("use after rollback error = %v, want ErrTxDone", err)
	}
	if err := tx.Commit(ctx); !errors.Is(err, ErrTxDone) {
		t.Errorf("Commit() after rollback error = %v, want ErrTxDone", err)
	}
}

func TestTx_Constraints(t *testing.T) {
	ctx := context.Background()
	s := New()
	tx, _ := s.Begin(ctx)
	defer tx.Rollback(ctx)

	p := seedProduct(t, ctx, tx, "UPC1")

	t.Run("duplicate upc", func(t *testing.T) {
		dup := catalogue.Product{ID: uuid.New(), UPC: "UPC1", ClassID: p.ClassID}
		if err := tx.SaveProduct(ctx, &dup); !errors.Is(err, ErrConstraint) {
			t.Errorf("SaveProduct() error = %v, want ErrConstraint", err)
		}
	})

	t.Run("upc too long", func(t *testing.T) {
		long := catalogue.Product{ID: uuid.New(), UPC: strings.Repeat("9", MaxUPCLength+1), ClassID: p.ClassID}
		if err := tx.SaveProduct(ctx, &long); !errors.Is(err, ErrConstraint) {
			t.Errorf("SaveProduct() error = %v, want ErrConstraint", err)
		}
	})

	t.Run("non-integer stock", func(t *testing.T) {
		r := catalogue.StockRecord{ID: uuid.New(), ProductID: p.ID, PartnerSKU: "SKU", NumInStock: "lots"}
		if err := tx.SaveStockRecord(ctx, &r); !errors.Is(err, ErrConstraint) {
			t.Errorf("SaveStockRecord() error = %v, want ErrConstraint", err)
		}
	})

	t.Run("negative stock", func(t *testing.T) {
		r := catalogue.StockRecord{ID: uuid.New(), ProductID: p.ID, PartnerSKU: "SKU", NumInStock: "-1"}
		if err := tx.SaveStockRecord(ctx, &r); !errors.Is(err, ErrConstraint) {
			t.Errorf("SaveStockRecord() error = %v, want ErrConstraint", err)
		}
	})

	t.Run("empty stock allowed", func(t *testing.T) {
		r := catalogue.StockRecord{ID: uuid.New(), ProductID: p.ID, PartnerSKU: "SKU"}
		if err := tx.SaveStockRecord(ctx, &r); err != nil {
			t.Errorf("SaveStockRecord() error = %v, want nil", err)
		}
	})

	t.Run("duplicate partner sku", func(t *testing.T) {
		r := catalogue.StockRecord{ID: uuid.New(), ProductID: p.ID, PartnerSKU: "SKU"}
		if err := tx.SaveStockRecord(ctx, &r); !errors.Is(err, ErrConstraint) {
			t.Errorf("SaveStockRecord() error = %v, want ErrConstraint", err)
		}
	})
}

func TestTx_KeyLookupsFollowChanges(t *testing.T) {
	ctx := context.Background()
	s := New()

	tx, _ := s.Begin(ctx)
	p := seedProduct(t, ctx, tx, "UPC1")
	r := catalogue.StockRecord{ID: uuid.New(), ProductID: p.ID, PartnerSKU: "SKU-1"}
	if err := tx.SaveStockRecord(ctx, &r); err != nil {
		t.Fatalf("SaveStockRecord() error = %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	tx, _ = s.Begin(ctx)
	p.UPC = "UPC2"
	if err := tx.SaveProduct(ctx, &p); err != nil {
		t.Fatalf("SaveProduct() error = %v", err)
	}
	r.PartnerSKU = "SKU-2"
	if err := tx.SaveStockRecord(ctx, &r); err != nil {
		t.Fatalf("SaveStockRecord() error = %v", err)
	}
	if _, err := tx.GetProductByUPC(ctx, "UPC1"); !errors.Is(err, catalogue.ErrNotFound) {
		t.Errorf("GetProductByUPC(old) error = %v, want ErrNotFound", err)
	}
	if got, err := tx.GetProductByUPC(ctx, "UPC2"); err != nil || got.ID != p.ID {
		t.Errorf("GetProductByUPC(new) = %v, %v; want %v", got.ID, err, p.ID)
	}
	if _, err := tx.GetStockRecordBySKU(ctx, "SKU-1"); !errors.Is(err, catalogue.ErrNotFound) {
		t.Errorf("GetStockRecordBySKU(old) error = %v, want ErrNotFound", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	if _, ok := s.Product("UPC1"); !ok {
		t.Error("Product(UPC1) missing after rollback")
	}
	if _, ok := s.Product("UPC2"); ok {
		t.Error("Product(UPC2) visible after rollback")
	}
	if rec, ok := s.StockRecord("SKU-1"); !ok || rec.ID != r.ID {
		t.Errorf("StockRecord(SKU-1) = %v, %v; want %v", rec.ID, ok, r.ID)
	}

	if err := s.FlushCatalogue(ctx); err != nil {
		t.Fatalf("FlushCatalogue() error = %v", err)
	}
	if _, ok := s.Product("UPC1"); ok {
		t.Error("Product(UPC1) visible after flush")
	}
	if _, ok := s.StockRecord("SKU-1"); ok {
		t.Error("StockRecord(SKU-1) visible after flush")
	}
}

func TestTx_AttributeLookup(t *testing.T) {
	ctx := context.Background()
	s := New()
	tx, _ := s.Begin(ctx)
	defer tx.Rollback(ctx)

	shirts, _ := tx.GetOrCreateProductClass(ctx, "shirts")
	shoes, _ := tx.GetOrCreateProductClass(ctx, "shoes")

	first := catalogue.AttributeDefinition{ID: uuid.New(), ClassID: shirts.ID, Name: "size", Code: "size", Type: catalogue.AttributeText}
	second := catalogue.AttributeDefinition{ID: uuid.New(), ClassID: shoes.ID, Name: "size", Code: "size", Type: catalogue.AttributeText}
	for _, a := range []*catalogue.AttributeDefinition{&first, &second} {
		if err := tx.CreateAttribute(ctx, a); err != nil {
			t.Fatalf("CreateAttribute() error = %v", err)
		}
	}

	got, err := tx.GetAttributeByName(ctx, "size")
	if err != nil || got.ID != first.ID {
		t.Errorf("GetAttributeByName() = %v, %v; want first definition", got.ID, err)
	}
	got, err = tx.GetClassAttribute(ctx, shoes.ID, "size")
	if err != nil || got.ID != second.ID {
		t.Errorf("GetClassAttribute() = %v, %v; want second definition", got.ID, err)
	}
	if _, err := tx.GetClassAttribute(ctx, shoes.ID, "color"); !errors.Is(err, catalogue.ErrNotFound) {
		t.Errorf("GetClassAttribute() error = %v, want ErrNotFound", err)
	}
}

func TestFlushCatalogue(t *testing.T) {
	ctx := context.Background()
	s := New()

	tx, _ := s.Begin(ctx)
	p := seedProduct(t, ctx, tx, "UPC1")
	if _, err := catalogue.ResolveBreadcrumbs(ctx, tx, "Clothing > Shirts", ">"); err != nil {
		t.Fatalf("ResolveBreadcrumbs() error = %v", err)
	}
	partner, _ := tx.GetOrCreatePartner(ctx, "Acme")
	r := catalogue.StockRecord{ID: uuid.New(), ProductID: p.ID, PartnerID: partner.ID, PartnerSKU: "SKU", NumInStock: "3"}
	if err := tx.SaveStockRecord(ctx, &r); err != nil {
		t.Fatalf("SaveStockRecord() error = %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if err := s.FlushCatalogue(ctx); err != nil {
		t.Fatalf("FlushCatalogue() error = %v", err)
	}

	got := s.Counts()
	if got.Products != 0 || got.ProductClasses != 0 || got.Partners != 0 || got.StockRecords != 0 {
		t.Errorf("Counts() after flush = %+v, want no products, classes, partners or stock", got)
	}
	if got.Categories != 2 {
		t.Errorf("Categories after flush = %d, want 2", got.Categories)
	}
}

func TestProductCategoryPath(t *testing.T) {
	ctx := context.Background()
	s := New()

	tx, _ := s.Begin(ctx)
	p := seedProduct(t, ctx, tx, "UPC1")
	leaf, err := catalogue.ResolveBreadcrumbs(ctx, tx, "Clothing>Shirts>Formal", ">")
	if err != nil {
		t.Fatalf("ResolveBreadcrumbs() error = %v", err)
	}
	if err := tx.SetProductCategory(ctx, p.ID, leaf.ID); err != nil {
		t.Fatalf("SetProductCategory() error = %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	path, ok := s.ProductCategoryPath(p)
	if !ok || path != "Clothing > Shirts > Formal" {
		t.Errorf("ProductCategoryPath() = %q, %v; want %q", path, ok, "Clothing > Shirts > Formal")
	}
}
