// Package importer loads product catalogue data from delimited text files.
//
// An import runs in four steps:
//
//  1. The file is validated (exists, regular file, readable).
//  2. With Flush set, existing catalogue data is deleted. The flush commits
//     on its own and is not undone if the import later fails.
//  3. The header is read; columns from index 5 on name the attributes.
//  4. Every data row is parsed and reconciled inside one transaction. Rows of
//     unsupported width are logged and skipped; any other failure rolls back
//     the whole file.
//
// # Row Layout
//
//	product_class, category_breadcrumb, upc, title, description, attr_1..attr_k
//
// Rows are exactly 7, 54 or 55 fields wide. A 55-wide row ends with
// partner_name, partner_sku, price, quantity and also upserts a stock record.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/catalogue-import/internal/catalogue"
	"github.com/JonMunkholm/catalogue-import/internal/logging"
	"github.com/google/uuid"
)

// ContextCheckInterval is how often (in rows) to check for context cancellation.
var ContextCheckInterval = 100

// ProgressInterval is how often (in rows) to log progress at debug level.
var ProgressInterval = 1000

// Options configure an Importer.
type Options struct {
	// Delimiter is the field delimiter (default ',').
	Delimiter rune

	// Flush deletes existing catalogue data before importing.
	Flush bool

	// ScopeAttributesByClass resolves attribute definitions by (class, name)
	// instead of by name alone.
	ScopeAttributesByClass bool

	// BreadcrumbSeparator separates category names (default ">").
	BreadcrumbSeparator string
}

// Summary describes a committed import.
type Summary struct {
	RunID        uuid.UUID
	NewItems     int
	UpdatedItems int
	Skipped      int // Non-blank rows of unsupported width
	Duration     time.Duration
}

// Importer drives file imports against a catalogue store.
type Importer struct {
	store      catalogue.Store
	opts       Options
	reconciler Reconciler
}

// New creates an Importer.
func New(store catalogue.Store, opts Options) *Importer {
	if opts.Delimiter == 0 {
		opts.Delimiter = defaultComma
	}
	return &Importer{
		store: store,
		opts:  opts,
		reconciler: Reconciler{
			ScopeAttributesByClass: opts.ScopeAttributesByClass,
			BreadcrumbSeparator:    opts.BreadcrumbSeparator,
		},
	}
}

// Run imports the file at path. Nothing from the file is persisted unless
// Run returns a nil error.
func (im *Importer) Run(ctx context.Context, path string) (Summary, error) {
	if path == "" {
		return Summary{}, &ImportError{Kind: KindNoPath}
	}
	if err := Validate(path); err != nil {
		return Summary{}, err
	}

	runID := uuid.New()
	ctx = logging.WithRun(ctx, runID.String())
	logger := logging.FromContext(ctx)

	if im.opts.Flush {
		logger.Info(" - Flushing product data before import")
		if err := im.store.FlushCatalogue(ctx); err != nil {
			return Summary{}, fmt.Errorf("flush catalogue: %w", err)
		}
	}

	started := time.Now()
	summary, err := im.importFile(ctx, path, runID, started)
	if err != nil {
		logger.Error("import rolled back", "file", path, "error", err)
		return Summary{}, err
	}
	summary.Duration = time.Since(started)

	logger.Info(fmt.Sprintf("New items: %d, updated items: %d", summary.NewItems, summary.UpdatedItems),
		"skipped", summary.Skipped,
		"duration", summary.Duration.Round(time.Millisecond),
	)
	return summary, nil
}

func (im *Importer) importFile(ctx context.Context, path string, runID uuid.UUID, started time.Time) (Summary, error) {
	logger := logging.WithFields(ctx, "file", filepath.Base(path))
	summary := Summary{RunID: runID}

	f, err := os.Open(path)
	if err != nil {
		return summary, &ImportError{Kind: KindNotReadable, Path: path, Err: err}
	}
	defer f.Close()

	tx, err := im.store.Begin(ctx)
	if err != nil {
		return summary, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op once committed

	rr := NewRecordReader(f)
	rr.Comma = im.opts.Delimiter

	header, err := rr.Read()
	if errors.Is(err, io.EOF) {
		return summary, &ImportError{Kind: KindEmptyFile, Path: path}
	}
	if err != nil {
		return summary, fmt.Errorf("read header: %w", err)
	}
	attrNames := HeaderAttributes(header)
	logger.Debug("header read", "attributes", len(attrNames))

	rowNumber := 0
	for {
		record, err := rr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("read row %d: %w", rowNumber+1, err)
		}
		rowNumber++

		if rowNumber%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return summary, fmt.Errorf("import cancelled at row %d: %w", rowNumber, err)
			}
		}
		if rowNumber%ProgressInterval == 0 {
			logger.Debug("import progress", "rows", rowNumber, "new", summary.NewItems, "updated", summary.UpdatedItems)
		}

		// Blank lines are reported like other bad widths but not counted.
		if len(record) == 0 {
			logInvalidWidth(ctx, rowNumber, 0)
			continue
		}

		if err := im.importRow(ctx, tx, attrNames, rowNumber, record, &summary); err != nil {
			return summary, fmt.Errorf("row %d: %w", rowNumber, err)
		}
	}

	err = tx.InsertImportRun(ctx, catalogue.ImportRun{
		ID:           runID,
		FileName:     filepath.Base(path),
		NewItems:     summary.NewItems,
		UpdatedItems: summary.UpdatedItems,
		SkippedRows:  summary.Skipped,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	})
	if err != nil {
		return summary, fmt.Errorf("record import run: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return summary, fmt.Errorf("commit: %w", err)
	}
	return summary, nil
}

func (im *Importer) importRow(ctx context.Context, tx catalogue.Tx, attrNames []string, rowNumber int, record []string, summary *Summary) error {
	row, err := ParseRow(attrNames, record)
	if errors.Is(err, ErrInvalidFieldCount) {
		logInvalidWidth(ctx, rowNumber, len(record))
		summary.Skipped++
		return nil
	}
	if err != nil {
		return err
	}

	product, created, err := im.reconciler.UpsertProduct(ctx, tx, row)
	if err != nil {
		return err
	}
	if created {
		summary.NewItems++
	} else {
		summary.UpdatedItems++
	}

	if row.Stock != nil {
		if err := im.reconciler.UpsertStock(ctx, tx, product, *row.Stock); err != nil {
			return err
		}
	}
	return nil
}

func logInvalidWidth(ctx context.Context, rowNumber, fields int) {
	logging.FromContext(ctx).Error(
		fmt.Sprintf("Row number %d has an invalid number of fields (%d), skipping...", rowNumber, fields))
}
