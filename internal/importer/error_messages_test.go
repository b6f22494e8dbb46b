package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"no path", &ImportError{Kind: KindNoPath}, "IMP001"},
		{"missing file", &ImportError{Kind: KindFileNotFound, Path: "a.csv"}, "IMP002"},
		{"not a file", &ImportError{Kind: KindNotAFile, Path: "dir"}, "IMP003"},
		{"not readable", &ImportError{Kind: KindNotReadable, Path: "a.csv"}, "IMP004"},
		{"wrapped invalid price", fmt.Errorf("row 4: %w", &ImportError{Kind: KindInvalidPrice, Value: "x"}), "IMP005"},
		{"empty file", &ImportError{Kind: KindEmptyFile, Path: "a.csv"}, "IMP006"},
		{"pg unique violation", fmt.Errorf("save product: %w", &pgconn.PgError{Code: "23505"}), "DB001"},
		{"pg value too long", &pgconn.PgError{Code: "22001"}, "DB008"},
		{"pg invalid integer", &pgconn.PgError{Code: "22P02"}, "VAL002"},
		{"pg check violation", &pgconn.PgError{Code: "23514"}, "DB009"},
		{"connection refused text", errors.New("dial tcp 127.0.0.1:5432: connection refused"), "DB004"},
		{"cancelled", fmt.Errorf("begin transaction: %w", context.Canceled), "RUN001"},
		{"deadline", fmt.Errorf("commit: %w", context.DeadlineExceeded), "RUN002"},
		{"store constraint text", errors.New(`row 3: save product "x": memstore: constraint violation: upc "x" longer than 64 characters`), "DB008"},
		{"store quantity text", errors.New(`num_in_stock "many" is not an integer`), "VAL002"},
		{"case insensitive", errors.New("DUPLICATE KEY value"), "DB001"},
		{"unknown", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err).Code; got != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(&ImportError{Kind: KindEmptyFile, Path: "a.csv"})
	want := "The file is empty (Code: IMP006). Export the catalogue again with a header row"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}
