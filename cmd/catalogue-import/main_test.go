package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv keeps the host environment out of config loading.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"DATABASE_URL", "DB_URL", "IMPORT_DELIMITER", "IMPORT_FLUSH",
		"IMPORT_SCOPE_ATTRIBUTES_BY_CLASS", "IMPORT_BREADCRUMB_SEPARATOR",
		"IMPORT_DRY_RUN", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(name, "")
	}
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalogue.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestRun_DryRun(t *testing.T) {
	clearEnv(t)
	path := writeCSV(t, "class,category,upc,title,description,color,size\n"+
		"shirts,Clothing > Shirts,UPC1,Shirt,NULL,red,M\n"+
		"shirts,Clothing > Shirts,UPC2,Shirt,NULL,blue\n")

	stdout, stderr, err := execute(t, "--dry-run", path)
	if err != nil {
		t.Fatalf("Execute() error = %v\nstderr: %s", err, stderr)
	}
	for _, want := range []string{"New items:      1", "Skipped rows:   1", "dry run"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
	if !strings.Contains(stderr, "New items: 1, updated items: 0") {
		t.Errorf("stderr missing summary log line:\n%s", stderr)
	}
}

func TestRun_DelimiterFlag(t *testing.T) {
	clearEnv(t)
	path := writeCSV(t, "class;category;upc;title;description;color;size\n"+
		"shirts;Clothing;UPC1;Shirt;NULL;red;M\n")

	stdout, stderr, err := execute(t, "--dry-run", "--delimiter", ";", path)
	if err != nil {
		t.Fatalf("Execute() error = %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "New items:      1") {
		t.Errorf("stdout = %q, want one new item", stdout)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"no path", []string{"--dry-run"}, "IMP001"},
		{"missing file", []string{"--dry-run", filepath.Join(os.TempDir(), "does-not-exist.csv")}, "IMP002"},
		{"directory", []string{"--dry-run", os.TempDir()}, "IMP003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, stderr, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("Execute() error = nil, want failure")
			}
			if !strings.Contains(stderr, "Code: "+tt.wantCode) {
				t.Errorf("stderr = %q, want code %s", stderr, tt.wantCode)
			}
		})
	}
}

func TestRun_RequiresDatabaseURL(t *testing.T) {
	clearEnv(t)
	path := writeCSV(t, "class,category,upc,title,description,color,size\n")

	_, stderr, err := execute(t, path)
	if err == nil {
		t.Fatal("Execute() error = nil, want config error")
	}
	if !strings.Contains(stderr, "DATABASE_URL") {
		t.Errorf("stderr = %q, want DATABASE_URL mention", stderr)
	}
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("IMPORT_DELIMITER", "|")
	t.Setenv("IMPORT_FLUSH", "true")
	t.Setenv("IMPORT_DRY_RUN", "true")

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--delimiter", ";", "--scope-attributes"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	var flags cliFlags
	flags.delimiter, _ = cmd.Flags().GetString("delimiter")
	flags.scopeAttributes, _ = cmd.Flags().GetBool("scope-attributes")

	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Import.Delimiter != ";" {
		t.Errorf("Delimiter = %q, want %q", cfg.Import.Delimiter, ";")
	}
	if !cfg.Import.ScopeAttributesByClass {
		t.Error("ScopeAttributesByClass = false, want true")
	}
	if !cfg.Import.Flush {
		t.Error("Flush = false, want env value true kept")
	}
}
