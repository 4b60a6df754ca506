package cli

import (
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "tablespectre test (commit abc123, built 2026-01-01)\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRoot_BadConfigFile(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "cfg.yml", "server: [")
	_, err := run(t, "--config", path, "version")
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestRoot_MissingConfigFile(t *testing.T) {
	_, err := run(t, "--config", "/nonexistent/cfg.yml", "version")
	if err == nil {
		t.Fatal("expected error for explicit missing config")
	}
}

func TestRoot_BadTablesFile(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "tables.yml", "groups:\n  - name: custom\n    tables:\n      BAD-NAME: X\n")
	_, err := run(t, "--tables", path, "tables")
	if err == nil || !strings.Contains(err.Error(), "invalid table name") {
		t.Fatalf("expected table map error, got %v", err)
	}
}

func TestRoot_TablesFileFromConfig(t *testing.T) {
	dir := t.TempDir()
	tablesFile := writeTestFile(t, dir, "tables.yml", "groups:\n  - name: custom\n    tables:\n      ZOLD: ZNEW\n")
	cfgFile := writeTestFile(t, dir, "cfg.yml", "tables_file: "+tablesFile+"\n")

	out, err := run(t, "--config", cfgFile, "tables")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "ZOLD") || strings.Contains(out, "MSEG") {
		t.Errorf("expected only the configured table map:\n%s", out)
	}
}

func TestRoot_TablesFileFromEnv(t *testing.T) {
	tablesFile := writeTestFile(t, t.TempDir(), "tables.yml", "extend: true\ngroups:\n  - name: custom\n    tables:\n      ZOLD: ZNEW\n")
	t.Setenv("TABLESPECTRE_TABLES_FILE", tablesFile)

	out, err := run(t, "tables")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "ZOLD") || !strings.Contains(out, "MSEG") {
		t.Errorf("extended map should keep built-in tables:\n%s", out)
	}
}
