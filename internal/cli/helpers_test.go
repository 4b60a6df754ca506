package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command in an isolated working directory and home.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TABLESPECTRE_DB_URL", "")
	t.Setenv("NO_COLOR", "1")

	cmd := newRootCmd(BuildInfo{Version: "test", Commit: "abc123", Date: "2026-01-01"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// sampleRepo writes a small abapGit-style tree with two dirty includes.
func sampleRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "zstock/zstock_f01.prog.abap", "SELECT * FROM mseg INTO TABLE @DATA(lt).\nUPDATE MARD SET labst = 0.\n")
	writeTestFile(t, dir, "zstock/zstock_top.prog.abap", "DATA gv_count TYPE i.\n")
	writeTestFile(t, dir, "zgr/zgr_main.prog.abap", "\n\nSELECT SINGLE * FROM marc INTO @DATA(ls).\n")
	writeTestFile(t, dir, "README.md", "MSEG is mentioned here but not scanned")
	return dir
}
