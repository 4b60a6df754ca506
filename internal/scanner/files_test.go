package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zmm_stock/zmm_stock.prog.abap", "REPORT zmm_stock.\nSELECT * FROM mard.")
	writeFile(t, dir, "zmm_stock/zmm_stock_f01.abap", "FORM x.\nENDFORM.")
	writeFile(t, dir, "zloose.txt", "SELECT * FROM mseg.")
	writeFile(t, dir, "README.md", "# docs")
	writeFile(t, dir, "vendor/zvendored.abap", "SELECT * FROM mkpf.")
	writeFile(t, dir, ".git/config.abap", "x")

	res, err := LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if res.FilesLoaded != 3 {
		t.Errorf("FilesLoaded = %d, want 3", res.FilesLoaded)
	}
	if res.FilesSkipped != 1 {
		t.Errorf("FilesSkipped = %d, want 1", res.FilesSkipped)
	}

	bySource := make(map[string]CodeUnit)
	for _, u := range res.Units {
		bySource[u.Source] = u
	}

	u, ok := bySource["zmm_stock/zmm_stock.prog.abap"]
	if !ok {
		t.Fatalf("missing unit, got %v", keys(bySource))
	}
	if u.Program != "ZMM_STOCK" || u.Include != "ZMM_STOCK" || u.Type != "PROG" {
		t.Errorf("unit = %+v", u)
	}
	if !strings.Contains(u.Code, "mard") {
		t.Errorf("code = %q", u.Code)
	}

	u = bySource["zmm_stock/zmm_stock_f01.abap"]
	if u.Program != "ZMM_STOCK" || u.Include != "ZMM_STOCK_F01" || u.Type != "ABAP" {
		t.Errorf("unit = %+v", u)
	}

	u = bySource["zloose.txt"]
	if u.Program != "ZLOOSE" || u.Include != "ZLOOSE" || u.Type != "TXT" {
		t.Errorf("unit = %+v", u)
	}
}

func TestLoadDir_ExtraExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.inc", "x")
	writeFile(t, dir, "b.sqlx", "y")

	res, err := LoadDir(dir, "inc", ".SQLX", " ")
	if err != nil {
		t.Fatal(err)
	}
	if res.FilesLoaded != 2 || res.FilesSkipped != 0 {
		t.Errorf("loaded=%d skipped=%d", res.FilesLoaded, res.FilesSkipped)
	}
}

func TestLoadDir_RelativeRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/zgr/zgr_main.prog.abap", "SELECT * FROM mkpf.")
	t.Chdir(dir)

	res, err := LoadDir("src")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Units) != 1 || res.Units[0].Source != "zgr/zgr_main.prog.abap" {
		t.Errorf("units = %+v", res.Units)
	}
}

func TestLoadDir_Missing(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing dir")
	}
}

func TestLoadUnitsJSON(t *testing.T) {
	units, err := LoadUnitsJSON(strings.NewReader(`[
		{"pgm_name": "ZP", "inc_name": "ZI", "type": "PROG", "name": "BLK", "code": "SELECT * FROM mseg."},
		{"pgm_name": "ZQ", "inc_name": "ZQ", "type": "FUNC", "code": null}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 2 {
		t.Fatalf("units = %d", len(units))
	}
	if units[0].Block != "BLK" || units[0].Code != "SELECT * FROM mseg." {
		t.Errorf("unit 0 = %+v", units[0])
	}
	if units[1].Code != "" {
		t.Errorf("null code should decode as empty, got %q", units[1].Code)
	}

	units, err = LoadUnitsJSON(strings.NewReader(` {"pgm_name": "ZP", "inc_name": "ZI", "type": "PROG"}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 1 || units[0].Program != "ZP" {
		t.Errorf("units = %+v", units)
	}
}

func TestLoadUnitsJSON_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "[", "{", `"text"`} {
		if _, err := LoadUnitsJSON(strings.NewReader(in)); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func keys(m map[string]CodeUnit) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
