package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ppiankov/tablespectre/internal/tables"
)

func TestTablesCmd_Text(t *testing.T) {
	out, err := run(t, "tables")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"core_document (2):\n",
		"  MKPF     -> MATDOC\n",
		"  MARD     -> NSDM_V_MARD\n",
		"22 obsolete tables\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTablesCmd_JSON(t *testing.T) {
	out, err := run(t, "tables", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var entries []tables.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(entries) != tables.Default().Len() {
		t.Errorf("entries = %d, want %d", len(entries), tables.Default().Len())
	}
}

func TestTablesCmd_BadFormat(t *testing.T) {
	if _, err := run(t, "tables", "--format", "sarif"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
