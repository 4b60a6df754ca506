package reporter

import (
	"bytes"
	"encoding/json"
	"testing"
)

type sarifDoc struct {
	Version string `json:"version"`
	Runs    []struct {
		Tool struct {
			Driver struct {
				Name    string `json:"name"`
				Version string `json:"version"`
				Rules   []struct {
					ID string `json:"id"`
				} `json:"rules"`
			} `json:"driver"`
		} `json:"tool"`
		Results []struct {
			RuleID  string `json:"ruleId"`
			Level   string `json:"level"`
			Message struct {
				Text string `json:"text"`
			} `json:"message"`
			Locations []struct {
				PhysicalLocation struct {
					ArtifactLocation struct {
						URI string `json:"uri"`
					} `json:"artifactLocation"`
					Region struct {
						StartLine int `json:"startLine"`
						EndLine   int `json:"endLine"`
					} `json:"region"`
				} `json:"physicalLocation"`
			} `json:"locations"`
		} `json:"results"`
	} `json:"runs"`
}

func TestWriteSARIF_ValidStructure(t *testing.T) {
	r := NewReport("scan", "0.3.0", "", scanned(t))
	var buf bytes.Buffer
	if err := Write(&buf, &r, FormatSARIF); err != nil {
		t.Fatal(err)
	}

	var doc sarifDoc
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid SARIF JSON: %v\n%s", err, buf.String())
	}
	if doc.Version != "2.1.0" {
		t.Errorf("version = %q, want 2.1.0", doc.Version)
	}
	if len(doc.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(doc.Runs))
	}

	run := doc.Runs[0]
	if run.Tool.Driver.Name != "tablespectre" || run.Tool.Driver.Version != "0.3.0" {
		t.Errorf("driver = %+v", run.Tool.Driver)
	}
	if len(run.Tool.Driver.Rules) != 1 || run.Tool.Driver.Rules[0].ID != "tablespectre/MM_ObsoleteTable" {
		t.Errorf("rules = %+v", run.Tool.Driver.Rules)
	}
	if len(run.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(run.Results))
	}

	r0 := run.Results[0]
	if r0.RuleID != "tablespectre/MM_ObsoleteTable" || r0.Level != "error" {
		t.Errorf("result = %+v", r0)
	}
	if len(r0.Locations) != 1 {
		t.Fatalf("locations = %d", len(r0.Locations))
	}
	loc := r0.Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "ZSTOCK/ZSTOCK_F01" {
		t.Errorf("uri = %q", loc.ArtifactLocation.URI)
	}
	if loc.Region.StartLine != 1 || loc.Region.EndLine != 1 {
		t.Errorf("region = %+v", loc.Region)
	}

	last := run.Results[2].Locations[0].PhysicalLocation
	if last.ArtifactLocation.URI != "ZGR/ZGR_MAIN" || last.Region.StartLine != 3 {
		t.Errorf("last location = %+v", last)
	}
}

func TestWriteSARIF_NoFindings(t *testing.T) {
	r := NewReport("scan", "", "", nil)
	var buf bytes.Buffer
	if err := Write(&buf, &r, FormatSARIF); err != nil {
		t.Fatal(err)
	}

	var doc sarifDoc
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid SARIF JSON: %v", err)
	}
	if len(doc.Runs) != 1 || len(doc.Runs[0].Results) != 0 {
		t.Errorf("expected one run with no results, got %+v", doc.Runs)
	}
}

func TestWriteSARIF_SourcePath(t *testing.T) {
	units := scanned(t)
	units[0].Source = "src/zstock/zstock_f01.prog.abap"

	r := NewReport("scan", "", "", units)
	var buf bytes.Buffer
	if err := Write(&buf, &r, FormatSARIF); err != nil {
		t.Fatal(err)
	}

	var doc sarifDoc
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid SARIF JSON: %v", err)
	}
	results := doc.Runs[0].Results
	if got := results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI; got != "src/zstock/zstock_f01.prog.abap" {
		t.Errorf("uri = %q, want the source path", got)
	}
	if got := results[2].Locations[0].PhysicalLocation.ArtifactLocation.URI; got != "ZGR/ZGR_MAIN" {
		t.Errorf("uri without source = %q", got)
	}
}
