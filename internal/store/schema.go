package store

// schemaSQL creates the findings store tables. Safe to run repeatedly.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS scan_runs (
	id UUID PRIMARY KEY,
	source TEXT NOT NULL,
	target TEXT NOT NULL DEFAULT '',
	tool_version TEXT NOT NULL DEFAULT '',
	started_at TIMESTAMPTZ NOT NULL,
	units INTEGER NOT NULL,
	findings INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS scan_findings (
	id BIGSERIAL PRIMARY KEY,
	run_id UUID NOT NULL REFERENCES scan_runs(id) ON DELETE CASCADE,
	program TEXT NOT NULL,
	include_name TEXT NOT NULL,
	unit_type TEXT NOT NULL,
	block TEXT NOT NULL,
	start_line INTEGER NOT NULL,
	end_line INTEGER NOT NULL,
	obsolete_table TEXT NOT NULL,
	replacement TEXT NOT NULL,
	issue_type TEXT NOT NULL,
	severity TEXT NOT NULL,
	message TEXT NOT NULL,
	snippet TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scan_findings_run ON scan_findings (run_id);
CREATE INDEX IF NOT EXISTS idx_scan_findings_table ON scan_findings (obsolete_table);
`

var findingColumns = []string{
	"run_id", "program", "include_name", "unit_type", "block",
	"start_line", "end_line", "obsolete_table", "replacement",
	"issue_type", "severity", "message", "snippet",
}
