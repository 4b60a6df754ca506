package store

import (
	"time"

	"github.com/google/uuid"
)

// Run describes one scan invocation persisted in scan_runs.
type Run struct {
	ID          uuid.UUID `json:"id"`
	Source      string    `json:"source"`
	Target      string    `json:"target,omitempty"`
	ToolVersion string    `json:"toolVersion,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	Units       int       `json:"units"`
	Findings    int       `json:"findings"`
}
