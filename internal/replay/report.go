package replay

import (
	json "github.com/goccy/go-json"

	"github.com/quantfold/shadowbench/internal/persistence"
)

// StreamResult aggregates one stream's fill statistics.
type StreamResult struct {
	Events           int     `json:"events"`
	Fills            int     `json:"fills"`
	Partials         int     `json:"partials"`
	FillRate         float64 `json:"fill_rate"`
	PartialFillRatio float64 `json:"partial_fill_ratio"`
	SlipCost         float64 `json:"slip_cost"`
	EventsPerSec     float64 `json:"events_per_sec"`
}

// Report is the comparative outcome of one A/B replay run.
type Report struct {
	RunID   string                      `json:"run_id"`
	StratID string                      `json:"strat_id"`
	A       StreamResult                `json:"A"`
	B       StreamResult                `json:"B"`
	Writer  persistence.MetricsSnapshot `json:"repo_metrics"`
}

// Render serialises the report as indented JSON for the CLI.
func (r Report) Render() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
