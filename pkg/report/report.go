// Package report writes budget reports: one JSON file per evaluated plan,
// recording the decision and, when the plan was over budget, the degraded
// plan proposed in its place.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nostalgicskinco/plan-budget-gate/pkg/cost"
	"github.com/nostalgicskinco/plan-budget-gate/pkg/plan"
)

// Version of the report file format.
const Version = "1.0.0"

// Report is the outcome of evaluating one plan.
type Report struct {
	Version   string        `json:"version"`
	RunID     string        `json:"run_id"`
	Timestamp time.Time     `json:"timestamp"`
	PlanID    string        `json:"plan_id,omitempty"`
	PlanTitle string        `json:"plan_title"`
	Decision  cost.Decision `json:"decision"`
	Estimate  cost.Estimate `json:"estimate"`

	// Set only when the decision is "degrade".
	Degraded         *plan.Plan     `json:"degraded_plan,omitempty"`
	DegradedEstimate *cost.Estimate `json:"degraded_estimate,omitempty"`
	DegradedFits     bool           `json:"degraded_fits,omitempty"`

	VaultRef    string `json:"vault_ref,omitempty"`
	Attestation string `json:"attestation,omitempty"`
}

// Writer writes reports to a directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer that saves reports to dir.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("report: create dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Path returns where a report with the given run id is written.
func (w *Writer) Path(runID string) string {
	return filepath.Join(w.dir, runID+".budget.json")
}

// Write persists r as <run_id>.budget.json.
func (w *Writer) Write(r Report) error {
	if r.Version == "" {
		r.Version = Version
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}

	path := w.Path(r.RunID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}

// Load reads a report from a file path.
func Load(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("report: read %s: %w", path, err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("report: parse %s: %w", path, err)
	}
	return r, nil
}
