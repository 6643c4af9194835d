package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nostalgicskinco/plan-budget-gate/testdata"
)

func writePlan(t *testing.T, fix testdata.Fixture) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), fix.Name+".json")
	if err := os.WriteFile(path, []byte(fix.PlanJSON), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, env map[string]string, args ...string) (int, map[string]interface{}) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, func(k string) string { return env[k] })

	var out map[string]interface{}
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("stdout is not a JSON object: %q (%v)", stdout.String(), err)
	}
	return code, out
}

func TestCheckDefaultBudget(t *testing.T) {
	code, out := runCLI(t, nil, "check", writePlan(t, testdata.ReferencePlan()))
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %v", code, out)
	}

	want := map[string]interface{}{
		"within_budget":    true,
		"estimated_points": float64(7),
		"budget_day":       float64(50),
		"budget_week":      float64(200),
		"recommendation":   "proceed",
	}
	if len(out) != len(want) {
		t.Fatalf("expected exactly %d fields, got %v", len(want), out)
	}
	for k, v := range want {
		if out[k] != v {
			t.Fatalf("%s: expected %v, got %v", k, v, out[k])
		}
	}
}

func TestCheckEnvBudget(t *testing.T) {
	env := map[string]string{"BUDGET_DAY": "5", "BUDGET_WEEK": "20"}
	code, out := runCLI(t, env, "check", writePlan(t, testdata.ReferencePlan()))
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if out["within_budget"] != false || out["recommendation"] != "degrade" || out["budget_week"] != float64(20) {
		t.Fatalf("unexpected decision %v", out)
	}
}

func TestEstimate(t *testing.T) {
	_, out := runCLI(t, nil, "estimate", writePlan(t, testdata.ManusHeavy()))
	if out["steps"] != float64(4) || out["weighted_steps"] != float64(3) || out["estimated_points"] != float64(11) {
		t.Fatalf("unexpected estimate %v", out)
	}
}

func TestDegrade(t *testing.T) {
	code, out := runCLI(t, nil, "degrade", writePlan(t, testdata.ReferencePlan()))
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	steps := out["steps"].([]interface{})
	s2 := steps[1].(map[string]interface{})
	if s2["id"] != "s2_degraded" || s2["action"] != "line.reply" {
		t.Fatalf("unexpected degraded step %v", s2)
	}
	if p := s2["payload"].(map[string]interface{}); len(p) != 0 {
		t.Fatalf("expected empty payload, got %v", p)
	}
}

func TestRunWritesReport(t *testing.T) {
	dir := t.TempDir()
	env := map[string]string{"BUDGET_DAY": "5", "REPORT_SECRET": "k"}
	code, out := runCLI(t, env, "-reports", dir, "run", writePlan(t, testdata.ReferencePlan()))
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %v", code, out)
	}
	runID, _ := out["run_id"].(string)
	if att, _ := out["attestation"].(string); runID == "" || att == "" {
		t.Fatalf("expected run id and attestation, got %v", out)
	}
	if _, err := os.Stat(filepath.Join(dir, runID+".budget.json")); err != nil {
		t.Fatalf("report not written: %v", err)
	}
}

func TestValidate(t *testing.T) {
	good := writePlan(t, testdata.ReferencePlan())
	code, out := runCLI(t, nil, "validate", good, writePlan(t, testdata.ManusHeavy()))
	if code != 0 || out["valid"] != true || out["files"] != float64(2) {
		t.Fatalf("expected valid, got %d %v", code, out)
	}

	bad := writePlan(t, testdata.MalformedSteps())
	code, out = runCLI(t, nil, "validate", good, bad)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if msg, _ := out["error"].(string); !strings.Contains(msg, bad) {
		t.Fatalf("expected error naming %s, got %v", bad, out)
	}
}

func TestErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.json")
	unparseable := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(unparseable, []byte("{"), 0644)

	cases := []struct {
		name string
		env  map[string]string
		args []string
		want string
	}{
		{"no args", nil, nil, "plan file path required"},
		{"missing plan", nil, []string{"check", missing}, "plan not found at " + missing},
		{"bad json", nil, []string{"check", unparseable}, "plan: parse"},
		{"bad budget", map[string]string{"BUDGET_DAY": "x"}, []string{"check", missing}, "not an integer"},
		{"unknown command", nil, []string{"spend", writePlan(t, testdata.EmptyPlan())}, "unknown command"},
	}
	for _, tc := range cases {
		code, out := runCLI(t, tc.env, tc.args...)
		if code != 1 {
			t.Fatalf("%s: expected exit 1, got %d", tc.name, code)
		}
		if msg, _ := out["error"].(string); !strings.Contains(msg, tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, out)
		}
	}
}
