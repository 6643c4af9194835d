package gate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nostalgicskinco/plan-budget-gate/pkg/report"
)

const alertTimeout = 10 * time.Second

// slackMessage is the payload format for Slack incoming webhooks.
type slackMessage struct {
	Text string `json:"text"`
}

// SendAlert posts an over-budget narrative for r to a Slack-compatible
// webhook. It is a no-op for an empty URL.
func SendAlert(ctx context.Context, client *http.Client, webhookURL string, r report.Report) error {
	if webhookURL == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: alertTimeout}
	}

	payload, err := json.Marshal(slackMessage{Text: buildNarrative(r)})
	if err != nil {
		return fmt.Errorf("gate: alert marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, alertTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("gate: alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("gate: alert send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("gate: alert webhook returned %d", resp.StatusCode)
	}
	return nil
}

// buildNarrative renders a human-readable summary of an over-budget plan.
func buildNarrative(r report.Report) string {
	var b strings.Builder
	d := r.Decision

	b.WriteString("*PLAN OVER BUDGET*\n\n")
	fmt.Fprintf(&b, "*Plan:* %s\n", r.PlanTitle)
	fmt.Fprintf(&b, "*Run:* %s\n", r.RunID)
	fmt.Fprintf(&b, "*Time:* %s\n\n", r.Timestamp.UTC().Format(time.RFC3339))

	fmt.Fprintf(&b, "Estimated %d points against a daily budget of %d (weekly %d).\n",
		d.EstimatedPoints, d.BudgetDay, d.BudgetWeek)
	fmt.Fprintf(&b, "%d of %d steps use weighted actions.\n\n", r.Estimate.WeightedSteps, r.Estimate.Steps)

	if r.DegradedEstimate != nil {
		fits := "still over budget"
		if r.DegradedFits {
			fits = "fits the daily budget"
		}
		fmt.Fprintf(&b, "*Degraded plan:* %d points, %s.\n", r.DegradedEstimate.EstimatedPoints, fits)
	}

	b.WriteString("*Recommended:* " + string(d.Recommendation))
	return b.String()
}
