// Package gate runs the budget check for the CLI: it loads plans, prices
// them with a cost model, proposes degraded plans, and records, signs,
// uploads and alerts on the outcome. Every step is traced with OTel.
package gate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nostalgicskinco/plan-budget-gate/pkg/cost"
	"github.com/nostalgicskinco/plan-budget-gate/pkg/plan"
	"github.com/nostalgicskinco/plan-budget-gate/pkg/report"
	"github.com/nostalgicskinco/plan-budget-gate/pkg/vault"
)

const tracerName = "github.com/nostalgicskinco/plan-budget-gate/pkg/gate"

// Store is the object storage the engine reads plans from and uploads
// reports to. *vault.Client implements it.
type Store interface {
	Store(ctx context.Context, key string, data []byte) (vault.Ref, error)
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// Options configures an Engine. Only Model is required.
type Options struct {
	Model      *cost.Model
	BudgetDay  int
	BudgetWeek int

	Writer     *report.Writer // nil disables report files
	Store      Store          // nil disables uploads and vault:// plans
	Secret     string         // empty disables attestation
	WebhookURL string         // empty disables alerts

	HTTPClient     *http.Client
	TracerProvider trace.TracerProvider
	Now            func() time.Time
}

// Engine evaluates plans against a fixed model and budget.
type Engine struct {
	opts   Options
	tracer trace.Tracer
}

// New creates an engine. A nil model means cost.DefaultModel.
func New(opts Options) *Engine {
	if opts.Model == nil {
		opts.Model = cost.DefaultModel()
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		opts:   opts,
		tracer: opts.TracerProvider.Tracer(tracerName),
	}
}

// NewFromConfig builds the model and report sinks described by cfg. The
// vault is best-effort: if it cannot be reached the engine runs without it.
func NewFromConfig(ctx context.Context, cfg *Config) (*Engine, error) {
	model, err := cost.NewModel(cfg.Costs)
	if err != nil {
		return nil, err
	}

	opts := Options{
		Model:      model,
		BudgetDay:  cfg.Budgets.Day,
		BudgetWeek: cfg.Budgets.Week,
		Secret:     cfg.Reports.Secret,
		WebhookURL: cfg.Alerts.WebhookURL,
	}

	if cfg.Reports.Dir != "" {
		w, err := report.NewWriter(cfg.Reports.Dir)
		if err != nil {
			return nil, err
		}
		opts.Writer = w
	}

	if cfg.Vault.Endpoint != "" {
		vc, err := vault.New(ctx, cfg.Vault)
		if err != nil {
			log.Printf("[gate] WARN: vault disabled: %v", err)
		} else {
			opts.Store = vc
			log.Printf("[gate] vault connected: %s", cfg.Vault.Endpoint)
		}
	}

	return New(opts), nil
}

// Model returns the engine's cost model.
func (e *Engine) Model() *cost.Model { return e.opts.Model }

// LoadPlan reads a plan from a file path or a vault:// URI.
func (e *Engine) LoadPlan(ctx context.Context, ref string) (plan.Plan, error) {
	data, err := e.ReadPlan(ctx, ref)
	if err != nil {
		return plan.Plan{}, err
	}
	return plan.Parse(data)
}

// ReadPlan returns the raw plan JSON behind ref.
func (e *Engine) ReadPlan(ctx context.Context, ref string) ([]byte, error) {
	if !vault.IsURI(ref) {
		return plan.ReadFile(ref)
	}
	if e.opts.Store == nil {
		return nil, fmt.Errorf("gate: %s: vault not configured", ref)
	}
	return e.opts.Store.Fetch(ctx, ref)
}

// Check prices p and decides whether it fits the daily budget.
func (e *Engine) Check(ctx context.Context, p plan.Plan) cost.Decision {
	_, span := e.tracer.Start(ctx, "budget.check", trace.WithAttributes(e.planAttrs(p)...))
	defer span.End()

	d := e.opts.Model.CheckBudget(p, e.opts.BudgetDay, e.opts.BudgetWeek)
	span.SetAttributes(
		attribute.Int("budget.estimated_points", d.EstimatedPoints),
		attribute.String("budget.recommendation", string(d.Recommendation)),
	)
	return d
}

// Estimate prices p without a budget decision.
func (e *Engine) Estimate(p plan.Plan) cost.Estimate {
	return e.opts.Model.Estimate(p)
}

// Degrade returns the degraded form of p.
func (e *Engine) Degrade(ctx context.Context, p plan.Plan) plan.Plan {
	_, span := e.tracer.Start(ctx, "budget.degrade", trace.WithAttributes(e.planAttrs(p)...))
	defer span.End()

	out := e.opts.Model.SuggestDegrade(p)
	before, after := e.opts.Model.EstimatePlanCost(p), e.opts.Model.EstimatePlanCost(out)
	span.SetAttributes(
		attribute.Int("budget.points_before", before),
		attribute.Int("budget.points_after", after),
	)
	return out
}

// Evaluate checks p and, when it is over budget, attaches the degraded
// plan. The report is then signed, uploaded, written and alerted on as
// configured. Only a failure to write the report file is returned; upload
// and alert failures are logged.
func (e *Engine) Evaluate(ctx context.Context, p plan.Plan) (report.Report, error) {
	ctx, span := e.tracer.Start(ctx, "budget.evaluate", trace.WithAttributes(e.planAttrs(p)...))
	defer span.End()

	d := e.Check(ctx, p)
	r := report.Report{
		Version:   report.Version,
		RunID:     uuid.New().String(),
		Timestamp: e.opts.Now().UTC(),
		PlanID:    p.ID,
		PlanTitle: p.Title,
		Decision:  d,
		Estimate:  e.opts.Model.Estimate(p),
	}
	span.SetAttributes(
		attribute.String("budget.run_id", r.RunID),
		attribute.Int("budget.estimated_points", d.EstimatedPoints),
		attribute.String("budget.recommendation", string(d.Recommendation)),
	)

	if d.Recommendation == cost.RecommendDegrade {
		degraded := e.Degrade(ctx, p)
		est := e.opts.Model.Estimate(degraded)
		r.Degraded = &degraded
		r.DegradedEstimate = &est
		r.DegradedFits = est.EstimatedPoints <= e.opts.BudgetDay
		span.SetAttributes(attribute.Bool("budget.degraded_fits", r.DegradedFits))
	}

	if e.opts.Secret != "" {
		r.Attestation = report.Sign(r, e.opts.Secret)
	}

	if e.opts.Store != nil {
		if ref, err := e.upload(ctx, r); err != nil {
			log.Printf("[%s] vault report: %v", r.RunID, err)
		} else {
			r.VaultRef = ref.URI
		}
	}

	if e.opts.Writer != nil {
		if err := e.opts.Writer.Write(r); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return r, err
		}
	}

	if d.Recommendation == cost.RecommendDegrade && e.opts.WebhookURL != "" {
		if err := SendAlert(ctx, e.opts.HTTPClient, e.opts.WebhookURL, r); err != nil {
			log.Printf("[%s] alert: %v", r.RunID, err)
		}
	}

	return r, nil
}

func (e *Engine) upload(ctx context.Context, r report.Report) (vault.Ref, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return vault.Ref{}, fmt.Errorf("gate: marshal report: %w", err)
	}
	return e.opts.Store.Store(ctx, r.RunID+"/report.json", data)
}

func (e *Engine) planAttrs(p plan.Plan) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("plan.title", p.Title),
		attribute.Int("plan.steps", len(p.Steps)),
		attribute.Int("budget.day", e.opts.BudgetDay),
		attribute.Int("budget.week", e.opts.BudgetWeek),
	}
}
