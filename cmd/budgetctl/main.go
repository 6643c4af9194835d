// Command budgetctl prices an automation plan, checks it against the daily
// and weekly point budgets, and proposes a degraded plan when it is over.
//
//	budgetctl [-config budget.yaml] [-reports dir] check <plan.json|vault://bucket/key>
//
// Results are printed to stdout as JSON; errors as {"error": "..."} with
// exit status 1.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nostalgicskinco/plan-budget-gate/pkg/gate"
	"github.com/nostalgicskinco/plan-budget-gate/pkg/plan"
)

const usage = `Usage: budgetctl [flags] <command> <plan>

Commands:
  check     print the budget decision
  estimate  print the cost estimate
  degrade   print the degraded plan
  run       evaluate, record and alert; print the full report
  validate  validate one or more plan files against the plan schema

Flags:
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tp, err := initTracer(ctx, os.Getenv)
	if err != nil {
		log.Printf("WARN: OTel tracing disabled: %v", err)
	}

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)

	// os.Exit skips deferred calls, so flush spans explicitly.
	if tp != nil {
		tp.Shutdown(context.Background())
	}
	cancel()
	os.Exit(code)
}

// run executes one command and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	fs := flag.NewFlagSet("budgetctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	configPath := fs.String("config", getenv("BUDGET_CONFIG"), "YAML config file")
	reportsDir := fs.String("reports", "", "write reports to this directory (overrides REPORTS_DIR)")
	if err := fs.Parse(args); err != nil {
		return fail(stdout, err)
	}

	rest := fs.Args()
	if len(rest) < 2 {
		fs.Usage()
		return fail(stdout, fmt.Errorf("plan file path required"))
	}
	cmd, targets := rest[0], rest[1:]

	cfg, err := gate.LoadConfig(*configPath)
	if err != nil {
		return fail(stdout, err)
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return fail(stdout, err)
	}
	if *reportsDir != "" {
		cfg.Reports.Dir = *reportsDir
	}

	engine, err := gate.NewFromConfig(ctx, cfg)
	if err != nil {
		return fail(stdout, err)
	}

	if cmd == "validate" {
		for _, target := range targets {
			data, err := engine.ReadPlan(ctx, target)
			if err != nil {
				return fail(stdout, err)
			}
			if err := plan.Validate(data); err != nil {
				return fail(stdout, fmt.Errorf("%s: %w", target, err))
			}
		}
		return emit(stdout, map[string]interface{}{"valid": true, "files": len(targets)})
	}

	if len(targets) != 1 {
		return fail(stdout, fmt.Errorf("%s takes exactly one plan", cmd))
	}
	p, err := engine.LoadPlan(ctx, targets[0])
	if err != nil {
		return fail(stdout, err)
	}

	switch cmd {
	case "check":
		return emit(stdout, engine.Check(ctx, p))
	case "estimate":
		return emit(stdout, engine.Estimate(p))
	case "degrade":
		return emit(stdout, engine.Degrade(ctx, p))
	case "run":
		r, err := engine.Evaluate(ctx, p)
		if err != nil {
			return fail(stdout, err)
		}
		return emit(stdout, r)
	default:
		fs.Usage()
		return fail(stdout, fmt.Errorf("unknown command %q", cmd))
	}
}

func emit(w io.Writer, v interface{}) int {
	data, err := json.Marshal(v)
	if err != nil {
		return fail(w, err)
	}
	fmt.Fprintln(w, string(data))
	return 0
}

func fail(w io.Writer, err error) int {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	fmt.Fprintln(w, string(data))
	return 1
}
