// Package cost estimates the point cost of a plan, checks it against daily
// and weekly budgets, and proposes a degraded plan when it does not fit.
//
// Every function here is pure: plans are never mutated and a Model is
// immutable once built, so all of it is safe for concurrent use.
package cost

import (
	"errors"
	"fmt"

	"github.com/nostalgicskinco/plan-budget-gate/pkg/plan"
)

const (
	// BaseCost is the flat per-plan overhead, added once per estimate.
	BaseCost = 2
	// DefaultWeight is charged for any action not in the weight table.
	DefaultWeight = 1
	// FallbackAction replaces expensive steps when a plan is degraded.
	FallbackAction = "line.reply"
)

var (
	ErrInvalidWeight    = errors.New("cost: weight must be at least 1")
	ErrInvalidBaseCost  = errors.New("cost: base cost must not be negative")
	ErrFallbackWeighted = errors.New("cost: fallback action must cost the default weight")
	ErrBadDowngrade     = errors.New("cost: downgrade must be cheaper than its source")
)

// ModelConfig is the serializable form of a Model.
type ModelConfig struct {
	BaseCost       *int              `yaml:"base_cost"`
	Weights        map[string]int    `yaml:"weights"`         // action or "<namespace>.*" → points
	FallbackAction string            `yaml:"fallback_action"` // default line.reply
	Downgrades     map[string]string `yaml:"downgrades"`      // action → cheaper substitute
}

// DefaultModelConfig returns the built-in weight table.
func DefaultModelConfig() ModelConfig {
	base := BaseCost
	return ModelConfig{
		BaseCost: &base,
		Weights: map[string]int{
			"gmail.send": 4,
			"manus.*":    2,
		},
		FallbackAction: FallbackAction,
	}
}

// Model maps actions to point weights.
type Model struct {
	baseCost   int
	weights    map[string]int
	fallback   string
	downgrades map[string]string
}

var defaultModel = MustModel(DefaultModelConfig())

// DefaultModel returns the model built from DefaultModelConfig.
func DefaultModel() *Model { return defaultModel }

// NewModel validates cfg and builds an immutable model from it. A nil
// BaseCost means BaseCost and an empty FallbackAction means FallbackAction.
func NewModel(cfg ModelConfig) (*Model, error) {
	m := &Model{
		baseCost:   BaseCost,
		weights:    make(map[string]int, len(cfg.Weights)),
		fallback:   cfg.FallbackAction,
		downgrades: make(map[string]string, len(cfg.Downgrades)),
	}
	if cfg.BaseCost != nil {
		if *cfg.BaseCost < 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidBaseCost, *cfg.BaseCost)
		}
		m.baseCost = *cfg.BaseCost
	}
	if m.fallback == "" {
		m.fallback = FallbackAction
	}

	for action, w := range cfg.Weights {
		if w < DefaultWeight {
			return nil, fmt.Errorf("%w: %s=%d", ErrInvalidWeight, action, w)
		}
		m.weights[action] = w
	}

	if w := m.Weight(m.fallback); w != DefaultWeight {
		return nil, fmt.Errorf("%w: %s=%d", ErrFallbackWeighted, m.fallback, w)
	}

	for from, to := range cfg.Downgrades {
		if m.Weight(to) >= m.Weight(from) {
			return nil, fmt.Errorf("%w: %s(%d) → %s(%d)", ErrBadDowngrade, from, m.Weight(from), to, m.Weight(to))
		}
		m.downgrades[from] = to
	}

	return m, nil
}

// MustModel is like NewModel but panics on an invalid config.
func MustModel(cfg ModelConfig) *Model {
	m, err := NewModel(cfg)
	if err != nil {
		panic(err)
	}
	return m
}

// Weight returns the points charged for one step with the given action.
// An exact match wins over a namespace wildcard; anything else, including
// an empty action, costs DefaultWeight.
func (m *Model) Weight(action string) int {
	if w, ok := m.weights[action]; ok {
		return w
	}
	if key := plan.ParseAction(action).Wildcard(); key != "" {
		if w, ok := m.weights[key]; ok {
			return w
		}
	}
	return DefaultWeight
}

// BaseCost returns the flat per-plan overhead.
func (m *Model) BaseCost() int { return m.baseCost }

// Fallback returns the action that replaces expensive steps.
func (m *Model) Fallback() string { return m.fallback }

// substitute returns the cheaper action an expensive step is rewritten to.
func (m *Model) substitute(action string) string {
	if to, ok := m.downgrades[action]; ok {
		return to
	}
	return m.fallback
}
