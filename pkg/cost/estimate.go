package cost

import "github.com/nostalgicskinco/plan-budget-gate/pkg/plan"

// Estimate summarizes the cost of a plan.
type Estimate struct {
	Steps           int `json:"steps"`
	WeightedSteps   int `json:"weighted_steps"` // steps priced above DefaultWeight
	EstimatedPoints int `json:"estimated_points"`
}

// Estimate prices every step and adds the base cost once.
func (m *Model) Estimate(p plan.Plan) Estimate {
	est := Estimate{
		Steps:           len(p.Steps),
		EstimatedPoints: m.baseCost,
	}
	for _, s := range p.Steps {
		w := m.Weight(s.Action)
		if w > DefaultWeight {
			est.WeightedSteps++
		}
		est.EstimatedPoints += w
	}
	return est
}

// EstimatePlanCost returns the total points for p.
func (m *Model) EstimatePlanCost(p plan.Plan) int {
	return m.Estimate(p).EstimatedPoints
}

// EstimatePlanCost prices p with the default model.
func EstimatePlanCost(p plan.Plan) int {
	return defaultModel.EstimatePlanCost(p)
}
