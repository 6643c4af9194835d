package cost

import "github.com/nostalgicskinco/plan-budget-gate/pkg/plan"

// Recommendation is what the caller should do with a plan.
type Recommendation string

const (
	RecommendProceed Recommendation = "proceed"
	RecommendDegrade Recommendation = "degrade"
)

// Decision is the result of a budget check.
type Decision struct {
	WithinBudget    bool           `json:"within_budget"`
	EstimatedPoints int            `json:"estimated_points"`
	BudgetDay       int            `json:"budget_day"`
	BudgetWeek      int            `json:"budget_week"`
	Recommendation  Recommendation `json:"recommendation"`
}

// CheckBudget gates p on the daily budget only. budgetWeek is reported back
// untouched; the checker keeps no history, so weekly accounting is up to
// the caller.
func (m *Model) CheckBudget(p plan.Plan, budgetDay, budgetWeek int) Decision {
	points := m.EstimatePlanCost(p)
	d := Decision{
		WithinBudget:    points <= budgetDay,
		EstimatedPoints: points,
		BudgetDay:       budgetDay,
		BudgetWeek:      budgetWeek,
		Recommendation:  RecommendProceed,
	}
	if !d.WithinBudget {
		d.Recommendation = RecommendDegrade
	}
	return d
}

// CheckBudget checks p with the default model.
func CheckBudget(p plan.Plan, budgetDay, budgetWeek int) Decision {
	return defaultModel.CheckBudget(p, budgetDay, budgetWeek)
}
