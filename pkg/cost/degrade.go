package cost

import "github.com/nostalgicskinco/plan-budget-gate/pkg/plan"

// DegradedSuffix is appended to the id of every rewritten step.
const DegradedSuffix = "_degraded"

// SuggestDegrade returns a copy of p in which every step priced above
// DefaultWeight is rewritten to its cheaper substitute with an empty
// payload and a suffixed id. Step count and order are preserved, and the
// result never costs more than p.
func (m *Model) SuggestDegrade(p plan.Plan) plan.Plan {
	out := p.Clone()
	for i, s := range out.Steps {
		if m.Weight(s.Action) <= DefaultWeight {
			continue
		}
		s.ID += DegradedSuffix
		s.Action = m.substitute(s.Action)
		s.Payload = map[string]interface{}{}
		out.Steps[i] = s
	}
	return out
}

// SuggestDegrade degrades p with the default model.
func SuggestDegrade(p plan.Plan) plan.Plan {
	return defaultModel.SuggestDegrade(p)
}
