// Package testdata provides golden plan fixtures shared by the budget gate
// tests. Each fixture carries the raw plan JSON and the numbers the default
// cost model is expected to produce for it.
package testdata

// Fixture represents a single golden plan scenario.
type Fixture struct {
	Name           string // human-readable scenario name
	PlanJSON       string // plan as a producer would emit it
	ExpectedSteps  int    // step count
	ExpectedWeight int    // steps above the default weight
	ExpectedPoints int    // estimate under the default model
	DegradedPoints int    // estimate of the degraded plan under the default model
}

// ReferencePlan is the two-step plan: one LINE reply, one Gmail send.
func ReferencePlan() Fixture {
	return Fixture{
		Name: "reference_plan",
		PlanJSON: `{
			"title": "Test Plan",
			"steps": [
				{"id": "s1", "action": "line.reply", "payload": {}, "idempotency_key": "a"},
				{"id": "s2", "action": "gmail.send", "payload": {"to": "a@example.com"}, "idempotency_key": "b"}
			]
		}`,
		ExpectedSteps:  2,
		ExpectedWeight: 1,
		ExpectedPoints: 7,
		DegradedPoints: 4,
	}
}

// EmptyPlan has no steps and costs only the base cost.
func EmptyPlan() Fixture {
	return Fixture{
		Name:           "empty_plan",
		PlanJSON:       `{"title": "Nothing to do", "steps": []}`,
		ExpectedSteps:  0,
		ExpectedWeight: 0,
		ExpectedPoints: 2,
		DegradedPoints: 2,
	}
}

// ManusHeavy mixes manus delegations, a Gmail send and a plain reply.
func ManusHeavy() Fixture {
	return Fixture{
		Name: "manus_heavy",
		PlanJSON: `{
			"id": "plan-20261014-01",
			"version": "1",
			"title": "Weekly brief with repair",
			"metadata": {"description": "generate brief, repair site, notify"},
			"steps": [
				{"id": "brief", "action": "manus.generate", "connector": "manus", "payload": {"topic": "weekly"}, "idempotency_key": "k1"},
				{"id": "repair", "action": "manus.repair", "connector": "manus", "payload": {"target": "site"}, "idempotency_key": "k2", "on_error": "manual_recovery"},
				{"id": "mail", "action": "gmail.send", "connector": "gmail", "payload": {"to": "ops@example.com"}, "idempotency_key": "k3"},
				{"id": "ack", "action": "line.reply", "connector": "line", "payload": {"text": "done"}, "idempotency_key": "k4"}
			]
		}`,
		ExpectedSteps:  4,
		ExpectedWeight: 3,
		ExpectedPoints: 2 + 2 + 2 + 4 + 1,
		DegradedPoints: 2 + 4,
	}
}

// MalformedSteps has steps missing fields. The estimator tolerates them.
func MalformedSteps() Fixture {
	return Fixture{
		Name: "malformed_steps",
		PlanJSON: `{
			"title": "Half-written plan",
			"steps": [
				{"id": "a"},
				{"action": "gmail.send"},
				{}
			]
		}`,
		ExpectedSteps:  3,
		ExpectedWeight: 1,
		ExpectedPoints: 2 + 1 + 4 + 1,
		DegradedPoints: 2 + 3,
	}
}

// AllFixtures returns every fixture.
func AllFixtures() []Fixture {
	return []Fixture{ReferencePlan(), EmptyPlan(), ManusHeavy(), MalformedSteps()}
}
