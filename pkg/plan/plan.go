// Package plan defines the automation plan format consumed by the budget gate:
// an ordered list of steps, each naming an action and carrying a payload.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Plan is an ordered sequence of executable steps.
type Plan struct {
	ID       string                 `json:"id,omitempty"`
	Version  string                 `json:"version,omitempty"`
	Title    string                 `json:"title"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Steps    []Step                 `json:"steps"`
}

// Step is one unit of work in a plan.
type Step struct {
	ID             string                 `json:"id"`
	Action         string                 `json:"action"`
	Connector      string                 `json:"connector,omitempty"`
	Payload        map[string]interface{} `json:"payload"`
	IdempotencyKey string                 `json:"idempotency_key"`
	OnError        string                 `json:"on_error,omitempty"` // abort, compensate or manual_recovery
}

// Parse decodes a plan from JSON.
func Parse(data []byte) (Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return Plan{}, fmt.Errorf("plan: parse: %w", err)
	}
	return p, nil
}

// ReadFile returns the raw bytes of a plan file.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("plan not found at %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("plan: read %s: %w", path, err)
	}
	return data, nil
}

// Load reads and decodes a plan file.
func Load(path string) (Plan, error) {
	data, err := ReadFile(path)
	if err != nil {
		return Plan{}, err
	}
	return Parse(data)
}

// Clone returns a deep copy of p. Payload and metadata maps are copied
// recursively so the clone never aliases the caller's values.
func (p Plan) Clone() Plan {
	out := p
	out.Metadata = cloneMap(p.Metadata)
	if p.Steps != nil {
		out.Steps = make([]Step, len(p.Steps))
		for i, s := range p.Steps {
			out.Steps[i] = s.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of s.
func (s Step) Clone() Step {
	out := s
	out.Payload = cloneMap(s.Payload)
	return out
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
