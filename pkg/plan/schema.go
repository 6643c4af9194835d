package plan

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed plan.schema.json
var schemaJSON []byte

const schemaURL = "plan.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("plan: unmarshal schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("plan: add schema resource: %w", err)
	}
	return c.Compile(schemaURL)
})

// Validate checks raw plan JSON against the plan schema and verifies that
// step ids are unique. The estimator does not require a valid plan; this is
// for producers that want to reject malformed plans before submitting them.
func Validate(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("plan: parse: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("plan: invalid: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return err
	}
	seen := make(map[string]int, len(p.Steps))
	for i, s := range p.Steps {
		if prev, ok := seen[s.ID]; ok {
			return fmt.Errorf("plan: invalid: steps[%d].id %q duplicates steps[%d]", i, s.ID, prev)
		}
		seen[s.ID] = i
	}
	return nil
}
