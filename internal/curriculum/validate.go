package curriculum

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

const schemaURL = "schema://curriculum-document.json"

// ErrInvalidDocument indicates a curriculum document that does not conform
// to DocumentSchema.
type ErrInvalidDocument struct {
	Err error
}

func (e *ErrInvalidDocument) Error() string {
	return fmt.Sprintf("invalid curriculum document: %v", e.Err)
}

func (e *ErrInvalidDocument) Unwrap() error { return e.Err }

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Validate checks raw JSON or YAML bytes against DocumentSchema.
// Returns *ErrInvalidDocument on failure.
func Validate(data []byte) error {
	var parsed any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return &ErrInvalidDocument{Err: fmt.Errorf("invalid JSON/YAML: %w", err)}
	}

	// The validator expects encoding/json shaped values (float64 numbers,
	// map[string]any objects), so round-trip through JSON.
	b, err := json.Marshal(parsed)
	if err != nil {
		return &ErrInvalidDocument{Err: fmt.Errorf("normalize document: %w", err)}
	}
	var normalized any
	if err := json.Unmarshal(b, &normalized); err != nil {
		return &ErrInvalidDocument{Err: fmt.Errorf("normalize document: %w", err)}
	}

	schema, err := compiledSchema()
	if err != nil {
		return &ErrInvalidDocument{Err: fmt.Errorf("compile schema: %w", err)}
	}
	if err := schema.Validate(normalized); err != nil {
		return &ErrInvalidDocument{Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		defBytes, err := json.Marshal(DocumentSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(defBytes, &def); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}
