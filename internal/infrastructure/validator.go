package infrastructure

import (
	"encoding/json"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/miorlan/openapi-invoker/internal/domain"
)

// SchemaValidator checks values against dereferenced schema maps using
// kin-openapi. Results are advisory; a schema that cannot be compiled never
// fails a value.
type SchemaValidator struct {
	mu       sync.Mutex
	compiled map[uintptr]*openapi3.Schema
}

// NewSchemaValidator creates a new SchemaValidator.
func NewSchemaValidator() domain.SchemaValidator {
	return &SchemaValidator{
		compiled: make(map[uintptr]*openapi3.Schema),
	}
}

// Validate reports whether value conforms to schema.
func (v *SchemaValidator) Validate(schema map[string]interface{}, value interface{}) bool {
	if schema == nil {
		return true
	}
	compiled := v.compile(schema)
	if compiled == nil {
		return true
	}
	return compiled.VisitJSON(value) == nil
}

// compile converts a schema map into a kin-openapi schema, memoized by node
// identity since the same dereferenced schema is shared across invocations.
func (v *SchemaValidator) compile(schema map[string]interface{}) *openapi3.Schema {
	key, _ := nodeIdentity(schema)

	v.mu.Lock()
	compiled, ok := v.compiled[key]
	v.mu.Unlock()
	if ok {
		return compiled
	}

	data, err := json.Marshal(schema)
	if err != nil {
		return nil
	}
	var s openapi3.Schema
	if err := s.UnmarshalJSON(data); err != nil {
		return nil
	}

	v.mu.Lock()
	v.compiled[key] = &s
	v.mu.Unlock()
	return &s
}
