package domain

import "fmt"

// Location is the place a parameter occupies within a request.
type Location string

const (
	InPath   Location = "path"
	InQuery  Location = "query"
	InHeader Location = "header"
	InCookie Location = "cookie"
)

// Parameter is one fully dereferenced parameter definition.
type Parameter struct {
	Name            string
	In              Location
	Style           string
	Explode         *bool
	Required        bool
	AllowReserved   bool
	AllowEmptyValue bool
	Schema          map[string]interface{}
	Content         map[string]interface{}
}

// EffectiveStyle returns the parameter's style, applying the per-location
// defaults mandated by OpenAPI: simple for path and header, form for query
// and cookie.
func (p *Parameter) EffectiveStyle() string {
	if p.Style != "" {
		return p.Style
	}
	switch p.In {
	case InQuery, InCookie:
		return "form"
	default:
		return "simple"
	}
}

// EffectiveExplode returns the explode flag, defaulting to true exactly when
// the effective style is form.
func (p *Parameter) EffectiveExplode() bool {
	if p.Explode != nil {
		return *p.Explode
	}
	return p.EffectiveStyle() == "form"
}

// ParameterFromNode builds a Parameter from a dereferenced parameter map.
func ParameterFromNode(node interface{}) (*Parameter, error) {
	m, ok := node.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("parameter definition must be an object, got %T", node)
	}

	name, _ := m["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("parameter definition is missing a name")
	}
	in, _ := m["in"].(string)
	switch Location(in) {
	case InPath, InQuery, InHeader, InCookie:
	default:
		return nil, fmt.Errorf("parameter %s has invalid location %q", name, in)
	}

	p := &Parameter{
		Name:            name,
		In:              Location(in),
		Required:        boolField(m, "required"),
		AllowReserved:   boolField(m, "allowReserved"),
		AllowEmptyValue: boolField(m, "allowEmptyValue"),
	}
	if style, ok := m["style"].(string); ok {
		p.Style = style
	}
	if explode, ok := m["explode"].(bool); ok {
		p.Explode = &explode
	}
	if schema, ok := m["schema"].(map[string]interface{}); ok {
		p.Schema = schema
	}
	if content, ok := m["content"].(map[string]interface{}); ok {
		p.Content = content
	}
	return p, nil
}

func boolField(m map[string]interface{}, key string) bool {
	v, _ := m[key].(bool)
	return v
}
