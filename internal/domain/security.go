package domain

import "fmt"

// SecuritySchemeType enumerates the scheme types of OpenAPI 3. The set is
// closed; dispatch over it with exhaustive switches.
type SecuritySchemeType string

const (
	SecurityHTTP          SecuritySchemeType = "http"
	SecurityAPIKey        SecuritySchemeType = "apiKey"
	SecurityOAuth2        SecuritySchemeType = "oauth2"
	SecurityOpenIDConnect SecuritySchemeType = "openIdConnect"
)

// SecurityScheme is one entry of components.securitySchemes, dereferenced.
type SecurityScheme struct {
	Type SecuritySchemeType

	// Scheme is the HTTP authentication scheme (basic, bearer, ...) for
	// Type == SecurityHTTP.
	Scheme string

	// Name and In locate the key for Type == SecurityAPIKey.
	Name string
	In   Location
}

// SecuritySchemeFromNode builds a SecurityScheme from a dereferenced map.
func SecuritySchemeFromNode(node interface{}) (*SecurityScheme, error) {
	m, ok := node.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("security scheme must be an object, got %T", node)
	}
	typ, _ := m["type"].(string)
	s := &SecurityScheme{Type: SecuritySchemeType(typ)}
	switch s.Type {
	case SecurityHTTP:
		s.Scheme, _ = m["scheme"].(string)
	case SecurityAPIKey:
		s.Name, _ = m["name"].(string)
		in, _ := m["in"].(string)
		s.In = Location(in)
	case SecurityOAuth2, SecurityOpenIDConnect:
	default:
		return nil, fmt.Errorf("unknown security scheme type %q", typ)
	}
	return s, nil
}

// SecurityRequirement maps scheme names to required scopes. All named
// schemes must be satisfied together; a slice of requirements is an ordered
// list of alternatives of which the first satisfiable one wins.
type SecurityRequirement map[string][]string

// SecurityRequirementsFromNode converts a raw security list ([]interface{}
// of maps of scope lists) into requirements. Malformed entries are dropped.
func SecurityRequirementsFromNode(node interface{}) []SecurityRequirement {
	list, ok := node.([]interface{})
	if !ok {
		return nil
	}
	reqs := make([]SecurityRequirement, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		req := make(SecurityRequirement, len(m))
		for name, scopes := range m {
			var parsed []string
			if raw, ok := scopes.([]interface{}); ok {
				for _, s := range raw {
					if str, ok := s.(string); ok {
						parsed = append(parsed, str)
					}
				}
			}
			req[name] = parsed
		}
		reqs = append(reqs, req)
	}
	return reqs
}

// Credential is the caller-supplied secret for one security scheme. Exactly
// which fields matter depends on the scheme type: basic auth reads Username
// and Password, everything else reads Token. Raw, when set, is used verbatim
// as the Authorization value and overrides any formatting.
type Credential struct {
	Token    string
	Username string
	Password string
	Raw      string
}

// Credentials maps scheme names to credentials.
type Credentials map[string]Credential
