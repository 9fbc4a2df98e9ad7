package serializer

import (
	"strings"

	"github.com/miorlan/openapi-invoker/internal/domain"
)

// managedHeaders are owned by the caller or the security resolver and are
// never populated from parameter definitions.
var managedHeaders = map[string]bool{
	"accept":        true,
	"content-type":  true,
	"authorization": true,
}

// IsManagedHeader reports whether a header parameter name must be skipped.
func IsManagedHeader(name string) bool {
	return managedHeaders[strings.ToLower(name)]
}

// HeaderValue renders one header parameter. Header parameters have a single
// style (simple); explode only matters for composite values.
func HeaderValue(p *domain.Parameter, value interface{}) (string, error) {
	mod := ""
	if p.EffectiveExplode() {
		mod = "*"
	}
	return expandTemplate("", p.Name, mod, value)
}
