package domain

import "strings"

// Operation is one (method, path) pair from the document's path map.
//
// Parameter and request body nodes are kept in their raw, possibly
// referencing form: they are dereferenced fresh on every invocation so that
// documents backed by live sources stay current.
type Operation struct {
	ID     string
	Method string
	Path   string

	// PathParameters and OwnParameters are the raw parameter lists from the
	// path item and the operation respectively. Operation-level entries
	// override path-item-level entries with the same (name, in) after
	// dereferencing.
	PathParameters []interface{}
	OwnParameters  []interface{}

	RequestBody interface{}

	// Security is the operation's own requirement list. nil means the
	// document default applies; an empty, non-nil slice disables security.
	Security    []SecurityRequirement
	SecuritySet bool

	Deprecated bool
}

// bodyMethods are the methods that may carry a request body.
var bodyMethods = map[string]bool{
	"put":    true,
	"post":   true,
	"delete": true,
	"patch":  true,
}

// CanCarryBody reports whether the method admits a request body.
func CanCarryBody(method string) bool {
	return bodyMethods[strings.ToLower(method)]
}
