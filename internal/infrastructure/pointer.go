package infrastructure

import (
	"strconv"
	"strings"

	"github.com/miorlan/openapi-invoker/internal/domain"
)

// resolveJSONPointer walks a JSON pointer fragment ("" or "/a/b/0") through
// a generic document tree.
func resolveJSONPointer(doc interface{}, fragment string) (interface{}, error) {
	if fragment == "" {
		return doc, nil
	}
	if !strings.HasPrefix(fragment, "/") {
		return nil, &domain.ErrInvalidReference{Ref: "#" + fragment}
	}

	current := doc
	for _, part := range strings.Split(fragment[1:], "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")

		switch v := current.(type) {
		case map[string]interface{}:
			next, ok := v[part]
			if !ok {
				return nil, &domain.ErrUnresolvedReference{Pointer: "#" + fragment}
			}
			current = next
		case []interface{}:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, &domain.ErrUnresolvedReference{Pointer: "#" + fragment}
			}
			current = v[idx]
		default:
			return nil, &domain.ErrUnresolvedReference{Pointer: "#" + fragment}
		}
	}

	return current, nil
}
