package serializer

import (
	"strings"

	"github.com/miorlan/openapi-invoker/internal/domain"
)

// ExpandPathParam renders the substitution for one path parameter. The
// style picks the RFC 6570 operator: none for simple, dot for label,
// semicolon for matrix; explode appends the modifier.
func ExpandPathParam(p *domain.Parameter, value interface{}) (string, error) {
	var op string
	switch p.EffectiveStyle() {
	case "label":
		op = "."
	case "matrix":
		op = ";"
	default:
		op = ""
	}
	mod := ""
	if p.EffectiveExplode() {
		mod = "*"
	}
	return expandTemplate(op, p.Name, mod, value)
}

// SubstitutePath replaces the {name} placeholder in the path template with
// the parameter's expansion.
func SubstitutePath(path string, p *domain.Parameter, value interface{}) (string, error) {
	expanded, err := ExpandPathParam(p, value)
	if err != nil {
		return path, err
	}
	return strings.ReplaceAll(path, "{"+p.Name+"}", expanded), nil
}
