// Package serializer turns parameter definitions and runtime values into
// path segments, query fragments and header values according to the OpenAPI
// style and explode rules. All functions are pure.
package serializer

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/yosida95/uritemplate/v3"
)

// Stringify renders a scalar parameter value the way it appears on the wire.
func Stringify(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Escape percent-encodes s for use in a query string, leaving it untouched
// when the parameter allows reserved characters. Spaces encode as %20, not +.
func Escape(s string, allowReserved bool) string {
	if allowReserved {
		return s
	}
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// templateValue converts a parameter value into its uritemplate form:
// sequences become lists, objects become key-value pairs (keys sorted for
// determinism), everything else a string.
func templateValue(v interface{}) uritemplate.Value {
	switch x := v.(type) {
	case []interface{}:
		items := make([]string, len(x))
		for i, item := range x {
			items[i] = Stringify(item)
		}
		return uritemplate.List(items...)
	case map[string]interface{}:
		keys := sortedKeys(x)
		kv := make([]string, 0, 2*len(keys))
		for _, k := range keys {
			kv = append(kv, k, Stringify(x[k]))
		}
		return uritemplate.KV(kv...)
	default:
		return uritemplate.String(Stringify(x))
	}
}

// placeholderVar stands in for parameter names that are not legal RFC 6570
// variable names (hyphenated headers, mostly).
const placeholderVar = "xv0"

// expandTemplate runs one single-variable RFC 6570 expansion with the given
// operator ("", "." or ";") and modifier ("" or "*").
func expandTemplate(op, name, mod string, value interface{}) (string, error) {
	varname := name
	if !safeVarname(name) {
		varname = placeholderVar
	}
	raw := "{" + op + varname + mod + "}"
	tmpl, err := uritemplate.New(raw)
	if err != nil {
		return "", fmt.Errorf("invalid template %s: %w", raw, err)
	}
	expanded, err := tmpl.Expand(uritemplate.Values{varname: templateValue(value)})
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", raw, err)
	}
	if varname != name {
		// Only the matrix operator prints the variable name; values cannot
		// contain the unencoded placeholder, so plain replacement is safe.
		expanded = strings.ReplaceAll(expanded, ";"+placeholderVar+"=", ";"+Escape(name, false)+"=")
		if expanded == ";"+placeholderVar {
			expanded = ";" + Escape(name, false)
		}
	}
	return expanded, nil
}

// safeVarname reports whether name is usable verbatim as an RFC 6570
// variable name.
func safeVarname(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
