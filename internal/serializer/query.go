package serializer

import (
	"strings"

	"github.com/miorlan/openapi-invoker/internal/domain"
)

// Pair is one key=value query fragment. The value is already encoded; keys
// are used literally (OpenAPI parameter names are URL-safe, and deepObject
// bracket keys stay readable).
type Pair struct {
	Key   string
	Value string
}

// QueryPairs serializes one query parameter into its key=value fragments.
// supplied distinguishes an absent parameter from an explicit nil: both emit
// name= when allowEmptyValue is set and are omitted otherwise.
func QueryPairs(p *domain.Parameter, value interface{}, supplied bool) []Pair {
	if !supplied || value == nil {
		if p.AllowEmptyValue {
			return []Pair{{Key: p.Name}}
		}
		return nil
	}

	style := p.EffectiveStyle()
	if style == "deepObject" {
		if m, ok := value.(map[string]interface{}); ok {
			return deepObjectPairs(p.Name, m, p.AllowReserved)
		}
		return []Pair{{Key: p.Name, Value: Escape(Stringify(value), p.AllowReserved)}}
	}

	switch v := value.(type) {
	case []interface{}:
		if p.EffectiveExplode() {
			pairs := make([]Pair, len(v))
			for i, item := range v {
				pairs[i] = Pair{Key: p.Name, Value: Escape(Stringify(item), p.AllowReserved)}
			}
			return pairs
		}
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = Escape(Stringify(item), p.AllowReserved)
		}
		return []Pair{{Key: p.Name, Value: strings.Join(items, styleDelimiter(style))}}

	case map[string]interface{}:
		keys := sortedKeys(v)
		if p.EffectiveExplode() {
			// Property names become query keys directly, not prefixed by
			// the parameter name.
			pairs := make([]Pair, 0, len(keys))
			for _, k := range keys {
				pairs = append(pairs, Pair{Key: k, Value: Escape(Stringify(v[k]), p.AllowReserved)})
			}
			return pairs
		}
		flat := make([]string, 0, 2*len(keys))
		for _, k := range keys {
			flat = append(flat, Escape(k, p.AllowReserved), Escape(Stringify(v[k]), p.AllowReserved))
		}
		return []Pair{{Key: p.Name, Value: strings.Join(flat, ",")}}

	default:
		return []Pair{{Key: p.Name, Value: Escape(Stringify(v), p.AllowReserved)}}
	}
}

// styleDelimiter is the joiner for non-exploded arrays: an encoded space for
// spaceDelimited, a literal pipe for pipeDelimited, a comma otherwise.
func styleDelimiter(style string) string {
	switch style {
	case "spaceDelimited":
		return "%20"
	case "pipeDelimited":
		return "|"
	default:
		return ","
	}
}

func deepObjectPairs(prefix string, m map[string]interface{}, allowReserved bool) []Pair {
	var pairs []Pair
	for _, k := range sortedKeys(m) {
		key := prefix + "[" + k + "]"
		if nested, ok := m[k].(map[string]interface{}); ok {
			pairs = append(pairs, deepObjectPairs(key, nested, allowReserved)...)
			continue
		}
		pairs = append(pairs, Pair{Key: key, Value: Escape(Stringify(m[k]), allowReserved)})
	}
	return pairs
}

// EncodeQuery joins pairs into a query string without the leading question
// mark.
func EncodeQuery(pairs []Pair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.Key + "=" + p.Value
	}
	return strings.Join(parts, "&")
}
