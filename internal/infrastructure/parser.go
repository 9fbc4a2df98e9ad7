package infrastructure

import (
	"encoding/json"
	"strings"

	"github.com/miorlan/openapi-invoker/internal/domain"
	"gopkg.in/yaml.v3"
)

// Parser decodes and encodes YAML and JSON documents.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() domain.Parser {
	return &Parser{}
}

// Unmarshal parses data according to format, sniffing the content when the
// format is unknown.
func (p *Parser) Unmarshal(data []byte, v interface{}, format domain.FileFormat) error {
	switch format {
	case domain.FormatJSON:
		return json.Unmarshal(data, v)
	case domain.FormatYAML:
		return yaml.Unmarshal(data, v)
	default:
		return p.unmarshalByContent(data, v)
	}
}

// Marshal serializes v according to format.
func (p *Parser) Marshal(v interface{}, format domain.FileFormat) ([]byte, error) {
	switch format {
	case domain.FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	default:
		return yaml.Marshal(v)
	}
}

func (p *Parser) unmarshalByContent(data []byte, v interface{}) error {
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) == 0 {
		return yaml.Unmarshal(data, v)
	}

	if trimmed[0] == '{' || trimmed[0] == '[' {
		if err := json.Unmarshal(data, v); err == nil {
			return nil
		}
	}

	return yaml.Unmarshal(data, v)
}
