package domain

import "strings"

// FileFormat identifies the serialization format of a document.
type FileFormat string

const (
	FormatUnknown FileFormat = ""
	FormatYAML    FileFormat = "yaml"
	FormatJSON    FileFormat = "json"
)

// DetectFormat guesses the document format from its path or URL. Paths
// without a recognized extension report FormatUnknown so the parser can
// sniff the content instead.
func DetectFormat(path string) FileFormat {
	p := path
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	switch {
	case strings.HasSuffix(p, ".json"):
		return FormatJSON
	case strings.HasSuffix(p, ".yaml"), strings.HasSuffix(p, ".yml"):
		return FormatYAML
	}
	return FormatUnknown
}
