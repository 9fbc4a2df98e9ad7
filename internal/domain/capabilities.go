package domain

import (
	"context"
	"net/http"
)

// DocumentLoader loads documents from the filesystem or over HTTP. It is
// used to fetch externally referenced documents on demand.
type DocumentLoader interface {
	Load(ctx context.Context, path string) ([]byte, error)
}

// Parser decodes YAML and JSON documents into generic trees.
type Parser interface {
	Unmarshal(data []byte, v interface{}, format FileFormat) error
	Marshal(v interface{}, format FileFormat) ([]byte, error)
}

// ReferenceResolver dereferences $ref nodes within a document graph. A
// resolver owns a memoization cache scoped to one built API; Close drops it.
type ReferenceResolver interface {
	Dereference(ctx context.Context, node interface{}) (interface{}, error)
	Close()
}

// SchemaValidator reports whether a value conforms to a schema. Validation
// is advisory only: it never blocks request construction.
type SchemaValidator interface {
	Validate(schema map[string]interface{}, value interface{}) bool
}

// RequestExecutor sends a built request. The default implementation wraps
// net/http; callers may substitute their own globally or per call.
type RequestExecutor interface {
	Do(req *http.Request) (*http.Response, error)
}
