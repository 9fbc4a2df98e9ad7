package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/miorlan/openapi-invoker/internal/domain"
)

// Invoker holds the immutable invocation context of one built API: base
// URL, capabilities, the raw security scheme nodes and the assembled
// operation table. It is created once and read-only afterwards.
type Invoker struct {
	baseURL   string
	resolver  domain.ReferenceResolver
	validator domain.SchemaValidator
	executor  domain.RequestExecutor
	logger    domain.Logger

	securitySchemes interface{}
	defaultSecurity []domain.SecurityRequirement
	operations      map[string]*domain.Operation
	order           []string
}

// NewInvoker creates an Invoker over the given capabilities.
func NewInvoker(
	resolver domain.ReferenceResolver,
	validator domain.SchemaValidator,
	executor domain.RequestExecutor,
	logger domain.Logger,
	baseURL string,
) *Invoker {
	return &Invoker{
		baseURL:    baseURL,
		resolver:   resolver,
		validator:  validator,
		executor:   executor,
		logger:     logger,
		operations: make(map[string]*domain.Operation),
	}
}

// pathMethods are the HTTP methods an OpenAPI path item may define.
var pathMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Assemble walks the document's path map and indexes one operation per
// (path, method) pair. It fails when the document is not OpenAPI 3.x.
func (inv *Invoker) Assemble(doc map[string]interface{}) error {
	version, _ := doc["openapi"].(string)
	if version == "" {
		return &domain.ErrUnsupportedDocument{Reason: "missing openapi version marker"}
	}
	if !strings.HasPrefix(version, "3.") {
		return &domain.ErrUnsupportedDocument{Reason: fmt.Sprintf("unsupported version %s", version)}
	}
	if !strings.HasPrefix(version, "3.0") {
		inv.logger.Warn("document version differs from 3.0.x", "version", version)
	}

	if components, ok := doc["components"].(map[string]interface{}); ok {
		inv.securitySchemes = components["securitySchemes"]
	}
	if sec, ok := doc["security"]; ok {
		inv.defaultSecurity = domain.SecurityRequirementsFromNode(sec)
	}

	paths, _ := doc["paths"].(map[string]interface{})
	pathKeys := make([]string, 0, len(paths))
	for path := range paths {
		pathKeys = append(pathKeys, path)
	}
	sort.Strings(pathKeys)

	for _, path := range pathKeys {
		item, ok := paths[path].(map[string]interface{})
		if !ok {
			continue
		}
		shared, _ := item["parameters"].([]interface{})

		for _, method := range pathMethods {
			raw, ok := item[method]
			if !ok {
				continue
			}
			opNode, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}

			op := &domain.Operation{
				Method:         method,
				Path:           path,
				PathParameters: shared,
			}
			if id, ok := opNode["operationId"].(string); ok && id != "" {
				op.ID = id
			} else {
				op.ID = method + " " + path
			}
			op.OwnParameters, _ = opNode["parameters"].([]interface{})
			op.RequestBody = opNode["requestBody"]
			if sec, ok := opNode["security"]; ok {
				op.Security = domain.SecurityRequirementsFromNode(sec)
				op.SecuritySet = true
			}
			op.Deprecated, _ = opNode["deprecated"].(bool)

			if _, exists := inv.operations[op.ID]; exists {
				inv.logger.Warn("duplicate operation id, keeping the first", "operation", op.ID)
				continue
			}
			inv.operations[op.ID] = op
			inv.order = append(inv.order, op.ID)
		}
	}

	return nil
}

// Operation returns the invocation template for one operation id.
func (inv *Invoker) Operation(id string) (*Invocation, error) {
	op, ok := inv.operations[id]
	if !ok {
		return nil, &domain.ErrUnknownOperation{ID: id}
	}
	return &Invocation{inv: inv, op: op}, nil
}

// OperationIDs lists the assembled operation ids in document order.
func (inv *Invoker) OperationIDs() []string {
	ids := make([]string, len(inv.order))
	copy(ids, inv.order)
	return ids
}
