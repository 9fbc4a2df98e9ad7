package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/miorlan/openapi-invoker/internal/domain"
)

// negotiateBody resolves the operation's request body definition and decides
// how to serialize the call-time body. It returns the body reader and the
// content type to set (empty when the caller already set one or none could
// be determined). Mismatches warn; the request is still sent.
func (c *PreparedCall) negotiateBody(ctx context.Context, headers http.Header) (io.Reader, string, error) {
	if !domain.CanCarryBody(c.op.Method) {
		return nil, "", nil
	}
	logger := c.inv.logger

	if c.op.RequestBody == nil {
		return passthroughReader(c.opts.Body, logger), "", nil
	}

	node, err := c.inv.resolver.Dereference(ctx, c.op.RequestBody)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve request body: %w", err)
	}
	definition, ok := node.(map[string]interface{})
	if !ok {
		return passthroughReader(c.opts.Body, logger), "", nil
	}

	if c.opts.Body == nil {
		if required, _ := definition["required"].(bool); required {
			logger.Warn("missing required request body", "operation", c.op.ID)
		}
		return nil, "", nil
	}

	content, _ := definition["content"].(map[string]interface{})
	contentType := headers.Get("Content-Type")
	if contentType == "" {
		if len(content) != 1 {
			logger.Warn("unable to determine content type", "operation", c.op.ID, "declared", len(content))
			return passthroughReader(c.opts.Body, logger), "", nil
		}
		for ct := range content {
			contentType = ct
		}
	}

	if !isJSON(contentType) {
		return passthroughReader(c.opts.Body, logger), contentType, nil
	}

	if media, ok := content[contentType].(map[string]interface{}); ok {
		if schema, ok := media["schema"].(map[string]interface{}); ok {
			if !c.inv.validator.Validate(schema, c.opts.Body) {
				logger.Warn("request body failed schema validation", "operation", c.op.ID)
			}
		}
	}
	data, err := json.Marshal(c.opts.Body)
	if err != nil {
		logger.Warn("failed to encode request body", "operation", c.op.ID, "error", err)
		return nil, "", nil
	}
	return bytes.NewReader(data), contentType, nil
}

func isJSON(contentType string) bool {
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.TrimSpace(mediaType) == "application/json"
}

// passthroughReader attaches a body the engine does not interpret. Values
// that have no byte representation are dropped with a warning rather than
// guessed at.
func passthroughReader(body interface{}, logger domain.Logger) io.Reader {
	switch b := body.(type) {
	case nil:
		return nil
	case io.Reader:
		return b
	case []byte:
		return bytes.NewReader(b)
	case string:
		return strings.NewReader(b)
	default:
		logger.Warn("request body left unset: no serialization for its content type", "type", fmt.Sprintf("%T", body))
		return nil
	}
}
