package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/miorlan/openapi-invoker/internal/domain"
	"github.com/miorlan/openapi-invoker/internal/security"
	"github.com/miorlan/openapi-invoker/internal/serializer"
	"golang.org/x/sync/errgroup"
)

// Invocation is the callable template for one operation, closed over the
// invocation context.
type Invocation struct {
	inv *Invoker
	op  *domain.Operation
}

// CallOptions carries per-call headers and body.
type CallOptions struct {
	Headers http.Header
	Body    interface{}
}

// Environment supplies call-time overrides: credentials, an alternative base
// URL, and an alternative request executor.
type Environment struct {
	Credentials domain.Credentials
	BaseURL     string
	Executor    domain.RequestExecutor
}

// PreparedCall is a deferred invocation: parameter values and options are
// captured, nothing has been resolved or sent yet.
type PreparedCall struct {
	inv    *Invoker
	op     *domain.Operation
	params map[string]interface{}
	opts   CallOptions
}

// Prepare captures parameter values and options for later execution.
func (c *Invocation) Prepare(params map[string]interface{}, opts CallOptions) *PreparedCall {
	return &PreparedCall{inv: c.inv, op: c.op, params: params, opts: opts}
}

// Operation returns the id of the operation this call targets.
func (c *PreparedCall) Operation() string {
	return c.op.ID
}

// BuildRequest dereferences the operation's parameters, body and security
// schemes and assembles the HTTP request. Construction is optimistic:
// imperfect inputs produce warnings, not errors; only unresolvable
// references fail the call.
func (c *PreparedCall) BuildRequest(ctx context.Context, env Environment) (*http.Request, error) {
	op := c.op
	logger := c.inv.logger
	if op.Deprecated {
		logger.Warn("invoking deprecated operation", "operation", op.ID)
	}

	params, err := c.resolveParameters(ctx)
	if err != nil {
		return nil, err
	}

	path := op.Path
	var queryPairs []serializer.Pair
	headers := make(http.Header)
	for k, vs := range c.opts.Headers {
		for _, v := range vs {
			headers.Add(k, v)
		}
	}

	for _, p := range params {
		value, supplied := c.params[p.Name]
		if !supplied && p.Required {
			logger.Warn("missing required parameter", "name", p.Name, "in", string(p.In), "operation", op.ID)
		}
		if supplied && p.Schema != nil && !c.inv.validator.Validate(p.Schema, value) {
			logger.Warn("parameter failed schema validation", "name", p.Name, "operation", op.ID)
		}

		switch p.In {
		case domain.InPath:
			if !supplied {
				continue
			}
			substituted, err := serializer.SubstitutePath(path, p, value)
			if err != nil {
				logger.Warn("failed to expand path parameter", "name", p.Name, "error", err)
				continue
			}
			path = substituted
		case domain.InQuery:
			queryPairs = append(queryPairs, serializer.QueryPairs(p, value, supplied)...)
		case domain.InHeader:
			if serializer.IsManagedHeader(p.Name) || !supplied {
				continue
			}
			rendered, err := serializer.HeaderValue(p, value)
			if err != nil {
				logger.Warn("failed to expand header parameter", "name", p.Name, "error", err)
				continue
			}
			headers.Set(p.Name, rendered)
		case domain.InCookie:
			// Cookies are managed by the underlying client, never set here.
		}
	}

	alternatives := c.inv.defaultSecurity
	if op.SecuritySet {
		alternatives = op.Security
	}
	if len(alternatives) > 0 {
		schemes, err := c.resolveSecuritySchemes(ctx)
		if err != nil {
			return nil, err
		}
		if applied, ok := security.Resolve(alternatives, schemes, env.Credentials); ok {
			for name, values := range applied.Header {
				for _, v := range values {
					headers.Set(name, v)
				}
			}
			for _, q := range applied.Query {
				queryPairs = append(queryPairs, serializer.Pair{
					Key:   q.Name,
					Value: serializer.Escape(q.Value, false),
				})
			}
		} else {
			logger.Warn("no satisfiable security requirement, proceeding without credentials", "operation", op.ID)
		}
	}

	body, contentType, err := c.negotiateBody(ctx, headers)
	if err != nil {
		return nil, err
	}
	if contentType != "" && headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", contentType)
	}

	base := c.inv.baseURL
	if env.BaseURL != "" {
		base = env.BaseURL
	}
	target := strings.TrimRight(base, "/") + path
	if q := serializer.EncodeQuery(queryPairs); q != "" {
		target += "?" + q
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(op.Method), target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for name, values := range headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	return req, nil
}

// Execute builds the request and hands it to the environment's executor,
// falling back to the context default. The response is returned unmodified;
// interpreting it is the caller's responsibility.
func (c *PreparedCall) Execute(ctx context.Context, env Environment) (*http.Response, error) {
	req, err := c.BuildRequest(ctx, env)
	if err != nil {
		return nil, err
	}
	executor := env.Executor
	if executor == nil {
		executor = c.inv.executor
	}
	return executor.Do(req)
}

// resolveParameters dereferences the operation's raw parameter lists
// concurrently, then merges them: an operation-level parameter replaces a
// path-item parameter with the same (name, in).
func (c *PreparedCall) resolveParameters(ctx context.Context) ([]*domain.Parameter, error) {
	nodes := make([]interface{}, 0, len(c.op.PathParameters)+len(c.op.OwnParameters))
	nodes = append(nodes, c.op.PathParameters...)
	nodes = append(nodes, c.op.OwnParameters...)
	if len(nodes) == 0 {
		return nil, nil
	}

	resolved := make([]interface{}, len(nodes))
	g, gctx := errgroup.WithContext(ctx)
	for i, node := range nodes {
		i, node := i, node
		g.Go(func() error {
			v, err := c.inv.resolver.Dereference(gctx, node)
			if err != nil {
				return fmt.Errorf("failed to resolve parameter: %w", err)
			}
			resolved[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	type paramKey struct {
		name string
		in   domain.Location
	}
	var merged []*domain.Parameter
	index := make(map[paramKey]int)
	for _, node := range resolved {
		p, err := domain.ParameterFromNode(node)
		if err != nil {
			c.inv.logger.Warn("skipping malformed parameter", "operation", c.op.ID, "error", err)
			continue
		}
		k := paramKey{name: p.Name, in: p.In}
		if at, ok := index[k]; ok {
			merged[at] = p
			continue
		}
		index[k] = len(merged)
		merged = append(merged, p)
	}
	return merged, nil
}

// resolveSecuritySchemes dereferences components.securitySchemes and parses
// each entry. Malformed schemes are skipped with a warning; requirements
// naming them are then unsatisfiable.
func (c *PreparedCall) resolveSecuritySchemes(ctx context.Context) (map[string]*domain.SecurityScheme, error) {
	schemes := make(map[string]*domain.SecurityScheme)
	if c.inv.securitySchemes == nil {
		return schemes, nil
	}
	node, err := c.inv.resolver.Dereference(ctx, c.inv.securitySchemes)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve security schemes: %w", err)
	}
	m, ok := node.(map[string]interface{})
	if !ok {
		return schemes, nil
	}
	for name, raw := range m {
		scheme, err := domain.SecuritySchemeFromNode(raw)
		if err != nil {
			c.inv.logger.Warn("skipping security scheme", "name", name, "error", err)
			continue
		}
		schemes[name] = scheme
	}
	return schemes, nil
}
