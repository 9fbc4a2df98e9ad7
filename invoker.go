// Package invoker synthesizes HTTP requests from an OpenAPI 3 document and
// runtime parameter values, resolving references lazily and applying
// security schemes per operation.
package invoker

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/miorlan/openapi-invoker/internal/domain"
	"github.com/miorlan/openapi-invoker/internal/infrastructure"
	"github.com/miorlan/openapi-invoker/internal/usecase"
)

// Option represents a configuration option for a built API.
type Option func(*Config)

// Config holds the configuration for a built API.
type Config struct {
	BaseURL         string
	DocumentURI     string
	Logging         bool
	Logger          domain.Logger
	RequestExecutor domain.RequestExecutor
	HTTPTimeout     time.Duration
	MaxDepth        int
}

// WithBaseURL sets the base URL requests are built against.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithDocumentURI records where the document was loaded from; relative
// external references resolve against it.
func WithDocumentURI(uri string) Option {
	return func(c *Config) {
		c.DocumentURI = uri
	}
}

// WithLogging enables advisory warnings. Without it all validation,
// security and content-type warnings are silently dropped.
func WithLogging(logging bool) Option {
	return func(c *Config) {
		c.Logging = logging
	}
}

// WithLogger sets the logger receiving advisory output. Implies nothing
// about the logging flag; enable it with WithLogging.
func WithLogger(logger domain.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithRequestExecutor replaces the default net/http executor for all
// invocations of this API; the environment may still override it per call.
func WithRequestExecutor(executor domain.RequestExecutor) Option {
	return func(c *Config) {
		c.RequestExecutor = executor
	}
}

// WithHTTPTimeout sets the timeout for reference fetches and the default
// executor.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// WithMaxDepth bounds reference resolution depth (0 = unlimited).
func WithMaxDepth(depth int) Option {
	return func(c *Config) {
		c.MaxDepth = depth
	}
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	return &Config{
		HTTPTimeout: 30 * time.Second,
	}
}

// Convenience aliases so callers only import this package.
type (
	// Params maps parameter names to call-time values.
	Params = map[string]interface{}

	// CallOptions carries per-call headers and body.
	CallOptions = usecase.CallOptions

	// Environment supplies credentials and per-call overrides.
	Environment = usecase.Environment

	// Invocation is the callable template for one operation.
	Invocation = usecase.Invocation

	// PreparedCall is a captured, not yet executed invocation.
	PreparedCall = usecase.PreparedCall

	// Credential is the secret for one security scheme.
	Credential = domain.Credential

	// Credentials maps scheme names to credentials.
	Credentials = domain.Credentials

	// Logger receives advisory output.
	Logger = domain.Logger
)

// API is the collection of invokable operations assembled from one
// document. It owns the reference-resolution cache; Close drops it.
type API struct {
	invoker  *usecase.Invoker
	resolver domain.ReferenceResolver
}

// New builds an API from an already-parsed OpenAPI 3 document. The document
// is owned by the caller and never mutated.
func New(doc map[string]interface{}, opts ...Option) (*API, error) {
	config := defaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	var logger domain.Logger = domain.NopLogger{}
	if config.Logging {
		logger = config.Logger
		if logger == nil {
			logger = domain.NewSlogAdapter(nil)
		}
	}

	loader := infrastructure.NewDocumentLoaderWithTimeout(config.HTTPTimeout)
	parser := infrastructure.NewParser()
	resolver := infrastructure.NewResolver(loader, parser, doc, config.DocumentURI, config.MaxDepth)
	validator := infrastructure.NewSchemaValidator()
	executor := config.RequestExecutor
	if executor == nil {
		executor = infrastructure.NewHTTPExecutorWithTimeout(config.HTTPTimeout)
	}

	inv := usecase.NewInvoker(resolver, validator, executor, logger, config.BaseURL)
	if err := inv.Assemble(doc); err != nil {
		return nil, err
	}

	return &API{invoker: inv, resolver: resolver}, nil
}

// Load reads, parses and builds an API from a document on disk or over
// HTTP.
//
// Example:
//
//	api, err := invoker.Load(ctx, "petstore.yaml", invoker.WithBaseURL("https://api.example.com"))
func Load(ctx context.Context, path string, opts ...Option) (*API, error) {
	config := defaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	loader := infrastructure.NewDocumentLoaderWithTimeout(config.HTTPTimeout)
	data, err := loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	var doc map[string]interface{}
	if err := infrastructure.NewParser().Unmarshal(data, &doc, domain.DetectFormat(path)); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	opts = append(opts, WithDocumentURI(path))
	return New(doc, opts...)
}

// Operation returns the invocation template for one operation id.
func (a *API) Operation(id string) (*Invocation, error) {
	return a.invoker.Operation(id)
}

// Operations lists the assembled operation ids in document order.
func (a *API) Operations() []string {
	return a.invoker.OperationIDs()
}

// Invoke prepares and executes one operation in a single step.
//
// Example:
//
//	resp, err := api.Invoke(ctx, "getUser",
//		invoker.Params{"id": "foxfriends"},
//		invoker.CallOptions{},
//		invoker.Environment{Credentials: creds})
func (a *API) Invoke(ctx context.Context, id string, params Params, opts CallOptions, env Environment) (*http.Response, error) {
	op, err := a.Operation(id)
	if err != nil {
		return nil, err
	}
	return op.Prepare(params, opts).Execute(ctx, env)
}

// Close drops the reference-resolution cache. The API is unusable
// afterwards only in the sense that resolution starts cold; it exists so
// long-lived processes can bound cache growth.
func (a *API) Close() {
	a.resolver.Close()
}
