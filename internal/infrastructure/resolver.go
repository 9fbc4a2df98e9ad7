package infrastructure

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/miorlan/openapi-invoker/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Resolver lazily dereferences $ref nodes within a document graph.
//
// Resolution is memoized by node identity (the map or slice header pointer),
// so repeated resolution of a shared node is done once per resolver
// lifetime. The cache belongs to the resolver and is dropped by Close; it is
// never shared across built APIs.
//
// Cycles through concrete values resolve to genuinely cyclic shared
// structures: the destination container is installed in a per-call arena
// before recursing into children, so re-entering a node returns the
// partially built container instead of diverging. A ring made purely of
// $ref nodes denotes no value and is reported as a circular reference.
type Resolver struct {
	loader   domain.DocumentLoader
	parser   domain.Parser
	rootURI  string
	root     interface{}
	maxDepth int

	mu        sync.Mutex
	documents map[string]interface{}
	cache     map[uintptr]interface{}
	flight    singleflight.Group
}

// NewResolver creates a resolver over root. rootURI is the location the
// document was loaded from; relative external references resolve against it.
// maxDepth bounds recursion depth (0 = unlimited).
func NewResolver(loader domain.DocumentLoader, parser domain.Parser, root interface{}, rootURI string, maxDepth int) *Resolver {
	return &Resolver{
		loader:    loader,
		parser:    parser,
		rootURI:   rootURI,
		root:      root,
		maxDepth:  maxDepth,
		documents: make(map[string]interface{}),
		cache:     make(map[uintptr]interface{}),
	}
}

var _ domain.ReferenceResolver = (*Resolver)(nil)

// derefState is the per-call working set: the arena holds destination
// containers installed before their children resolve, visiting guards
// against rings of bare $ref nodes.
type derefState struct {
	arena    map[uintptr]interface{}
	visiting map[string]bool
}

// Dereference returns a copy of node with every reference node, recursively,
// replaced by its target. Scalars pass through unchanged. The input is never
// mutated.
func (r *Resolver) Dereference(ctx context.Context, node interface{}) (interface{}, error) {
	key, ok := nodeIdentity(node)
	if !ok {
		return node, nil
	}
	if v, ok := r.cached(key); ok {
		return v, nil
	}

	v, err, _ := r.flight.Do(strconv.FormatUint(uint64(key), 16), func() (interface{}, error) {
		if v, ok := r.cached(key); ok {
			return v, nil
		}
		st := &derefState{
			arena:    make(map[uintptr]interface{}),
			visiting: make(map[string]bool),
		}
		v, err := r.deref(ctx, node, r.rootURI, st, 0)
		if err != nil {
			return nil, err
		}
		// Arena entries are complete once the top-level call returns;
		// only then are they visible to other invocations.
		r.mu.Lock()
		for k, resolved := range st.arena {
			r.cache[k] = resolved
		}
		r.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Close drops the memoization cache and any fetched external documents.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[uintptr]interface{})
	r.documents = make(map[string]interface{})
}

func (r *Resolver) deref(ctx context.Context, node interface{}, base string, st *derefState, depth int) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if r.maxDepth > 0 && depth >= r.maxDepth {
		return nil, fmt.Errorf("maximum recursion depth %d exceeded", r.maxDepth)
	}

	switch n := node.(type) {
	case map[string]interface{}:
		key, _ := nodeIdentity(n)
		if v, ok := r.cached(key); ok {
			return v, nil
		}
		if v, ok := st.arena[key]; ok {
			return v, nil
		}

		if ref, isRef := domain.RefPointer(n); isRef {
			if ref == "" {
				return nil, &domain.ErrInvalidReference{Ref: fmt.Sprintf("%v", n["$ref"])}
			}
			return r.derefPointer(ctx, ref, base, key, st, depth)
		}

		dst := make(map[string]interface{}, len(n))
		st.arena[key] = dst
		for k, v := range n {
			resolved, err := r.deref(ctx, v, base, st, depth+1)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve field %s: %w", k, err)
			}
			dst[k] = resolved
		}
		return dst, nil

	case []interface{}:
		key, _ := nodeIdentity(n)
		if v, ok := r.cached(key); ok {
			return v, nil
		}
		if v, ok := st.arena[key]; ok {
			return v, nil
		}

		dst := make([]interface{}, len(n))
		st.arena[key] = dst
		for i, v := range n {
			resolved, err := r.deref(ctx, v, base, st, depth+1)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve element %d: %w", i, err)
			}
			dst[i] = resolved
		}
		return dst, nil

	default:
		return node, nil
	}
}

func (r *Resolver) derefPointer(ctx context.Context, ref, base string, key uintptr, st *derefState, depth int) (interface{}, error) {
	target, nextBase, uri, err := r.lookup(ctx, ref, base)
	if err != nil {
		return nil, err
	}

	// A cycle back into a value already being built resolves to the shared
	// container installed in the arena.
	if tkey, ok := nodeIdentity(target); ok {
		if v, ok := st.arena[tkey]; ok {
			st.arena[key] = v
			return v, nil
		}
		if v, ok := r.cached(tkey); ok {
			st.arena[key] = v
			return v, nil
		}
	}

	if st.visiting[uri] {
		return nil, &domain.ErrCircularReference{Pointer: uri}
	}
	st.visiting[uri] = true
	resolved, err := r.deref(ctx, target, nextBase, st, depth+1)
	delete(st.visiting, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reference %s: %w", ref, err)
	}

	st.arena[key] = resolved
	return resolved, nil
}

// lookup finds the node a pointer refers to, loading the owning document
// when the pointer leaves the current one. It returns the target node, the
// URI of its document (the base for nested references), and the canonical
// pointer URI.
func (r *Resolver) lookup(ctx context.Context, ref, base string) (interface{}, string, string, error) {
	docPart := ref
	fragment := ""
	if i := strings.Index(ref, "#"); i >= 0 {
		docPart, fragment = ref[:i], ref[i+1:]
	}

	if docPart == "" {
		doc, err := r.document(base)
		if err != nil {
			return nil, "", "", err
		}
		node, err := resolveJSONPointer(doc, fragment)
		if err != nil {
			return nil, "", "", err
		}
		return node, base, base + "#" + fragment, nil
	}

	uri := resolveDocumentURI(base, docPart)
	doc, err := r.loadDocument(ctx, uri)
	if err != nil {
		return nil, "", "", err
	}
	node, err := resolveJSONPointer(doc, fragment)
	if err != nil {
		return nil, "", "", fmt.Errorf("in document %s: %w", uri, err)
	}
	return node, uri, uri + "#" + fragment, nil
}

func (r *Resolver) document(uri string) (interface{}, error) {
	if uri == r.rootURI {
		return r.root, nil
	}
	r.mu.Lock()
	doc, ok := r.documents[uri]
	r.mu.Unlock()
	if !ok {
		return nil, &domain.ErrUnresolvedReference{Pointer: uri}
	}
	return doc, nil
}

func (r *Resolver) loadDocument(ctx context.Context, uri string) (interface{}, error) {
	r.mu.Lock()
	doc, ok := r.documents[uri]
	r.mu.Unlock()
	if ok {
		return doc, nil
	}

	data, err := r.loader.Load(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", uri, err)
	}
	var parsed interface{}
	if err := r.parser.Unmarshal(data, &parsed, domain.DetectFormat(uri)); err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", uri, err)
	}

	r.mu.Lock()
	r.documents[uri] = parsed
	r.mu.Unlock()
	return parsed, nil
}

func (r *Resolver) cached(key uintptr) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.cache[key]
	return v, ok
}

// resolveDocumentURI resolves ref against the document it appears in.
func resolveDocumentURI(base, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		baseURL, err := url.Parse(base)
		if err != nil {
			return ref
		}
		rel, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return baseURL.ResolveReference(rel).String()
	}
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Clean(filepath.Join(filepath.Dir(base), ref))
}

// nodeIdentity returns the identity key for composite nodes. Scalars have
// no identity and are never cached.
func nodeIdentity(node interface{}) (uintptr, bool) {
	switch node.(type) {
	case map[string]interface{}, []interface{}:
		return reflect.ValueOf(node).Pointer(), true
	}
	return 0, false
}
