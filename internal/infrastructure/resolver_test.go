package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/miorlan/openapi-invoker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(root interface{}, rootURI string) *Resolver {
	return NewResolver(NewDocumentLoader(), NewParser(), root, rootURI, 0)
}

func samePointer(t *testing.T, a, b interface{}) {
	t.Helper()
	assert.Equal(t, reflect.ValueOf(a).Pointer(), reflect.ValueOf(b).Pointer(),
		"expected both values to be the same resolved instance")
}

func TestDereference_Scalars(t *testing.T) {
	r := newTestResolver(map[string]interface{}{}, "")
	ctx := context.Background()

	for _, v := range []interface{}{nil, "s", 42, 1.5, true} {
		got, err := r.Dereference(ctx, v)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestDereference_InternalRef(t *testing.T) {
	doc := map[string]interface{}{
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Pet": map[string]interface{}{"type": "object"},
			},
		},
	}
	r := newTestResolver(doc, "")

	got, err := r.Dereference(context.Background(), map[string]interface{}{
		"$ref": "#/components/schemas/Pet",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"type": "object"}, got)
}

func TestDereference_SharedRefsResolveToSameInstance(t *testing.T) {
	doc := map[string]interface{}{
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Pet": map[string]interface{}{"type": "object"},
			},
		},
	}
	r := newTestResolver(doc, "")
	ctx := context.Background()

	first, err := r.Dereference(ctx, map[string]interface{}{"$ref": "#/components/schemas/Pet"})
	require.NoError(t, err)
	second, err := r.Dereference(ctx, map[string]interface{}{"$ref": "#/components/schemas/Pet"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	samePointer(t, first, second)
}

func TestDereference_MemoizedByNodeIdentity(t *testing.T) {
	doc := map[string]interface{}{
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Pet": map[string]interface{}{"type": "object"},
			},
		},
	}
	r := newTestResolver(doc, "")
	ctx := context.Background()

	node := map[string]interface{}{"$ref": "#/components/schemas/Pet"}
	first, err := r.Dereference(ctx, node)
	require.NoError(t, err)
	second, err := r.Dereference(ctx, node)
	require.NoError(t, err)
	samePointer(t, first, second)
}

func TestDereference_SelfReferentialSchemaTerminates(t *testing.T) {
	node := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"next": map[string]interface{}{"$ref": "#/components/schemas/Node"},
		},
	}
	doc := map[string]interface{}{
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{"Node": node},
		},
	}
	r := newTestResolver(doc, "")

	got, err := r.Dereference(context.Background(), node)
	require.NoError(t, err)

	resolved := got.(map[string]interface{})
	next := resolved["properties"].(map[string]interface{})["next"]
	samePointer(t, resolved, next)
}

func TestDereference_MutualRecursionTerminates(t *testing.T) {
	a := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"b": map[string]interface{}{"$ref": "#/components/schemas/B"},
		},
	}
	b := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"a": map[string]interface{}{"$ref": "#/components/schemas/A"},
		},
	}
	doc := map[string]interface{}{
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{"A": a, "B": b},
		},
	}
	r := newTestResolver(doc, "")

	got, err := r.Dereference(context.Background(), a)
	require.NoError(t, err)

	resolvedA := got.(map[string]interface{})
	resolvedB := resolvedA["properties"].(map[string]interface{})["b"].(map[string]interface{})
	backToA := resolvedB["properties"].(map[string]interface{})["a"]
	samePointer(t, resolvedA, backToA)
}

func TestDereference_PureRefRingFails(t *testing.T) {
	doc := map[string]interface{}{
		"a": map[string]interface{}{"$ref": "#/b"},
		"b": map[string]interface{}{"$ref": "#/a"},
	}
	r := newTestResolver(doc, "")

	_, err := r.Dereference(context.Background(), doc["a"])
	require.Error(t, err)
	var circular *domain.ErrCircularReference
	assert.ErrorAs(t, err, &circular)
}

func TestDereference_SequencePreservesOrder(t *testing.T) {
	doc := map[string]interface{}{
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Pet": map[string]interface{}{"type": "object"},
			},
		},
	}
	r := newTestResolver(doc, "")

	got, err := r.Dereference(context.Background(), []interface{}{
		"first",
		map[string]interface{}{"$ref": "#/components/schemas/Pet"},
		"last",
	})
	require.NoError(t, err)

	list := got.([]interface{})
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0])
	assert.Equal(t, map[string]interface{}{"type": "object"}, list[1])
	assert.Equal(t, "last", list[2])
}

func TestDereference_UnknownPointerFails(t *testing.T) {
	r := newTestResolver(map[string]interface{}{}, "")

	_, err := r.Dereference(context.Background(), map[string]interface{}{"$ref": "#/nope"})
	require.Error(t, err)
	var unresolved *domain.ErrUnresolvedReference
	assert.ErrorAs(t, err, &unresolved)
}

func TestDereference_InputIsNeverMutated(t *testing.T) {
	ref := map[string]interface{}{"$ref": "#/components/schemas/Pet"}
	doc := map[string]interface{}{
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Pet": map[string]interface{}{"type": "object"},
			},
		},
	}
	node := map[string]interface{}{"schema": ref}
	r := newTestResolver(doc, "")

	got, err := r.Dereference(context.Background(), node)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"$ref": "#/components/schemas/Pet"}, node["schema"])
	resolved := got.(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"type": "object"}, resolved["schema"])
}

func TestDereference_ExternalDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ext.json", r.URL.Path)
		w.Write([]byte(`{"components":{"schemas":{"X":{"type":"string"}}}}`))
	}))
	defer srv.Close()

	r := newTestResolver(map[string]interface{}{}, "")
	got, err := r.Dereference(context.Background(), map[string]interface{}{
		"$ref": srv.URL + "/ext.json#/components/schemas/X",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"type": "string"}, got)
}

func TestDereference_ExternalDocumentFetchedOnce(t *testing.T) {
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte(`{"components":{"schemas":{"X":{"type":"string"},"Y":{"type":"integer"}}}}`))
	}))
	defer srv.Close()

	r := newTestResolver(map[string]interface{}{}, "")
	ctx := context.Background()

	_, err := r.Dereference(ctx, map[string]interface{}{"$ref": srv.URL + "/ext.json#/components/schemas/X"})
	require.NoError(t, err)
	_, err = r.Dereference(ctx, map[string]interface{}{"$ref": srv.URL + "/ext.json#/components/schemas/Y"})
	require.NoError(t, err)

	assert.Equal(t, 1, fetches)
}

func TestDereference_UnreachableExternalDocumentFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	r := newTestResolver(map[string]interface{}{}, "")
	_, err := r.Dereference(context.Background(), map[string]interface{}{
		"$ref": srv.URL + "/missing.json#/a",
	})
	assert.Error(t, err)
}

func TestDereference_MaxDepth(t *testing.T) {
	deep := map[string]interface{}{
		"a": map[string]interface{}{
			"b": map[string]interface{}{
				"c": map[string]interface{}{"d": "e"},
			},
		},
	}
	r := NewResolver(NewDocumentLoader(), NewParser(), deep, "", 2)

	_, err := r.Dereference(context.Background(), deep)
	assert.Error(t, err)
}

func TestResolver_CloseDropsCache(t *testing.T) {
	doc := map[string]interface{}{
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Pet": map[string]interface{}{"type": "object"},
			},
		},
	}
	r := newTestResolver(doc, "")
	ctx := context.Background()

	node := map[string]interface{}{"$ref": "#/components/schemas/Pet"}
	first, err := r.Dereference(ctx, node)
	require.NoError(t, err)

	r.Close()

	second, err := r.Dereference(ctx, node)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotEqual(t, reflect.ValueOf(first).Pointer(), reflect.ValueOf(second).Pointer())
}
