package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterDefaults(t *testing.T) {
	query := &Parameter{Name: "q", In: InQuery}
	assert.Equal(t, "form", query.EffectiveStyle())
	assert.True(t, query.EffectiveExplode())

	path := &Parameter{Name: "id", In: InPath}
	assert.Equal(t, "simple", path.EffectiveStyle())
	assert.False(t, path.EffectiveExplode())

	header := &Parameter{Name: "X-Id", In: InHeader}
	assert.Equal(t, "simple", header.EffectiveStyle())
	assert.False(t, header.EffectiveExplode())

	cookie := &Parameter{Name: "session", In: InCookie}
	assert.Equal(t, "form", cookie.EffectiveStyle())
	assert.True(t, cookie.EffectiveExplode())
}

func TestParameterExplodeOverride(t *testing.T) {
	no := false
	p := &Parameter{Name: "q", In: InQuery, Explode: &no}
	assert.False(t, p.EffectiveExplode())

	yes := true
	p = &Parameter{Name: "id", In: InPath, Explode: &yes}
	assert.True(t, p.EffectiveExplode())
}

func TestParameterFromNode(t *testing.T) {
	p, err := ParameterFromNode(map[string]interface{}{
		"name":     "filter",
		"in":       "query",
		"style":    "deepObject",
		"explode":  true,
		"required": true,
		"schema":   map[string]interface{}{"type": "object"},
	})
	require.NoError(t, err)
	assert.Equal(t, "filter", p.Name)
	assert.Equal(t, InQuery, p.In)
	assert.Equal(t, "deepObject", p.Style)
	require.NotNil(t, p.Explode)
	assert.True(t, *p.Explode)
	assert.True(t, p.Required)
	assert.Equal(t, map[string]interface{}{"type": "object"}, p.Schema)
}

func TestParameterFromNode_Invalid(t *testing.T) {
	_, err := ParameterFromNode("not a map")
	assert.Error(t, err)

	_, err = ParameterFromNode(map[string]interface{}{"in": "query"})
	assert.Error(t, err, "name is required")

	_, err = ParameterFromNode(map[string]interface{}{"name": "x", "in": "body"})
	assert.Error(t, err, "body is not a valid OpenAPI 3 location")
}
