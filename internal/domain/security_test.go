package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecuritySchemeFromNode(t *testing.T) {
	s, err := SecuritySchemeFromNode(map[string]interface{}{
		"type":   "http",
		"scheme": "bearer",
	})
	require.NoError(t, err)
	assert.Equal(t, SecurityHTTP, s.Type)
	assert.Equal(t, "bearer", s.Scheme)

	s, err = SecuritySchemeFromNode(map[string]interface{}{
		"type": "apiKey",
		"name": "X-Api-Key",
		"in":   "header",
	})
	require.NoError(t, err)
	assert.Equal(t, SecurityAPIKey, s.Type)
	assert.Equal(t, "X-Api-Key", s.Name)
	assert.Equal(t, InHeader, s.In)

	_, err = SecuritySchemeFromNode(map[string]interface{}{"type": "mutualTLS"})
	assert.Error(t, err)

	_, err = SecuritySchemeFromNode([]interface{}{})
	assert.Error(t, err)
}

func TestSecurityRequirementsFromNode(t *testing.T) {
	reqs := SecurityRequirementsFromNode([]interface{}{
		map[string]interface{}{"oauth2": []interface{}{"read", "write"}},
		map[string]interface{}{"api_key": []interface{}{}},
		"malformed entry",
	})

	require.Len(t, reqs, 2)
	assert.Equal(t, SecurityRequirement{"oauth2": {"read", "write"}}, reqs[0])
	assert.Equal(t, SecurityRequirement{"api_key": nil}, reqs[1])

	assert.Nil(t, SecurityRequirementsFromNode(nil))
	assert.Nil(t, SecurityRequirementsFromNode("not a list"))
}
