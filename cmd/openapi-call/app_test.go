package main

import (
	"testing"

	invoker "github.com/miorlan/openapi-invoker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"id=foxfriends", "limit=10", "verbose=true", "tags=[1,2]"})
	require.NoError(t, err)

	assert.Equal(t, "foxfriends", params["id"])
	assert.Equal(t, float64(10), params["limit"])
	assert.Equal(t, true, params["verbose"])
	assert.Equal(t, []interface{}{float64(1), float64(2)}, params["tags"])

	_, err = parseParams([]string{"no-equals"})
	assert.Error(t, err)
}

func TestParseHeaders(t *testing.T) {
	headers, err := parseHeaders([]string{"X-Request-Id: r-1", "Accept:application/json"})
	require.NoError(t, err)

	assert.Equal(t, "r-1", headers.Get("X-Request-Id"))
	assert.Equal(t, "application/json", headers.Get("Accept"))

	_, err = parseHeaders([]string{"no colon"})
	assert.Error(t, err)
}

func TestParseCredentials(t *testing.T) {
	creds, err := parseCredentials([]string{"bearer=tok"}, []string{"basic=user:pass"})
	require.NoError(t, err)

	assert.Equal(t, invoker.Credential{Token: "tok"}, creds["bearer"])
	assert.Equal(t, invoker.Credential{Username: "user", Password: "pass"}, creds["basic"])

	_, err = parseCredentials([]string{"bearer"}, nil)
	assert.Error(t, err)

	_, err = parseCredentials(nil, []string{"basic=userpass"})
	assert.Error(t, err)
}
