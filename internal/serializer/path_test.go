package serializer

import (
	"testing"

	"github.com/miorlan/openapi-invoker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPathParam(t *testing.T) {
	tests := []struct {
		name  string
		param *domain.Parameter
		value interface{}
		want  string
	}{
		{
			name:  "simple scalar",
			param: &domain.Parameter{Name: "id", In: domain.InPath},
			value: "foxfriends",
			want:  "foxfriends",
		},
		{
			name:  "simple array",
			param: &domain.Parameter{Name: "id", In: domain.InPath},
			value: []interface{}{3, 4, 5},
			want:  "3,4,5",
		},
		{
			name:  "label scalar",
			param: &domain.Parameter{Name: "id", In: domain.InPath, Style: "label"},
			value: 5,
			want:  ".5",
		},
		{
			name:  "matrix scalar",
			param: &domain.Parameter{Name: "id", In: domain.InPath, Style: "matrix"},
			value: 5,
			want:  ";id=5",
		},
		{
			name:  "matrix array exploded",
			param: &domain.Parameter{Name: "id", In: domain.InPath, Style: "matrix", Explode: boolPtr(true)},
			value: []interface{}{3, 4, 5},
			want:  ";id=3;id=4;id=5",
		},
		{
			name:  "simple object exploded",
			param: &domain.Parameter{Name: "point", In: domain.InPath, Explode: boolPtr(true)},
			value: map[string]interface{}{"x": 1, "y": 2},
			want:  "x=1,y=2",
		},
		{
			name:  "scalar is percent encoded",
			param: &domain.Parameter{Name: "id", In: domain.InPath},
			value: "a/b",
			want:  "a%2Fb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPathParam(tt.param, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubstitutePath(t *testing.T) {
	param := &domain.Parameter{Name: "id", In: domain.InPath}
	got, err := SubstitutePath("/users/{id}/pets", param, "foxfriends")
	require.NoError(t, err)
	assert.Equal(t, "/users/foxfriends/pets", got)
}
