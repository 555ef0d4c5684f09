package input

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONKeepsNumbers(t *testing.T) {
	v, err := DecodeJSON(strings.NewReader(`{"i": 9007199254740993, "f": 1.5, "e": 1e3}`))
	require.NoError(t, err)

	r := JSON{}
	i, ok := r.MapField(v, "i")
	require.True(t, ok)
	require.IsType(t, json.Number(""), i)
	require.Equal(t, int64(9007199254740993), r.ScalarValue(i))

	f, _ := r.MapField(v, "f")
	require.Equal(t, 1.5, r.ScalarValue(f))

	e, _ := r.MapField(v, "e")
	require.Equal(t, float64(1000), r.ScalarValue(e))
}

func TestDecodeJSONInvalid(t *testing.T) {
	for _, src := range []string{
		`{"a":`,
		`{"a":1} garbage`,
		`{"a":1} {"b":2}`,
		`[1] ]`,
	} {
		_, err := DecodeJSONBytes([]byte(src))
		require.Error(t, err, src)
	}
}

func TestDecodeJSONTrailingWhitespace(t *testing.T) {
	v, err := DecodeJSONBytes([]byte("{\"a\": 1}\n\t "))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": json.Number("1")}, v)
}

func TestJSONShapes(t *testing.T) {
	v, err := DecodeJSONBytes([]byte(`{"s":"x","b":true,"n":null,"a":[1,null],"m":{}}`))
	require.NoError(t, err)
	r := JSON{}

	for _, tc := range []struct {
		field                     string
		defined, arr, obj, scalar bool
	}{
		{"s", true, false, false, true},
		{"b", true, false, false, true},
		{"n", false, false, false, false},
		{"a", true, true, false, false},
		{"m", true, false, true, false},
	} {
		t.Run(tc.field, func(t *testing.T) {
			node, ok := r.RootField(v, tc.field)
			require.True(t, ok)
			require.Equal(t, tc.defined, r.IsDefined(node))
			require.Equal(t, tc.arr, r.IsArrayNode(node))
			require.Equal(t, tc.obj, r.IsMapNode(node))
			require.Equal(t, tc.scalar, r.IsScalarNode(node))
		})
	}

	a, _ := r.MapField(v, "a")
	elems := r.ArrayElements(a)
	require.Len(t, elems, 2)
	require.False(t, r.IsDefined(elems[1]))

	_, ok := r.MapField(v, "missing")
	require.False(t, ok)
	_, ok = r.MapField("not a map", "s")
	require.False(t, ok)
}

func TestJSONRender(t *testing.T) {
	r := JSON{}
	require.Equal(t, `"x"`, r.Render("x"))
	require.Equal(t, `[1,"a"]`, r.Render([]any{json.Number("1"), "a"}))
	require.Equal(t, `null`, r.Render(nil))
}
