package coercion_test

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlcoerce/internal/coercion"
	"github.com/hanpama/gqlcoerce/internal/input"
)

func TestGetVariableValues(t *testing.T) {
	defs := mustVariables(t, `($id: ID!, $limit: Int = 7, $colors: [Color!], $at: Point, $flag: Boolean)`)
	raw := mustJSON(t, `{"id": 12, "colors": "RED", "at": {"x": 3}, "flag": null}`)

	got, err := coercion.GetVariableValues(testCatalog(), input.JSON{}, defs, raw)
	require.NoError(t, err)

	want := map[string]any{
		"id":     "12",
		"limit":  7,
		"colors": []any{"RED"},
		"at":     map[string]any{"x": 3, "y": 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("variables mismatch (-want +got):\n%s", diff)
	}
}

func TestGetVariableValuesNullUsesDefault(t *testing.T) {
	defs := mustVariables(t, `($limit: Int = 7)`)
	got, err := coercion.GetVariableValues(testCatalog(), input.JSON{}, defs, mustJSON(t, `{"limit": null}`))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"limit": 7}, got)
}

func TestGetVariableValuesEmptyPayload(t *testing.T) {
	defs := mustVariables(t, `($limit: Int)`)
	got, err := coercion.GetVariableValues(testCatalog(), input.JSON{}, defs, nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestGetVariableValuesViolations(t *testing.T) {
	t.Run("UnknownTypeIsIsolated", func(t *testing.T) {
		defs := mustVariables(t, `($a: Int, $b: Widget, $c: [Widget!]!, $d: Int)`)
		raw := mustJSON(t, `{"a": 1, "b": {}, "d": "x"}`)

		_, err := coercion.GetVariableValues(testCatalog(), input.JSON{}, defs, raw)
		vs := violationsOf(t, err)
		require.Len(t, vs, 3)

		require.IsType(t, &coercion.UnknownVariableType{}, vs[0])
		require.EqualError(t, vs[0], "Variable '$b' expected value of type 'Widget' which cannot be used as an input type.")
		require.IsType(t, &coercion.UnknownVariableType{}, vs[1])
		require.EqualError(t, vs[1], "Variable '$c' expected value of type '[Widget!]!' which cannot be used as an input type.")
		require.IsType(t, &coercion.VarTypeMismatch{}, vs[2])
		require.Equal(t, path("$d"), vs[2].Path())
	})

	t.Run("MismatchRendersValue", func(t *testing.T) {
		defs := mustVariables(t, `($at: Point!)`)
		_, err := coercion.GetVariableValues(testCatalog(), input.JSON{}, defs, mustJSON(t, `{"at": {"x": "one"}}`))
		vs := violationsOf(t, err)
		require.Len(t, vs, 1)
		require.EqualError(t, vs[0], `Variable '$at' expected value of type 'Point!' but got: {"x":"one"}.`)
		require.Equal(t, "VARIABLE_TYPE_MISMATCH", coercion.Code(vs[0]))
	})

	t.Run("MissingRequired", func(t *testing.T) {
		defs := mustVariables(t, `($id: ID!)`)
		_, err := coercion.GetVariableValues(testCatalog(), input.JSON{}, defs, mustJSON(t, `{}`))
		vs := violationsOf(t, err)
		require.Len(t, vs, 1)
		require.EqualError(t, vs[0], "Variable '$id' expected value of type 'ID!' but got: undefined.")
	})

	t.Run("RequiredWithDefaultIsStillRequired", func(t *testing.T) {
		defs := mustVariables(t, `($n: Int! = 7)`)
		_, err := coercion.GetVariableValues(testCatalog(), input.JSON{}, defs, mustJSON(t, `{}`))
		vs := violationsOf(t, err)
		require.Len(t, vs, 1)
		require.IsType(t, &coercion.VarTypeMismatch{}, vs[0])
	})

	t.Run("DeclarationOrder", func(t *testing.T) {
		defs := mustVariables(t, `($z: Int!, $a: Int!, $m: Int!)`)
		_, err := coercion.GetVariableValues(testCatalog(), input.JSON{}, defs, mustJSON(t, `{}`))
		vs := violationsOf(t, err)
		require.Len(t, vs, 3)
		require.Equal(t, path("$z"), vs[0].Path())
		require.Equal(t, path("$a"), vs[1].Path())
		require.Equal(t, path("$m"), vs[2].Path())
	})

	t.Run("AllOrNothing", func(t *testing.T) {
		defs := mustVariables(t, `($ok: Int, $bad: Int)`)
		got, err := coercion.GetVariableValues(testCatalog(), input.JSON{}, defs, mustJSON(t, `{"ok": 1, "bad": true}`))
		require.Error(t, err)
		require.Nil(t, got)
	})
}

func TestGetVariableValuesInvalidDefault(t *testing.T) {
	defs := mustVariables(t, `($n: Int = "seven")`)
	_, err := coercion.GetVariableValues(testCatalog(), input.JSON{}, defs, mustJSON(t, `{}`))
	vs := violationsOf(t, err)
	require.Len(t, vs, 1)
	require.IsType(t, &coercion.FieldCoercion{}, vs[0])
	require.Equal(t, path("$n"), vs[0].Path())
	require.NotNil(t, vs[0].Position())
}

func TestGetVariableValuesConcurrent(t *testing.T) {
	cat := testCatalog()
	defs := mustVariables(t, `($ids: [ID!]!, $at: Point, $color: Color = RED)`)
	raw := mustJSON(t, `{"ids": [1, "2"], "at": {"x": 1, "y": 2}}`)
	want := map[string]any{
		"ids":   []any{"1", "2"},
		"at":    map[string]any{"x": 1, "y": 2},
		"color": "RED",
	}

	var wg sync.WaitGroup
	results := make([]map[string]any, 32)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = coercion.GetVariableValues(cat, input.JSON{}, defs, raw)
		}()
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		if diff := cmp.Diff(want, results[i]); diff != "" {
			t.Fatalf("result %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestResolveType(t *testing.T) {
	cat := testCatalog()
	for _, tc := range []struct{ header, want string }{
		{`($v: Int)`, "Int"},
		{`($v: Int!)`, "Int!"},
		{`($v: [Int!])`, "[Int!]"},
		{`($v: [[Point]!]!)`, "[[Point]!]!"},
	} {
		defs := mustVariables(t, tc.header)
		typ, ok := coercion.ResolveType(cat, defs[0].Type)
		require.True(t, ok)
		require.Equal(t, tc.want, coercion.RenderType(typ))
	}

	_, ok := coercion.ResolveType(cat, nil)
	require.False(t, ok)
}
