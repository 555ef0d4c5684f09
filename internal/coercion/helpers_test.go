package coercion_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlcoerce/internal/coercion"
	"github.com/hanpama/gqlcoerce/internal/input"
	language "github.com/hanpama/gqlcoerce/internal/language"
)

var (
	colorEnum = &coercion.EnumType{Name: "Color", Values: []string{"RED", "GREEN"}}

	pointType = &coercion.ObjectType{Name: "Point", Fields: []*coercion.InputField{
		{Name: "x", Type: coercion.IntScalar},
		{Name: "y", Type: coercion.Optional(coercion.IntScalar), DefaultValue: &language.Value{Kind: language.IntValue, Raw: "0"}},
	}}
)

type mapCatalog map[string]coercion.InputType

func (c mapCatalog) LookupInputType(name string) (coercion.InputType, bool) {
	t, ok := c[name]
	return t, ok
}

func testCatalog() mapCatalog {
	return mapCatalog{
		"Int":     coercion.IntScalar,
		"Float":   coercion.FloatScalar,
		"String":  coercion.StringScalar,
		"Boolean": coercion.BooleanScalar,
		"ID":      coercion.IDScalar,
		"Color":   colorEnum,
		"Point":   pointType,
	}
}

func mustJSON(t *testing.T, src string) any {
	t.Helper()
	v, err := input.DecodeJSONBytes([]byte(src))
	require.NoError(t, err)
	return v
}

// mustLiteral parses src as the value of a field argument.
func mustLiteral(t *testing.T, src string) *language.Value {
	t.Helper()
	doc, err := language.ParseQuery("{ f(v: " + src + ") }")
	require.NoError(t, err)
	field := doc.Operations[0].SelectionSet[0].(*language.Field)
	return field.Arguments[0].Value
}

// mustVariables parses the variable definitions of an operation header such as
// "($a: Int, $b: String!)".
func mustVariables(t *testing.T, header string) language.VariableDefinitionList {
	t.Helper()
	doc, err := language.ParseQuery("query Q" + header + " { f }")
	require.NoError(t, err)
	return doc.Operations[0].VariableDefinitions
}

func violationsOf(t *testing.T, err error) coercion.Violations {
	t.Helper()
	require.Error(t, err)
	vs, ok := err.(coercion.Violations)
	require.True(t, ok, "expected Violations, got %T", err)
	return vs
}

func path(elems ...any) language.Path {
	var p language.Path
	for _, e := range elems {
		switch e := e.(type) {
		case string:
			p = append(p, language.PathName(e))
		case int:
			p = append(p, language.PathIndex(e))
		}
	}
	return p
}
