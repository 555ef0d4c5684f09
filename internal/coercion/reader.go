package coercion

import language "github.com/hanpama/gqlcoerce/internal/language"

// Reader abstracts over the representation of externally supplied values so
// coercion never depends on a concrete wire format. N is the node type of the
// representation (a decoded JSON tree, a YAML node, a protobuf Value, ...).
//
// Absence is expressed by nodes for which IsDefined reports false; explicit
// nulls are not defined either.
type Reader[N any] interface {
	IsDefined(node N) bool
	IsArrayNode(node N) bool
	IsMapNode(node N) bool
	IsScalarNode(node N) bool

	// ArrayElements returns the elements of an array node; elements may be
	// undefined.
	ArrayElements(node N) []N
	// MapField returns the value of a map entry and whether the key exists.
	MapField(node N, name string) (N, bool)
	// ScalarValue returns the primitive held by a scalar node, normalized to
	// string, bool, int64 or float64.
	ScalarValue(node N) any
	// RootField returns a variable value from the root of the variables payload.
	RootField(root N, name string) (N, bool)
	// Render formats a node for error messages.
	Render(node N) string
}

// PositionReader is implemented by readers whose nodes carry source
// positions. Violations raised on such nodes are located.
type PositionReader[N any] interface {
	Position(node N) *language.Position
}

func positionOf[N any](r Reader[N], node N) *language.Position {
	if pr, ok := r.(PositionReader[N]); ok {
		return pr.Position(node)
	}
	return nil
}
