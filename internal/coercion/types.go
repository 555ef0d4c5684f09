package coercion

import (
	"fmt"

	language "github.com/hanpama/gqlcoerce/internal/language"
)

// InputType is the closed set of input type shapes coercion dispatches on:
// *OptionalType, *ListType, *ObjectType, *ScalarType and *EnumType.
type InputType interface {
	inputType()
}

// OptionalType marks a position where absence and null are legal.
// Positions not wrapped by OptionalType are non-null.
type OptionalType struct {
	OfType InputType
}

// ListType is a sequence of OfType. A single non-list value is accepted and
// wrapped as a one-element list.
type ListType struct {
	OfType InputType
}

// ObjectType is an input object with fields in declaration order.
type ObjectType struct {
	Name   string
	Fields []*InputField
}

type InputField struct {
	Name         string
	Type         InputType
	DefaultValue *language.Value
}

// ScalarType coerces leaf values. CoerceRaw receives a normalized primitive
// (string, bool, int64 or float64) read from external input; CoerceLiteral
// receives the query literal.
type ScalarType struct {
	Name          string
	CoerceRaw     func(value any) (any, error)
	CoerceLiteral func(value *language.Value) (any, error)
}

// EnumType accepts one of a fixed set of names. Coerced enum values are the
// value names as strings.
type EnumType struct {
	Name   string
	Values []string
}

func (*OptionalType) inputType() {}
func (*ListType) inputType()     {}
func (*ObjectType) inputType()   {}
func (*ScalarType) inputType()   {}
func (*EnumType) inputType()     {}

func (t *OptionalType) String() string { return RenderType(t) }
func (t *ListType) String() string     { return RenderType(t) }
func (t *ObjectType) String() string   { return RenderType(t) }
func (t *ScalarType) String() string   { return RenderType(t) }
func (t *EnumType) String() string     { return RenderType(t) }

// Optional wraps t unless it is already optional.
func Optional(t InputType) InputType {
	if _, ok := t.(*OptionalType); ok {
		return t
	}
	return &OptionalType{OfType: t}
}

func ListOf(t InputType) *ListType { return &ListType{OfType: t} }

// Field looks up a declared field by name.
func (t *ObjectType) Field(name string) *InputField {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// CoerceUserInput accepts a string naming one of the enum values.
func (t *EnumType) CoerceUserInput(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("Enum %q cannot represent non-string value: %v", t.Name, value)
	}
	for _, v := range t.Values {
		if v == s {
			return s, nil
		}
	}
	return nil, fmt.Errorf("Value %q does not exist in %q enum", s, t.Name)
}

// CoerceLiteral accepts only unquoted enum literals.
func (t *EnumType) CoerceLiteral(value *language.Value) (any, error) {
	if value.Kind != language.EnumValue {
		return nil, fmt.Errorf("Enum %q cannot represent non-enum value: %s", t.Name, value.String())
	}
	return t.CoerceUserInput(value.Raw)
}

// RenderType renders t in GraphQL notation. Non-optional positions carry the
// "!" suffix: ListOf(Optional(Int)) renders as "[Int]!".
func RenderType(t InputType) string {
	if o, ok := t.(*OptionalType); ok {
		return renderBare(o.OfType)
	}
	return renderBare(t) + "!"
}

func renderBare(t InputType) string {
	switch t := t.(type) {
	case *OptionalType:
		return renderBare(t.OfType)
	case *ListType:
		return "[" + RenderType(t.OfType) + "]"
	case *ObjectType:
		return t.Name
	case *ScalarType:
		return t.Name
	case *EnumType:
		return t.Name
	default:
		return "<invalid>"
	}
}

// isOptional reports whether absence is legal at a position of type t.
func isOptional(t InputType) bool {
	_, ok := t.(*OptionalType)
	return ok
}
