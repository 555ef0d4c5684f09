package coercion

import (
	"fmt"
	"strings"

	language "github.com/hanpama/gqlcoerce/internal/language"
)

// Violation describes one way an input fails to match its declared type.
// The concrete types are *UnknownVariableType, *VarTypeMismatch,
// *NullForNonNullType, *FieldCoercion and *InputObjectTypeMismatch.
type Violation interface {
	error
	// Path locates the offending value from the variable or argument root.
	Path() language.Path
	// Position is the source position of the offending literal or raw node,
	// or nil when unknown.
	Position() *language.Position
	violation()
}

// Violations is the aggregated failure of a coercion call.
type Violations []Violation

func (vs Violations) Error() string {
	if len(vs) == 1 {
		return vs[0].Error()
	}
	var b strings.Builder
	b.WriteString("violations found:\n")
	for _, v := range vs {
		b.WriteString("- ")
		b.WriteString(v.Error())
		if pos := v.Position(); pos != nil {
			fmt.Fprintf(&b, " %d:%d", pos.Line, pos.Column)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// err returns vs as an error, or nil when empty.
func (vs Violations) err() error {
	if len(vs) == 0 {
		return nil
	}
	return vs
}

type UnknownVariableType struct {
	Variable string
	TypeName string
}

type VarTypeMismatch struct {
	Variable string
	TypeName string
	Value    string
}

type NullForNonNullType struct {
	FieldPath language.Path
	TypeName  string
	Pos       *language.Position
}

// FieldCoercion wraps a scalar or enum coercion failure.
type FieldCoercion struct {
	FieldPath language.Path
	Err       error
	Pos       *language.Position
}

// InputObjectTypeMismatch reports a value whose shape does not fit the type at
// all, e.g. a list given for an input object.
type InputObjectTypeMismatch struct {
	FieldPath language.Path
	TypeName  string
	Value     string
	Pos       *language.Position
}

func (v *UnknownVariableType) Error() string {
	return fmt.Sprintf("Variable '$%s' expected value of type '%s' which cannot be used as an input type.", v.Variable, v.TypeName)
}

func (v *VarTypeMismatch) Error() string {
	return fmt.Sprintf("Variable '$%s' expected value of type '%s' but got: %s.", v.Variable, v.TypeName, v.Value)
}

func (v *NullForNonNullType) Error() string {
	return fmt.Sprintf("Null value was provided for the NotNull Type '%s' at path '%s'.", v.TypeName, v.FieldPath.String())
}

func (v *FieldCoercion) Error() string {
	return fmt.Sprintf("Field '%s' has wrong value: %v.", v.FieldPath.String(), v.Err)
}

func (v *InputObjectTypeMismatch) Error() string {
	return fmt.Sprintf("Value '%s' of wrong type was provided to the field of type '%s' at path '%s'.", v.Value, v.TypeName, v.FieldPath.String())
}

func (v *UnknownVariableType) Path() language.Path     { return variablePath(v.Variable) }
func (v *VarTypeMismatch) Path() language.Path         { return variablePath(v.Variable) }
func (v *NullForNonNullType) Path() language.Path      { return v.FieldPath }
func (v *FieldCoercion) Path() language.Path           { return v.FieldPath }
func (v *InputObjectTypeMismatch) Path() language.Path { return v.FieldPath }

func (v *UnknownVariableType) Position() *language.Position     { return nil }
func (v *VarTypeMismatch) Position() *language.Position         { return nil }
func (v *NullForNonNullType) Position() *language.Position      { return v.Pos }
func (v *FieldCoercion) Position() *language.Position           { return v.Pos }
func (v *InputObjectTypeMismatch) Position() *language.Position { return v.Pos }

func (v *FieldCoercion) Unwrap() error { return v.Err }

func (*UnknownVariableType) violation()     {}
func (*VarTypeMismatch) violation()         {}
func (*NullForNonNullType) violation()      {}
func (*FieldCoercion) violation()           {}
func (*InputObjectTypeMismatch) violation() {}

// Code is a stable machine-readable classification of v.
func Code(v Violation) string {
	switch v.(type) {
	case *UnknownVariableType:
		return "UNKNOWN_VARIABLE_TYPE"
	case *VarTypeMismatch:
		return "VARIABLE_TYPE_MISMATCH"
	case *NullForNonNullType:
		return "NULL_FOR_NON_NULL_TYPE"
	case *FieldCoercion:
		return "FIELD_COERCION"
	case *InputObjectTypeMismatch:
		return "INPUT_OBJECT_TYPE_MISMATCH"
	default:
		return "INVALID_INPUT"
	}
}

func variablePath(name string) language.Path {
	return language.Path{language.PathName("$" + name)}
}
