package schema

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	language "github.com/hanpama/gqlcoerce/internal/language"
)

// BuildFromSDL parses and validates SDL and returns the corresponding Schema.
// A `schema { query: Query }` definition is implied when missing.
func BuildFromSDL(name, sdl string) (*Schema, error) {
	v, err := language.LoadSchema(name, sdl)
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, err)
	}
	return BuildFromValidated(v)
}

// BuildFromValidated builds the catalog from an already validated gqlparser
// schema. Introspection types are skipped.
func BuildFromValidated(v *ast.Schema) (*Schema, error) {
	s := NewSchema(v.Description)
	s.Validated = v
	if v.Query != nil {
		s.SetQueryType(v.Query.Name)
	}
	if v.Mutation != nil {
		s.SetMutationType(v.Mutation.Name)
	}
	if v.Subscription != nil {
		s.SetSubscriptionType(v.Subscription.Name)
	}

	for name, def := range v.Types {
		if strings.HasPrefix(name, "__") || IsBuiltinScalar(name) {
			continue
		}
		switch def.Kind {
		case ast.Object, ast.Interface:
			s.AddType(buildObject(def))
		case ast.Enum:
			s.AddType(buildEnum(def))
		case ast.InputObject:
			s.AddType(buildInput(def))
		case ast.Scalar:
			s.AddType(buildScalar(def))
		case ast.Union:
			s.AddType(NewType(def.Name, TypeKindUnion, def.Description))
		default:
			return nil, fmt.Errorf("type %s has unsupported kind %s", def.Name, def.Kind)
		}
	}
	return s, nil
}

func buildObject(def *ast.Definition) *Type {
	kind := TypeKindObject
	if def.Kind == ast.Interface {
		kind = TypeKindInterface
	}
	t := NewType(def.Name, kind, def.Description)
	for _, fd := range def.Fields {
		if strings.HasPrefix(fd.Name, "__") {
			continue
		}
		f := NewField(fd.Name, fd.Description, TypeRefFromAST(fd.Type))
		for _, arg := range fd.Arguments {
			in := NewInputValue(arg.Name, arg.Description, TypeRefFromAST(arg.Type))
			in.DefaultValue = arg.DefaultValue
			f.AddArgument(in)
		}
		t.AddField(f)
	}
	return t
}

func buildEnum(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindEnum, def.Description)
	for _, ev := range def.EnumValues {
		v := NewEnumValue(ev.Name, ev.Description)
		if d := ev.Directives.ForName("deprecated"); d != nil {
			reason := ""
			if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
				reason = arg.Value.Raw
			}
			v.Deprecate(reason)
		}
		t.AddEnumValue(v)
	}
	return t
}

func buildInput(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindInputObject, def.Description).
		SetOneOf(def.Directives.ForName("oneOf") != nil)
	for _, fd := range def.Fields {
		in := NewInputValue(fd.Name, fd.Description, TypeRefFromAST(fd.Type))
		in.DefaultValue = fd.DefaultValue
		t.AddInputField(in)
	}
	return t
}

func buildScalar(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindScalar, def.Description)
	if d := def.Directives.ForName("specifiedBy"); d != nil {
		if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
			url := arg.Value.Raw
			t.SpecifiedByURL = &url
		}
	}
	return t
}
