package coercion

import (
	"fmt"

	language "github.com/hanpama/gqlcoerce/internal/language"
	schema "github.com/hanpama/gqlcoerce/internal/schema"
)

// CoerceFieldArguments coerces the arguments written on a field selection
// against the field definition. The argument list is coerced as an object
// literal of the arguments' object type, so argument defaults, variable
// substitution and violation accumulation behave exactly as for input objects.
// Violation paths are rooted at the argument name.
func CoerceFieldArguments(cat *SchemaCatalog, def *schema.Field, field *language.Field, vars map[string]any) (map[string]any, error) {
	obj := &ObjectType{Name: def.Name, Fields: make([]*InputField, 0, len(def.Arguments))}
	for _, arg := range def.Arguments {
		t, ok := cat.InputTypeOf(arg.Type)
		if !ok {
			return nil, fmt.Errorf("argument %s.%s has non-input type %s", def.Name, arg.Name, arg.Type)
		}
		obj.Fields = append(obj.Fields, &InputField{Name: arg.Name, Type: t, DefaultValue: arg.DefaultValue})
	}

	lit := &language.Value{Kind: language.ObjectValue, Position: field.Position}
	for _, arg := range field.Arguments {
		lit.Children = append(lit.Children, &language.ChildValue{Name: arg.Name, Value: arg.Value, Position: arg.Position})
	}

	value, _, errs := coerceLiteral(obj, nil, lit, vars)
	if len(errs) > 0 {
		return nil, errs
	}
	return value.(map[string]any), nil
}
