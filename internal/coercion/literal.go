package coercion

import (
	"fmt"
	"strconv"

	language "github.com/hanpama/gqlcoerce/internal/language"
)

// CoerceLiteral converts a query literal to an internal value of type t.
//
// Variable references are replaced by their entry in vars, which holds values
// already coerced by GetVariableValues; a missing entry means the variable is
// absent. Bound values are not re-validated: the query is assumed to have
// passed validation, which checks variable usage against the declared types.
func CoerceLiteral(t InputType, path language.Path, lit *language.Value, vars map[string]any) (value any, present bool, err error) {
	value, present, errs := coerceLiteral(t, path, lit, vars)
	value, present, errs = resolveNull(t, path, literalPosition(lit, nil), value, present, errs)
	return value, present, errs.err()
}

func coerceLiteral(t InputType, path language.Path, lit *language.Value, vars map[string]any) (any, bool, Violations) {
	if lit == nil || lit.Kind == language.NullValue {
		return nil, false, nil
	}
	if lit.Kind == language.Variable {
		v, ok := vars[lit.Raw]
		if !ok || v == nil {
			return nil, false, nil
		}
		return v, true, nil
	}

	switch t := t.(type) {
	case *OptionalType:
		return coerceLiteral(t.OfType, path, lit, vars)

	case *ListType:
		if lit.Kind != language.ListValue {
			return wrapSingleton(coerceLiteral(t.OfType, path, lit, vars))
		}
		steps := make([]stepFunc, len(lit.Children))
		for i, child := range lit.Children {
			p := appendPath(path, language.PathIndex(i))
			steps[i] = func() (any, bool, Violations) {
				value, present, errs := coerceLiteral(t.OfType, p, child.Value, vars)
				return resolveNull(t.OfType, p, literalPosition(child.Value, lit), value, present, errs)
			}
		}
		return assembleList(steps)

	case *ObjectType:
		if lit.Kind != language.ObjectValue {
			return mismatch(t, path, lit.Position, lit.String())
		}
		given := firstOccurrences(lit.Children)
		return assembleObject(t.Fields, func(f *InputField) (any, bool, Violations) {
			p := appendPath(path, language.PathName(f.Name))
			child, ok := given[f.Name]
			if (!ok || isAbsentLiteral(child.Value, vars)) && f.DefaultValue != nil {
				value, present, errs := coerceLiteral(f.Type, p, f.DefaultValue, nil)
				return resolveNull(f.Type, p, f.DefaultValue.Position, value, present, errs)
			}
			if !ok {
				return resolveNull(f.Type, p, lit.Position, nil, false, nil)
			}
			value, present, errs := coerceLiteral(f.Type, p, child.Value, vars)
			return resolveNull(f.Type, p, literalPosition(child.Value, lit), value, present, errs)
		})

	case *ScalarType:
		if !isScalarLiteral(lit) {
			return mismatch(t, path, lit.Position, lit.String())
		}
		value, err := t.coerceLiteral(lit)
		return leafResult(path, lit.Position, value, err)

	case *EnumType:
		if !isScalarLiteral(lit) {
			return mismatch(t, path, lit.Position, lit.String())
		}
		value, err := t.CoerceLiteral(lit)
		return leafResult(path, lit.Position, value, err)

	default:
		return mismatch(t, path, lit.Position, lit.String())
	}
}

// firstOccurrences indexes object literal fields by name. When a name is
// repeated the first occurrence wins.
func firstOccurrences(children language.ChildValueList) map[string]*language.ChildValue {
	out := make(map[string]*language.ChildValue, len(children))
	for _, c := range children {
		if _, seen := out[c.Name]; !seen {
			out[c.Name] = c
		}
	}
	return out
}

// isAbsentLiteral reports whether lit is null or a variable with no value.
func isAbsentLiteral(lit *language.Value, vars map[string]any) bool {
	if lit == nil || lit.Kind == language.NullValue {
		return true
	}
	if lit.Kind != language.Variable {
		return false
	}
	v, ok := vars[lit.Raw]
	return !ok || v == nil
}

func isScalarLiteral(lit *language.Value) bool {
	return lit.Kind != language.ListValue && lit.Kind != language.ObjectValue
}

// literalPosition returns the position of lit, falling back to its parent.
func literalPosition(lit, parent *language.Value) *language.Position {
	if lit != nil && lit.Position != nil {
		return lit.Position
	}
	if parent != nil {
		return parent.Position
	}
	return nil
}

// literalToGo converts a scalar literal without a declared type.
// Integers become int64 and floats float64, matching what readers produce
// for raw input.
func literalToGo(lit *language.Value) (any, error) {
	if lit == nil {
		return nil, nil
	}
	switch lit.Kind {
	case language.IntValue:
		return strconv.ParseInt(lit.Raw, 10, 64)
	case language.FloatValue:
		return strconv.ParseFloat(lit.Raw, 64)
	case language.StringValue, language.BlockValue, language.EnumValue:
		return lit.Raw, nil
	case language.BooleanValue:
		return lit.Raw == "true", nil
	case language.NullValue:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported literal %s", lit.String())
	}
}
