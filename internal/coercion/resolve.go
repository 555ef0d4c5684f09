package coercion

import language "github.com/hanpama/gqlcoerce/internal/language"

// A coercion step yields a value, whether the value is present, and the
// violations found. Present is false when the input was legitimately absent.
type stepFunc func() (any, bool, Violations)

func appendPath(path language.Path, elem language.PathElement) language.Path {
	newPath := make(language.Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

// resolveNull applies the null-resolution rule to the result of coercing a
// child of type t: violations propagate unchanged, absence is accepted under
// an optional type and is a NullForNonNullType violation otherwise.
func resolveNull(t InputType, path language.Path, pos *language.Position, value any, present bool, errs Violations) (any, bool, Violations) {
	if len(errs) > 0 {
		return nil, false, errs
	}
	if present {
		return value, true, nil
	}
	if isOptional(t) {
		return nil, false, nil
	}
	return nil, false, Violations{&NullForNonNullType{FieldPath: path, TypeName: RenderType(t), Pos: pos}}
}

// assembleList runs every element step and concatenates all element
// violations in element order. Absent elements are nil at their index.
func assembleList(elems []stepFunc) (any, bool, Violations) {
	out := make([]any, len(elems))
	var errs Violations
	for i, elem := range elems {
		v, _, verrs := elem()
		if len(verrs) > 0 {
			errs = append(errs, verrs...)
			continue
		}
		out[i] = v
	}
	if len(errs) > 0 {
		return nil, false, errs
	}
	return out, true, nil
}

// assembleObject runs every field step in declaration order, keeping fields
// that resolved to a present value and collecting all violations.
func assembleObject(fields []*InputField, step func(f *InputField) (any, bool, Violations)) (any, bool, Violations) {
	out := make(map[string]any, len(fields))
	var errs Violations
	for _, f := range fields {
		v, present, verrs := step(f)
		if len(verrs) > 0 {
			errs = append(errs, verrs...)
			continue
		}
		if present {
			out[f.Name] = v
		}
	}
	if len(errs) > 0 {
		return nil, false, errs
	}
	return out, true, nil
}

// wrapSingleton wraps a single coerced value as a one-element list.
func wrapSingleton(value any, present bool, errs Violations) (any, bool, Violations) {
	if len(errs) > 0 {
		return nil, false, errs
	}
	if !present {
		return nil, false, nil
	}
	return []any{value}, true, nil
}

func leafResult(path language.Path, pos *language.Position, value any, err error) (any, bool, Violations) {
	if err != nil {
		return nil, false, Violations{&FieldCoercion{FieldPath: path, Err: err, Pos: pos}}
	}
	return value, true, nil
}

func mismatch(t InputType, path language.Path, pos *language.Position, rendered string) (any, bool, Violations) {
	return nil, false, Violations{&InputObjectTypeMismatch{FieldPath: path, TypeName: RenderType(t), Value: rendered, Pos: pos}}
}
