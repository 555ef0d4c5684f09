package coercion

import language "github.com/hanpama/gqlcoerce/internal/language"

// CoerceRaw converts a raw external value to an internal value of type t.
//
// present is false when the value was legitimately absent under an optional
// type. On failure err is a Violations listing every problem found in the
// value tree. Callers normally check IsValid first; CoerceRaw succeeds exactly
// when IsValid reports true.
func CoerceRaw[N any](r Reader[N], t InputType, path language.Path, v N) (value any, present bool, err error) {
	value, present, errs := coerceRaw(r, t, path, v)
	value, present, errs = resolveNull(t, path, positionOf(r, v), value, present, errs)
	return value, present, errs.err()
}

func coerceRaw[N any](r Reader[N], t InputType, path language.Path, v N) (any, bool, Violations) {
	if !r.IsDefined(v) {
		return nil, false, nil
	}

	switch t := t.(type) {
	case *OptionalType:
		return coerceRaw(r, t.OfType, path, v)

	case *ListType:
		if !r.IsArrayNode(v) {
			return wrapSingleton(coerceRaw(r, t.OfType, path, v))
		}
		elems := r.ArrayElements(v)
		steps := make([]stepFunc, len(elems))
		for i, elem := range elems {
			p := appendPath(path, language.PathIndex(i))
			steps[i] = func() (any, bool, Violations) {
				value, present, errs := coerceRaw(r, t.OfType, p, elem)
				return resolveNull(t.OfType, p, positionOf(r, elem), value, present, errs)
			}
		}
		return assembleList(steps)

	case *ObjectType:
		if !r.IsMapNode(v) {
			return mismatch(t, path, positionOf(r, v), r.Render(v))
		}
		return assembleObject(t.Fields, func(f *InputField) (any, bool, Violations) {
			p := appendPath(path, language.PathName(f.Name))
			fv, ok := r.MapField(v, f.Name)
			if !(ok && r.IsDefined(fv)) && f.DefaultValue != nil {
				value, present, errs := coerceLiteral(f.Type, p, f.DefaultValue, nil)
				return resolveNull(f.Type, p, f.DefaultValue.Position, value, present, errs)
			}
			if !ok {
				return resolveNull(f.Type, p, positionOf(r, v), nil, false, nil)
			}
			value, present, errs := coerceRaw(r, f.Type, p, fv)
			return resolveNull(f.Type, p, positionOf(r, fv), value, present, errs)
		})

	case *ScalarType:
		if !r.IsScalarNode(v) {
			return mismatch(t, path, positionOf(r, v), r.Render(v))
		}
		value, err := t.coerceRaw(r.ScalarValue(v))
		return leafResult(path, positionOf(r, v), value, err)

	case *EnumType:
		if !r.IsScalarNode(v) {
			return mismatch(t, path, positionOf(r, v), r.Render(v))
		}
		value, err := t.CoerceUserInput(r.ScalarValue(v))
		return leafResult(path, positionOf(r, v), value, err)

	default:
		return mismatch(t, path, positionOf(r, v), r.Render(v))
	}
}
