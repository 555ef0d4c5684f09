package coercion

// IsValid reports whether the shape of a raw value matches t, recursively,
// without producing a value. ok is false when the value is absent.
// IsValid never mutates the type or the value.
func IsValid[N any](r Reader[N], t InputType, v N, ok bool) bool {
	return isValid(r, t, v, ok && r.IsDefined(v))
}

func isValid[N any](r Reader[N], t InputType, v N, defined bool) bool {
	switch t := t.(type) {
	case *OptionalType:
		if !defined {
			return true
		}
		return isValid(r, t.OfType, v, true)

	case *ListType:
		if !defined {
			return false
		}
		if r.IsArrayNode(v) {
			for _, elem := range r.ArrayElements(v) {
				if !isValid(r, t.OfType, elem, r.IsDefined(elem)) {
					return false
				}
			}
			return true
		}
		return isValid(r, t.OfType, v, true)

	case *ObjectType:
		if !defined || !r.IsMapNode(v) {
			return false
		}
		for _, f := range t.Fields {
			fv, ok := r.MapField(v, f.Name)
			fieldDefined := ok && r.IsDefined(fv)
			if !fieldDefined && f.DefaultValue != nil {
				continue
			}
			if !isValid(r, f.Type, fv, fieldDefined) {
				return false
			}
		}
		return true

	case *ScalarType:
		if !defined || !r.IsScalarNode(v) {
			return false
		}
		_, err := t.coerceRaw(r.ScalarValue(v))
		return err == nil

	case *EnumType:
		if !defined || !r.IsScalarNode(v) {
			return false
		}
		_, err := t.CoerceUserInput(r.ScalarValue(v))
		return err == nil

	default:
		return false
	}
}
