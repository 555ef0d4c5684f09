package coercion

import language "github.com/hanpama/gqlcoerce/internal/language"

// GetVariableValues coerces the raw variables payload root against the
// operation's variable definitions.
//
// Every definition is processed, in order, and all violations are collected.
// The result is all or nothing: either every variable is bound (variables that
// are legitimately absent get no entry) or the error is a Violations holding
// the problems of every failing variable, grouped in declaration order.
func GetVariableValues[N any](cat Catalog, r Reader[N], defs language.VariableDefinitionList, root N) (map[string]any, error) {
	coerced := make(map[string]any, len(defs))
	var errs Violations
	for _, def := range defs {
		value, present, verrs := bindVariable(cat, r, def, root)
		if len(verrs) > 0 {
			errs = append(errs, verrs...)
			continue
		}
		if present {
			coerced[def.Variable] = value
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return coerced, nil
}

func bindVariable[N any](cat Catalog, r Reader[N], def *language.VariableDefinition, root N) (any, bool, Violations) {
	t, ok := ResolveType(cat, def.Type)
	if !ok {
		return nil, false, Violations{&UnknownVariableType{Variable: def.Variable, TypeName: def.Type.String()}}
	}

	raw, ok := r.RootField(root, def.Variable)
	if !IsValid(r, t, raw, ok) {
		rendered := "undefined"
		if ok {
			rendered = r.Render(raw)
		}
		return nil, false, Violations{&VarTypeMismatch{Variable: def.Variable, TypeName: def.Type.String(), Value: rendered}}
	}

	path := variablePath(def.Variable)
	if !ok || !r.IsDefined(raw) {
		if def.DefaultValue == nil {
			return nil, false, nil
		}
		// Defaults are constant: they cannot reference other variables.
		value, present, errs := coerceLiteral(t, path, def.DefaultValue, nil)
		return resolveNull(t, path, def.DefaultValue.Position, value, present, errs)
	}
	value, present, errs := coerceRaw(r, t, path, raw)
	return resolveNull(t, path, positionOf(r, raw), value, present, errs)
}

// ResolveType resolves a type reference written in a query against cat.
// Positions not marked non-null become OptionalType.
func ResolveType(cat Catalog, t *language.Type) (InputType, bool) {
	if t == nil {
		return nil, false
	}
	var inner InputType
	if t.NamedType != "" {
		named, ok := cat.LookupInputType(t.NamedType)
		if !ok {
			return nil, false
		}
		inner = named
	} else {
		elem, ok := ResolveType(cat, t.Elem)
		if !ok {
			return nil, false
		}
		inner = ListOf(elem)
	}
	if t.NonNull {
		return inner, true
	}
	return Optional(inner), true
}
