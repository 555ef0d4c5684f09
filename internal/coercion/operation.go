package coercion

import (
	"fmt"

	language "github.com/hanpama/gqlcoerce/internal/language"
	schema "github.com/hanpama/gqlcoerce/internal/schema"
)

// OperationInput is the coerced input of one operation: its variables and the
// arguments of every root field, keyed by response name.
type OperationInput struct {
	Variables map[string]any `json:"variables"`
	Arguments map[string]any `json:"arguments"`
}

// CoerceOperation binds the variables of op from root and then coerces the
// arguments of the root fields selected by op, following fragments. Fields
// and fragments excluded by @skip or @include are not coerced. The document
// must have passed validation against s.
//
// Variable violations stop before arguments are looked at. Argument
// violations of all root fields are collected. Both are returned as
// Violations.
func CoerceOperation[N any](cat *SchemaCatalog, s *schema.Schema, doc *language.QueryDocument, op *language.OperationDefinition, r Reader[N], root N) (*OperationInput, error) {
	vars, err := GetVariableValues(cat, r, op.VariableDefinitions, root)
	if err != nil {
		return nil, err
	}

	rootType := s.RootType(op.Operation)
	if rootType == nil {
		return nil, fmt.Errorf("schema does not support %s operations", op.Operation)
	}

	args := make(map[string]any)
	var errs Violations
	for _, f := range rootFields(doc, op.SelectionSet, vars) {
		def := rootType.FieldByName(f.Name)
		if def == nil {
			// Introspection fields are not part of the schema.
			continue
		}
		coerced, err := CoerceFieldArguments(cat, def, f, vars)
		if err != nil {
			vs, ok := err.(Violations)
			if !ok {
				return nil, err
			}
			errs = append(errs, vs...)
			continue
		}
		if _, seen := args[f.Alias]; !seen {
			args[f.Alias] = coerced
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return &OperationInput{Variables: vars, Arguments: args}, nil
}

// rootFields flattens a selection set through inline fragments and fragment
// spreads, in document order. A response name may appear more than once.
func rootFields(doc *language.QueryDocument, set language.SelectionSet, vars map[string]any) []*language.Field {
	var out []*language.Field
	visited := make(map[string]bool)
	var walk func(language.SelectionSet)
	walk = func(set language.SelectionSet) {
		for _, sel := range set {
			switch sel := sel.(type) {
			case *language.Field:
				if included(sel.Directives, vars) {
					out = append(out, sel)
				}
			case *language.InlineFragment:
				if included(sel.Directives, vars) {
					walk(sel.SelectionSet)
				}
			case *language.FragmentSpread:
				if visited[sel.Name] || !included(sel.Directives, vars) {
					continue
				}
				visited[sel.Name] = true
				if frag := doc.Fragments.ForName(sel.Name); frag != nil {
					walk(frag.SelectionSet)
				}
			}
		}
	}
	walk(set)
	return out
}

// included evaluates @skip and @include. A selection is kept unless
// @skip(if: true) or @include(if: false) applies.
func included(dirs language.DirectiveList, vars map[string]any) bool {
	if d := dirs.ForName("skip"); d != nil && directiveCondition(d, vars) {
		return false
	}
	if d := dirs.ForName("include"); d != nil && !directiveCondition(d, vars) {
		return false
	}
	return true
}

func directiveCondition(d *language.Directive, vars map[string]any) bool {
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false
	}
	v, present, errs := coerceLiteral(BooleanScalar, nil, arg.Value, vars)
	if len(errs) > 0 || !present {
		return false
	}
	b, _ := v.(bool)
	return b
}
