package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// Error is the located error type produced by the parser and validator.
type Error = gqlerror.Error

// ErrorList is a list of located errors.
type ErrorList = gqlerror.List

// ValidatedSchema is the gqlparser schema used for query validation.
type ValidatedSchema = ast.Schema

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates SDL, merging the gqlparser prelude
// (builtin scalars and directives).
func LoadSchema(name, source string) (*ValidatedSchema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ValidateQuery runs the standard query validation rules. Coercion assumes the
// document has passed these.
func ValidateQuery(s *ValidatedSchema, doc *QueryDocument) ErrorList {
	return validator.Validate(s, doc)
}

// SelectOperation returns the named operation, or the only operation when name
// is empty.
func SelectOperation(doc *QueryDocument, name string) *OperationDefinition {
	if name == "" && len(doc.Operations) == 1 {
		return doc.Operations[0]
	}
	for _, op := range doc.Operations {
		if op.Name == name {
			return op
		}
	}
	return nil
}
