package coercion

import (
	"fmt"

	schema "github.com/hanpama/gqlcoerce/internal/schema"
)

// Catalog resolves named input types. Implementations must not change after
// construction: coercion calls may run concurrently against one catalog.
type Catalog interface {
	// LookupInputType returns the named scalar, enum or input object type.
	// It reports false for unknown names and for output-only types.
	LookupInputType(name string) (InputType, bool)
}

// SchemaCatalog is a Catalog built from a schema. All input types are built
// up front, so lookups never mutate it.
type SchemaCatalog struct {
	types map[string]InputType
}

type CatalogOption func(*catalogOptions)

type catalogOptions struct {
	scalars map[string]*ScalarType
}

// WithScalar registers coercion for a custom scalar. Custom scalars without
// registered coercion pass scalar values through unchanged.
func WithScalar(s *ScalarType) CatalogOption {
	return func(o *catalogOptions) { o.scalars[s.Name] = s }
}

// NewCatalog builds the input types of s. Input objects may reference each
// other recursively.
func NewCatalog(s *schema.Schema, opts ...CatalogOption) (*SchemaCatalog, error) {
	o := catalogOptions{scalars: make(map[string]*ScalarType)}
	for _, sc := range builtinScalars() {
		o.scalars[sc.Name] = sc
	}
	for _, f := range opts {
		f(&o)
	}

	c := &SchemaCatalog{types: make(map[string]InputType)}
	var objects []*schema.Type
	for name, t := range s.Types {
		switch t.Kind {
		case schema.TypeKindScalar:
			if sc, ok := o.scalars[name]; ok {
				c.types[name] = sc
			} else {
				c.types[name] = PassthroughScalar(name)
			}
		case schema.TypeKindEnum:
			values := make([]string, len(t.EnumValues))
			for i, v := range t.EnumValues {
				values[i] = v.Name
			}
			c.types[name] = &EnumType{Name: name, Values: values}
		case schema.TypeKindInputObject:
			c.types[name] = &ObjectType{Name: name}
			objects = append(objects, t)
		}
	}

	// Fields are filled once every object exists so that references between
	// input objects, including cycles, resolve to the same pointers.
	for _, t := range objects {
		obj := c.types[t.Name].(*ObjectType)
		obj.Fields = make([]*InputField, 0, len(t.InputFields))
		for _, in := range t.InputFields {
			ft, ok := c.InputTypeOf(in.Type)
			if !ok {
				return nil, fmt.Errorf("input field %s.%s has non-input type %s", t.Name, in.Name, in.Type)
			}
			obj.Fields = append(obj.Fields, &InputField{Name: in.Name, Type: ft, DefaultValue: in.DefaultValue})
		}
	}
	return c, nil
}

func (c *SchemaCatalog) LookupInputType(name string) (InputType, bool) {
	t, ok := c.types[name]
	return t, ok
}

// InputTypeOf resolves a schema type reference. Positions not wrapped by
// Non-Null become OptionalType.
func (c *SchemaCatalog) InputTypeOf(ref *schema.TypeRef) (InputType, bool) {
	if ref == nil {
		return nil, false
	}
	switch ref.Kind {
	case schema.TypeRefKindNonNull:
		t, ok := c.InputTypeOf(ref.OfType)
		if !ok {
			return nil, false
		}
		if o, isOptional := t.(*OptionalType); isOptional {
			return o.OfType, true
		}
		return t, true
	case schema.TypeRefKindList:
		inner, ok := c.InputTypeOf(ref.OfType)
		if !ok {
			return nil, false
		}
		return Optional(ListOf(inner)), true
	case schema.TypeRefKindNamed:
		t, ok := c.types[ref.Named]
		if !ok {
			return nil, false
		}
		return Optional(t), true
	}
	return nil, false
}
