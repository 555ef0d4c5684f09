// Package coercion implements schema-directed input coercion: it reconciles
// untyped input (raw variable values from a request payload, or literals
// written in a query) with declared GraphQL input types, producing internally
// typed values or every violation found.
//
// # Type shapes
//
// Input types are modeled as a closed set of five shapes:
//   - OptionalType: absence and null are legal. Every position not wrapped by
//     OptionalType is non-null.
//   - ListType: a sequence. A single non-list value is accepted and wrapped as a
//     one-element list.
//   - ObjectType: named fields in declaration order.
//   - ScalarType: leaf coerced by a raw and a literal coercion function.
//   - EnumType: leaf restricted to a set of names.
//
// Each algorithm is a type switch over these shapes; an unrecognized shape is
// classified as an InputObjectTypeMismatch rather than causing a failure.
//
// # Algorithms
//
//   - IsValid: structural pre-check of a raw value, no error detail.
//   - CoerceRaw: converts a raw value read through a Reader.
//   - CoerceLiteral: converts a query literal, substituting variables that were
//     already coerced.
//   - GetVariableValues: binds every variable definition of an operation,
//     falling back to the definition's default when no value was supplied.
//   - CoerceFieldArguments: coerces a field's argument list as an object literal.
//   - CoerceOperation: variables, then the arguments of every root field.
//
// CoerceRaw and CoerceLiteral share the null-resolution rule and the list and
// object assembly:
//
//	A. A child that resolved to "absent" is accepted under OptionalType and
//	   omitted from objects (nil at its index in lists).
//	B. A child that resolved to "absent" under a non-null type is a
//	   NullForNonNullType violation at the child's path.
//	C. Violations of all elements and all fields are concatenated in order;
//	   coercion never stops at the first problem.
//
// # Representations
//
// Raw input is read only through the Reader interface, so the same algorithms
// serve JSON, YAML or protobuf payloads (see package input). Readers whose
// nodes carry source positions implement PositionReader.
//
// # Concurrency
//
// Coercion is synchronous and keeps no state between calls. A SchemaCatalog is
// immutable once built and may be shared by concurrent calls.
package coercion
