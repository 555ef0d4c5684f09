package coercion

import (
	"fmt"
	"math"
	"strconv"
	"time"

	language "github.com/hanpama/gqlcoerce/internal/language"
)

var (
	IntScalar = &ScalarType{
		Name:          "Int",
		CoerceRaw:     coerceIntRaw,
		CoerceLiteral: coerceIntLiteral,
	}
	FloatScalar = &ScalarType{
		Name:          "Float",
		CoerceRaw:     coerceFloatRaw,
		CoerceLiteral: coerceFloatLiteral,
	}
	StringScalar = &ScalarType{
		Name:          "String",
		CoerceRaw:     coerceStringRaw,
		CoerceLiteral: coerceStringLiteral,
	}
	BooleanScalar = &ScalarType{
		Name:          "Boolean",
		CoerceRaw:     coerceBooleanRaw,
		CoerceLiteral: coerceBooleanLiteral,
	}
	IDScalar = &ScalarType{
		Name:          "ID",
		CoerceRaw:     coerceIDRaw,
		CoerceLiteral: coerceIDLiteral,
	}
)

// DateTimeScalar parses RFC 3339 timestamps into time.Time.
var DateTimeScalar = &ScalarType{
	Name: "DateTime",
	CoerceRaw: func(value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("DateTime cannot represent a non string value: %s", renderPrimitive(value))
		}
		return parseDateTime(s)
	},
	CoerceLiteral: func(value *language.Value) (any, error) {
		if value.Kind != language.StringValue {
			return nil, fmt.Errorf("DateTime cannot represent a non string value: %s", value.String())
		}
		return parseDateTime(value.Raw)
	},
}

// PassthroughScalar returns a scalar that accepts any scalar-shaped value as
// is. It is used for custom scalars without registered coercion.
func PassthroughScalar(name string) *ScalarType {
	return &ScalarType{
		Name:          name,
		CoerceRaw:     func(value any) (any, error) { return value, nil },
		CoerceLiteral: literalToGo,
	}
}

func builtinScalars() []*ScalarType {
	return []*ScalarType{IntScalar, FloatScalar, StringScalar, BooleanScalar, IDScalar}
}

func (t *ScalarType) coerceRaw(value any) (any, error) {
	if t.CoerceRaw == nil {
		return value, nil
	}
	return t.CoerceRaw(value)
}

func (t *ScalarType) coerceLiteral(value *language.Value) (any, error) {
	if t.CoerceLiteral == nil {
		return literalToGo(value)
	}
	return t.CoerceLiteral(value)
}

func coerceIntRaw(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return checkInt32(int64(v), value)
	case int64:
		return checkInt32(v, value)
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			break
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %s", renderPrimitive(value))
		}
		return int(v), nil
	}
	return nil, fmt.Errorf("Int cannot represent non-integer value: %s", renderPrimitive(value))
}

func checkInt32(v int64, original any) (any, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %s", renderPrimitive(original))
	}
	return int(v), nil
}

func coerceIntLiteral(value *language.Value) (any, error) {
	if value.Kind != language.IntValue {
		return nil, fmt.Errorf("Int cannot represent non-integer value: %s", value.String())
	}
	i, err := strconv.ParseInt(value.Raw, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %s", value.Raw)
	}
	return int(i), nil
}

func coerceFloatRaw(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			return v, nil
		}
	}
	return nil, fmt.Errorf("Float cannot represent non numeric value: %s", renderPrimitive(value))
}

func coerceFloatLiteral(value *language.Value) (any, error) {
	if value.Kind != language.IntValue && value.Kind != language.FloatValue {
		return nil, fmt.Errorf("Float cannot represent non numeric value: %s", value.String())
	}
	f, err := strconv.ParseFloat(value.Raw, 64)
	if err != nil {
		return nil, fmt.Errorf("Float cannot represent non numeric value: %s", value.Raw)
	}
	return f, nil
}

func coerceStringRaw(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return nil, fmt.Errorf("String cannot represent a non string value: %s", renderPrimitive(value))
}

func coerceStringLiteral(value *language.Value) (any, error) {
	if value.Kind != language.StringValue && value.Kind != language.BlockValue {
		return nil, fmt.Errorf("String cannot represent a non string value: %s", value.String())
	}
	return value.Raw, nil
}

func coerceBooleanRaw(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("Boolean cannot represent a non boolean value: %s", renderPrimitive(value))
}

func coerceBooleanLiteral(value *language.Value) (any, error) {
	if value.Kind != language.BooleanValue {
		return nil, fmt.Errorf("Boolean cannot represent a non boolean value: %s", value.String())
	}
	return value.Raw == "true", nil
}

func coerceIDRaw(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return strconv.FormatInt(int64(v), 10), nil
		}
	}
	return nil, fmt.Errorf("ID cannot represent value: %s", renderPrimitive(value))
}

func coerceIDLiteral(value *language.Value) (any, error) {
	if value.Kind != language.StringValue && value.Kind != language.IntValue {
		return nil, fmt.Errorf("ID cannot represent a non-string and non-integer value: %s", value.String())
	}
	return value.Raw, nil
}

func parseDateTime(s string) (any, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("DateTime cannot represent an invalid RFC 3339 timestamp: %q", s)
	}
	return t, nil
}

func renderPrimitive(value any) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
