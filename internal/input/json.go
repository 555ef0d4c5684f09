package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/hanpama/gqlcoerce/internal/coercion"
)

// JSON reads decoded JSON trees made of map[string]any, []any, string, bool,
// json.Number, float64 and nil. JSON null is undefined.
type JSON struct{}

var _ coercion.Reader[any] = JSON{}

// DecodeJSON decodes a single JSON document, keeping numbers as json.Number so
// integers keep their precision. Anything but whitespace after the document is
// an error.
func DecodeJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid JSON: unexpected data after the top-level value")
	}
	return v, nil
}

func DecodeJSONBytes(b []byte) (any, error) { return DecodeJSON(bytes.NewReader(b)) }

func (JSON) IsDefined(node any) bool { return node != nil }

func (JSON) IsArrayNode(node any) bool {
	_, ok := node.([]any)
	return ok
}

func (JSON) IsMapNode(node any) bool {
	_, ok := node.(map[string]any)
	return ok
}

func (JSON) IsScalarNode(node any) bool {
	switch node.(type) {
	case string, bool, json.Number, float64, int, int64:
		return true
	}
	return false
}

func (JSON) ArrayElements(node any) []any {
	a, _ := node.([]any)
	return a
}

func (JSON) MapField(node any, name string) (any, bool) {
	m, _ := node.(map[string]any)
	v, ok := m[name]
	return v, ok
}

// ScalarValue normalizes json.Number to int64 when it is integral and to
// float64 otherwise.
func (JSON) ScalarValue(node any) any {
	switch v := node.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	case int:
		return int64(v)
	default:
		return v
	}
}

func (j JSON) RootField(root any, name string) (any, bool) { return j.MapField(root, name) }

func (JSON) Render(node any) string {
	b, err := json.Marshal(node)
	if err != nil {
		return fmt.Sprintf("%v", node)
	}
	return string(b)
}
