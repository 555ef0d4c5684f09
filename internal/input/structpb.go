package input

import (
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/hanpama/gqlcoerce/internal/coercion"
)

// Struct reads google.protobuf.Value trees, the JSON-like representation
// carried by gRPC payloads. Null values are undefined and numbers are float64.
type Struct struct{}

var _ coercion.Reader[*structpb.Value] = Struct{}

// DecodeProtoJSON decodes the protobuf JSON mapping of a google.protobuf.Value.
func DecodeProtoJSON(b []byte) (*structpb.Value, error) {
	v := &structpb.Value{}
	if err := protojson.Unmarshal(b, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (Struct) IsDefined(node *structpb.Value) bool {
	switch node.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return false
	}
	return true
}

func (Struct) IsArrayNode(node *structpb.Value) bool {
	_, ok := node.GetKind().(*structpb.Value_ListValue)
	return ok
}

func (Struct) IsMapNode(node *structpb.Value) bool {
	_, ok := node.GetKind().(*structpb.Value_StructValue)
	return ok
}

func (Struct) IsScalarNode(node *structpb.Value) bool {
	switch node.GetKind().(type) {
	case *structpb.Value_NumberValue, *structpb.Value_StringValue, *structpb.Value_BoolValue:
		return true
	}
	return false
}

func (Struct) ArrayElements(node *structpb.Value) []*structpb.Value {
	return node.GetListValue().GetValues()
}

func (Struct) MapField(node *structpb.Value, name string) (*structpb.Value, bool) {
	v, ok := node.GetStructValue().GetFields()[name]
	return v, ok
}

func (Struct) ScalarValue(node *structpb.Value) any {
	switch k := node.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return k.NumberValue
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_BoolValue:
		return k.BoolValue
	}
	return nil
}

func (s Struct) RootField(root *structpb.Value, name string) (*structpb.Value, bool) {
	return s.MapField(root, name)
}

func (Struct) Render(node *structpb.Value) string {
	if node == nil {
		return "null"
	}
	b, err := protojson.Marshal(node)
	if err != nil {
		return node.String()
	}
	return string(b)
}
