package input

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hanpama/gqlcoerce/internal/coercion"
	language "github.com/hanpama/gqlcoerce/internal/language"
)

// YAML reads yaml.v3 node trees. Document nodes are unwrapped, aliases
// followed and merge keys expanded; null scalars are undefined. Name is reported as the source of
// violation positions.
type YAML struct {
	Name string
}

var (
	_ coercion.Reader[*yaml.Node]         = YAML{}
	_ coercion.PositionReader[*yaml.Node] = YAML{}
)

// maxAliasExpansions bounds how many alias nodes a document may expand to
// when walked as a tree.
const maxAliasExpansions = 10000

// DecodeYAML decodes the first document of r. An empty stream yields a nil
// node, which has no fields. Documents whose aliases refer to an enclosing
// anchor, or expand beyond maxAliasExpansions, are rejected.
func DecodeYAML(r io.Reader) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	if err := checkAliases(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// checkAliases walks the node graph as the readers do, following aliases.
func checkAliases(root *yaml.Node) error {
	onPath := make(map[*yaml.Node]bool)
	expanded := 0
	var walk func(n *yaml.Node) error
	walk = func(n *yaml.Node) error {
		if n == nil {
			return nil
		}
		if n.Kind == yaml.AliasNode {
			if onPath[n.Alias] {
				return fmt.Errorf("yaml: line %d: alias *%s refers to an enclosing anchor", n.Line, n.Value)
			}
			expanded++
			if expanded > maxAliasExpansions {
				return fmt.Errorf("yaml: document expands more than %d aliases", maxAliasExpansions)
			}
			return walk(n.Alias)
		}
		onPath[n] = true
		defer delete(onPath, n)
		for _, c := range n.Content {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root)
}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil {
		switch node.Kind {
		case yaml.DocumentNode:
			if len(node.Content) == 0 {
				return nil
			}
			node = node.Content[0]
		case yaml.AliasNode:
			node = node.Alias
		default:
			return node
		}
	}
	return nil
}

func (YAML) IsDefined(node *yaml.Node) bool {
	n := resolve(node)
	return n != nil && !(n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

func (YAML) IsArrayNode(node *yaml.Node) bool {
	n := resolve(node)
	return n != nil && n.Kind == yaml.SequenceNode
}

func (YAML) IsMapNode(node *yaml.Node) bool {
	n := resolve(node)
	return n != nil && n.Kind == yaml.MappingNode
}

func (YAML) IsScalarNode(node *yaml.Node) bool {
	n := resolve(node)
	return n != nil && n.Kind == yaml.ScalarNode && n.ShortTag() != "!!null"
}

func (YAML) ArrayElements(node *yaml.Node) []*yaml.Node {
	n := resolve(node)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	return n.Content
}

// MapField returns the value of the first entry with the given key. Merge
// keys (<<) are expanded: explicit entries win over merged ones, and earlier
// mappings of a merged sequence win over later ones.
func (y YAML) MapField(node *yaml.Node, name string) (*yaml.Node, bool) {
	n := resolve(node)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil, false
	}
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge" {
			merges = append(merges, n.Content[i+1])
			continue
		}
		if key.Value == name {
			return n.Content[i+1], true
		}
	}
	for _, m := range merges {
		m = resolve(m)
		if m == nil {
			continue
		}
		sources := []*yaml.Node{m}
		if m.Kind == yaml.SequenceNode {
			sources = m.Content
		}
		for _, src := range sources {
			if v, ok := y.MapField(src, name); ok {
				return v, true
			}
		}
	}
	return nil, false
}

// ScalarValue decodes the scalar by its resolved tag.
func (YAML) ScalarValue(node *yaml.Node) any {
	n := resolve(node)
	if n == nil {
		return nil
	}
	switch n.ShortTag() {
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return i
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	}
	return n.Value
}

func (y YAML) RootField(root *yaml.Node, name string) (*yaml.Node, bool) {
	return y.MapField(root, name)
}

// Render formats the node in flow style on a single line.
func (YAML) Render(node *yaml.Node) string {
	n := resolve(node)
	if n == nil {
		return "null"
	}
	flow := *n
	flow.Style |= yaml.FlowStyle
	flow.Anchor = ""
	b, err := yaml.Marshal(&flow)
	if err != nil {
		return n.Value
	}
	return strings.TrimSpace(string(b))
}

func (y YAML) Position(node *yaml.Node) *language.Position {
	n := resolve(node)
	if n == nil {
		return nil
	}
	return &language.Position{Line: n.Line, Column: n.Column, Src: &language.Source{Name: y.Name}}
}
